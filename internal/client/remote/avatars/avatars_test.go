package avatars

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/dmitrijs2005/eden/internal/client/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	mu          sync.Mutex
	path        string
	contentType string
	body        []byte
	status      int
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	defer b.mu.Unlock()
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	b.path = r.URL.Path
	b.contentType = r.Header.Get("Content-Type")
	b.body = body
	if b.status != 0 {
		w.WriteHeader(b.status)
		_, _ = w.Write([]byte("<Error>denied</Error>"))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func newTestStorage(t *testing.T) (*Storage, *fakeBucket, string) {
	t.Helper()
	bucket := &fakeBucket{}
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	s, err := New(context.Background(), Config{
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "eden",
	}, srv.Client())
	require.NoError(t, err)
	s.newKey = func(uid string) string { return "avatars/" + uid + "/fixed" }
	return s, bucket, srv.URL
}

func TestUpload(t *testing.T) {
	s, bucket, base := newTestStorage(t)

	url, err := s.Upload(context.Background(), "uid-1", "image/png", []byte("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, base+"/eden/avatars/uid-1/fixed", url)
	assert.Equal(t, "/eden/avatars/uid-1/fixed", bucket.path)
	assert.Equal(t, "image/png", bucket.contentType)
	assert.Equal(t, []byte("png-bytes"), bucket.body)
}

func TestUpload_Rejected(t *testing.T) {
	s, bucket, _ := newTestStorage(t)
	bucket.status = http.StatusForbidden

	_, err := s.Upload(context.Background(), "uid-1", "image/png", []byte("x"))
	require.ErrorContains(t, err, "upload failed: 403")
}

func TestPresignUpload(t *testing.T) {
	s, _, base := newTestStorage(t)

	key, url, err := s.PresignUpload(context.Background(), "uid-9", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "avatars/uid-9/fixed", key)
	assert.True(t, strings.HasPrefix(url, base+"/eden/avatars/uid-9/fixed?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=900")
}

func TestNew_NotConfigured(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	require.ErrorIs(t, err, remote.ErrNotConfigured)
}

func TestNew_AWSConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := New(context.Background(), Config{Bucket: "b"}, nil)
	require.ErrorContains(t, err, "no config")
}

func TestObjectKey(t *testing.T) {
	k := ObjectKey("uid-1")
	assert.Regexp(t, `^avatars/uid-1/[0-9a-f-]{36}$`, k)
	assert.NotEqual(t, k, ObjectKey("uid-1"))
}

func TestPublicURL(t *testing.T) {
	s := &Storage{cfg: Config{PublicBaseURL: "https://cdn.example.com/", Bucket: "b"}}
	assert.Equal(t, "https://cdn.example.com/avatars/x", s.PublicURL("avatars/x"))
}

func TestPublicURL_Defaults(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"endpoint", Config{Endpoint: "http://127.0.0.1:9000/", Bucket: "bkt"}, "http://127.0.0.1:9000/bkt/avatars/u/1"},
		{"aws region", Config{Bucket: "bkt", Region: "us-east-1"}, "https://bkt.s3.us-east-1.amazonaws.com/avatars/u/1"},
		{"aws global", Config{Bucket: "bkt"}, "https://bkt.s3.amazonaws.com/avatars/u/1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Storage{cfg: tt.cfg}
			assert.Equal(t, tt.want, s.PublicURL("avatars/u/1"))
		})
	}
}
