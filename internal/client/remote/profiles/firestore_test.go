package profiles

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) IDToken() string { return string(s) }

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Auth   string
	Body   map[string]any
}

type fakeFirestore struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	reply    any
}

func (f *fakeFirestore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})
	status, reply := f.status, f.reply
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(reply)
}

func (f *fakeFirestore) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newFirestore(t *testing.T, tokens TokenSource) (*FirestoreStore, *fakeFirestore) {
	t.Helper()
	fake := &fakeFirestore{reply: map[string]any{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewFirestoreStore(context.Background(), FirestoreConfig{
		ProjectID: "eden-test",
		APIKey:    "key",
		Endpoint:  srv.URL + "/",
	}, tokens)
	require.NoError(t, err)
	return s, fake
}

const docPath = "/v1/projects/eden-test/databases/(default)/documents/users/uid-1"

func TestFirestore_SetDocument(t *testing.T) {
	s, fake := newFirestore(t, staticToken("id-token"))
	ts := time.Date(1990, 5, 17, 9, 30, 0, 0, time.UTC)

	err := s.SetDocument(context.Background(), "users", "uid-1", Fields{
		"fullName":  "Ana",
		"phone":     "",
		"birthDate": ts,
		"photoURL":  nil,
	})
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, docPath, req.Path)
	assert.Equal(t, "Bearer id-token", req.Auth)
	assert.NotContains(t, req.Query, "updateMask.fieldPaths")

	fields := req.Body["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"stringValue": "Ana"}, fields["fullName"])
	assert.Equal(t, map[string]any{"stringValue": ""}, fields["phone"])
	assert.Equal(t, map[string]any{"timestampValue": "1990-05-17T09:30:00Z"}, fields["birthDate"])
	assert.Equal(t, map[string]any{"nullValue": "NULL_VALUE"}, fields["photoURL"])
}

func TestFirestore_UpdateDocumentUsesMask(t *testing.T) {
	s, fake := newFirestore(t, nil)

	err := s.UpdateDocument(context.Background(), "users", "uid-1", Fields{"phone": "222", "plan": "premium"})
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, []string{"phone", "plan"}, req.Query["updateMask.fieldPaths"])
	assert.Empty(t, req.Auth)
}

func TestFirestore_GetDocument(t *testing.T) {
	s, fake := newFirestore(t, staticToken("tok"))
	fake.reply = map[string]any{
		"name": "projects/eden-test/databases/(default)/documents/users/uid-1",
		"fields": map[string]any{
			"fullName":  map[string]any{"stringValue": "Ana"},
			"birthDate": map[string]any{"timestampValue": "1990-05-17T09:30:00Z"},
			"photoURL":  map[string]any{"nullValue": "NULL_VALUE"},
		},
	}

	f, err := s.GetDocument(context.Background(), "users", "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", f["fullName"])
	assert.Equal(t, time.Date(1990, 5, 17, 9, 30, 0, 0, time.UTC), f["birthDate"])
	assert.Nil(t, f["photoURL"])
	assert.Equal(t, http.MethodGet, fake.last().Method)
	assert.Equal(t, docPath, fake.last().Path)
}

func TestFirestore_GetDocumentNotFound(t *testing.T) {
	s, fake := newFirestore(t, nil)
	fake.status = http.StatusNotFound
	fake.reply = map[string]any{"error": map[string]any{"code": 404, "message": "Document not found", "status": "NOT_FOUND"}}

	_, err := s.GetDocument(context.Background(), "users", "uid-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFirestore_OtherErrorsWrapped(t *testing.T) {
	s, fake := newFirestore(t, nil)
	fake.status = http.StatusForbidden
	fake.reply = map[string]any{"error": map[string]any{"code": 403, "message": "Cloud Firestore API has not been used in project 1"}}

	err := s.SetDocument(context.Background(), "users", "uid-1", Fields{})
	require.ErrorContains(t, err, "firestore set users/uid-1")
	require.ErrorContains(t, err, "has not been used")
}

func TestFirestore_UnsupportedValue(t *testing.T) {
	s, _ := newFirestore(t, nil)

	err := s.SetDocument(context.Background(), "users", "uid-1", Fields{"bad": struct{}{}})
	require.ErrorContains(t, err, "unsupported value type")
}

func TestNewFirestoreStore_RequiresProject(t *testing.T) {
	_, err := NewFirestoreStore(context.Background(), FirestoreConfig{}, nil)
	require.Error(t, err)
}

func TestValueRoundTrip(t *testing.T) {
	for _, v := range []any{"x", "", true, false, int64(7), int64(0), 1.5, 0.0, nil} {
		enc, err := encodeValue(v)
		require.NoError(t, err)
		raw, err := json.Marshal(enc)
		require.NoError(t, err)

		got, ok, err := decodeValue(raw)
		require.NoError(t, err)
		require.True(t, ok, string(raw))
		assert.Equal(t, v, got, string(raw))
	}
}

func TestFirestore_GetDocumentKeepsZeroValues(t *testing.T) {
	s, fake := newFirestore(t, nil)
	fake.reply = map[string]any{
		"fields": map[string]any{
			"verified": map[string]any{"booleanValue": false},
			"streak":   map[string]any{"integerValue": "0"},
			"score":    map[string]any{"doubleValue": 0},
			"phone":    map[string]any{"stringValue": ""},
			"tags":     map[string]any{"arrayValue": map[string]any{}},
		},
	}

	f, err := s.GetDocument(context.Background(), "users", "uid-1")
	require.NoError(t, err)
	assert.Equal(t, Fields{
		"verified": false,
		"streak":   int64(0),
		"score":    0.0,
		"phone":    "",
	}, f)
	assert.Equal(t, "key", fake.last().Query["key"][0])
}
