package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
)

// TokenSource yields the ID token requests are authorized with. An empty
// token sends the request unauthenticated.
type TokenSource interface {
	IDToken() string
}

// FirestoreConfig configures NewFirestoreStore.
type FirestoreConfig struct {
	ProjectID string
	APIKey    string
	// Endpoint overrides the Firestore base URL (emulators, tests).
	Endpoint string
}

// FirestoreStore implements DocumentStore over the Firestore REST API.
type FirestoreStore struct {
	docs   *firestore.ProjectsDatabasesDocumentsService
	http   *http.Client
	base   string
	root   string
	tokens TokenSource
}

func NewFirestoreStore(ctx context.Context, cfg FirestoreConfig, tokens TokenSource) (*FirestoreStore, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firestore: project id is required")
	}

	var opts []option.ClientOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		opts = append(opts, option.WithoutAuthentication())
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	// Reads go through hc directly: the generated Value type cannot tell a
	// false or zero value from an absent one.
	hc, _, err := htransport.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore http client: %w", err)
	}
	svcOpts := []option.ClientOption{option.WithHTTPClient(hc)}
	if cfg.Endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := firestore.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}

	return &FirestoreStore{
		docs:   svc.Projects.Databases.Documents,
		http:   hc,
		base:   strings.TrimRight(svc.BasePath, "/") + "/",
		root:   fmt.Sprintf("projects/%s/databases/(default)/documents", cfg.ProjectID),
		tokens: tokens,
	}, nil
}

func (s *FirestoreStore) name(collection, id string) string {
	return s.root + "/" + collection + "/" + id
}

func (s *FirestoreStore) authorize(h http.Header) {
	if s.tokens == nil {
		return
	}
	if tok := s.tokens.IDToken(); tok != "" {
		h.Set("Authorization", "Bearer "+tok)
	}
}

func (s *FirestoreStore) SetDocument(ctx context.Context, collection, id string, fields Fields) error {
	doc, err := encodeDocument(fields)
	if err != nil {
		return err
	}

	call := s.docs.Patch(s.name(collection, id), doc)
	s.authorize(call.Header())
	if _, err := call.Context(ctx).Do(); err != nil {
		return fmt.Errorf("firestore set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) GetDocument(ctx context.Context, collection, id string) (Fields, error) {
	fields, err := s.getDocument(ctx, s.name(collection, id))
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("firestore get %s/%s: %w", collection, id, err)
	}
	return fields, nil
}

func (s *FirestoreStore) getDocument(ctx context.Context, name string) (Fields, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"v1/"+name, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	s.authorize(req.Header)

	res, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer googleapi.CloseBody(res)

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if err := googleapi.CheckResponseWithBody(res, body); err != nil {
		return nil, err
	}

	var doc struct {
		Fields map[string]json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return decodeFields(doc.Fields)
}

func (s *FirestoreStore) UpdateDocument(ctx context.Context, collection, id string, partial Fields) error {
	doc, err := encodeDocument(partial)
	if err != nil {
		return err
	}

	call := s.docs.Patch(s.name(collection, id), doc).
		UpdateMaskFieldPaths(slices.Sorted(maps.Keys(partial))...)
	s.authorize(call.Header())
	if _, err := call.Context(ctx).Do(); err != nil {
		return fmt.Errorf("firestore update %s/%s: %w", collection, id, err)
	}
	return nil
}

func encodeDocument(fields Fields) (*firestore.Document, error) {
	doc := &firestore.Document{Fields: make(map[string]firestore.Value, len(fields))}
	for k, v := range fields {
		val, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		doc.Fields[k] = val
	}
	return doc, nil
}

func encodeValue(v any) (firestore.Value, error) {
	switch v := v.(type) {
	case nil:
		return firestore.Value{NullValue: "NULL_VALUE"}, nil
	case string:
		return firestore.Value{StringValue: v, ForceSendFields: []string{"StringValue"}}, nil
	case bool:
		return firestore.Value{BooleanValue: v, ForceSendFields: []string{"BooleanValue"}}, nil
	case int:
		return firestore.Value{IntegerValue: int64(v), ForceSendFields: []string{"IntegerValue"}}, nil
	case int64:
		return firestore.Value{IntegerValue: v, ForceSendFields: []string{"IntegerValue"}}, nil
	case float64:
		return firestore.Value{DoubleValue: v, ForceSendFields: []string{"DoubleValue"}}, nil
	case time.Time:
		return firestore.Value{TimestampValue: v.UTC().Format(time.RFC3339Nano)}, nil
	}
	return firestore.Value{}, fmt.Errorf("unsupported value type %T", v)
}

func decodeFields(raw map[string]json.RawMessage) (Fields, error) {
	out := make(Fields, len(raw))
	for k, v := range raw {
		val, ok, err := decodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		if ok {
			out[k] = val
		}
	}
	return out, nil
}

// decodeValue picks the kind from the key present in raw. Kinds profiles do
// not use (arrays, maps, bytes, references, geo points) are skipped.
func decodeValue(raw json.RawMessage) (any, bool, error) {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(raw, &present); err != nil {
		return nil, false, err
	}
	var v firestore.Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, err
	}

	has := func(k string) bool { _, ok := present[k]; return ok }
	switch {
	case has("nullValue"):
		return nil, true, nil
	case has("timestampValue"):
		if t, err := time.Parse(time.RFC3339Nano, v.TimestampValue); err == nil {
			return t, true, nil
		}
		return v.TimestampValue, true, nil
	case has("booleanValue"):
		return v.BooleanValue, true, nil
	case has("integerValue"):
		return v.IntegerValue, true, nil
	case has("doubleValue"):
		return v.DoubleValue, true, nil
	case has("stringValue"):
		return v.StringValue, true, nil
	}
	return nil, false, nil
}
