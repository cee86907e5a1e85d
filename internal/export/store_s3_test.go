package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
)

type s3Object struct {
	data        []byte
	filename    string
	contentType string
}

// fakeS3 serves path-style PUT and GET object requests from memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]s3Object
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.objects[r.URL.Path] = s3Object{
			data:        body,
			filename:    r.Header.Get("X-Amz-Meta-Filename"),
			contentType: r.Header.Get("Content-Type"),
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		obj, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+
				`<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", obj.contentType)
		w.Header().Set("X-Amz-Meta-Filename", obj.filename)
		_, _ = w.Write(obj.data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string]s3Object{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewS3Store(S3Options{
		Bucket:          "exports",
		Region:          "auto",
		Endpoint:        srv.URL,
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		PathStyle:       true,
		Prefix:          "personalised",
	})
	if err != nil {
		t.Fatal(err)
	}

	data := []byte("png bytes")
	key, err := s.Put(ctx, "Wave-Personalised.png", data)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	fake.mu.Lock()
	obj, ok := fake.objects["/exports/personalised/"+key+".png"]
	fake.mu.Unlock()
	if !ok {
		t.Fatalf("object for %q not written at its path-style key", key)
	}
	if obj.contentType != ContentType || obj.filename != "Wave-Personalised.png" {
		t.Errorf("stored object = %+v", obj)
	}

	a, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if a.Key != key || a.Filename != "Wave-Personalised.png" || !bytes.Equal(a.Data, data) {
		t.Errorf("Get() = %+v", a)
	}

	if _, err := s.Get(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(ctx, "../other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(invalid) error = %v, want ErrNotFound", err)
	}
}

func TestNewS3StoreRequiresConfig(t *testing.T) {
	if _, err := NewS3Store(S3Options{Bucket: "b"}); err == nil {
		t.Error("NewS3Store() error = nil for incomplete config")
	}
	s, err := NewS3Store(S3Options{Bucket: "b", Region: "auto", AccessKeyID: "k", SecretAccessKey: "s", Endpoint: "minio.local:9000/", Prefix: "/exports/"})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.objectKey("abc"); got != "exports/abc.png" {
		t.Errorf("objectKey() = %q", got)
	}
}
