package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func TestJoinRooted(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.png", filepath.Join("/srv", "a.png")},
		{"backgrounds/a.png", filepath.Join("/srv", "backgrounds", "a.png")},
		{"../../etc/passwd", filepath.Join("/srv", "etc", "passwd")},
		{"/abs/x.png", filepath.Join("/srv", "abs", "x.png")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinRooted("/srv", tt.name); got != tt.want {
				t.Errorf("JoinRooted(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestGetBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	b, err := GetBytes(context.Background(), srv.Client(), srv.URL+"/ok")
	if err != nil || string(b) != "hello" {
		t.Errorf("GetBytes() = %q, %v", b, err)
	}
	if _, err := GetBytes(context.Background(), nil, srv.URL+"/missing"); err == nil {
		t.Error("GetBytes(missing) error = nil, want error")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() twice error = %v", err)
	}
}
