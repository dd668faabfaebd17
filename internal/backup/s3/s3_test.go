package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"vetclinic/m/internal/config"
)

type recordingTransport struct {
	mu      sync.Mutex
	objects map[string][]byte
	status  int
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.status != 0 {
		return &http.Response{StatusCode: rt.status, Body: io.NopCloser(strings.NewReader("<Error><Code>AccessDenied</Code></Error>")),
			Header: http.Header{"Content-Type": {"application/xml"}}, Request: req}, nil
	}
	if req.Method == http.MethodPut {
		rt.objects[strings.TrimPrefix(req.URL.Path, "/")] = body
	}
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)),
		Header: http.Header{"ETag": {"\"etag\""}}, Request: req}, nil
}

func newTestMirror(t *testing.T, rt *recordingTransport) *Mirror {
	t.Helper()
	m, err := New(context.Background(), config.S3Config{
		Bucket:          "clinic-backups",
		Endpoint:        "https://minio.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	}, WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new mirror: %v", err)
	}
	return m
}

func TestUploadPutsObject(t *testing.T) {
	rt := &recordingTransport{objects: map[string][]byte{}}
	m := newTestMirror(t, rt)

	path := filepath.Join(t.TempDir(), "vet_clinic.db.20240615103000.bak")
	if err := os.WriteFile(path, []byte("SQLite format 3"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := m.Upload(context.Background(), "backups/vet_clinic.db.20240615103000.bak", path); err != nil {
		t.Fatalf("upload: %v", err)
	}
	got, ok := rt.objects["clinic-backups/backups/vet_clinic.db.20240615103000.bak"]
	// the SDK may frame the payload with aws-chunked encoding
	if !ok || !bytes.Contains(got, []byte("SQLite format 3")) {
		t.Fatalf("objects = %v", rt.objects)
	}
}

func TestUploadReportsFailures(t *testing.T) {
	rt := &recordingTransport{objects: map[string][]byte{}, status: http.StatusForbidden}
	m := newTestMirror(t, rt)
	path := filepath.Join(t.TempDir(), "db.bak")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := m.Upload(context.Background(), "backups/db.bak", path); err == nil {
		t.Fatal("expected error from forbidden upload")
	}
	if err := m.Upload(context.Background(), "backups/missing", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), config.S3Config{}); err == nil {
		t.Fatal("expected error without bucket")
	}
}
