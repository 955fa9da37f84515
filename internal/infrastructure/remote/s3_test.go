package remote_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-inventario/internal/infrastructure/remote"
)

// fakeS3 bucket en memoria con direccionamiento por ruta.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	deny    bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deny {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		if r.Method != http.MethodHead {
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
		}
		return
	}
	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if bucket != f.bucket {
		w.WriteHeader(http.StatusNotFound)
		if r.Method != http.MethodHead {
			_, _ = io.WriteString(w, `<Error><Code>NoSuchBucket</Code><Message>no bucket</Message></Error>`)
		}
		return
	}
	switch {
	case key == "" && r.Method == http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.Header().Set("ETag", `"etag-1"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<Error><Code>NoSuchKey</Code><Message>no key</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	case r.Method == http.MethodHead:
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Last-Modified", "Wed, 07 Jan 2026 10:00:00 GMT")
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newS3(t *testing.T, srv *httptest.Server) *remote.S3 {
	t.Helper()
	s, err := remote.NewS3(context.Background(), remote.S3Options{
		Endpoint: srv.URL, Region: "us-east-1", Bucket: "agro",
		AccessKey: "AK", SecretKey: "SK", UsePathStyle: true,
	})
	require.NoError(t, err)
	return s
}

// ─────────────────────────────────────────────────────────────────────────────
// S3
// ─────────────────────────────────────────────────────────────────────────────

func TestS3_PushYPull(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{bucket: "agro", objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	s := newS3(t, srv)

	info, err := s.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, "agro", info.Name)

	last, err := s.Last(ctx)
	require.NoError(t, err)
	assert.Nil(t, last, "sin respaldo previo")

	r, err := s.Push(ctx, []byte(`{"movements":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "etag-1", r.Version)
	assert.Equal(t, "s3://agro/backups/agro-berry-data.json", r.Location)

	data, err := s.Pull(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"movements":[]}`, string(data))

	last, err = s.Last(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, 2026, last.At.Year())
}

func TestS3_Errores(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{bucket: "agro", objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	s := newS3(t, srv)

	_, err := s.Pull(ctx)
	assert.ErrorIs(t, err, remote.ErrRemoteNotFound)

	fake.mu.Lock()
	fake.deny = true
	fake.mu.Unlock()
	_, err = s.Push(ctx, []byte(`{}`))
	assert.ErrorIs(t, err, remote.ErrRemoteAuth)

	_, err = remote.NewS3(ctx, remote.S3Options{Bucket: "agro"})
	assert.ErrorIs(t, err, remote.ErrRemoteNotConfigured)
}
