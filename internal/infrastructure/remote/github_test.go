package remote_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-inventario/internal/infrastructure/remote"
)

// fakeGitHub emula la API de contenidos para un único archivo.
type fakeGitHub struct {
	mu      sync.Mutex
	token   string
	content []byte
	sha     string
	puts    []map[string]any
}

func (f *fakeGitHub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	const contents = "/repos/acme/datos/contents/backups/agro-berry-data.json"
	mux.HandleFunc(contents, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
		switch r.Method {
		case http.MethodGet:
			if f.content == nil {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"message":"Not Found"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"sha": f.sha, "encoding": "base64",
				"content": base64.StdEncoding.EncodeToString(f.content)[:8] + "\n" + base64.StdEncoding.EncodeToString(f.content)[8:],
			})
		case http.MethodPut:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.puts = append(f.puts, body)
			if f.sha != "" && body["sha"] != f.sha {
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"message":"sha mismatch"}`))
				return
			}
			raw, err := base64.StdEncoding.DecodeString(body["content"].(string))
			require.NoError(t, err)
			f.content = raw
			f.sha = "sha-" + string(rune('a'+len(f.puts)))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"content": map[string]string{"html_url": "https://github.com/acme/datos/blob/main/backups/agro-berry-data.json"},
				"commit":  map[string]string{"sha": "commit-" + f.sha},
			})
		}
	})
	mux.HandleFunc("/repos/acme/datos", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"full_name": "acme/datos", "private": true})
	})
	mux.HandleFunc("/repos/acme/datos/commits", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "backups/agro-berry-data.json", r.URL.Query().Get("path"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`[{"html_url":"https://github.com/acme/datos/commit/1","commit":{"message":"Backup","committer":{"date":"2026-01-07T10:00:00Z"}}}]`))
	})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "token "+f.token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func newGitHub(t *testing.T, srv *httptest.Server, token string) *remote.GitHub {
	t.Helper()
	g, err := remote.NewGitHub(remote.GitHubOptions{
		Token: token, Owner: "acme", Repo: "datos", BaseURL: srv.URL, Client: srv.Client(),
	})
	require.NoError(t, err)
	return g
}

// ─────────────────────────────────────────────────────────────────────────────
// GitHub
// ─────────────────────────────────────────────────────────────────────────────

func TestGitHub_PushYPull(t *testing.T) {
	ctx := context.Background()
	fake := &fakeGitHub{token: "secreto"}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	g := newGitHub(t, srv, "secreto")

	r, err := g.Push(ctx, []byte(`{"movements":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "github", r.Provider)
	assert.NotEmpty(t, r.Version)
	require.Len(t, fake.puts, 1)
	_, hasSHA := fake.puts[0]["sha"]
	assert.False(t, hasSHA, "el primer respaldo crea el archivo sin sha")
	assert.Equal(t, "main", fake.puts[0]["branch"])

	_, err = g.Push(ctx, []byte(`{"movements":[{"id":"m1"}]}`))
	require.NoError(t, err)
	require.Len(t, fake.puts, 2)
	assert.NotEmpty(t, fake.puts[1]["sha"], "el reemplazo envía el sha vigente")

	data, err := g.Pull(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"movements":[{"id":"m1"}]}`, string(data))

	info, err := g.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acme/datos", info.Name)
	assert.True(t, info.Private)

	last, err := g.Last(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, 2026, last.At.Year())
}

func TestGitHub_Errores(t *testing.T) {
	ctx := context.Background()
	fake := &fakeGitHub{token: "secreto"}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	_, err := newGitHub(t, srv, "otro").Check(ctx)
	assert.ErrorIs(t, err, remote.ErrRemoteAuth)

	_, err = newGitHub(t, srv, "secreto").Pull(ctx)
	assert.ErrorIs(t, err, remote.ErrRemoteNotFound, "sin respaldo previo")

	_, err = remote.NewGitHub(remote.GitHubOptions{Owner: "acme", Repo: "datos"})
	assert.ErrorIs(t, err, remote.ErrRemoteNotConfigured)
}

func TestGitHub_Conflicto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"sha":"viejo"}`))
			return
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"is at 123 but expected viejo"}`))
	}))
	defer srv.Close()

	_, err := newGitHub(t, srv, "x").Push(context.Background(), []byte(`{}`))
	assert.ErrorIs(t, err, remote.ErrRemoteConflict)
}

func TestGitHub_ServidorCaido(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	g := newGitHub(t, srv, "x")
	srv.Close()

	_, err := g.Check(context.Background())
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)
}
