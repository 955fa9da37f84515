package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGitHubAPI  = "https://api.github.com"
	defaultBackupPath = "backups/agro-berry-data.json"
	githubAccept      = "application/vnd.github.v3+json"
)

// GitHubOptions repositorio y credencial.
type GitHubOptions struct {
	Token   string
	Owner   string
	Repo    string
	Branch  string // vacío = main
	Path    string // vacío = backups/agro-berry-data.json
	BaseURL string // vacío = https://api.github.com
	Client  *http.Client
}

// GitHub guarda el documento como archivo de un repositorio vía la API de contenidos.
type GitHub struct {
	opts GitHubOptions
	now  func() time.Time
}

// NewGitHub valida las opciones; ErrRemoteNotConfigured si falta token, owner o repo.
func NewGitHub(opts GitHubOptions) (*GitHub, error) {
	if opts.Token == "" || opts.Owner == "" || opts.Repo == "" {
		return nil, ErrRemoteNotConfigured
	}
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	if opts.Path == "" {
		opts.Path = defaultBackupPath
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultGitHubAPI
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return &GitHub{opts: opts, now: time.Now}, nil
}

func (g *GitHub) Name() string { return "github" }

func (g *GitHub) repoURL() string {
	return fmt.Sprintf("%s/repos/%s/%s", g.opts.BaseURL, url.PathEscape(g.opts.Owner), url.PathEscape(g.opts.Repo))
}

func (g *GitHub) contentsURL() string {
	return g.repoURL() + "/contents/" + g.opts.Path
}

type githubContent struct {
	SHA         string `json:"sha"`
	Content     string `json:"content"`
	Encoding    string `json:"encoding"`
	HTMLURL     string `json:"html_url"`
	DownloadURL string `json:"download_url"`
}

type githubPutRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type githubPutResponse struct {
	Content githubContent `json:"content"`
	Commit  struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// Push crea o reemplaza el archivo. Si existe se envía su sha actual.
func (g *GitHub) Push(ctx context.Context, payload []byte) (*Receipt, error) {
	var current githubContent
	err := g.do(ctx, http.MethodGet, g.contentsURL()+"?ref="+url.QueryEscape(g.opts.Branch), nil, &current)
	switch {
	case err == nil:
	case errors.Is(err, ErrRemoteNotFound):
		current = githubContent{}
	default:
		return nil, err
	}

	now := g.now()
	body := githubPutRequest{
		Message: "Backup " + now.Format("02/01/2006 15:04:05"),
		Content: base64.StdEncoding.EncodeToString(payload),
		Branch:  g.opts.Branch,
		SHA:     current.SHA,
	}
	var resp githubPutResponse
	if err := g.do(ctx, http.MethodPut, g.contentsURL(), body, &resp); err != nil {
		return nil, err
	}
	return &Receipt{
		Provider: g.Name(),
		Location: fmt.Sprintf("%s/%s:%s", g.opts.Owner, g.opts.Repo, g.opts.Path),
		URL:      resp.Content.HTMLURL,
		Version:  resp.Commit.SHA,
		At:       now.UTC(),
	}, nil
}

// Pull descarga el archivo de respaldo.
func (g *GitHub) Pull(ctx context.Context) ([]byte, error) {
	var file githubContent
	if err := g.do(ctx, http.MethodGet, g.contentsURL()+"?ref="+url.QueryEscape(g.opts.Branch), nil, &file); err != nil {
		return nil, err
	}
	if file.Encoding == "base64" && file.Content != "" {
		data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("%w: contenido base64 inválido: %w", ErrRemoteUnavailable, err)
		}
		return data, nil
	}
	// Archivos grandes llegan sin contenido; se bajan por download_url.
	if file.DownloadURL == "" {
		return nil, fmt.Errorf("%w: archivo sin contenido", ErrRemoteNotFound)
	}
	return g.raw(ctx, file.DownloadURL)
}

// Check valida token y repositorio.
func (g *GitHub) Check(ctx context.Context) (*Info, error) {
	var repo struct {
		FullName string `json:"full_name"`
		Private  bool   `json:"private"`
	}
	if err := g.do(ctx, http.MethodGet, g.repoURL(), nil, &repo); err != nil {
		return nil, err
	}
	return &Info{Provider: g.Name(), Name: repo.FullName, Private: repo.Private}, nil
}

// Last último commit que tocó el archivo de respaldo.
func (g *GitHub) Last(ctx context.Context) (*LastBackup, error) {
	q := url.Values{}
	q.Set("path", g.opts.Path)
	q.Set("sha", g.opts.Branch)
	q.Set("per_page", "1")
	var commits []struct {
		HTMLURL string `json:"html_url"`
		Commit  struct {
			Message   string `json:"message"`
			Committer struct {
				Date time.Time `json:"date"`
			} `json:"committer"`
		} `json:"commit"`
	}
	if err := g.do(ctx, http.MethodGet, g.repoURL()+"/commits?"+q.Encode(), nil, &commits); err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, nil
	}
	c := commits[0]
	return &LastBackup{At: c.Commit.Committer.Date, Message: c.Commit.Message, URL: c.HTMLURL}, nil
}

func (g *GitHub) newRequest(ctx context.Context, method, target string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+g.opts.Token)
	req.Header.Set("Accept", githubAccept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (g *GitHub) do(ctx context.Context, method, target string, body, out any) error {
	req, err := g.newRequest(ctx, method, target, body)
	if err != nil {
		return err
	}
	resp, err := g.opts.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: respuesta inválida: %w", ErrRemoteUnavailable, err)
	}
	return nil
}

func (g *GitHub) raw(ctx context.Context, target string) ([]byte, error) {
	req, err := g.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}
	return io.ReadAll(resp.Body)
}

// statusError traduce el código HTTP de GitHub: 401/403 credencial, 404 destino, 409 conflicto.
func statusError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	msg := body.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	var kind error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrRemoteAuth
	case http.StatusNotFound:
		kind = ErrRemoteNotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		kind = ErrRemoteConflict
	default:
		kind = ErrRemoteUnavailable
	}
	return fmt.Errorf("%w: github %d: %s", kind, resp.StatusCode, msg)
}
