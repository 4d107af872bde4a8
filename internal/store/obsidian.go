package store

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/klauern/notesync/internal/logging"
	"github.com/klauern/notesync/internal/model"
)

// DefaultTimeout bounds every request to the Obsidian Local REST API.
const DefaultTimeout = 30 * time.Second

// ObsidianOptions configures the remote vault store.
type ObsidianOptions struct {
	// APIHost is the base URL, e.g. "https://localhost:27124".
	APIHost string

	// APIKey is the bearer token for the Local REST API plugin.
	APIKey string

	// VaultPath is the project-scoped subtree within the vault.
	VaultPath string

	// Filter restricts which vault files participate.
	Filter model.Filter

	// DryRun suppresses writes and deletes.
	DryRun bool

	// InsecureSkipVerify disables TLS certificate verification. The Local
	// REST API usually serves a self-signed certificate on localhost;
	// opting in here is scoped to this client, not process-wide.
	InsecureSkipVerify bool

	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration
}

// Obsidian is the remote side of a sync, backed by the Obsidian Local
// REST API. Note paths are store-relative names; the project subtree
// prefix is applied internally.
type Obsidian struct {
	host      string
	apiKey    string
	vaultPath string
	filter    model.Filter
	dryRun    bool
	client    *http.Client
}

// NewObsidian creates a vault store from options.
func NewObsidian(opts ObsidianOptions) *Obsidian {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport
	if opts.InsecureSkipVerify {
		transport = &http.Transport{
			// #nosec G402 - explicit, documented opt-in for the
			// plugin's self-signed localhost certificate
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Obsidian{
		host:      strings.TrimRight(opts.APIHost, "/"),
		apiKey:    opts.APIKey,
		vaultPath: strings.Trim(opts.VaultPath, "/"),
		filter:    opts.Filter,
		dryRun:    opts.DryRun,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Name implements Store.
func (o *Obsidian) Name() string { return "obsidian" }

// VaultPath returns the project subtree this store is scoped to.
func (o *Obsidian) VaultPath() string { return o.vaultPath }

// TestConnection probes the API root. It is the pre-flight liveness check
// a pass fails fast on.
func (o *Obsidian) TestConnection(ctx context.Context) bool {
	resp, err := o.do(ctx, http.MethodGet, "/", nil, "")
	if err != nil {
		logging.Error("obsidian API connection failed", logging.Err(err))
		return false
	}
	defer drainAndClose(resp)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if ok {
		logging.Debug("obsidian API connection successful")
	} else {
		logging.Error("obsidian API connection failed",
			logging.Operation("test_connection"),
			logging.Count(resp.StatusCode),
		)
	}
	return ok
}

// listResponse is the shape of the vault directory listing. Entries may be
// bare filename strings or objects carrying path/name keys, depending on
// the plugin version.
type listResponse struct {
	Files []json.RawMessage `json:"files"`
}

type listEntry struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// List implements Store.
func (o *Obsidian) List(ctx context.Context) ([]model.Ref, error) {
	endpoint := "/vault/" + escapePath(o.vaultPath) + "/"
	resp, err := o.do(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list vault notes: %w", err)
	}
	defer drainAndClose(resp)

	if resp.StatusCode == http.StatusNotFound {
		logging.Warn("vault project folder not found", logging.Path(o.vaultPath))
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vault listing returned status %d", resp.StatusCode)
	}

	var listing listResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode vault listing: %w", err)
	}

	var refs []model.Ref
	for _, raw := range listing.Files {
		name := decodeListEntry(raw)
		if name == "" || strings.HasSuffix(name, "/") {
			// Subfolder entries end with a slash; the sync is flat.
			continue
		}
		if !o.filter.Match(path.Base(name)) {
			continue
		}
		base := path.Base(name)
		refs = append(refs, model.Ref{Path: base, Name: base})
	}

	logging.Debug("vault listing complete",
		logging.Store(o.Name()),
		logging.Count(len(refs)),
	)
	return refs, nil
}

// decodeListEntry extracts a file name from one listing entry.
func decodeListEntry(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj listEntry
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Name != "" {
			return obj.Name
		}
		return obj.Path
	}
	return ""
}

// Read implements Store. A 404 means the note does not exist, which is a
// valid outcome distinct from transport failure.
func (o *Obsidian) Read(ctx context.Context, notePath string) (string, bool, error) {
	resp, err := o.do(ctx, http.MethodGet, o.noteEndpoint(notePath), nil, "")
	if err != nil {
		return "", false, fmt.Errorf("failed to read vault note %q: %w", notePath, err)
	}
	defer drainAndClose(resp)

	if resp.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false, fmt.Errorf("vault note %q returned status %d", notePath, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("failed to read vault note body %q: %w", notePath, err)
	}

	// Some plugin versions wrap content in JSON; most return raw text.
	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "application/json") {
		var wrapped struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return "", false, fmt.Errorf("failed to decode vault note %q: %w", notePath, err)
		}
		return wrapped.Content, true, nil
	}

	return string(body), true, nil
}

// Write implements Store. The body is raw note text with a text content
// type; 200, 201 and 204 all count as success.
func (o *Obsidian) Write(ctx context.Context, notePath, content string) error {
	if o.dryRun {
		logging.Info("DRY RUN: would update vault note", logging.Note(notePath))
		return nil
	}

	resp, err := o.do(ctx, http.MethodPut, o.noteEndpoint(notePath),
		strings.NewReader(content), "text/markdown; charset=utf-8")
	if err != nil {
		return fmt.Errorf("failed to update vault note %q: %w", notePath, err)
	}
	defer drainAndClose(resp)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		logging.Debug("vault note updated", logging.Note(notePath))
		return nil
	default:
		return fmt.Errorf("vault note update %q returned status %d", notePath, resp.StatusCode)
	}
}

// Delete implements Store.
func (o *Obsidian) Delete(ctx context.Context, notePath string) error {
	if o.dryRun {
		logging.Info("DRY RUN: would delete vault note", logging.Note(notePath))
		return nil
	}

	resp, err := o.do(ctx, http.MethodDelete, o.noteEndpoint(notePath), nil, "")
	if err != nil {
		return fmt.Errorf("failed to delete vault note %q: %w", notePath, err)
	}
	defer drainAndClose(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("vault note delete %q returned status %d", notePath, resp.StatusCode)
	}
	logging.Info("vault note deleted", logging.Note(notePath))
	return nil
}

// noteEndpoint builds the API path for a store-relative note name.
func (o *Obsidian) noteEndpoint(notePath string) string {
	full := path.Join(o.vaultPath, path.Base(notePath))
	return "/vault/" + escapePath(full)
}

// do issues one API request. Callers own the response body.
func (o *Obsidian) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, o.host+endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	logging.Debug("obsidian API request",
		logging.Operation(method),
		logging.Path(endpoint),
	)
	return o.client.Do(req)
}

// escapePath percent-escapes each path segment while keeping separators.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
