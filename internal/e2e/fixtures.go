package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
)

// FakeVault is an in-memory stand-in for the Obsidian Local REST API.
// Note keys are bare filenames under the configured vault folder.
type FakeVault struct {
	mu    sync.Mutex
	notes map[string]string
	srv   *httptest.Server
}

// NewFakeVault starts a fake vault server.
func NewFakeVault() *FakeVault {
	v := &FakeVault{notes: map[string]string{}}
	v.srv = httptest.NewServer(http.HandlerFunc(v.handle))
	return v
}

// URL returns the server's base URL.
func (v *FakeVault) URL() string { return v.srv.URL }

// Close shuts the server down.
func (v *FakeVault) Close() { v.srv.Close() }

// Put seeds or overwrites a note.
func (v *FakeVault) Put(name, content string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notes[name] = content
}

// Get returns a note's content and whether it exists.
func (v *FakeVault) Get(name string) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	content, ok := v.notes[name]
	return content, ok
}

// Len returns the number of notes in the vault.
func (v *FakeVault) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.notes)
}

func (v *FakeVault) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		w.WriteHeader(http.StatusOK)
		return
	}

	rel, ok := strings.CutPrefix(r.URL.Path, "/vault/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if strings.HasSuffix(rel, "/") {
		v.handleList(w)
		return
	}

	name := path.Base(rel)
	switch r.Method {
	case http.MethodGet:
		content, ok := v.Get(name)
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, content)

	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		v.Put(name, string(body))
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		v.mu.Lock()
		delete(v.notes, name)
		v.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (v *FakeVault) handleList(w http.ResponseWriter) {
	v.mu.Lock()
	names := make([]string, 0, len(v.notes))
	for name := range v.notes {
		names = append(names, name)
	}
	v.mu.Unlock()
	sort.Strings(names)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{"files": names})
}
