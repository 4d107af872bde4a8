package store

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauern/notesync/internal/model"
	"github.com/klauern/notesync/internal/util"
)

func newTestObsidian(t *testing.T, handler http.Handler, dryRun bool) *Obsidian {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewObsidian(ObsidianOptions{
		APIHost:   server.URL,
		APIKey:    "test-key",
		VaultPath: "10-Projects/demo",
		Filter:    model.DefaultFilter(),
		DryRun:    dryRun,
	})
}

func TestObsidian_TestConnection(t *testing.T) {
	o := newTestObsidian(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusOK)
	}), false)

	if !o.TestConnection(context.Background()) {
		t.Error("expected reachable API")
	}
}

func TestObsidian_TestConnection_Unreachable(t *testing.T) {
	o := NewObsidian(ObsidianOptions{
		APIHost:   "http://127.0.0.1:1", // nothing listens here
		APIKey:    "k",
		VaultPath: "p",
	})

	if o.TestConnection(context.Background()) {
		t.Error("expected unreachable API")
	}
}

func TestObsidian_List_MixedEntries(t *testing.T) {
	o := newTestObsidian(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vault/10-Projects/demo/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"files": [
			"a.md",
			{"path": "10-Projects/demo/b.md", "name": "b.md"},
			"notes.tmp",
			"subfolder/",
			".hidden.md"
		]}`)
	}), false)

	refs, err := o.List(context.Background())
	util.AssertNoError(t, err)

	if len(refs) != 2 {
		t.Fatalf("List returned %d refs, want 2: %v", len(refs), refs)
	}
	util.AssertEqual(t, refs[0].Name, "a.md")
	util.AssertEqual(t, refs[1].Name, "b.md")
}

func TestObsidian_List_MissingFolder(t *testing.T) {
	o := newTestObsidian(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), false)

	refs, err := o.List(context.Background())
	util.AssertNoError(t, err)
	if len(refs) != 0 {
		t.Errorf("missing folder should list empty, got %v", refs)
	}
}

func TestObsidian_Read_RawText(t *testing.T) {
	o := newTestObsidian(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vault/10-Projects/demo/a.md" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/markdown")
		_, _ = io.WriteString(w, "# Hello\n")
	}), false)

	content, found, err := o.Read(context.Background(), "a.md")
	util.AssertNoError(t, err)
	if !found {
		t.Fatal("expected note to be found")
	}
	util.AssertEqual(t, content, "# Hello\n")
}

func TestObsidian_Read_JSONWrapped(t *testing.T) {
	o := newTestObsidian(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"content": "wrapped body"}`)
	}), false)

	content, found, err := o.Read(context.Background(), "a.md")
	util.AssertNoError(t, err)
	if !found {
		t.Fatal("expected note to be found")
	}
	util.AssertEqual(t, content, "wrapped body")
}

func TestObsidian_Read_Absent(t *testing.T) {
	o := newTestObsidian(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), false)

	_, found, err := o.Read(context.Background(), "missing.md")
	util.AssertNoError(t, err)
	if found {
		t.Error("404 must mean absent, not an error")
	}
}

func TestObsidian_Read_ServerError(t *testing.T) {
	o := newTestObsidian(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), false)

	_, _, err := o.Read(context.Background(), "a.md")
	if err == nil {
		t.Error("500 must surface as an error, distinct from absence")
	}
}

func TestObsidian_Write(t *testing.T) {
	var gotBody string
	var gotContentType string
	o := newTestObsidian(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	}), false)

	err := o.Write(context.Background(), "a.md", "new content")
	util.AssertNoError(t, err)
	util.AssertEqual(t, gotBody, "new content")
	util.AssertEqual(t, gotContentType, "text/markdown; charset=utf-8")
}

func TestObsidian_Write_FailureStatus(t *testing.T) {
	o := newTestObsidian(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}), false)

	if err := o.Write(context.Background(), "a.md", "x"); err == nil {
		t.Error("4xx write must return an error")
	}
}

func TestObsidian_DryRun_NoRequests(t *testing.T) {
	requests := 0
	o := newTestObsidian(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}), true)

	util.AssertNoError(t, o.Write(context.Background(), "a.md", "x"))
	util.AssertNoError(t, o.Delete(context.Background(), "a.md"))
	util.AssertEqual(t, requests, 0)
}

func TestObsidian_Delete(t *testing.T) {
	var gotMethod, gotPath string
	o := newTestObsidian(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}), false)

	err := o.Delete(context.Background(), "a.md")
	util.AssertNoError(t, err)
	util.AssertEqual(t, gotMethod, http.MethodDelete)
	util.AssertEqual(t, gotPath, "/vault/10-Projects/demo/a.md")
}

func TestObsidian_EscapesNoteNames(t *testing.T) {
	var gotEscaped string
	o := newTestObsidian(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEscaped = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "ok")
	}), false)

	_, _, err := o.Read(context.Background(), "meeting notes.md")
	util.AssertNoError(t, err)
	util.AssertEqual(t, gotEscaped, "/vault/10-Projects/demo/meeting%20notes.md")
}
