package storage

import (
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/workdeckhq/workdeck/internal/domain"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), "http://localhost:8080", []byte("test-key"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := store.EnsureBucket("documents", false); err != nil {
		t.Fatalf("ensure bucket: %v", err)
	}
	return store
}

func TestUploadOpenDeleteRoundTrip(t *testing.T) {
	store := newTestStore(t)

	objectPath, err := store.Upload("documents", "", "manual contrato.pdf", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasSuffix(objectPath, "/manual_contrato.pdf") {
		t.Fatalf("expected sanitized filename suffix, got %q", objectPath)
	}

	f, err := store.Open("documents", objectPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "content" {
		t.Fatalf("unexpected contents %q", data)
	}

	if err := store.Delete("documents", objectPath); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open("documents", objectPath); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete("documents", objectPath); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestEnsureBucketIdempotentAndVisibility(t *testing.T) {
	store := newTestStore(t)

	if err := store.EnsureBucket("avatars", true); err != nil {
		t.Fatalf("ensure avatars: %v", err)
	}
	if !store.IsPublic("avatars") {
		t.Fatalf("avatars should be public")
	}
	if store.IsPublic("documents") {
		t.Fatalf("documents should be private")
	}

	if err := store.EnsureBucket("avatars", false); err != nil {
		t.Fatalf("re-ensure avatars: %v", err)
	}
	if store.IsPublic("avatars") {
		t.Fatalf("visibility flag should follow the latest EnsureBucket")
	}

	if err := store.EnsureBucket("../escape", false); err == nil {
		t.Fatalf("expected invalid bucket name to be rejected")
	}
}

func TestUploadRejectsPathTraversal(t *testing.T) {
	store := newTestStore(t)

	objectPath, err := store.Upload("documents", "../../outside.txt", "outside.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	// path.Clean confines the object inside the bucket.
	if strings.Contains(objectPath, "..") {
		t.Fatalf("cleaned path still contains traversal: %q", objectPath)
	}

	entries, err := store.List("documents", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Path, "..") {
			t.Fatalf("stored object escaped the bucket: %q", e.Path)
		}
	}
}

func TestSignedURLVerification(t *testing.T) {
	store := newTestStore(t)

	objectPath, err := store.Upload("documents", "reports/q3.pdf", "q3.pdf", strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	signed, err := store.SignedURL("documents", objectPath, time.Hour)
	if err != nil {
		t.Fatalf("signed url: %v", err)
	}
	u, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	token := u.Query().Get("token")
	expires, err := strconv.ParseInt(u.Query().Get("expires"), 10, 64)
	if err != nil {
		t.Fatalf("parse expires: %v", err)
	}

	if !store.VerifySignature("documents", objectPath, token, expires) {
		t.Fatalf("valid signature rejected")
	}
	if store.VerifySignature("documents", objectPath, "tampered", expires) {
		t.Fatalf("tampered token accepted")
	}
	if store.VerifySignature("documents", "reports/other.pdf", token, expires) {
		t.Fatalf("token accepted for a different object")
	}
	if store.VerifySignature("documents", objectPath, token, time.Now().UTC().Add(-time.Minute).Unix()) {
		t.Fatalf("expired signature accepted")
	}
}

func TestListFilterByPrefix(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Upload("documents", "reports/a.txt", "a.txt", strings.NewReader("a")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := store.Upload("documents", "invoices/b.txt", "b.txt", strings.NewReader("b")); err != nil {
		t.Fatalf("upload: %v", err)
	}

	reports, err := store.List("documents", "reports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reports) != 1 || reports[0].Path != "reports/a.txt" {
		t.Fatalf("unexpected prefix listing: %+v", reports)
	}

	all, err := store.List("documents", "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
}
