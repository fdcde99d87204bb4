package application

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/workdeckhq/workdeck/internal/adapters/db/sqlite"
	"github.com/workdeckhq/workdeck/internal/adapters/storage"
	"github.com/workdeckhq/workdeck/internal/domain"
)

func newTestService(t *testing.T) *DashboardService {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	db, err := sqlite.Open(filepath.Join(dir, "workdeck_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := sqlite.RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	blobs, err := storage.NewFileStore(filepath.Join(dir, "blobs"), "http://localhost:8080", []byte("test-key"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	svc := NewDashboardService(sqlite.NewDashboardRepository(db), blobs)
	if err := svc.EnsureBuckets(); err != nil {
		t.Fatalf("ensure buckets: %v", err)
	}
	return svc
}

func TestCreateToolValidatesBeforeStore(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.CreateTool(ctx, CreateToolInput{Name: "   "}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if _, err := svc.CreateTool(ctx, CreateToolInput{Name: "T", Status: "retired"}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	tools, err := svc.ListTools(ctx, "")
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	if len(tools) != 0 {
		t.Fatalf("rejected inputs must not reach the store, got %d rows", len(tools))
	}
}

func TestCreateToolMapsCategoryKey(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	tool, err := svc.CreateTool(ctx, CreateToolInput{Name: "Painter", Status: domain.ToolStatusActive, Category: "creative-suite"})
	if err != nil {
		t.Fatalf("create tool: %v", err)
	}
	if tool.Category != "Creative Suite" {
		t.Fatalf("expected mapped display name, got %q", tool.Category)
	}

	other, err := svc.CreateTool(ctx, CreateToolInput{Name: "Custom", Category: "bespoke-stuff"})
	if err != nil {
		t.Fatalf("create tool with unknown category: %v", err)
	}
	if other.Category != "bespoke-stuff" {
		t.Fatalf("unknown keys pass through unchanged, got %q", other.Category)
	}
}

func TestUpdateTaskProgressCouplesStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	task, err := svc.CreateTask(ctx, CreateTaskInput{Title: "Migrate data"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := svc.UpdateTaskProgress(ctx, task.ID, 101); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for progress > 100, got %v", err)
	}
	if _, err := svc.UpdateTaskProgress(ctx, task.ID, -1); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for negative progress, got %v", err)
	}

	done, err := svc.UpdateTaskProgress(ctx, task.ID, 100)
	if err != nil {
		t.Fatalf("set progress 100: %v", err)
	}
	if done.Status != domain.TaskStatusCompleted {
		t.Fatalf("expected completed status, got %q", done.Status)
	}
	if done.CompletedAt == nil {
		t.Fatalf("expected completion stamp")
	}

	reopened, err := svc.UpdateTaskProgress(ctx, task.ID, 60)
	if err != nil {
		t.Fatalf("set progress 60: %v", err)
	}
	if reopened.Status != domain.TaskStatusInProgress {
		t.Fatalf("expected in_progress status, got %q", reopened.Status)
	}
	if reopened.CompletedAt != nil {
		t.Fatalf("expected completion stamp cleared, got %v", reopened.CompletedAt)
	}
	if reopened.Progress != 60 {
		t.Fatalf("expected progress 60, got %d", reopened.Progress)
	}
}

func TestGenericUpdateCouplesProgressToStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	task, err := svc.CreateTask(ctx, CreateTaskInput{Title: "Ship release"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	full := 100
	done, err := svc.UpdateTask(ctx, task.ID, domain.TaskUpdate{Progress: &full})
	if err != nil {
		t.Fatalf("update with progress 100: %v", err)
	}
	if done.Status != domain.TaskStatusCompleted {
		t.Fatalf("expected completed status, got %q", done.Status)
	}
	if done.CompletedAt == nil {
		t.Fatalf("expected completion stamp")
	}

	// A caller-supplied status loses to the progress coupling.
	partway := 40
	blocked := domain.TaskStatusBlocked
	reopened, err := svc.UpdateTask(ctx, task.ID, domain.TaskUpdate{Progress: &partway, Status: &blocked})
	if err != nil {
		t.Fatalf("update with progress 40: %v", err)
	}
	if reopened.Status != domain.TaskStatusInProgress {
		t.Fatalf("expected in_progress status, got %q", reopened.Status)
	}
	if reopened.CompletedAt != nil {
		t.Fatalf("expected completion stamp cleared, got %v", reopened.CompletedAt)
	}

	over := 101
	if _, err := svc.UpdateTask(ctx, task.ID, domain.TaskUpdate{Progress: &over}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for progress > 100, got %v", err)
	}
}

func TestCreateTaskNormalizesStatusAndCleansTags(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	task, err := svc.CreateTask(ctx, CreateTaskInput{
		Title:  "Review PR",
		Status: "in-progress",
		Tags:   []string{" backend ", "backend", "", "infra"},
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != domain.TaskStatusInProgress {
		t.Fatalf("expected normalized status, got %q", task.Status)
	}

	detail, err := svc.GetTaskDetail(ctx, task.ID)
	if err != nil {
		t.Fatalf("get detail: %v", err)
	}
	if len(detail.Tags) != 2 {
		t.Fatalf("expected trimmed deduped tags, got %+v", detail.Tags)
	}
	if detail.Comments == nil || detail.Attachments == nil {
		t.Fatalf("detail slices must be non-nil")
	}
}

func TestGetTaskDetailMissingTask(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.GetTaskDetail(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCategoryRemovesSubcategoriesFirst(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	cat, err := svc.CreateCategory(ctx, "Financeiro", "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	for _, name := range []string{"Contratos", "Faturas"} {
		if _, err := svc.CreateSubcategory(ctx, name, cat.ID); err != nil {
			t.Fatalf("create subcategory: %v", err)
		}
	}

	if err := svc.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	subs, err := svc.ListSubcategories(ctx, cat.ID)
	if err != nil {
		t.Fatalf("list subcategories: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("expected subcategories gone, got %+v", subs)
	}
	if err := svc.DeleteCategory(ctx, cat.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing category, got %v", err)
	}
}

func TestCreateSubcategoryRequiresExistingCategory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.CreateSubcategory(ctx, "Contratos", "missing-id"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing parent, got %v", err)
	}
}

func TestDeleteSubcategoryMovesDocumentsToGeral(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	cat, err := svc.CreateCategory(ctx, "Financeiro", "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	sub, err := svc.CreateSubcategory(ctx, "Contratos", cat.ID)
	if err != nil {
		t.Fatalf("create subcategory: %v", err)
	}
	doc, err := svc.CreateDocument(ctx, CreateDocumentInput{Title: "Contrato 2026", Category: "Financeiro", Subcategory: "Contratos"})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}

	if err := svc.DeleteSubcategory(ctx, sub.ID); err != nil {
		t.Fatalf("delete subcategory: %v", err)
	}

	moved, err := svc.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if moved.Subcategory != domain.DefaultSubcategory {
		t.Fatalf("expected document in %q, got %q", domain.DefaultSubcategory, moved.Subcategory)
	}
}

func TestUploadAndDeleteDocumentWithFile(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	doc, err := svc.UploadDocument(ctx, CreateDocumentInput{Title: "Manual"}, "manual.pdf", 7, strings.NewReader("pdfdata"))
	if err != nil {
		t.Fatalf("upload document: %v", err)
	}
	if doc.FileSize != 7 {
		t.Fatalf("expected size 7, got %d", doc.FileSize)
	}

	bucket, path, ok := ParseStoredPath(doc.FileURL)
	if !ok {
		t.Fatalf("stored URL not parseable: %q", doc.FileURL)
	}
	if bucket != BucketDocuments {
		t.Fatalf("expected documents bucket, got %q", bucket)
	}
	f, err := svc.blobs.Open(bucket, path)
	if err != nil {
		t.Fatalf("open uploaded blob: %v", err)
	}
	data, _ := io.ReadAll(f)
	_ = f.Close()
	if string(data) != "pdfdata" {
		t.Fatalf("unexpected blob contents %q", data)
	}

	if err := svc.DeleteDocumentWithFile(ctx, doc.ID); err != nil {
		t.Fatalf("delete document: %v", err)
	}
	if _, err := svc.GetDocument(ctx, doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected row gone, got %v", err)
	}
	if _, err := svc.blobs.Open(bucket, path); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected blob gone, got %v", err)
	}
}

func TestDocumentDownloadURLSignsPrivateFiles(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	doc, err := svc.UploadDocument(ctx, CreateDocumentInput{Title: "Playbook"}, "playbook.pdf", 3, strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("upload document: %v", err)
	}
	bucket, path, ok := ParseStoredPath(doc.FileURL)
	if !ok {
		t.Fatalf("stored URL not parseable: %q", doc.FileURL)
	}

	signed, err := svc.DocumentDownloadURL(ctx, doc.ID)
	if err != nil {
		t.Fatalf("download url: %v", err)
	}
	if signed == doc.FileURL {
		t.Fatalf("expected signed URL distinct from stored URL for a private bucket")
	}
	parsed, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	expires, err := strconv.ParseInt(parsed.Query().Get("expires"), 10, 64)
	if err != nil {
		t.Fatalf("parse expires: %v", err)
	}
	if !svc.blobs.VerifySignature(bucket, path, parsed.Query().Get("token"), expires) {
		t.Fatalf("signed URL does not verify")
	}

	external, err := svc.CreateDocument(ctx, CreateDocumentInput{Title: "Handbook", FileURL: "https://example.com/handbook.pdf"})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	got, err := svc.DocumentDownloadURL(ctx, external.ID)
	if err != nil {
		t.Fatalf("download url for external file: %v", err)
	}
	if got != "https://example.com/handbook.pdf" {
		t.Fatalf("expected external URL unchanged, got %q", got)
	}

	if _, err := svc.DocumentDownloadURL(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUploadTaskAttachmentAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	task, err := svc.CreateTask(ctx, CreateTaskInput{Title: "Attach things"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	att, err := svc.UploadTaskAttachment(ctx, task.ID, "notes.txt", "text/plain", 5, "user-1", strings.NewReader("notes"))
	if err != nil {
		t.Fatalf("upload attachment: %v", err)
	}
	if att.UploadedBy != "user-1" {
		t.Fatalf("expected uploader recorded, got %q", att.UploadedBy)
	}
	if att.FileType != "text/plain" {
		t.Fatalf("expected content type recorded, got %q", att.FileType)
	}
	bucket, path, ok := ParseStoredPath(att.FileURL)
	if !ok {
		t.Fatalf("attachment URL not parseable: %q", att.FileURL)
	}

	if err := svc.DeleteTaskAttachment(ctx, att.ID); err != nil {
		t.Fatalf("delete attachment: %v", err)
	}
	if _, err := svc.blobs.Open(bucket, path); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected blob gone, got %v", err)
	}
	remaining, err := svc.ListTaskAttachments(ctx, task.ID)
	if err != nil {
		t.Fatalf("list attachments: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no attachments left, got %+v", remaining)
	}
}

func TestUploadTaskAttachmentMissingTask(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.UploadTaskAttachment(ctx, "missing", "notes.txt", "text/plain", 5, "user-1", strings.NewReader("notes"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordUsageValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if err := svc.RecordUsage(ctx, "", "user-1"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for missing tool_id, got %v", err)
	}
	if err := svc.RecordUsage(ctx, "tool-1", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for missing user_id, got %v", err)
	}
}

func TestParseStoredPath(t *testing.T) {
	cases := []struct {
		in     string
		bucket string
		path   string
		ok     bool
	}{
		{"http://localhost:8080/storage/documents/abc/file.pdf", "documents", "abc/file.pdf", true},
		{"http://localhost:8080/storage/documents/abc/file.pdf?expires=1&token=x", "documents", "abc/file.pdf", true},
		{"http://localhost:8080/storage/documents/", "", "", false},
		{"http://example.com/other/path", "", "", false},
		{"", "", "", false},
	}
	for _, c := range cases {
		bucket, path, ok := ParseStoredPath(c.in)
		if ok != c.ok || bucket != c.bucket || path != c.path {
			t.Fatalf("ParseStoredPath(%q) = (%q, %q, %v), want (%q, %q, %v)", c.in, bucket, path, ok, c.bucket, c.path, c.ok)
		}
	}
}
