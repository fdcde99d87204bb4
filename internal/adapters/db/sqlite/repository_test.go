package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/workdeckhq/workdeck/internal/domain"
)

func newTestRepo(t *testing.T) *DashboardRepository {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "workdeck_test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return NewDashboardRepository(db)
}

func TestToolLifecycleAndCategoryFilter(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created, err := repo.CreateTool(ctx, domain.Tool{Name: "Renderer", Status: domain.ToolStatusActive, Category: "Creative Suite"})
	if err != nil {
		t.Fatalf("create tool: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if created.LastUpdated.IsZero() || created.CreatedAt.IsZero() {
		t.Fatalf("expected server-stamped timestamps, got %+v", created)
	}

	_, err = repo.CreateTool(ctx, domain.Tool{Name: "Linter", Status: domain.ToolStatusMaintenance, Category: "Smart Coding"})
	if err != nil {
		t.Fatalf("create second tool: %v", err)
	}

	creative, err := repo.ListTools(ctx, "Creative Suite")
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(creative) != 1 || creative[0].Name != "Renderer" {
		t.Fatalf("expected only Renderer in Creative Suite, got %+v", creative)
	}

	all, err := repo.ListTools(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(all))
	}

	newStatus := domain.ToolStatusMaintenance
	updated, err := repo.UpdateTool(ctx, created.ID, domain.ToolUpdate{Status: &newStatus})
	if err != nil {
		t.Fatalf("update tool: %v", err)
	}
	if updated.Status != domain.ToolStatusMaintenance {
		t.Fatalf("expected maintenance status, got %q", updated.Status)
	}
	if updated.Name != "Renderer" {
		t.Fatalf("partial update must not touch name, got %q", updated.Name)
	}
	if !updated.LastUpdated.After(created.LastUpdated) && !updated.LastUpdated.Equal(created.LastUpdated) {
		t.Fatalf("expected last_updated to move forward")
	}

	if err := repo.DeleteTool(ctx, created.ID); err != nil {
		t.Fatalf("delete tool: %v", err)
	}
	if _, err := repo.GetTool(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteTool(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestRecordToolUsageIncrementsSameDay(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	tool, err := repo.CreateTool(ctx, domain.Tool{Name: "Analyzer", Status: domain.ToolStatusActive})
	if err != nil {
		t.Fatalf("create tool: %v", err)
	}

	const day = "2026-08-31"
	if err := repo.RecordToolUsage(ctx, tool.ID, "user-1", day); err != nil {
		t.Fatalf("record usage: %v", err)
	}
	if err := repo.RecordToolUsage(ctx, tool.ID, "user-1", day); err != nil {
		t.Fatalf("record usage again: %v", err)
	}
	if err := repo.RecordToolUsage(ctx, tool.ID, "user-2", day); err != nil {
		t.Fatalf("record usage other user: %v", err)
	}

	stats, err := repo.ListToolUsageStats(ctx, tool.ID)
	if err != nil {
		t.Fatalf("list usage stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected one row per user per day, got %d rows", len(stats))
	}
	counts := map[string]int{}
	for _, s := range stats {
		counts[s.UserID] = s.UsageCount
	}
	if counts["user-1"] != 2 || counts["user-2"] != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestReassignDocumentsSubcategory(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, sub := range []string{"Contratos", "Contratos", "Faturas"} {
		if _, err := repo.CreateDocument(ctx, domain.Document{Title: "doc", Category: "Financeiro", Subcategory: sub}); err != nil {
			t.Fatalf("create document: %v", err)
		}
	}

	moved, err := repo.ReassignDocumentsSubcategory(ctx, "Contratos", domain.DefaultSubcategory)
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if moved != 2 {
		t.Fatalf("expected 2 documents moved, got %d", moved)
	}

	docs, err := repo.ListDocuments(ctx, "")
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	var geral, faturas int
	for _, d := range docs {
		switch d.Subcategory {
		case domain.DefaultSubcategory:
			geral++
		case "Faturas":
			faturas++
		}
	}
	if geral != 2 || faturas != 1 {
		t.Fatalf("unexpected distribution: geral=%d faturas=%d", geral, faturas)
	}
}

func TestReplaceTaskTagsIsWholesale(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	task, err := repo.CreateTask(ctx, domain.Task{Title: "Ship release", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityHigh})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	first, err := repo.ReplaceTaskTags(ctx, task.ID, []string{"backend", "urgent"})
	if err != nil {
		t.Fatalf("replace tags: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(first))
	}

	second, err := repo.ReplaceTaskTags(ctx, task.ID, []string{"frontend"})
	if err != nil {
		t.Fatalf("replace tags again: %v", err)
	}
	if len(second) != 1 || second[0].Tag != "frontend" {
		t.Fatalf("expected wholesale replacement, got %+v", second)
	}

	stored, err := repo.ListTaskTags(ctx, task.ID)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(stored) != 1 || stored[0].Tag != "frontend" {
		t.Fatalf("old tags must be gone, got %+v", stored)
	}

	cleared, err := repo.ReplaceTaskTags(ctx, task.ID, nil)
	if err != nil {
		t.Fatalf("clear tags: %v", err)
	}
	if len(cleared) != 0 {
		t.Fatalf("expected no tags after clearing, got %+v", cleared)
	}
}

func TestTaskUpdateClearsCompletedAt(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	task, err := repo.CreateTask(ctx, domain.Task{Title: "Audit", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityMedium})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	done := time.Now().UTC()
	status := domain.TaskStatusCompleted
	progress := 100
	updated, err := repo.UpdateTask(ctx, task.ID, domain.TaskUpdate{Status: &status, Progress: &progress, CompletedAt: &done})
	if err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatalf("expected completed_at to be set")
	}

	status = domain.TaskStatusInProgress
	progress = 40
	reopened, err := repo.UpdateTask(ctx, task.ID, domain.TaskUpdate{Status: &status, Progress: &progress, ClearCompletedAt: true})
	if err != nil {
		t.Fatalf("reopen task: %v", err)
	}
	if reopened.CompletedAt != nil {
		t.Fatalf("expected completed_at cleared, got %v", reopened.CompletedAt)
	}
	if reopened.Progress != 40 {
		t.Fatalf("expected progress 40, got %d", reopened.Progress)
	}
}

func TestDeleteSubcategoriesBulk(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	cat, err := repo.CreateCategory(ctx, domain.Category{Name: "Financeiro"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	var ids []string
	for _, name := range []string{"Contratos", "Faturas", "Recibos"} {
		sub, err := repo.CreateSubcategory(ctx, domain.Subcategory{CategoryID: cat.ID, Name: name})
		if err != nil {
			t.Fatalf("create subcategory: %v", err)
		}
		ids = append(ids, sub.ID)
	}

	if err := repo.DeleteSubcategories(ctx, ids[:2]); err != nil {
		t.Fatalf("bulk delete: %v", err)
	}

	remaining, err := repo.ListSubcategories(ctx, cat.ID)
	if err != nil {
		t.Fatalf("list subcategories: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Name != "Recibos" {
		t.Fatalf("expected only Recibos left, got %+v", remaining)
	}

	if err := repo.DeleteSubcategories(ctx, nil); err != nil {
		t.Fatalf("empty bulk delete should be a no-op: %v", err)
	}
}

func TestUpsertUserSettingsReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.GetUserSettings(ctx, "user-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	first, err := repo.UpsertUserSettings(ctx, domain.UserSettings{
		UserID:             "user-1",
		GeneralSettings:    []byte(`{"language":"pt"}`),
		AppearanceSettings: []byte(`{"theme":"dark"}`),
	})
	if err != nil {
		t.Fatalf("upsert settings: %v", err)
	}
	if string(first.GeneralSettings) != `{"language":"pt"}` {
		t.Fatalf("unexpected general settings: %s", first.GeneralSettings)
	}

	second, err := repo.UpsertUserSettings(ctx, domain.UserSettings{
		UserID:          "user-1",
		GeneralSettings: []byte(`{"language":"en"}`),
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if string(second.GeneralSettings) != `{"language":"en"}` {
		t.Fatalf("expected replaced general settings, got %s", second.GeneralSettings)
	}
	if len(second.AppearanceSettings) != 0 {
		t.Fatalf("save is wholesale; appearance should be empty, got %s", second.AppearanceSettings)
	}

	got, err := repo.GetUserSettings(ctx, "user-1")
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if string(got.GeneralSettings) != `{"language":"en"}` {
		t.Fatalf("unexpected stored settings: %s", got.GeneralSettings)
	}
}

func TestSessionAndTokenLookupByHash(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	user, err := repo.CreateUser(ctx, domain.User{Email: "ops@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	sess, err := repo.CreateSession(ctx, domain.AuthSession{UserID: user.ID, TokenHash: "hash-1", ExpiresAt: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	found, err := repo.GetSessionByTokenHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("lookup session: %v", err)
	}
	if found.ID != sess.ID || found.UserID != user.ID {
		t.Fatalf("unexpected session: %+v", found)
	}

	if err := repo.DeleteSessionByTokenHash(ctx, "hash-1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := repo.GetSessionByTokenHash(ctx, "hash-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if _, err := repo.CreateAPIToken(ctx, domain.APIToken{UserID: user.ID, Name: "cli", TokenHash: "hash-2"}); err != nil {
		t.Fatalf("create api token: %v", err)
	}
	token, err := repo.GetAPITokenByTokenHash(ctx, "hash-2")
	if err != nil {
		t.Fatalf("lookup api token: %v", err)
	}
	if token.UserID != user.ID || token.Name != "cli" {
		t.Fatalf("unexpected token: %+v", token)
	}
}
