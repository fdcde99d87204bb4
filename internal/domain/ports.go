package domain

import (
	"context"
	"io"
	"time"
)

// Partial updates carry only the fields the caller provided; nil means "not
// provided" and is omitted from the column update. Timestamps are always
// server-stamped by the repository, never taken from the caller.

type ToolUpdate struct {
	Name        *string
	Description *string
	Status      *string
	Category    *string
	ImageURL    *string
	APIEndpoint *string
	IsPublic    *bool
}

type ToolIntegrationUpdate struct {
	IntegrationType *string
	IntegrationURL  *string
	APIKey          *string
	Status          *string
}

type DocumentUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Subcategory *string
	FileURL     *string
	FileType    *string
	FileSize    *int64
}

type CategoryUpdate struct {
	Name        *string
	Description *string
}

type SubcategoryUpdate struct {
	Name       *string
	CategoryID *string
}

type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	AssigneeID  *string
	Progress    *int
	CompletedAt *time.Time
	// ClearCompletedAt nulls the completion stamp; a nil CompletedAt alone
	// means "not provided".
	ClearCompletedAt bool
}

type DashboardRepository interface {
	ListTools(ctx context.Context, category string) ([]Tool, error)
	GetTool(ctx context.Context, id string) (Tool, error)
	CreateTool(ctx context.Context, value Tool) (Tool, error)
	UpdateTool(ctx context.Context, id string, partial ToolUpdate) (Tool, error)
	DeleteTool(ctx context.Context, id string) error

	ListToolIntegrations(ctx context.Context, toolID string) ([]ToolIntegration, error)
	CreateToolIntegration(ctx context.Context, value ToolIntegration) (ToolIntegration, error)
	UpdateToolIntegration(ctx context.Context, id string, partial ToolIntegrationUpdate) (ToolIntegration, error)
	DeleteToolIntegration(ctx context.Context, id string) error

	ListToolUsageStats(ctx context.Context, toolID string) ([]ToolUsageStat, error)
	RecordToolUsage(ctx context.Context, toolID, userID, usageDate string) error

	ListDocuments(ctx context.Context, category string) ([]Document, error)
	GetDocument(ctx context.Context, id string) (Document, error)
	CreateDocument(ctx context.Context, value Document) (Document, error)
	UpdateDocument(ctx context.Context, id string, partial DocumentUpdate) (Document, error)
	DeleteDocument(ctx context.Context, id string) error
	ReassignDocumentsSubcategory(ctx context.Context, subcategory, replacement string) (int64, error)

	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id string) (Category, error)
	CreateCategory(ctx context.Context, value Category) (Category, error)
	UpdateCategory(ctx context.Context, id string, partial CategoryUpdate) (Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListSubcategories(ctx context.Context, categoryID string) ([]Subcategory, error)
	GetSubcategory(ctx context.Context, id string) (Subcategory, error)
	CreateSubcategory(ctx context.Context, value Subcategory) (Subcategory, error)
	UpdateSubcategory(ctx context.Context, id string, partial SubcategoryUpdate) (Subcategory, error)
	DeleteSubcategories(ctx context.Context, ids []string) error

	ListTasks(ctx context.Context, status string) ([]Task, error)
	GetTask(ctx context.Context, id string) (Task, error)
	CreateTask(ctx context.Context, value Task) (Task, error)
	UpdateTask(ctx context.Context, id string, partial TaskUpdate) (Task, error)
	DeleteTask(ctx context.Context, id string) error

	ListTaskTags(ctx context.Context, taskID string) ([]TaskTag, error)
	ReplaceTaskTags(ctx context.Context, taskID string, tags []string) ([]TaskTag, error)

	ListTaskComments(ctx context.Context, taskID string) ([]TaskComment, error)
	CreateTaskComment(ctx context.Context, value TaskComment) (TaskComment, error)
	UpdateTaskComment(ctx context.Context, id, comment string) (TaskComment, error)
	DeleteTaskComment(ctx context.Context, id string) error

	ListTaskAttachments(ctx context.Context, taskID string) ([]TaskAttachment, error)
	GetTaskAttachment(ctx context.Context, id string) (TaskAttachment, error)
	CreateTaskAttachment(ctx context.Context, value TaskAttachment) (TaskAttachment, error)
	DeleteTaskAttachment(ctx context.Context, id string) error

	GetUserSettings(ctx context.Context, userID string) (UserSettings, error)
	UpsertUserSettings(ctx context.Context, value UserSettings) (UserSettings, error)
	GetUserProfile(ctx context.Context, id string) (UserProfile, error)
	UpsertUserProfile(ctx context.Context, value UserProfile) (UserProfile, error)

	CreateUser(ctx context.Context, value User) (User, error)
	CountUsers(ctx context.Context) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	CreateSession(ctx context.Context, value AuthSession) (AuthSession, error)
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (AuthSession, error)
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error
	CreateAPIToken(ctx context.Context, value APIToken) (APIToken, error)
	GetAPITokenByTokenHash(ctx context.Context, tokenHash string) (APIToken, error)
}

// BlobEntry describes one stored object inside a bucket.
type BlobEntry struct {
	Path      string
	Size      int64
	UpdatedAt time.Time
}

// BlobStore is a bucket-scoped object store. There is no transactional link
// between blob operations and repository rows; callers own the sequencing.
type BlobStore interface {
	EnsureBucket(bucket string, public bool) error
	Upload(bucket, path, filename string, r io.Reader) (string, error)
	PublicURL(bucket, path string) string
	SignedURL(bucket, path string, expiresIn time.Duration) (string, error)
	Open(bucket, path string) (io.ReadCloser, error)
	Delete(bucket, path string) error
	List(bucket, prefix string) ([]BlobEntry, error)
	IsPublic(bucket string) bool
	VerifySignature(bucket, path, token string, expires int64) bool
}
