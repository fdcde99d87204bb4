package domain

import "time"

// Task status values as stored. Hyphenated inputs from older clients are
// normalized by NormalizeTaskStatus before they reach the store.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusBlocked    = "blocked"
)

const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

const (
	ToolStatusActive      = "active"
	ToolStatusMaintenance = "maintenance"
)

// DefaultSubcategory is the sentinel a document is moved to when its
// subcategory is deleted.
const DefaultSubcategory = "Geral"

// ToolCategoryNames maps the kebab-case category keys used on the wire to
// their display names. Single source of truth; callers must not re-derive it.
var ToolCategoryNames = map[string]string{
	"fast-processing": "Fast Processing",
	"creative-suite":  "Creative Suite",
	"smart-coding":    "Smart Coding",
}

// ToolCategoryName resolves a category key to its display name, falling back
// to the key itself for categories outside the fixed table.
func ToolCategoryName(key string) string {
	if name, ok := ToolCategoryNames[key]; ok {
		return name
	}
	return key
}

// NormalizeTaskStatus maps legacy status spellings onto the canonical set.
// "in-progress" was the hyphenated form one client layer used; "canceled"
// occupied the slot "blocked" does now.
func NormalizeTaskStatus(status string) string {
	switch status {
	case "in-progress", TaskStatusInProgress:
		return TaskStatusInProgress
	case "canceled", "cancelled", TaskStatusBlocked:
		return TaskStatusBlocked
	case TaskStatusCompleted:
		return TaskStatusCompleted
	default:
		return TaskStatusTodo
	}
}

type Tool struct {
	ID          string
	Name        string
	Description string
	Status      string
	Category    string
	LastUpdated time.Time
	ImageURL    string
	APIEndpoint string
	IsPublic    bool
	CreatedBy   string
	CreatedAt   time.Time
}

type ToolIntegration struct {
	ID              string
	ToolID          string
	IntegrationType string
	IntegrationURL  string
	APIKey          string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ToolUsageStat struct {
	ID         string
	ToolID     string
	UserID     string
	UsageDate  string
	UsageCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Document struct {
	ID          string
	Title       string
	Description string
	Category    string
	Subcategory string
	FileURL     string
	FileType    string
	FileSize    int64
	CreatedBy   string
	LastUpdated time.Time
	CreatedAt   time.Time
}

type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Subcategory struct {
	ID         string
	CategoryID string
	Name       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Task struct {
	ID          string
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	AssigneeID  string
	Progress    int
	CreatedBy   string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

type TaskTag struct {
	ID     string
	TaskID string
	Tag    string
}

type TaskComment struct {
	ID        string
	TaskID    string
	UserID    string
	Comment   string
	CreatedAt time.Time
}

type TaskAttachment struct {
	ID         string
	TaskID     string
	FileName   string
	FileURL    string
	FileType   string
	FileSize   int64
	UploadedBy string
	CreatedAt  time.Time
}

// TaskDetail is the composed read of a task row and its dependent
// collections. The slices are always non-nil, even when empty.
type TaskDetail struct {
	Task        Task
	Tags        []TaskTag
	Comments    []TaskComment
	Attachments []TaskAttachment
}

type UserProfile struct {
	ID        string
	FullName  string
	Email     string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserSettings holds the four settings partitions as raw JSON blobs, one row
// per user, replaced wholesale on every save.
type UserSettings struct {
	UserID             string
	GeneralSettings    []byte
	AccountSettings    []byte
	AppearanceSettings []byte
	SecuritySettings   []byte
	UpdatedAt          time.Time
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AuthSession struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type APIToken struct {
	ID        string
	UserID    string
	Name      string
	TokenHash string
	ExpiresAt *time.Time
	CreatedAt time.Time
}

type Identity struct {
	User User
}
