package sqlite

import (
	"time"

	"gorm.io/datatypes"
)

type ToolModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null;index"`
	Description string
	Status      string `gorm:"not null;default:'active'"`
	Category    string `gorm:"index"`
	LastUpdated time.Time
	ImageURL    string
	APIEndpoint string
	IsPublic    bool `gorm:"not null;default:false"`
	CreatedBy   string
	CreatedAt   time.Time
}

func (ToolModel) TableName() string { return "tools" }

type ToolIntegrationModel struct {
	ID              string `gorm:"primaryKey"`
	ToolID          string `gorm:"not null;index"`
	IntegrationType string `gorm:"not null"`
	IntegrationURL  string
	APIKey          string
	Status          string `gorm:"not null;default:'active'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ToolIntegrationModel) TableName() string { return "tool_integrations" }

type ToolUsageStatModel struct {
	ID         string `gorm:"primaryKey"`
	ToolID     string `gorm:"not null;index:idx_tool_user_day,unique"`
	UserID     string `gorm:"not null;index:idx_tool_user_day,unique"`
	UsageDate  string `gorm:"not null;index:idx_tool_user_day,unique"`
	UsageCount int    `gorm:"not null;default:1"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ToolUsageStatModel) TableName() string { return "tool_usage_stats" }

type DocumentModel struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null;index"`
	Description string
	Category    string `gorm:"index"`
	Subcategory string `gorm:"index"`
	FileURL     string
	FileType    string
	FileSize    int64
	CreatedBy   string
	LastUpdated time.Time
	CreatedAt   time.Time
}

func (DocumentModel) TableName() string { return "documents" }

type CategoryModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null;uniqueIndex"`
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CategoryModel) TableName() string { return "document_categories" }

type SubcategoryModel struct {
	ID         string `gorm:"primaryKey"`
	CategoryID string `gorm:"not null;index"`
	Name       string `gorm:"not null;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (SubcategoryModel) TableName() string { return "document_subcategories" }

type TaskModel struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null;index"`
	Description string
	Status      string `gorm:"not null;default:'todo';index"`
	Priority    string `gorm:"not null;default:'medium'"`
	DueDate     *time.Time
	AssigneeID  string `gorm:"index"`
	Progress    int    `gorm:"not null;default:0"`
	CreatedBy   string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func (TaskModel) TableName() string { return "tasks" }

type TaskTagModel struct {
	ID     string `gorm:"primaryKey"`
	TaskID string `gorm:"not null;index"`
	Tag    string `gorm:"not null"`
}

func (TaskTagModel) TableName() string { return "task_tags" }

type TaskCommentModel struct {
	ID        string `gorm:"primaryKey"`
	TaskID    string `gorm:"not null;index"`
	UserID    string `gorm:"not null"`
	Comment   string `gorm:"not null"`
	CreatedAt time.Time
}

func (TaskCommentModel) TableName() string { return "task_comments" }

type TaskAttachmentModel struct {
	ID         string `gorm:"primaryKey"`
	TaskID     string `gorm:"not null;index"`
	FileName   string `gorm:"not null"`
	FileURL    string `gorm:"not null"`
	FileType   string
	FileSize   int64
	UploadedBy string
	CreatedAt  time.Time
}

func (TaskAttachmentModel) TableName() string { return "task_attachments" }

type UserSettingsModel struct {
	UserID             string `gorm:"primaryKey"`
	GeneralSettings    datatypes.JSON
	AccountSettings    datatypes.JSON
	AppearanceSettings datatypes.JSON
	SecuritySettings   datatypes.JSON
	UpdatedAt          time.Time
}

func (UserSettingsModel) TableName() string { return "user_settings" }

type UserProfileModel struct {
	ID        string `gorm:"primaryKey"`
	FullName  string
	Email     string `gorm:"index"`
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserProfileModel) TableName() string { return "profiles" }

type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserModel) TableName() string { return "users" }

type SessionModel struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"not null;index"`
	TokenHash string `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (SessionModel) TableName() string { return "sessions" }

type APITokenModel struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"not null;index"`
	Name      string `gorm:"not null"`
	TokenHash string `gorm:"not null;uniqueIndex"`
	ExpiresAt *time.Time
	CreatedAt time.Time
}

func (APITokenModel) TableName() string { return "api_tokens" }
