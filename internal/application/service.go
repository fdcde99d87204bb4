package application

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/workdeckhq/workdeck/internal/domain"
)

const (
	BucketAvatars    = "avatars"
	BucketDocuments  = "documents"
	BucketToolImages = "tool_images"
)

type DashboardService struct {
	repo  domain.DashboardRepository
	blobs domain.BlobStore
}

func NewDashboardService(repo domain.DashboardRepository, blobs domain.BlobStore) *DashboardService {
	return &DashboardService{repo: repo, blobs: blobs}
}

// EnsureBuckets prepares the three well-known buckets. Safe to call on every
// boot.
func (s *DashboardService) EnsureBuckets() error {
	if err := s.blobs.EnsureBucket(BucketAvatars, true); err != nil {
		return err
	}
	if err := s.blobs.EnsureBucket(BucketDocuments, false); err != nil {
		return err
	}
	return s.blobs.EnsureBucket(BucketToolImages, true)
}

// requiredOnCreate rejects a missing or blank required field.
func requiredOnCreate(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.Validationf(field, "is required")
	}
	return nil
}

// requiredOnUpdate rejects a field only when it was provided and explicitly
// cleared; an omitted field passes, since partial updates may skip fields.
func requiredOnUpdate(field string, value *string) error {
	if value != nil && strings.TrimSpace(*value) == "" {
		return domain.Validationf(field, "cannot be empty")
	}
	return nil
}

type CreateToolInput struct {
	Name        string
	Description string
	Status      string
	Category    string
	ImageURL    string
	APIEndpoint string
	IsPublic    bool
	CreatedBy   string
}

func (s *DashboardService) ListTools(ctx context.Context, category string) ([]domain.Tool, error) {
	return s.repo.ListTools(ctx, category)
}

func (s *DashboardService) GetTool(ctx context.Context, id string) (domain.Tool, error) {
	if id == "" {
		return domain.Tool{}, domain.Validationf("id", "is required")
	}
	return s.repo.GetTool(ctx, id)
}

func (s *DashboardService) CreateTool(ctx context.Context, in CreateToolInput) (domain.Tool, error) {
	if err := requiredOnCreate("name", in.Name); err != nil {
		return domain.Tool{}, err
	}
	status := in.Status
	if status != "" && status != domain.ToolStatusActive && status != domain.ToolStatusMaintenance {
		return domain.Tool{}, domain.Validationf("status", "must be %q or %q", domain.ToolStatusActive, domain.ToolStatusMaintenance)
	}
	return s.repo.CreateTool(ctx, domain.Tool{
		Name:        in.Name,
		Description: in.Description,
		Status:      status,
		Category:    domain.ToolCategoryName(in.Category),
		ImageURL:    in.ImageURL,
		APIEndpoint: in.APIEndpoint,
		IsPublic:    in.IsPublic,
		CreatedBy:   in.CreatedBy,
	})
}

func (s *DashboardService) UpdateTool(ctx context.Context, id string, partial domain.ToolUpdate) (domain.Tool, error) {
	if id == "" {
		return domain.Tool{}, domain.Validationf("id", "is required")
	}
	if err := requiredOnUpdate("name", partial.Name); err != nil {
		return domain.Tool{}, err
	}
	if partial.Status != nil && *partial.Status != domain.ToolStatusActive && *partial.Status != domain.ToolStatusMaintenance {
		return domain.Tool{}, domain.Validationf("status", "must be %q or %q", domain.ToolStatusActive, domain.ToolStatusMaintenance)
	}
	if partial.Category != nil {
		mapped := domain.ToolCategoryName(*partial.Category)
		partial.Category = &mapped
	}
	return s.repo.UpdateTool(ctx, id, partial)
}

func (s *DashboardService) DeleteTool(ctx context.Context, id string) error {
	if id == "" {
		return domain.Validationf("id", "is required")
	}
	return s.repo.DeleteTool(ctx, id)
}

// UploadToolImage stores an image in the tool_images bucket and points the
// tool's image_url at it.
func (s *DashboardService) UploadToolImage(ctx context.Context, toolID, filename string, r io.Reader) (domain.Tool, error) {
	if toolID == "" {
		return domain.Tool{}, domain.Validationf("id", "is required")
	}
	if _, err := s.repo.GetTool(ctx, toolID); err != nil {
		return domain.Tool{}, err
	}
	path, err := s.blobs.Upload(BucketToolImages, "", filename, r)
	if err != nil {
		return domain.Tool{}, err
	}
	url := s.blobs.PublicURL(BucketToolImages, path)
	return s.repo.UpdateTool(ctx, toolID, domain.ToolUpdate{ImageURL: &url})
}

func (s *DashboardService) ListToolIntegrations(ctx context.Context, toolID string) ([]domain.ToolIntegration, error) {
	return s.repo.ListToolIntegrations(ctx, toolID)
}

func (s *DashboardService) CreateToolIntegration(ctx context.Context, value domain.ToolIntegration) (domain.ToolIntegration, error) {
	if err := requiredOnCreate("tool_id", value.ToolID); err != nil {
		return domain.ToolIntegration{}, err
	}
	if err := requiredOnCreate("integration_type", value.IntegrationType); err != nil {
		return domain.ToolIntegration{}, err
	}
	if _, err := s.repo.GetTool(ctx, value.ToolID); err != nil {
		return domain.ToolIntegration{}, fmt.Errorf("tool %s: %w", value.ToolID, err)
	}
	return s.repo.CreateToolIntegration(ctx, value)
}

func (s *DashboardService) UpdateToolIntegration(ctx context.Context, id string, partial domain.ToolIntegrationUpdate) (domain.ToolIntegration, error) {
	if id == "" {
		return domain.ToolIntegration{}, domain.Validationf("id", "is required")
	}
	if err := requiredOnUpdate("integration_type", partial.IntegrationType); err != nil {
		return domain.ToolIntegration{}, err
	}
	return s.repo.UpdateToolIntegration(ctx, id, partial)
}

func (s *DashboardService) DeleteToolIntegration(ctx context.Context, id string) error {
	if id == "" {
		return domain.Validationf("id", "is required")
	}
	return s.repo.DeleteToolIntegration(ctx, id)
}

func (s *DashboardService) ListToolUsageStats(ctx context.Context, toolID string) ([]domain.ToolUsageStat, error) {
	return s.repo.ListToolUsageStats(ctx, toolID)
}

// RecordUsage counts one use of a tool by a user for today (UTC). The
// increment is atomic in the store.
func (s *DashboardService) RecordUsage(ctx context.Context, toolID, userID string) error {
	if err := requiredOnCreate("tool_id", toolID); err != nil {
		return err
	}
	if err := requiredOnCreate("user_id", userID); err != nil {
		return err
	}
	today := time.Now().UTC().Format("2006-01-02")
	return s.repo.RecordToolUsage(ctx, toolID, userID, today)
}

type CreateDocumentInput struct {
	Title       string
	Description string
	Category    string
	Subcategory string
	FileURL     string
	FileType    string
	FileSize    int64
	CreatedBy   string
}

func (s *DashboardService) ListDocuments(ctx context.Context, category string) ([]domain.Document, error) {
	return s.repo.ListDocuments(ctx, category)
}

func (s *DashboardService) GetDocument(ctx context.Context, id string) (domain.Document, error) {
	if id == "" {
		return domain.Document{}, domain.Validationf("id", "is required")
	}
	return s.repo.GetDocument(ctx, id)
}

func (s *DashboardService) CreateDocument(ctx context.Context, in CreateDocumentInput) (domain.Document, error) {
	if err := requiredOnCreate("title", in.Title); err != nil {
		return domain.Document{}, err
	}
	return s.repo.CreateDocument(ctx, domain.Document{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		FileURL:     in.FileURL,
		FileType:    in.FileType,
		FileSize:    in.FileSize,
		CreatedBy:   in.CreatedBy,
	})
}

func (s *DashboardService) UpdateDocument(ctx context.Context, id string, partial domain.DocumentUpdate) (domain.Document, error) {
	if id == "" {
		return domain.Document{}, domain.Validationf("id", "is required")
	}
	if err := requiredOnUpdate("title", partial.Title); err != nil {
		return domain.Document{}, err
	}
	return s.repo.UpdateDocument(ctx, id, partial)
}

func (s *DashboardService) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return domain.Validationf("id", "is required")
	}
	return s.repo.DeleteDocument(ctx, id)
}

// UploadDocument runs the three-step upload orchestration: write the blob to
// the documents bucket under a generated path, resolve its public URL, then
// create the row. The steps are not transactional; if the row insert fails
// the uploaded blob stays behind as an orphan.
func (s *DashboardService) UploadDocument(ctx context.Context, in CreateDocumentInput, filename string, size int64, r io.Reader) (domain.Document, error) {
	if err := requiredOnCreate("title", in.Title); err != nil {
		return domain.Document{}, err
	}
	if err := requiredOnCreate("file", filename); err != nil {
		return domain.Document{}, err
	}
	path, err := s.blobs.Upload(BucketDocuments, "", filename, r)
	if err != nil {
		return domain.Document{}, err
	}
	in.FileURL = s.blobs.PublicURL(BucketDocuments, path)
	in.FileSize = size
	return s.CreateDocument(ctx, in)
}

// DeleteDocumentWithFile removes the row first, then best-effort deletes the
// blob when a path can be recovered from the stored URL. A blob delete
// failure is not an error for the caller; the row is already gone.
func (s *DashboardService) DeleteDocumentWithFile(ctx context.Context, id string) error {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteDocument(ctx, id); err != nil {
		return err
	}
	if bucket, path, ok := ParseStoredPath(doc.FileURL); ok {
		_ = s.blobs.Delete(bucket, path)
	}
	return nil
}

// DocumentDownloadURL resolves a retrievable URL for the document's file.
// Files in a private bucket get a short-lived signed URL; public-bucket and
// externally hosted URLs pass through unchanged.
func (s *DashboardService) DocumentDownloadURL(ctx context.Context, id string) (string, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}
	return s.downloadURL(doc.FileURL)
}

func (s *DashboardService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *DashboardService) CreateCategory(ctx context.Context, name, description string) (domain.Category, error) {
	if err := requiredOnCreate("name", name); err != nil {
		return domain.Category{}, err
	}
	return s.repo.CreateCategory(ctx, domain.Category{Name: name, Description: description})
}

func (s *DashboardService) UpdateCategory(ctx context.Context, id string, partial domain.CategoryUpdate) (domain.Category, error) {
	if id == "" {
		return domain.Category{}, domain.Validationf("id", "is required")
	}
	if err := requiredOnUpdate("name", partial.Name); err != nil {
		return domain.Category{}, err
	}
	return s.repo.UpdateCategory(ctx, id, partial)
}

// DeleteCategory removes the category's subcategories before the category
// itself, in that order, to respect the foreign key. The two deletes are
// separate round trips: a failure after the first leaves the subcategories
// gone and the category present.
func (s *DashboardService) DeleteCategory(ctx context.Context, id string) error {
	if id == "" {
		return domain.Validationf("id", "is required")
	}
	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		return err
	}
	children, err := s.repo.ListSubcategories(ctx, id)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(children))
	for _, c := range children {
		ids = append(ids, c.ID)
	}
	if err := s.repo.DeleteSubcategories(ctx, ids); err != nil {
		return err
	}
	return s.repo.DeleteCategory(ctx, id)
}

func (s *DashboardService) ListSubcategories(ctx context.Context, categoryID string) ([]domain.Subcategory, error) {
	return s.repo.ListSubcategories(ctx, categoryID)
}

func (s *DashboardService) CreateSubcategory(ctx context.Context, name, categoryID string) (domain.Subcategory, error) {
	if err := requiredOnCreate("name", name); err != nil {
		return domain.Subcategory{}, err
	}
	if err := requiredOnCreate("category_id", categoryID); err != nil {
		return domain.Subcategory{}, err
	}
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return domain.Subcategory{}, fmt.Errorf("category %s: %w", categoryID, err)
	}
	return s.repo.CreateSubcategory(ctx, domain.Subcategory{Name: name, CategoryID: categoryID})
}

func (s *DashboardService) UpdateSubcategory(ctx context.Context, id string, partial domain.SubcategoryUpdate) (domain.Subcategory, error) {
	if id == "" {
		return domain.Subcategory{}, domain.Validationf("id", "is required")
	}
	if err := requiredOnUpdate("name", partial.Name); err != nil {
		return domain.Subcategory{}, err
	}
	if partial.CategoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *partial.CategoryID); err != nil {
			return domain.Subcategory{}, fmt.Errorf("category %s: %w", *partial.CategoryID, err)
		}
	}
	return s.repo.UpdateSubcategory(ctx, id, partial)
}

// DeleteSubcategory moves referencing documents to the "Geral" sentinel
// before removing the subcategory; documents are never deleted with it.
func (s *DashboardService) DeleteSubcategory(ctx context.Context, id string) error {
	if id == "" {
		return domain.Validationf("id", "is required")
	}
	sub, err := s.repo.GetSubcategory(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.repo.ReassignDocumentsSubcategory(ctx, sub.Name, domain.DefaultSubcategory); err != nil {
		return err
	}
	return s.repo.DeleteSubcategories(ctx, []string{id})
}

func (s *DashboardService) GetSettings(ctx context.Context, userID string) (domain.UserSettings, error) {
	if userID == "" {
		return domain.UserSettings{}, domain.Validationf("user_id", "is required")
	}
	return s.repo.GetUserSettings(ctx, userID)
}

// SaveSettings replaces all four partitions at once; there is no
// partial-field save.
func (s *DashboardService) SaveSettings(ctx context.Context, value domain.UserSettings) (domain.UserSettings, error) {
	if err := requiredOnCreate("user_id", value.UserID); err != nil {
		return domain.UserSettings{}, err
	}
	return s.repo.UpsertUserSettings(ctx, value)
}

func (s *DashboardService) GetProfile(ctx context.Context, id string) (domain.UserProfile, error) {
	if id == "" {
		return domain.UserProfile{}, domain.Validationf("id", "is required")
	}
	return s.repo.GetUserProfile(ctx, id)
}

func (s *DashboardService) SaveProfile(ctx context.Context, value domain.UserProfile) (domain.UserProfile, error) {
	if err := requiredOnCreate("id", value.ID); err != nil {
		return domain.UserProfile{}, err
	}
	return s.repo.UpsertUserProfile(ctx, value)
}

// UploadAvatar stores the image in the avatars bucket and saves the profile
// with the new URL.
func (s *DashboardService) UploadAvatar(ctx context.Context, userID, filename string, r io.Reader) (domain.UserProfile, error) {
	if userID == "" {
		return domain.UserProfile{}, domain.Validationf("user_id", "is required")
	}
	path, err := s.blobs.Upload(BucketAvatars, "", filename, r)
	if err != nil {
		return domain.UserProfile{}, err
	}
	profile, err := s.repo.GetUserProfile(ctx, userID)
	if err != nil {
		profile = domain.UserProfile{ID: userID}
	}
	profile.AvatarURL = s.blobs.PublicURL(BucketAvatars, path)
	return s.repo.UpsertUserProfile(ctx, profile)
}

// downloadTTL bounds how long a minted private-file URL stays valid.
const downloadTTL = 15 * time.Minute

func (s *DashboardService) SignedFileURL(bucket, path string, expiresIn time.Duration) (string, error) {
	if bucket == "" || path == "" {
		return "", domain.Validationf("path", "bucket and path are required")
	}
	return s.blobs.SignedURL(bucket, path, expiresIn)
}

// downloadURL turns a stored file URL into one a client can actually fetch.
// URLs that do not point at a managed bucket, or point at a public one, are
// already retrievable as stored.
func (s *DashboardService) downloadURL(stored string) (string, error) {
	if stored == "" {
		return "", domain.ErrNotFound
	}
	bucket, path, ok := ParseStoredPath(stored)
	if !ok || s.blobs.IsPublic(bucket) {
		return stored, nil
	}
	return s.SignedFileURL(bucket, path, downloadTTL)
}

// ParseStoredPath recovers (bucket, path) from a stored public URL using the
// fixed "/storage/<bucket>/" pattern.
func ParseStoredPath(fileURL string) (string, string, bool) {
	idx := strings.Index(fileURL, "/storage/")
	if idx < 0 {
		return "", "", false
	}
	rest := fileURL[idx+len("/storage/"):]
	if q := strings.IndexByte(rest, '?'); q >= 0 {
		rest = rest[:q]
	}
	bucket, path, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || path == "" {
		return "", "", false
	}
	return bucket, path, true
}
