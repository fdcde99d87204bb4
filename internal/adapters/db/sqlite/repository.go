package sqlite

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/workdeckhq/workdeck/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

type DashboardRepository struct {
	db *gorm.DB
}

func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{})
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// mapErr translates the ORM's not-found sentinel into the domain taxonomy;
// every other store error propagates unmodified.
func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func defaultString(input, fallback string) string {
	if strings.TrimSpace(input) == "" {
		return fallback
	}
	return input
}

func toolFromModel(m ToolModel) domain.Tool {
	return domain.Tool{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Status:      m.Status,
		Category:    m.Category,
		LastUpdated: m.LastUpdated,
		ImageURL:    m.ImageURL,
		APIEndpoint: m.APIEndpoint,
		IsPublic:    m.IsPublic,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

func (r *DashboardRepository) ListTools(ctx context.Context, category string) ([]domain.Tool, error) {
	q := r.db.WithContext(ctx).Model(&ToolModel{})
	if strings.TrimSpace(category) != "" {
		q = q.Where("category = ?", strings.TrimSpace(category))
	}
	rows := make([]ToolModel, 0)
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Tool, 0, len(rows))
	for _, m := range rows {
		result = append(result, toolFromModel(m))
	}
	return result, nil
}

func (r *DashboardRepository) GetTool(ctx context.Context, id string) (domain.Tool, error) {
	var m ToolModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.Tool{}, mapErr(err)
	}
	return toolFromModel(m), nil
}

func (r *DashboardRepository) CreateTool(ctx context.Context, value domain.Tool) (domain.Tool, error) {
	now := time.Now().UTC()
	m := ToolModel{
		ID:          uuid.NewString(),
		Name:        value.Name,
		Description: value.Description,
		Status:      defaultString(value.Status, domain.ToolStatusActive),
		Category:    value.Category,
		LastUpdated: now,
		ImageURL:    value.ImageURL,
		APIEndpoint: value.APIEndpoint,
		IsPublic:    value.IsPublic,
		CreatedBy:   value.CreatedBy,
		CreatedAt:   now,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Tool{}, err
	}
	return toolFromModel(m), nil
}

func (r *DashboardRepository) UpdateTool(ctx context.Context, id string, partial domain.ToolUpdate) (domain.Tool, error) {
	fields := map[string]any{"last_updated": time.Now().UTC()}
	if partial.Name != nil {
		fields["name"] = *partial.Name
	}
	if partial.Description != nil {
		fields["description"] = *partial.Description
	}
	if partial.Status != nil {
		fields["status"] = *partial.Status
	}
	if partial.Category != nil {
		fields["category"] = *partial.Category
	}
	if partial.ImageURL != nil {
		fields["image_url"] = *partial.ImageURL
	}
	if partial.APIEndpoint != nil {
		fields["api_endpoint"] = *partial.APIEndpoint
	}
	if partial.IsPublic != nil {
		fields["is_public"] = *partial.IsPublic
	}

	res := r.db.WithContext(ctx).Model(&ToolModel{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return domain.Tool{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Tool{}, domain.ErrNotFound
	}
	return r.GetTool(ctx, id)
}

func (r *DashboardRepository) DeleteTool(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ToolModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func integrationFromModel(m ToolIntegrationModel) domain.ToolIntegration {
	return domain.ToolIntegration{
		ID:              m.ID,
		ToolID:          m.ToolID,
		IntegrationType: m.IntegrationType,
		IntegrationURL:  m.IntegrationURL,
		APIKey:          m.APIKey,
		Status:          m.Status,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (r *DashboardRepository) ListToolIntegrations(ctx context.Context, toolID string) ([]domain.ToolIntegration, error) {
	q := r.db.WithContext(ctx).Model(&ToolIntegrationModel{})
	if strings.TrimSpace(toolID) != "" {
		q = q.Where("tool_id = ?", toolID)
	}
	rows := make([]ToolIntegrationModel, 0)
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.ToolIntegration, 0, len(rows))
	for _, m := range rows {
		result = append(result, integrationFromModel(m))
	}
	return result, nil
}

func (r *DashboardRepository) CreateToolIntegration(ctx context.Context, value domain.ToolIntegration) (domain.ToolIntegration, error) {
	m := ToolIntegrationModel{
		ID:              uuid.NewString(),
		ToolID:          value.ToolID,
		IntegrationType: value.IntegrationType,
		IntegrationURL:  value.IntegrationURL,
		APIKey:          value.APIKey,
		Status:          defaultString(value.Status, "active"),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.ToolIntegration{}, err
	}
	return integrationFromModel(m), nil
}

func (r *DashboardRepository) UpdateToolIntegration(ctx context.Context, id string, partial domain.ToolIntegrationUpdate) (domain.ToolIntegration, error) {
	fields := map[string]any{}
	if partial.IntegrationType != nil {
		fields["integration_type"] = *partial.IntegrationType
	}
	if partial.IntegrationURL != nil {
		fields["integration_url"] = *partial.IntegrationURL
	}
	if partial.APIKey != nil {
		fields["api_key"] = *partial.APIKey
	}
	if partial.Status != nil {
		fields["status"] = *partial.Status
	}
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&ToolIntegrationModel{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return domain.ToolIntegration{}, res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ToolIntegration{}, domain.ErrNotFound
		}
	}
	var m ToolIntegrationModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.ToolIntegration{}, mapErr(err)
	}
	return integrationFromModel(m), nil
}

func (r *DashboardRepository) DeleteToolIntegration(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ToolIntegrationModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DashboardRepository) ListToolUsageStats(ctx context.Context, toolID string) ([]domain.ToolUsageStat, error) {
	q := r.db.WithContext(ctx).Model(&ToolUsageStatModel{})
	if strings.TrimSpace(toolID) != "" {
		q = q.Where("tool_id = ?", toolID)
	}
	rows := make([]ToolUsageStatModel, 0)
	if err := q.Order("usage_date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.ToolUsageStat, 0, len(rows))
	for _, m := range rows {
		result = append(result, domain.ToolUsageStat{
			ID:         m.ID,
			ToolID:     m.ToolID,
			UserID:     m.UserID,
			UsageDate:  m.UsageDate,
			UsageCount: m.UsageCount,
			CreatedAt:  m.CreatedAt,
			UpdatedAt:  m.UpdatedAt,
		})
	}
	return result, nil
}

// RecordToolUsage increments the per-(tool, user, day) counter atomically in
// the store, so concurrent calls for the same key cannot lose increments.
func (r *DashboardRepository) RecordToolUsage(ctx context.Context, toolID, userID, usageDate string) error {
	now := time.Now().UTC()
	m := ToolUsageStatModel{
		ID:         uuid.NewString(),
		ToolID:     toolID,
		UserID:     userID,
		UsageDate:  usageDate,
		UsageCount: 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return r.db.WithContext(ctx).Exec(`
INSERT INTO tool_usage_stats (id, tool_id, user_id, usage_date, usage_count, created_at, updated_at)
VALUES (?, ?, ?, ?, 1, ?, ?)
ON CONFLICT (tool_id, user_id, usage_date)
DO UPDATE SET usage_count = usage_count + 1, updated_at = excluded.updated_at
`, m.ID, m.ToolID, m.UserID, m.UsageDate, m.CreatedAt, m.UpdatedAt).Error
}

func categoryFromModel(m CategoryModel) domain.Category {
	return domain.Category{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *DashboardRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows := make([]CategoryModel, 0)
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Category, 0, len(rows))
	for _, m := range rows {
		result = append(result, categoryFromModel(m))
	}
	return result, nil
}

func (r *DashboardRepository) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	var m CategoryModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.Category{}, mapErr(err)
	}
	return categoryFromModel(m), nil
}

func (r *DashboardRepository) CreateCategory(ctx context.Context, value domain.Category) (domain.Category, error) {
	m := CategoryModel{
		ID:          uuid.NewString(),
		Name:        value.Name,
		Description: value.Description,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Category{}, err
	}
	return categoryFromModel(m), nil
}

func (r *DashboardRepository) UpdateCategory(ctx context.Context, id string, partial domain.CategoryUpdate) (domain.Category, error) {
	fields := map[string]any{}
	if partial.Name != nil {
		fields["name"] = *partial.Name
	}
	if partial.Description != nil {
		fields["description"] = *partial.Description
	}
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&CategoryModel{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return domain.Category{}, res.Error
		}
		if res.RowsAffected == 0 {
			return domain.Category{}, domain.ErrNotFound
		}
	}
	return r.GetCategory(ctx, id)
}

func (r *DashboardRepository) DeleteCategory(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CategoryModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func subcategoryFromModel(m SubcategoryModel) domain.Subcategory {
	return domain.Subcategory{
		ID:         m.ID,
		CategoryID: m.CategoryID,
		Name:       m.Name,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func (r *DashboardRepository) ListSubcategories(ctx context.Context, categoryID string) ([]domain.Subcategory, error) {
	q := r.db.WithContext(ctx).Model(&SubcategoryModel{})
	if strings.TrimSpace(categoryID) != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	rows := make([]SubcategoryModel, 0)
	if err := q.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Subcategory, 0, len(rows))
	for _, m := range rows {
		result = append(result, subcategoryFromModel(m))
	}
	return result, nil
}

func (r *DashboardRepository) GetSubcategory(ctx context.Context, id string) (domain.Subcategory, error) {
	var m SubcategoryModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.Subcategory{}, mapErr(err)
	}
	return subcategoryFromModel(m), nil
}

func (r *DashboardRepository) CreateSubcategory(ctx context.Context, value domain.Subcategory) (domain.Subcategory, error) {
	m := SubcategoryModel{
		ID:         uuid.NewString(),
		CategoryID: value.CategoryID,
		Name:       value.Name,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Subcategory{}, err
	}
	return subcategoryFromModel(m), nil
}

func (r *DashboardRepository) UpdateSubcategory(ctx context.Context, id string, partial domain.SubcategoryUpdate) (domain.Subcategory, error) {
	fields := map[string]any{}
	if partial.Name != nil {
		fields["name"] = *partial.Name
	}
	if partial.CategoryID != nil {
		fields["category_id"] = *partial.CategoryID
	}
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&SubcategoryModel{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return domain.Subcategory{}, res.Error
		}
		if res.RowsAffected == 0 {
			return domain.Subcategory{}, domain.ErrNotFound
		}
	}
	return r.GetSubcategory(ctx, id)
}

func (r *DashboardRepository) DeleteSubcategories(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&SubcategoryModel{}).Error
}
