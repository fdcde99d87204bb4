package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/workdeckhq/workdeck/internal/domain"
)

func documentFromModel(m DocumentModel) domain.Document {
	return domain.Document{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Category:    m.Category,
		Subcategory: m.Subcategory,
		FileURL:     m.FileURL,
		FileType:    m.FileType,
		FileSize:    m.FileSize,
		CreatedBy:   m.CreatedBy,
		LastUpdated: m.LastUpdated,
		CreatedAt:   m.CreatedAt,
	}
}

func (r *DashboardRepository) ListDocuments(ctx context.Context, category string) ([]domain.Document, error) {
	q := r.db.WithContext(ctx).Model(&DocumentModel{})
	if strings.TrimSpace(category) != "" {
		q = q.Where("category = ?", strings.TrimSpace(category))
	}
	rows := make([]DocumentModel, 0)
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Document, 0, len(rows))
	for _, m := range rows {
		result = append(result, documentFromModel(m))
	}
	return result, nil
}

func (r *DashboardRepository) GetDocument(ctx context.Context, id string) (domain.Document, error) {
	var m DocumentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.Document{}, mapErr(err)
	}
	return documentFromModel(m), nil
}

func (r *DashboardRepository) CreateDocument(ctx context.Context, value domain.Document) (domain.Document, error) {
	now := time.Now().UTC()
	m := DocumentModel{
		ID:          uuid.NewString(),
		Title:       value.Title,
		Description: value.Description,
		Category:    value.Category,
		Subcategory: value.Subcategory,
		FileURL:     value.FileURL,
		FileType:    value.FileType,
		FileSize:    value.FileSize,
		CreatedBy:   value.CreatedBy,
		LastUpdated: now,
		CreatedAt:   now,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Document{}, err
	}
	return documentFromModel(m), nil
}

func (r *DashboardRepository) UpdateDocument(ctx context.Context, id string, partial domain.DocumentUpdate) (domain.Document, error) {
	fields := map[string]any{"last_updated": time.Now().UTC()}
	if partial.Title != nil {
		fields["title"] = *partial.Title
	}
	if partial.Description != nil {
		fields["description"] = *partial.Description
	}
	if partial.Category != nil {
		fields["category"] = *partial.Category
	}
	if partial.Subcategory != nil {
		fields["subcategory"] = *partial.Subcategory
	}
	if partial.FileURL != nil {
		fields["file_url"] = *partial.FileURL
	}
	if partial.FileType != nil {
		fields["file_type"] = *partial.FileType
	}
	if partial.FileSize != nil {
		fields["file_size"] = *partial.FileSize
	}

	res := r.db.WithContext(ctx).Model(&DocumentModel{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return domain.Document{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Document{}, domain.ErrNotFound
	}
	return r.GetDocument(ctx, id)
}

func (r *DashboardRepository) DeleteDocument(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&DocumentModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReassignDocumentsSubcategory bulk-moves every document in the given
// subcategory to the replacement value and reports how many rows moved.
func (r *DashboardRepository) ReassignDocumentsSubcategory(ctx context.Context, subcategory, replacement string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&DocumentModel{}).
		Where("subcategory = ?", subcategory).
		Updates(map[string]any{"subcategory": replacement, "last_updated": time.Now().UTC()})
	return res.RowsAffected, res.Error
}
