package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/workdeckhq/workdeck/internal/domain"
)

func taskFromModel(m TaskModel) domain.Task {
	return domain.Task{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Status:      m.Status,
		Priority:    m.Priority,
		DueDate:     m.DueDate,
		AssigneeID:  m.AssigneeID,
		Progress:    m.Progress,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		CompletedAt: m.CompletedAt,
	}
}

func (r *DashboardRepository) ListTasks(ctx context.Context, status string) ([]domain.Task, error) {
	rows := make([]TaskModel, 0)
	tx := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Task, 0, len(rows))
	for _, m := range rows {
		result = append(result, taskFromModel(m))
	}
	return result, nil
}

func (r *DashboardRepository) GetTask(ctx context.Context, id string) (domain.Task, error) {
	var m TaskModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.Task{}, mapErr(err)
	}
	return taskFromModel(m), nil
}

func (r *DashboardRepository) CreateTask(ctx context.Context, value domain.Task) (domain.Task, error) {
	m := TaskModel{
		ID:          uuid.NewString(),
		Title:       value.Title,
		Description: value.Description,
		Status:      defaultString(value.Status, domain.TaskStatusTodo),
		Priority:    defaultString(value.Priority, domain.TaskPriorityMedium),
		DueDate:     value.DueDate,
		AssigneeID:  value.AssigneeID,
		Progress:    value.Progress,
		CreatedBy:   value.CreatedBy,
		CreatedAt:   time.Now().UTC(),
		CompletedAt: value.CompletedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Task{}, err
	}
	return taskFromModel(m), nil
}

func (r *DashboardRepository) UpdateTask(ctx context.Context, id string, partial domain.TaskUpdate) (domain.Task, error) {
	fields := map[string]any{}
	if partial.Title != nil {
		fields["title"] = *partial.Title
	}
	if partial.Description != nil {
		fields["description"] = *partial.Description
	}
	if partial.Status != nil {
		fields["status"] = *partial.Status
	}
	if partial.Priority != nil {
		fields["priority"] = *partial.Priority
	}
	if partial.DueDate != nil {
		fields["due_date"] = *partial.DueDate
	}
	if partial.AssigneeID != nil {
		fields["assignee_id"] = *partial.AssigneeID
	}
	if partial.Progress != nil {
		fields["progress"] = *partial.Progress
	}
	if partial.ClearCompletedAt {
		fields["completed_at"] = nil
	} else if partial.CompletedAt != nil {
		fields["completed_at"] = *partial.CompletedAt
	}

	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&TaskModel{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return domain.Task{}, res.Error
		}
		if res.RowsAffected == 0 {
			return domain.Task{}, domain.ErrNotFound
		}
	}
	return r.GetTask(ctx, id)
}

func (r *DashboardRepository) DeleteTask(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&TaskModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DashboardRepository) ListTaskTags(ctx context.Context, taskID string) ([]domain.TaskTag, error) {
	rows := make([]TaskTagModel, 0)
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("tag ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.TaskTag, 0, len(rows))
	for _, m := range rows {
		result = append(result, domain.TaskTag{ID: m.ID, TaskID: m.TaskID, Tag: m.Tag})
	}
	return result, nil
}

// ReplaceTaskTags deletes every tag row for the task and inserts the new
// list. The two steps are sequential round trips, not one transaction.
func (r *DashboardRepository) ReplaceTaskTags(ctx context.Context, taskID string, tags []string) ([]domain.TaskTag, error) {
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&TaskTagModel{}).Error; err != nil {
		return nil, err
	}
	result := make([]domain.TaskTag, 0, len(tags))
	for _, tag := range tags {
		m := TaskTagModel{ID: uuid.NewString(), TaskID: taskID, Tag: tag}
		if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
			return nil, err
		}
		result = append(result, domain.TaskTag{ID: m.ID, TaskID: m.TaskID, Tag: m.Tag})
	}
	return result, nil
}

func commentFromModel(m TaskCommentModel) domain.TaskComment {
	return domain.TaskComment{
		ID:        m.ID,
		TaskID:    m.TaskID,
		UserID:    m.UserID,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
	}
}

func (r *DashboardRepository) ListTaskComments(ctx context.Context, taskID string) ([]domain.TaskComment, error) {
	rows := make([]TaskCommentModel, 0)
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.TaskComment, 0, len(rows))
	for _, m := range rows {
		result = append(result, commentFromModel(m))
	}
	return result, nil
}

func (r *DashboardRepository) CreateTaskComment(ctx context.Context, value domain.TaskComment) (domain.TaskComment, error) {
	m := TaskCommentModel{
		ID:        uuid.NewString(),
		TaskID:    value.TaskID,
		UserID:    value.UserID,
		Comment:   value.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.TaskComment{}, err
	}
	return commentFromModel(m), nil
}

func (r *DashboardRepository) UpdateTaskComment(ctx context.Context, id, comment string) (domain.TaskComment, error) {
	res := r.db.WithContext(ctx).Model(&TaskCommentModel{}).Where("id = ?", id).Update("comment", comment)
	if res.Error != nil {
		return domain.TaskComment{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.TaskComment{}, domain.ErrNotFound
	}
	var m TaskCommentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.TaskComment{}, mapErr(err)
	}
	return commentFromModel(m), nil
}

func (r *DashboardRepository) DeleteTaskComment(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&TaskCommentModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func attachmentFromModel(m TaskAttachmentModel) domain.TaskAttachment {
	return domain.TaskAttachment{
		ID:         m.ID,
		TaskID:     m.TaskID,
		FileName:   m.FileName,
		FileURL:    m.FileURL,
		FileType:   m.FileType,
		FileSize:   m.FileSize,
		UploadedBy: m.UploadedBy,
		CreatedAt:  m.CreatedAt,
	}
}

func (r *DashboardRepository) ListTaskAttachments(ctx context.Context, taskID string) ([]domain.TaskAttachment, error) {
	rows := make([]TaskAttachmentModel, 0)
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.TaskAttachment, 0, len(rows))
	for _, m := range rows {
		result = append(result, attachmentFromModel(m))
	}
	return result, nil
}

func (r *DashboardRepository) GetTaskAttachment(ctx context.Context, id string) (domain.TaskAttachment, error) {
	var m TaskAttachmentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.TaskAttachment{}, mapErr(err)
	}
	return attachmentFromModel(m), nil
}

func (r *DashboardRepository) CreateTaskAttachment(ctx context.Context, value domain.TaskAttachment) (domain.TaskAttachment, error) {
	m := TaskAttachmentModel{
		ID:         uuid.NewString(),
		TaskID:     value.TaskID,
		FileName:   value.FileName,
		FileURL:    value.FileURL,
		FileType:   value.FileType,
		FileSize:   value.FileSize,
		UploadedBy: value.UploadedBy,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.TaskAttachment{}, err
	}
	return attachmentFromModel(m), nil
}

func (r *DashboardRepository) DeleteTaskAttachment(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&TaskAttachmentModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
