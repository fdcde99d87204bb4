package application

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/workdeckhq/workdeck/internal/domain"
)

type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	AssigneeID  string
	CreatedBy   string
	Tags        []string
}

func (s *DashboardService) ListTasks(ctx context.Context, status string) ([]domain.Task, error) {
	if status != "" {
		status = domain.NormalizeTaskStatus(status)
	}
	return s.repo.ListTasks(ctx, status)
}

func (s *DashboardService) GetTask(ctx context.Context, id string) (domain.Task, error) {
	if id == "" {
		return domain.Task{}, domain.Validationf("id", "is required")
	}
	return s.repo.GetTask(ctx, id)
}

// GetTaskDetail assembles the task with its tags, comments and attachments.
// The reads are separate round trips against a live store, so the pieces are
// not a snapshot of one instant. Slices are always non-nil.
func (s *DashboardService) GetTaskDetail(ctx context.Context, id string) (domain.TaskDetail, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return domain.TaskDetail{}, err
	}
	tags, err := s.repo.ListTaskTags(ctx, id)
	if err != nil {
		return domain.TaskDetail{}, err
	}
	comments, err := s.repo.ListTaskComments(ctx, id)
	if err != nil {
		return domain.TaskDetail{}, err
	}
	attachments, err := s.repo.ListTaskAttachments(ctx, id)
	if err != nil {
		return domain.TaskDetail{}, err
	}
	if tags == nil {
		tags = []domain.TaskTag{}
	}
	if comments == nil {
		comments = []domain.TaskComment{}
	}
	if attachments == nil {
		attachments = []domain.TaskAttachment{}
	}
	return domain.TaskDetail{
		Task:        task,
		Tags:        tags,
		Comments:    comments,
		Attachments: attachments,
	}, nil
}

func (s *DashboardService) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	if err := requiredOnCreate("title", in.Title); err != nil {
		return domain.Task{}, err
	}
	task, err := s.repo.CreateTask(ctx, domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.NormalizeTaskStatus(in.Status),
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		AssigneeID:  in.AssigneeID,
		CreatedBy:   in.CreatedBy,
	})
	if err != nil {
		return domain.Task{}, err
	}
	if len(in.Tags) > 0 {
		if _, err := s.repo.ReplaceTaskTags(ctx, task.ID, cleanTags(in.Tags)); err != nil {
			return domain.Task{}, err
		}
	}
	return task, nil
}

// UpdateTask applies a partial update. A progress value always couples the
// status to it, overriding any status the caller sent alongside: 100 marks
// the task completed with a completion stamp, any lower value puts it back
// in progress and clears the stamp.
func (s *DashboardService) UpdateTask(ctx context.Context, id string, partial domain.TaskUpdate) (domain.Task, error) {
	if id == "" {
		return domain.Task{}, domain.Validationf("id", "is required")
	}
	if err := requiredOnUpdate("title", partial.Title); err != nil {
		return domain.Task{}, err
	}
	if partial.Status != nil {
		normalized := domain.NormalizeTaskStatus(*partial.Status)
		partial.Status = &normalized
	}
	if partial.Progress != nil {
		if *partial.Progress < 0 || *partial.Progress > 100 {
			return domain.Task{}, domain.Validationf("progress", "must be between 0 and 100")
		}
		if *partial.Progress == 100 {
			status := domain.TaskStatusCompleted
			now := time.Now().UTC()
			partial.Status = &status
			partial.CompletedAt = &now
			partial.ClearCompletedAt = false
		} else {
			status := domain.TaskStatusInProgress
			partial.Status = &status
			partial.CompletedAt = nil
			partial.ClearCompletedAt = true
		}
	}
	return s.repo.UpdateTask(ctx, id, partial)
}

// UpdateTaskProgress is the dedicated progress surface; the status coupling
// itself lives in UpdateTask so every update path enforces it.
func (s *DashboardService) UpdateTaskProgress(ctx context.Context, id string, progress int) (domain.Task, error) {
	return s.UpdateTask(ctx, id, domain.TaskUpdate{Progress: &progress})
}

func (s *DashboardService) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return domain.Validationf("id", "is required")
	}
	return s.repo.DeleteTask(ctx, id)
}

func (s *DashboardService) ListTaskTags(ctx context.Context, taskID string) ([]domain.TaskTag, error) {
	if taskID == "" {
		return nil, domain.Validationf("task_id", "is required")
	}
	tags, err := s.repo.ListTaskTags(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []domain.TaskTag{}
	}
	return tags, nil
}

// ReplaceTaskTags swaps the full tag set: callers always send the complete
// list, never a delta.
func (s *DashboardService) ReplaceTaskTags(ctx context.Context, taskID string, tags []string) ([]domain.TaskTag, error) {
	if taskID == "" {
		return nil, domain.Validationf("task_id", "is required")
	}
	if _, err := s.repo.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	return s.repo.ReplaceTaskTags(ctx, taskID, cleanTags(tags))
}

func (s *DashboardService) ListTaskComments(ctx context.Context, taskID string) ([]domain.TaskComment, error) {
	if taskID == "" {
		return nil, domain.Validationf("task_id", "is required")
	}
	return s.repo.ListTaskComments(ctx, taskID)
}

func (s *DashboardService) CreateTaskComment(ctx context.Context, value domain.TaskComment) (domain.TaskComment, error) {
	if err := requiredOnCreate("task_id", value.TaskID); err != nil {
		return domain.TaskComment{}, err
	}
	if err := requiredOnCreate("comment", value.Comment); err != nil {
		return domain.TaskComment{}, err
	}
	if _, err := s.repo.GetTask(ctx, value.TaskID); err != nil {
		return domain.TaskComment{}, err
	}
	return s.repo.CreateTaskComment(ctx, value)
}

func (s *DashboardService) UpdateTaskComment(ctx context.Context, id, comment string) (domain.TaskComment, error) {
	if id == "" {
		return domain.TaskComment{}, domain.Validationf("id", "is required")
	}
	if err := requiredOnCreate("comment", comment); err != nil {
		return domain.TaskComment{}, err
	}
	return s.repo.UpdateTaskComment(ctx, id, comment)
}

func (s *DashboardService) DeleteTaskComment(ctx context.Context, id string) error {
	if id == "" {
		return domain.Validationf("id", "is required")
	}
	return s.repo.DeleteTaskComment(ctx, id)
}

func (s *DashboardService) ListTaskAttachments(ctx context.Context, taskID string) ([]domain.TaskAttachment, error) {
	if taskID == "" {
		return nil, domain.Validationf("task_id", "is required")
	}
	return s.repo.ListTaskAttachments(ctx, taskID)
}

func (s *DashboardService) CreateTaskAttachment(ctx context.Context, value domain.TaskAttachment) (domain.TaskAttachment, error) {
	if err := requiredOnCreate("task_id", value.TaskID); err != nil {
		return domain.TaskAttachment{}, err
	}
	if err := requiredOnCreate("file_name", value.FileName); err != nil {
		return domain.TaskAttachment{}, err
	}
	if _, err := s.repo.GetTask(ctx, value.TaskID); err != nil {
		return domain.TaskAttachment{}, err
	}
	return s.repo.CreateTaskAttachment(ctx, value)
}

// UploadTaskAttachment writes the file to the documents bucket and records
// it against the task. Same non-transactional shape as document upload.
func (s *DashboardService) UploadTaskAttachment(ctx context.Context, taskID, filename, fileType string, size int64, uploadedBy string, r io.Reader) (domain.TaskAttachment, error) {
	if taskID == "" {
		return domain.TaskAttachment{}, domain.Validationf("task_id", "is required")
	}
	if err := requiredOnCreate("file", filename); err != nil {
		return domain.TaskAttachment{}, err
	}
	if _, err := s.repo.GetTask(ctx, taskID); err != nil {
		return domain.TaskAttachment{}, err
	}
	path, err := s.blobs.Upload(BucketDocuments, "", filename, r)
	if err != nil {
		return domain.TaskAttachment{}, err
	}
	return s.repo.CreateTaskAttachment(ctx, domain.TaskAttachment{
		TaskID:     taskID,
		FileName:   filename,
		FileURL:    s.blobs.PublicURL(BucketDocuments, path),
		FileType:   fileType,
		FileSize:   size,
		UploadedBy: uploadedBy,
	})
}

func (s *DashboardService) DeleteTaskAttachment(ctx context.Context, id string) error {
	if id == "" {
		return domain.Validationf("id", "is required")
	}
	att, err := s.repo.GetTaskAttachment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTaskAttachment(ctx, id); err != nil {
		return err
	}
	if bucket, path, ok := ParseStoredPath(att.FileURL); ok {
		_ = s.blobs.Delete(bucket, path)
	}
	return nil
}

// TaskAttachmentDownloadURL resolves a retrievable URL for the attachment's
// file, signing it when the backing bucket is private.
func (s *DashboardService) TaskAttachmentDownloadURL(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", domain.Validationf("id", "is required")
	}
	att, err := s.repo.GetTaskAttachment(ctx, id)
	if err != nil {
		return "", err
	}
	return s.downloadURL(att.FileURL)
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
