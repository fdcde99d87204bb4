package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/workdeckhq/workdeck/internal/application"
	"github.com/workdeckhq/workdeck/internal/domain"
)

const sessionCookieName = "wd_session"

type contextKey string

const identityKey contextKey = "identity"

type Handler struct {
	service *application.DashboardService
	auth    *application.AuthService
	blobs   domain.BlobStore
}

func NewRouter(service *application.DashboardService, auth *application.AuthService, blobs domain.BlobStore) http.Handler {
	h := &Handler{service: service, auth: auth, blobs: blobs}
	r := chi.NewRouter()

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", h.handleLogin)
		api.Post("/auth/logout", h.handleLogout)
		api.With(h.requireAuth).Get("/auth/whoami", h.handleWhoAmI)

		api.Get("/tools", h.handleListTools)
		api.Post("/tools", h.handleCreateTool)
		api.Get("/tools/{id}", h.handleGetTool)
		api.Patch("/tools/{id}", h.handleUpdateTool)
		api.Delete("/tools/{id}", h.handleDeleteTool)
		api.Post("/tools/{id}/image", h.handleUploadToolImage)
		api.Get("/tools/{id}/integrations", h.handleListToolIntegrations)
		api.Post("/tools/{id}/integrations", h.handleCreateToolIntegration)
		api.Patch("/integrations/{id}", h.handleUpdateToolIntegration)
		api.Delete("/integrations/{id}", h.handleDeleteToolIntegration)
		api.Get("/tools/{id}/usage-stats", h.handleListToolUsageStats)
		api.With(h.requireAuth).Post("/tools/{id}/usage", h.handleRecordUsage)

		api.Get("/documents", h.handleListDocuments)
		api.Post("/documents", h.handleCreateDocument)
		api.Post("/documents/upload", h.handleUploadDocument)
		api.Get("/documents/{id}", h.handleGetDocument)
		api.Get("/documents/{id}/url", h.handleDocumentDownloadURL)
		api.Patch("/documents/{id}", h.handleUpdateDocument)
		api.Delete("/documents/{id}", h.handleDeleteDocument)

		api.Get("/categories", h.handleListCategories)
		api.Post("/categories", h.handleCreateCategory)
		api.Patch("/categories/{id}", h.handleUpdateCategory)
		api.Delete("/categories/{id}", h.handleDeleteCategory)
		api.Get("/subcategories", h.handleListSubcategories)
		api.Post("/subcategories", h.handleCreateSubcategory)
		api.Patch("/subcategories/{id}", h.handleUpdateSubcategory)
		api.Delete("/subcategories/{id}", h.handleDeleteSubcategory)

		api.Get("/tasks", h.handleListTasks)
		api.Get("/tasks/{id}", h.handleGetTaskDetail)
		api.Get("/tasks/{id}/tags", h.handleListTaskTags)
		api.Get("/tasks/{id}/comments", h.handleListTaskComments)
		api.Get("/tasks/{id}/attachments", h.handleListTaskAttachments)
		api.Get("/attachments/{id}/url", h.handleAttachmentDownloadURL)
		api.With(h.requireAuth).Post("/tasks", h.handleCreateTask)
		api.With(h.requireAuth).Patch("/tasks/{id}", h.handleUpdateTask)
		api.With(h.requireAuth).Delete("/tasks/{id}", h.handleDeleteTask)
		api.With(h.requireAuth).Patch("/tasks/{id}/progress", h.handleUpdateTaskProgress)
		api.With(h.requireAuth).Put("/tasks/{id}/tags", h.handleReplaceTaskTags)
		api.With(h.requireAuth).Post("/tasks/{id}/comments", h.handleCreateTaskComment)
		api.With(h.requireAuth).Patch("/comments/{id}", h.handleUpdateTaskComment)
		api.With(h.requireAuth).Delete("/comments/{id}", h.handleDeleteTaskComment)
		api.With(h.requireAuth).Post("/tasks/{id}/attachments", h.handleUploadTaskAttachment)
		api.With(h.requireAuth).Delete("/attachments/{id}", h.handleDeleteTaskAttachment)

		api.Get("/settings/{userID}", h.handleGetSettings)
		api.Put("/settings/{userID}", h.handleSaveSettings)
		api.Get("/profiles/{id}", h.handleGetProfile)
		api.Put("/profiles/{id}", h.handleSaveProfile)
		api.Post("/profiles/{id}/avatar", h.handleUploadAvatar)
	})

	r.Get("/storage/{bucket}/*", h.handleServeFile)

	return r
}

// writeError maps the service error taxonomy onto HTTP statuses. Validation
// failures are the caller's fault, missing rows are 404, everything else is
// a server error.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type loginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Mode      string `json:"mode"`
	TokenName string `json:"token_name"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = "session"
	}

	if mode == "token" {
		token, err := h.auth.LoginWithAPIToken(r.Context(), req.Email, req.Password, req.TokenName)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": token, "mode": "token"})
		return
	}

	token, user, err := h.auth.LoginWithSession(r.Context(), req.Email, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
		return
	}
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"user_id": user.ID, "email": user.Email, "mode": "session"})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(sessionCookieName)
	if err == nil && c.Value != "" {
		_ = h.auth.LogoutSession(r.Context(), c.Value)
		h.clearSessionCookie(w)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": identity.User.ID, "email": identity.User.Email})
}

func (h *Handler) handleListTools(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListTools(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleGetTool(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetTool(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type createToolRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
	APIEndpoint string `json:"api_endpoint"`
	IsPublic    bool   `json:"is_public"`
}

func (h *Handler) handleCreateTool(w http.ResponseWriter, r *http.Request) {
	var req createToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.CreateTool(r.Context(), application.CreateToolInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		APIEndpoint: req.APIEndpoint,
		IsPublic:    req.IsPublic,
		CreatedBy:   currentUserID(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type updateToolRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Category    *string `json:"category"`
	ImageURL    *string `json:"image_url"`
	APIEndpoint *string `json:"api_endpoint"`
	IsPublic    *bool   `json:"is_public"`
}

func (h *Handler) handleUpdateTool(w http.ResponseWriter, r *http.Request) {
	var req updateToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.UpdateTool(r.Context(), chi.URLParam(r, "id"), domain.ToolUpdate{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		APIEndpoint: req.APIEndpoint,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleDeleteTool(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTool(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (h *Handler) handleUploadToolImage(w http.ResponseWriter, r *http.Request) {
	file, header, err := readMultipartFile(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	defer file.Close()
	v, err := h.service.UploadToolImage(r.Context(), chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleListToolIntegrations(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListToolIntegrations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type createIntegrationRequest struct {
	IntegrationType string `json:"integration_type"`
	IntegrationURL  string `json:"integration_url"`
	APIKey          string `json:"api_key"`
	Status          string `json:"status"`
}

func (h *Handler) handleCreateToolIntegration(w http.ResponseWriter, r *http.Request) {
	var req createIntegrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.CreateToolIntegration(r.Context(), domain.ToolIntegration{
		ToolID:          chi.URLParam(r, "id"),
		IntegrationType: req.IntegrationType,
		IntegrationURL:  req.IntegrationURL,
		APIKey:          req.APIKey,
		Status:          req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type updateIntegrationRequest struct {
	IntegrationType *string `json:"integration_type"`
	IntegrationURL  *string `json:"integration_url"`
	APIKey          *string `json:"api_key"`
	Status          *string `json:"status"`
}

func (h *Handler) handleUpdateToolIntegration(w http.ResponseWriter, r *http.Request) {
	var req updateIntegrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.UpdateToolIntegration(r.Context(), chi.URLParam(r, "id"), domain.ToolIntegrationUpdate{
		IntegrationType: req.IntegrationType,
		IntegrationURL:  req.IntegrationURL,
		APIKey:          req.APIKey,
		Status:          req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleDeleteToolIntegration(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteToolIntegration(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (h *Handler) handleListToolUsageStats(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListToolUsageStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleRecordUsage(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RecordUsage(r.Context(), chi.URLParam(r, "id"), currentUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListDocuments(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type createDocumentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	FileURL     string `json:"file_url"`
	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size"`
}

func (req createDocumentRequest) toInput(createdBy string) application.CreateDocumentInput {
	return application.CreateDocumentInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		FileURL:     req.FileURL,
		FileType:    req.FileType,
		FileSize:    req.FileSize,
		CreatedBy:   createdBy,
	}
}

func (h *Handler) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.CreateDocument(r.Context(), req.toInput(currentUserID(r.Context())))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleUploadDocument reads "file" plus metadata fields from a multipart
// form and runs the upload-then-create orchestration.
func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	file, header, err := readMultipartFile(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	defer file.Close()
	req := createDocumentRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Subcategory: r.FormValue("subcategory"),
		FileType:    r.FormValue("file_type"),
	}
	if req.FileType == "" {
		req.FileType = header.Header.Get("Content-Type")
	}
	v, err := h.service.UploadDocument(r.Context(), req.toInput(currentUserID(r.Context())), header.Filename, header.Size, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type updateDocumentRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Subcategory *string `json:"subcategory"`
	FileURL     *string `json:"file_url"`
	FileType    *string `json:"file_type"`
	FileSize    *int64  `json:"file_size"`
}

func (h *Handler) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req updateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.UpdateDocument(r.Context(), chi.URLParam(r, "id"), domain.DocumentUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		FileURL:     req.FileURL,
		FileType:    req.FileType,
		FileSize:    req.FileSize,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDocumentWithFile(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

// handleDocumentDownloadURL hands out the URL a client fetches the file
// from; private-bucket files get a short-lived signed URL.
func (h *Handler) handleDocumentDownloadURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.DocumentDownloadURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"url": url})
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.UpdateCategory(r.Context(), chi.URLParam(r, "id"), domain.CategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (h *Handler) handleListSubcategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListSubcategories(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type subcategoryRequest struct {
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
}

func (h *Handler) handleCreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var req subcategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.CreateSubcategory(r.Context(), req.Name, req.CategoryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type updateSubcategoryRequest struct {
	Name       *string `json:"name"`
	CategoryID *string `json:"category_id"`
}

func (h *Handler) handleUpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	var req updateSubcategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.UpdateSubcategory(r.Context(), chi.URLParam(r, "id"), domain.SubcategoryUpdate{
		Name:       req.Name,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleDeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSubcategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListTasks(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleGetTaskDetail(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetTaskDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  string     `json:"assignee_id"`
	Tags        []string   `json:"tags"`
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.CreateTask(r.Context(), application.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
		CreatedBy:   currentUserID(r.Context()),
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *string    `json:"assignee_id"`
	Progress    *int       `json:"progress"`
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.UpdateTask(r.Context(), chi.URLParam(r, "id"), domain.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
		Progress:    req.Progress,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type taskProgressRequest struct {
	Progress int `json:"progress"`
}

func (h *Handler) handleUpdateTaskProgress(w http.ResponseWriter, r *http.Request) {
	var req taskProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.UpdateTaskProgress(r.Context(), chi.URLParam(r, "id"), req.Progress)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (h *Handler) handleListTaskTags(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListTaskTags(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type replaceTagsRequest struct {
	Tags []string `json:"tags"`
}

func (h *Handler) handleReplaceTaskTags(w http.ResponseWriter, r *http.Request) {
	var req replaceTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	items, err := h.service.ReplaceTaskTags(r.Context(), chi.URLParam(r, "id"), req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleListTaskComments(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListTaskComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type commentRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) handleCreateTaskComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.CreateTaskComment(r.Context(), domain.TaskComment{
		TaskID:  chi.URLParam(r, "id"),
		UserID:  currentUserID(r.Context()),
		Comment: req.Comment,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleUpdateTaskComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.UpdateTaskComment(r.Context(), chi.URLParam(r, "id"), req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleDeleteTaskComment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTaskComment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (h *Handler) handleListTaskAttachments(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListTaskAttachments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleUploadTaskAttachment(w http.ResponseWriter, r *http.Request) {
	file, header, err := readMultipartFile(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	defer file.Close()
	v, err := h.service.UploadTaskAttachment(r.Context(), chi.URLParam(r, "id"), header.Filename, header.Header.Get("Content-Type"), header.Size, currentUserID(r.Context()), file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleAttachmentDownloadURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.TaskAttachmentDownloadURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"url": url})
}

func (h *Handler) handleDeleteTaskAttachment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTaskAttachment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetSettings(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse(v))
}

type settingsRequest struct {
	General    json.RawMessage `json:"general"`
	Account    json.RawMessage `json:"account"`
	Appearance json.RawMessage `json:"appearance"`
	Security   json.RawMessage `json:"security"`
}

func (h *Handler) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.SaveSettings(r.Context(), domain.UserSettings{
		UserID:             chi.URLParam(r, "userID"),
		GeneralSettings:    req.General,
		AccountSettings:    req.Account,
		AppearanceSettings: req.Appearance,
		SecuritySettings:   req.Security,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse(v))
}

// settingsResponse re-inflates the stored JSON partitions so clients get
// objects back instead of encoded strings.
func settingsResponse(v domain.UserSettings) map[string]any {
	out := map[string]any{"user_id": v.UserID, "updated_at": v.UpdatedAt}
	for key, raw := range map[string][]byte{
		"general":    v.GeneralSettings,
		"account":    v.AccountSettings,
		"appearance": v.AppearanceSettings,
		"security":   v.SecuritySettings,
	} {
		if len(raw) == 0 {
			out[key] = map[string]any{}
			continue
		}
		out[key] = json.RawMessage(raw)
	}
	return out
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type profileRequest struct {
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func (h *Handler) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	v, err := h.service.SaveProfile(r.Context(), domain.UserProfile{
		ID:        chi.URLParam(r, "id"),
		FullName:  req.FullName,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	file, header, err := readMultipartFile(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	defer file.Close()
	v, err := h.service.UploadAvatar(r.Context(), chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleServeFile streams an object out of a bucket. Private buckets require
// a valid signed token pair in the query string.
func (h *Handler) handleServeFile(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	objectPath := chi.URLParam(r, "*")
	if !h.blobs.IsPublic(bucket) {
		token := r.URL.Query().Get("token")
		expires, err := strconv.ParseInt(r.URL.Query().Get("expires"), 10, 64)
		if err != nil || time.Now().Unix() > expires || !h.blobs.VerifySignature(bucket, objectPath, token, expires) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
			return
		}
	}
	rc, err := h.blobs.Open(bucket, objectPath)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.Copy(w, rc)
}

func readMultipartFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, nil, errors.New("invalid multipart form")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errors.New("file field is required")
	}
	return file, header, nil
}

func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := h.authenticateRequest(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	})
}

func (h *Handler) authenticateRequest(r *http.Request) (domain.Identity, bool) {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		token := strings.TrimSpace(authHeader[7:])
		identity, err := h.auth.AuthenticateBearerToken(r.Context(), token)
		if err == nil {
			return identity, true
		}
	}

	c, err := r.Cookie(sessionCookieName)
	if err == nil && strings.TrimSpace(c.Value) != "" {
		identity, authErr := h.auth.AuthenticateSession(r.Context(), c.Value)
		if authErr == nil {
			return identity, true
		}
	}

	return domain.Identity{}, false
}

func identityFromContext(ctx context.Context) (domain.Identity, bool) {
	value := ctx.Value(identityKey)
	if value == nil {
		return domain.Identity{}, false
	}
	identity, ok := value.(domain.Identity)
	return identity, ok
}

func currentUserID(ctx context.Context) string {
	identity, ok := identityFromContext(ctx)
	if !ok {
		return ""
	}
	return identity.User.ID
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
