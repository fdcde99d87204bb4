package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/workdeckhq/workdeck/internal/adapters/db/sqlite"
	"github.com/workdeckhq/workdeck/internal/adapters/storage"
	"github.com/workdeckhq/workdeck/internal/application"
	"github.com/workdeckhq/workdeck/internal/domain"
)

type testEnv struct {
	server  *httptest.Server
	service *application.DashboardService
	auth    *application.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	db, err := sqlite.Open(filepath.Join(dir, "workdeck_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := sqlite.RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	repo := sqlite.NewDashboardRepository(db)
	blobs, err := storage.NewFileStore(filepath.Join(dir, "blobs"), "http://localhost:8080", []byte("test-key"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	service := application.NewDashboardService(repo, blobs)
	auth := application.NewAuthService(repo)
	if err := service.EnsureBuckets(); err != nil {
		t.Fatalf("ensure buckets: %v", err)
	}

	srv := httptest.NewServer(NewRouter(service, auth, blobs))
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, service: service, auth: auth}
}

func (e *testEnv) bearerToken(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	if _, err := e.auth.CreateUser(ctx, "tester@example.com", "sup3rsecret"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := e.auth.LoginWithAPIToken(ctx, "tester@example.com", "sup3rsecret", "test")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, payload)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestToolEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/tools", "", map[string]any{"name": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", resp.StatusCode)
	}
	var errBody map[string]string
	decodeBody(t, resp, &errBody)
	if errBody["error"] == "" {
		t.Fatalf("expected error message, got %v", errBody)
	}

	resp = env.do(t, http.MethodPost, "/api/tools", "", map[string]any{
		"name":     "Renderer",
		"status":   "active",
		"category": "creative-suite",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on create, got %d", resp.StatusCode)
	}
	var tool domain.Tool
	decodeBody(t, resp, &tool)
	if tool.ID == "" || tool.Category != "Creative Suite" {
		t.Fatalf("unexpected tool %+v", tool)
	}

	resp = env.do(t, http.MethodGet, "/api/tools/"+tool.ID, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/tools/missing-id", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing tool, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, "/api/tools/"+tool.ID, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", resp.StatusCode)
	}
	var deleted map[string]bool
	decodeBody(t, resp, &deleted)
	if !deleted["success"] {
		t.Fatalf("expected success payload, got %v", deleted)
	}
}

func TestTaskMutationsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/tasks", "", map[string]any{"title": "Unauthorized"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	token := env.bearerToken(t)
	resp = env.do(t, http.MethodPost, "/api/tasks", token, map[string]any{
		"title": "Plan rollout",
		"tags":  []string{"ops", "ops", " infra "},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with bearer token, got %d", resp.StatusCode)
	}
	var task domain.Task
	decodeBody(t, resp, &task)
	if task.CreatedBy == "" {
		t.Fatalf("expected created_by stamped from identity")
	}

	// Reads stay public.
	resp = env.do(t, http.MethodGet, "/api/tasks/"+task.ID, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected public read to succeed, got %d", resp.StatusCode)
	}
	var detail domain.TaskDetail
	decodeBody(t, resp, &detail)
	if len(detail.Tags) != 2 {
		t.Fatalf("expected deduped trimmed tags, got %+v", detail.Tags)
	}
}

func TestTaskProgressEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.bearerToken(t)

	resp := env.do(t, http.MethodPost, "/api/tasks", token, map[string]any{"title": "Finish migration"})
	var task domain.Task
	decodeBody(t, resp, &task)

	resp = env.do(t, http.MethodPatch, "/api/tasks/"+task.ID+"/progress", token, map[string]any{"progress": 100})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var done domain.Task
	decodeBody(t, resp, &done)
	if done.Status != domain.TaskStatusCompleted || done.CompletedAt == nil {
		t.Fatalf("expected completed task, got %+v", done)
	}

	resp = env.do(t, http.MethodPatch, "/api/tasks/"+task.ID+"/progress", token, map[string]any{"progress": 150})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range progress, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSessionLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.auth.CreateUser(ctx, "web@example.com", "sup3rsecret"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	resp := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "web@example.com",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "web@example.com",
		"password": "sup3rsecret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on login, got %d", resp.StatusCode)
	}
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "wd_session" {
			cookie = c
		}
	}
	resp.Body.Close()
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("expected session cookie on login")
	}

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/auth/whoami", nil)
	req.AddCookie(cookie)
	whoResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if whoResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from whoami with cookie, got %d", whoResp.StatusCode)
	}
	var who map[string]string
	decodeBody(t, whoResp, &who)
	if who["email"] != "web@example.com" {
		t.Fatalf("unexpected identity %v", who)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPut, "/api/settings/user-1", "", map[string]any{
		"general":    map[string]any{"language": "pt"},
		"appearance": map[string]any{"theme": "dark"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on save, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/settings/user-1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d", resp.StatusCode)
	}
	var settings map[string]any
	decodeBody(t, resp, &settings)
	general, ok := settings["general"].(map[string]any)
	if !ok || general["language"] != "pt" {
		t.Fatalf("expected general settings object, got %v", settings["general"])
	}
	if _, ok := settings["security"].(map[string]any); !ok {
		t.Fatalf("empty partitions come back as objects, got %v", settings["security"])
	}

	resp = env.do(t, http.MethodGet, "/api/settings/unknown-user", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestServeFileRespectsBucketVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc, err := env.service.UploadDocument(ctx, application.CreateDocumentInput{Title: "Manual"}, "manual.pdf", 3, strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("upload document: %v", err)
	}
	_, objectPath, ok := application.ParseStoredPath(doc.FileURL)
	if !ok {
		t.Fatalf("unparseable file url %q", doc.FileURL)
	}

	resp, err := http.Get(env.server.URL + "/storage/documents/" + objectPath)
	if err != nil {
		t.Fatalf("get file: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without signature, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	signed, err := env.service.SignedFileURL(application.BucketDocuments, objectPath, time.Hour)
	if err != nil {
		t.Fatalf("signed url: %v", err)
	}
	// The store signs against its own base URL; rewrite to the test server.
	signed = env.server.URL + signed[strings.Index(signed, "/storage/"):]
	resp, err = http.Get(signed)
	if err != nil {
		t.Fatalf("get signed file: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with signature, got %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(data) != "pdf" {
		t.Fatalf("unexpected file contents %q", data)
	}

	// Public buckets stream without a token.
	profile, err := env.service.UploadAvatar(ctx, "user-1", "avatar.png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("upload avatar: %v", err)
	}
	_, avatarPath, ok := application.ParseStoredPath(profile.AvatarURL)
	if !ok {
		t.Fatalf("unparseable avatar url %q", profile.AvatarURL)
	}
	resp, err = http.Get(env.server.URL + "/storage/avatars/" + avatarPath)
	if err != nil {
		t.Fatalf("get avatar: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for public bucket, got %d", resp.StatusCode)
	}
}

// fetchStored rewrites a store-minted URL onto the test server and fetches it.
func (e *testEnv) fetchStored(t *testing.T, minted string) (int, string) {
	t.Helper()
	idx := strings.Index(minted, "/storage/")
	if idx < 0 {
		t.Fatalf("minted URL %q does not point at the file server", minted)
	}
	resp, err := http.Get(e.server.URL + minted[idx:])
	if err != nil {
		t.Fatalf("get %q: %v", minted, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

func TestDownloadURLEndpointsMintFetchableLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.bearerToken(t)

	doc, err := env.service.UploadDocument(ctx, application.CreateDocumentInput{Title: "Manual"}, "manual.pdf", 3, strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("upload document: %v", err)
	}

	resp := env.do(t, http.MethodGet, "/api/documents/"+doc.ID+"/url", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 minting document url, got %d", resp.StatusCode)
	}
	var minted struct {
		URL string `json:"url"`
	}
	decodeBody(t, resp, &minted)
	if status, body := env.fetchStored(t, minted.URL); status != http.StatusOK || body != "pdf" {
		t.Fatalf("expected fetchable document, got status %d body %q", status, body)
	}

	resp = env.do(t, http.MethodGet, "/api/documents/missing/url", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing document, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Attachments share the private bucket; the upload records the part's
	// content type and the url endpoint mints access the same way.
	task, err := env.service.CreateTask(ctx, application.CreateTaskInput{Title: "Attach"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	buf := &bytes.Buffer{}
	form := multipart.NewWriter(buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="report.csv"`)
	header.Set("Content-Type", "text/csv")
	part, err := form.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte("a,b")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/tasks/"+task.ID+"/attachments", buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload attachment: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on attachment upload, got %d", resp.StatusCode)
	}
	var att domain.TaskAttachment
	decodeBody(t, resp, &att)
	if att.FileType != "text/csv" {
		t.Fatalf("expected content type recorded, got %q", att.FileType)
	}

	resp = env.do(t, http.MethodGet, "/api/attachments/"+att.ID+"/url", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 minting attachment url, got %d", resp.StatusCode)
	}
	decodeBody(t, resp, &minted)
	if status, body := env.fetchStored(t, minted.URL); status != http.StatusOK || body != "a,b" {
		t.Fatalf("expected fetchable attachment, got status %d body %q", status, body)
	}
}
