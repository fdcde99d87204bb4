package rpcjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/workdeckhq/workdeck/internal/application"
	"github.com/workdeckhq/workdeck/internal/domain"
)

type Server struct {
	service  *application.DashboardService
	auth     *application.AuthService
	listener net.Listener
	path     string
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

type response struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func Start(path string, service *application.DashboardService, auth *application.AuthService) (*Server, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("rpc socket path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		_ = os.Remove(path)
		return nil, err
	}

	s := &Server{service: service, auth: auth, listener: ln, path: path}
	go s.serve()
	return s, nil
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *Server) Close() error {
	err := s.listener.Close()
	_ = os.Remove(s.path)
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			_ = enc.Encode(response{JSONRPC: "2.0", Error: &rpcError{Code: -32700, Message: "parse error"}, ID: nil})
			return
		}

		resp := s.dispatch(context.Background(), req)
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req request) response {
	if req.JSONRPC != "2.0" || strings.TrimSpace(req.Method) == "" {
		return response{JSONRPC: "2.0", Error: &rpcError{Code: -32600, Message: "invalid request"}, ID: req.ID}
	}

	switch req.Method {
	case "auth.login":
		return s.handleAuthLogin(ctx, req)
	case "auth.whoami":
		identity, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		return result(req.ID, map[string]any{"id": identity.User.ID, "email": identity.User.Email})

	case "tools.list":
		var p struct {
			Category string `json:"category"`
		}
		decodeParams(req.Params, &p)
		items, err := s.service.ListTools(ctx, p.Category)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, items)
	case "tools.get":
		var p struct {
			ID string `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.GetTool(ctx, p.ID)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, out)
	case "tools.create":
		identity, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		var p struct {
			Token       string `json:"token"`
			Name        string `json:"name"`
			Description string `json:"description"`
			Status      string `json:"status"`
			Category    string `json:"category"`
			APIEndpoint string `json:"api_endpoint"`
			IsPublic    bool   `json:"is_public"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.CreateTool(ctx, application.CreateToolInput{
			Name:        p.Name,
			Description: p.Description,
			Status:      p.Status,
			Category:    p.Category,
			APIEndpoint: p.APIEndpoint,
			IsPublic:    p.IsPublic,
			CreatedBy:   identity.User.ID,
		})
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, out)
	case "tools.delete":
		_, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			ID    string `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.DeleteTool(ctx, p.ID); err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, map[string]any{"success": true})
	case "tools.usage.record":
		identity, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		var p struct {
			Token  string `json:"token"`
			ToolID string `json:"tool_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.RecordUsage(ctx, p.ToolID, identity.User.ID); err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, map[string]any{"success": true})

	case "documents.list":
		var p struct {
			Category string `json:"category"`
		}
		decodeParams(req.Params, &p)
		items, err := s.service.ListDocuments(ctx, p.Category)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, items)
	case "documents.get":
		var p struct {
			ID string `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.GetDocument(ctx, p.ID)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, out)
	case "documents.url":
		var p struct {
			ID string `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		url, err := s.service.DocumentDownloadURL(ctx, p.ID)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, map[string]any{"url": url})
	case "documents.create":
		identity, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		var p struct {
			Token       string `json:"token"`
			Title       string `json:"title"`
			Description string `json:"description"`
			Category    string `json:"category"`
			Subcategory string `json:"subcategory"`
			FileURL     string `json:"file_url"`
			FileType    string `json:"file_type"`
			FileSize    int64  `json:"file_size"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.CreateDocument(ctx, application.CreateDocumentInput{
			Title:       p.Title,
			Description: p.Description,
			Category:    p.Category,
			Subcategory: p.Subcategory,
			FileURL:     p.FileURL,
			FileType:    p.FileType,
			FileSize:    p.FileSize,
			CreatedBy:   identity.User.ID,
		})
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, out)
	case "documents.delete":
		_, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			ID    string `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.DeleteDocumentWithFile(ctx, p.ID); err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, map[string]any{"success": true})

	case "categories.list":
		items, err := s.service.ListCategories(ctx)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, items)
	case "categories.create":
		_, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		var p struct {
			Token       string `json:"token"`
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.CreateCategory(ctx, p.Name, p.Description)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, out)
	case "categories.delete":
		_, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			ID    string `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.DeleteCategory(ctx, p.ID); err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, map[string]any{"success": true})
	case "subcategories.list":
		var p struct {
			Category string `json:"category"`
		}
		decodeParams(req.Params, &p)
		items, err := s.service.ListSubcategories(ctx, p.Category)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, items)
	case "subcategories.create":
		_, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		var p struct {
			Token      string `json:"token"`
			Name       string `json:"name"`
			CategoryID string `json:"category_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.CreateSubcategory(ctx, p.Name, p.CategoryID)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, out)
	case "subcategories.delete":
		_, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			ID    string `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.DeleteSubcategory(ctx, p.ID); err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, map[string]any{"success": true})

	case "tasks.list":
		var p struct {
			Status string `json:"status"`
		}
		decodeParams(req.Params, &p)
		items, err := s.service.ListTasks(ctx, p.Status)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, items)
	case "tasks.get":
		var p struct {
			ID string `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.GetTaskDetail(ctx, p.ID)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, out)
	case "tasks.create":
		identity, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		var p struct {
			Token       string     `json:"token"`
			Title       string     `json:"title"`
			Description string     `json:"description"`
			Status      string     `json:"status"`
			Priority    string     `json:"priority"`
			DueDate     *time.Time `json:"due_date"`
			AssigneeID  string     `json:"assignee_id"`
			Tags        []string   `json:"tags"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.CreateTask(ctx, application.CreateTaskInput{
			Title:       p.Title,
			Description: p.Description,
			Status:      p.Status,
			Priority:    p.Priority,
			DueDate:     p.DueDate,
			AssigneeID:  p.AssigneeID,
			CreatedBy:   identity.User.ID,
			Tags:        p.Tags,
		})
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, out)
	case "tasks.progress":
		_, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		var p struct {
			Token    string `json:"token"`
			ID       string `json:"id"`
			Progress int    `json:"progress"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.UpdateTaskProgress(ctx, p.ID, p.Progress)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, out)
	case "tasks.tags":
		_, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		var p struct {
			Token string   `json:"token"`
			ID    string   `json:"id"`
			Tags  []string `json:"tags"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.ReplaceTaskTags(ctx, p.ID, p.Tags)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, out)
	case "tasks.delete":
		_, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			ID    string `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.DeleteTask(ctx, p.ID); err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, map[string]any{"success": true})

	case "settings.get":
		var p struct {
			UserID string `json:"user_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.GetSettings(ctx, p.UserID)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, settingsResult(out))
	case "settings.save":
		_, rpcResp, ok := s.authz(ctx, req)
		if !ok {
			return rpcResp
		}
		var p struct {
			Token      string          `json:"token"`
			UserID     string          `json:"user_id"`
			General    json.RawMessage `json:"general"`
			Account    json.RawMessage `json:"account"`
			Appearance json.RawMessage `json:"appearance"`
			Security   json.RawMessage `json:"security"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.SaveSettings(ctx, domain.UserSettings{
			UserID:             p.UserID,
			GeneralSettings:    p.General,
			AccountSettings:    p.Account,
			AppearanceSettings: p.Appearance,
			SecuritySettings:   p.Security,
		})
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return result(req.ID, settingsResult(out))

	default:
		return response{JSONRPC: "2.0", Error: &rpcError{Code: -32601, Message: "method not found"}, ID: req.ID}
	}
}

func (s *Server) handleAuthLogin(ctx context.Context, req request) response {
	var p struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		TokenName string `json:"token_name"`
	}
	if !decodeParams(req.Params, &p) {
		return invalidParams(req.ID)
	}
	token, err := s.auth.LoginWithAPIToken(ctx, p.Email, p.Password, p.TokenName)
	if err != nil {
		return response{JSONRPC: "2.0", Error: &rpcError{Code: 40100, Message: "invalid credentials"}, ID: req.ID}
	}
	return result(req.ID, map[string]any{"token": token})
}

func (s *Server) authz(ctx context.Context, req request) (domain.Identity, response, bool) {
	var p struct {
		Token string `json:"token"`
	}
	if !decodeParams(req.Params, &p) {
		return domain.Identity{}, invalidParams(req.ID), false
	}
	identity, err := s.auth.AuthenticateBearerToken(ctx, p.Token)
	if err != nil {
		return domain.Identity{}, response{JSONRPC: "2.0", Error: &rpcError{Code: 40100, Message: "unauthorized"}, ID: req.ID}, false
	}
	return identity, response{}, true
}

// settingsResult re-inflates the stored JSON partitions so callers receive
// objects instead of base64 blobs.
func settingsResult(v domain.UserSettings) map[string]any {
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

func decodeParams(raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func result(id any, payload any) response {
	return response{JSONRPC: "2.0", Result: payload, ID: id}
}

func invalidParams(id any) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: -32602, Message: "invalid params"}, ID: id}
}

func errorResponse(id any, err error) response {
	switch {
	case domain.IsValidation(err):
		return response{JSONRPC: "2.0", Error: &rpcError{Code: 40000, Message: err.Error()}, ID: id}
	case errors.Is(err, domain.ErrUnauthorized):
		return response{JSONRPC: "2.0", Error: &rpcError{Code: 40100, Message: "unauthorized"}, ID: id}
	case errors.Is(err, domain.ErrNotFound):
		return response{JSONRPC: "2.0", Error: &rpcError{Code: 40400, Message: err.Error()}, ID: id}
	default:
		return response{JSONRPC: "2.0", Error: &rpcError{Code: 50000, Message: fmt.Sprintf("internal error: %v", err)}, ID: id}
	}
}
