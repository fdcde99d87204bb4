package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"
)

func doLogin(ctx context.Context, cfg cliConfig, email, password, tokenName string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "auth.login", map[string]any{
			"email":      email,
			"password":   password,
			"token_name": tokenName,
		}, out)
	}
	client := newAPIClient(cfg.Server, "")
	return client.request(ctx, http.MethodPost, "/api/auth/login", map[string]any{
		"email":      email,
		"password":   password,
		"mode":       "token",
		"token_name": tokenName,
	}, out)
}

func doWhoAmI(ctx context.Context, cfg cliConfig, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "auth.whoami", map[string]any{"token": cfg.Token}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/auth/whoami", nil, out)
}

func doLogout(ctx context.Context, cfg cliConfig) error {
	if cfg.Transport == "uds" {
		return nil
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func doToolsList(ctx context.Context, cfg cliConfig, category string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "tools.list", map[string]any{"category": category}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	path := "/api/tools"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	return client.request(ctx, http.MethodGet, path, nil, out)
}

func doToolsGet(ctx context.Context, cfg cliConfig, id string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "tools.get", map[string]any{"id": id}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/tools/"+id, nil, out)
}

func doToolsCreate(ctx context.Context, cfg cliConfig, name, description, status, category, apiEndpoint string, isPublic bool, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "tools.create", map[string]any{
			"token":        cfg.Token,
			"name":         name,
			"description":  description,
			"status":       status,
			"category":     category,
			"api_endpoint": apiEndpoint,
			"is_public":    isPublic,
		}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/tools", map[string]any{
		"name":         name,
		"description":  description,
		"status":       status,
		"category":     category,
		"api_endpoint": apiEndpoint,
		"is_public":    isPublic,
	}, out)
}

func doToolsDelete(ctx context.Context, cfg cliConfig, id string) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "tools.delete", map[string]any{"token": cfg.Token, "id": id}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodDelete, "/api/tools/"+id, nil, nil)
}

func doToolsRecordUsage(ctx context.Context, cfg cliConfig, toolID string) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "tools.usage.record", map[string]any{"token": cfg.Token, "tool_id": toolID}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/tools/"+toolID+"/usage", nil, nil)
}

func doDocumentsList(ctx context.Context, cfg cliConfig, category string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "documents.list", map[string]any{"category": category}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	path := "/api/documents"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	return client.request(ctx, http.MethodGet, path, nil, out)
}

func doDocumentsCreate(ctx context.Context, cfg cliConfig, title, description, category, subcategory, fileURL string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "documents.create", map[string]any{
			"token":       cfg.Token,
			"title":       title,
			"description": description,
			"category":    category,
			"subcategory": subcategory,
			"file_url":    fileURL,
		}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/documents", map[string]any{
		"title":       title,
		"description": description,
		"category":    category,
		"subcategory": subcategory,
		"file_url":    fileURL,
	}, out)
}

func doDocumentsURL(ctx context.Context, cfg cliConfig, id string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "documents.url", map[string]any{"id": id}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/documents/"+id+"/url", nil, out)
}

// doDocumentsUpload streams a local file as multipart; file uploads only go
// over the HTTP transport.
func doDocumentsUpload(ctx context.Context, cfg cliConfig, filePath, title, description, category, subcategory string, out any) error {
	if cfg.Transport == "uds" {
		return errors.New("file uploads require the http transport")
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.uploadFile(ctx, "/api/documents/upload", filePath, map[string]string{
		"title":       title,
		"description": description,
		"category":    category,
		"subcategory": subcategory,
	}, out)
}

func doDocumentsDelete(ctx context.Context, cfg cliConfig, id string) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "documents.delete", map[string]any{"token": cfg.Token, "id": id}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodDelete, "/api/documents/"+id, nil, nil)
}

func doCategoriesList(ctx context.Context, cfg cliConfig, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "categories.list", map[string]any{}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/categories", nil, out)
}

func doCategoriesCreate(ctx context.Context, cfg cliConfig, name, description string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "categories.create", map[string]any{"token": cfg.Token, "name": name, "description": description}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/categories", map[string]any{"name": name, "description": description}, out)
}

func doCategoriesDelete(ctx context.Context, cfg cliConfig, id string) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "categories.delete", map[string]any{"token": cfg.Token, "id": id}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodDelete, "/api/categories/"+id, nil, nil)
}

func doSubcategoriesList(ctx context.Context, cfg cliConfig, categoryID string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "subcategories.list", map[string]any{"category": categoryID}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	path := "/api/subcategories"
	if categoryID != "" {
		path += "?category=" + url.QueryEscape(categoryID)
	}
	return client.request(ctx, http.MethodGet, path, nil, out)
}

func doSubcategoriesCreate(ctx context.Context, cfg cliConfig, name, categoryID string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "subcategories.create", map[string]any{"token": cfg.Token, "name": name, "category_id": categoryID}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/subcategories", map[string]any{"name": name, "category_id": categoryID}, out)
}

func doSubcategoriesDelete(ctx context.Context, cfg cliConfig, id string) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "subcategories.delete", map[string]any{"token": cfg.Token, "id": id}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodDelete, "/api/subcategories/"+id, nil, nil)
}

func doTasksList(ctx context.Context, cfg cliConfig, status string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "tasks.list", map[string]any{"status": status}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	path := "/api/tasks"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	return client.request(ctx, http.MethodGet, path, nil, out)
}

func doTasksGet(ctx context.Context, cfg cliConfig, id string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "tasks.get", map[string]any{"id": id}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/tasks/"+id, nil, out)
}

func doTasksCreate(ctx context.Context, cfg cliConfig, title, description, status, priority, assigneeID string, dueDate *time.Time, tags []string, out any) error {
	payload := map[string]any{
		"title":       title,
		"description": description,
		"status":      status,
		"priority":    priority,
		"assignee_id": assigneeID,
		"tags":        tags,
	}
	if dueDate != nil {
		payload["due_date"] = dueDate
	}
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		payload["token"] = cfg.Token
		return client.call(ctx, "tasks.create", payload, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/tasks", payload, out)
}

func doTasksProgress(ctx context.Context, cfg cliConfig, id string, progress int, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "tasks.progress", map[string]any{"token": cfg.Token, "id": id, "progress": progress}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPatch, "/api/tasks/"+id+"/progress", map[string]any{"progress": progress}, out)
}

func doTasksDelete(ctx context.Context, cfg cliConfig, id string) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "tasks.delete", map[string]any{"token": cfg.Token, "id": id}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}

func doTasksTags(ctx context.Context, cfg cliConfig, id string, tags []string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "tasks.tags", map[string]any{"token": cfg.Token, "id": id, "tags": tags}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPut, "/api/tasks/"+id+"/tags", map[string]any{"tags": tags}, out)
}

func doSettingsGet(ctx context.Context, cfg cliConfig, userID string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "settings.get", map[string]any{"user_id": userID}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/settings/"+userID, nil, out)
}

func doSettingsSave(ctx context.Context, cfg cliConfig, userID string, partitions map[string]json.RawMessage, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		params := map[string]any{"token": cfg.Token, "user_id": userID}
		for key, raw := range partitions {
			params[key] = raw
		}
		return client.call(ctx, "settings.save", params, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	payload := map[string]any{}
	for key, raw := range partitions {
		payload[key] = raw
	}
	return client.request(ctx, http.MethodPut, "/api/settings/"+userID, payload, out)
}
