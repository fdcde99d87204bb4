package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	sqliteadapter "github.com/workdeckhq/workdeck/internal/adapters/db/sqlite"
	httpadapter "github.com/workdeckhq/workdeck/internal/adapters/http"
	rpcadapter "github.com/workdeckhq/workdeck/internal/adapters/rpcjson"
	storageadapter "github.com/workdeckhq/workdeck/internal/adapters/storage"
	"github.com/workdeckhq/workdeck/internal/application"
	"github.com/workdeckhq/workdeck/internal/domain"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "workdeck",
		Usage: "Workdeck dashboard server and CLI",
		Commands: []*cli.Command{
			serverCommand(),
			authCommand(),
			toolsCommand(),
			documentsCommand(),
			categoriesCommand(),
			tasksCommand(),
			settingsCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx, serverOptions{
				Addr:              ":8080",
				RPCSocket:         "/tmp/workdeck.sock",
				DBPath:            "workdeck.db",
				StorageDir:        "workdeck-storage",
				BaseURL:           "http://127.0.0.1:8080",
				SignKey:           "dev-sign-key",
				BootstrapEmail:    "admin@workdeck.local",
				BootstrapPassword: "admin123!",
			})
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}

type serverOptions struct {
	Addr              string
	RPCSocket         string
	DBPath            string
	StorageDir        string
	BaseURL           string
	SignKey           string
	BootstrapEmail    string
	BootstrapPassword string
}

func serverCommand() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "Run HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "HTTP listen address"},
			&cli.StringFlag{Name: "rpc-socket", Value: "/tmp/workdeck.sock", Usage: "JSON-RPC unix socket path"},
			&cli.StringFlag{Name: "db-path", Value: "workdeck.db", Usage: "SQLite database path"},
			&cli.StringFlag{Name: "storage-dir", Value: "workdeck-storage", Usage: "file storage root directory"},
			&cli.StringFlag{Name: "base-url", Value: "http://127.0.0.1:8080", Usage: "public base URL for stored files"},
			&cli.StringFlag{Name: "sign-key", Value: "dev-sign-key", Usage: "HMAC key for signed file URLs"},
			&cli.StringFlag{Name: "bootstrap-admin-email", Value: "admin@workdeck.local", Usage: "initial admin email"},
			&cli.StringFlag{Name: "bootstrap-admin-password", Value: "admin123!", Usage: "initial admin password when users are empty"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx, serverOptions{
				Addr:              c.String("addr"),
				RPCSocket:         c.String("rpc-socket"),
				DBPath:            c.String("db-path"),
				StorageDir:        c.String("storage-dir"),
				BaseURL:           c.String("base-url"),
				SignKey:           c.String("sign-key"),
				BootstrapEmail:    c.String("bootstrap-admin-email"),
				BootstrapPassword: c.String("bootstrap-admin-password"),
			})
		},
	}
}

func runServer(ctx context.Context, opts serverOptions) error {
	db, err := sqliteadapter.Open(opts.DBPath)
	if err != nil {
		return err
	}
	if err := sqliteadapter.RunMigrations(ctx, db); err != nil {
		return err
	}

	repo := sqliteadapter.NewDashboardRepository(db)
	blobs, err := storageadapter.NewFileStore(opts.StorageDir, opts.BaseURL, []byte(opts.SignKey))
	if err != nil {
		return err
	}
	service := application.NewDashboardService(repo, blobs)
	auth := application.NewAuthService(repo)

	if err := service.EnsureBuckets(); err != nil {
		return err
	}
	created, err := auth.BootstrapAdmin(ctx, opts.BootstrapEmail, opts.BootstrapPassword, "Administrator")
	if err != nil {
		return err
	}
	if created {
		log.Printf("bootstrapped admin user %s", opts.BootstrapEmail)
	}

	router := httpadapter.NewRouter(service, auth, blobs)
	srv := &http.Server{Addr: opts.Addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	rpcSrv, err := rpcadapter.Start(opts.RPCSocket, service, auth)
	if err != nil {
		return err
	}

	defer func() {
		_ = rpcSrv.Close()
	}()
	log.Printf("json-rpc listening on unix://%s", opts.RPCSocket)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authentication commands",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Login and store CLI token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "transport", Value: "uds"},
					&cli.StringFlag{Name: "server", Value: "http://127.0.0.1:8080"},
					&cli.StringFlag{Name: "socket", Value: "/tmp/workdeck.sock"},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "token-name", Value: "cli"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg := cliConfig{Transport: c.String("transport"), Server: c.String("server"), Socket: c.String("socket")}
					var out struct {
						Token string `json:"token"`
					}
					err := doLogin(ctx, cfg, c.String("email"), c.String("password"), c.String("token-name"), &out)
					if err != nil {
						return err
					}
					cfg.Token = out.Token
					if err := saveConfig(cfg); err != nil {
						return err
					}
					fmt.Printf("logged in as %s\n", c.String("email"))
					return nil
				},
			},
			{
				Name:  "whoami",
				Usage: "Show current authenticated user",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out struct {
						ID    string `json:"id"`
						Email string `json:"email"`
					}
					if err := doWhoAmI(ctx, cfg, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printKV([][2]string{{"id", out.ID}, {"email", out.Email}})
					return nil
				},
			},
			{
				Name:  "logout",
				Usage: "Clear local CLI auth token",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					_ = doLogout(ctx, cfg)
					cfg.Token = ""
					if err := saveConfig(cfg); err != nil {
						return err
					}
					fmt.Println("logged out")
					return nil
				},
			},
		},
	}
}

func toolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tools",
		Usage: "Tool catalog commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tools",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.Tool
					if err := doToolsList(ctx, cfg, c.String("category"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printTools(out)
					return nil
				},
			},
			{
				Name:  "get",
				Usage: "Show one tool",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Tool
					if err := doToolsGet(ctx, cfg, c.String("id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printTools([]domain.Tool{out})
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create tool",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.StringFlag{Name: "status", Value: "active"},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "api-endpoint"},
					&cli.BoolFlag{Name: "public"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Tool
					err = doToolsCreate(ctx, cfg, c.String("name"), c.String("description"), c.String("status"), c.String("category"), c.String("api-endpoint"), c.Bool("public"), &out)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printTools([]domain.Tool{out})
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete tool",
				Flags: []cli.Flag{&cli.StringFlag{Name: "id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doToolsDelete(ctx, cfg, c.String("id")); err != nil {
						return err
					}
					fmt.Println("deleted")
					return nil
				},
			},
			{
				Name:  "use",
				Usage: "Record one usage of a tool for today",
				Flags: []cli.Flag{&cli.StringFlag{Name: "id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doToolsRecordUsage(ctx, cfg, c.String("id")); err != nil {
						return err
					}
					fmt.Println("usage recorded")
					return nil
				},
			},
		},
	}
}

func documentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "documents",
		Usage: "Document library commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List documents",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.Document
					if err := doDocumentsList(ctx, cfg, c.String("category"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printDocuments(out)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create document record",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "subcategory"},
					&cli.StringFlag{Name: "file-url"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Document
					err = doDocumentsCreate(ctx, cfg, c.String("title"), c.String("description"), c.String("category"), c.String("subcategory"), c.String("file-url"), &out)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printDocuments([]domain.Document{out})
					return nil
				},
			},
			{
				Name:  "url",
				Usage: "Print a fetchable URL for a document's file",
				Flags: []cli.Flag{&cli.StringFlag{Name: "id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out struct {
						URL string `json:"url"`
					}
					if err := doDocumentsURL(ctx, cfg, c.String("id"), &out); err != nil {
						return err
					}
					fmt.Println(out.URL)
					return nil
				},
			},
			{
				Name:  "upload",
				Usage: "Upload a local file and create its document record",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Required: true, Usage: "path to the local file"},
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "subcategory"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Document
					err = doDocumentsUpload(ctx, cfg, c.String("file"), c.String("title"), c.String("description"), c.String("category"), c.String("subcategory"), &out)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printDocuments([]domain.Document{out})
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete document and its stored file",
				Flags: []cli.Flag{&cli.StringFlag{Name: "id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doDocumentsDelete(ctx, cfg, c.String("id")); err != nil {
						return err
					}
					fmt.Println("deleted")
					return nil
				},
			},
		},
	}
}

func categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "Document category commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List categories",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.Category
					if err := doCategoriesList(ctx, cfg, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printCategories(out)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create category",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Category
					if err := doCategoriesCreate(ctx, cfg, c.String("name"), c.String("description"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printCategories([]domain.Category{out})
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete category and its subcategories",
				Flags: []cli.Flag{&cli.StringFlag{Name: "id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doCategoriesDelete(ctx, cfg, c.String("id")); err != nil {
						return err
					}
					fmt.Println("deleted")
					return nil
				},
			},
			{
				Name:  "subcategories",
				Usage: "Manage subcategories",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List subcategories",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "category", Usage: "filter by category id"},
							&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							var out []domain.Subcategory
							if err := doSubcategoriesList(ctx, cfg, c.String("category"), &out); err != nil {
								return err
							}
							if c.Bool("json") {
								return printJSON(out)
							}
							printSubcategories(out)
							return nil
						},
					},
					{
						Name:  "create",
						Usage: "Create subcategory",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Required: true},
							&cli.StringFlag{Name: "category-id", Required: true},
							&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							var out domain.Subcategory
							if err := doSubcategoriesCreate(ctx, cfg, c.String("name"), c.String("category-id"), &out); err != nil {
								return err
							}
							if c.Bool("json") {
								return printJSON(out)
							}
							printSubcategories([]domain.Subcategory{out})
							return nil
						},
					},
					{
						Name:  "delete",
						Usage: "Delete subcategory, moving its documents to Geral",
						Flags: []cli.Flag{&cli.StringFlag{Name: "id", Required: true}},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							if err := doSubcategoriesDelete(ctx, cfg, c.String("id")); err != nil {
								return err
							}
							fmt.Println("deleted")
							return nil
						},
					},
				},
			},
		},
	}
}

func tasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Task tracker commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.Task
					if err := doTasksList(ctx, cfg, c.String("status"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printTasks(out)
					return nil
				},
			},
			{
				Name:  "get",
				Usage: "Show task with tags, comments and attachments",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.TaskDetail
					if err := doTasksGet(ctx, cfg, c.String("id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printTaskDetail(out)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create task",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.StringFlag{Name: "status", Value: "todo"},
					&cli.StringFlag{Name: "priority", Value: "medium"},
					&cli.StringFlag{Name: "assignee"},
					&cli.StringFlag{Name: "due", Usage: "due date, RFC 3339"},
					&cli.StringSliceFlag{Name: "tag"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var due *time.Time
					if raw := c.String("due"); raw != "" {
						parsed, err := time.Parse(time.RFC3339, raw)
						if err != nil {
							return fmt.Errorf("invalid due date: %w", err)
						}
						due = &parsed
					}
					var out domain.Task
					err = doTasksCreate(ctx, cfg, c.String("title"), c.String("description"), c.String("status"), c.String("priority"), c.String("assignee"), due, c.StringSlice("tag"), &out)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printTasks([]domain.Task{out})
					return nil
				},
			},
			{
				Name:  "progress",
				Usage: "Set task progress percentage",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
					&cli.IntFlag{Name: "value", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Task
					if err := doTasksProgress(ctx, cfg, c.String("id"), int(c.Int("value")), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printTasks([]domain.Task{out})
					return nil
				},
			},
			{
				Name:  "tags",
				Usage: "Replace a task's tags",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
					&cli.StringSliceFlag{Name: "tag"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.TaskTag
					if err := doTasksTags(ctx, cfg, c.String("id"), c.StringSlice("tag"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					for _, tag := range out {
						fmt.Println(tag.Tag)
					}
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete task",
				Flags: []cli.Flag{&cli.StringFlag{Name: "id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doTasksDelete(ctx, cfg, c.String("id")); err != nil {
						return err
					}
					fmt.Println("deleted")
					return nil
				},
			},
		},
	}
}

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "User settings commands",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Show a user's settings",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user-id", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out map[string]any
					if err := doSettingsGet(ctx, cfg, c.String("user-id"), &out); err != nil {
						return err
					}
					return printJSON(out)
				},
			},
			{
				Name:  "save",
				Usage: "Replace a user's settings partitions",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user-id", Required: true},
					&cli.StringFlag{Name: "general", Usage: "general settings JSON object"},
					&cli.StringFlag{Name: "account", Usage: "account settings JSON object"},
					&cli.StringFlag{Name: "appearance", Usage: "appearance settings JSON object"},
					&cli.StringFlag{Name: "security", Usage: "security settings JSON object"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					partitions := map[string]json.RawMessage{}
					for _, key := range []string{"general", "account", "appearance", "security"} {
						raw := c.String(key)
						if raw == "" {
							continue
						}
						if !json.Valid([]byte(raw)) {
							return fmt.Errorf("--%s is not valid JSON", key)
						}
						partitions[key] = json.RawMessage(raw)
					}
					var out map[string]any
					if err := doSettingsSave(ctx, cfg, c.String("user-id"), partitions, &out); err != nil {
						return err
					}
					return printJSON(out)
				},
			},
		},
	}
}

func jsonMarshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
