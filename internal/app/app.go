// Package app wires the server side together: the database, the change
// bridge, the sync server and the CRUD API.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/thenoetrevino/pasosync/internal/api"
	"github.com/thenoetrevino/pasosync/internal/bridge"
	"github.com/thenoetrevino/pasosync/internal/daemon"
	"github.com/thenoetrevino/pasosync/internal/database"
	projectservice "github.com/thenoetrevino/pasosync/internal/services/project"
	taskservice "github.com/thenoetrevino/pasosync/internal/services/task"
)

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	repo   *database.Repository
	sync   *daemon.Server
	bridge *bridge.Bridge
	api    *api.Handlers

	ProjectService projectservice.Service
	TaskService    taskservice.Service

	cfg    appConfig
	logger *slog.Logger
}

// New opens the database at dbPath and wires every component. Writes made
// through the services are broadcast to sync clients after commit.
func New(ctx context.Context, dbPath string, opts ...Option) (*App, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := database.InitDB(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	server := daemon.NewServer(cfg.server, cfg.logger)
	br := bridge.New(server.Hub(), cfg.logger)
	repo := database.NewRepository(db, br)

	projects := projectservice.NewService(repo.Projects)
	tasks := taskservice.NewService(repo.Tasks)

	return &App{
		repo:           repo,
		sync:           server,
		bridge:         br,
		api:            api.New(projects, tasks, cfg.logger),
		ProjectService: projects,
		TaskService:    tasks,
		cfg:            cfg,
		logger:         cfg.logger,
	}, nil
}

// Sync returns the websocket sync server
func (a *App) Sync() *daemon.Server {
	return a.sync
}

// Repo returns the underlying repository for direct database access
func (a *App) Repo() *database.Repository {
	return a.repo
}

// Handler routes the websocket endpoint, the CRUD API, /health and /metrics
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(a.cfg.wsPath, a.sync)
	mux.Handle("/api/", a.api.Handler(a.cfg.allowedOrigins))
	mux.HandleFunc("GET /health", api.HandleHealth(a.sync.Registry().Count))
	mux.HandleFunc("GET /metrics", api.HandleMetrics(a.sync.Metrics().GetSnapshot))
	return mux
}

// Run drives the sync heartbeat until ctx is done
func (a *App) Run(ctx context.Context) error {
	return a.sync.Run(ctx)
}

// Close disconnects every client and closes the database
func (a *App) Close() error {
	a.sync.Shutdown()
	return a.repo.Close()
}
