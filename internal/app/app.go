package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/finpro/finpro/internal/config"
	"github.com/finpro/finpro/internal/database"
	"github.com/finpro/finpro/internal/utils"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	db     *pgxpool.Pool
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	r := NewRouter(BuildDependencies(NewRepositories(db), &utils.SystemClock{}, cfg))

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, db: db, router: r, srv: srv}, nil
}

// NewRouter applies the middleware chain and registers every route.
func NewRouter(deps *Dependencies) *mux.Router {
	r := mux.NewRouter()
	SetupMiddleware(r, deps)
	RegisterRoutes(r, deps)
	return r
}

// Run starts the HTTP server and blocks until ctx is done, then shuts the server down.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.srv.Shutdown(shutdownCtx)
}
