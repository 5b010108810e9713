package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Skotchmaster/emoji_shop/internal/config"
	pkgdb "github.com/Skotchmaster/emoji_shop/internal/db"
	"github.com/Skotchmaster/emoji_shop/internal/events"
	"github.com/Skotchmaster/emoji_shop/internal/httpserver"
	"github.com/Skotchmaster/emoji_shop/internal/logging"
	loggingmw "github.com/Skotchmaster/emoji_shop/internal/middleware/logging"
	"github.com/Skotchmaster/emoji_shop/internal/repo"
	"github.com/Skotchmaster/emoji_shop/internal/search"
	"github.com/Skotchmaster/emoji_shop/internal/service"
)

func main() {
	cfg := config.Load()
	cfg.MustValid()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(openCtx, cfg.DatabaseURL, logger)
	if err == nil {
		err = pkgdb.Migrate(openCtx, db)
	}
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewProducer(cfg.KafkaBrokers)
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	index := openSearchIndex(ctx, cfg, logger)

	r := &repo.GormRepo{DB: db}
	authSvc := &service.AuthService{Repo: r, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.JWTTTL, Events: publisher}
	catalogSvc := &service.CatalogService{Repo: r, Events: publisher}
	if index != nil {
		catalogSvc.Index = index
	}
	orderSvc := &service.OrderService{Repo: r, Events: publisher}
	adminSvc := &service.AdminService{Auth: authSvc, Catalog: catalogSvc, Orders: orderSvc}

	if cfg.AdminEmail != "" {
		if _, err := authSvc.EnsureAdmin(ctx, service.RegisterInput{
			Name:     cfg.AdminName,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		}); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		OrderHandler:   &httpserver.OrderHTTP{Svc: orderSvc},
		AdminHandler:   &httpserver.AdminHTTP{Svc: adminSvc},
		Verifier:       authSvc,
		Ready:          func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if err := closeAll(publisher, db); err != nil {
		logger.Error("close_failed", "error", err)
	}

	logger.Info("server_stopped")
}

// openSearchIndex returns nil when search is not configured or unreachable;
// the catalog then searches the database.
func openSearchIndex(ctx context.Context, cfg config.Config, logger *slog.Logger) *search.Index {
	if cfg.ESURL == "" {
		return nil
	}
	client, err := search.NewClient(search.Config{
		Addresses: []string{cfg.ESURL},
		Username:  cfg.ESUser,
		Password:  cfg.ESPassword,
	})
	if err != nil {
		logger.Warn("search_disabled", "reason", "cannot create client", "error", err)
		return nil
	}

	idx := search.New(client, cfg.ESIndex)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := idx.Ping(pingCtx); err != nil {
		logger.Warn("search_disabled", "reason", "cluster unreachable", "error", err)
		return nil
	}
	if err := idx.EnsureIndex(pingCtx); err != nil {
		logger.Warn("search_disabled", "reason", "cannot create index", "error", err)
		return nil
	}
	logger.Info("search_enabled", "url", cfg.ESURL, "index", cfg.ESIndex)
	return idx
}

func closeAll(publisher events.Publisher, db *gorm.DB) error {
	var g errgroup.Group
	g.Go(publisher.Close)
	g.Go(func() error { return pkgdb.Close(db) })
	return g.Wait()
}
