package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/appshelf/appshelf/internal/config"
	"github.com/appshelf/appshelf/internal/database"
	"github.com/appshelf/appshelf/internal/filestorage"
	"github.com/appshelf/appshelf/internal/firebase"
	"github.com/appshelf/appshelf/internal/metrics"
	"github.com/appshelf/appshelf/internal/queue"
	"github.com/appshelf/appshelf/internal/usecase"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
)

// Service is the asset surface the handlers drive.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	UpsertAppAssets(context.Context, uuid.UUID, string, usecase.AssetSlots) (usecase.AppAsset, error)
	DeleteAppAssets(context.Context, uuid.UUID, string) (usecase.DeleteAppAssetsResult, error)
	GetAppAssets(context.Context, uuid.UUID) (usecase.AppAssetURLs, error)
	GetAppInstallQR(context.Context, uuid.UUID, int) ([]byte, error)
	AuditAppAssets(context.Context, uuid.UUID, string) (usecase.AppAssetAudit, error)

	UploadProfileImage(context.Context, string, usecase.File) (usecase.ProfileImageURL, error)
	ListProfileImages(context.Context, string) ([]usecase.ProfileImageURL, error)
	GetProfileImageURL(context.Context, string) (usecase.ProfileImageURL, error)
}

// IdentityProvider resolves a bearer token to the acting identity.
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, token string) (string, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Service  Service
	Identity IdentityProvider
	Queue    Pinger
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	// IsLocal accepts the X-User-Id header in place of a token.
	IsLocal bool
	// UploadRateLimit is mutating uploads per second per identity.
	UploadRateLimit float64
}

type Server struct {
	server    Service
	identity  IdentityProvider
	queue     Pinger
	gatherer  prometheus.Gatherer
	validator *validator.Validate
	logger    *slog.Logger

	isLocal         bool
	uploadRateLimit float64
}

func New(opt Options) *Server {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Gatherer == nil {
		opt.Gatherer = prometheus.DefaultGatherer
	}
	if opt.UploadRateLimit <= 0 {
		opt.UploadRateLimit = config.DEFAULT_UPLOAD_RATE_LIMIT
	}
	return &Server{
		server:          opt.Service,
		identity:        opt.Identity,
		queue:           opt.Queue,
		gatherer:        opt.Gatherer,
		validator:       validator.New(),
		logger:          opt.Logger,
		isLocal:         opt.IsLocal,
		uploadRateLimit: opt.UploadRateLimit,
	}
}

// App owns the HTTP server and every long-lived connection behind it.
type App struct {
	http    *http.Server
	closers []func() error
}

func NewApp(ctx context.Context, logger *slog.Logger) (*App, error) {
	var (
		closers []func() error
		isLocal = os.Getenv(config.ENV_KEY_APP_ENV) == "local"
	)
	fail := func(err error) (*App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		return nil, err
	}

	gormDB, err := database.Open(logger)
	if err != nil {
		return nil, err
	}
	repo, err := database.New(gormDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}
	closers = append(closers, repo.Close)

	fsp, err := filestorage.NewFromEnv(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to create storage provider: %w", err))
	}

	rdb, err := queue.NewRedisClient()
	if err != nil {
		return fail(err)
	}
	closers = append(closers, rdb.Close)

	qc := queue.NewClient(rdb, logger)
	closers = append(closers, qc.Close)

	var identity IdentityProvider
	fb, err := firebase.New(ctx, os.Getenv(config.ENV_KEY_FIREBASE_SERVICE_ACCOUNT_KEY_PATH))
	switch {
	case err == nil:
		identity = fb
	case isLocal:
		logger.WarnContext(ctx, "firebase unavailable, accepting X-User-Id only", slog.String("err", err.Error()))
	default:
		return fail(err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	uc := usecase.New(repo, fsp, qc, m, logger)

	rateLimit, err := strconv.ParseFloat(os.Getenv(config.ENV_KEY_UPLOAD_RATE_LIMIT), 64)
	if err != nil {
		rateLimit = config.DEFAULT_UPLOAD_RATE_LIMIT
	}

	s := New(Options{
		Service:         uc,
		Identity:        identity,
		Queue:           qc,
		Gatherer:        prometheus.DefaultGatherer,
		Logger:          logger,
		IsLocal:         isLocal,
		UploadRateLimit: rateLimit,
	})

	port, _ := strconv.Atoi(os.Getenv(config.ENV_KEY_PORT))
	if port == 0 {
		port = 8080
	}

	return &App{
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      s.RegisterRoutes(),
			IdleTimeout:  time.Minute,
			ReadTimeout:  2 * time.Minute,
			WriteTimeout: 2 * time.Minute,
		},
		closers: closers,
	}, nil
}

func (a *App) Addr() string {
	return a.http.Addr
}

func (a *App) ListenAndServe() error {
	if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then closes connections in reverse
// order of creation.
func (a *App) Shutdown(ctx context.Context) error {
	errs := []error{a.http.Shutdown(ctx)}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
