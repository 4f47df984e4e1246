package app

import (
	"context"
	"log/slog"
	"path/filepath"

	httpapp "premium_gallery/internal/app/http"
	"premium_gallery/internal/config"
	"premium_gallery/internal/lib/logger/sl"
	"premium_gallery/internal/repository"
	"premium_gallery/internal/services/auth"
	creators "premium_gallery/internal/services/creator_service"
	gallery "premium_gallery/internal/services/gallery_service"
	"premium_gallery/internal/services/media"
	mediasvc "premium_gallery/internal/services/media_service"
	subscriptions "premium_gallery/internal/services/subscription_service"
	tokens "premium_gallery/internal/services/token_service"
	filestorage "premium_gallery/internal/storage/filestorage"
	"premium_gallery/internal/storage/postgresql"
	redisapp "premium_gallery/internal/storage/redis"
	httprouters "premium_gallery/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server

	log   *slog.Logger
	repo  *repository.Repository
	redis *redisapp.Client
}

// New wires every dependency and panics if one is unavailable.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) *App {
	pool, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		panic(err)
	}
	if err := postgresql.Migrate(ctx, pool); err != nil {
		panic(err)
	}
	repo := repository.NewRepositoryFromPool(pool)

	rdb := redisapp.MustConnect(ctx, cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)

	uploads, err := filestorage.NewLocalFileStorage(cfg.FileStorage.UploadsDir, cfg.FileStorage.BaseURL)
	if err != nil {
		panic(err)
	}
	public, err := filestorage.NewLocalFileStorage(cfg.FileStorage.PublicDir, cfg.FileStorage.BaseURL)
	if err != nil {
		panic(err)
	}

	mirrors := []filestorage.Backend{public}
	if cfg.ObjectStorage.Enabled {
		s3, err := filestorage.NewMinioBackend(ctx,
			cfg.ObjectStorage.Endpoint,
			cfg.ObjectStorage.AccessKey,
			cfg.ObjectStorage.SecretKey,
			cfg.ObjectStorage.Bucket,
			cfg.ObjectStorage.UseSSL,
		)
		if err != nil {
			panic(err)
		}
		mirrors = append(mirrors, s3)
	}
	store := filestorage.NewArtifactStore(log, uploads, mirrors...)

	workDir := filepath.Clean(cfg.FileStorage.WorkDir)
	galleryImages := media.NewProcessor(log, cfg.Upload.Gallery, uploads, store, workDir)
	contentImages := media.NewProcessor(log, cfg.Upload.Content, uploads, store, workDir)
	profileImages := media.NewProcessor(log, cfg.Upload.Profile, uploads, store, workDir)

	tokenService := tokens.NewTokenService(log, repository.NewRedisSessionRepo(rdb), cfg.SessionSecret, cfg.SessionTTL)
	creatorService := creators.NewCreatorService(log, repo.Creator, profileImages, cfg.Cache.CreatorStatusTTL)
	authService := auth.New(log, repo.User, repo.User, creatorService, tokenService)
	galleryService := gallery.NewGalleryService(log, repo.Gallery, galleryImages, store)
	mediaService := mediasvc.NewMediaService(log, repo.Media, contentImages)
	subscriptionService := subscriptions.NewSubscriptionService(log,
		repo.Subscription,
		repo.Gallery,
		creatorService,
		cfg.Billing.SubscriptionPeriod,
		cfg.Billing.ItemPriceCents,
	)

	routers := httprouters.NewRouter(log, authService, galleryService, mediaService, creatorService, subscriptionService)

	server := httpapp.New(log, httpapp.Options{
		Env:           cfg.Env,
		Host:          cfg.HTTP.Host,
		Port:          cfg.HTTP.Port,
		BodyLimit:     cfg.HTTP.BodyLimit,
		SessionSecret: cfg.SessionSecret,
		UploadsDir:    uploads.GetBaseDir(),
		UploadsURL:    uploads.BaseURL(),
		Postgres:      repo.Ping,
		Redis:         rdb.HealthCheck,
	}, routers, tokenService)
	server.BuildRouters()

	return &App{
		HTTPServer: server,
		log:        log,
		repo:       repo,
		redis:      rdb,
	}
}

// Stop shuts the HTTP server down, then closes the stores.
func (a *App) Stop() {
	if err := a.HTTPServer.Stop(); err != nil {
		a.log.Error("failed to stop http server", sl.Err(err))
	}
	if err := a.redis.Close(); err != nil {
		a.log.Error("failed to close redis", sl.Err(err))
	}
	a.repo.Close()
}
