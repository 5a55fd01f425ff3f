package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/plumekit/plume/internal/cache"
	"github.com/plumekit/plume/internal/config"
	"github.com/plumekit/plume/internal/db"
	"github.com/plumekit/plume/internal/repository"
	"github.com/plumekit/plume/internal/service"
	"github.com/plumekit/plume/internal/storage"
)

type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB
	UserRepo          repository.UserRepository
	AuthService       *service.AuthService
	FileService       *service.FileService
	PostService       *service.PostService
	CommentService    *service.CommentService
	TaxonomyService   *service.TaxonomyService
	FeatherService    *service.FeatherService
	CacheService      *service.CacheService
	MAPTCHAService    *service.MAPTCHAService
	SiteModuleService *service.SiteModuleService
	SitemapService    *service.SitemapService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Connect(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	postRepository := repository.NewPostRepository(database)
	categoryRepository := repository.NewCategoryRepository(database)
	tagRepository := repository.NewTagRepository(database)
	commentRepository := repository.NewCommentRepository(database)
	likeRepository := repository.NewLikeRepository(database)
	featherRepository := repository.NewFeatherRepository(database)
	fileRepository := repository.NewFileRepository(database)
	cacheRepository := repository.NewCacheEntryRepository(database)
	maptchaRepository := repository.NewMAPTCHARepository(database)
	siteModuleRepository := repository.NewSiteModuleRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Volatile cache tier: process-local by default, shared via Redis when
	// configured.
	volatile, err := newVolatileTier(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache tier: %v", err)
	}

	// Services
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry, cfg.IsProduction())
	fileService := service.NewFileService(fileRepository, fileStorage)
	featherService := service.NewFeatherService(featherRepository, postRepository, fileRepository, fileService)
	postService := service.NewPostService(postRepository, categoryRepository, tagRepository, userRepository, likeRepository, featherService)
	commentService := service.NewCommentService(commentRepository, postRepository, userRepository)
	taxonomyService := service.NewTaxonomyService(categoryRepository, tagRepository)
	cacheService := service.NewCacheService(volatile, cacheRepository, cfg.CacheTTL)
	maptchaService := service.NewMAPTCHAService(maptchaRepository)
	siteModuleService := service.NewSiteModuleService(siteModuleRepository, postRepository, cfg.AppURL)
	sitemapService := service.NewSitemapService(postService, taxonomyService, cfg.AppURL)

	return &App{
		Cfg:               cfg,
		DB:                database,
		UserRepo:          userRepository,
		AuthService:       authService,
		FileService:       fileService,
		PostService:       postService,
		CommentService:    commentService,
		TaxonomyService:   taxonomyService,
		FeatherService:    featherService,
		CacheService:      cacheService,
		MAPTCHAService:    maptchaService,
		SiteModuleService: siteModuleService,
		SitemapService:    sitemapService,
	}, nil
}

func newVolatileTier(cfg *config.Config) (cache.Tier, error) {
	if cfg.CacheTier == "redis" {
		return cache.NewRedisTier(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}
	return cache.NewMemoryTier(), nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
