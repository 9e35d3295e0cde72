package initialize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bookshelf/backend/app/cache"
	"bookshelf/backend/app/controllers"
	"bookshelf/backend/app/db"
	jwtutil "bookshelf/backend/app/jwt"
	"bookshelf/backend/app/middleware"
	"bookshelf/backend/app/repo"
	"bookshelf/backend/app/services"
	"bookshelf/backend/app/validation"
	"bookshelf/backend/app/view"
	"bookshelf/backend/config"
	"bookshelf/backend/router"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type App struct {
	Cfg    *config.Config
	Log    zerolog.Logger
	DB     *db.Manager
	Cache  cache.Cache
	Router http.Handler
	Users  *services.UserService
	Books  *services.BookService
	Signer *jwtutil.Signer
}

// Build loads the config at configPath and wires the application.
func Build(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	app, err := BuildWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := config.Watch(configPath, app.reload); err != nil {
		app.Log.Warn().Err(err).Msg("config watch disabled")
	}
	return app, nil
}

// BuildWithConfig wires the application from an already loaded config. The
// database is not contacted; call DB.Check or DB.Run afterwards.
func BuildWithConfig(cfg *config.Config) (*App, error) {
	logger := NewLogger(cfg.Log, nil)
	warnInsecure(cfg, logger)

	dialect, err := repo.DialectFor(cfg.DB.Driver)
	if err != nil {
		return nil, err
	}

	gdb, err := db.Connect(DBConfig(cfg.DB), logger)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	signer := &jwtutil.Signer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, ExpiresIn: cfg.JWT.ExpiresIn}
	userRepo := repo.NewUserRepository(gdb, cfg.DB.StatementTimeout)
	userSvc := services.NewUserService(userRepo, signer, services.UserServiceOptions{
		AllowAdminSignup: cfg.Auth.AllowAdminSignup,
	}, logger)

	manager, err := db.NewManager(gdb, db.ManagerOptions{
		Driver:         cfg.DB.Driver,
		HealthInterval: cfg.DB.HealthInterval,
		MaxRetries:     cfg.DB.MaxRetries,
		RetryDelay:     cfg.DB.RetryDelay,
		OnConnect: func(ctx context.Context, gdb *gorm.DB) error {
			if err := db.Migrate(gdb.WithContext(ctx)); err != nil {
				return err
			}
			return seedAdmin(ctx, cfg.Auth.SeedAdmin, userSvc)
		},
	}, logger)
	if err != nil {
		return nil, err
	}

	statsCache := newCache(cfg, logger)
	bookRepo := repo.NewBookRepository(manager.SQL(), dialect, cfg.DB.StatementTimeout)
	bookSvc := services.NewBookService(bookRepo, statsCache, logger)

	renderer, err := view.New()
	if err != nil {
		return nil, err
	}
	v := validation.New()

	ctrls := router.Controllers{
		HTTP:  controllers.NewHTTPController(manager),
		Books: controllers.NewBookController(bookSvc, v, logger),
		Auth:  controllers.NewAuthController(userSvc, v, logger),
		Admin: controllers.NewAdminController(userSvc, v, logger),
		DB:    controllers.NewDBController(manager, bookSvc, logger),
		View:  controllers.NewViewController(bookSvc, manager, renderer, logger),
	}
	opts := router.Options{Log: logger, AllowedOrigins: cfg.CORS.AllowedOrigins}
	if cfg.RateLimit.Enabled {
		opts.RateLimit = cfg.RateLimit.Requests
		opts.RateLimitWindow = cfg.RateLimit.Window
	}
	h := router.NewRouter(ctrls, &middleware.Auth{Signer: signer}, manager, opts)

	return &App{
		Cfg:    cfg,
		Log:    logger,
		DB:     manager,
		Cache:  statsCache,
		Router: h,
		Users:  userSvc,
		Books:  bookSvc,
		Signer: signer,
	}, nil
}

func DBConfig(c config.DB) db.Config {
	return db.Config{
		Driver:          c.Driver,
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Pass,
		DBName:          c.Name,
		Path:            c.Path,
		SSLMode:         c.SSLMode,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

// newCache returns the Redis cache when configured and reachable, and the
// in-memory cache otherwise.
func newCache(cfg *config.Config, log zerolog.Logger) cache.Cache {
	if cfg.Cache.Driver != "redis" {
		return cache.NewMemory(cfg.Cache.StatsTTL)
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	rc := cache.NewRedis(rdb, "bookshelf", cfg.Cache.StatsTTL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, using in-memory cache")
		_ = rdb.Close()
		return cache.NewMemory(cfg.Cache.StatsTTL)
	}
	return rc
}

func seedAdmin(ctx context.Context, seed config.SeedAdmin, users *services.UserService) error {
	if seed.Email == "" || seed.Password == "" {
		return nil
	}
	username := seed.Username
	if username == "" {
		username = "admin"
	}
	if _, err := users.EnsureAdmin(ctx, username, seed.Email, seed.Password); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

// warnInsecure logs settings that are fine locally but unsafe in production.
func warnInsecure(cfg *config.Config, log zerolog.Logger) {
	if cfg.JWT.Secret == config.DevJWTSecret {
		log.Warn().Msg("jwt.secret is not set, signing tokens with the built-in development secret")
	}
	if cfg.Auth.AllowAdminSignup {
		log.Warn().Msg("auth.allow_admin_signup is on, anyone can register an admin account")
	}
}

// reload applies the settings that can change without a restart.
func (a *App) reload(cfg *config.Config) {
	lvl := ParseLevel(cfg.Log.Level)
	if lvl == zerolog.GlobalLevel() {
		return
	}
	zerolog.SetGlobalLevel(lvl)
	a.Log.Info().Str("level", lvl.String()).Msg("log level changed")
}

func (a *App) Close() error {
	return errors.Join(a.Cache.Close(), a.DB.Close())
}
