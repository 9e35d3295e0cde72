package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type Server struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DB struct {
	Driver           string
	Host             string
	Port             int
	User             string
	Pass             string
	Name             string
	Path             string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	StatementTimeout time.Duration
	HealthInterval   time.Duration
	MaxRetries       int
	RetryDelay       time.Duration
}

type JWT struct {
	Secret    string
	Issuer    string
	ExpiresIn time.Duration
}

type SeedAdmin struct {
	Username string
	Email    string
	Password string
}

type Auth struct {
	AllowAdminSignup bool
	SeedAdmin        SeedAdmin
}

type Cache struct {
	Driver   string
	StatsTTL time.Duration
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Log struct {
	Level  string
	Format string
}

type CORS struct {
	AllowedOrigins []string
}

type RateLimit struct {
	Enabled bool
	// Requests allowed per Window and client IP on the auth and reconnect routes.
	Requests int
	Window   time.Duration
}

// DevJWTSecret signs tokens when jwt.secret is unset. It is public, so a
// server running with it must not be exposed.
const DevJWTSecret = "dev-secret"

type Config struct {
	Server    Server
	DB        DB
	JWT       JWT
	Auth      Auth
	Cache     Cache
	Redis     Redis
	Log       Log
	CORS      CORS
	RateLimit RateLimit
}

// Load reads the YAML file at path (optional) and applies BOOKSHELF_* env
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	return fromViper(v), nil
}

// Watch re-reads the config file whenever it changes and hands the new
// config to onChange. It is a no-op when path is empty.
func Watch(path string, onChange func(*Config)) error {
	if path == "" {
		return nil
	}
	v, err := newViper(path)
	if err != nil {
		return err
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(fromViper(v))
	})
	v.WatchConfig()
	return nil
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("bookshelf")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "127.0.0.1")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.pass", "")
	v.SetDefault("db.name", "bookshelf")
	v.SetDefault("db.path", "bookshelf.db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("db.statement_timeout", 5*time.Second)
	v.SetDefault("db.health_interval", 30*time.Second)
	v.SetDefault("db.max_retries", 5)
	v.SetDefault("db.retry_delay", time.Second)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "bookshelf")
	v.SetDefault("jwt.expires_in", 24*time.Hour)
	v.SetDefault("auth.allow_admin_signup", false)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.stats_ttl", 60*time.Second)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 20)
	v.SetDefault("rate_limit.window", time.Minute)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Server: Server{
			Host:         v.GetString("server.host"),
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		DB: DB{
			Driver:           strings.ToLower(v.GetString("db.driver")),
			Host:             v.GetString("db.host"),
			Port:             v.GetInt("db.port"),
			User:             v.GetString("db.user"),
			Pass:             v.GetString("db.pass"),
			Name:             v.GetString("db.name"),
			Path:             v.GetString("db.path"),
			SSLMode:          v.GetString("db.sslmode"),
			MaxOpenConns:     v.GetInt("db.max_open_conns"),
			MaxIdleConns:     v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime:  v.GetDuration("db.conn_max_lifetime"),
			StatementTimeout: v.GetDuration("db.statement_timeout"),
			HealthInterval:   v.GetDuration("db.health_interval"),
			MaxRetries:       v.GetInt("db.max_retries"),
			RetryDelay:       v.GetDuration("db.retry_delay"),
		},
		JWT: JWT{
			Secret:    v.GetString("jwt.secret"),
			Issuer:    v.GetString("jwt.issuer"),
			ExpiresIn: v.GetDuration("jwt.expires_in"),
		},
		Auth: Auth{
			AllowAdminSignup: v.GetBool("auth.allow_admin_signup"),
			SeedAdmin: SeedAdmin{
				Username: v.GetString("auth.seed_admin.username"),
				Email:    v.GetString("auth.seed_admin.email"),
				Password: v.GetString("auth.seed_admin.password"),
			},
		},
		Cache: Cache{
			Driver:   strings.ToLower(v.GetString("cache.driver")),
			StatsTTL: v.GetDuration("cache.stats_ttl"),
		},
		Redis: Redis{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		CORS: CORS{
			AllowedOrigins: v.GetStringSlice("cors.allowed_origins"),
		},
		RateLimit: RateLimit{
			Enabled:  v.GetBool("rate_limit.enabled"),
			Requests: v.GetInt("rate_limit.requests"),
			Window:   v.GetDuration("rate_limit.window"),
		},
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = DevJWTSecret
	}
	if cfg.JWT.ExpiresIn <= 0 {
		cfg.JWT.ExpiresIn = 24 * time.Hour
	}
	if cfg.DB.StatementTimeout <= 0 {
		cfg.DB.StatementTimeout = 5 * time.Second
	}
	if cfg.Cache.StatsTTL <= 0 {
		cfg.Cache.StatsTTL = 60 * time.Second
	}
	return cfg
}
