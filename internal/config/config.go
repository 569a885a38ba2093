package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Worker   WorkerConfig
	Mapbox   MapboxConfig
	Strava   StravaConfig
	Planner  PlannerConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	MatrixCacheTTL  time.Duration
	SegmentCacheTTL time.Duration
	TripCacheTTL    time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
	Stream        string
	MaxRetries    int
}

// MapboxConfig configures the distance-matrix / directions provider.
type MapboxConfig struct {
	BaseURL        string
	AccessToken    string
	Profile        string
	RequestTimeout int

	// FetchConnectors enables per-leg directions requests for connector
	// geometry. Off by default: the stitcher falls back to straight lines.
	FetchConnectors bool
}

// StravaConfig configures the segment metadata provider.
type StravaConfig struct {
	BaseURL        string
	AccessToken    string
	RequestTimeout int
}

type PlannerConfig struct {
	ExactSolverTimeout time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			MatrixCacheTTL:  time.Duration(viper.GetInt("MATRIX_CACHE_TTL")) * time.Second,
			SegmentCacheTTL: time.Duration(viper.GetInt("SEGMENT_CACHE_TTL")) * time.Second,
			TripCacheTTL:    time.Duration(viper.GetInt("TRIP_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:       viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup: viper.GetString("WORKER_CONSUMER_GROUP"),
			Stream:        viper.GetString("WORKER_STREAM"),
			MaxRetries:    viper.GetInt("WORKER_MAX_RETRIES"),
		},
		Mapbox: MapboxConfig{
			BaseURL:         viper.GetString("MAPBOX_BASE_URL"),
			AccessToken:     viper.GetString("MAPBOX_ACCESS_TOKEN"),
			Profile:         viper.GetString("MAPBOX_PROFILE"),
			RequestTimeout:  viper.GetInt("MAPBOX_REQUEST_TIMEOUT"),
			FetchConnectors: viper.GetBool("MAPBOX_FETCH_CONNECTORS"),
		},
		Strava: StravaConfig{
			BaseURL:        viper.GetString("STRAVA_BASE_URL"),
			AccessToken:    viper.GetString("STRAVA_ACCESS_TOKEN"),
			RequestTimeout: viper.GetInt("STRAVA_REQUEST_TIMEOUT"),
		},
		Planner: PlannerConfig{
			ExactSolverTimeout: time.Duration(viper.GetInt("PLANNER_EXACT_TIMEOUT")) * time.Second,
		},
	}

	// Set default values if not provided
	if cfg.Cache.MatrixCacheTTL == 0 {
		cfg.Cache.MatrixCacheTTL = 15 * time.Minute
	}
	if cfg.Cache.SegmentCacheTTL == 0 {
		cfg.Cache.SegmentCacheTTL = 24 * time.Hour
	}
	if cfg.Cache.TripCacheTTL == 0 {
		cfg.Cache.TripCacheTTL = time.Hour
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "trip-plan-workers"
	}
	if cfg.Worker.Stream == "" {
		cfg.Worker.Stream = "trips:plan:jobs"
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Mapbox.BaseURL == "" {
		cfg.Mapbox.BaseURL = "https://api.mapbox.com"
	}
	if cfg.Mapbox.Profile == "" {
		cfg.Mapbox.Profile = "mapbox/cycling"
	}
	if cfg.Mapbox.RequestTimeout == 0 {
		cfg.Mapbox.RequestTimeout = 10
	}
	if cfg.Strava.BaseURL == "" {
		cfg.Strava.BaseURL = "https://www.strava.com/api/v3"
	}
	if cfg.Strava.RequestTimeout == 0 {
		cfg.Strava.RequestTimeout = 10
	}
	if cfg.Planner.ExactSolverTimeout == 0 {
		cfg.Planner.ExactSolverTimeout = 30 * time.Second
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
