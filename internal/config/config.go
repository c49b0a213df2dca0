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
	Map      MapConfig
	Replay   ReplayConfig
	Geozone  GeozoneConfig
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
	SceneCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

// MapConfig - scene and session defaults.
type MapConfig struct {
	DefaultLat     float64
	DefaultLon     float64
	DefaultZoom    int
	ViewWidthPx    int
	MaxPushpins    int
	ShowPushpins   bool
	ShowRoute      bool
	RouteColor     string
	IconSelector   string
	SessionMaxIdle time.Duration
}

// ReplayConfig - replay engine defaults.
type ReplayConfig struct {
	IntervalMS      int
	AutoSkipRadiusM float64
	SinglePushpin   bool
}

// GeozoneConfig - geofence editing limits.
type GeozoneConfig struct {
	MinRadiusM         float64
	MaxRadiusM         float64
	PointRadiusM       float64
	SweptRadiusM       float64
	PolygonVertexCount int
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
			SceneCacheTTL: time.Duration(viper.GetInt("SCENE_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
		},
		Map: MapConfig{
			DefaultLat:     viper.GetFloat64("MAP_DEFAULT_LAT"),
			DefaultLon:     viper.GetFloat64("MAP_DEFAULT_LON"),
			DefaultZoom:    viper.GetInt("MAP_DEFAULT_ZOOM"),
			ViewWidthPx:    viper.GetInt("MAP_VIEW_WIDTH_PX"),
			MaxPushpins:    viper.GetInt("MAP_MAX_PUSHPINS"),
			ShowPushpins:   viper.GetBool("MAP_SHOW_PUSHPINS"),
			ShowRoute:      viper.GetBool("MAP_SHOW_ROUTE"),
			RouteColor:     viper.GetString("MAP_ROUTE_COLOR"),
			IconSelector:   viper.GetString("MAP_ICON_SELECTOR"),
			SessionMaxIdle: time.Duration(viper.GetInt("MAP_SESSION_MAX_IDLE")) * time.Second,
		},
		Replay: ReplayConfig{
			IntervalMS:      viper.GetInt("REPLAY_INTERVAL_MS"),
			AutoSkipRadiusM: viper.GetFloat64("REPLAY_AUTO_SKIP_RADIUS_M"),
			SinglePushpin:   viper.GetBool("REPLAY_SINGLE_PUSHPIN"),
		},
		Geozone: GeozoneConfig{
			MinRadiusM:         viper.GetFloat64("GEOZONE_MIN_RADIUS_M"),
			MaxRadiusM:         viper.GetFloat64("GEOZONE_MAX_RADIUS_M"),
			PointRadiusM:       viper.GetFloat64("GEOZONE_POINT_RADIUS_M"),
			SweptRadiusM:       viper.GetFloat64("GEOZONE_SWEPT_RADIUS_M"),
			PolygonVertexCount: viper.GetInt("GEOZONE_POLYGON_VERTEX_COUNT"),
		},
	}

	// Set default values if not provided
	if cfg.Cache.SceneCacheTTL == 0 {
		cfg.Cache.SceneCacheTTL = 300 * time.Second
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "feed-ingest-workers"
	}
	if cfg.Worker.StreamReadTimeout == 0 {
		cfg.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Map.DefaultZoom == 0 {
		cfg.Map.DefaultZoom = 4
	}
	if cfg.Map.ViewWidthPx == 0 {
		cfg.Map.ViewWidthPx = 1000
	}
	if cfg.Map.MaxPushpins == 0 {
		cfg.Map.MaxPushpins = 1000
	}
	if cfg.Map.RouteColor == "" {
		cfg.Map.RouteColor = "#FF2222"
	}
	if cfg.Map.IconSelector == "" {
		cfg.Map.IconSelector = "heading"
	}
	if cfg.Map.SessionMaxIdle == 0 {
		cfg.Map.SessionMaxIdle = 3600 * time.Second
	}
	if cfg.Replay.IntervalMS == 0 {
		cfg.Replay.IntervalMS = 1200
	}
	if cfg.Geozone.MinRadiusM == 0 {
		cfg.Geozone.MinRadiusM = 100
	}
	if cfg.Geozone.MaxRadiusM == 0 {
		cfg.Geozone.MaxRadiusM = 30000
	}
	if cfg.Geozone.PointRadiusM == 0 {
		cfg.Geozone.PointRadiusM = 5000
	}
	if cfg.Geozone.SweptRadiusM == 0 {
		cfg.Geozone.SweptRadiusM = 1000
	}
	if cfg.Geozone.PolygonVertexCount == 0 {
		cfg.Geozone.PolygonVertexCount = 8
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
