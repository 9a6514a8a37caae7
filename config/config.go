package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	logsConfig "github.com/zerok-ai/zk-utils-go/logs/config"
	storage "github.com/zerok-ai/zk-utils-go/storage/badger/config"
)

type RedisConfig struct {
	Host          string         `yaml:"host" env:"PL_REDIS_HOST" env-description:"Redis host"`
	Password      string         `yaml:"password" env:"PL_REDIS_PASSWORD" env-description:"Redis password"`
	Port          string         `yaml:"port" env:"PL_REDIS_PORT" env-description:"Redis port"`
	DBs           map[string]int `yaml:"dbs" env-description:"Databases to load"`
	Ttl           int            `yaml:"ttl"`
	SyncDuration  int            `yaml:"syncDuration"`
	TimerDuration int            `yaml:"timerDuration"`
	BatchSize     int            `yaml:"batchSize"`
}

// SessionConfig bounds the in-memory correlation state and the publish
// cadence towards consumers.
type SessionConfig struct {
	MaxSessions int `yaml:"maxSessions" env:"PL_MAX_SESSIONS" env-default:"50" env-description:"Newest sessions kept in memory"`
	DebounceMs  int `yaml:"debounceMs" env:"PL_DEBOUNCE_MS" env-default:"500" env-description:"Coalescing window for session updates"`
	Ttl         int `yaml:"ttl" env-default:"3600" env-description:"Persisted session TTL in seconds"`
}

// AppConfig is the root configuration. Storage selects the optional
// persistence sink: "redis", "badger" or "none".
type AppConfig struct {
	Port     string                `yaml:"port" env:"PL_PORT" env-default:"8147"`
	GrpcPort string                `yaml:"grpcPort" env:"PL_GRPC_PORT" env-default:"4317"`
	Storage  string                `yaml:"storage" env:"PL_STORAGE" env-default:"none"`
	Logs     logsConfig.LogsConfig `yaml:"logs"`
	Redis    RedisConfig           `yaml:"redis"`
	Badger   storage.BadgerConfig  `yaml:"badger"`
	Sessions SessionConfig         `yaml:"sessions"`
}

// Load reads configuration from the given yaml path, with environment
// overrides applied by cleanenv.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
