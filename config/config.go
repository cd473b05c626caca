// Package config 加载 itemhub 的 YAML 配置，并以 ITEMHUB_* 环境变量覆盖
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"itemhub/errors"
	httpx "itemhub/http"
	"itemhub/validation"
)

// 存储驱动
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// 事件驱动
const (
	EventsNone   = "none"
	EventsMemory = "memory"
	EventsNATS   = "nats"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "ITEMHUB_"

// Config 顶层配置
type Config struct {
	Server    httpx.WebConfig `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Processor ProcessorConfig `yaml:"processor"`
	Logging   LoggingConfig   `yaml:"logging"`
	Events    EventsConfig    `yaml:"events"`
}

// StoreConfig 存储配置
type StoreConfig struct {
	Driver string      `yaml:"driver"`
	DSN    string      `yaml:"dsn"`
	Redis  RedisConfig `yaml:"redis"`
	Cache  CacheConfig `yaml:"cache"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// CacheConfig 读穿透缓存，对任意存储驱动生效
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	MaxSize int           `yaml:"max_size"`
	TTL     time.Duration `yaml:"ttl"`
}

// ProcessorConfig 批处理与工作池配置
type ProcessorConfig struct {
	Workers   int           `yaml:"workers"`
	QueueSize int           `yaml:"queue_size"`
	Delay     time.Duration `yaml:"delay"`
	Timeout   time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	// Format console|json|std
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

type EventsConfig struct {
	Driver        string `yaml:"driver"`
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: httpx.WebConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Store: StoreConfig{
			Driver: StoreMemory,
			DSN:    "file:itemhub.db?_pragma=busy_timeout(5000)",
			Redis:  RedisConfig{Addr: "localhost:6379", KeyPrefix: "itemhub:"},
			Cache:  CacheConfig{MaxSize: 1024, TTL: 5 * time.Minute},
		},
		Processor: ProcessorConfig{
			Workers: 8,
			Delay:   100 * time.Millisecond,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{Format: "console", Level: "info"},
		Events:  EventsConfig{Driver: EventsNone, URL: "nats://127.0.0.1:4222", SubjectPrefix: "itemhub."},
	}
}

// Load 读取配置文件（path 为空时只用默认值），再应用环境变量覆盖并校验
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv 以 lookup 提供的环境变量覆盖配置
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = d
		return nil
	}

	str("SERVER_HOST", &c.Server.Host)
	str("STORE_DRIVER", &c.Store.Driver)
	str("STORE_DSN", &c.Store.DSN)
	str("REDIS_ADDR", &c.Store.Redis.Addr)
	str("REDIS_PASSWORD", &c.Store.Redis.Password)
	str("LOG_FORMAT", &c.Logging.Format)
	str("LOG_LEVEL", &c.Logging.Level)
	str("EVENTS_DRIVER", &c.Events.Driver)
	str("NATS_URL", &c.Events.URL)

	if v, ok := lookup(EnvPrefix + "CACHE_ENABLED"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sCACHE_ENABLED: %w", EnvPrefix, err)
		}
		c.Store.Cache.Enabled = b
	}

	for key, dst := range map[string]*int{
		"SERVER_PORT":          &c.Server.Port,
		"PROCESSOR_WORKERS":    &c.Processor.Workers,
		"PROCESSOR_QUEUE_SIZE": &c.Processor.QueueSize,
		"REDIS_DB":             &c.Store.Redis.DB,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*time.Duration{
		"PROCESSOR_DELAY":   &c.Processor.Delay,
		"PROCESSOR_TIMEOUT": &c.Processor.Timeout,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate 校验配置取值，失败时返回 VALIDATION_ERROR
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.NewValidationError(fmt.Sprintf("server.port out of range: %d", c.Server.Port))
	}
	if err := validation.ValidateEnum(c.Store.Driver, "store.driver",
		[]string{StoreMemory, StoreSQLite, StoreRedis}); err != nil {
		return err
	}
	switch c.Store.Driver {
	case StoreSQLite:
		if err := validation.ValidateRequired(c.Store.DSN, "store.dsn"); err != nil {
			return err
		}
	case StoreRedis:
		if err := validation.ValidateRequired(c.Store.Redis.Addr, "store.redis.addr"); err != nil {
			return err
		}
	}
	if c.Store.Cache.Enabled {
		if err := validation.ValidatePositive(c.Store.Cache.MaxSize, "store.cache.max_size"); err != nil {
			return err
		}
	}
	if err := validation.ValidatePositive(c.Processor.Workers, "processor.workers"); err != nil {
		return err
	}
	if c.Processor.QueueSize < 0 {
		return errors.NewValidationError("processor.queue_size must not be negative")
	}
	if c.Processor.Delay < 0 {
		return errors.NewValidationError("processor.delay must not be negative")
	}
	if c.Processor.Timeout < 0 {
		return errors.NewValidationError("processor.timeout must not be negative")
	}
	if err := validation.ValidateEnum(c.Logging.Format, "logging.format",
		[]string{"console", "json", "std"}); err != nil {
		return err
	}
	if err := validation.ValidateEnum(c.Events.Driver, "events.driver",
		[]string{EventsNone, EventsMemory, EventsNATS}); err != nil {
		return err
	}
	if c.Events.Driver == EventsNATS {
		return validation.ValidateRequired(c.Events.URL, "events.url")
	}
	return nil
}

// Addr 监听地址
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
