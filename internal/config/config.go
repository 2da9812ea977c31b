package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/coffeeshop/cartsync/internal/constants"
	"github.com/coffeeshop/cartsync/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	API        APIConfig        `mapstructure:"api"`
	Cart       CartConfig       `mapstructure:"cart"`
	Credential CredentialConfig `mapstructure:"credential"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Breaker    BreakerConfig    `mapstructure:"breaker"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

// ServerConfig 本地网关配置
type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   string `mapstructure:"port"`
	Mode   string `mapstructure:"mode"`   // debug / release
	Locale string `mapstructure:"locale"` // 默认提示语言
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// APIConfig 购物车后端接口配置
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"` // 0 表示沿用传输层默认值
	UserAgent      string `mapstructure:"user_agent"`
}

// Timeout 返回单次请求超时，未配置时为 0
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CartConfig 购物车本地计算配置
type CartConfig struct {
	DeliveryFee          int64  `mapstructure:"delivery_fee"`
	DefaultDeliOption    string `mapstructure:"default_deli_option"`
	DefaultPaymentMethod string `mapstructure:"default_payment_method"`
	RefreshIntervalSecs  int    `mapstructure:"refresh_interval_seconds"` // 0 表示只在启动时同步一次
}

// CredentialConfig 登录凭证读取配置
type CredentialConfig struct {
	Store    string `mapstructure:"store"` // memory / file / database / redis
	Key      string `mapstructure:"key"`
	FilePath string `mapstructure:"file_path"`
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// BreakerConfig 后端熔断配置
type BreakerConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	MaxRequests         uint32 `mapstructure:"max_requests"`
	IntervalSeconds     int    `mapstructure:"interval_seconds"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds"`
	ConsecutiveFailures uint32 `mapstructure:"consecutive_failures"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	cfg, err := LoadFrom(viper.New(), ".", "./", "../", "./etc")
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return cfg
}

// LoadFrom 使用给定 viper 实例与搜索路径加载配置
func LoadFrom(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	setDefaults(v)

	// 环境变量支持（例如 api.base_url -> API_BASE_URL）
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验枚举型配置
func (c *Config) Validate() error {
	if !constants.IsValidDeliOption(c.Cart.DefaultDeliOption) {
		return fmt.Errorf("invalid cart.default_deli_option: %q", c.Cart.DefaultDeliOption)
	}
	if !constants.IsValidPaymentMethod(c.Cart.DefaultPaymentMethod) {
		return fmt.Errorf("invalid cart.default_payment_method: %q", c.Cart.DefaultPaymentMethod)
	}
	if c.Cart.DeliveryFee < 0 {
		return fmt.Errorf("invalid cart.delivery_fee: %d", c.Cart.DeliveryFee)
	}
	if c.Cart.RefreshIntervalSecs < 0 {
		return fmt.Errorf("invalid cart.refresh_interval_seconds: %d", c.Cart.RefreshIntervalSecs)
	}
	switch c.Credential.Store {
	case constants.CredentialStoreMemory, constants.CredentialStoreFile,
		constants.CredentialStoreDatabase, constants.CredentialStoreRedis:
	default:
		return fmt.Errorf("invalid credential.store: %q", c.Credential.Store)
	}
	if c.Credential.Store == constants.CredentialStoreRedis && !c.Redis.Enabled {
		return fmt.Errorf("credential.store=redis requires redis.enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8090")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.locale", "vi-VN")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "cartsync.log")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.compress", true)
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout_seconds", 0)
	v.SetDefault("api.user_agent", "coffee-cartsync/1.0")
	v.SetDefault("cart.delivery_fee", constants.DefaultDeliveryFee)
	v.SetDefault("cart.default_deli_option", constants.DeliOptionDeliver)
	v.SetDefault("cart.default_payment_method", constants.PaymentMethodCash)
	v.SetDefault("cart.refresh_interval_seconds", 0)
	v.SetDefault("credential.store", constants.CredentialStoreFile)
	v.SetDefault("credential.key", constants.CredentialStorageKey)
	v.SetDefault("credential.file_path", "./db/local_storage.json")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/cartsync.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "cs")
	v.SetDefault("breaker.enabled", false)
	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval_seconds", 60)
	v.SetDefault("breaker.timeout_seconds", 30)
	v.SetDefault("breaker.consecutive_failures", 5)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Language",
		"Authorization",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
}
