package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Log struct {
	Level      string
	JSON       bool
	File       string // 非空则按 lumberjack 切割写文件
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Firebase struct {
	CredentialsPath string
	ProjectID       string
}

type JWT struct {
	Secret      string
	Issuer      string
	TokenTTLMin int
}

// Auth.Mode: none | firebase | jwt
type Auth struct {
	Mode     string
	Firebase Firebase
	JWT      JWT
}

type S3 struct {
	Bucket        string
	Region        string
	Endpoint      string // 兼容 MinIO 等，可空
	Prefix        string
	PublicBaseURL string
	PathStyle     bool
	AccessKey     string
	SecretKey     string
}

// Storage.Driver: inline | s3
type Storage struct {
	Driver string
	S3     S3
}

type Geocode struct {
	BaseURL     string
	APIKey      string
	TimeoutSec  int
	CacheTTLSec int
}

type Limits struct {
	RPS         float64
	Burst       int
	PerIPRPS    float64
	PerIPBurst  int
	MaxInflight int64
	MaxBodyMB   int64
	TimeoutSec  int

	// TrustedProxies 只有这些来源的 X-Forwarded-For 才被采信；为空时以连接地址为准
	TrustedProxies []string
}

type Config struct {
	App     App
	Log     Log
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Auth    Auth
	Storage Storage
	Geocode Geocode
	Limits  Limits
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "marketplace-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3001)
	v.SetDefault("app.http.readTimeoutSec", 10)
	v.SetDefault("app.http.writeTimeoutSec", 30)
	v.SetDefault("app.http.idleTimeoutSec", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.maxSizeMB", 100)
	v.SetDefault("log.maxBackups", 7)
	v.SetDefault("log.maxAgeDays", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:marketplace.db?_pragma=busy_timeout(5000)")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.mode", "none")
	v.SetDefault("auth.firebase.credentialsPath", "")
	v.SetDefault("auth.firebase.projectID", "")
	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "marketplace-api")
	v.SetDefault("auth.jwt.tokenTTLMin", 60)

	v.SetDefault("storage.driver", "inline")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.prefix", "products")
	v.SetDefault("storage.s3.publicBaseURL", "")
	v.SetDefault("storage.s3.pathStyle", false)
	v.SetDefault("storage.s3.accessKey", "")
	v.SetDefault("storage.s3.secretKey", "")

	v.SetDefault("geocode.baseURL", "https://api.opencagedata.com")
	v.SetDefault("geocode.apiKey", "")
	v.SetDefault("geocode.timeoutSec", 5)
	v.SetDefault("geocode.cacheTTLSec", 86400)

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.perIPRPS", 20)
	v.SetDefault("limits.perIPBurst", 40)
	v.SetDefault("limits.maxInflight", 300)
	v.SetDefault("limits.maxBodyMB", 16)
	v.SetDefault("limits.timeoutSec", 10)
	v.SetDefault("limits.trustedProxies", []string{})
}

// Load 读 yaml + APP_ 前缀环境变量（APP_DB_DSN 覆盖 db.dsn）；文件不存在时只用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case "none", "firebase":
	case "jwt":
		if c.Auth.JWT.Secret == "" {
			return errors.New("auth.jwt.secret is required when auth.mode=jwt")
		}
	default:
		return fmt.Errorf("unknown auth.mode %q", c.Auth.Mode)
	}
	switch c.Storage.Driver {
	case "inline":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required when storage.driver=s3")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	return nil
}
