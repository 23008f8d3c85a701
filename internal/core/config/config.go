package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type HTTP struct {
	Host               string
	Port               int `validate:"min=1,max=65535"`
	ReadTimeoutSec     int
	WriteTimeoutSec    int
	IdleTimeoutSec     int
	RequestTimeoutSec  int // 单个请求的处理上限，由 Timeout 中间件兜底
	ShutdownTimeoutSec int
	CORSOrigins        []string // 为空时允许任意来源（不带凭据）
}
type AdminHTTP struct {
	Host string
	Port int `validate:"min=1,max=65535"`
}

type App struct {
	Name    string `validate:"required"`
	Version string
	Env     string `validate:"oneof=local dev staging production"`
	HTTP    HTTP
	Admin   AdminHTTP
}

type Rotate struct {
	Enable     bool
	Filename   string `validate:"required_if=Enable true"`
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

// TokenKey 单一用途令牌的签名密钥与有效期
type TokenKey struct {
	Secret string `validate:"required,min=16"`
	TTL    string `validate:"required"`
}

type JWT struct {
	Issuer  string `validate:"required"`
	Access  TokenKey
	Refresh TokenKey
	Reset   TokenKey
}

type Auth struct {
	BcryptCost   int    `validate:"min=4,max=31"`
	CookieSecure bool
	ResetLink    string `validate:"required,url"`
	// 找回密码时不暴露邮箱是否注册（默认关闭，保持原有 404 行为）
	ConcealUnknownEmail bool
	// 重置令牌中的 email 必须与目标用户一致（默认关闭）
	BindResetToken bool
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLSec   int    `mapstructure:"ttl_sec"`
}

type DB struct {
	Driver             string `validate:"oneof=postgres mysql"`
	DSN                string `validate:"required"`
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
}

type Mail struct {
	Provider     string `validate:"oneof=log smtp resend"`
	From         string `validate:"required"`
	SMTP         SMTP
	ResendAPIKey string `mapstructure:"resend_api_key" validate:"required_if=Provider resend"`
}

type Summary struct {
	Provider   string `validate:"oneof=mock openai"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key" validate:"required_if=Provider openai"`
	Model      string
	TimeoutSec int `mapstructure:"timeout_sec"`
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	Auth    Auth
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Mail    Mail
	Summary Summary
}

func defaults(v *viper.Viper) {
	v.SetDefault("app.name", "article-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 15)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeoutsec", 10)
	v.SetDefault("app.http.shutdowntimeoutsec", 10)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.issuer", "article-api")
	v.SetDefault("jwt.access.ttl", "1d")
	v.SetDefault("jwt.refresh.ttl", "30d")
	v.SetDefault("jwt.reset.ttl", "10m")
	v.SetDefault("auth.bcryptcost", 12)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.maxopenconns", 50)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("redis.ttl_sec", 300)
	v.SetDefault("mail.provider", "log")
	v.SetDefault("summary.provider", "mock")
	v.SetDefault("summary.model", "gpt-4o-mini")
	v.SetDefault("summary.timeout_sec", 60)
}

// Load 读取 yaml 配置，APP_ 前缀的环境变量可覆盖任意键（如 APP_JWT_ACCESS_SECRET）
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	defaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
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

// Validate 校验字段约束；三种令牌必须使用互不相同的密钥
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a, r, s := c.JWT.Access.Secret, c.JWT.Refresh.Secret, c.JWT.Reset.Secret
	if a == r || a == s || r == s {
		return fmt.Errorf("invalid config: jwt secrets must be distinct per purpose")
	}
	return nil
}
