package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Forms    FormsConfig    `mapstructure:"forms"`
	Session  SessionConfig  `mapstructure:"session"`
	Limits   LimitsConfig   `mapstructure:"limits"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// 支持的数据库驱动
const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig 定义了关系型数据库的配置
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// TablePrefix 用于多站点部署，每个站点使用一组带前缀的表
	TablePrefix  string `mapstructure:"tablePrefix"`
	LogLevel     string `mapstructure:"logLevel"`
	MaxIdleConns int    `mapstructure:"maxIdleConns"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address    string        `mapstructure:"address"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	SessionTTL time.Duration `mapstructure:"sessionTTL"`
}

// FormsConfig 指向表单定义文件
type FormsConfig struct {
	Path string `mapstructure:"path"`
}

// SessionConfig 定义了表单会话签名的配置
type SessionConfig struct {
	// Secret 为空时，启动时会随机生成一个密钥
	Secret string `mapstructure:"secret"`
}

// LimitsConfig 限制每个客户端IP的提交频率，Submissions 为0时不限流
type LimitsConfig struct {
	Submissions int64         `mapstructure:"submissions"`
	Window      time.Duration `mapstructure:"window"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", DriverSqlite)
	v.SetDefault("database.dsn", "form-record.db")
	v.SetDefault("database.tablePrefix", "")
	v.SetDefault("database.logLevel", "warn")
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.maxOpenConns", 20)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.sessionTTL", 2*time.Hour)

	v.SetDefault("forms.path", "config/forms.yaml")
	v.SetDefault("session.secret", "")

	v.SetDefault("limits.submissions", 20)
	v.SetDefault("limits.window", time.Hour)
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件，未指定时使用 ./config 和 .
// 找不到配置文件时使用默认值和环境变量
func LoadConfig(searchPaths ...string) (*Config, error) {
	// .env 文件是可选的
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if len(searchPaths) == 0 {
		searchPaths = []string{"./config", "."}
	}
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	// 允许通过环境变量覆盖配置，例如 SERVER_ADDRESS=:8888
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return errors.New("server.mode 只支持 debug、release 或 test")
	}
	switch c.Database.Driver {
	case DriverSqlite, DriverPostgres:
	default:
		return errors.New("database.driver 只支持 sqlite 或 postgres")
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn 不能为空")
	}
	if c.Redis.SessionTTL <= 0 {
		return errors.New("redis.sessionTTL 必须为正数")
	}
	if c.Limits.Submissions > 0 && c.Limits.Window <= 0 {
		return errors.New("limits.window 必须为正数")
	}
	return nil
}
