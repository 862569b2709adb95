package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile 默认配置文件路径，可用 CONFIG_FILE 覆盖
const DefaultConfigFile = "config/config.yaml"

// Config 应用配置结构体
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	NATS      NATSConfig      `yaml:"nats"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         string        `yaml:"port" env:"SERVER_PORT"`                  // 服务器监听端口
	ReadTimeout  time.Duration `yaml:"readTimeout" env:"SERVER_READ_TIMEOUT"`   // 读取超时时间
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"SERVER_WRITE_TIMEOUT"` // 写入超时时间
	IdleTimeout  time.Duration `yaml:"idleTimeout" env:"SERVER_IDLE_TIMEOUT"`   // 空闲超时时间
	Mode         string        `yaml:"mode" env:"GIN_MODE"`                     // gin 运行模式
}

// DatabaseConfig 数据库配置
// Driver 支持 mysql / postgres / sqlite，sqlite 时 Database 为文件路径（":memory:" 为内存库）
type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER"`     // 数据库驱动类型
	Host     string `yaml:"host" env:"DB_HOST"`         // 数据库主机地址
	Port     int    `yaml:"port" env:"DB_PORT"`         // 数据库端口
	Username string `yaml:"username" env:"DB_USERNAME"` // 数据库用户名
	Password string `yaml:"password" env:"DB_PASSWORD"` // 数据库密码
	Database string `yaml:"database" env:"DB_DATABASE"` // 数据库名称
	Charset  string `yaml:"charset" env:"DB_CHARSET"`   // 字符集
	SSLMode  string `yaml:"sslMode" env:"DB_SSL_MODE"`  // postgres sslmode
	MaxIdle  int    `yaml:"maxIdle" env:"DB_MAX_IDLE"`  // 最大空闲连接数
	MaxOpen  int    `yaml:"maxOpen" env:"DB_MAX_OPEN"`  // 最大打开连接数
	LogSQL   bool   `yaml:"logSQL" env:"DB_LOG_SQL"`    // 是否输出SQL日志
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret     string        `yaml:"secret" env:"JWT_SECRET"`          // JWT密钥
	ExpireTime time.Duration `yaml:"expireTime" env:"JWT_EXPIRE_TIME"` // JWT过期时间
	Issuer     string        `yaml:"issuer" env:"JWT_ISSUER"`          // JWT签发者
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`            // 日志级别
	Filename   string `yaml:"filename" env:"LOG_FILENAME"`      // 日志文件名
	MaxSize    int    `yaml:"maxSize" env:"LOG_MAX_SIZE"`       // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"maxBackups" env:"LOG_MAX_BACKUPS"` // 最大备份文件数
	MaxAge     int    `yaml:"maxAge" env:"LOG_MAX_AGE"`         // 最大保存天数
	Compress   bool   `yaml:"compress" env:"LOG_COMPRESS"`      // 是否压缩
	Console    bool   `yaml:"console" env:"LOG_CONSOLE"`        // 是否同时输出到标准输出
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`   // 是否启用（未启用时在线状态与未读计数直接走数据库）
	Host     string `yaml:"host" env:"REDIS_HOST"`         // Redis主机地址
	Port     int    `yaml:"port" env:"REDIS_PORT"`         // Redis端口
	Password string `yaml:"password" env:"REDIS_PASSWORD"` // Redis密码
	DB       int    `yaml:"db" env:"REDIS_DB"`             // Redis数据库编号
}

// WebSocketConfig WebSocket 心跳配置
type WebSocketConfig struct {
	PingInterval time.Duration `yaml:"pingInterval" env:"WS_PING_INTERVAL"` // 发送ping的间隔
	ReadTimeout  time.Duration `yaml:"readTimeout" env:"WS_READ_TIMEOUT"`   // 读超时时间（未收到任何数据则断开）
	SendBuffer   int           `yaml:"sendBuffer" env:"WS_SEND_BUFFER"`     // 每个连接的待推送缓冲
}

// NATSConfig 多实例通知扇出配置
type NATSConfig struct {
	Enabled       bool          `yaml:"enabled" env:"NATS_ENABLED"`
	Servers       []string      `yaml:"servers" env:"NATS_SERVERS" envSeparator:","`
	Name          string        `yaml:"name" env:"NATS_NAME"`
	SubjectPrefix string        `yaml:"subjectPrefix" env:"NATS_SUBJECT_PREFIX"`
	ReconnectWait time.Duration `yaml:"reconnectWait" env:"NATS_RECONNECT_WAIT"`
	Timeout       time.Duration `yaml:"timeout" env:"NATS_TIMEOUT"`
}

// LoadConfig 加载配置（混合方式：.env + YAML文件 + 环境变量）
func LoadConfig() (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	path := DefaultConfigFile
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		path = p
	}

	config, err := loadFromYAML(path)
	if err != nil {
		return nil, err
	}

	// 环境变量优先级更高
	if err := env.Parse(config); err != nil {
		return nil, err
	}

	return config, nil
}

// loadFromYAML 从YAML文件加载配置，文件中缺失的字段保留默认值
func loadFromYAML(filePath string) (*Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// GetDefaultConfig 获取默认配置
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			Mode:         "release",
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Host:     "localhost",
			Port:     3306,
			Username: "preexam",
			Database: "data/preexam.db",
			Charset:  "utf8mb4",
			SSLMode:  "disable",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		JWT: JWTConfig{
			Secret:     "change-me-in-production",
			ExpireTime: 24 * time.Hour,
			Issuer:     "pre-exam",
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "logs/app.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		WebSocket: WebSocketConfig{
			PingInterval: 30 * time.Second,
			ReadTimeout:  90 * time.Second,
			SendBuffer:   64,
		},
		NATS: NATSConfig{
			Servers:       []string{"nats://127.0.0.1:4222"},
			Name:          "pre-exam",
			SubjectPrefix: "preexam.notify",
			ReconnectWait: 500 * time.Millisecond,
			Timeout:       3 * time.Second,
		},
	}
}
