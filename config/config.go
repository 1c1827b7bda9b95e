package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Discord   DiscordConfig   `mapstructure:"discord"`
	Creation  CreationConfig  `mapstructure:"creation"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// StorageConfig 选择文档存储后端: mongo | postgres | memory
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type PostgresConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	TemplateTTL  time.Duration `mapstructure:"template_ttl"`
}

type DiscordConfig struct {
	Token       string        `mapstructure:"token"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

type CreationConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	QueueSize int           `mapstructure:"queue_size"`
}

type RateLimitConfig struct {
	CreatePerMinute int `mapstructure:"create_per_minute"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.mode", "release")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("storage.driver", "mongo")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "guildforge")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.max_open_conns", 20)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.template_ttl", 10*time.Minute)

	v.SetDefault("discord.settle_delay", 2*time.Second)

	v.SetDefault("creation.timeout", 60*time.Second)
	v.SetDefault("creation.queue_size", 64)

	v.SetDefault("ratelimit.create_per_minute", 5)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "guildforge.server-created")
}

// LoadConfig 读取配置文件，path 为空或文件不存在时仅使用默认值与环境变量
// 环境变量使用 GUILDFORGE_ 前缀（如 GUILDFORGE_DISCORD_TOKEN），同时兼容旧的
// DISCORD_BOT_TOKEN / MONGO_URL / DB_NAME
func LoadConfig(path string) (*Config, error) {
	// .env 文件是可选的
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GUILDFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("discord.token", "GUILDFORGE_DISCORD_TOKEN", "DISCORD_BOT_TOKEN")
	_ = v.BindEnv("mongo.uri", "GUILDFORGE_MONGO_URI", "MONGO_URL")
	_ = v.BindEnv("mongo.database", "GUILDFORGE_MONGO_DATABASE", "DB_NAME")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate 检查配置的取值范围
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "mongo", "postgres", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Creation.Timeout <= 0 {
		return fmt.Errorf("creation.timeout must be positive, got %s", c.Creation.Timeout)
	}
	if c.Creation.QueueSize <= 0 {
		return fmt.Errorf("creation.queue_size must be positive, got %d", c.Creation.QueueSize)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.enabled requires at least one broker")
	}
	return nil
}
