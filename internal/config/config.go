package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Game      GameConfig      `mapstructure:"game"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
	Log       LogConfig       `mapstructure:"log"`
	Security  SecurityConfig  `mapstructure:"security"`
	System    SystemConfig    `mapstructure:"system"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	EnableSwagger   bool          `mapstructure:"enable_swagger"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// WebSocketConfig WebSocket配置
type WebSocketConfig struct {
	Path              string        `mapstructure:"path"`
	ReadBufferSize    int           `mapstructure:"read_buffer_size"`
	WriteBufferSize   int           `mapstructure:"write_buffer_size"`
	MaxMessageSize    int64         `mapstructure:"max_message_size"`
	PingInterval      time.Duration `mapstructure:"ping_interval"`
	PongTimeout       time.Duration `mapstructure:"pong_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	EnableCompression bool          `mapstructure:"enable_compression"`
}

// GameConfig 房间与回合配置
type GameConfig struct {
	ActiveThreshold   time.Duration `mapstructure:"active_threshold"`   // 在房间内判定阈值
	JoinGrace         time.Duration `mapstructure:"join_grace"`         // 未发心跳玩家的宽限期
	FinishedRetention time.Duration `mapstructure:"finished_retention"` // 已结束房间保留时长
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`     // 定时清理间隔
	MinPlayers        int           `mapstructure:"min_players"`
	MaxPlayers        int           `mapstructure:"max_players"`
	DefaultMaxPlayers int           `mapstructure:"default_max_players"`
	JoinCodeLength    int           `mapstructure:"join_code_length"`
	DiscussionSeconds int           `mapstructure:"discussion_seconds"`
	VotingSeconds     int           `mapstructure:"voting_seconds"`
	DefaultRoundMode  string        `mapstructure:"default_round_mode"`
	IntroEnabled      bool          `mapstructure:"intro_enabled"`
	SurvivorThreshold int           `mapstructure:"survivor_threshold"` // 剩余人数不超过该值时结束
	ChatMaxLength     int           `mapstructure:"chat_max_length"`
}

// PubSubConfig 事件分发配置
type PubSubConfig struct {
	Driver        string        `mapstructure:"driver"` // local | nats
	NATSURL       string        `mapstructure:"nats_url"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	ConnectWait   time.Duration `mapstructure:"connect_wait"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"`
	Output  string            `mapstructure:"output"`
	File    LogFileConfig     `mapstructure:"file"`
	Modules map[string]string `mapstructure:"modules"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	JWT       JWTConfig       `mapstructure:"jwt"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Burst             int           `mapstructure:"burst"`
	IdleTTL           time.Duration `mapstructure:"idle_ttl"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret       string `mapstructure:"secret"`
	ExpireHours  int    `mapstructure:"expire_hours"`
	RefreshHours int    `mapstructure:"refresh_hours"`
}

// SystemConfig 系统配置
type SystemConfig struct {
	Timezone string `mapstructure:"timezone"`
	MaxProcs int    `mapstructure:"max_procs"`
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper
)

// Init 初始化配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		v = viper.New()

		if configPath != "" {
			v.SetConfigFile(configPath)
		} else {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath("./config")
			v.AddConfigPath(".")
		}

		// 环境变量覆盖，例如 BUNKER_GAME_SWEEP_INTERVAL
		v.SetEnvPrefix("BUNKER")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		setDefaults(v)

		if err = v.ReadInConfig(); err != nil {
			// 配置文件不存在时使用默认配置
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return
			}
			err = nil
		}

		loaded := &Config{}
		if err = v.Unmarshal(loaded); err != nil {
			return
		}
		if err = loaded.Validate(); err != nil {
			return
		}
		cfg = loaded
	})

	return err
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.enable_swagger", true)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/bunker.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("websocket.path", "/ws")
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.max_message_size", 8192)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_timeout", "60s")
	v.SetDefault("websocket.write_timeout", "10s")
	v.SetDefault("websocket.enable_compression", true)

	// 游戏默认配置
	v.SetDefault("game.active_threshold", "30s")
	v.SetDefault("game.join_grace", "5m")
	v.SetDefault("game.finished_retention", "1h")
	v.SetDefault("game.sweep_interval", "30s")
	v.SetDefault("game.min_players", 2)
	v.SetDefault("game.max_players", 20)
	v.SetDefault("game.default_max_players", 12)
	v.SetDefault("game.join_code_length", 6)
	v.SetDefault("game.discussion_seconds", 180)
	v.SetDefault("game.voting_seconds", 60)
	v.SetDefault("game.default_round_mode", "automatic")
	v.SetDefault("game.intro_enabled", true)
	v.SetDefault("game.survivor_threshold", 2)
	v.SetDefault("game.chat_max_length", 500)

	v.SetDefault("pubsub.driver", "local")
	v.SetDefault("pubsub.nats_url", "nats://127.0.0.1:4222")
	v.SetDefault("pubsub.subject_prefix", "bunker")
	v.SetDefault("pubsub.connect_wait", "2s")
	v.SetDefault("pubsub.max_reconnects", 60)

	v.SetDefault("security.rate_limit.enabled", true)
	v.SetDefault("security.rate_limit.requests_per_minute", 120)
	v.SetDefault("security.rate_limit.burst", 20)
	v.SetDefault("security.rate_limit.idle_ttl", "10m")
	v.SetDefault("security.jwt.secret", "change-me")
	v.SetDefault("security.jwt.expire_hours", 24)
	v.SetDefault("security.jwt.refresh_hours", 168)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "bunker.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.compress", true)
}

// Default 返回全部使用默认值的配置，测试和工具使用
func Default() *Config {
	dv := viper.New()
	setDefaults(dv)
	c := &Config{}
	_ = dv.Unmarshal(c)
	return c
}

// Validate 校验配置合法性
func (c *Config) Validate() error {
	g := c.Game
	if g.MinPlayers < 2 {
		return fmt.Errorf("game.min_players 不能小于2: %d", g.MinPlayers)
	}
	if g.MaxPlayers < g.MinPlayers {
		return fmt.Errorf("game.max_players(%d) 小于 game.min_players(%d)", g.MaxPlayers, g.MinPlayers)
	}
	if g.DefaultMaxPlayers < g.MinPlayers || g.DefaultMaxPlayers > g.MaxPlayers {
		return fmt.Errorf("game.default_max_players 超出范围: %d", g.DefaultMaxPlayers)
	}
	if g.ActiveThreshold <= 0 || g.JoinGrace <= 0 || g.FinishedRetention <= 0 {
		return fmt.Errorf("在线判定阈值必须为正数")
	}
	if g.DefaultRoundMode != "automatic" && g.DefaultRoundMode != "manual" {
		return fmt.Errorf("未知的回合模式: %s", g.DefaultRoundMode)
	}
	switch c.PubSub.Driver {
	case "local", "nats":
	default:
		return fmt.Errorf("未知的事件分发驱动: %s", c.PubSub.Driver)
	}
	return nil
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
func Watch(callback func(*Config)) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		defer mu.Unlock()

		newCfg := &Config{}
		if err := v.Unmarshal(newCfg); err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}
		if err := newCfg.Validate(); err != nil {
			fmt.Printf("配置重载校验失败, 保留旧配置: %v\n", err)
			return
		}

		cfg = newCfg

		if callback != nil {
			callback(cfg)
		}

		fmt.Printf("配置已重新加载: %s\n", e.Name)
	})
}

// ConfigFile 实际加载的配置文件，未找到文件时为空
func ConfigFile() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}
