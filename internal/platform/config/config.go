package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Reading  ReadingConfig  `mapstructure:"reading"`
	Quota    QuotaConfig    `mapstructure:"quota"`
	AI       AIConfig       `mapstructure:"ai"`
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

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	Redis  RedisConfig  `mapstructure:"redis"`
	Sqlite SqliteConfig `mapstructure:"sqlite"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SqliteConfig 定义了SQLite的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// ReadingConfig 定义了抽牌引擎的行为参数
type ReadingConfig struct {
	// ReversalProbability 是每张牌独立判定为逆位的概率。
	// 历史实现中出现过0.5和0.35两个值，这里作为显式配置项，默认0.35。
	ReversalProbability float64 `mapstructure:"reversalProbability"`
	// SessionTTLMinutes 是未完成会话在内存中的保留时长（分钟）。
	SessionTTLMinutes int `mapstructure:"sessionTTLMinutes"`
	// CatalogPath 是卡牌目录JSON文件的路径。
	CatalogPath string `mapstructure:"catalogPath"`
}

// QuotaConfig 定义了AI解读每日配额的配置
type QuotaConfig struct {
	// DailyLimit 是每个客户端Key（IP）每个UTC日历日允许的AI解读次数。
	DailyLimit int `mapstructure:"dailyLimit"`
}

// AIConfig 定义了远端生成式解读服务的配置
type AIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"baseURL"`
	// APIKey 只应通过环境变量 AI_APIKEY 提供，不要写进配置文件
	APIKey         string `mapstructure:"apiKey"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

// SessionTTL 返回会话保留时长
func (r ReadingConfig) SessionTTL() time.Duration {
	return time.Duration(r.SessionTTLMinutes) * time.Minute
}

// Timeout 返回AI请求的超时时长
func (a AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. 设置配置文件名和类型
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// 2. 添加配置文件搜索路径
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 3. 设置环境变量支持
	// 允许通过环境变量覆盖配置，例如 AI_APIKEY=sk-xxx
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. 设置关键参数的默认值
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.sqlite.path", "tarot.db")
	v.SetDefault("reading.reversalProbability", 0.35)
	v.SetDefault("reading.sessionTTLMinutes", 60)
	v.SetDefault("reading.catalogPath", "assets/data/cards.json")
	v.SetDefault("quota.dailyLimit", 3)
	v.SetDefault("ai.timeoutSeconds", 20)

	// 5. 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	// 6. 将配置反序列化到结构体中
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	// 7. 将加载的配置赋值给全局变量
	Cfg = &cfg

	return Cfg, nil
}

// validate 对配置中的业务参数做一次性校验
func validate(cfg *Config) error {
	if p := cfg.Reading.ReversalProbability; p < 0 || p > 1 {
		return fmt.Errorf("reading.reversalProbability 必须在 [0, 1] 区间内，当前为 %v", p)
	}
	if cfg.Quota.DailyLimit < 0 {
		return fmt.Errorf("quota.dailyLimit 不能为负数，当前为 %d", cfg.Quota.DailyLimit)
	}
	if cfg.AI.Enabled && cfg.AI.BaseURL == "" {
		return fmt.Errorf("启用AI解读时必须配置 ai.baseURL")
	}
	return nil
}
