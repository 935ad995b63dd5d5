// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Stats    StatsConfig    `mapstructure:"stats"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level           string `mapstructure:"level"`
	Format          string `mapstructure:"format"`
	OutputPath      string `mapstructure:"output_path"`
	ErrorOutputPath string `mapstructure:"error_output_path"`
	Maxsize         int    `mapstructure:"maxsize"`
	Maxbackups      int    `mapstructure:"maxbackups"`
	Maxage          int    `mapstructure:"maxage"`
	Compress        bool   `mapstructure:"compress"`
	TimeFormat      string `mapstructure:"time_format"`
}

type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
	// CookieExpireDays 是登录 Cookie 的有效期（天），沿用原系统的 7 天口径。
	CookieExpireDays int `mapstructure:"cookie_expire_days"`
}

// WebhookConfig 存储外部 Webhook 端点的地址。
// 这些 URL 属于部署机密，只允许从配置文件/环境变量注入，不允许写死在代码里。
type WebhookConfig struct {
	LoginURL      string `mapstructure:"login_url"`
	RegisterURL   string `mapstructure:"register_url"`
	SubmitURL     string `mapstructure:"submit_url"`
	UpdateURL     string `mapstructure:"update_url"`
	SearchURL     string `mapstructure:"search_url"`
	UserListURL   string `mapstructure:"user_list_url"`
	TimeoutSecond int    `mapstructure:"timeout_second"`
}

// StatsConfig 存储仪表盘统计相关的配置。
type StatsConfig struct {
	// TotalEmployeePopulation 是参与率的分母（全集团员工数）。
	// 注意：这是一个人工配置的近似值，不是从数据中统计出来的精确值。
	TotalEmployeePopulation int `mapstructure:"total_employee_population"`
	// RefreshIntervalSecond 是仪表盘快照的刷新周期（秒）。
	RefreshIntervalSecond int `mapstructure:"refresh_interval_second"`
	// RecentActivityLimit 是“最近活动”列表的最大条数。
	RecentActivityLimit int `mapstructure:"recent_activity_limit"`
}

// init 初始化配置加载，从指定的路径读取 YAML 配置文件并解析导入到 Conf 变量中
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("fatal error unmarshalling config: %w", err))
	}
}
