package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	Site        SiteConfig        `yaml:"site"`
	LLM         LLMConfig         `yaml:"llm"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	DB          DBConfig          `yaml:"db"`
	Report      ReportConfig      `yaml:"report"`
}

// SiteConfig 待分析站点与取数区间
type SiteConfig struct {
	URL      string `yaml:"url"`
	Days     int    `yaml:"days"`      // 取最近 N 天的数据
	RowLimit int    `yaml:"row_limit"` // 单次查询的行数上限
}

// LLMConfig 生成服务相关配置
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 生成调用的限流配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// DBConfig 历史落库配置，DSN 为空表示不落库
type DBConfig struct {
	DSN string `yaml:"dsn"`
}

// ReportConfig HTML 报告输出配置
type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// LoadConfig 从指定路径加载配置。
// 敏感项允许用环境变量覆盖（LLM_API_KEY、SEARCHLENS_DB_DSN），
// .env 文件存在时一并加载。
func LoadConfig(path string) (*Config, error) {
	// .env 不存在不算错误
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("SEARCHLENS_DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Site.Days <= 0 {
		c.Site.Days = 28
	}
	if c.Site.RowLimit <= 0 {
		c.Site.RowLimit = 25000
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 30
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "reports"
	}
}

// Validate 检查必填项
func (c *Config) Validate() error {
	if c.Site.URL == "" {
		return fmt.Errorf("配置错误: 未设置 site.url")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("配置错误: 未设置 llm.api_key")
	}
	return nil
}

// DateRange 返回取数的起止日期（含当天）
func (c *Config) DateRange(now time.Time) (time.Time, time.Time) {
	end := now
	start := now.AddDate(0, 0, -c.Site.Days)
	return start, end
}
