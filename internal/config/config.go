package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config は CLI 全体の設定です。
type Config struct {
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	MaxDimension int           `mapstructure:"max_dimension"`
	Concurrency  int           `mapstructure:"concurrency"`
	JPEGQuality  int           `mapstructure:"jpeg_quality"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	LogLevel     string        `mapstructure:"log_level"`
	LogFile      string        `mapstructure:"log_file"`
}

// キーと環境変数の対応。先に見つかった環境変数が使われる。
var envBindings = map[string][]string{
	"api_key":       {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"model":         {"PHOTO_REASONING_MODEL"},
	"max_dimension": {"PHOTO_REASONING_MAX_DIMENSION"},
	"concurrency":   {"PHOTO_REASONING_CONCURRENCY"},
	"jpeg_quality":  {"PHOTO_REASONING_JPEG_QUALITY"},
	"http_timeout":  {"PHOTO_REASONING_HTTP_TIMEOUT"},
	"log_level":     {"LOG_LEVEL"},
	"log_file":      {"LOG_FILE"},
}

// LoadDotEnv は .env ファイルを読み込みます。ファイルが存在しない場合は何もしません。
// 既に設定済みの環境変数は上書きしません。
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf(".envの読み込みに失敗しました: %w", err)
	}
	return nil
}

// NewViper は既定値と環境変数の対応を設定した viper インスタンスを返します。
// CLI のフラグは呼び出し側で BindPFlag してください。
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("model", "gemini-2.5-flash")
	v.SetDefault("max_dimension", 768)
	v.SetDefault("concurrency", 1)
	v.SetDefault("jpeg_quality", 80)
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
	return v
}

// Load は設定ファイル（指定されていれば）を読み込み、Config を組み立てて検証します。
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("設定の解析に失敗しました: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は必須項目と値の範囲を確認します。
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("GEMINI_API_KEY is not set")
	}
	if c.Model == "" {
		return errors.New("model is required")
	}
	if c.MaxDimension <= 0 {
		return fmt.Errorf("max_dimension must be positive: %d", c.MaxDimension)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive: %d", c.Concurrency)
	}
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be in 1..100: %d", c.JPEGQuality)
	}
	return nil
}
