package ioc

import (
	"context"
	"log/slog"

	"github.com/KNICEX/price-watch/internal/service/llm"
	"github.com/KNICEX/price-watch/internal/service/llm/gemini"
	"github.com/google/generative-ai-go/genai"
	"github.com/spf13/viper"
	"google.golang.org/api/option"
)

// InitLLM 未启用时返回 nil, 告警邮件不附带说明
func InitLLM() llm.Service {
	type Config struct {
		Enabled bool     `mapstructure:"enabled"`
		ApiKey  []string `mapstructure:"api_key"`
		Model   string   `mapstructure:"model"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("llm.gemini", &cfg); err != nil {
		panic(err)
	}
	if !cfg.Enabled {
		return nil
	}
	if len(cfg.ApiKey) == 0 {
		panic("no gemini api key set")
	}

	cli, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.ApiKey[0]))
	if err != nil {
		panic(err)
	}

	var opts []gemini.Option
	if cfg.Model != "" {
		opts = append(opts, gemini.WithModel(cfg.Model))
	}
	slog.Info("gemini alert notes enabled")
	return gemini.NewService(cli, opts...)
}
