package ioc

import (
	"net/http"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/spf13/viper"
)

// InitBinanceCli 只用于读取现货行情, 行情接口不需要签名, key 可以为空
func InitBinanceCli() *binance.Client {
	type Config struct {
		ApiKey    string        `mapstructure:"api_key"`
		ApiSecret string        `mapstructure:"api_secret"`
		BaseURL   string        `mapstructure:"base_url"`
		Timeout   time.Duration `mapstructure:"timeout"`
	}

	cfg := Config{Timeout: 10 * time.Second}
	if err := viper.UnmarshalKey("quote.binance", &cfg); err != nil {
		panic(err)
	}

	cli := binance.NewClient(cfg.ApiKey, cfg.ApiSecret)
	// 测试网或镜像地址
	if cfg.BaseURL != "" {
		cli.BaseURL = cfg.BaseURL
	}
	cli.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return cli
}
