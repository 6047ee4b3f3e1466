package ioc

import (
	"time"

	"github.com/KNICEX/price-watch/internal/metrics"
	"github.com/KNICEX/price-watch/internal/repo"
	"github.com/KNICEX/price-watch/internal/schedule"
	"github.com/KNICEX/price-watch/internal/service/monitor"
	"github.com/KNICEX/price-watch/internal/service/notification"
	"github.com/KNICEX/price-watch/internal/service/quote"
	"github.com/KNICEX/price-watch/internal/service/session"
	"github.com/spf13/viper"
)

type monitorConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	QuoteTimeout  time.Duration `mapstructure:"quote_timeout"`
	NotifyTimeout time.Duration `mapstructure:"notify_timeout"`
}

func loadMonitorConfig() monitorConfig {
	cfg := monitorConfig{
		Interval:      schedule.DefaultInterval,
		QuoteTimeout:  10 * time.Second,
		NotifyTimeout: 15 * time.Second,
	}
	if err := viper.UnmarshalKey("monitor", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func InitSessionManager(sessionRepo repo.SessionRepo, quotes quote.Source,
	notifier notification.Notifier, prom *metrics.Prometheus) *session.Manager {
	cfg := loadMonitorConfig()

	engine := monitor.NewEngine(sessionRepo, quotes, notifier,
		monitor.WithQuoteTimeout(cfg.QuoteTimeout),
		monitor.WithNotifyTimeout(cfg.NotifyTimeout),
		monitor.WithMetrics(prom),
	)
	scheduler := schedule.New(cfg.Interval, schedule.WithImmediate(true))
	return session.NewManager(sessionRepo, engine, scheduler)
}
