package ioc

import (
	"net/http"
	"time"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/KNICEX/price-watch/internal/repo"
	"github.com/KNICEX/price-watch/internal/service/llm"
	"github.com/KNICEX/price-watch/internal/service/notification"
	"github.com/KNICEX/price-watch/internal/service/notification/smtp"
	"github.com/spf13/viper"
)

func InitNotifier(contacts repo.ContactRepo, llmSvc llm.Service) notification.Notifier {
	var cfg smtp.Config
	if err := viper.UnmarshalKey("notify.smtp", &cfg); err != nil {
		panic(err)
	}

	opts := []notification.EmailOption{
		notification.WithOwnerSMTP(func(settings domain.SMTPSettings) notification.EmailService {
			return smtp.NewService(smtp.Config{
				Host:     settings.Host,
				Port:     settings.Port,
				Username: settings.Username,
				Password: settings.Password,
			})
		}),
	}
	if llmSvc != nil {
		opts = append(opts, notification.WithAnnotator(notification.NewLLMAnnotator(llmSvc, 20*time.Second)))
	}

	notifiers := notification.MultiNotifier{
		notification.NewEmailNotifier(contacts, smtp.NewService(cfg), opts...),
	}
	if url := viper.GetString("notify.webhook.url"); url != "" {
		svc := notification.NewWebhookService(&http.Client{Timeout: 10 * time.Second})
		notifiers = append(notifiers, notification.NewWebhookNotifier(svc, url))
	}
	return notifiers
}
