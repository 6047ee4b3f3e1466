package smtp

import (
	"context"
	"fmt"

	"github.com/KNICEX/price-watch/internal/service/notification"
	"gopkg.in/gomail.v2"
)

var _ notification.EmailService = (*Service)(nil)

type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Service 通过 SMTP 发送邮件, 465 端口使用 SSL
type Service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg Config) *Service {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.Port == 465
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Service{
		dialer: d,
		from:   from,
	}
}

func (s *Service) SendText(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, "text/plain", body)
}

func (s *Service) SendHTML(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, "text/html", body)
}

func (s *Service) send(ctx context.Context, to, subject, contentType, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody(contentType, body)

	if err := ctx.Err(); err != nil {
		return err
	}

	// gomail 不支持 context, 超时后放弃等待; 连接建立后再检查一次, 已放弃的邮件不再投递
	done := make(chan error, 1)
	go func() {
		sc, err := s.dialer.Dial()
		if err != nil {
			done <- err
			return
		}
		defer sc.Close()
		if err := ctx.Err(); err != nil {
			done <- err
			return
		}
		done <- gomail.Send(sc, m)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
