package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KNICEX/price-watch/internal/domain"
)

// ContactFinder resolves where an owner's alerts go.
type ContactFinder interface {
	FindByOwner(ctx context.Context, ownerID string) (domain.Contact, error)
}

var _ Notifier = (*EmailNotifier)(nil)

// EmailNotifier 邮件告警, 用户配置了自己的 SMTP 时使用用户的配置
type EmailNotifier struct {
	contacts  ContactFinder
	fallback  EmailService
	dialerFor func(settings domain.SMTPSettings) EmailService
	annotator Annotator
}

type EmailOption func(n *EmailNotifier)

// WithOwnerSMTP lets owners with their own SMTP settings send through them.
func WithOwnerSMTP(factory func(settings domain.SMTPSettings) EmailService) EmailOption {
	return func(n *EmailNotifier) {
		n.dialerFor = factory
	}
}

func WithAnnotator(annotator Annotator) EmailOption {
	return func(n *EmailNotifier) {
		n.annotator = annotator
	}
}

func NewEmailNotifier(contacts ContactFinder, fallback EmailService, opts ...EmailOption) *EmailNotifier {
	n := &EmailNotifier{
		contacts:  contacts,
		fallback:  fallback,
		annotator: noopAnnotator{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *EmailNotifier) Send(ctx context.Context, alert Alert) error {
	contact, err := n.contacts.FindByOwner(ctx, alert.OwnerID)
	if err != nil {
		return deliveryFailed("email", fmt.Errorf("resolve contact of %s: %w", alert.OwnerID, err))
	}
	if contact.Email == "" {
		return deliveryFailed("email", errors.New("no destination address for "+alert.OwnerID))
	}

	msg, err := renderMessage(alert, n.annotator.Annotate(ctx, alert))
	if err != nil {
		return deliveryFailed("email", err)
	}

	svc := n.fallback
	if !contact.SMTP.IsZero() && n.dialerFor != nil {
		svc = n.dialerFor(contact.SMTP)
	}
	if svc == nil {
		return deliveryFailed("email", errors.New("no smtp server configured"))
	}
	if err := svc.SendHTML(ctx, contact.Email, msg.Subject, msg.HTML); err != nil {
		return deliveryFailed("email", err)
	}
	slog.Info("alert email sent", "session", alert.SessionID, "kind", alert.Kind, "to", contact.Email)
	return nil
}
