package email

import (
	"context"
	"errors"
	"fmt"

	"luxeleads/internal/config"
	"luxeleads/internal/models"
)

// Notifier sends lead notifications to the sales team.
type Notifier struct {
	service   *Service
	templates *Templates
	whatsapp  WhatsAppSender
	cfg       *config.Config
}

// NewNotifier creates a new notifier. A nil whatsapp sender logs messages.
func NewNotifier(cfg *config.Config, whatsapp WhatsAppSender) *Notifier {
	if whatsapp == nil {
		whatsapp = LogWhatsApp{}
	}
	return &Notifier{
		service:   NewService(cfg),
		templates: NewTemplates(cfg),
		whatsapp:  whatsapp,
		cfg:       cfg,
	}
}

// HandleEvent routes a lead event to its notification.
func (n *Notifier) HandleEvent(ctx context.Context, ev models.LeadEvent) error {
	switch ev.Type {
	case models.EventLeadCaptured:
		return n.NotifyLeadCaptured(ctx, ev.Lead, ev.Notes)
	case models.EventLeadStatusChanged:
		return n.NotifyStatusChanged(ctx, ev.Lead, ev.Status, ev.Actor)
	}
	return fmt.Errorf("unknown event type %q", ev.Type)
}

// NotifyLeadCaptured emails the sales team and messages the admin phone. Both are
// attempted even if one fails.
func (n *Notifier) NotifyLeadCaptured(ctx context.Context, lead models.Lead, notes string) error {
	var errs []error

	subject, htmlBody, textBody := n.templates.LeadCaptured(lead, notes)
	if err := n.service.SendEmail(n.recipients(), subject, htmlBody, textBody); err != nil {
		errs = append(errs, err)
	}

	if n.cfg.AdminPhone != "" {
		if err := n.whatsapp.SendWhatsApp(ctx, n.cfg.AdminPhone, n.templates.LeadWhatsApp(lead)); err != nil {
			errs = append(errs, fmt.Errorf("send whatsapp: %w", err))
		}
	}

	return errors.Join(errs...)
}

// NotifyStatusChanged emails the sales team about a status update.
func (n *Notifier) NotifyStatusChanged(_ context.Context, lead models.Lead, status, actor string) error {
	subject, htmlBody, textBody := n.templates.StatusChanged(lead, status, actor)
	return n.service.SendEmail(n.recipients(), subject, htmlBody, textBody)
}

func (n *Notifier) recipients() []string {
	if n.cfg.SalesEmail == "" {
		return nil
	}
	return []string{n.cfg.SalesEmail}
}
