package email

import (
	"context"
	"errors"
	"testing"

	"luxeleads/internal/config"
	"luxeleads/internal/models"
)

type recordingWhatsApp struct {
	to, message string
	err         error
}

func (r *recordingWhatsApp) SendWhatsApp(_ context.Context, to, message string) error {
	r.to, r.message = to, message
	return r.err
}

func enabledNotifier(cfg *config.Config, wa WhatsAppSender) (*Notifier, *fakeSender) {
	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPFrom = "noreply@example.com"
	n := NewNotifier(cfg, wa)
	fake := &fakeSender{}
	n.service.sender = fake
	return n, fake
}

func TestNewNotifier_DefaultsToLogWhatsApp(t *testing.T) {
	n := NewNotifier(&config.Config{}, nil)
	if _, ok := n.whatsapp.(LogWhatsApp); !ok {
		t.Errorf("whatsapp sender = %T, want LogWhatsApp", n.whatsapp)
	}
}

func TestNotifier_NotifyLeadCaptured(t *testing.T) {
	wa := &recordingWhatsApp{}
	n, fake := enabledNotifier(&config.Config{SalesEmail: "sales@example.com", AdminPhone: "+15550100"}, wa)

	if err := n.NotifyLeadCaptured(context.Background(), testLead(), ""); err != nil {
		t.Fatalf("NotifyLeadCaptured() error = %v", err)
	}
	if len(fake.messages) != 1 {
		t.Errorf("emails sent = %d, want 1", len(fake.messages))
	}
	if wa.to != "+15550100" || wa.message == "" {
		t.Errorf("whatsapp = %q %q", wa.to, wa.message)
	}
}

func TestNotifier_NotifyLeadCaptured_NoAdminPhone(t *testing.T) {
	wa := &recordingWhatsApp{}
	n, _ := enabledNotifier(&config.Config{SalesEmail: "sales@example.com"}, wa)

	if err := n.NotifyLeadCaptured(context.Background(), testLead(), ""); err != nil {
		t.Fatalf("NotifyLeadCaptured() error = %v", err)
	}
	if wa.to != "" {
		t.Error("whatsapp sent without an admin phone")
	}
}

func TestNotifier_NotifyLeadCaptured_JoinsErrors(t *testing.T) {
	waErr := errors.New("whatsapp down")
	n, fake := enabledNotifier(&config.Config{SalesEmail: "sales@example.com", AdminPhone: "+15550100"}, &recordingWhatsApp{err: waErr})
	smtpErr := errors.New("smtp down")
	fake.err = smtpErr

	err := n.NotifyLeadCaptured(context.Background(), testLead(), "")
	if !errors.Is(err, smtpErr) || !errors.Is(err, waErr) {
		t.Errorf("NotifyLeadCaptured() error = %v, want both failures", err)
	}
}

func TestNotifier_HandleEvent(t *testing.T) {
	n, fake := enabledNotifier(&config.Config{SalesEmail: "sales@example.com"}, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		ev      models.LeadEvent
		wantErr bool
	}{
		{"captured", models.LeadEvent{Type: models.EventLeadCaptured, Lead: testLead()}, false},
		{"status changed", models.LeadEvent{Type: models.EventLeadStatusChanged, Lead: testLead(), Status: models.StatusLost, Actor: "admin"}, false},
		{"unknown", models.LeadEvent{Type: "lead.deleted"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := n.HandleEvent(ctx, tt.ev)
			if (err != nil) != tt.wantErr {
				t.Errorf("HandleEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	if len(fake.messages) != 2 {
		t.Errorf("emails sent = %d, want 2", len(fake.messages))
	}
}
