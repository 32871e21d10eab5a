package email

import (
	"context"
	"log"
)

// WhatsAppSender delivers short text messages to a phone number.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, to, message string) error
}

// LogWhatsApp logs messages instead of delivering them.
type LogWhatsApp struct{}

// SendWhatsApp logs the message.
func (LogWhatsApp) SendWhatsApp(_ context.Context, to, message string) error {
	log.Printf("Development mode - WhatsApp message would be sent to %s: %s", to, message)
	return nil
}
