package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, body string) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", kind, "to", to)
	}
	return err
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, email, name string) error {
	libraryURL := fmt.Sprintf("%s/library", s.appURL)
	subject, body := welcomeEmailTemplate(name, libraryURL, s.appName)
	return s.send(ctx, "welcome", email, subject, body)
}

func (s *EmailService) SendPurchaseReceipt(ctx context.Context, email, bookTitle, amount, reference string) error {
	readURL := fmt.Sprintf("%s/library", s.appURL)
	subject, body := purchaseReceiptTemplate(bookTitle, amount, reference, readURL, s.appName)
	return s.send(ctx, "purchase_receipt", email, subject, body)
}

func (s *EmailService) SendSubscriptionConfirmation(ctx context.Context, email, planName, amount, renewsOn string) error {
	subject, body := subscriptionConfirmationTemplate(planName, amount, renewsOn, s.appName)
	return s.send(ctx, "subscription_confirmation", email, subject, body)
}
