package alert

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

type gmailSender interface {
	send(ctx context.Context, msg *gmail.Message) error
}

type gmailService struct {
	svc *gmail.Service
}

func (g gmailService) send(ctx context.Context, msg *gmail.Message) error {
	_, err := g.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	return err
}

// GmailChannel e-mails alerts to the emergency contact.
type GmailChannel struct {
	sender gmailSender
	from   string
	to     []string
}

// GmailCredentials hold an OAuth2 client and a long-lived refresh token.
type GmailCredentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

func NewGmailChannel(ctx context.Context, creds GmailCredentials, from string, to []string) (*GmailChannel, error) {
	if len(to) == 0 {
		return nil, fmt.Errorf("gmail channel needs at least one recipient")
	}
	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
	}
	ts := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &GmailChannel{sender: gmailService{svc: svc}, from: from, to: to}, nil
}

func (c *GmailChannel) Name() string { return "gmail" }

func (c *GmailChannel) Send(ctx context.Context, subject, body string) error {
	raw := buildMIME(c.from, c.to, subject, body)
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString([]byte(raw))}
	if err := c.sender.send(ctx, msg); err != nil {
		return fmt.Errorf("gmail send: %w", err)
	}
	return nil
}

func buildMIME(from string, to []string, subject, body string) string {
	var sb strings.Builder
	if from != "" {
		sb.WriteString("From: " + from + "\r\n")
	}
	sb.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	sb.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return sb.String()
}
