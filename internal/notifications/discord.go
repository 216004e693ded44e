package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// discordMessageLimit is the maximum content length Discord accepts.
const discordMessageLimit = 2000

// Discord executes a channel webhook. Only the webhook id and token are
// needed; no bot session is opened.
type Discord struct {
	session *discordgo.Session
	id      string
	token   string
}

// NewDiscord builds a Discord webhook notifier.
func NewDiscord(webhookID, webhookToken string, opts ...Option) (*Discord, error) {
	webhookID = strings.TrimSpace(webhookID)
	webhookToken = strings.TrimSpace(webhookToken)
	if webhookID == "" || webhookToken == "" {
		return nil, errors.New("discord webhook id and token required")
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	o := applyOptions(opts)
	session.Client = o.client
	session.UserAgent = userAgent
	session.MaxRestRetries = 0
	return &Discord{session: session, id: webhookID, token: webhookToken}, nil
}

func (d *Discord) Notify(ctx context.Context, message string) error {
	if runes := []rune(message); len(runes) > discordMessageLimit {
		message = string(runes[:discordMessageLimit-1]) + "…"
	}
	params := &discordgo.WebhookParams{
		Content:  message,
		Username: "Fantamorto",
	}
	if _, err := d.session.WebhookExecute(d.id, d.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("execute discord webhook: %w", err)
	}
	return nil
}
