package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rgoodwin/ebay-listing-migrator/internal/metrics"
)

const (
	colorGreen  = 0x2ECC71 // every listing migrated
	colorYellow = 0xF1C40F // partial failures
	colorRed    = 0xE74C3C // nothing migrated

	// Discord truncates fields past 1024 characters; keep error lists short.
	maxReportedErrors = 10
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// SendReport sends a migration report as a Discord embed.
func (d *DiscordNotifier) SendReport(ctx context.Context, report *Report) error {
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildReportEmbed(report)},
	}
	if err := d.post(ctx, payload); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return err
	}
	return nil
}

func buildReportEmbed(report *Report) discordEmbed {
	embed := discordEmbed{
		Title: fmt.Sprintf("Listing Migration: %s → %s", report.Source, report.Target),
		Color: reportColor(report),
		Fields: []discordEmbedField{
			{Name: "Migrated", Value: fmt.Sprintf("%d", report.Succeeded), Inline: true},
			{Name: "Failed", Value: fmt.Sprintf("%d", report.Failed), Inline: true},
			{Name: "Duration", Value: report.Duration.Round(time.Millisecond).String(), Inline: true},
		},
	}

	if len(report.Errors) > 0 {
		errs := report.Errors
		truncated := 0
		if len(errs) > maxReportedErrors {
			truncated = len(errs) - maxReportedErrors
			errs = errs[:maxReportedErrors]
		}
		value := strings.Join(errs, "\n")
		if truncated > 0 {
			value += fmt.Sprintf("\n... and %d more", truncated)
		}
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:  "Errors",
			Value: value,
		})
	}

	if report.OrphanWarning {
		embed.Description = "Some creations failed mid-sequence; the target " +
			"environment may contain inventory items without a published offer. " +
			"Review and clean up manually."
	}

	return embed
}

func reportColor(report *Report) int {
	switch {
	case report.Failed == 0:
		return colorGreen
	case report.Succeeded > 0:
		return colorYellow
	default:
		return colorRed
	}
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
