package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *Report {
	return &Report{
		Source:    "production",
		Target:    "sandbox",
		Succeeded: 3,
		Failed:    0,
		Duration:  4200 * time.Millisecond,
	}
}

func TestDiscordNotifier_SendReport(t *testing.T) {
	t.Parallel()

	var received discordWebhookPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewDiscordNotifier(srv.URL)

	err := n.SendReport(context.Background(), testReport())
	require.NoError(t, err)

	require.Len(t, received.Embeds, 1)
	embed := received.Embeds[0]
	assert.Equal(t, "Listing Migration: production → sandbox", embed.Title)
	assert.Equal(t, colorGreen, embed.Color)
	assert.Empty(t, embed.Description)

	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "3", embed.Fields[0].Value)
	assert.Equal(t, "0", embed.Fields[1].Value)
	assert.Equal(t, "4.2s", embed.Fields[2].Value)
}

func TestDiscordNotifier_OrphanWarning(t *testing.T) {
	t.Parallel()

	var received discordWebhookPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	report := testReport()
	report.Succeeded = 2
	report.Failed = 1
	report.Errors = []string{"Vintage Camera (listing-3): creating offer: 400"}
	report.OrphanWarning = true

	n := NewDiscordNotifier(srv.URL)
	require.NoError(t, n.SendReport(context.Background(), report))

	require.Len(t, received.Embeds, 1)
	embed := received.Embeds[0]
	assert.Equal(t, colorYellow, embed.Color)
	assert.Contains(t, embed.Description, "inventory items without a published offer")

	require.Len(t, embed.Fields, 4)
	assert.Equal(t, "Errors", embed.Fields[3].Name)
	assert.Contains(t, embed.Fields[3].Value, "Vintage Camera")
}

func TestDiscordNotifier_TruncatesLongErrorLists(t *testing.T) {
	t.Parallel()

	var received discordWebhookPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	report := testReport()
	report.Succeeded = 0
	report.Failed = 15
	for range 15 {
		report.Errors = append(report.Errors, "item failed")
	}

	n := NewDiscordNotifier(srv.URL)
	require.NoError(t, n.SendReport(context.Background(), report))

	embed := received.Embeds[0]
	assert.Equal(t, colorRed, embed.Color)

	errField := embed.Fields[len(embed.Fields)-1]
	assert.Equal(t, maxReportedErrors, strings.Count(errField.Value, "item failed"))
	assert.Contains(t, errField.Value, "... and 5 more")
}

func TestDiscordNotifier_ErrorStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr string
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: "rate limited"},
		{name: "server error", status: http.StatusInternalServerError, wantErr: "discord returned 500"},
		{name: "bad request", status: http.StatusBadRequest, wantErr: "discord returned 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			n := NewDiscordNotifier(srv.URL)

			err := n.SendReport(context.Background(), testReport())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNoOpNotifier_SendReport(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(log.New(io.Discard))

	err := n.SendReport(context.Background(), testReport())
	assert.NoError(t, err)
}
