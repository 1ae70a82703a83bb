package usecase_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/usecase"
)

func sampleEvent() domain.NotificationEvent {
	lat, lon := 37.0333, -121.9667
	visitID := uuid.MustParse("0b7c6f1e-2d4a-4c8e-9f51-3a6b2c1d0e9f")
	return domain.NotificationEvent{
		ID: uuid.New(),
		Visit: domain.Visit{
			ID:   visitID,
			IP:   "73.15.20.1",
			Path: "/pricing",
			UserAgent: domain.UserAgentInfo{
				Browser: "Chrome",
				OS:      "Windows",
				Device:  "desktop",
			},
			Lookup: &domain.IPLookup{
				IP: "73.15.20.1",
				Location: domain.LocationInfo{
					City:        "San Jose",
					Region:      "California",
					CountryCode: "US",
					Latitude:    &lat,
					Longitude:   &lon,
				},
				Network: domain.NetworkInfo{ASN: "AS7922", Organization: "Comcast Cable"},
				Threat:  domain.ThreatInfo{IsVPN: true},
			},
			AccuracyRadius: &domain.AccuracyRadius{RadiusKm: 7.98, Source: domain.RadiusSourceConfidenceArea},
			CreatedAt:      time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		},
		CreatedAt: time.Date(2024, 5, 1, 12, 30, 1, 0, time.UTC),
	}
}

func TestNotificationFormatter_Discord(t *testing.T) {
	f := usecase.NewNotificationFormatter("visitor-bot")

	data, err := f.Format(sampleEvent(), domain.WebhookFormatDiscord)
	require.NoError(t, err)

	var payload struct {
		Username string `json:"username"`
		Content  string `json:"content"`
		Embeds   []struct {
			Title  string `json:"title"`
			Color  int    `json:"color"`
			Fields []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"fields"`
			Timestamp string `json:"timestamp"`
			Footer    struct {
				Text string `json:"text"`
			} `json:"footer"`
		} `json:"embeds"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))

	assert.Equal(t, "visitor-bot", payload.Username)
	assert.Equal(t, "New visitor from San Jose, California, US (73.15.20.1)", payload.Content)
	require.Len(t, payload.Embeds, 1)

	embed := payload.Embeds[0]
	assert.Equal(t, "Visitor: San Jose, California, US", embed.Title)
	assert.Equal(t, 0xE74C3C, embed.Color)
	assert.Equal(t, "2024-05-01T12:30:00Z", embed.Timestamp)
	assert.Equal(t, "visit 0b7c6f1e-2d4a-4c8e-9f51-3a6b2c1d0e9f", embed.Footer.Text)

	values := map[string]string{}
	for _, fl := range embed.Fields {
		values[fl.Name] = fl.Value
	}
	assert.Equal(t, "/pricing", values["Path"])
	assert.Equal(t, "Chrome on Windows (desktop)", values["Client"])
	assert.Equal(t, "±7.98 km (confidence_area)", values["Accuracy"])
	assert.Equal(t, "AS7922 Comcast Cable", values["Network"])
	assert.Equal(t, "vpn", values["Flags"])
	assert.Contains(t, values["Coordinates"], "https://www.google.com/maps?q=37.033300,-121.966700")
}

func TestNotificationFormatter_DefaultFormatIsDiscord(t *testing.T) {
	f := usecase.NewNotificationFormatter("")

	withDefault, err := f.Format(sampleEvent(), "")
	require.NoError(t, err)
	explicit, err := f.Format(sampleEvent(), domain.WebhookFormatDiscord)
	require.NoError(t, err)

	assert.JSONEq(t, string(explicit), string(withDefault))
}

func TestNotificationFormatter_Slack(t *testing.T) {
	f := usecase.NewNotificationFormatter("visitor-bot")

	data, err := f.Format(sampleEvent(), domain.WebhookFormatSlack)
	require.NoError(t, err)

	var payload struct {
		Text   string `json:"text"`
		Blocks []struct {
			Type string `json:"type"`
			Text *struct {
				Text string `json:"text"`
			} `json:"text"`
			Fields   []json.RawMessage `json:"fields"`
			Elements []struct {
				Text string `json:"text"`
			} `json:"elements"`
		} `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))

	assert.Equal(t, "New visitor from San Jose, California, US (73.15.20.1)", payload.Text)
	require.GreaterOrEqual(t, len(payload.Blocks), 3)

	assert.Equal(t, "header", payload.Blocks[0].Type)
	require.NotNil(t, payload.Blocks[0].Text)
	assert.Equal(t, "Visitor: San Jose, California, US", payload.Blocks[0].Text.Text)

	for _, b := range payload.Blocks[1 : len(payload.Blocks)-1] {
		assert.Equal(t, "section", b.Type)
		assert.LessOrEqual(t, len(b.Fields), 10)
	}

	last := payload.Blocks[len(payload.Blocks)-1]
	assert.Equal(t, "context", last.Type)
	require.Len(t, last.Elements, 1)
	assert.Contains(t, last.Elements[0].Text, "2024-05-01T12:30:00Z")
}

func TestNotificationFormatter_FailedLookupAndBot(t *testing.T) {
	f := usecase.NewNotificationFormatter("")
	event := sampleEvent()
	event.Visit.Lookup = nil
	event.Visit.AccuracyRadius = nil
	event.Visit.LookupError = "provider: timeout"
	event.Visit.UserAgent.IsBot = true

	data, err := f.Format(event, domain.WebhookFormatDiscord)
	require.NoError(t, err)

	assert.Contains(t, string(data), "Bot visit: unknown location")
	assert.Contains(t, string(data), "failed: provider: timeout")
	assert.NotContains(t, string(data), "Accuracy")
}

func TestNotificationFormatter_SuppressedRadius(t *testing.T) {
	f := usecase.NewNotificationFormatter("")
	event := sampleEvent()
	event.Visit.AccuracyRadius = nil
	event.Visit.RadiusSuppressed = true
	event.Visit.Lookup.Threat = domain.ThreatInfo{}
	event.Visit.Lookup.Network.IsHosting = true

	data, err := f.Format(event, domain.WebhookFormatDiscord)
	require.NoError(t, err)

	var payload struct {
		Embeds []struct {
			Color int `json:"color"`
		} `json:"embeds"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, 0xF39C12, payload.Embeds[0].Color)
	assert.Contains(t, string(data), "suppressed (hosting network)")
}

func TestNotificationFormatter_UnsupportedFormat(t *testing.T) {
	f := usecase.NewNotificationFormatter("")

	_, err := f.Format(sampleEvent(), "teams")
	assert.ErrorContains(t, err, "teams")
}
