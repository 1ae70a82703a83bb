package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/visitor-geolocation/internal/domain"
)

// Цвета Discord embed
const (
	colorNormal  = 0x2ECC71
	colorHosting = 0xF39C12
	colorThreat  = 0xE74C3C
)

type discordPayload struct {
	Username string         `json:"username,omitempty"`
	Content  string         `json:"content"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title     string         `json:"title"`
	Color     int            `json:"color"`
	Fields    []discordField `json:"fields"`
	Timestamp string         `json:"timestamp"`
	Footer    discordFooter  `json:"footer"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type slackPayload struct {
	Username string       `json:"username,omitempty"`
	Text     string       `json:"text"`
	Blocks   []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// field - формато-независимая строка уведомления
type field struct {
	name   string
	value  string
	inline bool
}

// NotificationFormatter собирает payload чат-вебхука из события визита
type NotificationFormatter struct {
	username string
}

func NewNotificationFormatter(username string) *NotificationFormatter {
	return &NotificationFormatter{username: username}
}

// Format возвращает JSON для формата цели (discord | slack)
func (f *NotificationFormatter) Format(event domain.NotificationEvent, format string) ([]byte, error) {
	switch format {
	case domain.WebhookFormatDiscord, "":
		return json.Marshal(f.discord(event))
	case domain.WebhookFormatSlack:
		return json.Marshal(f.slack(event))
	default:
		return nil, fmt.Errorf("unsupported webhook format %q", format)
	}
}

func (f *NotificationFormatter) discord(event domain.NotificationEvent) discordPayload {
	fields := visitFields(event.Visit)
	embedFields := make([]discordField, 0, len(fields))
	for _, fl := range fields {
		embedFields = append(embedFields, discordField{Name: fl.name, Value: fl.value, Inline: fl.inline})
	}

	return discordPayload{
		Username: f.username,
		Content:  headline(event.Visit),
		Embeds: []discordEmbed{{
			Title:     title(event.Visit),
			Color:     color(event.Visit),
			Fields:    embedFields,
			Timestamp: event.Visit.CreatedAt.UTC().Format(time.RFC3339),
			Footer:    discordFooter{Text: "visit " + event.Visit.ID.String()},
		}},
	}
}

func (f *NotificationFormatter) slack(event domain.NotificationEvent) slackPayload {
	fields := visitFields(event.Visit)
	sectionFields := make([]slackText, 0, len(fields))
	for _, fl := range fields {
		sectionFields = append(sectionFields, slackText{Type: "mrkdwn", Text: fmt.Sprintf("*%s*\n%s", fl.name, fl.value)})
	}

	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: title(event.Visit)}},
	}
	// Slack принимает не больше 10 полей в одной секции
	for start := 0; start < len(sectionFields); start += 10 {
		end := start + 10
		if end > len(sectionFields) {
			end = len(sectionFields)
		}
		blocks = append(blocks, slackBlock{Type: "section", Fields: sectionFields[start:end]})
	}
	blocks = append(blocks, slackBlock{
		Type: "context",
		Elements: []slackText{{
			Type: "mrkdwn",
			Text: fmt.Sprintf("visit %s at %s", event.Visit.ID, event.Visit.CreatedAt.UTC().Format(time.RFC3339)),
		}},
	})

	return slackPayload{
		Username: f.username,
		Text:     headline(event.Visit),
		Blocks:   blocks,
	}
}

func place(v domain.Visit) string {
	if v.Lookup == nil {
		return "unknown location"
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{v.Lookup.Location.City, v.Lookup.Location.Region, v.Lookup.Location.CountryCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "unknown location"
	}
	return strings.Join(parts, ", ")
}

func headline(v domain.Visit) string {
	return fmt.Sprintf("New visitor from %s (%s)", place(v), v.IP)
}

func title(v domain.Visit) string {
	if v.UserAgent.IsBot {
		return "Bot visit: " + place(v)
	}
	return "Visitor: " + place(v)
}

func color(v domain.Visit) int {
	if v.Lookup == nil {
		return colorNormal
	}
	if len(v.Lookup.Threat.Flags()) > 0 {
		return colorThreat
	}
	if v.Lookup.Network.IsHosting || v.UserAgent.IsBot {
		return colorHosting
	}
	return colorNormal
}

func visitFields(v domain.Visit) []field {
	fields := []field{
		{name: "IP", value: v.IP, inline: true},
		{name: "Client", value: fmt.Sprintf("%s on %s (%s)", v.UserAgent.Browser, v.UserAgent.OS, v.UserAgent.Device), inline: true},
	}
	if v.Path != "" {
		fields = append(fields, field{name: "Path", value: v.Path, inline: true})
	}
	if v.Referer != "" {
		fields = append(fields, field{name: "Referer", value: v.Referer})
	}

	if v.Lookup == nil {
		if v.LookupError != "" {
			fields = append(fields, field{name: "Lookup", value: "failed: " + v.LookupError})
		}
		return fields
	}

	l := v.Lookup
	fields = append(fields, field{name: "Location", value: place(v), inline: true})
	if l.Location.HasCoordinates() {
		lat, lon := *l.Location.Latitude, *l.Location.Longitude
		fields = append(fields, field{
			name:  "Coordinates",
			value: fmt.Sprintf("[%.4f, %.4f](https://www.google.com/maps?q=%.6f,%.6f)", lat, lon, lat, lon),
		})
	}

	switch {
	case v.RadiusSuppressed:
		fields = append(fields, field{name: "Accuracy", value: "suppressed (hosting network)", inline: true})
	case v.AccuracyRadius != nil:
		fields = append(fields, field{
			name:   "Accuracy",
			value:  fmt.Sprintf("±%.2f km (%s)", v.AccuracyRadius.RadiusKm, v.AccuracyRadius.Source),
			inline: true,
		})
	}

	if l.Network.ASN != "" || l.Network.Organization != "" {
		fields = append(fields, field{
			name:   "Network",
			value:  strings.TrimSpace(l.Network.ASN + " " + l.Network.Organization),
			inline: true,
		})
	}
	if flags := l.Threat.Flags(); len(flags) > 0 {
		fields = append(fields, field{name: "Flags", value: strings.Join(flags, ", "), inline: true})
	}
	if l.Network.IsHosting {
		fields = append(fields, field{name: "Hosting", value: "yes", inline: true})
	}

	return fields
}
