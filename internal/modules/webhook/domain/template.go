package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	integrationdomain "stint/internal/modules/integration/domain"
	"stint/internal/platform/timefmt"
)

// Payload templates understood by RenderBody.
const (
	TemplateGeneric = "generic"
	TemplateSlack   = "slack"
	TemplateDiscord = "discord"
)

// Templates lists the known template names.
func Templates() []string {
	return []string{TemplateGeneric, TemplateSlack, TemplateDiscord}
}

// KnownTemplate reports whether name is a supported payload template.
func KnownTemplate(name string) bool {
	switch name {
	case TemplateGeneric, TemplateSlack, TemplateDiscord:
		return true
	}
	return false
}

// RenderBody shapes an event into the JSON request body for the given
// template.
func RenderBody(template string, event integrationdomain.Event) ([]byte, error) {
	payload, err := renderPayload(template, event)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", template, err)
	}
	return body, nil
}

func renderPayload(template string, event integrationdomain.Event) (map[string]any, error) {
	switch template {
	case TemplateGeneric, "":
		return genericPayload(event), nil
	case TemplateSlack:
		return slackPayload(event), nil
	case TemplateDiscord:
		return discordPayload(event), nil
	default:
		return nil, fmt.Errorf("%w: unknown template %q", ErrInvalidConfig, template)
	}
}

func genericPayload(event integrationdomain.Event) map[string]any {
	return map[string]any{
		"event":     event.Kind,
		"event_id":  event.ID,
		"timestamp": event.OccurredAt.UTC().Format(time.RFC3339),
		"data":      event.Payload,
	}
}

func slackPayload(event integrationdomain.Event) map[string]any {
	lines := append([]string{headline(event)}, detailLines(event)...)
	return map[string]any{
		"text": headline(event),
		"blocks": []any{
			map[string]any{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": strings.Join(lines, "\n"),
				},
			},
		},
	}
}

func discordPayload(event integrationdomain.Event) map[string]any {
	var fields []any
	for _, d := range detailLines(event) {
		name, value, ok := strings.Cut(d, ": ")
		if !ok {
			continue
		}
		fields = append(fields, map[string]any{
			"name":   name,
			"value":  value,
			"inline": true,
		})
	}
	embed := map[string]any{
		"title":     headline(event),
		"timestamp": event.OccurredAt.UTC().Format(time.RFC3339),
	}
	if len(fields) > 0 {
		embed["fields"] = fields
	}
	return map[string]any{
		"content": headline(event),
		"embeds":  []any{embed},
	}
}

func headline(event integrationdomain.Event) string {
	description := stringField(event.Payload, "description")
	switch event.Kind {
	case integrationdomain.KindSessionStarted:
		return "Started: " + description
	case integrationdomain.KindSessionPaused:
		return "Paused: " + description
	case integrationdomain.KindSessionResumed:
		return "Resumed: " + description
	case integrationdomain.KindSessionStopped:
		if sec, ok := numberField(event.Payload, "duration_seconds"); ok {
			return fmt.Sprintf("Stopped: %s (%s)", description, timefmt.Seconds(int64(sec)))
		}
		return "Stopped: " + description
	case integrationdomain.KindExportCompleted:
		return "Export completed: " + stringField(event.Payload, "path")
	case integrationdomain.KindWebhookTest:
		return "Test: " + stringField(event.Payload, "message")
	default:
		return "Event: " + event.Kind
	}
}

func detailLines(event integrationdomain.Event) []string {
	var lines []string
	if project := stringField(event.Payload, "project"); project != "" {
		lines = append(lines, "Project: "+project)
	}
	if tags := stringListField(event.Payload, "tags"); len(tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(tags, ", "))
	}
	if sec, ok := numberField(event.Payload, "duration_seconds"); ok {
		lines = append(lines, "Worked: "+timefmt.Seconds(int64(sec)))
	}
	if sec, ok := numberField(event.Payload, "pause_seconds"); ok && sec > 0 {
		lines = append(lines, "Paused: "+timefmt.Seconds(int64(sec)))
	}
	return lines
}

func stringField(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

func numberField(payload map[string]any, key string) (float64, bool) {
	value, ok := payload[key]
	if !ok {
		return 0, false
	}
	return numeric(value)
}

func stringListField(payload map[string]any, key string) []string {
	switch list := payload[key].(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, v := range list {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
