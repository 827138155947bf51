package redact

import "strings"

// WebhookURL masks the final path segment of a webhook URL, which is where
// Slack-style incoming webhooks carry their secret. A URL with no final
// segment to keep apart (no slash, or a trailing slash) is masked entirely
// as "***"; the empty string stays empty.
func WebhookURL(webhookURL string) string {
	if webhookURL == "" {
		return ""
	}
	if lastSlash := strings.LastIndex(webhookURL, "/"); lastSlash != -1 && lastSlash < len(webhookURL)-1 {
		return webhookURL[:lastSlash+1] + "***"
	}
	return "***"
}
