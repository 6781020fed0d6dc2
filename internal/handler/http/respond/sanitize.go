package respond

import (
	"regexp"
)

var (
	// The Anthropic pattern runs first; it is the more specific one.
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	// Does not match keys already masked with '*'.
	openaiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	bearerPattern    = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._~+/=-]+`)
	// user:password@ in URLs
	urlCredentialsPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
	// Chat webhook URLs carry their secret in the path.
	slackWebhookPattern   = regexp.MustCompile(`(hooks\.slack\.com/services/)[^\s"]+`)
	discordWebhookPattern = regexp.MustCompile(`(discord\.com/api/webhooks/)[^\s"]+`)
)

// SanitizeError returns err's message with API keys, bearer tokens, URL
// credentials and webhook secrets masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")
	msg = urlCredentialsPattern.ReplaceAllString(msg, "://$1:****@")
	msg = slackWebhookPattern.ReplaceAllString(msg, "${1}****")
	msg = discordWebhookPattern.ReplaceAllString(msg, "${1}****")
	return msg
}
