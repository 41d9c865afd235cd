package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// webhookMaxConnections caps the number of simultaneous connections Telegram
// opens towards the webhook endpoint.
const webhookMaxConnections = 5

// webhookAllowedUpdates restricts delivery to the update kinds the bot
// actually handles.
var webhookAllowedUpdates = []string{"message", "inline_query", "callback_query"}

// WebhookURL joins the public base URL with the secret path segment served by
// the webhook endpoint.
func WebhookURL(base, secret string) string {
	u := strings.TrimRight(base, "/") + "/webhook"
	if secret != "" {
		u += "/" + secret
	}
	return u
}

// SetWebhook registers url with Telegram and returns the API description.
func SetWebhook(api *tgbotapi.BotAPI, url string) (string, error) {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return "", fmt.Errorf("build webhook config: %w", err)
	}
	wh.MaxConnections = webhookMaxConnections
	wh.AllowedUpdates = webhookAllowedUpdates

	resp, err := api.Request(wh)
	if err != nil {
		return "", fmt.Errorf("set webhook: %w", err)
	}
	return resp.Description, nil
}

// DeleteWebhook unregisters the webhook and returns the API description.
// Pending updates stay queued so a long-poll run can pick them up.
func DeleteWebhook(api *tgbotapi.BotAPI) (string, error) {
	resp, err := api.Request(tgbotapi.DeleteWebhookConfig{})
	if err != nil {
		return "", fmt.Errorf("delete webhook: %w", err)
	}
	return resp.Description, nil
}

// WebhookInfo fetches the current webhook state as a printable report.
func WebhookInfo(api *tgbotapi.BotAPI) (string, error) {
	info, err := api.GetWebhookInfo()
	if err != nil {
		return "", fmt.Errorf("get webhook info: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", info.URL)
	fmt.Fprintf(&b, "Pending updates: %d\n", info.PendingUpdateCount)
	fmt.Fprintf(&b, "Max connections: %d\n", info.MaxConnections)
	if info.LastErrorMessage != "" {
		fmt.Fprintf(&b, "Last error: %s\n", info.LastErrorMessage)
	}
	return b.String(), nil
}
