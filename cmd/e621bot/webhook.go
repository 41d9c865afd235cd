package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacklul/e621-telegram-bot/internal/telegram"
)

func newWebhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the Telegram webhook registration",
	}
	cmd.AddCommand(newWebhookSetCmd())
	cmd.AddCommand(newWebhookUnsetCmd())
	cmd.AddCommand(newWebhookInfoCmd())
	return cmd
}

func newWebhookSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Register the configured public URL with Telegram",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, cfg, err := botAPI()
			if err != nil {
				return err
			}
			if cfg.WebhookURL == "" {
				return errors.New("BOT_WEBHOOK is not set")
			}

			desc, err := telegram.SetWebhook(api, telegram.WebhookURL(cfg.WebhookURL, cfg.WebhookSecret))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), desc)
			return nil
		},
	}
}

func newWebhookUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset",
		Short: "Remove the webhook registration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, _, err := botAPI()
			if err != nil {
				return err
			}
			desc, err := telegram.DeleteWebhook(api)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), desc)
			return nil
		},
	}
}

func newWebhookInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the current webhook state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, _, err := botAPI()
			if err != nil {
				return err
			}
			info, err := telegram.WebhookInfo(api)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), info)
			return nil
		},
	}
}
