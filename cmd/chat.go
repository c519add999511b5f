package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pocketcode/pocket-cli/internal/domain"
)

func newChatCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send messages and manage chat history",
	}

	cmd.AddCommand(
		newChatSendCmd(app),
		newChatVoiceCmd(app),
		newChatHistoryCmd(app),
		newChatClearCmd(app),
	)

	return cmd
}

func newChatSendCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <message>",
		Short: "Send a text message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := connectClient(cmd, app); err != nil {
				return err
			}

			exchange, err := app.client.SendMessage(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			return printExchange(cmd, exchange)
		},
	}
}

func newChatVoiceCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "voice <transcript>",
		Short: "Send an already-transcribed voice message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := connectClient(cmd, app); err != nil {
				return err
			}

			exchange, err := app.client.SendVoiceMessage(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			return printExchange(cmd, exchange)
		},
	}
}

func newChatHistoryCmd(app *app) *cobra.Command {
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show chat history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := connectClient(cmd, app); err != nil {
				return err
			}

			page, err := app.client.ChatHistory(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, message := range page.Messages {
				printMessage(out, message)
			}
			_, err = fmt.Fprintf(out, "%d of %d messages\n", len(page.Messages), page.Total)
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum messages to fetch")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset into the history")

	return cmd
}

func newChatClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear chat history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := connectClient(cmd, app); err != nil {
				return err
			}

			if err := app.client.ClearChatHistory(cmd.Context()); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return err
		},
	}
}

func printExchange(cmd *cobra.Command, exchange *domain.ChatExchange) error {
	out := cmd.OutOrStdout()
	printMessage(out, exchange.UserMessage)
	printMessage(out, exchange.AssistantMessage)
	return nil
}

func printMessage(out io.Writer, message domain.ChatMessage) {
	label := string(message.Role)
	if message.IsVoice {
		label += " (voice)"
	}
	stamp := ""
	if !message.Timestamp.IsZero() {
		stamp = message.Timestamp.Format("15:04:05 ")
	}
	fmt.Fprintf(out, "%s[%s] %s\n", stamp, label, message.Content)
}
