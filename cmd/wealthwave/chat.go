package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/womenwealthwave/wealthwave/internal/chat"
	"github.com/womenwealthwave/wealthwave/internal/llm"
)

// --- Chat Command ---

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the finance assistant (interactive without arguments)",
	Long: `Ask the WomenWealthWave finance assistant.

By default the assistant runs locally against the configured LLM providers.
With --remote, messages are sent to a running WealthWave server at
chat.base_url. Type /reset to clear the conversation and /exit to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		submitter, where, err := chatSubmitter(cmd)
		if err != nil {
			return err
		}
		session := chat.NewSession(submitter)
		out := cmd.OutOrStdout()

		if len(args) > 0 {
			reply, _ := session.Send(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintln(out, reply.Content)
			return nil
		}

		fmt.Fprintf(out, "💬 WealthWave chat (%s). /reset clears, /exit quits.\n", where)
		return chatLoop(cmd, session, cmd.InOrStdin(), out)
	},
}

func init() {
	chatCmd.Flags().Bool("remote", false, "send messages to chat.base_url instead of a local assistant")
	rootCmd.AddCommand(chatCmd)
}

func chatSubmitter(cmd *cobra.Command) (chat.Submitter, string, error) {
	if remote, _ := cmd.Flags().GetBool("remote"); remote {
		c := chat.NewClient(cfg.Chat.BaseURL, chat.WithTimeout(cfg.Chat.Timeout()))
		return loggedSubmitter(c), c.Endpoint(), nil
	}

	router, err := llm.NewRouterFromConfig(cfg.LLM, log)
	if err != nil {
		return nil, "", fmt.Errorf("LLM setup failed: %w", err)
	}
	opts := &llm.ChatOptions{
		Temperature: cfg.LLM.Temperature,
		TopP:        cfg.LLM.TopP,
		MaxTokens:   cfg.LLM.MaxTokens,
	}
	return chat.NewAssistant(router, opts, log), router.Name(), nil
}

func chatLoop(cmd *cobra.Command, session *chat.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nyou › ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			session.Reset()
			fmt.Fprintln(out, "(conversation cleared)")
			continue
		}

		reply, ok := session.Send(cmd.Context(), text)
		if !ok {
			continue
		}
		fmt.Fprintf(out, "assistant › %s\n", reply.Content)

		if cmd.Context().Err() != nil {
			return nil
		}
	}
}

// loggedSubmitter records failed submissions at debug level. The session only
// shows the detail; the log keeps the HTTP status too.
func loggedSubmitter(next chat.Submitter) chat.Submitter {
	return chat.SubmitterFunc(func(ctx context.Context, message string, history []chat.Message) (*chat.Response, error) {
		resp, err := next.Submit(ctx, message, history)
		var remote *chat.RemoteError
		switch {
		case errors.As(err, &remote):
			log.WithField("status", remote.Status).Debug(remote.String())
		case err != nil:
			log.WithError(err).Debug("chat request failed")
		}
		return resp, err
	})
}
