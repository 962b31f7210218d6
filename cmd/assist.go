package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/csrf-diag/pkg/adk"
	"github.com/user/csrf-diag/pkg/config"
	"github.com/user/csrf-diag/pkg/engine"
	"github.com/user/csrf-diag/pkg/logger"
	"github.com/user/csrf-diag/pkg/wrappers"
)

var assistCmd = &cobra.Command{
	Use:   "assist",
	Short: "Chat with an AI assistant that runs the diagnostics for you",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		providerName := cfg.SelectedProvider
		if providerName == "" {
			providerName = "gemini"
		}
		apiKey := cfg.GetAPIKey(providerName)
		if apiKey == "" && providerName == "gemini" {
			apiKey = os.Getenv("GOOGLE_API_KEY")
		}
		if apiKey == "" {
			return fmt.Errorf("API key not found for %s; run 'csrf-diag config set-key' or set GOOGLE_API_KEY", providerName)
		}

		remediation, err := cfg.Remediation("")
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logger.Infof("Connecting to %s (Model: %s)...", providerName, cfg.SelectedModel)
		provider, err := adk.NewProvider(ctx, providerName, apiKey, cfg.SelectedModel)
		if err != nil {
			return fmt.Errorf("creating AI provider: %w", err)
		}
		if closer, ok := provider.(interface{ Close() }); ok {
			defer closer.Close()
		}

		session := engine.NewSession(engine.WithRemediation(remediation))
		agent := adk.NewAgent(provider)
		registerDiagnosticTools(agent, session, remediation)
		agent.SetSystemPrompt(adk.DefaultSystemPrompt())

		out := cmd.OutOrStdout()
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		fmt.Fprintln(out, "\n---------------------------------------------------------")
		fmt.Fprintln(out, "CSRF diagnostic assistant ready.")
		fmt.Fprintln(out, "Example: 'my admin login returns 403, here is the console: ...'")
		fmt.Fprintln(out, "Type 'quit' or 'exit' to stop.")
		fmt.Fprintln(out, "---------------------------------------------------------")

		for {
			fmt.Fprint(out, "\n> ")
			if !scanner.Scan() {
				break
			}
			input := strings.TrimSpace(scanner.Text())
			if input == "quit" || input == "exit" {
				break
			}
			if input == "" {
				continue
			}

			fmt.Fprint(out, "Assistant thinking... ")
			resp, err := agent.Chat(ctx, input, func(msg string) {
				fmt.Fprintf(out, "\r\033[K[Progress]: %s\nAssistant thinking... ", msg)
			})
			fmt.Fprint(out, "\r\033[K")

			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				if ctx.Err() != nil {
					break
				}
				continue
			}
			fmt.Fprintf(out, "\n[Assistant]: %s\n", resp)
		}

		logger.Debugf("session closed with %s", session.Summary())
		return scanner.Err()
	},
}

// registerDiagnosticTools exposes every session operation to the agent
func registerDiagnosticTools(agent *adk.Agent, session *engine.Session, remediation *engine.RemediationEngine) {
	agent.RegisterTool(wrappers.NewConsoleLogWrapper(session))
	agent.RegisterTool(wrappers.NewHeadersWrapper(session))
	agent.RegisterTool(wrappers.NewResponseWrapper(session))
	agent.RegisterTool(&wrappers.ReportWrapper{Session: session})
	agent.RegisterTool(&wrappers.SaveSnapshotWrapper{Session: session})
	agent.RegisterTool(&wrappers.DiffSnapshotWrapper{Session: session})
	agent.RegisterTool(&wrappers.RemediationWrapper{Engine: remediation})
}

func init() {
	rootCmd.AddCommand(assistCmd)
}
