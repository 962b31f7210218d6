package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/user/csrf-diag/pkg/engine"
	"github.com/user/csrf-diag/pkg/logger"
)

// blobTerminator ends one pasted block so several blocks can share one input stream
const blobTerminator = "END"

type pasteStep struct {
	prompt  string
	banner  string
	analyze func(*engine.Session, string) engine.EvidenceFlags
}

var (
	consoleStep  = pasteStep{"Paste the console logs", "🔍 ANALYZING CONSOLE LOGS", (*engine.Session).AnalyzeConsoleLog}
	headersStep  = pasteStep{"Paste the request headers", "📡 ANALYZING NETWORK HEADERS", (*engine.Session).AnalyzeHeaders}
	responseStep = pasteStep{"Paste the response JSON", "📨 ANALYZING SERVER RESPONSE", (*engine.Session).AnalyzeResponse}
)

var menuChoices = map[string][]pasteStep{
	"1": {consoleStep},
	"2": {headersStep},
	"3": {responseStep},
	"4": {consoleStep, headersStep, responseStep},
}

var interactiveOpts = &analyzeOptions{}

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Paste logs, headers and responses at the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd, interactiveOpts)
	},
}

func init() {
	addOutputFlags(interactiveCmd, interactiveOpts)
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, o *analyzeOptions) error {
	session, format, err := newDiagnosis(o)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	analyzed, err := interactiveSession(bufio.NewReader(in), cmd.OutOrStdout(), session, isTerminal(in))
	if err != nil || !analyzed {
		return err
	}
	return finishDiagnosis(cmd.OutOrStdout(), session, o, format)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// interactiveSession runs the menu once and reports whether any evidence was
// analyzed. Prompts are only printed when a person is typing.
func interactiveSession(r *bufio.Reader, out io.Writer, session *engine.Session, prompts bool) (bool, error) {
	if prompts {
		banner(out, "🧪 INTERACTIVE MODE - CSRF DIAGNOSTIC")
		fmt.Fprintln(out, "\nThis tool helps diagnose CSRF token problems.")
		fmt.Fprintln(out, "\nChoose an option:")
		fmt.Fprintln(out, "1. Analyze console logs")
		fmt.Fprintln(out, "2. Analyze network headers")
		fmt.Fprintln(out, "3. Analyze server response")
		fmt.Fprintln(out, "4. Full diagnosis")
		fmt.Fprintln(out, "0. Exit")
		fmt.Fprint(out, "\nEnter your option (0-4): ")
	}

	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	choice := strings.TrimSpace(line)
	switch choice {
	case "0":
		return false, nil
	case "":
		logger.Warnf("no option selected, nothing analyzed")
		return false, nil
	}

	steps, ok := menuChoices[choice]
	if !ok {
		return false, fmt.Errorf("invalid option %q", choice)
	}

	for i, step := range steps {
		if prompts {
			label := step.prompt
			if len(steps) > 1 {
				label = fmt.Sprintf("%d. %s", i+1, step.prompt)
			}
			fmt.Fprintf(out, "\n%s (finish with a line containing only %s, or Ctrl+D):\n", label, blobTerminator)
		}
		text, err := readBlob(r)
		if err != nil {
			return false, err
		}
		if prompts {
			banner(out, step.banner)
		}
		step.analyze(session, text)
	}
	return true, nil
}

// readBlob reads lines up to a terminator line or EOF and returns them joined.
func readBlob(r *bufio.Reader) (string, error) {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(trimmed) == blobTerminator {
			break
		}
		if line != "" {
			lines = append(lines, trimmed)
		}
		if err != nil {
			break
		}
	}
	return strings.Join(lines, "\n"), nil
}
