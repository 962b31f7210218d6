package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/csrf-diag/pkg/config"
	"github.com/user/csrf-diag/pkg/engine"
	"github.com/user/csrf-diag/pkg/logger"
)

// errProblemsFound makes --strict runs exit non-zero
var errProblemsFound = errors.New("diagnosis found problems")

type analyzeOptions struct {
	ConsoleLog string
	Network    string
	Response   string
	Format     string
	Save       string
	Templates  string
	Strict     bool
}

func (o *analyzeOptions) any() bool {
	return o.ConsoleLog != "" || o.Network != "" || o.Response != ""
}

func addAnalyzeFlags(cmd *cobra.Command, o *analyzeOptions) {
	f := cmd.Flags()
	f.StringVar(&o.ConsoleLog, "console-log", "", "File with browser console logs ('-' for stdin)")
	f.StringVar(&o.Network, "network", "", "File with request headers ('-' for stdin)")
	f.StringVar(&o.Response, "response", "", "File with the response JSON ('-' for stdin)")
	addOutputFlags(cmd, o)
}

// addOutputFlags registers the flags shared by every mode that produces a report
func addOutputFlags(cmd *cobra.Command, o *analyzeOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.Format, "format", "f", "", "Report format: text or json (default from config)")
	f.StringVar(&o.Save, "save", "", "Save findings to a snapshot file (.json, .msgpack)")
	f.StringVar(&o.Templates, "templates", "", "Directory with remediation rule templates (YAML)")
	f.BoolVar(&o.Strict, "strict", false, "Exit with an error when problems are found")
}

var analyzeOpts = &analyzeOptions{}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze console logs, request headers and a response body from files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !analyzeOpts.any() {
			return errors.New("at least one of --console-log, --network or --response is required")
		}
		return runAnalyze(cmd, analyzeOpts)
	},
}

func init() {
	addAnalyzeFlags(analyzeCmd, analyzeOpts)
	rootCmd.AddCommand(analyzeCmd)
}

// evidence is the text read for each analyzer; an empty path means the analyzer is skipped.
type evidence struct {
	paths [3]string
	texts [3]string
}

const (
	sourceConsole = iota
	sourceHeaders
	sourceResponse
)

func runAnalyze(cmd *cobra.Command, o *analyzeOptions) error {
	session, format, err := newDiagnosis(o)
	if err != nil {
		return err
	}

	ev, err := readEvidence(cmd.InOrStdin(), o)
	if err != nil {
		return err
	}
	analyzeEvidence(session, ev)

	return finishDiagnosis(cmd.OutOrStdout(), session, o, format)
}

// newDiagnosis builds a session from the config, honoring --format and --templates
func newDiagnosis(o *analyzeOptions) (*engine.Session, string, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}

	format := o.Format
	if format == "" {
		format = cfg.Report.Format
	}
	if err := validateFormat(format); err != nil {
		return nil, "", err
	}

	remediation, err := cfg.Remediation(o.Templates)
	if err != nil {
		return nil, "", err
	}
	return engine.NewSession(engine.WithRemediation(remediation)), format, nil
}

// finishDiagnosis saves the snapshot, prints the report and applies --strict
func finishDiagnosis(out io.Writer, session *engine.Session, o *analyzeOptions, format string) error {
	if o.Save != "" {
		if err := session.SaveSnapshot(o.Save); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		logger.Infof("Saved %d findings to %s", len(session.Findings()), o.Save)
	}

	report := session.Report()
	if err := printReport(out, report, format); err != nil {
		return err
	}
	if o.Strict && report.HasIssues() {
		return errProblemsFound
	}
	return nil
}

// readEvidence reads the selected inputs concurrently; "-" reads stdin.
func readEvidence(stdin io.Reader, o *analyzeOptions) (*evidence, error) {
	ev := &evidence{paths: [3]string{o.ConsoleLog, o.Network, o.Response}}

	stdinUsers := 0
	for _, p := range ev.paths {
		if p == "-" {
			stdinUsers++
		}
	}
	if stdinUsers > 1 {
		return nil, errors.New("stdin ('-') can only be used for one input")
	}

	var g errgroup.Group
	for i, p := range ev.paths {
		if p == "" {
			continue
		}
		i, p := i, p
		g.Go(func() error {
			var (
				data []byte
				err  error
			)
			if p == "-" {
				data, err = io.ReadAll(stdin)
			} else {
				data, err = os.ReadFile(p)
			}
			if err != nil {
				return fmt.Errorf("reading %s: %w", p, err)
			}
			ev.texts[i] = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ev, nil
}

// analyzeEvidence always runs the analyzers in console, headers, response order
// so that reports are reproducible regardless of read timing.
func analyzeEvidence(session *engine.Session, ev *evidence) {
	if ev.paths[sourceConsole] != "" {
		flags := session.AnalyzeConsoleLog(ev.texts[sourceConsole])
		logger.Debugf("console log %s: %v", ev.paths[sourceConsole], flags)
	}
	if ev.paths[sourceHeaders] != "" {
		flags := session.AnalyzeHeaders(ev.texts[sourceHeaders])
		logger.Debugf("headers %s: %v", ev.paths[sourceHeaders], flags)
	}
	if ev.paths[sourceResponse] != "" {
		flags := session.AnalyzeResponse(ev.texts[sourceResponse])
		logger.Debugf("response %s: %v", ev.paths[sourceResponse], flags)
	}
}
