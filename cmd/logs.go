package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/template"

	"batchrvt/internal/eventlog"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/cobra"
)

var (
	logsUTC      bool
	logsFollow   bool
	logsTemplate string
	logsFolder   string
)

// logsCmd groups the commands that read session logs.
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Read session logs",
}

var logsShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Show a session log as plain text",
	Long: `Shows a session log one entry per line as "<date> <time> : <message>".
Lines that are not log entries are shown unchanged.

--template renders each entry with a Go template instead. The template sees
.Date, .Time, .SessionID, .Text and .Message (the decoded payload), and the
sprig function library is available:

  batchrvt logs show run.log --template '{{ .Time }} {{ .Text | upper }}'`,
	Args: cobra.ExactArgs(1),
	RunE: runLogsShow,
}

var logsPathCmd = &cobra.Command{
	Use:   "path <session-id>",
	Short: "Print the log file path of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := logsFolder
		if folder == "" {
			folder = appConfig.LogFolder
		}
		fmt.Fprintln(cmd.OutOrStdout(), eventlog.FilePath(folder, args[0]))
		return nil
	},
}

// entryView is what a --template sees for one entry.
type entryView struct {
	Date      string
	Time      string
	SessionID string
	Text      string
	Message   any
}

func newEntryView(e eventlog.Entry, useUTC bool) entryView {
	v := entryView{Date: e.Date.Local, Time: e.Time.Local, SessionID: e.SessionID}
	if useUTC {
		v.Date, v.Time = e.Date.UTC, e.Time.UTC
	}
	v.Text, _ = e.Text()
	_ = json.Unmarshal(e.Message, &v.Message)
	return v
}

func parseLogTemplate(text string) (*template.Template, error) {
	tmpl, err := template.New("entry").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}
	return tmpl, nil
}

// renderEntries writes every line of r through tmpl. Lines that are not log
// entries are copied unchanged.
func renderEntries(r io.Reader, w io.Writer, tmpl *template.Template, useUTC bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		entry, err := eventlog.ParseEntry(line)
		if err != nil {
			fmt.Fprintln(w, line)
			continue
		}
		var b strings.Builder
		if err := tmpl.Execute(&b, newEntryView(entry, useUTC)); err != nil {
			return fmt.Errorf("failed to render entry: %w", err)
		}
		fmt.Fprintln(w, b.String())
	}
	return scanner.Err()
}

func runLogsShow(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()

	if logsTemplate != "" {
		if logsFollow {
			return errors.New("--template cannot be combined with --follow")
		}
		tmpl, err := parseLogTemplate(logsTemplate)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return renderEntries(f, out, tmpl, logsUTC)
	}

	if logsFollow {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return eventlog.Follow(ctx, path, logsUTC, func(line string) {
			fmt.Fprintln(out, line)
		})
	}

	lines, err := eventlog.ReadLinesAsPlainText(path, logsUTC)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsShowCmd, logsPathCmd)

	logsShowCmd.Flags().BoolVar(&logsUTC, "utc", false, "Show UTC instead of local time")
	logsShowCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Keep printing entries as they are appended")
	logsShowCmd.Flags().StringVar(&logsTemplate, "template", "", "Go template rendering each entry")
	logsPathCmd.Flags().StringVar(&logsFolder, "log-folder", "", "Log folder (default from config.yaml)")
}
