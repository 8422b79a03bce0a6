package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"batchrvt/internal/formatting"
	"batchrvt/internal/orchestrator"
	"batchrvt/internal/settings"

	"github.com/spf13/cobra"
)

var (
	settingsFileFlag   string
	settingsOutputFlag string
	settingsForceFlag  bool
)

// settingsCmd groups the commands that manage the batch settings document.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and edit the batch settings document",
	Long: `The batch settings document is a JSON object shared by the orchestrator and
the worker. Missing or malformed members fall back to their defaults when the
document is loaded.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file holding the default values",
	Args:  cobra.NoArgs,
	RunE:  runSettingsInit,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Change one setting",
	Long: `Changes one setting and saves the document. The value is read as JSON when
it parses as JSON and as plain text otherwise, so both of these work:

  batchrvt settings set taskScriptFilePath C:\Tasks\export.py
  batchrvt settings set revitFilePaths '["a.rvt", "b.rvt"]'`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the settings can start a batch session",
	Args:  cobra.NoArgs,
	RunE:  runSettingsValidate,
}

// loadSettings reads the settings file. A missing file yields defaults and
// reports false.
func loadSettings() (*settings.BatchSettings, string, bool, error) {
	path := settingsFilePath(settingsFileFlag)
	s := settings.NewBatchSettings()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return s, path, false, nil
	}
	if !s.LoadFromFile(path) {
		return nil, path, false, fmt.Errorf("failed to load settings from %s", path)
	}
	return s, path, true, nil
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseOutputFormat(settingsOutputFlag)
	if err != nil {
		return err
	}
	s, path, found, err := loadSettings()
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s does not exist; showing defaults\n", path)
	}

	f := formatting.New(cmd.OutOrStdout(), format)
	if format != formatting.OutputFormatTable {
		text, err := s.ToJSONString()
		if err != nil {
			return err
		}
		return f.WriteJSONText(text)
	}

	doc, err := s.Document()
	if err != nil {
		return err
	}
	defaults, err := settings.NewBatchSettings().Document()
	if err != nil {
		return err
	}

	tbl := formatting.Table{Headers: []string{"name", "value", "default"}}
	for _, m := range s.Members() {
		value := doc[m.Name()]
		isDefault := string(value) == string(defaults[m.Name()])
		tbl.Rows = append(tbl.Rows, []string{m.Name(), string(value), yesNo(isDefault)})
	}
	return f.Write(tbl, nil)
}

func runSettingsInit(cmd *cobra.Command, args []string) error {
	path := settingsFilePath(settingsFileFlag)
	if _, err := os.Stat(path); err == nil && !settingsForceFlag {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if !settings.NewBatchSettings().SaveToFile(path) {
		return fmt.Errorf("failed to write %s", path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default settings to %s\n", path)
	return nil
}

// settingValues returns the JSON readings of command-line text: the text
// itself when it is JSON, then the text as a JSON string.
func settingValues(text string) []json.RawMessage {
	var values []json.RawMessage
	if json.Valid([]byte(text)) {
		values = append(values, json.RawMessage(text))
	}
	encoded, _ := json.Marshal(text)
	return append(values, encoded)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	s, path, _, err := loadSettings()
	if err != nil {
		return err
	}
	member, ok := s.Lookup(args[0])
	if !ok {
		names := make([]string, 0, len(s.Members()))
		for _, m := range s.Members() {
			names = append(names, m.Name())
		}
		sort.Strings(names)
		return fmt.Errorf("unknown setting %q (known settings: %s)", args[0], strings.Join(names, ", "))
	}

	parsed := false
	for _, value := range settingValues(args[1]) {
		if member.Load(settings.Document{member.Name(): value}) == settings.Parsed {
			parsed = true
			break
		}
	}
	if !parsed {
		return fmt.Errorf("%q is not a valid value for %s", args[1], member.Name())
	}
	if !s.SaveToFile(path) {
		return fmt.Errorf("failed to write %s", path)
	}

	stored := settings.Document{}
	if err := member.Store(stored); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", member.Name(), stored[member.Name()])
	return nil
}

func runSettingsValidate(cmd *cobra.Command, args []string) error {
	s, path, found, err := loadSettings()
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%s does not exist", path)
	}
	problems := s.Validate()
	if len(problems) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
		return nil
	}
	for _, p := range problems {
		fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", p)
	}
	return &orchestrator.SettingsError{Problems: problems}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsInitCmd, settingsSetCmd, settingsValidateCmd)

	settingsCmd.PersistentFlags().StringVar(&settingsFileFlag, "file", "", "Settings file (default from config.yaml or the per-user location)")
	settingsShowCmd.Flags().StringVarP(&settingsOutputFlag, "output", "o", "table", "Output format: table, json or yaml")
	settingsInitCmd.Flags().BoolVar(&settingsForceFlag, "force", false, "Overwrite an existing file")
}
