package cmd

import (
	"fmt"
	"strings"

	"batchrvt/internal/formatting"
	"batchrvt/internal/options"

	"github.com/spf13/cobra"
)

var optionsOutputFlag string

// optionsCmd groups the commands that explain the worker's option vocabulary.
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Inspect the worker command-line options",
}

var optionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the options understood by the worker",
	Args:  cobra.NoArgs,
	RunE:  runOptionsList,
}

var optionsCheckCmd = &cobra.Command{
	Use:   "check [arguments...]",
	Short: "Parse a worker command line and report what it means",
	Long: `Parses the given arguments the way the worker does and reports the value
of every option and any switch that is not part of the vocabulary.

  batchrvt options check --settings_file s.json --audit --bogus`,
	DisableFlagParsing: true,
	RunE:               runOptionsCheck,
}

var optionsBuildCmd = &cobra.Command{
	Use:   "build [name=value | name]...",
	Short: "Build a worker command line",
	Long: `Builds a worker command line from name=value pairs. A bare name is a switch.

  batchrvt options build settings_file="C:\My Settings\s.json" audit`,
	RunE: runOptionsBuild,
}

type optionRow struct {
	Name        string `json:"name"`
	Switch      string `json:"switch"`
	TakesValue  bool   `json:"takesValue"`
	Description string `json:"description"`
}

func runOptionsList(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseOutputFormat(optionsOutputFlag)
	if err != nil {
		return err
	}

	var rows []optionRow
	tbl := formatting.Table{Headers: []string{"switch", "value", "description"}}
	for _, o := range options.DefaultRegistry().Options() {
		rows = append(rows, optionRow{Name: o.Name, Switch: o.Switch(), TakesValue: o.RequiresValue(), Description: o.Description})
		tbl.Rows = append(tbl.Rows, []string{o.Switch(), yesNo(o.RequiresValue()), o.Description})
	}
	return formatting.New(cmd.OutOrStdout(), format).Write(tbl, rows)
}

func runOptionsCheck(cmd *cobra.Command, args []string) error {
	registry := options.DefaultRegistry()
	argv := append([]string{workerCmdName}, args...)
	out := cmd.OutOrStdout()

	values := registry.Parse(argv)
	tbl := formatting.Table{Headers: []string{"option", "value"}}
	for _, name := range values.Names() {
		if !values.Has(name) {
			continue
		}
		tbl.Rows = append(tbl.Rows, []string{name, fmt.Sprint(values[name])})
	}
	if err := formatting.New(out, formatting.OutputFormatTable).Write(tbl, nil); err != nil {
		return err
	}

	var problems []string
	for _, name := range registry.InvalidOptions(argv) {
		problems = append(problems, fmt.Sprintf("unknown option %s%s", options.SwitchPrefix, name))
	}
	for _, name := range registry.MissingValues(argv) {
		problems = append(problems, fmt.Sprintf("missing or invalid value for %s%s", options.SwitchPrefix, name))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func runOptionsBuild(cmd *cobra.Command, args []string) error {
	pairs := make([]options.Pair, 0, len(args))
	for _, arg := range args {
		name, value, hasValue := strings.Cut(arg, "=")
		if !hasValue {
			pairs = append(pairs, options.Pair{Name: name, Value: true})
			continue
		}
		pairs = append(pairs, options.Pair{Name: name, Value: value})
	}
	line, err := options.ConstructCommandLineArguments(pairs)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}

func init() {
	rootCmd.AddCommand(optionsCmd)
	optionsCmd.AddCommand(optionsListCmd, optionsCheckCmd, optionsBuildCmd)

	optionsListCmd.Flags().StringVarP(&optionsOutputFlag, "output", "o", "table", "Output format: table, json or yaml")
}
