package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"buildbump/internal/bump"
	"buildbump/internal/logging"
	"buildbump/internal/syntax"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var inspectJSON bool

// inspectCmd lists the fields a run would touch
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "List every target field in an app config without changing it",
	Long: `Parses the file and lists each field matched by the built-in targets and
any custom targets from the settings file, whether or not the platform toggles
are enabled. Nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print matches as JSON")
}

// fieldMatch is one row of inspect output.
type fieldMatch struct {
	Target string `json:"target"`
	Field  string `json:"field"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Value  string `json:"value"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	log := logging.For(logger, logging.CategoryCLI)

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	tree, err := syntax.Parse(commandContext(cmd), path, src)
	if err != nil {
		return err
	}
	targets, err := bump.AllTargets(cfg)
	if err != nil {
		return err
	}

	matches := make([]fieldMatch, 0)
	for _, target := range targets {
		for _, leaf := range bump.FindMatchingLeaves(tree, target.Pattern) {
			prop := leaf.Property
			matches = append(matches, fieldMatch{
				Target: target.Name,
				Field:  target.Pattern.Path,
				Line:   prop.Pos.Line,
				Column: prop.Pos.Column,
				Value:  leaf.Value().Text(),
			})
		}
	}
	log.Debug("inspected file", zap.String("path", path), zap.Int("matches", len(matches)))

	out := cmd.OutOrStdout()
	if inspectJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}
	if len(matches) == 0 {
		fmt.Fprintf(out, "No target fields found in %s\n", path)
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("TARGET", "FIELD", "LINE", "COL", "VALUE")
	for _, m := range matches {
		t.Row(m.Target, m.Field, strconv.Itoa(m.Line), strconv.Itoa(m.Column), m.Value)
	}
	fmt.Fprintln(out, t.String())
	return nil
}
