package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/modkit/internal/config"
	"github.com/conneroisu/modkit/internal/relationship"
)

var graphCmd = &cobra.Command{
	Use:     "graph",
	Aliases: []string{"g"},
	Short:   "Inspect the unit dependency graph",
	Long: `Show the configured unit graph: each unit with its direct
dependencies, the full relationship classification matrix, and any
dependency cycles.

Examples:
  modkit graph                 # Human-readable graph and matrix
  modkit graph --format json   # Machine-readable output`,
	RunE: runGraph,
}

var graphFormat string

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "text", "Output format (text, json)")
}

type graphReport struct {
	Units         []graphUnit       `json:"units"`
	Relationships map[string]string `json:"relationships"`
	Cycles        [][]string        `json:"cycles,omitempty"`
}

type graphUnit struct {
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies,omitempty"`
	Active       bool     `json:"active"`
}

func runGraph(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	report := buildGraphReport(cfg)

	switch graphFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "text":
		printGraphReport(report)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", graphFormat)
	}
}

func buildGraphReport(cfg *config.Config) *graphReport {
	reg := config.BuildRegistry(cfg)
	resolver := relationship.NewResolver(reg)

	report := &graphReport{
		Relationships: make(map[string]string),
	}

	names := make([]string, 0, len(cfg.Units))
	for _, unit := range cfg.Units {
		names = append(names, unit.Name)
		report.Units = append(report.Units, graphUnit{
			Name:         unit.Name,
			Dependencies: unit.Dependencies,
			Active:       reg.IsActive(unit.Name),
		})
	}
	sort.Strings(names)

	for _, from := range names {
		for _, to := range names {
			if from == to {
				continue
			}
			rel := resolver.Between(from, to)
			report.Relationships[from+" -> "+to] = rel.String()
		}
	}

	report.Cycles = findCycles(cfg)
	return report
}

// findCycles reports dependency cycles via DFS with a three-color marking.
func findCycles(cfg *config.Config) [][]string {
	deps := make(map[string][]string, len(cfg.Units))
	for _, unit := range cfg.Units {
		deps[unit.Name] = unit.Dependencies
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(deps))
	var cycles [][]string
	var stack []string

	var visit func(name string)
	visit = func(name string) {
		color[name] = gray
		stack = append(stack, name)

		for _, dep := range deps[name] {
			switch color[dep] {
			case white:
				visit(dep)
			case gray:
				// Found a back edge; slice the cycle out of the stack
				for i, entry := range stack {
					if entry == dep {
						cycle := make([]string, len(stack)-i)
						copy(cycle, stack[i:])
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[name] = black
	}

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if color[name] == white {
			visit(name)
		}
	}

	return cycles
}

func printGraphReport(report *graphReport) {
	title := cases.Title(language.English)

	fmt.Println(title.String("units"))
	for _, unit := range report.Units {
		marker := ""
		if !unit.Active {
			marker = " (inactive)"
		}
		if len(unit.Dependencies) == 0 {
			fmt.Printf("  %s%s\n", unit.Name, marker)
			continue
		}
		fmt.Printf("  %s%s -> %s\n", unit.Name, marker, strings.Join(unit.Dependencies, ", "))
	}

	fmt.Println()
	fmt.Println(title.String("relationships"))
	pairs := make([]string, 0, len(report.Relationships))
	for pair := range report.Relationships {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	for _, pair := range pairs {
		fmt.Printf("  %-30s %s\n", pair, report.Relationships[pair])
	}

	if len(report.Cycles) > 0 {
		fmt.Println()
		fmt.Println(title.String("cycles"))
		for _, cycle := range report.Cycles {
			fmt.Printf("  %s -> %s\n", strings.Join(cycle, " -> "), cycle[0])
		}
	}
}
