package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/philipparndt/stlfaces/pkg/loops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var loopsCmd = &cobra.Command{
	Use:   "loops [graph.yaml]",
	Short: "Find all loops in a directed graph",
	Long: `Read a YAML map from node to successor list and print every loop found.

Example input:
  a: [b]
  b: [c, a]
  c: [a]`,
	Args: cobra.ExactArgs(1),
	RunE: runLoops,
}

func init() {
	rootCmd.AddCommand(loopsCmd)
}

// readGraph parses a YAML adjacency map
func readGraph(path string) (*loops.Graph[string], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var adjacency map[string][]string
	if err := yaml.Unmarshal(data, &adjacency); err != nil {
		return nil, fmt.Errorf("parsing graph %s: %w", path, err)
	}
	return loops.FromMap(adjacency), nil
}

func runLoops(cmd *cobra.Command, args []string) error {
	g, err := readGraph(args[0])
	if err != nil {
		return err
	}

	found, err := loops.FindAllLoops(g,
		loops.WithMaxSteps(cfg.Loops.MaxSteps),
		loops.WithContext(cmd.Context()),
		loops.WithLogger(logger))
	if err != nil && !errors.Is(err, loops.ErrBudgetExceeded) {
		return err
	}

	fmt.Printf("Loops in %s (%d nodes, %d edges)\n", args[0], g.Len(), g.EdgeCount())
	fmt.Println("====================")
	for i, loop := range found {
		fmt.Printf("%3d: %s\n", i+1, strings.Join(loop, " -> "))
	}
	if len(found) == 0 {
		fmt.Println("no loops")
	}

	// partial results are still printed when the budget runs out
	return err
}
