package main

import (
	"fmt"
	"math"

	"github.com/philipparndt/stlfaces/pkg/analysis"
	"github.com/spf13/cobra"
)

const degToRad = math.Pi / 180

var (
	edgesCount     int
	edgesLongest   bool
	edgesShortest  bool
	edgesSharp     float64
	edgesMinLength float64
	edgesMaxLength float64
)

var edgesCmd = &cobra.Command{
	Use:   "edges [file]",
	Short: "Analyze the deduplicated edges of a mesh",
	Long:  "List edges with their bending angles, including longest, shortest, sharp edges or edges within a specific length range.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdges,
}

func init() {
	rootCmd.AddCommand(edgesCmd)

	edgesCmd.Flags().IntVarP(&edgesCount, "count", "n", 10, "Number of edges to display")
	edgesCmd.Flags().BoolVarP(&edgesLongest, "longest", "l", false, "Show longest edges")
	edgesCmd.Flags().BoolVarP(&edgesShortest, "shortest", "s", false, "Show shortest edges")
	edgesCmd.Flags().Float64Var(&edgesSharp, "sharp", 0.0, "Show edges bending by at least this many degrees")
	edgesCmd.Flags().Float64Var(&edgesMinLength, "min", 0.0, "Minimum edge length filter")
	edgesCmd.Flags().Float64Var(&edgesMaxLength, "max", 0.0, "Maximum edge length filter")
}

func runEdges(cmd *cobra.Command, args []string) error {
	_, res, err := loadMesh(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	report := analysis.AnalyzeMesh(res)

	var edges []analysis.EdgeInfo
	var title string

	switch {
	case edgesLongest:
		edges = analysis.FindLongestEdges(report, edgesCount)
		title = fmt.Sprintf("Top %d Longest Edges", len(edges))
	case edgesShortest:
		edges = analysis.FindShortestEdges(report, edgesCount)
		title = fmt.Sprintf("Top %d Shortest Edges", len(edges))
	case edgesSharp > 0:
		edges = analysis.SharpEdges(report, edgesSharp*degToRad)
		title = fmt.Sprintf("Edges bending at least %.2f° (found %d)", edgesSharp, len(edges))
	case edgesMaxLength > 0:
		edges = analysis.FindEdgesByLength(report, edgesMinLength, edgesMaxLength)
		title = fmt.Sprintf("Edges between %.6f and %.6f units (found %d)", edgesMinLength, edgesMaxLength, len(edges))
	default:
		edges = report.AllEdges
		title = fmt.Sprintf("All Edges (showing first %d of %d)", min(edgesCount, len(edges)), len(edges))
	}
	if len(edges) > edgesCount {
		edges = edges[:edgesCount]
	}

	fmt.Println(title)
	fmt.Println("====================")
	fmt.Printf("Total edges in mesh: %d\n", report.EdgeCount)
	fmt.Printf("Min edge length: %.6f units\n", report.MinEdgeLength)
	fmt.Printf("Max edge length: %.6f units\n", report.MaxEdgeLength)
	fmt.Printf("Avg edge length: %.6f units\n\n", report.AvgEdgeLength)

	if len(edges) == 0 {
		return nil
	}

	fmt.Printf("%-6s %-35s %-35s %-12s %-12s %s\n", "Index", "Start", "End", "Length", "Bending", "Kind")
	for _, e := range edges {
		fmt.Printf("%-6d %-35s %-35s %-12.6f %-12s %s\n",
			e.Index, analysis.FormatVector(e.Start), analysis.FormatVector(e.End),
			e.Length, analysis.FormatAngle(e.Bending), e.Kind)
	}
	return nil
}
