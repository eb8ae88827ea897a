package main

import (
	"fmt"

	"github.com/philipparndt/stlfaces/pkg/analysis"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about an STL file",
	Long:  "Show dimensions, facet statistics and the topology of the imported mesh.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]

	model, res, err := loadMesh(cmd.Context(), filename)
	if err != nil {
		return err
	}

	facets := analysis.AnalyzeModel(model)
	report := analysis.AnalyzeMesh(res)

	fmt.Println("STL File Information")
	fmt.Println("====================")
	if model.Name != "" {
		fmt.Printf("Name: %s\n", model.Name)
	}
	fmt.Printf("File: %s\n\n", filename)

	fmt.Println("Model Statistics:")
	fmt.Printf("  Facets: %d\n", facets.TriangleCount)
	fmt.Printf("  Surface Area: %.6f square units\n", facets.SurfaceArea)
	fmt.Printf("  Volume: %.6f cubic units\n", facets.Volume)
	fmt.Printf("  Weight (PLA, 100%%): %.2f g\n\n", facets.WeightPLA100)

	fmt.Println("Bounding Box:")
	fmt.Printf("  Min: %s\n", analysis.FormatVector(facets.BoundingBox.Min))
	fmt.Printf("  Max: %s\n", analysis.FormatVector(facets.BoundingBox.Max))
	fmt.Printf("  Center: %s\n", analysis.FormatVector(facets.BoundingBox.Center()))
	fmt.Printf("  Size: %s\n\n", analysis.FormatVector(facets.Dimensions))

	fmt.Println("Topology:")
	fmt.Printf("  Points: %d (merge distance %g)\n", report.PointCount, res.Precision)
	fmt.Printf("  Triangles: %d\n", report.TriangleCount)
	fmt.Printf("  Edges: %d (boundary %d, non-manifold %d)\n", report.EdgeCount, report.BoundaryEdges, report.NonManifold)
	fmt.Printf("  Surfaces: %d (unassigned triangles %d)\n", report.SurfaceCount, report.Unassigned)
	fmt.Printf("  Closed: %t\n", report.Closed)
	fmt.Printf("  Euler characteristic: %d\n\n", report.Euler)

	fmt.Println("Edge Lengths:")
	fmt.Printf("  Minimum: %.6f units\n", report.MinEdgeLength)
	fmt.Printf("  Maximum: %.6f units\n", report.MaxEdgeLength)
	fmt.Printf("  Average: %.6f units\n", report.AvgEdgeLength)

	stats := res.Stats
	if stats.Collapsed+stats.Degenerate+stats.FailedFits+stats.TruncatedOutlines > 0 {
		fmt.Println("\nWarnings:")
		fmt.Printf("  Collapsed facets: %d\n", stats.Collapsed)
		fmt.Printf("  Degenerate triangles: %d\n", stats.Degenerate)
		fmt.Printf("  Failed plane fits: %d\n", stats.FailedFits)
		fmt.Printf("  Truncated outlines: %d\n", stats.TruncatedOutlines)
	}

	return nil
}
