package main

import (
	"fmt"

	"github.com/philipparndt/stlfaces/pkg/analysis"
	"github.com/philipparndt/stlfaces/pkg/mesh"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	triCount      int
	triLargest    bool
	triSmallest   bool
	triUnassigned bool
)

var trianglesCmd = &cobra.Command{
	Use:   "triangles [file]",
	Short: "Analyze triangles of the imported mesh",
	Long:  "Display area, perimeter, surface and vertex positions of the deduplicated triangles.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTriangles,
}

func init() {
	rootCmd.AddCommand(trianglesCmd)

	trianglesCmd.Flags().IntVarP(&triCount, "count", "n", 10, "Number of triangles to display")
	trianglesCmd.Flags().BoolVarP(&triLargest, "largest", "l", false, "Show largest triangles by area")
	trianglesCmd.Flags().BoolVarP(&triSmallest, "smallest", "s", false, "Show smallest triangles by area")
	trianglesCmd.Flags().BoolVarP(&triUnassigned, "unassigned", "u", false, "Only show triangles without a surface")
}

func runTriangles(cmd *cobra.Command, args []string) error {
	_, res, err := loadMesh(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	triangles := analysis.Triangles(res)
	if triUnassigned {
		triangles = lo.Filter(triangles, func(t analysis.TriangleInfo, _ int) bool {
			return t.Surface == mesh.NoSurface
		})
	}

	title := "First %d Triangles"
	switch {
	case triLargest:
		analysis.SortTrianglesByArea(triangles, false)
		title = "Top %d Largest Triangles"
	case triSmallest:
		analysis.SortTrianglesByArea(triangles, true)
		title = "Top %d Smallest Triangles"
	}

	shown := min(triCount, len(triangles))
	fmt.Printf(title+"\n", shown)
	fmt.Println("====================")
	fmt.Printf("Total triangles: %d\n", len(triangles))
	fmt.Printf("Degenerate: %d\n\n", lo.CountBy(triangles, func(t analysis.TriangleInfo) bool {
		return t.Degenerate
	}))

	for _, tri := range triangles[:shown] {
		fmt.Printf("Triangle #%d:\n", tri.Index)
		fmt.Printf("  Area: %.6f square units\n", tri.Area)
		fmt.Printf("  Perimeter: %.6f units\n", tri.Perimeter)
		if tri.Surface == mesh.NoSurface {
			fmt.Println("  Surface: none")
		} else {
			fmt.Printf("  Surface: %d\n", tri.Surface)
		}
		fmt.Printf("  Vertices: %s, %s, %s\n\n",
			analysis.FormatVector(tri.Vertices[0]),
			analysis.FormatVector(tri.Vertices[1]),
			analysis.FormatVector(tri.Vertices[2]))
	}
	return nil
}
