package main

import (
	"fmt"

	"github.com/philipparndt/stlfaces/pkg/analysis"
	"github.com/philipparndt/stlfaces/pkg/geometry"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	point1X, point1Y, point1Z float64
	point2X, point2Y, point2Z float64
)

var measureCmd = &cobra.Command{
	Use:   "measure [file]",
	Short: "Measure distance between two points",
	Long: `Measure the straight-line distance between two 3D points.
Both points are snapped to the nearest merged mesh point and the planar
surfaces they share are listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runMeasure,
}

func init() {
	rootCmd.AddCommand(measureCmd)

	measureCmd.Flags().Float64Var(&point1X, "x1", 0.0, "X coordinate of first point")
	measureCmd.Flags().Float64Var(&point1Y, "y1", 0.0, "Y coordinate of first point")
	measureCmd.Flags().Float64Var(&point1Z, "z1", 0.0, "Z coordinate of first point")
	measureCmd.Flags().Float64Var(&point2X, "x2", 0.0, "X coordinate of second point")
	measureCmd.Flags().Float64Var(&point2Y, "y2", 0.0, "Y coordinate of second point")
	measureCmd.Flags().Float64Var(&point2Z, "z2", 0.0, "Z coordinate of second point")

	measureCmd.MarkFlagsRequiredTogether("x1", "y1", "z1", "x2", "y2", "z2")
}

func runMeasure(cmd *cobra.Command, args []string) error {
	_, res, err := loadMesh(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(res.Points) == 0 {
		return fmt.Errorf("%s contains no points", args[0])
	}

	p1 := geometry.NewVector3(point1X, point1Y, point1Z)
	p2 := geometry.NewVector3(point2X, point2Y, point2Z)
	i1 := analysis.NearestPoint(res, p1)
	i2 := analysis.NearestPoint(res, p2)

	fmt.Println("Point-to-Point Measurement")
	fmt.Println("==========================")

	for n, q := range []struct {
		pos geometry.Vector3
		idx int
	}{{p1, i1}, {p2, i2}} {
		fmt.Printf("\nPoint %d: %s\n", n+1, analysis.FormatVector(q.pos))
		fmt.Printf("  Nearest point #%d: %s (distance: %.6f)\n",
			q.idx, analysis.FormatVector(res.Points[q.idx]), q.pos.Distance(res.Points[q.idx]))
		fmt.Printf("  Surfaces: %v\n", analysis.SurfacesWithPoint(res, q.idx))
	}

	fmt.Printf("\nDirect distance: %.6f units\n", p1.Distance(p2))
	fmt.Printf("Distance between nearest points: %.6f units\n", res.Points[i1].Distance(res.Points[i2]))

	shared := lo.Intersect(analysis.SurfacesWithPoint(res, i1), analysis.SurfacesWithPoint(res, i2))
	if len(shared) > 0 {
		fmt.Printf("Shared surfaces: %v\n", shared)
	}
	return nil
}
