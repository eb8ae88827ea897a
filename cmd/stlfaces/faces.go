package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/philipparndt/stlfaces/pkg/analysis"
	"github.com/philipparndt/stlfaces/pkg/mesh"
	"github.com/philipparndt/stlfaces/pkg/watcher"
	"github.com/spf13/cobra"
)

var (
	facesCount int
	facesWatch bool
)

var facesCmd = &cobra.Command{
	Use:   "faces [file]",
	Short: "List the planar surfaces of a mesh",
	Long:  "Group triangles into planar surfaces and show each plane with its triangle count, area and outlines.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFaces,
}

func init() {
	rootCmd.AddCommand(facesCmd)

	facesCmd.Flags().IntVarP(&facesCount, "count", "n", 20, "Number of surfaces to display, largest first")
	facesCmd.Flags().BoolVarP(&facesWatch, "watch", "w", false, "Re-run when the file or its OpenSCAD dependencies change")
}

func runFaces(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	filename := args[0]

	if err := printFaces(ctx, filename); err != nil {
		return err
	}
	if !facesWatch {
		return nil
	}

	fw, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return err
	}
	defer fw.Close()

	var reload func(string)
	reload = func(string) {
		if err := printFaces(ctx, filename); err != nil {
			logger.Error("reload failed", "file", filename, "error", err)
		}
		// the set of included files may have changed
		if err := watchSources(fw, filename, reload); err != nil {
			logger.Error("rewatch failed", "file", filename, "error", err)
		}
	}
	if err := watchSources(fw, filename, reload); err != nil {
		return err
	}

	logger.Info("watching for changes", "files", fw.Watched())
	if err := fw.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchSources replaces the watched files with filename and its current
// OpenSCAD dependencies.
func watchSources(fw *watcher.FileWatcher, filename string, callback func(string)) error {
	files, err := sources(filename)
	if err != nil {
		return err
	}
	if err := fw.RemoveAll(); err != nil {
		return err
	}
	return fw.Watch(files, callback)
}

func printFaces(ctx context.Context, filename string) error {
	_, res, err := loadMesh(ctx, filename)
	if err != nil {
		return err
	}

	report := analysis.AnalyzeMesh(res)
	surfaces := analysis.LargestSurfaces(report, facesCount)

	fmt.Printf("Planar Surfaces (showing %d of %d)\n", len(surfaces), report.SurfaceCount)
	fmt.Println("====================")
	fmt.Printf("%-6s %-10s %-14s %-35s %-35s %-8s\n", "ID", "Triangles", "Area", "Normal", "Origin", "Loops")
	for _, s := range surfaces {
		fmt.Printf("%-6d %-10d %-14.6f %-35s %-35s %-8d\n",
			s.ID, s.Triangles, s.Area,
			analysis.FormatVector(s.Normal), analysis.FormatVector(s.Origin), s.Outlines)
	}

	if report.Unassigned > 0 {
		fmt.Printf("\nUnassigned triangles: %d\n", report.Unassigned)
	}

	for _, s := range surfaces {
		printOutlines(res, res.Surfaces[s.ID])
	}
	return nil
}

func printOutlines(res *mesh.Result, s mesh.Surface) {
	if len(s.Outlines) == 0 {
		return
	}
	fmt.Printf("\nSurface %d outlines:\n", s.ID)
	for i, loop := range s.Outlines {
		fmt.Printf("  Loop %d (%d points):", i, len(loop))
		for _, p := range loop {
			fmt.Printf(" %s", analysis.FormatVector(res.Points[p]))
		}
		fmt.Println()
	}
}
