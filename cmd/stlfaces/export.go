package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/philipparndt/stlfaces/pkg/export"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export surface outlines as DXF",
	Long:  "Write every surface outline to its own DXF layer and the open edges to OPEN_EDGES.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: input name with .dxf)")
}

func runExport(cmd *cobra.Command, args []string) error {
	filename := args[0]

	out := exportOutput
	if out == "" {
		out = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".dxf"
	}

	_, res, err := loadMesh(cmd.Context(), filename)
	if err != nil {
		return err
	}

	if err := export.WriteDXF(res, out); err != nil {
		return err
	}

	fmt.Printf("Wrote %d surfaces to %s\n", len(res.Surfaces), out)
	return nil
}
