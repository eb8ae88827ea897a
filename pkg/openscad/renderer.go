// Package openscad renders .scad sources to STL through the openscad
// binary and resolves their use/include dependencies so callers can watch
// them.
package openscad

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrNotInstalled is returned when the openscad binary is not on PATH
var ErrNotInstalled = errors.New("openscad not found in PATH, install it from https://openscad.org/")

var dependencyRegex = regexp.MustCompile(`^\s*(use|include)\s*<([^>]+)>`)

// RenderError carries the output of a failed openscad run
type RenderError struct {
	File   string
	Stderr string
	Err    error
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("failed to render %s: %v", e.File, e.Err)
	if e.Stderr != "" {
		msg += "\n" + strings.TrimSpace(e.Stderr)
	}
	return msg
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Renderer handles OpenSCAD file rendering to STL
type Renderer struct {
	workDir string
	binary  string
	logger  *slog.Logger
}

// NewRenderer creates a new OpenSCAD renderer
func NewRenderer(workDir string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		workDir: workDir,
		binary:  "openscad",
		logger:  logger,
	}
}

func (r *Renderer) abs(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(r.workDir, file)
}

// RenderToSTL renders an OpenSCAD file to STL format
func (r *Renderer) RenderToSTL(ctx context.Context, scadFile, outputFile string) error {
	bin, err := exec.LookPath(r.binary)
	if err != nil {
		return ErrNotInstalled
	}

	cmd := exec.CommandContext(ctx, bin, "-o", outputFile, r.abs(scadFile))
	cmd.Dir = r.workDir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	r.logger.Info("rendering", "file", scadFile, "output", outputFile)

	if err := cmd.Run(); err != nil {
		return &RenderError{File: scadFile, Stderr: stderr.String(), Err: err}
	}

	r.logger.Info("rendered", "file", scadFile, "duration", time.Since(start))
	return nil
}

// RenderTemp renders scadFile into a temporary STL file. The caller removes
// the returned path.
func (r *Renderer) RenderTemp(ctx context.Context, scadFile string) (string, error) {
	out, err := os.CreateTemp("", "stlfaces-*.stl")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := out.Name()
	out.Close()

	if err := r.RenderToSTL(ctx, scadFile, path); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// ResolveDependencies finds all dependencies (use/include statements) in an OpenSCAD file.
// Returns absolute paths, starting with the file itself.
func (r *Renderer) ResolveDependencies(scadFile string) ([]string, error) {
	visited := make(map[string]bool)
	var deps []string

	stack := []string{r.abs(scadFile)}
	for len(stack) > 0 {
		file := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[file] {
			continue
		}
		visited[file] = true
		deps = append(deps, file)

		fileDeps, err := r.parseDependencies(file)
		if err != nil {
			return nil, err
		}
		for i := len(fileDeps) - 1; i >= 0; i-- {
			stack = append(stack, fileDeps[i])
		}
	}

	return deps, nil
}

func (r *Renderer) parseDependencies(scadFile string) ([]string, error) {
	file, err := os.Open(scadFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", scadFile, err)
	}
	defer file.Close()

	var deps []string
	scanner := bufio.NewScanner(file)
	scadDir := filepath.Dir(scadFile)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		if m := dependencyRegex.FindStringSubmatch(line); m != nil {
			deps = append(deps, r.resolveDepPath(m[2], scadDir))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", scadFile, err)
	}

	return deps, nil
}

// resolveDepPath resolves a dependency relative to the including file,
// falling back to the work directory
func (r *Renderer) resolveDepPath(depPath, currentDir string) string {
	if strings.HasPrefix(depPath, "./") || strings.HasPrefix(depPath, "../") {
		return filepath.Clean(filepath.Join(currentDir, depPath))
	}

	absPath := filepath.Join(currentDir, depPath)
	if _, err := os.Stat(absPath); err == nil {
		return filepath.Clean(absPath)
	}

	return filepath.Clean(filepath.Join(r.workDir, depPath))
}
