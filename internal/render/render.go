// Package render turns a written map into a PDF with the DITA Open Toolkit.
package render

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

// PluginDir is the directory, inside the output directory, that receives the
// PDF customization.
const PluginDir = "pdf-custom"

//go:embed plugin
var plugin embed.FS

var (
	ErrNotInstalled = errors.New("dita command not found")
	ErrNoPDF        = errors.New("rendering produced no pdf")
)

// Renderer runs the dita command on a map.
type Renderer struct {
	Command string // dita executable
	PDFName string // relative names are placed next to the map
	Log     *slog.Logger
}

func New(command, pdfName string, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{Command: command, PDFName: pdfName, Log: log}
}

// Render produces a PDF from mapPath and returns its location.
func (r *Renderer) Render(ctx context.Context, mapPath string) (string, error) {
	log := r.Log.With("map", mapPath)
	if _, err := os.Stat(mapPath); err != nil {
		return "", fmt.Errorf("stat map: %w", err)
	}

	version, err := r.Version(ctx)
	if err != nil {
		return "", err
	}
	log.Info("using dita-ot", "version", version)

	dir := filepath.Dir(mapPath)
	if err := WritePlugin(dir); err != nil {
		return "", err
	}

	outDir := filepath.Join(dir, "out")
	if err := os.RemoveAll(outDir); err != nil {
		return "", fmt.Errorf("clear render output: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create render output: %w", err)
	}

	args := []string{
		"-i", mapPath,
		"-f", "pdf",
		"-o", outDir,
		"-Dargs.rellinks=none",
		"-Dpdf.formatter=fop",
	}
	log.Info("running dita-ot", "command", r.Command, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.Command, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run dita: %w: %s", err, tail(output.String(), 20))
	}
	log.Debug("dita-ot finished", "output", tail(output.String(), 20))

	pdfs, err := filepath.Glob(filepath.Join(outDir, "*.pdf"))
	if err != nil {
		return "", fmt.Errorf("find pdf: %w", err)
	}
	if len(pdfs) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoPDF, outDir)
	}
	slices.Sort(pdfs)

	dest := r.PDFName
	if dest == "" {
		dest = filepath.Base(pdfs[0])
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(dir, dest)
	}
	if err := os.Rename(pdfs[0], dest); err != nil {
		return "", fmt.Errorf("move pdf: %w", err)
	}
	log.Info("pdf generated", "path", dest)
	return dest, nil
}

// Version checks that the dita command runs and returns what it reports.
func (r *Renderer) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, r.Command, "--version").Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotInstalled, r.Command)
		}
		return "", fmt.Errorf("check dita version: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// WritePlugin writes the PDF customization plugin under dir/PluginDir.
func WritePlugin(dir string) error {
	root := filepath.Join(dir, PluginDir)
	err := fs.WalkDir(plugin, "plugin", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, "plugin"), "/")
		target := filepath.Join(root, filepath.FromSlash(rel))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := plugin.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	if err != nil {
		return fmt.Errorf("write pdf plugin: %w", err)
	}
	return nil
}

func tail(s string, lines int) string {
	parts := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(parts) > lines {
		parts = parts[len(parts)-lines:]
	}
	return strings.Join(parts, "\n")
}
