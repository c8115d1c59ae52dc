package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// Corpus layout
	SourceDir string
	OutputDir string
	TOCFile   string // relative to SourceDir unless absolute
	MapFile   string // written inside OutputDir

	// Link classification: absolute URLs on this site are treated as corpus links.
	SiteURL string

	// Title override; empty falls back to the outline.
	Title string

	// Translation workers
	Workers int

	// Outputs
	WriteReport bool
	WriteLog    bool

	// Rendering
	DitaCommand string
	PDFName     string
	RenderPDF   bool

	// Source parsing
	PDFFallbackPdftotext bool

	// Job service
	Port         string
	APIKey       string
	MaxQueueSize int
	JobTTL       time.Duration
}

func Load() Config {
	cfg := Config{
		SourceDir: envOr("DITAGEN_SOURCE_DIR", "md"),
		OutputDir: envOr("DITAGEN_OUTPUT_DIR", "dita"),
		TOCFile:   envOr("DITAGEN_TOC", "toc.md"),
		MapFile:   envOr("DITAGEN_MAP", "userguide.ditamap"),

		SiteURL: os.Getenv("DITAGEN_SITE_URL"),
		Title:   os.Getenv("DITAGEN_TITLE"),

		Workers: envInt("DITAGEN_WORKERS", 4),

		WriteReport: envBool("DITAGEN_REPORT", true),
		WriteLog:    envBool("DITAGEN_LOG_FILE", true),

		DitaCommand: envOr("DITAGEN_DITA_CMD", "dita"),
		PDFName:     envOr("DITAGEN_PDF_NAME", "userguide.pdf"),
		RenderPDF:   envBool("DITAGEN_RENDER_PDF", false),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		Port:         envOr("PORT", "8090"),
		APIKey:       os.Getenv("DITAGEN_API_KEY"),
		MaxQueueSize: envInt("DITAGEN_MAX_QUEUE", 16),
		JobTTL:       envDuration("DITAGEN_JOB_TTL", 1*time.Hour),
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 16
	}
	if c.JobTTL <= 0 {
		c.JobTTL = 1 * time.Hour
	}
	if c.MapFile == "" {
		c.MapFile = "userguide.ditamap"
	}
	if c.TOCFile == "" {
		c.TOCFile = "toc.md"
	}
	if c.DitaCommand == "" {
		c.DitaCommand = "dita"
	}
}

// Validate checks values that do not depend on the file system.
func (c Config) Validate() error {
	if c.SourceDir == "" {
		return ErrNoSourceDir
	}
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.SiteURL != "" {
		u, err := url.Parse(c.SiteURL)
		if err != nil || u.Host == "" {
			return ErrInvalidSiteURL
		}
	}
	return nil
}

// ValidateInputs checks that the corpus root and the outline exist. Both
// failures are fatal for a run.
func (c Config) ValidateInputs() error {
	info, err := os.Stat(c.SourceDir)
	if err != nil || !info.IsDir() {
		return &InputError{Path: c.SourceDir, Err: ErrSourceMissing}
	}
	if _, err := os.Stat(c.TOCPath()); err != nil {
		return &InputError{Path: c.TOCPath(), Err: ErrOutlineMissing}
	}
	return nil
}

// ValidateServer checks the settings the job service needs on top of Validate.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}

// TOCPath is the outline location.
func (c Config) TOCPath() string {
	if filepath.IsAbs(c.TOCFile) {
		return c.TOCFile
	}
	return filepath.Join(c.SourceDir, c.TOCFile)
}

// MapPath is where the map is written.
func (c Config) MapPath() string {
	return filepath.Join(c.OutputDir, c.MapFile)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
