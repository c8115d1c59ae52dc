package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory, then the home directory.
const DefaultConfigFile = ".ditagen.yaml"

// File is the on-disk configuration. Zero values leave the loaded Config untouched.
type File struct {
	SourceDir   string `yaml:"source_dir"`
	OutputDir   string `yaml:"output_dir"`
	TOC         string `yaml:"toc"`
	Map         string `yaml:"map"`
	SiteURL     string `yaml:"site_url"`
	Title       string `yaml:"title"`
	Workers     int    `yaml:"workers"`
	Report      *bool  `yaml:"report"`
	LogFile     *bool  `yaml:"log_file"`
	DitaCommand string `yaml:"dita_command"`
	PDFName     string `yaml:"pdf_name"`
	RenderPDF   *bool  `yaml:"render_pdf"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindFile returns the config file to use: the explicit path if it exists,
// else DefaultConfigFile in the working or home directory, else "".
func FindFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Apply overlays the file's non-zero values onto cfg.
func (f *File) Apply(cfg *Config) {
	if f == nil {
		return
	}
	setString(&cfg.SourceDir, f.SourceDir)
	setString(&cfg.OutputDir, f.OutputDir)
	setString(&cfg.TOCFile, f.TOC)
	setString(&cfg.MapFile, f.Map)
	setString(&cfg.SiteURL, f.SiteURL)
	setString(&cfg.Title, f.Title)
	setString(&cfg.DitaCommand, f.DitaCommand)
	setString(&cfg.PDFName, f.PDFName)
	if f.Workers > 0 {
		cfg.Workers = f.Workers
	}
	if f.Report != nil {
		cfg.WriteReport = *f.Report
	}
	if f.LogFile != nil {
		cfg.WriteLog = *f.LogFile
	}
	if f.RenderPDF != nil {
		cfg.RenderPDF = *f.RenderPDF
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
