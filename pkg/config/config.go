// Package config loads optional run configuration from a TOML file,
// falling back to conventional defaults for Instagram-style exports.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config controls the parts of the pipeline that vary between export layouts.
type Config struct {
	// MediaRelPath locates the media directory beneath the export root.
	MediaRelPath string `toml:"media_rel_path"`

	// DocExtensions are the markup document extensions discovered when
	// scanning a directory.
	DocExtensions []string `toml:"doc_extensions"`

	// ImageExtensions are the link-target extensions treated as image
	// references.
	ImageExtensions []string `toml:"image_extensions"`

	// BackupSuffix names the transient backup sibling created around each
	// metadata update.
	BackupSuffix string `toml:"backup_suffix"`

	// SkipVerify disables the post-write read-back check.
	SkipVerify bool `toml:"skip_verify"`
}

// Default returns the conventional configuration.
func Default() Config {
	return Config{
		MediaRelPath:    "media/other",
		DocExtensions:   []string{".html", ".htm"},
		ImageExtensions: []string{".jpg", ".jpeg", ".png", ".heic"},
		BackupSuffix:    ".backup",
	}
}

// Load reads a TOML config file over the defaults; fields absent from the
// file keep their default values. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
