package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spyplot/pkg/errors"
	"github.com/matzehuels/spyplot/pkg/pipeline"
)

// config is the on-disk TOML configuration for a rendering run.
//
//	names      = ["A", "A_min", "A_rec"]
//	source_dir = "npz"
//	dest_dir   = "graphics"
//
//	[style]
//	marker    = 4.0
//	dpi       = 300
//	size      = 6.0
//	precision = 0.0
type config struct {
	Names     []string    `toml:"names"`
	SourceDir string      `toml:"source_dir"`
	DestDir   string      `toml:"dest_dir"`
	Style     styleConfig `toml:"style"`
}

type styleConfig struct {
	Marker    float64 `toml:"marker"`
	DPI       float64 `toml:"dpi"`
	Size      float64 `toml:"size"`
	Precision float64 `toml:"precision"`
}

// loadConfig reads and decodes a TOML config file.
func loadConfig(path string) (config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	var cfg config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}

// options converts the config to pipeline options. Zero values fall through
// to the pipeline defaults.
func (c config) options() pipeline.Options {
	return pipeline.Options{
		Names:     c.Names,
		SourceDir: c.SourceDir,
		DestDir:   c.DestDir,
		Marker:    c.Style.Marker,
		DPI:       c.Style.DPI,
		Size:      c.Style.Size,
		Precision: c.Style.Precision,
	}
}
