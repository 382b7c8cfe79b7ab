// Package config handles the navbuild tool configuration file.
package config

import (
	"fmt"

	"github.com/gorustyt/navbuild/logger"
	"github.com/gorustyt/navbuild/navbuild"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "navbuild.yaml"

// Output formats.
const (
	FormatObj       = "obj"
	FormatDetailObj = "detail-obj"
	FormatBin       = "bin"
	FormatProto     = "proto"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatObj, FormatDetailObj, FormatBin, FormatProto}

// File holds all tool settings.
type File struct {
	Build    navbuild.Config `yaml:"build"`
	Pipeline PipelineConfig  `yaml:"pipeline"`
	Input    InputConfig     `yaml:"input"`
	Output   OutputConfig    `yaml:"output"`
	Log      LogConfig       `yaml:"log"`
	Metrics  MetricsConfig   `yaml:"metrics"`
}

// PipelineConfig holds the optional build passes.
type PipelineConfig struct {
	MedianFilter       bool                  `yaml:"median_filter"`
	FlagMergeThreshold int                   `yaml:"flag_merge_threshold"`
	Areas              []navbuild.AreaVolume `yaml:"areas,omitempty"`
}

// InputConfig describes how the source geometry is read.
type InputConfig struct {
	Path  string  `yaml:"path"`
	ZUp   bool    `yaml:"z_up"`
	Scale float64 `yaml:"scale"`
}

// OutputConfig describes where the navigation mesh is written. Format is one
// of Formats; ZUp converts obj output back to Z-up space.
type OutputConfig struct {
	Path         string  `yaml:"path"`
	Format       string  `yaml:"format"`
	ZUp          bool    `yaml:"z_up"`
	WeldDistance float64 `yaml:"weld_distance"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level   string            `yaml:"level"`
	Console bool              `yaml:"console"`
	File    logger.FileConfig `yaml:"file"`
}

// MetricsConfig holds the metrics endpoint used by watch.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a File with the reference build settings.
func Default() *File {
	return &File{
		Build: navbuild.DefaultConfig(),
		Pipeline: PipelineConfig{
			FlagMergeThreshold: 1,
		},
		Input: InputConfig{
			Scale: 1,
		},
		Output: OutputConfig{
			Path:         "navmesh.obj",
			Format:       FormatDetailObj,
			WeldDistance: 1e-5,
		},
		Log: LogConfig{
			Level:   "info",
			Console: true,
			File:    logger.DefaultFileConfig(""),
		},
	}
}

// Validate checks the settings that the build does not check itself.
func (f *File) Validate() error {
	if err := f.Build.Validate(); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if f.Pipeline.FlagMergeThreshold < 0 {
		return fmt.Errorf("pipeline: flag_merge_threshold must not be negative, got %d", f.Pipeline.FlagMergeThreshold)
	}
	for i, vol := range f.Pipeline.Areas {
		if err := vol.Validate(); err != nil {
			return fmt.Errorf("pipeline: areas[%d]: %w", i, err)
		}
	}
	if !(f.Input.Scale > 0) {
		return fmt.Errorf("input: scale must be positive, got %g", f.Input.Scale)
	}
	if !validFormat(f.Output.Format) {
		return fmt.Errorf("output: unknown format %q (want one of %v)", f.Output.Format, Formats)
	}
	if f.Output.WeldDistance < 0 {
		return fmt.Errorf("output: weld_distance must not be negative, got %g", f.Output.WeldDistance)
	}
	if _, err := logger.ParseLevel(f.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// BuilderOptions returns the navbuild options for the pipeline section.
func (f *File) BuilderOptions() []navbuild.Option {
	return []navbuild.Option{
		navbuild.WithMedianFilter(f.Pipeline.MedianFilter),
		navbuild.WithFlagMergeThreshold(f.Pipeline.FlagMergeThreshold),
		navbuild.WithAreaVolumes(f.Pipeline.Areas...),
	}
}

// LoggerOptions returns the logger settings for the log section.
func (f *File) LoggerOptions() logger.Options {
	return logger.Options{
		Level:   f.Log.Level,
		Console: f.Log.Console,
		File:    f.Log.File,
	}
}

func validFormat(format string) bool {
	for _, known := range Formats {
		if format == known {
			return true
		}
	}
	return false
}
