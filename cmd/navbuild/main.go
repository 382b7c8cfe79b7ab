// Command navbuild builds navigation meshes from OBJ geometry.
package main

import (
	"fmt"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/gorustyt/navbuild/config"
	"github.com/gorustyt/navbuild/logger"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config  string `short:"c" help:"Configuration file path (default ./navbuild.yaml when present)"`
	Verbose bool   `short:"v" help:"Enable debug logging"`
}

// CLI is the command line of navbuild.
type CLI struct {
	Globals

	Build BuildCmd `cmd:"" help:"Build a navigation mesh from an OBJ file"`
	Init  InitCmd  `cmd:"" help:"Write the default configuration file"`
	Watch WatchCmd `cmd:"" help:"Rebuild the navigation mesh whenever the input or config changes"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("navbuild"),
		kong.Description("Builds a navigation polygon mesh and its detail mesh from triangle geometry."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// loadConfig reads the config file and applies the global flags.
func (g *Globals) loadConfig() (*config.File, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.File) (*zap.Logger, error) {
	log, err := logger.New(cfg.LoggerOptions())
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return log, nil
}
