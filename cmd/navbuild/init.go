package main

import (
	"fmt"
	"os"

	"github.com/gorustyt/navbuild/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Globals) error {
	path := g.Config
	if path == "" {
		path = config.DefaultPath
	}
	return runInit(path, i.Force)
}

func runInit(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Default().SaveTo(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("Wrote default configuration to %s\n", path)
	return nil
}
