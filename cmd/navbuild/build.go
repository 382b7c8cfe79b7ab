package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gorustyt/navbuild/config"
	"github.com/gorustyt/navbuild/geom"
	"github.com/gorustyt/navbuild/navbuild"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Input     string `short:"i" help:"Input OBJ mesh (overrides input.path)"`
	Output    string `short:"o" help:"Output file (overrides output.path)"`
	Format    string `help:"Output format: obj, detail-obj, bin or proto (overrides output.format)"`
	Partition string `help:"Region partitioning: watershed, monotone or layers (overrides build.partition)"`
	ZUp       bool   `name:"zup" help:"Treat the input as Z-up and write Z-up output"`
}

func (b *BuildCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if err := b.apply(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	builder := navbuild.NewBuilder(append(cfg.BuilderOptions(), navbuild.WithLogger(log))...)
	return runBuild(cfg, builder, log)
}

// apply overrides config values with the flags that were set.
func (b *BuildCmd) apply(cfg *config.File) error {
	if b.Input != "" {
		cfg.Input.Path = b.Input
	}
	if b.Output != "" {
		cfg.Output.Path = b.Output
	}
	if b.Format != "" {
		cfg.Output.Format = b.Format
	}
	if b.Partition != "" {
		p, err := navbuild.ParsePartition(b.Partition)
		if err != nil {
			return err
		}
		cfg.Build.Partition = p
	}
	if b.ZUp {
		cfg.Input.ZUp = true
		cfg.Output.ZUp = true
	}
	return nil
}

// runBuild loads the input, builds it and writes the configured output.
func runBuild(cfg *config.File, builder *navbuild.Builder, log *zap.Logger) error {
	if cfg.Input.Path == "" {
		return errors.New("no input mesh: pass -i or set input.path")
	}
	mesh, err := geom.LoadObj(cfg.Input.Path)
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}
	if cfg.Input.Scale != 1 {
		mesh.Scale(cfg.Input.Scale)
	}
	if cfg.Input.ZUp {
		mesh.ConvertZUp()
	}
	log.Info("input loaded",
		zap.String("path", cfg.Input.Path),
		zap.Int("vertices", mesh.VertCount()),
		zap.Int("triangles", mesh.TriCount()))

	res, err := builder.Build(cfg.Build, mesh.InputMesh())
	defer func() { _ = res.Release() }()
	if err != nil {
		return fmt.Errorf("build %s: %w", cfg.Input.Path, err)
	}

	if err := writeOutput(res, cfg.Output); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info("navigation mesh written",
		zap.String("build_id", res.BuildID),
		zap.String("path", cfg.Output.Path),
		zap.String("format", cfg.Output.Format),
		zap.Int("polygons", res.PolyMesh.Npolys),
		zap.Int("detail_triangles", res.DetailMesh.Ntris))
	return nil
}
