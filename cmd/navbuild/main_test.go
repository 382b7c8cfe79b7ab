package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gorustyt/navbuild/common/message"
	"github.com/gorustyt/navbuild/config"
	"github.com/gorustyt/navbuild/debug_utils"
	"github.com/gorustyt/navbuild/geom"
	"github.com/gorustyt/navbuild/navbuild"
)

const groundObj = `o ground
v -10 0 -10
v 10 0 -10
v 10 0 10
v -10 0 10
f 1 4 3 2
`

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestCLIParses(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("navbuild"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"-c", "nav.yaml", "build", "-i", "level.obj", "-o", "out.bin", "--format", "bin", "--partition", "layers", "--zup"})
	require.NoError(t, err)
	assert.Equal(t, "build", ctx.Command())
	assert.Equal(t, "nav.yaml", cli.Config)
	assert.Equal(t, "level.obj", cli.Build.Input)
	assert.Equal(t, "out.bin", cli.Build.Output)
	assert.Equal(t, "bin", cli.Build.Format)
	assert.Equal(t, "layers", cli.Build.Partition)
	assert.True(t, cli.Build.ZUp)

	ctx, err = parser.Parse([]string{"watch", "-i", "level.obj", "--metrics-addr", ":9090"})
	require.NoError(t, err)
	assert.Equal(t, "watch", ctx.Command())
	assert.Equal(t, "level.obj", cli.Watch.Build.Input)
	assert.Equal(t, ":9090", cli.Watch.MetricsAddr)
	assert.Equal(t, 500*time.Millisecond, cli.Watch.Debounce)

	ctx, err = parser.Parse([]string{"init", "--force"})
	require.NoError(t, err)
	assert.Equal(t, "init", ctx.Command())
	assert.True(t, cli.Init.Force)
}

func TestRunBuildWritesEachFormat(t *testing.T) {
	dir := t.TempDir()
	input := writeTemp(t, dir, "ground.obj", groundObj)

	for _, format := range config.Formats {
		t.Run(format, func(t *testing.T) {
			cfg := config.Default()
			cfg.Input.Path = input
			cfg.Output.Path = filepath.Join(dir, "out", "navmesh."+format)
			cfg.Output.Format = format
			require.NoError(t, cfg.Validate())
			require.NoError(t, runBuild(cfg, navbuild.NewBuilder(), zap.NewNop()))

			data, err := os.ReadFile(cfg.Output.Path)
			require.NoError(t, err)
			switch format {
			case config.FormatObj, config.FormatDetailObj:
				m, err := geom.ParseObj(bytes.NewReader(data))
				require.NoError(t, err)
				assert.Greater(t, m.TriCount(), 0)
			case config.FormatBin:
				r := bytes.NewReader(data)
				pmesh, err := debug_utils.DuReadPolyMesh(r)
				require.NoError(t, err)
				assert.Greater(t, pmesh.Npolys, 0)
				dmesh, err := debug_utils.DuReadPolyMeshDetail(r)
				require.NoError(t, err)
				assert.Equal(t, pmesh.Npolys, dmesh.Nmeshes)
			case config.FormatProto:
				pmesh, dmesh, err := message.DecodeNavMesh(data)
				require.NoError(t, err)
				assert.Greater(t, pmesh.Npolys, 0)
				assert.Equal(t, pmesh.Npolys, dmesh.Nmeshes)
			}
		})
	}
}

func TestRunBuildZUpOutput(t *testing.T) {
	dir := t.TempDir()
	// The ground plane lies in the z = 0 plane of a Z-up scene.
	input := writeTemp(t, dir, "ground_zup.obj", `v -10 -10 0
v 10 -10 0
v 10 10 0
v -10 10 0
f 1 2 3 4
`)
	cfg := config.Default()
	cfg.Input.Path = input
	cfg.Input.ZUp = true
	cfg.Output.ZUp = true
	cfg.Output.Path = filepath.Join(dir, "navmesh.obj")
	require.NoError(t, runBuild(cfg, navbuild.NewBuilder(), zap.NewNop()))

	m, err := geom.LoadObj(cfg.Output.Path)
	require.NoError(t, err)
	require.Greater(t, m.VertCount(), 0)
	bmin, bmax := m.Bounds()
	assert.InDelta(t, bmin[2], bmax[2], 0.5, "heights end up on z again")
	assert.Greater(t, bmax[1]-bmin[1], 10.0, "the plane spans y")
}

func TestRunBuildFailures(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	err := runBuild(cfg, navbuild.NewBuilder(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input mesh")

	cfg.Input.Path = writeTemp(t, dir, "wall.obj", "v 0 0 0\nv 0 1 0\nv 0 0 1\nf 1 2 3\n")
	cfg.Output.Path = filepath.Join(dir, "never.obj")
	err = runBuild(cfg, navbuild.NewBuilder(), zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, navbuild.ErrDegenerateInput)
	assert.NoFileExists(t, cfg.Output.Path)

	cfg.Input.Path = filepath.Join(dir, "missing.obj")
	assert.Error(t, runBuild(cfg, navbuild.NewBuilder(), zap.NewNop()))
}

func TestBuildCmdRun(t *testing.T) {
	dir := t.TempDir()
	input := writeTemp(t, dir, "ground.obj", groundObj)
	cfgPath := writeTemp(t, dir, "navbuild.yaml", "log:\n  console: false\npipeline:\n  median_filter: true\n")
	out := filepath.Join(dir, "navmesh.pb")

	cmd := &BuildCmd{Input: input, Output: out, Format: config.FormatProto, Partition: "monotone"}
	require.NoError(t, cmd.Run(&Globals{Config: cfgPath}))
	assert.FileExists(t, out)

	bad := &BuildCmd{Input: input, Partition: "spiral"}
	assert.Error(t, bad.Run(&Globals{Config: cfgPath}))

	badFormat := &BuildCmd{Input: input, Format: "gltf"}
	err := badFormat.Run(&Globals{Config: cfgPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestBuildCmdApply(t *testing.T) {
	cfg := config.Default()
	cmd := &BuildCmd{Input: "in.obj", Output: "out.obj", Format: config.FormatObj, Partition: "layers", ZUp: true}
	require.NoError(t, cmd.apply(cfg))
	assert.Equal(t, "in.obj", cfg.Input.Path)
	assert.Equal(t, "out.obj", cfg.Output.Path)
	assert.Equal(t, config.FormatObj, cfg.Output.Format)
	assert.Equal(t, navbuild.PartitionLayers, cfg.Build.Partition)
	assert.True(t, cfg.Input.ZUp)
	assert.True(t, cfg.Output.ZUp)

	cfg = config.Default()
	require.NoError(t, (&BuildCmd{}).apply(cfg))
	assert.Equal(t, config.Default(), cfg, "unset flags keep config values")
}

func TestRunInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navbuild.yaml")
	require.NoError(t, runInit(path, false))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	err = runInit(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")
	require.NoError(t, runInit(path, true))
}

func TestFileWatcherDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "level.obj")
	var builds atomic.Int32
	done := make(chan struct{}, 4)
	fw, err := newFileWatcher([]string{input}, 50*time.Millisecond, func() {
		builds.Add(1)
		done <- struct{}{}
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, fw.dirs())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	go fw.run(ctx, events, errs)

	events <- fsnotify.Event{Name: filepath.Join(dir, "other.obj"), Op: fsnotify.Write}
	events <- fsnotify.Event{Name: input, Op: fsnotify.Write}
	events <- fsnotify.Event{Name: input, Op: fsnotify.Write}
	events <- fsnotify.Event{Name: input, Op: fsnotify.Chmod}
	errs <- assert.AnError

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("no rebuild after the quiet period")
	}
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), builds.Load(), "bursts collapse into one rebuild")

	events <- fsnotify.Event{Name: input, Op: fsnotify.Create}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("no rebuild after the second change")
	}
	assert.Equal(t, int32(2), builds.Load())
}

func TestFileWatcherRelevant(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "level.obj")
	fw, err := newFileWatcher([]string{input}, time.Millisecond, func() {}, zap.NewNop())
	require.NoError(t, err)

	assert.True(t, fw.relevant(fsnotify.Event{Name: input, Op: fsnotify.Write}))
	assert.True(t, fw.relevant(fsnotify.Event{Name: input, Op: fsnotify.Rename}))
	assert.False(t, fw.relevant(fsnotify.Event{Name: input, Op: fsnotify.Remove}))
	assert.False(t, fw.relevant(fsnotify.Event{Name: filepath.Join(dir, "x.obj"), Op: fsnotify.Write}))
}

func TestWatchedConfigPath(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.Equal(t, "custom.yaml", watchedConfigPath("custom.yaml"))
	assert.Equal(t, "", watchedConfigPath(""))
	require.NoError(t, os.WriteFile(config.DefaultPath, nil, 0o644))
	assert.Equal(t, config.DefaultPath, watchedConfigPath(""))
}
