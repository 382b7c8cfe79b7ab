package navbuild

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gorustyt/navbuild/metrics"
	"github.com/gorustyt/navbuild/recast"
)

// cubeScene returns two unit cubes standing on a 20 by 20 ground plane.
func cubeScene() InputMesh {
	return InputMesh{
		Verts: []float64{
			1, 1, -1,
			1, -1, -1,
			1, 1, 1,
			1, -1, 1,
			-1, 1, -1,
			-1, -1, -1,
			-1, 1, 1,
			-1, -1, 1,
			-10, 0, 10,
			10, 0, 10,
			-10, 0, -10,
			10, 0, -10,
		},
		Tris: []int{
			4, 2, 0,
			2, 7, 3,
			6, 5, 7,
			1, 7, 5,
			0, 3, 1,
			4, 1, 5,
			4, 6, 2,
			2, 6, 7,
			6, 4, 5,
			1, 3, 7,
			0, 2, 3,
			4, 0, 1,
			9, 10, 8,
			9, 11, 10,
		},
	}
}

func requireMixFree(t *testing.T, res *Result, err error) {
	t.Helper()
	require.NotNil(t, res)
	if err == nil {
		require.NotNil(t, res.PolyMesh)
		require.NotNil(t, res.DetailMesh)
		assert.Empty(t, res.Report())
		assert.True(t, res.Succeeded())
		return
	}
	assert.Nil(t, res.PolyMesh)
	assert.Nil(t, res.DetailMesh)
	assert.NotEmpty(t, res.Report())
	assert.False(t, res.Succeeded())
}

func TestBuildCubeScene(t *testing.T) {
	res, err := Build(DefaultConfig(), cubeScene())
	require.NoError(t, err)
	requireMixFree(t, res, err)

	assert.Greater(t, res.PolyMesh.Nverts, 0)
	assert.Greater(t, res.PolyMesh.Npolys, 0)
	assert.Greater(t, res.DetailMesh.Ntris, 0)
	assert.Equal(t, res.PolyMesh.Npolys, res.DetailMesh.Nmeshes)
	assert.Equal(t, 67, res.Params.Width)
	assert.Equal(t, 67, res.Params.Height)
	assert.NotEmpty(t, res.BuildID)

	pmesh, dmesh := res.PolyMesh, res.DetailMesh
	require.NoError(t, res.Release())
	assert.Nil(t, res.PolyMesh)
	assert.Nil(t, res.DetailMesh)
	assert.Nil(t, pmesh.Verts)
	assert.Zero(t, pmesh.Npolys)
	assert.Nil(t, dmesh.Tris)
	assert.Zero(t, dmesh.Ntris)
	require.NoError(t, res.Release(), "release is idempotent")
}

func TestBuildIsDeterministic(t *testing.T) {
	first, err := Build(DefaultConfig(), cubeScene())
	require.NoError(t, err)
	defer first.Release()
	second, err := Build(DefaultConfig(), cubeScene())
	require.NoError(t, err)
	defer second.Release()

	assert.Equal(t, first.PolyMesh.Nverts, second.PolyMesh.Nverts)
	assert.Equal(t, first.PolyMesh.Npolys, second.PolyMesh.Npolys)
	assert.Equal(t, first.PolyMesh.Verts, second.PolyMesh.Verts)
	assert.Equal(t, first.DetailMesh.Ntris, second.DetailMesh.Ntris)
	assert.NotEqual(t, first.BuildID, second.BuildID)
}

func TestBuildEveryPartition(t *testing.T) {
	for _, method := range []Partition{PartitionWatershed, PartitionMonotone, PartitionLayers} {
		t.Run(method.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Partition = method
			res, err := Build(cfg, cubeScene())
			require.NoError(t, err)
			defer res.Release()
			requireMixFree(t, res, err)
			assert.Greater(t, res.PolyMesh.Npolys, 0)
			assert.Greater(t, res.DetailMesh.Ntris, 0)
		})
	}
}

func TestBuildNeverMixesOutcomes(t *testing.T) {
	configs := map[string]func(*Config){
		"default":        func(*Config) {},
		"coarse":         func(c *Config) { c.CellSize = 1; c.CellHeight = 0.5 },
		"no sampling":    func(c *Config) { c.DetailSampleDist = 0 },
		"huge agent":     func(c *Config) { c.AgentRadius = 12 },
		"triangles only": func(c *Config) { c.VertsPerPoly = 3 },
		"tessellated":    func(c *Config) { c.EdgeMaxLen = 1 },
	}
	for name, mutate := range configs {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			res, err := Build(cfg, cubeScene())
			requireMixFree(t, res, err)
			assert.NoError(t, res.Release())
			assert.Empty(t, res.Report())
		})
	}
}

func TestBuildDegenerateInput(t *testing.T) {
	// Every vertex shares x, so the grid has no width.
	mesh := InputMesh{
		Verts: []float64{
			2, 0, 0,
			2, 1, 0,
			2, 0, 5,
		},
		Tris: []int{0, 1, 2},
	}
	tk := newFakeToolkit("")
	res, err := NewBuilder(WithToolkit(tk)).Build(DefaultConfig(), mesh)
	require.Error(t, err)
	requireMixFree(t, res, err)
	assert.True(t, IsKind(err, KindDegenerateInput))
	assert.ErrorIs(t, err, ErrDegenerateInput)
	assert.Equal(t, "Object has a width or height of zero", res.Report())
	assert.Empty(t, tk.calls, "no artifact is allocated for a degenerate grid")
	assert.Empty(t, tk.released)
}

func TestReleaseAfterFailure(t *testing.T) {
	mesh := InputMesh{
		Verts: make([]float64, 9),
		Tris:  []int{0, 1, 2},
	}
	res, err := Build(DefaultConfig(), mesh)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.Report())

	assert.NotPanics(t, func() { assert.NoError(t, res.Release()) })
	assert.Empty(t, res.Report())

	var none *Result
	assert.NoError(t, none.Release())
	assert.Empty(t, none.Report())
}

func TestBuildInvalidInput(t *testing.T) {
	tk := newFakeToolkit("")
	b := NewBuilder(WithToolkit(tk))

	cfg := DefaultConfig()
	cfg.CellSize = 0
	res, err := b.Build(cfg, cubeScene())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidInput))
	assert.Equal(t, "Invalid build configuration", res.Report())

	bad := cubeScene()
	bad.Tris[0] = 99
	res, err = b.Build(DefaultConfig(), bad)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidInput))
	assert.Equal(t, "Invalid input mesh", res.Report())

	b = NewBuilder(WithToolkit(tk), WithAreaVolumes(AreaVolume{Verts: []float64{0, 0, 0}}))
	_, err = b.Build(DefaultConfig(), cubeScene())
	assert.True(t, IsKind(err, KindInvalidInput))

	assert.Empty(t, tk.calls, "validation runs before any stage")
}

func TestBuildStageFailures(t *testing.T) {
	tests := []struct {
		failAt    string
		partition Partition
		kind      ErrorKind
		report    string
		released  []string
		meshFreed bool
	}{
		{"heightfield", PartitionWatershed, KindAllocation, "Failed to create height field", []string{"hf"}, false},
		{"rasterize", PartitionWatershed, KindAllocation, "Failed to rasterize triangles", []string{"hf"}, false},
		{"compact", PartitionWatershed, KindAllocation, "Failed to create compact height field", []string{"chf", "hf"}, false},
		{"erode", PartitionWatershed, KindAllocation, "Failed to erode walkable area", []string{"hf", "chf"}, false},
		{"distance", PartitionWatershed, KindDistanceField, "Failed to build distance field", []string{"hf", "chf"}, false},
		{"regions", PartitionWatershed, KindRegionBuild, "Failed to build watershed regions", []string{"hf", "chf"}, false},
		{"monotone", PartitionMonotone, KindRegionBuild, "Failed to build monotone regions", []string{"hf", "chf"}, false},
		{"layers", PartitionLayers, KindRegionBuild, "Failed to build layer regions", []string{"hf", "chf"}, false},
		{"contours", PartitionWatershed, KindContourBuild, "Failed to build contours", []string{"hf", "cset", "chf"}, false},
		{"polymesh", PartitionWatershed, KindPolyMeshBuild, "Failed to build poly mesh", []string{"hf", "cset", "chf"}, true},
		{"detail", PartitionWatershed, KindDetailMeshBuild, "Failed to build poly mesh detail", []string{"hf", "cset", "chf"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.failAt, func(t *testing.T) {
			tk := newFakeToolkit(tt.failAt)
			cfg := DefaultConfig()
			cfg.Partition = tt.partition

			res, err := NewBuilder(WithToolkit(tk)).Build(cfg, cubeScene())
			require.Error(t, err)
			requireMixFree(t, res, err)
			assert.True(t, IsKind(err, tt.kind), "kind of %v", err)
			assert.Equal(t, tt.report, res.Report())
			assert.Equal(t, tt.released, tk.released, "artifacts are released newest first")

			if tt.meshFreed {
				require.NotNil(t, tk.pmesh)
				assert.Nil(t, tk.pmesh.Verts, "partial poly mesh is released")
			}
			if tt.failAt == "detail" {
				require.NotNil(t, tk.dmesh)
				assert.Nil(t, tk.dmesh.Tris, "partial detail mesh is released")
			}
		})
	}
}

func TestBuildReleasesTransientArtifactsOnSuccess(t *testing.T) {
	tk := newFakeToolkit("")
	res, err := NewBuilder(WithToolkit(tk)).Build(DefaultConfig(), cubeScene())
	require.NoError(t, err)
	requireMixFree(t, res, err)

	assert.Equal(t, []string{"hf", "cset", "chf"}, tk.released)
	assert.Same(t, tk.pmesh, res.PolyMesh)
	assert.Same(t, tk.dmesh, res.DetailMesh)
	assert.NotNil(t, res.PolyMesh.Verts, "final meshes stay with the caller")

	assert.Equal(t, []string{
		"heightfield", "rasterize",
		"filter_low_hanging", "filter_ledge", "filter_low_height",
		"compact", "erode", "distance", "regions",
		"contours", "polymesh", "detail",
	}, tk.calls)
	assert.Equal(t, defaultFlagMergeThreshold, tk.flagMergeThreshold)
}

func TestBuildOptionalAreaPasses(t *testing.T) {
	tk := newFakeToolkit("")
	vol := AreaVolume{Verts: []float64{-1, 0, -1, 1, 0, -1, 1, 0, 1}, MinY: -1, MaxY: 1, Area: 3}
	box := AreaVolume{Shape: ShapeBox, Min: []float64{0, -1, 0}, Max: []float64{1, 1, 1}, Area: 4}
	cyl := AreaVolume{Shape: ShapeCylinder, Center: []float64{0, -1, 0}, Radius: 1, Height: 2, Area: 5}
	b := NewBuilder(
		WithToolkit(tk),
		WithMedianFilter(true),
		WithAreaVolumes(vol, box, cyl),
		WithFlagMergeThreshold(4),
	)
	cfg := DefaultConfig()
	cfg.Partition = PartitionMonotone
	res, err := b.Build(cfg, cubeScene())
	require.NoError(t, err)
	defer res.Release()

	assert.Equal(t, []string{
		"heightfield", "rasterize",
		"filter_low_hanging", "filter_ledge", "filter_low_height",
		"compact", "erode", "median", "mark_convex", "mark_box", "mark_cylinder", "monotone",
		"contours", "polymesh", "detail",
	}, tk.calls)
	assert.Equal(t, 4, tk.flagMergeThreshold)
	require.Len(t, tk.hulls, 1)
	assert.Equal(t, vol.Verts, tk.hulls[0], "no offset keeps the polygon")
}

func TestBuildConvexVolumeOffset(t *testing.T) {
	square := []float64{0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1}
	reversed := []float64{0, 0, 0, 0, 0, 1, 1, 0, 1, 1, 0, 0}
	for name, verts := range map[string][]float64{"forward": square, "reversed": reversed} {
		t.Run(name, func(t *testing.T) {
			tk := newFakeToolkit("")
			vol := AreaVolume{Verts: verts, MinY: -1, MaxY: 1, Offset: 0.25, Area: 3}
			res, err := NewBuilder(WithToolkit(tk), WithAreaVolumes(vol)).Build(DefaultConfig(), cubeScene())
			require.NoError(t, err)
			defer res.Release()

			require.Len(t, tk.hulls, 1)
			hull := tk.hulls[0]
			require.Len(t, hull, 8*3, "right angle corners are beveled")
			for i := 0; i < len(hull); i += 3 {
				x, z := hull[i], hull[i+2]
				assert.True(t, x < 0 || x > 1 || z < 0 || z > 1, "vertex (%g, %g) lies outside the square", x, z)
			}
		})
	}
}

func TestBuildMedianFilterFailure(t *testing.T) {
	tk := newFakeToolkit("median")
	res, err := NewBuilder(WithToolkit(tk), WithMedianFilter(true)).Build(DefaultConfig(), cubeScene())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAllocation))
	assert.Equal(t, "Failed to apply median filter", res.Report())
	assert.Equal(t, []string{"hf", "chf"}, tk.released)
}

func TestBuildAreaVolumesWithRecast(t *testing.T) {
	vol := AreaVolume{
		Verts:  []float64{-8, 0, -8, -4, 0, -8, -4, 0, -4, -8, 0, -4},
		MinY:   -1,
		MaxY:   1,
		Offset: 0.5,
		Area:   7,
	}
	box := AreaVolume{Shape: ShapeBox, Min: []float64{4, -1, 4}, Max: []float64{8, 1, 8}, Area: 9}
	cyl := AreaVolume{Shape: ShapeCylinder, Center: []float64{-6, -1, 6}, Radius: 2, Height: 2, Area: 11}
	res, err := NewBuilder(WithAreaVolumes(vol, box, cyl), WithMedianFilter(true)).Build(DefaultConfig(), cubeScene())
	require.NoError(t, err)
	defer res.Release()

	found := map[int]bool{}
	for i := 0; i < res.PolyMesh.Npolys; i++ {
		found[res.PolyMesh.Areas[i]] = true
	}
	assert.True(t, found[7], "the convex area reaches the poly mesh")
	assert.True(t, found[9], "the box area reaches the poly mesh")
	assert.True(t, found[11], "the cylinder area reaches the poly mesh")
	assert.True(t, found[recast.RC_WALKABLE_AREA], "unmarked ground stays walkable")
}

type countingRecorder struct {
	mu             sync.Mutex
	stageDurations map[string]int
	stageResults   map[string]map[metrics.ResultLabel]int
	buildDurations int
	outcomes       map[metrics.BuildOutcomeLabel]int
	polys          int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		stageDurations: map[string]int{},
		stageResults:   map[string]map[metrics.ResultLabel]int{},
		outcomes:       map[metrics.BuildOutcomeLabel]int{},
	}
}

func (r *countingRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stageDurations[stage]++
}

func (r *countingRecorder) ObserveBuildDuration(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buildDurations++
}

func (r *countingRecorder) IncStageResult(stage string, result metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.stageResults[stage]
	if !ok {
		m = map[metrics.ResultLabel]int{}
		r.stageResults[stage] = m
	}
	m[result]++
}

func (r *countingRecorder) IncBuildOutcome(outcome metrics.BuildOutcomeLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[outcome]++
}

func (r *countingRecorder) ObserveMeshSize(polys, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polys = polys
}

func TestBuildRecordsMetrics(t *testing.T) {
	rec := newCountingRecorder()
	b := NewBuilder(WithToolkit(newFakeToolkit("")), WithRecorder(rec))
	res, err := b.Build(DefaultConfig(), cubeScene())
	require.NoError(t, err)
	res.Release()

	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeSuccess])
	assert.Equal(t, 1, rec.buildDurations)
	assert.Equal(t, 1, rec.stageResults[StageContours][metrics.ResultSuccess])
	assert.Equal(t, 1, rec.stageDurations[StageDetailMesh])
	assert.Equal(t, 1, rec.polys)

	rec = newCountingRecorder()
	b = NewBuilder(WithToolkit(newFakeToolkit("contours")), WithRecorder(rec))
	_, err = b.Build(DefaultConfig(), cubeScene())
	require.Error(t, err)
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeFailed])
	assert.Equal(t, 1, rec.stageResults[StageContours][metrics.ResultFailed])
	assert.Zero(t, rec.stageDurations[StagePolyMesh], "stages after the failure do not run")
	assert.Zero(t, rec.outcomes[metrics.OutcomeSuccess])

	cfg := DefaultConfig()
	cfg.VertsPerPoly = 0
	_, err = b.Build(cfg, cubeScene())
	require.Error(t, err)
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeInvalid])
}

func TestBuildLogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := NewBuilder(WithToolkit(newFakeToolkit("polymesh")), WithLogger(zap.New(core)))
	res, err := b.Build(DefaultConfig(), cubeScene())
	require.Error(t, err)

	failures := logs.FilterMessage("navigation mesh build failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zapcore.WarnLevel, failures[0].Level)
	assert.Equal(t, res.BuildID, failures[0].ContextMap()["build_id"])

	released := logs.FilterMessage("releasing partial build").All()
	require.Len(t, released, 1)
	assert.Equal(t, 1, logs.FilterMessage("building navigation").Len())
}

func TestBuilderIsSafeForConcurrentBuilds(t *testing.T) {
	b := NewBuilder()
	var wg sync.WaitGroup
	results := make([]*Result, 4)
	errs := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg := DefaultConfig()
			cfg.Partition = Partition(i % 3)
			results[i], errs[i] = b.Build(cfg, cubeScene())
		}(i)
	}
	wg.Wait()
	for i, res := range results {
		require.NoError(t, errs[i])
		assert.Greater(t, res.PolyMesh.Npolys, 0)
		res.Release()
	}
}

func TestReleaseStack(t *testing.T) {
	var log []string
	var s releaseStack
	s.push("a", &fakeArtifact{name: "a", log: &log}, false)
	s.push("nil", nil, false)
	s.push("b", &fakeArtifact{name: "b", log: &log}, true)
	s.push("c", &fakeArtifact{name: "c", log: &log}, false)
	assert.Equal(t, []string{"a", "b", "c"}, s.stages())

	s.releaseTransient()
	assert.Equal(t, []string{"c", "a"}, log)
	assert.Equal(t, []string{"b"}, s.stages())

	s.releaseAll()
	assert.Equal(t, []string{"c", "a", "b"}, log)
	assert.Empty(t, s.stages())
}

// fakeArtifact records its release in a shared log.
type fakeArtifact struct {
	name     string
	log      *[]string
	released bool
}

func (a *fakeArtifact) Release() {
	if a.released {
		return
	}
	a.released = true
	*a.log = append(*a.log, a.name)
}

// fakeToolkit succeeds at every stage except failAt and records the calls.
type fakeToolkit struct {
	RecastToolkit
	failAt             string
	calls              []string
	released           []string
	flagMergeThreshold int
	pmesh              *recast.RcPolyMesh
	dmesh              *recast.RcPolyMeshDetail
	hulls              [][]float64
}

var _ Toolkit = (*fakeToolkit)(nil)

func newFakeToolkit(failAt string) *fakeToolkit {
	return &fakeToolkit{failAt: failAt}
}

func (f *fakeToolkit) step(name string) bool {
	f.calls = append(f.calls, name)
	return f.failAt != name
}

func (f *fakeToolkit) artifact(name string) *fakeArtifact {
	return &fakeArtifact{name: name, log: &f.released}
}

func (f *fakeToolkit) CreateHeightfield(_ *recast.RcContext, _ Params) (Artifact, bool) {
	return f.artifact("hf"), f.step("heightfield")
}

func (f *fakeToolkit) RasterizeTriangles(_ *recast.RcContext, _ Artifact, _ InputMesh, _ Params, thr int) bool {
	f.flagMergeThreshold = thr
	return f.step("rasterize")
}

func (f *fakeToolkit) FilterLowHangingWalkableObstacles(*recast.RcContext, Artifact, Params) {
	f.step("filter_low_hanging")
}

func (f *fakeToolkit) FilterLedgeSpans(*recast.RcContext, Artifact, Params) {
	f.step("filter_ledge")
}

func (f *fakeToolkit) FilterWalkableLowHeightSpans(*recast.RcContext, Artifact, Params) {
	f.step("filter_low_height")
}

func (f *fakeToolkit) BuildCompactHeightfield(*recast.RcContext, Artifact, Params) (Artifact, bool) {
	return f.artifact("chf"), f.step("compact")
}

func (f *fakeToolkit) ErodeWalkableArea(*recast.RcContext, Artifact, Params) bool {
	return f.step("erode")
}

func (f *fakeToolkit) MedianFilterWalkableArea(*recast.RcContext, Artifact) bool {
	return f.step("median")
}

func (f *fakeToolkit) MarkConvexPolyArea(_ *recast.RcContext, _ Artifact, verts []float64, _, _ float64, _ int) {
	f.hulls = append(f.hulls, verts)
	f.step("mark_convex")
}

func (f *fakeToolkit) MarkBoxArea(*recast.RcContext, Artifact, []float64, []float64, int) {
	f.step("mark_box")
}

func (f *fakeToolkit) MarkCylinderArea(*recast.RcContext, Artifact, []float64, float64, float64, int) {
	f.step("mark_cylinder")
}

func (f *fakeToolkit) BuildDistanceField(*recast.RcContext, Artifact) bool {
	return f.step("distance")
}

func (f *fakeToolkit) BuildRegions(*recast.RcContext, Artifact, Params) bool {
	return f.step("regions")
}

func (f *fakeToolkit) BuildRegionsMonotone(*recast.RcContext, Artifact, Params) bool {
	return f.step("monotone")
}

func (f *fakeToolkit) BuildLayerRegions(*recast.RcContext, Artifact, Params) bool {
	return f.step("layers")
}

func (f *fakeToolkit) BuildContours(*recast.RcContext, Artifact, Params) (Artifact, bool) {
	return f.artifact("cset"), f.step("contours")
}

func (f *fakeToolkit) BuildPolyMesh(_ *recast.RcContext, _ Artifact, p Params) (*recast.RcPolyMesh, bool) {
	polys := make([]int, 2*p.MaxVertsPerPoly)
	for i := range polys {
		polys[i] = recast.RC_MESH_NULL_IDX
	}
	polys[0], polys[1], polys[2] = 0, 1, 2
	f.pmesh = &recast.RcPolyMesh{
		Verts:    []int{0, 0, 0, 1, 0, 0, 1, 0, 1},
		Polys:    polys,
		Regs:     []int{1},
		Flags:    []int{0},
		Areas:    []int{recast.RC_WALKABLE_AREA},
		Nverts:   3,
		Npolys:   1,
		Maxpolys: 1,
		Nvp:      p.MaxVertsPerPoly,
		Cs:       p.CellSize,
		Ch:       p.CellHeight,
	}
	return f.pmesh, f.step("polymesh")
}

func (f *fakeToolkit) BuildPolyMeshDetail(_ *recast.RcContext, _ *recast.RcPolyMesh, _ Artifact, _ Params) (*recast.RcPolyMeshDetail, bool) {
	f.dmesh = &recast.RcPolyMeshDetail{
		Meshes:  []int{0, 3, 0, 1},
		Verts:   []float64{0, 0, 0, 0.3, 0, 0, 0.3, 0, 0.3},
		Tris:    []int{0, 1, 2, 0},
		Nmeshes: 1,
		Nverts:  3,
		Ntris:   1,
	}
	return f.dmesh, f.step("detail")
}
