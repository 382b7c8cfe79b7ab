// Package navbuild turns a triangle soup into a navigation polygon mesh and
// its height detail mesh in one synchronous build.
package navbuild

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gorustyt/navbuild/metrics"
	"github.com/gorustyt/navbuild/recast"
)

// Stage names used in errors, logs and metrics.
const (
	StageValidate      = "validate"
	StageGridSize      = "grid_size"
	StageHeightfield   = "create_heightfield"
	StageRasterize     = "rasterize"
	StageFilter        = "filter"
	StageCompact       = "compact"
	StageErode         = "erode"
	StageMedianFilter  = "median_filter"
	StageMarkAreas     = "mark_areas"
	StageDistanceField = "distance_field"
	StageRegions       = "regions"
	StageContours      = "contours"
	StagePolyMesh      = "poly_mesh"
	StageDetailMesh    = "detail_mesh"
)

const (
	// Single tile builds have no tile border.
	borderSize = 0

	// defaultFlagMergeThreshold is the span top distance within which a
	// walkable area id wins over a non-walkable one during rasterization.
	defaultFlagMergeThreshold = 1
)

// Builder runs the build pipeline. It keeps no per-build state, so one
// Builder may serve concurrent builds.
type Builder struct {
	toolkit            Toolkit
	logger             *zap.Logger
	recorder           metrics.Recorder
	volumes            []AreaVolume
	medianFilter       bool
	flagMergeThreshold int
}

// Option configures a Builder.
type Option func(*Builder)

// WithToolkit replaces the recast stage implementations.
func WithToolkit(tk Toolkit) Option {
	return func(b *Builder) { b.toolkit = tk }
}

// WithLogger sets the logger for build progress and stage messages.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// WithRecorder sets the recorder for stage and build metrics.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// WithAreaVolumes marks the given volumes on the eroded field before partitioning.
func WithAreaVolumes(volumes ...AreaVolume) Option {
	return func(b *Builder) { b.volumes = append(b.volumes, volumes...) }
}

// WithMedianFilter runs a median filter over the area ids after erosion.
func WithMedianFilter(enabled bool) Option {
	return func(b *Builder) { b.medianFilter = enabled }
}

// WithFlagMergeThreshold overrides the rasterization flag merge threshold (1 by default).
func WithFlagMergeThreshold(voxels int) Option {
	return func(b *Builder) { b.flagMergeThreshold = voxels }
}

// NewBuilder returns a Builder over RecastToolkit with the given options applied.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		toolkit:            RecastToolkit{},
		logger:             zap.NewNop(),
		recorder:           metrics.NoopRecorder{},
		flagMergeThreshold: defaultFlagMergeThreshold,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.recorder == nil {
		b.recorder = metrics.NoopRecorder{}
	}
	return b
}

// Build runs a build with a default Builder.
func Build(cfg Config, mesh InputMesh) (*Result, error) {
	return NewBuilder().Build(cfg, mesh)
}

// build carries the state of one Build call.
type build struct {
	*Builder
	ctx      *recast.RcContext
	log      *zap.Logger
	params   Params
	releases releaseStack
}

// Build converts mesh into a polygon mesh and a detail mesh.
// The returned Result is never nil; on failure it carries no meshes and its
// Report holds the failure message. The caller releases the Result.
func (b *Builder) Build(cfg Config, mesh InputMesh) (*Result, error) {
	id := uuid.NewString()
	log := b.logger.With(zap.String("build_id", id))
	res := &Result{BuildID: id}
	start := time.Now()

	bld := &build{
		Builder: b,
		ctx:     recast.NewRcContext(log),
		log:     log,
	}
	err := bld.run(cfg, mesh, res)
	b.recorder.ObserveBuildDuration(time.Since(start))
	bld.ctx.LogTimers()

	if err != nil {
		log.Debug("releasing partial build", zap.Strings("artifacts", bld.releases.stages()))
		bld.releases.releaseAll()
		var be *BuildError
		if errors.As(err, &be) {
			res.report = be.Message
		} else {
			res.report = err.Error()
		}
		outcome := metrics.OutcomeFailed
		if IsKind(err, KindInvalidInput) {
			outcome = metrics.OutcomeInvalid
		}
		b.recorder.IncBuildOutcome(outcome)
		log.Warn("navigation mesh build failed", zap.Error(err))
		return res, err
	}

	b.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
	b.recorder.ObserveMeshSize(res.PolyMesh.Npolys, res.DetailMesh.Ntris)
	log.Info("navigation mesh built", zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// stage times fn and records its result under name.
func (bld *build) stage(name string, fn func() bool) bool {
	start := time.Now()
	ok := fn()
	bld.recorder.ObserveStageDuration(name, time.Since(start))
	result := metrics.ResultSuccess
	if !ok {
		result = metrics.ResultFailed
	}
	bld.recorder.IncStageResult(name, result)
	return ok
}

func (bld *build) fail(kind ErrorKind, stage, message string) error {
	bld.recorder.IncStageResult(stage, metrics.ResultFailed)
	return newBuildError(kind, stage, message)
}

func (bld *build) run(cfg Config, mesh InputMesh, res *Result) error {
	if err := bld.validate(cfg, mesh); err != nil {
		return err
	}
	tk := bld.toolkit

	bld.log.Debug("build input",
		zap.Int("nverts", mesh.NumVerts()),
		zap.Int("ntris", mesh.NumTris()),
		zap.Any("config", cfg))

	bmin, bmax := tk.CalcBounds(mesh.Verts)
	bld.params = DeriveParams(cfg, bmin, bmax, tk)
	p := bld.params
	res.Params = p
	if p.Width <= 0 || p.Height <= 0 {
		return bld.fail(KindDegenerateInput, StageGridSize, "Object has a width or height of zero")
	}
	bld.log.Info("building navigation",
		zap.Int("width", p.Width),
		zap.Int("height", p.Height),
		zap.Int("nverts", mesh.NumVerts()),
		zap.Int("ntris", mesh.NumTris()),
		zap.Stringer("partition", cfg.Partition))

	chf, err := bld.voxelize(mesh)
	if err != nil {
		return err
	}
	bld.releases.push(StageCompact, chf, false)

	if err := bld.prepareAreas(chf); err != nil {
		return err
	}
	if err := bld.partition(cfg.Partition, chf); err != nil {
		return err
	}

	var cset Artifact
	ok := bld.stage(StageContours, func() bool {
		var ok bool
		cset, ok = tk.BuildContours(bld.ctx, chf, p)
		return ok
	})
	bld.releases.push(StageContours, cset, false)
	if !ok {
		return newBuildError(KindContourBuild, StageContours, "Failed to build contours")
	}

	var pmesh *recast.RcPolyMesh
	ok = bld.stage(StagePolyMesh, func() bool {
		var ok bool
		pmesh, ok = tk.BuildPolyMesh(bld.ctx, cset, p)
		return ok
	})
	bld.releases.push(StagePolyMesh, pmesh, true)
	if !ok {
		return newBuildError(KindPolyMeshBuild, StagePolyMesh, "Failed to build poly mesh")
	}

	var dmesh *recast.RcPolyMeshDetail
	ok = bld.stage(StageDetailMesh, func() bool {
		var ok bool
		dmesh, ok = tk.BuildPolyMeshDetail(bld.ctx, pmesh, chf, p)
		return ok
	})
	bld.releases.push(StageDetailMesh, dmesh, true)
	// The compact field and the contours are not needed past the detail stage.
	bld.releases.releaseTransient()
	if !ok {
		return newBuildError(KindDetailMeshBuild, StageDetailMesh, "Failed to build poly mesh detail")
	}

	logMeshes(bld.log, pmesh, dmesh)
	res.PolyMesh = pmesh
	res.DetailMesh = dmesh
	bld.releases.clear()
	return nil
}

func (bld *build) validate(cfg Config, mesh InputMesh) error {
	if err := cfg.Validate(); err != nil {
		return wrapBuildError(err, KindInvalidInput, StageValidate, "Invalid build configuration")
	}
	if err := mesh.Validate(); err != nil {
		return wrapBuildError(err, KindInvalidInput, StageValidate, "Invalid input mesh")
	}
	for _, vol := range bld.volumes {
		if err := vol.Validate(); err != nil {
			return wrapBuildError(err, KindInvalidInput, StageValidate, "Invalid area volume")
		}
	}
	return nil
}

// voxelize rasterizes mesh into a heightfield, filters it and compacts it.
// The heightfield never leaves this function.
func (bld *build) voxelize(mesh InputMesh) (Artifact, error) {
	tk, p := bld.toolkit, bld.params

	var hf Artifact
	ok := bld.stage(StageHeightfield, func() bool {
		var ok bool
		hf, ok = tk.CreateHeightfield(bld.ctx, p)
		return ok
	})
	if hf != nil {
		defer hf.Release()
	}
	if !ok {
		return nil, newBuildError(KindAllocation, StageHeightfield, "Failed to create height field")
	}

	if !bld.stage(StageRasterize, func() bool {
		return tk.RasterizeTriangles(bld.ctx, hf, mesh, p, bld.flagMergeThreshold)
	}) {
		return nil, newBuildError(KindAllocation, StageRasterize, "Failed to rasterize triangles")
	}

	// Each filter assumes the previous one has run.
	bld.stage(StageFilter, func() bool {
		tk.FilterLowHangingWalkableObstacles(bld.ctx, hf, p)
		tk.FilterLedgeSpans(bld.ctx, hf, p)
		tk.FilterWalkableLowHeightSpans(bld.ctx, hf, p)
		return true
	})

	var chf Artifact
	ok = bld.stage(StageCompact, func() bool {
		var ok bool
		chf, ok = tk.BuildCompactHeightfield(bld.ctx, hf, p)
		return ok
	})
	if !ok {
		if chf != nil {
			chf.Release()
		}
		return nil, newBuildError(KindAllocation, StageCompact, "Failed to create compact height field")
	}
	return chf, nil
}

// prepareAreas erodes the walkable area and applies the optional area passes.
func (bld *build) prepareAreas(chf Artifact) error {
	tk, p := bld.toolkit, bld.params
	if !bld.stage(StageErode, func() bool { return tk.ErodeWalkableArea(bld.ctx, chf, p) }) {
		return newBuildError(KindAllocation, StageErode, "Failed to erode walkable area")
	}
	if bld.medianFilter {
		if !bld.stage(StageMedianFilter, func() bool { return tk.MedianFilterWalkableArea(bld.ctx, chf) }) {
			return newBuildError(KindAllocation, StageMedianFilter, "Failed to apply median filter")
		}
	}
	if len(bld.volumes) > 0 {
		bld.stage(StageMarkAreas, func() bool {
			for _, vol := range bld.volumes {
				bld.markVolume(chf, vol)
			}
			return true
		})
	}
	return nil
}

func (bld *build) markVolume(chf Artifact, vol AreaVolume) {
	tk := bld.toolkit
	switch vol.shape() {
	case ShapeConvex:
		tk.MarkConvexPolyArea(bld.ctx, chf, vol.hull(), vol.MinY, vol.MaxY, vol.Area)
	case ShapeBox:
		tk.MarkBoxArea(bld.ctx, chf, vol.Min, vol.Max, vol.Area)
	case ShapeCylinder:
		tk.MarkCylinderArea(bld.ctx, chf, vol.Center, vol.Radius, vol.Height, vol.Area)
	}
}

func (bld *build) partition(method Partition, chf Artifact) error {
	tk, p := bld.toolkit, bld.params
	switch method {
	case PartitionWatershed:
		if !bld.stage(StageDistanceField, func() bool { return tk.BuildDistanceField(bld.ctx, chf) }) {
			return newBuildError(KindDistanceField, StageDistanceField, "Failed to build distance field")
		}
		if !bld.stage(StageRegions, func() bool { return tk.BuildRegions(bld.ctx, chf, p) }) {
			return newBuildError(KindRegionBuild, StageRegions, "Failed to build watershed regions")
		}
	case PartitionMonotone:
		if !bld.stage(StageRegions, func() bool { return tk.BuildRegionsMonotone(bld.ctx, chf, p) }) {
			return newBuildError(KindRegionBuild, StageRegions, "Failed to build monotone regions")
		}
	case PartitionLayers:
		if !bld.stage(StageRegions, func() bool { return tk.BuildLayerRegions(bld.ctx, chf, p) }) {
			return newBuildError(KindRegionBuild, StageRegions, "Failed to build layer regions")
		}
	default:
		return newBuildError(KindInvalidInput, StageRegions, "Unknown partition method")
	}
	return nil
}

func logMeshes(log *zap.Logger, pmesh *recast.RcPolyMesh, dmesh *recast.RcPolyMeshDetail) {
	log.Info("poly mesh",
		zap.Int("nverts", pmesh.Nverts),
		zap.Int("npolys", pmesh.Npolys),
		zap.Int("maxpolys", pmesh.Maxpolys),
		zap.Int("nvp", pmesh.Nvp),
		zap.Float64s("bmin", pmesh.Bmin[:]),
		zap.Float64s("bmax", pmesh.Bmax[:]),
		zap.Float64("cs", pmesh.Cs),
		zap.Float64("ch", pmesh.Ch),
		zap.Int("border_size", pmesh.BorderSize),
		zap.Float64("max_edge_error", pmesh.MaxEdgeError))
	log.Info("detail mesh",
		zap.Int("nmeshes", dmesh.Nmeshes),
		zap.Int("nverts", dmesh.Nverts),
		zap.Int("ntris", dmesh.Ntris))
}
