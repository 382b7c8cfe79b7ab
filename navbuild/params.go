package navbuild

import "math"

// GridSizer computes the voxel grid dimensions of a bounding box.
// The sizing rule belongs to the geometry collaborator.
type GridSizer interface {
	CalcGridSize(bmin, bmax [3]float64, cellSize float64) (width, height int)
}

// Params are the voxel space parameters consumed by the build stages.
type Params struct {
	Bmin       [3]float64
	Bmax       [3]float64
	CellSize   float64
	CellHeight float64

	Width  int
	Height int

	WalkableSlopeAngle float64 // degrees
	WalkableHeight     int
	WalkableClimb      int
	WalkableRadius     int

	MaxEdgeLen             int
	MaxSimplificationError float64
	MinRegionArea          int
	MergeRegionArea        int
	MaxVertsPerPoly        int

	DetailSampleDist     float64
	DetailSampleMaxError float64
}

// minDetailSampleDist is the sample distance tunable below which detail
// sampling is disabled.
const minDetailSampleDist = 0.9

// DeriveParams converts cfg and the mesh bounds into voxel parameters.
func DeriveParams(cfg Config, bmin, bmax [3]float64, grid GridSizer) Params {
	p := Params{
		Bmin:       bmin,
		Bmax:       bmax,
		CellSize:   cfg.CellSize,
		CellHeight: cfg.CellHeight,

		WalkableSlopeAngle: cfg.AgentMaxSlope * 180 / math.Pi,
		WalkableHeight:     int(math.Ceil(cfg.AgentHeight / cfg.CellHeight)),
		WalkableClimb:      int(math.Floor(cfg.AgentMaxClimb / cfg.CellHeight)),
		WalkableRadius:     int(math.Ceil(cfg.AgentRadius / cfg.CellSize)),

		MaxEdgeLen:             int(cfg.EdgeMaxLen / cfg.CellSize),
		MaxSimplificationError: cfg.EdgeMaxError,
		MinRegionArea:          int(cfg.RegionMinSize * cfg.RegionMinSize),
		MergeRegionArea:        int(cfg.RegionMergeSize * cfg.RegionMergeSize),
		MaxVertsPerPoly:        cfg.VertsPerPoly,

		DetailSampleMaxError: cfg.CellHeight * cfg.DetailSampleMaxError,
	}
	if cfg.DetailSampleDist >= minDetailSampleDist {
		p.DetailSampleDist = cfg.CellSize * cfg.DetailSampleDist
	}
	p.Width, p.Height = grid.CalcGridSize(bmin, bmax, cfg.CellSize)
	return p
}
