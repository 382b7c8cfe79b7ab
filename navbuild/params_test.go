package navbuild

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedGrid struct{ w, h int }

func (g fixedGrid) CalcGridSize([3]float64, [3]float64, float64) (int, int) { return g.w, g.h }

func TestDeriveParamsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	bmin := [3]float64{-10, -1, -10}
	bmax := [3]float64{10, 1, 10}
	p := DeriveParams(cfg, bmin, bmax, RecastToolkit{})

	assert.Equal(t, 67, p.Width)
	assert.Equal(t, 67, p.Height)
	assert.Equal(t, 10, p.WalkableHeight)
	assert.Equal(t, 4, p.WalkableClimb)
	assert.Equal(t, 2, p.WalkableRadius)
	assert.Equal(t, 40, p.MaxEdgeLen)
	assert.Equal(t, 64, p.MinRegionArea)
	assert.Equal(t, 400, p.MergeRegionArea)
	assert.Equal(t, 6, p.MaxVertsPerPoly)
	assert.InDelta(t, 1.8, p.DetailSampleDist, 1e-9)
	assert.InDelta(t, 0.2, p.DetailSampleMaxError, 1e-9)
	assert.InDelta(t, 1.3, p.MaxSimplificationError, 1e-9)
	assert.InDelta(t, 45.0, p.WalkableSlopeAngle, 1e-4)
	assert.Equal(t, bmin, p.Bmin)
	assert.Equal(t, bmax, p.Bmax)
	assert.Equal(t, cfg.CellSize, p.CellSize)
	assert.Equal(t, cfg.CellHeight, p.CellHeight)
}

func TestDeriveParamsRegionAreasAreSquared(t *testing.T) {
	cfg := DefaultConfig()
	for size := 1; size <= 30; size++ {
		cfg.RegionMinSize = float64(size)
		cfg.RegionMergeSize = float64(31 - size)
		p := DeriveParams(cfg, [3]float64{}, [3]float64{1, 1, 1}, fixedGrid{1, 1})
		assert.Equal(t, size*size, p.MinRegionArea, "min region size %d", size)
		assert.Equal(t, (31-size)*(31-size), p.MergeRegionArea, "merge region size %d", 31-size)
	}
}

func TestDeriveParamsDetailSampleThreshold(t *testing.T) {
	cfg := DefaultConfig()

	cfg.DetailSampleDist = 0.85
	p := DeriveParams(cfg, [3]float64{}, [3]float64{1, 1, 1}, fixedGrid{1, 1})
	assert.Equal(t, 0.0, p.DetailSampleDist)

	cfg.DetailSampleDist = 0.95
	p = DeriveParams(cfg, [3]float64{}, [3]float64{1, 1, 1}, fixedGrid{1, 1})
	assert.InDelta(t, cfg.CellSize*0.95, p.DetailSampleDist, 1e-12)

	cfg.DetailSampleDist = 0.9
	p = DeriveParams(cfg, [3]float64{}, [3]float64{1, 1, 1}, fixedGrid{1, 1})
	assert.InDelta(t, cfg.CellSize*0.9, p.DetailSampleDist, 1e-12, "the threshold itself enables sampling")
}

func TestDeriveParamsRounding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CellSize = 0.25
	cfg.CellHeight = 0.3
	// Height and radius round up, climb and edge length round down.
	cfg.AgentHeight = 1.0
	cfg.AgentMaxClimb = 1.0
	cfg.AgentRadius = 0.3
	cfg.EdgeMaxLen = 1.1
	cfg.AgentMaxSlope = math.Pi / 2

	p := DeriveParams(cfg, [3]float64{}, [3]float64{1, 1, 1}, fixedGrid{3, 5})
	assert.Equal(t, 4, p.WalkableHeight)
	assert.Equal(t, 3, p.WalkableClimb)
	assert.Equal(t, 2, p.WalkableRadius)
	assert.Equal(t, 4, p.MaxEdgeLen)
	assert.InDelta(t, 90.0, p.WalkableSlopeAngle, 1e-9)
	assert.Equal(t, 3, p.Width, "grid size comes from the sizer")
	assert.Equal(t, 5, p.Height, "grid size comes from the sizer")
}
