package recast

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// / Recast performance timer categories.
type RcTimerLabel int

const (
	/// The user defined total time of the build.
	RC_TIMER_TOTAL RcTimerLabel = iota
	/// A user defined build time.
	RC_TIMER_TEMP
	/// The time to rasterize the triangles. (See: #rcRasterizeTriangle)
	RC_TIMER_RASTERIZE_TRIANGLES
	/// The time to build the compact heightfield. (See: #rcBuildCompactHeightfield)
	RC_TIMER_BUILD_COMPACTHEIGHTFIELD
	/// The total time to build the contours. (See: #rcBuildContours)
	RC_TIMER_BUILD_CONTOURS
	/// The time to trace the boundaries of the contours. (See: #rcBuildContours)
	RC_TIMER_BUILD_CONTOURS_TRACE
	/// The time to simplify the contours. (See: #rcBuildContours)
	RC_TIMER_BUILD_CONTOURS_SIMPLIFY
	/// The time to filter ledge spans. (See: #rcFilterLedgeSpans)
	RC_TIMER_FILTER_BORDER
	/// The time to filter low height spans. (See: #rcFilterWalkableLowHeightSpans)
	RC_TIMER_FILTER_WALKABLE
	/// The time to apply the median filter. (See: #rcMedianFilterWalkableArea)
	RC_TIMER_MEDIAN_AREA
	/// The time to filter low obstacles. (See: #rcFilterLowHangingWalkableObstacles)
	RC_TIMER_FILTER_LOW_OBSTACLES
	/// The time to build the polygon mesh. (See: #rcBuildPolyMesh)
	RC_TIMER_BUILD_POLYMESH
	/// The time to erode the walkable area. (See: #rcErodeWalkableArea)
	RC_TIMER_ERODE_AREA
	/// The time to mark a box area. (See: #rcMarkBoxArea)
	RC_TIMER_MARK_BOX_AREA
	/// The time to mark a cylinder area. (See: #rcMarkCylinderArea)
	RC_TIMER_MARK_CYLINDER_AREA
	/// The time to mark a convex polygon area. (See: #rcMarkConvexPolyArea)
	RC_TIMER_MARK_CONVEXPOLY_AREA
	/// The total time to build the distance field. (See: #rcBuildDistanceField)
	RC_TIMER_BUILD_DISTANCEFIELD
	/// The time to build the distances of the distance field. (See: #rcBuildDistanceField)
	RC_TIMER_BUILD_DISTANCEFIELD_DIST
	/// The time to blur the distance field. (See: #rcBuildDistanceField)
	RC_TIMER_BUILD_DISTANCEFIELD_BLUR
	/// The total time to build the regions. (See: #rcBuildRegions, #rcBuildRegionsMonotone)
	RC_TIMER_BUILD_REGIONS
	/// The total time to apply the watershed algorithm. (See: #rcBuildRegions)
	RC_TIMER_BUILD_REGIONS_WATERSHED
	/// The time to expand regions while applying the watershed algorithm. (See: #rcBuildRegions)
	RC_TIMER_BUILD_REGIONS_EXPAND
	/// The time to flood regions while applying the watershed algorithm. (See: #rcBuildRegions)
	RC_TIMER_BUILD_REGIONS_FLOOD
	/// The time to filter out small regions. (See: #rcBuildRegions, #rcBuildRegionsMonotone)
	RC_TIMER_BUILD_REGIONS_FILTER
	/// The time to build the polygon mesh detail. (See: #rcBuildPolyMeshDetail)
	RC_TIMER_BUILD_POLYMESHDETAIL
	/// The maximum number of timers.  (Used for iterating timers.)
	RC_MAX_TIMERS
)

var timerNames = [RC_MAX_TIMERS]string{
	"total",
	"temp",
	"rasterize_triangles",
	"build_compact_heightfield",
	"build_contours",
	"build_contours_trace",
	"build_contours_simplify",
	"filter_border",
	"filter_walkable",
	"median_area",
	"filter_low_obstacles",
	"build_polymesh",
	"erode_area",
	"mark_box_area",
	"mark_cylinder_area",
	"mark_convexpoly_area",
	"build_distancefield",
	"build_distancefield_dist",
	"build_distancefield_blur",
	"build_regions",
	"build_regions_watershed",
	"build_regions_expand",
	"build_regions_flood",
	"build_regions_filter",
	"build_polymeshdetail",
}

func (l RcTimerLabel) String() string {
	if l < 0 || l >= RC_MAX_TIMERS {
		return fmt.Sprintf("timer(%d)", int(l))
	}
	return timerNames[l]
}

// RcContext carries the build log and the accumulated stage timers.
// A nil *RcContext is valid and discards everything.
type RcContext struct {
	log         *zap.Logger
	startTime   [RC_MAX_TIMERS]time.Time
	accTime     [RC_MAX_TIMERS]time.Duration
	timerActive bool
}

func NewRcContext(logger *zap.Logger) *RcContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RcContext{log: logger, timerActive: true}
}

// EnableTimer turns timer collection on or off.
func (ctx *RcContext) EnableTimer(state bool) {
	if ctx == nil {
		return
	}
	ctx.timerActive = state
}

// ResetTimers clears all accumulated durations.
func (ctx *RcContext) ResetTimers() {
	if ctx == nil {
		return
	}
	ctx.accTime = [RC_MAX_TIMERS]time.Duration{}
	ctx.startTime = [RC_MAX_TIMERS]time.Time{}
}

func (ctx *RcContext) StartTimer(label RcTimerLabel) {
	if ctx == nil || !ctx.timerActive {
		return
	}
	ctx.startTime[label] = time.Now()
}

func (ctx *RcContext) StopTimer(label RcTimerLabel) {
	if ctx == nil || !ctx.timerActive || ctx.startTime[label].IsZero() {
		return
	}
	ctx.accTime[label] += time.Since(ctx.startTime[label])
	ctx.startTime[label] = time.Time{}
}

// AccumulatedTime returns the total time spent under label, or -1 when timers are disabled.
func (ctx *RcContext) AccumulatedTime(label RcTimerLabel) time.Duration {
	if ctx == nil || !ctx.timerActive {
		return -1
	}
	return ctx.accTime[label]
}

// LogTimers writes every non-zero timer at debug level.
func (ctx *RcContext) LogTimers() {
	if ctx == nil {
		return
	}
	for i := RcTimerLabel(0); i < RC_MAX_TIMERS; i++ {
		if ctx.accTime[i] > 0 {
			ctx.log.Debug("recast timer", zap.Stringer("label", i), zap.Duration("elapsed", ctx.accTime[i]))
		}
	}
}

func (ctx *RcContext) Logger() *zap.Logger {
	if ctx == nil {
		return zap.NewNop()
	}
	return ctx.log
}

func (ctx *RcContext) Progressf(format string, args ...any) {
	if ctx == nil {
		return
	}
	ctx.log.Sugar().Debugf(format, args...)
}

func (ctx *RcContext) Warnf(format string, args ...any) {
	if ctx == nil {
		return
	}
	ctx.log.Sugar().Warnf(format, args...)
}

func (ctx *RcContext) Errorf(format string, args ...any) {
	if ctx == nil {
		return
	}
	ctx.log.Sugar().Errorf(format, args...)
}
