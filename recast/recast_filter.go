package recast

import "github.com/gorustyt/navbuild/common"

// spanMaxHeight is the open ceiling used above the last span of a column.
const spanMaxHeight = 0xffff

// / Marks non-walkable spans as walkable if their maximum is within @p walkableClimb of the span below them.
// /
// / This removes small obstacles and rasterization artifacts that the agent would be able to walk over
// / such as curbs.  It also allows agents to move up terraced structures like stairs.
func RcFilterLowHangingWalkableObstacles(ctx *RcContext, walkableClimb int, heightfield *RcHeightfield) {
	ctx.StartTimer(RC_TIMER_FILTER_LOW_OBSTACLES)
	defer ctx.StopTimer(RC_TIMER_FILTER_LOW_OBSTACLES)

	xSize := heightfield.Width
	zSize := heightfield.Height

	for z := 0; z < zSize; z++ {
		for x := 0; x < xSize; x++ {
			var previousSpan *RcSpan
			previousWasWalkable := false
			previousArea := RC_NULL_AREA

			for span := heightfield.Spans[x+z*xSize]; span != nil; span = span.Next {
				walkable := span.Area != RC_NULL_AREA
				// If current span is not walkable, but there is walkable
				// span just below it, mark the span above it walkable too.
				if !walkable && previousWasWalkable && common.Abs(span.Smax-previousSpan.Smax) <= walkableClimb {
					span.Area = previousArea
				}
				// Copy walkable flag so that it cannot propagate
				// past multiple non-walkable objects.
				previousWasWalkable = walkable
				previousArea = span.Area
				previousSpan = span
			}
		}
	}
}

// / Marks spans that are ledges as not-walkable.
// /
// / A ledge is a span with one or more neighbors whose maximum is further away than @p walkableClimb
// / from the current span's maximum.
// / This method removes the impact of the overestimation of conservative voxelization
// / so the resulting mesh will not have regions hanging in the air over ledges.
func RcFilterLedgeSpans(ctx *RcContext, walkableHeight, walkableClimb int, heightfield *RcHeightfield) {
	ctx.StartTimer(RC_TIMER_FILTER_BORDER)
	defer ctx.StopTimer(RC_TIMER_FILTER_BORDER)

	xSize := heightfield.Width
	zSize := heightfield.Height

	// Mark border spans.
	for z := 0; z < zSize; z++ {
		for x := 0; x < xSize; x++ {
			for span := heightfield.Spans[x+z*xSize]; span != nil; span = span.Next {
				// Skip non walkable spans.
				if span.Area == RC_NULL_AREA {
					continue
				}

				bot := span.Smax
				top := spanMaxHeight
				if span.Next != nil {
					top = span.Next.Smin
				}

				// Find neighbours minimum height.
				minNeighborHeight := spanMaxHeight

				// Min and max height of accessible neighbours.
				accessibleNeighborMinHeight := span.Smax
				accessibleNeighborMaxHeight := span.Smax

				for direction := 0; direction < 4; direction++ {
					dx := x + common.GetDirOffsetX(direction)
					dz := z + common.GetDirOffsetY(direction)
					// Skip neighbours which are out of bounds.
					if dx < 0 || dz < 0 || dx >= xSize || dz >= zSize {
						minNeighborHeight = min(minNeighborHeight, -walkableClimb-bot)
						continue
					}

					// From minus infinity to the first span.
					neighborSpan := heightfield.Spans[dx+dz*xSize]
					neighborBot := -walkableClimb
					neighborTop := spanMaxHeight
					if neighborSpan != nil {
						neighborTop = neighborSpan.Smin
					}
					// Skip neighbour if the gap between the spans is too small.
					if min(top, neighborTop)-max(bot, neighborBot) > walkableHeight {
						minNeighborHeight = min(minNeighborHeight, neighborBot-bot)
					}

					// Rest of the spans.
					for ; neighborSpan != nil; neighborSpan = neighborSpan.Next {
						neighborBot = neighborSpan.Smax
						neighborTop = spanMaxHeight
						if neighborSpan.Next != nil {
							neighborTop = neighborSpan.Next.Smin
						}

						// Skip neighbour if the gap between the spans is too small.
						if min(top, neighborTop)-max(bot, neighborBot) <= walkableHeight {
							continue
						}
						minNeighborHeight = min(minNeighborHeight, neighborBot-bot)

						// Find min/max accessible neighbour height.
						if common.Abs(neighborBot-bot) <= walkableClimb {
							accessibleNeighborMinHeight = min(accessibleNeighborMinHeight, neighborBot)
							accessibleNeighborMaxHeight = max(accessibleNeighborMaxHeight, neighborBot)
						}
					}
				}

				if minNeighborHeight < -walkableClimb {
					// The current span is close to a ledge if the drop to any
					// neighbour span is less than the walkableClimb.
					span.Area = RC_NULL_AREA
				} else if accessibleNeighborMaxHeight-accessibleNeighborMinHeight > walkableClimb {
					// If the difference between all neighbours is too large,
					// we are at steep slope, mark the span as ledge.
					span.Area = RC_NULL_AREA
				}
			}
		}
	}
}

// / Marks walkable spans as not walkable if the clearance above the span is less than the specified walkableHeight.
func RcFilterWalkableLowHeightSpans(ctx *RcContext, walkableHeight int, heightfield *RcHeightfield) {
	ctx.StartTimer(RC_TIMER_FILTER_WALKABLE)
	defer ctx.StopTimer(RC_TIMER_FILTER_WALKABLE)

	xSize := heightfield.Width
	zSize := heightfield.Height

	// Remove walkable flag from spans which do not have enough
	// space above them for the agent to stand there.
	for z := 0; z < zSize; z++ {
		for x := 0; x < xSize; x++ {
			for span := heightfield.Spans[x+z*xSize]; span != nil; span = span.Next {
				bot := span.Smax
				top := spanMaxHeight
				if span.Next != nil {
					top = span.Next.Smin
				}
				if top-bot < walkableHeight {
					span.Area = RC_NULL_AREA
				}
			}
		}
	}
}
