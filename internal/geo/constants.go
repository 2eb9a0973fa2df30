package geo

import (
	"math"
	"time"
)

// Grid defaults.
const (
	// DefaultPenaltyFactor scales the cell radius for the "near obstacle" probe.
	DefaultPenaltyFactor = 5.0

	// NearObstaclePenalty is added to the cost of entering a cell next to an obstacle.
	NearObstaclePenalty = 1.0
)

// Unbounded lets a single Advance call run the search to completion.
const Unbounded = time.Duration(math.MaxInt64)

// noParent marks a scratch node without a back-reference.
const noParent int32 = -1
