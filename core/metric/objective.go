package metric

import (
	"fmt"
	"math"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
)

// clearanceEpsilon keeps the clearance cost finite next to obstacles.
const clearanceEpsilon = 1e-2

// PathLength charges the Euclidean length of a motion.
type PathLength struct{}

var _ contract.Objective = PathLength{} // Compile-time check

// Name returns the objective name.
func (PathLength) Name() string { return string(schema.PathLengthObjective) }

// MotionCost returns the distance between a and b.
func (PathLength) MotionCost(a, b schema.Pose) float64 {
	return a.DistanceTo(b)
}

// Clearance charges a motion by its length, weighted up when it passes close to obstacles.
type Clearance struct {
	Collision contract.CollisionModel
}

var _ contract.Objective = &Clearance{} // Compile-time check

// Name returns the objective name.
func (c *Clearance) Name() string { return string(schema.ClearanceObjective) }

// MotionCost returns length * (1 + 1/(eps + clearance)) using the smaller endpoint clearance.
// Without distance support it falls back to the plain length.
func (c *Clearance) MotionCost(a, b schema.Pose) float64 {
	length := a.DistanceTo(b)
	da := c.Collision.Distance(a.X, a.Y)
	if da < 0 {
		return length
	}
	clearance := math.Min(da, c.Collision.Distance(b.X, b.Y))
	return length * (1 + 1/(clearanceEpsilon+math.Max(0, clearance)))
}

// NewObjective builds the configured objective against a collision model.
func NewObjective(kind schema.ObjectiveKind, collision contract.CollisionModel) (contract.Objective, error) {
	switch kind {
	case schema.PathLengthObjective, "":
		return PathLength{}, nil
	case schema.ClearanceObjective:
		return &Clearance{Collision: collision}, nil
	default:
		return nil, fmt.Errorf("unknown objective '%s'", kind)
	}
}
