package scenario

import (
	"context"
	"time"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
)

// Shortcut greedily connects each kept pose to the farthest pose reachable in a straight line.
type Shortcut struct {
	elapsed time.Duration
	removed int
}

var _ contract.Smoother = &Shortcut{} // Compile-time check

func (s *Shortcut) Name() string { return ShortcutSmooth }

func (s *Shortcut) Run(ctx context.Context, rc *contract.RunContext, traj schema.Trajectory) (schema.Trajectory, error) {
	started := time.Now()
	defer func() { s.elapsed = time.Since(started) }()

	if len(traj) < 3 {
		s.removed = 0
		return traj.Clone(), nil
	}
	out := schema.Trajectory{traj[0]}
	for i := 0; i < len(traj)-1; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		j := len(traj) - 1
		for j > i+1 && segmentCollides(rc, traj[i], traj[j]) {
			j--
		}
		out = append(out, traj[j])
		i = j
	}
	rc.Recorder.Steering.Time(func() { reheading(out) })
	s.removed = len(traj) - len(out)
	return out, nil
}

func (s *Shortcut) Elapsed() time.Duration { return s.elapsed }

func (s *Shortcut) ExtraStats() map[string]any {
	return map[string]any{"removed": s.removed}
}

// Spacing drops interior poses closer than Config.MinNodeDistance to the previously kept pose.
type Spacing struct {
	elapsed time.Duration
	removed int
	spacing float64
}

var (
	_ contract.Smoother         = &Spacing{} // Compile-time check
	_ contract.SpacingSensitive = &Spacing{}
)

func (s *Spacing) Name() string { return SpacingSmooth }

func (s *Spacing) RequiresNodeSpacing() bool { return true }

func (s *Spacing) Run(ctx context.Context, rc *contract.RunContext, traj schema.Trajectory) (schema.Trajectory, error) {
	started := time.Now()
	defer func() { s.elapsed = time.Since(started) }()

	s.spacing = rc.Config.MinNodeDistance
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(traj) < 3 || s.spacing <= 0 {
		s.removed = 0
		return traj.Clone(), nil
	}
	out := schema.Trajectory{traj[0]}
	for _, pose := range traj[1 : len(traj)-1] {
		if out[len(out)-1].DistanceTo(pose) >= s.spacing {
			out = append(out, pose)
		}
	}
	out = append(out, traj[len(traj)-1])
	rc.Recorder.Steering.Time(func() { reheading(out) })
	s.removed = len(traj) - len(out)
	return out, nil
}

func (s *Spacing) Elapsed() time.Duration { return s.elapsed }

func (s *Spacing) ExtraStats() map[string]any {
	return map[string]any{"removed": s.removed, "min_node_distance": s.spacing}
}
