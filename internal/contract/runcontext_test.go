package contract

import (
	"testing"
	"time"

	"github.com/huangsam/planbench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowCollision struct {
	delay time.Duration
	calls int
}

func (s *slowCollision) Collides(_, _ float64) bool {
	s.calls++
	time.Sleep(s.delay)
	return false
}

func (s *slowCollision) CollidesPolygon(_ []schema.Point) bool {
	s.calls++
	time.Sleep(s.delay)
	return true
}

func (s *slowCollision) Distance(_, _ float64) float64 { return 1 }

func (s *slowCollision) DistanceGradient(_, _ float64) (float64, float64) { return 0, 0 }

func TestRunContextTimesCollisions(t *testing.T) {
	env := &slowCollision{delay: 2 * time.Millisecond}
	rc := NewRunContext(&Config{}, env, schema.Pose{}, schema.Pose{X: 1}, nil)
	require.NotNil(t, rc.Logger)

	assert.False(t, rc.Collision.Collides(0, 0))
	assert.True(t, rc.Collision.CollidesPolygon(nil))
	assert.Equal(t, 1.0, rc.Collision.Distance(0, 0))
	assert.Equal(t, 2, env.calls)
	assert.GreaterOrEqual(t, rc.Recorder.CollisionSeconds(), 0.004)
	assert.Zero(t, rc.Recorder.SteeringSeconds())

	rc.Recorder.Reset()
	assert.Zero(t, rc.Recorder.CollisionSeconds())
	assert.Same(t, env, rc.Environment())
}

func TestRunContextIsolate(t *testing.T) {
	env := &slowCollision{}
	cfg := &Config{MinNodeDistance: 8, Planners: []string{"a"}}
	rc := NewRunContext(cfg, env, schema.Pose{}, schema.Pose{X: 5}, nil)
	rc.Recorder.Steering.Time(func() { time.Sleep(time.Millisecond) })

	iso := rc.Isolate()
	iso.Config.MinNodeDistance = 40
	iso.Config.Planners[0] = "b"

	assert.Equal(t, 8.0, rc.Config.MinNodeDistance)
	assert.Equal(t, "a", rc.Config.Planners[0])
	assert.Zero(t, iso.Recorder.SteeringSeconds())
	assert.Positive(t, rc.Recorder.SteeringSeconds())
	assert.Same(t, env, iso.Environment())
	assert.Equal(t, rc.Goal, iso.Goal)
}

func TestStopwatch(t *testing.T) {
	var sw Stopwatch
	sw.Stop() // unbalanced stop is ignored
	assert.Zero(t, sw.Elapsed())

	sw.Start()
	sw.Start()
	time.Sleep(2 * time.Millisecond)
	sw.Stop()
	assert.Positive(t, sw.Elapsed(), "running section counts")
	sw.Stop()
	first := sw.Elapsed()
	assert.GreaterOrEqual(t, first, 2*time.Millisecond)

	time.Sleep(2 * time.Millisecond)
	assert.Equal(t, first, sw.Elapsed(), "stopped watch does not advance")

	sw.Reset()
	assert.Zero(t, sw.Seconds())
}

func TestPreserveAndOverride(t *testing.T) {
	value := 8.0
	func() {
		defer Override(&value, 40.0)()
		assert.Equal(t, 40.0, value)
	}()
	assert.Equal(t, 8.0, value)

	budget := time.Second
	func() {
		defer Preserve(&budget)()
		budget = time.Minute
	}()
	assert.Equal(t, time.Second, budget)

	assert.Panics(t, func() {
		defer Override(&value, 1.0)()
		panic("smoother crashed")
	})
	assert.Equal(t, 8.0, value, "restored after panic")
}
