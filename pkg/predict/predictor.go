package predict

import (
	"math"

	"github.com/opd-ai/go-physim/pkg/physics"
	"github.com/opd-ai/go-physim/pkg/spatial"
)

// Prediction defaults.
const (
	DefaultHorizon      = 0.1
	DefaultMinNeighbors = 3
)

// degenerateRelativeSpeed bounds |dv|^2 below which shapes are treated as
// moving together.
const degenerateRelativeSpeed = 1e-9

// NoImpact is returned by TimeToImpact when the bounding circles never meet.
const NoImpact = -1.0

// Prediction is one imminent contact found by the predictor.
type Prediction struct {
	A, B        physics.Handle
	Time        float64
	WillCollide bool
}

// TimeToImpact solves |dp + dv*t| = rA + rB for the bounding circles of a
// and b and returns the smaller non-negative root, or NoImpact.
func TimeToImpact(a, b *physics.Shape) float64 {
	dp := b.Position().Sub(a.Position())
	dv := b.Velocity.Sub(a.Velocity)
	radiusSum := a.BoundingRadius() + b.BoundingRadius()

	qa := dv.Dot(dv)
	if qa < degenerateRelativeSpeed {
		return NoImpact
	}
	qb := 2 * dp.Dot(dv)
	qc := dp.Dot(dp) - radiusSum*radiusSum

	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return NoImpact
	}
	sqrtDisc := math.Sqrt(disc)
	t1 := (-qb - sqrtDisc) / (2 * qa)
	t2 := (-qb + sqrtDisc) / (2 * qa)
	if t1 >= 0 {
		return t1
	}
	if t2 >= 0 {
		return t2
	}
	return NoImpact
}

// WillCollideWithin reports whether a and b are predicted to touch within horizon.
func WillCollideWithin(a, b *physics.Shape, horizon float64) bool {
	t := TimeToImpact(a, b)
	return t >= 0 && t <= horizon
}

// Predictor turns a neighbor snapshot into a set of imminent pairs. Only
// shapes with more than MinNeighbors neighbors are examined.
type Predictor struct {
	Horizon      float64
	MinNeighbors int

	predictions []Prediction
	imminent    map[spatial.Pair]struct{}
}

// NewPredictor creates a predictor with the given horizon and density gate.
// A zero horizon only flags pairs whose contact time is exactly zero.
func NewPredictor(horizon float64, minNeighbors int) *Predictor {
	if minNeighbors < 0 {
		minNeighbors = DefaultMinNeighbors
	}
	return &Predictor{
		Horizon:      horizon,
		MinNeighbors: minNeighbors,
		imminent:     make(map[spatial.Pair]struct{}),
	}
}

// Predict recomputes predictions from tracker against current shape state.
// Handles no longer in store are skipped.
func (p *Predictor) Predict(store *physics.Store, tracker *NeighborTracker) {
	p.Clear()
	for _, info := range tracker.Infos() {
		if len(info.Neighbors) <= p.MinNeighbors {
			continue
		}
		a, ok := store.Get(info.Object)
		if !ok {
			continue
		}
		for _, nh := range info.Neighbors {
			b, ok := store.Get(nh)
			if !ok {
				continue
			}
			t := TimeToImpact(a, b)
			if t < 0 || t > p.Horizon {
				continue
			}
			p.predictions = append(p.predictions, Prediction{A: info.Object, B: nh, Time: t, WillCollide: true})
			p.imminent[spatial.MakePair(info.Object, nh)] = struct{}{}
		}
	}
}

// Imminent reports whether pair was predicted on the last run.
func (p *Predictor) Imminent(pair spatial.Pair) bool {
	_, ok := p.imminent[pair]
	return ok
}

// Predictions returns the last run's predictions.
func (p *Predictor) Predictions() []Prediction { return p.predictions }

// Len returns the number of predictions from the last run.
func (p *Predictor) Len() int { return len(p.predictions) }

// Clear drops all predictions.
func (p *Predictor) Clear() {
	p.predictions = p.predictions[:0]
	clear(p.imminent)
}
