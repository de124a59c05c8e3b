// Package motion implements the coupled road (1D) / ground (2D) constant
// velocity Kalman filter pair and the covariance factor used to discretize
// process noise, per the shared predict/update machinery both models use.
package motion

import "gonum.org/v1/gonum/mat"

// Model is one linear-Gaussian motion model: state transition G, observation
// matrix O, and the covariance factor F used when discretizing acceleration
// noise into a state-increment covariance.
type Model struct {
	G *mat.Dense
	O *mat.Dense
	F *mat.Dense
}

// RoadModel builds the 2D on-road model (state [s, sdot]) for time step dt.
func RoadModel(dt float64) Model {
	g := mat.NewDense(2, 2, []float64{
		1, dt,
		0, 1,
	})
	o := mat.NewDense(1, 2, []float64{1, 0})
	f := mat.NewDense(2, 1, []float64{dt * dt / 2, dt})
	return Model{G: g, O: o, F: f}
}

// GroundModel builds the 4D off-road model (state [x, xdot, y, ydot]) for
// time step dt: two independent constant-velocity submodels, one per axis,
// laid out block-diagonally.
func GroundModel(dt float64) Model {
	g := mat.NewDense(4, 4, []float64{
		1, dt, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, dt,
		0, 0, 0, 1,
	})
	o := mat.NewDense(2, 4, []float64{
		1, 0, 0, 0,
		0, 0, 1, 0,
	})
	f := mat.NewDense(4, 2, []float64{
		dt * dt / 2, 0,
		dt, 0,
		0, dt * dt / 2,
		0, dt,
	})
	return Model{G: g, O: o, F: f}
}

// StateDim returns the state dimensionality of the model (2 for road, 4 for
// ground), derived from G's shape.
func (m Model) StateDim() int {
	r, _ := m.G.Dims()
	return r
}

// ObsDim returns the observation dimensionality (1 for road, 2 for ground).
func (m Model) ObsDim() int {
	r, _ := m.O.Dims()
	return r
}
