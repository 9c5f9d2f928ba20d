// Package kalman implements a small unscented (sigma-point) filter.
//
// The filter is deliberately model-agnostic: the process model and the
// measurement model are passed in as plain functions on every call. Callers
// that must agree on an observation formula (the per-team filter and the
// standalone outcome predictor) can therefore share literally the same
// function value instead of keeping two copies in sync.
package kalman

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Default unscented-transform parameters. Beta = 2 is optimal for Gaussian
// priors; a mildly positive kappa keeps every sigma weight positive for the
// seven-dimensional state, which avoids gratuitous covariance repairs.
const (
	defaultAlpha = 1.0
	defaultBeta  = 2.0
	defaultKappa = 0.5

	// minEigenvalue is the floor applied when repairing a covariance that
	// lost positive semi-definiteness to rounding or an outlier update.
	minEigenvalue = 1e-9
)

// ProcessFunc advances one state vector a single time step.
// It must not mutate its argument; it returns a fresh slice.
type ProcessFunc func(x []float64) []float64

// MeasurementFunc maps a state vector to the expected observation vector.
type MeasurementFunc func(x []float64) []float64

// UpdateStats reports what a measurement update did to the filter.
type UpdateStats struct {
	// Innovation is observed minus expected, per observation component.
	Innovation []float64
	// Repaired is true if the covariance needed numerical repair.
	Repaired bool
	// Rejected is true if the update produced non-finite values and was
	// rolled back entirely.
	Rejected bool
}

// Option applies a configuration option to the Filter.
type Option func(*Filter)

// WithAlpha sets the sigma-point spread parameter.
func WithAlpha(alpha float64) Option {
	return func(f *Filter) {
		if alpha > 0 {
			f.alpha = alpha
		}
	}
}

// WithKappa sets the secondary scaling parameter.
func WithKappa(kappa float64) Option {
	return func(f *Filter) {
		f.kappa = kappa
	}
}

// Filter is an unscented Kalman filter over a real state vector.
// It is not safe for concurrent use; callers serialize access.
type Filter struct {
	dim int
	x   *mat.VecDense
	p   *mat.SymDense

	alpha float64
	beta  float64
	kappa float64

	repairs int
}

// New creates a filter with the given initial state and diagonal covariance.
func New(state []float64, varDiag []float64, opts ...Option) *Filter {
	n := len(state)
	p := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		p.SetSym(i, i, varDiag[i])
	}
	f := &Filter{
		dim:   n,
		x:     mat.NewVecDense(n, append([]float64(nil), state...)),
		p:     p,
		alpha: defaultAlpha,
		beta:  defaultBeta,
		kappa: defaultKappa,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dim returns the state dimension.
func (f *Filter) Dim() int { return f.dim }

// State returns a copy of the current state estimate.
func (f *Filter) State() []float64 {
	out := make([]float64, f.dim)
	for i := 0; i < f.dim; i++ {
		out[i] = f.x.AtVec(i)
	}
	return out
}

// SetComponent overwrites a single state component. Used for components that
// are driven by an external signal rather than by the measurement update.
func (f *Filter) SetComponent(i int, v float64) {
	f.x.SetVec(i, v)
}

// VarDiag returns a copy of the covariance diagonal.
func (f *Filter) VarDiag() []float64 {
	out := make([]float64, f.dim)
	for i := 0; i < f.dim; i++ {
		out[i] = f.p.At(i, i)
	}
	return out
}

// Cov returns a copy of the full covariance matrix.
func (f *Filter) Cov() *mat.SymDense {
	out := mat.NewSymDense(f.dim, nil)
	out.CopySym(f.p)
	return out
}

// Repairs returns how many times the covariance needed numerical repair.
func (f *Filter) Repairs() int { return f.repairs }

// Clone returns an independent copy of the filter.
func (f *Filter) Clone() *Filter {
	c := &Filter{
		dim:     f.dim,
		x:       mat.NewVecDense(f.dim, f.State()),
		p:       mat.NewSymDense(f.dim, nil),
		alpha:   f.alpha,
		beta:    f.beta,
		kappa:   f.kappa,
		repairs: f.repairs,
	}
	c.p.CopySym(f.p)
	return c
}

// lambda is the composite scaling parameter of the scaled unscented transform.
func (f *Filter) lambda() float64 {
	n := float64(f.dim)
	return f.alpha*f.alpha*(n+f.kappa) - n
}

// weights returns the mean and covariance weights for 2n+1 sigma points.
func (f *Filter) weights() (wm, wc []float64) {
	n := float64(f.dim)
	lambda := f.lambda()
	wm = make([]float64, 2*f.dim+1)
	wc = make([]float64, 2*f.dim+1)
	wm[0] = lambda / (n + lambda)
	wc[0] = wm[0] + (1 - f.alpha*f.alpha + f.beta)
	for i := 1; i < len(wm); i++ {
		wm[i] = 1 / (2 * (n + lambda))
		wc[i] = wm[i]
	}
	return wm, wc
}

// sigmaPoints generates the 2n+1 sigma points for the current (x, P).
// If P fails to factorize it is repaired first; if it still fails, the
// points degrade to a diagonal spread, which keeps the filter alive.
func (f *Filter) sigmaPoints() [][]float64 {
	n := f.dim
	scale := float64(n) + f.lambda()

	scaled := mat.NewSymDense(n, nil)
	scaled.CopySym(f.p)
	scaled.ScaleSym(scale, scaled)

	var chol mat.Cholesky
	if !chol.Factorize(scaled) {
		f.repair()
		scaled.CopySym(f.p)
		scaled.ScaleSym(scale, scaled)
	}

	var root mat.TriDense
	if chol.Factorize(scaled) {
		chol.LTo(&root)
	} else {
		// Diagonal fallback: spread along axes only.
		root = *mat.NewTriDense(n, mat.Lower, nil)
		for i := 0; i < n; i++ {
			root.SetTri(i, i, math.Sqrt(math.Max(scaled.At(i, i), minEigenvalue)))
		}
	}

	base := f.State()
	pts := make([][]float64, 2*n+1)
	pts[0] = base
	for i := 0; i < n; i++ {
		plus := make([]float64, n)
		minus := make([]float64, n)
		for j := 0; j < n; j++ {
			plus[j] = base[j] + root.At(j, i)
			minus[j] = base[j] - root.At(j, i)
		}
		pts[1+i] = plus
		pts[1+n+i] = minus
	}
	return pts
}

// Predict runs the time update: sigma points are propagated through the
// process model and the diagonal process noise is added afterwards.
func (f *Filter) Predict(process ProcessFunc, noiseDiag []float64) {
	n := f.dim
	wm, wc := f.weights()
	pts := f.sigmaPoints()

	propagated := make([][]float64, len(pts))
	for i, pt := range pts {
		propagated[i] = process(pt)
	}

	mean := make([]float64, n)
	for i, pt := range propagated {
		for j := 0; j < n; j++ {
			mean[j] += wm[i] * pt[j]
		}
	}

	cov := mat.NewSymDense(n, nil)
	for i, pt := range propagated {
		for r := 0; r < n; r++ {
			dr := pt[r] - mean[r]
			for c := r; c < n; c++ {
				cov.SetSym(r, c, cov.At(r, c)+wc[i]*dr*(pt[c]-mean[c]))
			}
		}
	}
	for i := 0; i < n; i++ {
		cov.SetSym(i, i, cov.At(i, i)+noiseDiag[i])
	}

	if !finiteAll(mean) || !finiteSym(cov) {
		// Keep the previous state and just inflate uncertainty.
		f.repairs++
		for i := 0; i < n; i++ {
			f.p.SetSym(i, i, f.p.At(i, i)+noiseDiag[i])
		}
		return
	}

	f.x = mat.NewVecDense(n, mean)
	f.p = cov
	f.repair()
}

// Update runs the measurement update for observation z with diagonal
// measurement noise. Degenerate arithmetic is rolled back rather than
// propagated, so the state never picks up NaN or Inf.
func (f *Filter) Update(z []float64, measure MeasurementFunc, noiseDiag []float64) UpdateStats {
	n := f.dim
	m := len(z)
	wm, wc := f.weights()
	pts := f.sigmaPoints()

	obs := make([][]float64, len(pts))
	for i, pt := range pts {
		obs[i] = measure(pt)
	}

	zhat := make([]float64, m)
	for i, y := range obs {
		for j := 0; j < m; j++ {
			zhat[j] += wm[i] * y[j]
		}
	}

	// Innovation covariance S and state-observation cross covariance C.
	s := mat.NewSymDense(m, nil)
	for j := 0; j < m; j++ {
		s.SetSym(j, j, noiseDiag[j])
	}
	cross := mat.NewDense(n, m, nil)
	base := f.State()
	for i, y := range obs {
		for r := 0; r < m; r++ {
			dr := y[r] - zhat[r]
			for c := r; c < m; c++ {
				s.SetSym(r, c, s.At(r, c)+wc[i]*dr*(y[c]-zhat[c]))
			}
		}
		for r := 0; r < n; r++ {
			dx := pts[i][r] - base[r]
			for c := 0; c < m; c++ {
				cross.Set(r, c, cross.At(r, c)+wc[i]*dx*(y[c]-zhat[c]))
			}
		}
	}

	var sInv mat.Dense
	if err := sInv.Inverse(s); err != nil {
		f.repairs++
		return UpdateStats{Rejected: true, Repaired: true}
	}

	var gain mat.Dense
	gain.Mul(cross, &sInv)

	innov := make([]float64, m)
	for j := 0; j < m; j++ {
		innov[j] = z[j] - zhat[j]
	}

	newState := make([]float64, n)
	copy(newState, base)
	for r := 0; r < n; r++ {
		for c := 0; c < m; c++ {
			newState[r] += gain.At(r, c) * innov[c]
		}
	}

	// P' = P - K S K^T
	var ks, kskt mat.Dense
	ks.Mul(&gain, s)
	kskt.Mul(&ks, gain.T())
	newCov := mat.NewSymDense(n, nil)
	for r := 0; r < n; r++ {
		for c := r; c < n; c++ {
			// Symmetrize the product while subtracting.
			v := 0.5 * (kskt.At(r, c) + kskt.At(c, r))
			newCov.SetSym(r, c, f.p.At(r, c)-v)
		}
	}

	if !finiteAll(newState) || !finiteSym(newCov) {
		f.repairs++
		f.repair()
		return UpdateStats{Innovation: innov, Rejected: true, Repaired: true}
	}

	f.x = mat.NewVecDense(n, newState)
	f.p = newCov
	repaired := f.repair()
	return UpdateStats{Innovation: innov, Repaired: repaired}
}

// repair restores symmetry and positive semi-definiteness of the covariance.
// Eigenvalues below the floor are clamped and the matrix is rebuilt; reports
// whether anything needed fixing.
func (f *Filter) repair() bool {
	n := f.dim

	var eig mat.EigenSym
	if !eig.Factorize(f.p, true) {
		// Extremely rare; fall back to a fresh diagonal.
		f.repairs++
		diag := f.VarDiag()
		f.p = mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			f.p.SetSym(i, i, math.Max(diag[i], minEigenvalue))
		}
		return true
	}

	vals := eig.Values(nil)
	clamped := false
	for i, v := range vals {
		if v < minEigenvalue {
			vals[i] = minEigenvalue
			clamped = true
		}
	}
	if !clamped {
		return false
	}
	f.repairs++

	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	rebuilt := mat.NewSymDense(n, nil)
	for r := 0; r < n; r++ {
		for c := r; c < n; c++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += vecs.At(r, k) * vals[k] * vecs.At(c, k)
			}
			rebuilt.SetSym(r, c, sum)
		}
	}
	f.p = rebuilt
	return true
}

func finiteAll(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func finiteSym(s *mat.SymDense) bool {
	n := s.SymmetricDim()
	for r := 0; r < n; r++ {
		for c := r; c < n; c++ {
			v := s.At(r, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
