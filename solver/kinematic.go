package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/model"
)

var (
	// ErrInput is returned when sample counts disagree with the geometry.
	ErrInput = errors.New("solver: invalid input")

	// ErrDiverged is returned when a result contains NaN or Inf.
	ErrDiverged = errors.New("solver: result not finite")
)

const (
	// DefaultWidth is the sensitivity kernel half-width in cells.
	DefaultWidth = 2.0

	kernelCutoff = 1e-4
)

// Kinematic is a straight-ray delay-and-sum solver. The zero value is not
// usable; call NewKinematic.
type Kinematic struct {
	width float64
}

// Option configures a Kinematic solver.
type Option func(*Kinematic)

// WithWidth sets the Born kernel half-width in cells.
func WithWidth(cells float64) Option {
	return func(k *Kinematic) {
		if cells > 0 {
			k.width = cells
		}
	}
}

// NewKinematic returns a solver.
func NewKinematic(optFns ...Option) *Kinematic {
	k := &Kinematic{width: DefaultWidth}
	for _, fn := range optFns {
		fn(k)
	}
	return k
}

// ray is one source-receiver pair.
type ray struct {
	shift float64 // delay in samples
	amp   float32
}

func checkSampling(src, rec geometry.Shot, nsrc, nrec int) error {
	if src.NT != rec.NT {
		return fmt.Errorf("%w: source nt %d, receiver nt %d", ErrInput, src.NT, rec.NT)
	}
	if nsrc != src.Samples() {
		return fmt.Errorf("%w: %d source samples, geometry needs %d", ErrInput, nsrc, src.Samples())
	}
	if nrec != rec.Samples() {
		return fmt.Errorf("%w: %d receiver samples, geometry needs %d", ErrInput, nrec, rec.Samples())
	}
	return nil
}

func minSpacing(g model.Grid) float64 {
	h := math.Inf(1)
	for _, s := range g.Spacing {
		h = math.Min(h, s)
	}
	return h
}

func distance(g model.Grid, x0, y0, z0, x1, y1, z1 float64) float64 {
	dx, dz := x1-x0, z1-z0
	if g.Dims() == 2 {
		return math.Hypot(dx, dz)
	}
	dy := y1 - y0
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// traceRay integrates slowness (s/km) along the segment. The result is the
// delay in samples of width dt (ms) and the spreading amplitude.
func traceRay(m *model.Model, dt float64, x0, y0, z0, x1, y1, z1 float64) ray {
	g := m.Grid()
	h := minSpacing(g)
	dist := distance(g, x0, y0, z0, x1, y1, z1)
	n := max(2, int(math.Ceil(dist/h))+1)

	var sum float64
	for j := range n {
		f := float64(j) / float64(n-1)
		c := g.Nearest(x0+f*(x1-x0), y0+f*(y1-y0), z0+f*(z1-z0))
		sum += math.Sqrt(float64(m.M[c]))
	}
	// metres * s/km = ms
	tau := dist * sum / float64(n)
	return ray{
		shift: tau / dt,
		amp:   float32(1 / math.Sqrt(1+dist/h)),
	}
}

func (k *Kinematic) rays(m *model.Model, src, rec geometry.Shot) []ray {
	out := make([]ray, src.N()*rec.N())
	for s := range src.N() {
		for r := range rec.N() {
			out[s*rec.N()+r] = traceRay(m, src.Dt, src.X[s], src.Y[s], src.Z[s], rec.X[r], rec.Y[r], rec.Z[r])
		}
	}
	return out
}

// delayAdd adds scale times w delayed by shift samples to out, using linear
// interpolation between neighbouring samples.
func delayAdd(out, w []float32, shift float64, scale float32) {
	k := int(math.Floor(shift))
	a := float32(shift - float64(k))
	b := 1 - a
	nt := len(out)
	for t := range nt {
		var v float32
		if i := t - k; i >= 0 && i < nt {
			v += b * w[i]
		}
		if i := t - k - 1; i >= 0 && i < nt {
			v += a * w[i]
		}
		out[t] += scale * v
	}
}

// delayAddT is the transpose of delayAdd: it adds scale times the advanced
// d into w.
func delayAddT(w, d []float32, shift float64, scale float32) {
	k := int(math.Floor(shift))
	a := float32(shift - float64(k))
	b := 1 - a
	nt := len(d)
	for t := range nt {
		v := scale * d[t]
		if i := t - k; i >= 0 && i < nt {
			w[i] += b * v
		}
		if i := t - k - 1; i >= 0 && i < nt {
			w[i] += a * v
		}
	}
}

// secondDerivative returns the centred second difference of q in 1/ms².
// Samples outside the trace are zero.
func secondDerivative(q []float32, dt float64) []float32 {
	out := make([]float32, len(q))
	inv := float32(1 / (dt * dt))
	for t := range q {
		var prev, next float32
		if t > 0 {
			prev = q[t-1]
		}
		if t+1 < len(q) {
			next = q[t+1]
		}
		out[t] = (next - 2*q[t] + prev) * inv
	}
	return out
}

// secondDerivativeT is the transpose of secondDerivative.
func secondDerivativeT(d []float32, dt float64) []float32 {
	// The centred stencil with zero boundaries is symmetric.
	return secondDerivative(d, dt)
}

func finite(xs []float32) error {
	for i, v := range xs {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: sample %d", ErrDiverged, i)
		}
	}
	return nil
}

// Forward models receiver data for the source wavelets q. q holds one
// trace per source position, rec.NT samples each, trace-major.
func (k *Kinematic) Forward(ctx context.Context, m *model.Model, src, rec geometry.Shot, q []float32) ([]float32, error) {
	out := make([]float32, rec.Samples())
	if err := checkSampling(src, rec, len(q), len(out)); err != nil {
		return nil, err
	}
	nt := rec.NT
	rays := k.rays(m, src, rec)
	for s := range src.N() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w := q[s*nt : (s+1)*nt]
		for r := range rec.N() {
			ry := rays[s*rec.N()+r]
			delayAdd(out[r*nt:(r+1)*nt], w, ry.shift, ry.amp)
		}
	}
	return out, finite(out)
}

// Adjoint maps receiver data back to the source positions.
func (k *Kinematic) Adjoint(ctx context.Context, m *model.Model, src, rec geometry.Shot, d []float32) ([]float32, error) {
	out := make([]float32, src.Samples())
	if err := checkSampling(src, rec, len(out), len(d)); err != nil {
		return nil, err
	}
	nt := rec.NT
	rays := k.rays(m, src, rec)
	for s := range src.N() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w := out[s*nt : (s+1)*nt]
		for r := range rec.N() {
			ry := rays[s*rec.N()+r]
			delayAddT(w, d[r*nt:(r+1)*nt], ry.shift, ry.amp)
		}
	}
	return out, finite(out)
}

// sensitivity is a sparse normalized kernel over grid cells.
type sensitivity struct {
	cells   []int
	weights []float32
}

func (s sensitivity) dot(field []float32) float32 {
	var sum float32
	for i, c := range s.cells {
		sum += s.weights[i] * field[c]
	}
	return sum
}

func (s sensitivity) addTo(field []float32, scale float32) {
	for i, c := range s.cells {
		field[c] += scale * s.weights[i]
	}
}

// segmentDistance returns the distance from p to the segment a-b.
func segmentDistance(p, a, b [3]float64) float64 {
	var ab, ap [3]float64
	var abab, apab float64
	for i := range 3 {
		ab[i] = b[i] - a[i]
		ap[i] = p[i] - a[i]
		abab += ab[i] * ab[i]
		apab += ap[i] * ab[i]
	}
	f := 0.0
	if abab > 0 {
		f = min(max(apab/abab, 0), 1)
	}
	var d2 float64
	for i := range 3 {
		e := ap[i] - f*ab[i]
		d2 += e * e
	}
	return math.Sqrt(d2)
}

func (k *Kinematic) kernel(g model.Grid, pos [][3]float64, a, b [3]float64, isic bool) sensitivity {
	w := k.width * minSpacing(g)
	var s sensitivity
	var total float64
	for c, p := range pos {
		d := segmentDistance(p, a, b) / w
		v := math.Exp(-d * d)
		if v < kernelCutoff {
			continue
		}
		s.cells = append(s.cells, c)
		s.weights = append(s.weights, float32(v))
		total += v
	}
	if total > 0 {
		for i, c := range s.cells {
			v := float64(s.weights[i]) / total
			if isic {
				v *= openingWeight(pos[c], a, b)
			}
			s.weights[i] = float32(v)
		}
	}
	return s
}

// openingWeight is (1 + cos φ) / 2, where φ is the angle at p between the
// directions from the source a and from the receiver b. It vanishes on the
// direct path, where the two fields travel in opposite directions.
func openingWeight(p, a, b [3]float64) float64 {
	var pa, pb [3]float64
	var na, nb, ab float64
	for i := range 3 {
		pa[i], pb[i] = p[i]-a[i], p[i]-b[i]
		na += pa[i] * pa[i]
		nb += pb[i] * pb[i]
		ab += pa[i] * pb[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return (1 + ab/math.Sqrt(na*nb)) / 2
}

// linearization selects a Born variant.
type linearization struct {
	// ISIC applies the inverse scattering imaging condition.
	ISIC bool
	// Frequencies band-limits the source-side field to these frequencies in
	// kHz. Empty keeps the time domain.
	Frequencies []float64
}

// spectrum holds the DFT basis for a set of frequencies.
type spectrum struct {
	cos, sin [][]float64
	scale    float64
}

func newSpectrum(freqs []float64, nt int, dt float64) *spectrum {
	if len(freqs) == 0 {
		return nil
	}
	s := &spectrum{
		cos:   make([][]float64, len(freqs)),
		sin:   make([][]float64, len(freqs)),
		scale: 2 / float64(nt),
	}
	for i, f := range freqs {
		s.cos[i] = make([]float64, nt)
		s.sin[i] = make([]float64, nt)
		for t := range nt {
			theta := 2 * math.Pi * f * float64(t) * dt
			s.cos[i][t], s.sin[i][t] = math.Cos(theta), math.Sin(theta)
		}
	}
	return s
}

// filter replaces x by its synthesis from the selected DFT coefficients.
func (s *spectrum) filter(x []float32) {
	out := make([]float64, len(x))
	for i := range s.cos {
		c, sn := s.cos[i], s.sin[i]
		var re, im float64
		for t, v := range x {
			re += float64(v) * c[t]
			im -= float64(v) * sn[t]
		}
		for t := range out {
			out[t] += s.scale * (re*c[t] - im*sn[t])
		}
	}
	for t, v := range out {
		x[t] = float32(v)
	}
}

func positions(g model.Grid) [][3]float64 {
	pos := make([][3]float64, g.N())
	for c := range pos {
		x, y, z := g.Position(c)
		if g.Dims() == 2 {
			y = 0
		}
		pos[c] = [3]float64{x, y, z}
	}
	return pos
}

func point(g model.Grid, x, y, z float64) [3]float64 {
	if g.Dims() == 2 {
		y = 0
	}
	return [3]float64{x, y, z}
}

// scatter calls fn for every ray with its kernel and the delayed second
// derivative of the matching source wavelet.
func (k *Kinematic) scatter(ctx context.Context, m *model.Model, src, rec geometry.Shot, q []float32, lin linearization, fn func(r int, amp float32, kern sensitivity, qdd []float32)) error {
	g := m.Grid()
	pos := positions(g)
	rays := k.rays(m, src, rec)
	nt := rec.NT
	spec := newSpectrum(lin.Frequencies, nt, src.Dt)
	delayed := make([]float32, nt)
	for s := range src.N() {
		qdd := secondDerivative(q[s*nt:(s+1)*nt], src.Dt)
		a := point(g, src.X[s], src.Y[s], src.Z[s])
		for r := range rec.N() {
			if err := ctx.Err(); err != nil {
				return err
			}
			ry := rays[s*rec.N()+r]
			kern := k.kernel(g, pos, a, point(g, rec.X[r], rec.Y[r], rec.Z[r]), lin.ISIC)
			clear(delayed)
			delayAdd(delayed, qdd, ry.shift, 1)
			if spec != nil {
				spec.filter(delayed)
			}
			fn(r, ry.amp, kern, delayed)
		}
	}
	return nil
}

// Born returns the linearized data perturbation caused by dm.
func (k *Kinematic) Born(ctx context.Context, m *model.Model, src, rec geometry.Shot, q, dm []float32) ([]float32, error) {
	return k.LinearizedBorn(ctx, m, src, rec, q, dm, false, nil)
}

// LinearizedBorn is Born with the inverse scattering imaging condition
// and/or a band-limited source-side field.
func (k *Kinematic) LinearizedBorn(ctx context.Context, m *model.Model, src, rec geometry.Shot, q, dm []float32, isic bool, freqs []float64) ([]float32, error) {
	lin := linearization{ISIC: isic, Frequencies: freqs}
	out := make([]float32, rec.Samples())
	if err := checkSampling(src, rec, len(q), len(out)); err != nil {
		return nil, err
	}
	if len(dm) != m.N() {
		return nil, fmt.Errorf("%w: perturbation has %d cells, model has %d", ErrInput, len(dm), m.N())
	}
	nt := rec.NT
	err := k.scatter(ctx, m, src, rec, q, lin, func(r int, amp float32, kern sensitivity, qdd []float32) {
		c := -amp * kern.dot(dm)
		if c == 0 {
			return
		}
		trace := out[r*nt : (r+1)*nt]
		for t, v := range qdd {
			trace[t] += c * v
		}
	})
	if err != nil {
		return nil, err
	}
	return out, finite(out)
}

// Gradient returns the adjoint of Born applied to the residual res.
func (k *Kinematic) Gradient(ctx context.Context, m *model.Model, src, rec geometry.Shot, q, res []float32) ([]float32, error) {
	return k.LinearizedGradient(ctx, m, src, rec, q, res, false, nil)
}

// LinearizedGradient is the adjoint of LinearizedBorn with the same
// settings.
func (k *Kinematic) LinearizedGradient(ctx context.Context, m *model.Model, src, rec geometry.Shot, q, res []float32, isic bool, freqs []float64) ([]float32, error) {
	lin := linearization{ISIC: isic, Frequencies: freqs}
	if err := checkSampling(src, rec, len(q), len(res)); err != nil {
		return nil, err
	}
	g := make([]float32, m.N())
	nt := rec.NT
	err := k.scatter(ctx, m, src, rec, q, lin, func(r int, amp float32, kern sensitivity, qdd []float32) {
		trace := res[r*nt : (r+1)*nt]
		var corr float32
		for t, v := range qdd {
			corr += v * trace[t]
		}
		if corr != 0 {
			kern.addTo(g, -amp*corr)
		}
	})
	if err != nil {
		return nil, err
	}
	return g, finite(g)
}

// Propagate integrates u_tt = f/m on every cell independently for nt steps
// of dt ms. f and the result are time-major nt x N fields.
func (k *Kinematic) Propagate(ctx context.Context, m *model.Model, nt int, dt float64, f []float32) ([]float32, error) {
	n := m.N()
	if len(f) != nt*n {
		return nil, fmt.Errorf("%w: field has %d samples, need %d", ErrInput, len(f), nt*n)
	}
	coef := stepCoefficients(m, dt)
	u := make([]float32, nt*n)
	for t := range nt {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur := u[t*n : (t+1)*n]
		src := f[t*n : (t+1)*n]
		for c := range cur {
			v := coef[c] * src[c]
			if t >= 1 {
				v += 2 * u[(t-1)*n+c]
			}
			if t >= 2 {
				v -= u[(t-2)*n+c]
			}
			cur[c] = v
		}
	}
	return u, finite(u)
}

// PropagateAdjoint is the exact transpose of Propagate: it runs the same
// recursion backwards in time.
func (k *Kinematic) PropagateAdjoint(ctx context.Context, m *model.Model, nt int, dt float64, u []float32) ([]float32, error) {
	n := m.N()
	if len(u) != nt*n {
		return nil, fmt.Errorf("%w: field has %d samples, need %d", ErrInput, len(u), nt*n)
	}
	coef := stepCoefficients(m, dt)
	w := make([]float32, nt*n)
	for t := nt - 1; t >= 0; t-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for c := range n {
			v := u[t*n+c]
			if t+1 < nt {
				v += 2 * w[(t+1)*n+c]
			}
			if t+2 < nt {
				v -= w[(t+2)*n+c]
			}
			w[t*n+c] = v
		}
	}
	for t := range nt {
		row := w[t*n : (t+1)*n]
		for c := range row {
			row[c] *= coef[c]
		}
	}
	return w, finite(w)
}

// stepCoefficients returns dt² / m per cell with dt converted to seconds.
func stepCoefficients(m *model.Model, dt float64) []float32 {
	s := dt / 1000
	coef := make([]float32, m.N())
	for c, v := range m.M {
		if v > 0 {
			coef[c] = float32(s * s / float64(v))
		}
	}
	return coef
}
