package series

import (
	"fmt"
	"math"
	"sort"
)

func nan() float64 { return math.NaN() }

// Mean returns the arithmetic mean of values, or NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return nan()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Std returns the sample standard deviation of values. Fewer than two
// samples yield 0, a degenerate-but-defined reading.
func Std(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// Median returns the median of values, or NaN for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return nan()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// MAD returns the median absolute deviation of values around their median.
// A single extreme sample cannot dominate it, which is the point.
func MAD(values []float64) float64 {
	if len(values) == 0 {
		return nan()
	}
	med := Median(values)
	dev := make([]float64, len(values))
	for i, v := range values {
		dev[i] = math.Abs(v - med)
	}
	return Median(dev)
}

// Pearson returns the Pearson correlation coefficient between x and y over
// their finite pairs. Pairs where either side is NaN are skipped. Fewer
// than two finite pairs, or zero variance on either side, is
// ErrInsufficientData.
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: %d vs %d points", ErrInvalidInput, len(x), len(y))
	}
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	n := len(xs)
	if n < 2 {
		return 0, fmt.Errorf("%w: %d overlapping points for correlation", ErrInsufficientData, n)
	}
	mx, my := Mean(xs), Mean(ys)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, fmt.Errorf("%w: zero variance in correlation input", ErrInsufficientData)
	}
	return sxy / math.Sqrt(sxx*syy), nil
}

// PearsonPValue returns the two-sided p-value for a Pearson correlation r
// computed over n samples, using the exact Student-t relation with n-2
// degrees of freedom. n <= 2 or a NaN r yields 1 (no evidence of a
// relationship); |r| >= 1 yields the degenerate p of 0.
func PearsonPValue(r float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	if math.IsNaN(r) {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	// Two-sided: P(|T| > t) for T ~ t(df), via the regularized incomplete
	// beta identity P = I_{df/(df+t^2)}(df/2, 1/2).
	return regIncBeta(df/2, 0.5, df/(df+t*t))
}

// regIncBeta computes the regularized incomplete beta function I_x(a, b)
// with the continued-fraction expansion (Lentz's method).
func regIncBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	lnBeta := lgamma(a+b) - lgamma(a) - lgamma(b)
	front := math.Exp(math.Log(x)*a+math.Log(1-x)*b+lnBeta) / a
	if x > (a+1)/(a+b+2) {
		// Use the symmetry relation for faster convergence.
		return 1 - regIncBeta(b, a, 1-x)
	}

	const (
		maxIterations = 200
		epsilon       = 1e-14
		tiny          = 1e-30
	)
	f, c, d := 1.0, 1.0, 0.0
	for i := 0; i <= maxIterations; i++ {
		m := i / 2
		var numerator float64
		switch {
		case i == 0:
			numerator = 1
		case i%2 == 0:
			numerator = float64(m) * (b - float64(m)) * x / ((a + 2*float64(m) - 1) * (a + 2*float64(m)))
		default:
			numerator = -(a + float64(m)) * (a + b + float64(m)) * x / ((a + 2*float64(m)) * (a + 2*float64(m) + 1))
		}

		d = 1 + numerator*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		d = 1 / d

		c = 1 + numerator/c
		if math.Abs(c) < tiny {
			c = tiny
		}

		f *= c * d
		if math.Abs(1-c*d) < epsilon {
			break
		}
	}
	return front * (f - 1)
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
