// Package brent provides scalar function minimization over a bracketing
// interval, combining golden-section search with successive parabolic
// interpolation (Richard Brent's LOCALMIN). Boosting uses it to refine leaf
// constants against custom loss functions; it knows nothing about trees.
package brent

import "math"

// invGold is the squared inverse of the golden ratio.
var invGold = 0.5 * (3.0 - math.Sqrt(5.0))

// LocalMin seeks a local minimizer of f in [a, b]. eps should be no smaller
// than the square root of the relative machine precision; t is a positive
// absolute error tolerance. It returns the approximate minimizer and the
// function value there. f is never evaluated at two points closer together
// than eps*|x| + t/3.
func LocalMin(a, b, eps, t float64, f func(x float64) float64) (x, fx float64) {
	if a > b {
		a, b = b, a
	}

	sa, sb := a, b
	x = sa + invGold*(b-a)
	w, v := x, x
	e := 0.0
	d := 0.0
	fx = f(x)
	fw, fv := fx, fx

	for {
		m := 0.5 * (sa + sb)
		tol := eps*math.Abs(x) + t
		t2 := 2.0 * tol

		// Converged when x is within t2 of the midpoint and the interval
		// has shrunk below 2*t2.
		if math.Abs(x-m) <= t2-0.5*(sb-sa) {
			return x, fx
		}

		r, q, p := 0.0, 0.0, 0.0
		if math.Abs(e) > tol {
			// Fit a parabola through x, v, w.
			r = (x - w) * (fx - fv)
			q = (x - v) * (fx - fw)
			p = (x-v)*q - (x-w)*r
			q = 2.0 * (q - r)
			if q > 0.0 {
				p = -p
			}
			q = math.Abs(q)
			r, e = e, d
		}

		if math.Abs(p) < math.Abs(0.5*q*r) && p > q*(sa-x) && p < q*(sb-x) {
			// Parabolic interpolation step.
			d = p / q
			u := x + d
			if u-sa < t2 || sb-u < t2 {
				if x < m {
					d = tol
				} else {
					d = -tol
				}
			}
		} else {
			// Golden-section step.
			if x < m {
				e = sb - x
			} else {
				e = sa - x
			}
			d = invGold * e
		}

		var u float64
		if math.Abs(d) >= tol {
			u = x + d
		} else if d > 0.0 {
			u = x + tol
		} else {
			u = x - tol
		}

		fu := f(u)

		if fu <= fx {
			if u < x {
				sb = x
			} else {
				sa = x
			}
			v, fv = w, fw
			w, fw = x, fx
			x, fx = u, fu
		} else {
			if u < x {
				sa = u
			} else {
				sb = u
			}
			if fu <= fw || w == x {
				v, fv = w, fw
				w, fw = u, fu
			} else if fu <= fv || v == x || v == w {
				v, fv = u, fu
			}
		}
	}
}
