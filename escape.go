package mandel

const (
	// Bounded is returned by EscapeIterations for points whose orbit stayed
	// within the escape radius for the whole iteration budget.
	Bounded = -1

	// DefaultMaxIterations is the iteration budget used when none is configured.
	DefaultMaxIterations = 500

	escapeRadius = 2.0
)

// EscapeIterations reports the step at which the orbit of c leaves the disk of
// radius 2, or Bounded if it never does within maxIterations steps.
//
// The orbit starts at z0 = c rather than 0, so every c with |c| > 2 escapes at
// step 0. NaN inputs never compare greater than the radius and therefore run
// the full budget and report Bounded.
func EscapeIterations(c Complex, maxIterations int) int {
	z := c
	for i := 0; i < maxIterations; i++ {
		z = z.Iterate(c)
		if z.Magnitude() > escapeRadius {
			return i
		}
	}
	return Bounded
}
