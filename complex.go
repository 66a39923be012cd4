package mandel

import (
	"fmt"
	"math"
)

// Complex is an immutable complex number. Every operation returns a fresh value.
type Complex struct {
	Re, Im float64
}

// Square returns a².
func (a Complex) Square() Complex {
	return Complex{Re: a.Re*a.Re - a.Im*a.Im, Im: 2 * a.Re * a.Im}
}

// Magnitude returns the distance from the origin.
func (a Complex) Magnitude() float64 {
	return math.Sqrt(a.Re*a.Re + a.Im*a.Im)
}

// Add returns the component-wise sum a + b.
func (a Complex) Add(b Complex) Complex {
	return Complex{Re: a.Re + b.Re, Im: a.Im + b.Im}
}

// Iterate performs one step of the Mandelbrot recurrence z ← z² + c.
func (a Complex) Iterate(c Complex) Complex {
	return a.Square().Add(c)
}

func (a Complex) String() string {
	if a.Im < 0 {
		return fmt.Sprintf("(%g - %gi)", a.Re, -a.Im)
	}
	return fmt.Sprintf("(%g + %gi)", a.Re, a.Im)
}
