package backtest

// Epsilon is the tolerance for all numeric comparisons in signal evaluation.
// Chained indicator math accumulates floating-point noise well above exact
// equality but below this bound.
const Epsilon = 1e-8

func GreaterThan(a, b float64) bool {
	return a-b > Epsilon
}

func LessThan(a, b float64) bool {
	return b-a > Epsilon
}

func GreaterThanOrEqual(a, b float64) bool {
	return a-b > -Epsilon
}

func LessThanOrEqual(a, b float64) bool {
	return b-a > -Epsilon
}

// CrossesAbove reports a cross of series a over series b between the prior
// and current bar: at-or-below before, strictly above now.
func CrossesAbove(prevA, prevB, curA, curB float64) bool {
	return LessThanOrEqual(prevA, prevB) && GreaterThan(curA, curB)
}

func CrossesBelow(prevA, prevB, curA, curB float64) bool {
	return GreaterThanOrEqual(prevA, prevB) && LessThan(curA, curB)
}
