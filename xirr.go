package allocation

import "math"

// XIRR computes the annualized internal rate of return of an irregular
// series of dated cash flows, returned as a fraction (0.10 means 10% a
// year). Money invested in the portfolio is negative, money taken out is
// positive, and the series must hold at least one flow of each sign for a
// rate to exist.
//
// The solver walks a discount base up and down with a halving step until the
// net present value of the flows is close enough to zero, and gives up after
// a fixed number of rounds.
func XIRR(dates []Date, amounts []float64) float64 {
	if len(dates) == 0 || len(dates) != len(amounts) {
		return 0
	}

	years := make([]float64, len(dates))
	for i, date := range dates {
		years[i] = float64(date.Sub(dates[0])) / 365.0
	}

	residual := 1.0
	step := 0.05
	guess := 0.1
	epsilon := 0.0001
	limit := 10000

	for math.Abs(residual) > epsilon && limit > 0 {
		limit--

		residual = 0.0
		for i, amount := range amounts {
			residual += amount / math.Pow(guess, years[i])
		}

		if math.Abs(residual) > epsilon {
			if residual > 0 {
				guess += step
			} else {
				guess -= step
				step /= 2.0
			}
		}
	}

	// Round to two decimal places of the yearly percentage.
	return math.Round((guess-1)*10000) / 10000
}
