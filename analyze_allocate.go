package allocation

import (
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Allocate distributes the unallocated cash of an account over its assets.
//
// The cash is spread, via what-ifs, so that the relative difference between
// the actual and the desired allocation of every asset class is as small as
// possible. Negative cash withdraws money from the assets instead. With
// rebalance set, all the money of the account is first withdrawn and then
// reallocated from scratch, so money moves freely between assets.
//
// Assets mapped to an asset class with a zero desired ratio never receive
// new money. On withdrawals they are drained first, before touching the
// other assets.
//
// The applied changes are regular what-ifs and can be reverted with
// Portfolio.ResetWhatIfs.
type Allocate struct {
	accountName   string
	excludeAssets []string
	rebalance     bool
}

// NewAllocate returns an allocator for the named account. Assets listed in
// excludeAssets (by short name) are left untouched.
func NewAllocate(accountName string, excludeAssets []string, rebalance bool) *Allocate {
	return &Allocate{
		accountName:   accountName,
		excludeAssets: excludeAssets,
		rebalance:     rebalance,
	}
}

// AllocateRow is the total hypothetical money moved into (positive) or out
// of (negative) one asset by Analyze.
type AllocateRow struct {
	ShortName string
	Delta     Money
}

// Analyze allocates the account's available cash and returns the resulting
// per-asset deltas. The portfolio is modified: the deltas are applied to the
// assets as what-ifs.
func (a *Allocate) Analyze(portfolio *Portfolio) ([]AllocateRow, error) {
	account, err := portfolio.GetAccount(a.accountName)
	if err != nil {
		return nil, err
	}
	cash := account.AvailableCash().AsFloat()
	if cash == 0 && !a.rebalance {
		return nil, validationErrorf("no available cash to allocate in %s", a.accountName)
	}

	var assets []Asset
	for _, asset := range account.Assets() {
		if !slices.Contains(a.excludeAssets, asset.ShortName()) {
			assets = append(assets, asset)
		}
	}
	if len(assets) == 0 {
		return nil, validationErrorf("no assets to allocate cash to")
	}

	saved := make(map[string]float64)
	if a.rebalance {
		// Withdraw everything, the solver reallocates from scratch.
		for _, asset := range assets {
			value, err := asset.AdjustedValue()
			if err != nil {
				return nil, err
			}
			saved[asset.ShortName()] = -value.AsFloat()
			if err := portfolio.WhatIf(a.accountName, asset.ShortName(), value.Neg()); err != nil {
				return nil, err
			}
		}
		cash = account.AvailableCash().AsFloat()
	}

	total := 0.0
	for _, asset := range assets {
		value, err := asset.AdjustedValue()
		if err != nil {
			return nil, err
		}
		total += value.AsFloat()
	}
	if math.Abs(total+cash) < deltaTolerance {
		// The withdrawal empties the account, drain every asset.
		deltas := make([]float64, len(assets))
		for i, asset := range assets {
			value, err := asset.AdjustedValue()
			if err != nil {
				return nil, err
			}
			deltas[i] = -value.AsFloat()
		}
		return a.applyWhatIfs(portfolio, assets, deltas, nil, nil)
	}
	if -cash >= total {
		return nil, validationErrorf("cash to withdraw (%s) is more than the total available money in the account (%s)",
			Dollars(-cash).Round(), Dollars(total).Round())
	}

	entries, err := portfolio.AssetAllocation(portfolio.LeafNames())
	if err != nil {
		return nil, err
	}
	var classes []string
	var desired, money []float64
	zeroRatio := make(map[string]bool)
	for _, entry := range entries {
		if math.Abs(entry.DesiredRatio) < ratioTolerance {
			zeroRatio[entry.Name] = true
			continue
		}
		classes = append(classes, entry.Name)
		desired = append(desired, entry.DesiredRatio)
		money = append(money, entry.Value)
	}

	var zeroRatioAssets []Asset
	var filtered []Asset
	for _, asset := range assets {
		if hasZeroRatioClass(asset, zeroRatio) {
			zeroRatioAssets = append(zeroRatioAssets, asset)
		} else {
			filtered = append(filtered, asset)
		}
	}
	assets = filtered

	if cash < 0 && !a.rebalance {
		// Zero desired ratio means the asset should not be held at all,
		// drain those first.
		for _, asset := range zeroRatioAssets {
			value, err := asset.AdjustedValue()
			if err != nil {
				return nil, err
			}
			withdraw := math.Min(-cash, value.AsFloat())
			saved[asset.ShortName()] = -withdraw
			if err := portfolio.WhatIf(a.accountName, asset.ShortName(), Dollars(-withdraw)); err != nil {
				return nil, err
			}
			cash += withdraw
		}
	}

	totalValue, err := portfolio.TotalValue()
	if err != nil {
		return nil, err
	}
	solver, err := newCashSolver(classes, desired, money, assets, cash, totalValue.AsFloat())
	if err != nil {
		return nil, err
	}
	deltas, err := solver.solve()
	if err != nil {
		return nil, err
	}
	return a.applyWhatIfs(portfolio, assets, deltas, saved, zeroRatioAssets)
}

// hasZeroRatioClass reports whether the asset maps money to any of the
// zero-desired-ratio asset classes.
func hasZeroRatioClass(asset Asset, zeroRatio map[string]bool) bool {
	for class := range asset.ClassRatios() {
		if zeroRatio[class] {
			return true
		}
	}
	return false
}

// applyWhatIfs applies the deltas to the assets and builds the report rows.
// The reported delta of an asset includes the money already moved before the
// solver ran (rebalance withdrawals and zero-ratio drains).
func (a *Allocate) applyWhatIfs(portfolio *Portfolio, assets []Asset, deltas []float64, saved map[string]float64, zeroRatioAssets []Asset) ([]AllocateRow, error) {
	var rows []AllocateRow
	for i, asset := range assets {
		if err := portfolio.WhatIf(a.accountName, asset.ShortName(), Dollars(deltas[i])); err != nil {
			return nil, err
		}
		rows = append(rows, AllocateRow{
			ShortName: asset.ShortName(),
			Delta:     Dollars(deltas[i] + saved[asset.ShortName()]),
		})
	}
	for _, asset := range zeroRatioAssets {
		rows = append(rows, AllocateRow{
			ShortName: asset.ShortName(),
			Delta:     Dollars(saved[asset.ShortName()]),
		})
	}
	return rows, nil
}

// cashSolver spreads cash over assets, minimizing the squared relative error
// between the actual and the desired money of every asset class.
//
// With f_i the money in asset i, x_i the money added to it, a_ij the ratio
// of asset i mapped to class j, d_j the desired ratio of class j and T the
// portfolio total, the solver minimizes
//
//	E = sum_j (A_j/(d_j*T) - 1)^2  where  A_j = sum_i a_ij*(f_i + x_i)
//
// subject to sum_i x_i = cash. It walks the error gradient: starting from
// the asset with the best dE/dx_i, money is moved until that derivative
// matches the next best asset's, then both grow together, and so on until
// either the cash runs out or all assets share the same derivative, at which
// point the remaining cash is spread keeping the derivatives equal. On
// withdrawals an asset is never driven below zero: it is drained, dropped
// from the walk, and the remaining assets cover the difference.
type cashSolver struct {
	desired []float64   // desired ratio per asset class
	money   []float64   // current money per asset class
	alloc   [][]float64 // alloc[i][j] is the ratio of asset i in class j
	values  []float64   // adjusted value per asset
	cash    float64
	total   float64
}

func newCashSolver(classes []string, desired, money []float64, assets []Asset, cash, total float64) (*cashSolver, error) {
	s := &cashSolver{
		desired: desired,
		money:   money,
		alloc:   make([][]float64, len(assets)),
		values:  make([]float64, len(assets)),
		cash:    cash,
		total:   total,
	}
	index := make(map[string]int, len(classes))
	for j, name := range classes {
		index[name] = j
	}
	for i, asset := range assets {
		s.alloc[i] = make([]float64, len(classes))
		for class, ratio := range asset.ClassRatios() {
			j, ok := index[class]
			if !ok {
				return nil, validationErrorf("desired ratio of asset class %s cannot be zero", class)
			}
			s.alloc[i][j] = ratio
		}
		value, err := asset.AdjustedValue()
		if err != nil {
			return nil, err
		}
		s.values[i] = value.AsFloat()
	}
	return s, nil
}

// derivative computes dE/dx_i, up to a constant 2/T factor common to all
// assets.
func (s *cashSolver) derivative(i int) float64 {
	sum := 0.0
	for j := range s.desired {
		relRatio := s.money[j]/(s.desired[j]*s.total) - 1
		sum += relRatio * s.alloc[i][j] / s.desired[j]
	}
	return sum
}

// bestIdx returns the index of the lowest derivative when adding cash, of
// the highest when withdrawing. Ties go to the first entry.
func (s *cashSolver) bestIdx(derivs []float64) int {
	if s.cash > 0 {
		return floats.MinIdx(derivs)
	}
	return floats.MaxIdx(derivs)
}

// bestOf returns the candidate asset with the best derivative.
func (s *cashSolver) bestOf(candidates []int) int {
	derivs := make([]float64, len(candidates))
	for i, idx := range candidates {
		derivs[i] = s.derivative(idx)
	}
	return candidates[s.bestIdx(derivs)]
}

// updateClasses folds the per-asset deltas back into the per-class money.
func (s *cashSolver) updateClasses(deltas []float64) {
	for i, delta := range deltas {
		if delta == 0 {
			continue
		}
		for j := range s.desired {
			s.money[j] += s.alloc[i][j] * delta
		}
	}
}

// computeDelta solves for the money to move into the source assets so that
// their error derivative matches the target asset's. It returns the deltas,
// indexed like s.values, and the common derivative reached.
func (s *cashSolver) computeDelta(source []int, target int) ([]float64, float64) {
	alpha := s.derivative(target)
	a := mat.NewDense(len(source), len(source), nil)
	b := mat.NewVecDense(len(source), nil)
	for ii, i := range source {
		for kk, k := range source {
			coeff := 0.0
			for j := range s.desired {
				coeff += s.alloc[k][j] / (s.desired[j] * s.desired[j]) * (s.alloc[i][j] - s.alloc[target][j])
			}
			a.Set(ii, kk, coeff)
		}
		constant := s.total * alpha
		for j := range s.desired {
			constant += s.alloc[i][j] / (s.desired[j] * s.desired[j]) * (s.desired[j]*s.total - s.money[j])
		}
		b.SetVec(ii, constant)
	}

	solution := leastSquares(a, b)
	x := make([]float64, len(s.values))
	final := alpha
	for kk, k := range source {
		x[k] = solution[kk]
		sum := 0.0
		for j := range s.desired {
			sum += s.alloc[target][j] * s.alloc[k][j] / (s.desired[j] * s.desired[j])
		}
		final += sum * x[k] / s.total
	}
	return x, final
}

// allocateAll spreads cash over the equal-gradient assets while keeping
// their derivatives equal. It solves for deltas raising every derivative by
// the same arbitrary amount, then rescales them to sum to cash.
func (s *cashSolver) allocateAll(cash float64, equal []int) []float64 {
	a := mat.NewDense(len(equal), len(equal), nil)
	b := mat.NewVecDense(len(equal), nil)
	for ii, i := range equal {
		for kk, k := range equal {
			coeff := 0.0
			for j := range s.desired {
				coeff += s.alloc[i][j] * s.alloc[k][j] / (s.desired[j] * s.desired[j])
			}
			a.Set(ii, kk, coeff)
		}
		b.SetVec(ii, 0.1*s.total)
	}
	x := leastSquares(a, b)
	floats.Scale(cash/floats.Sum(x), x)

	deltas := make([]float64, len(s.values))
	for ii, i := range equal {
		deltas[i] = x[ii]
	}
	return deltas
}

// boundAtZero checks that applying x+deltas does not drive any asset below
// zero. When it would, the offending assets are drained instead, moved from
// equal to zeroed, and the corrected deltas are returned. It returns nil
// when no bound is hit. Adding cash never hits a bound.
func (s *cashSolver) boundAtZero(x, deltas []float64, equal, zeroed map[int]bool) []float64 {
	if s.cash > 0 {
		return nil
	}

	newDeltas := make([]float64, len(deltas))
	adjusted := false
	for i := range equal {
		removed := -(x[i] + deltas[i])
		if removed > s.values[i] {
			newDeltas[i] = -(s.values[i] + x[i])
			zeroed[i] = true
			adjusted = true
		}
	}
	for i := range zeroed {
		delete(equal, i)
	}
	if !adjusted {
		return nil
	}
	return newDeltas
}

// solve returns the per-asset deltas summing to the solver's cash.
func (s *cashSolver) solve() ([]float64, error) {
	n := len(s.values)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	equal := map[int]bool{s.bestOf(all): true}
	zeroed := make(map[int]bool)
	x := make([]float64, n)
	left := s.cash

	for len(equal)+len(zeroed) != n && math.Abs(left) > deltaTolerance {
		if len(equal) == 0 {
			// All equal-gradient assets were drained, restart the walk
			// from the best remaining one.
			var candidates []int
			for i := range n {
				if !zeroed[i] {
					candidates = append(candidates, i)
				}
			}
			equal[s.bestOf(candidates)] = true
		}
		source := slices.Sorted(maps.Keys(equal))

		// Pick the target whose derivative the walk reaches first.
		var derivs []float64
		var deltas [][]float64
		var targets []int
		for i := range n {
			if equal[i] {
				continue
			}
			delta, deriv := s.computeDelta(source, i)
			deltas = append(deltas, delta)
			derivs = append(derivs, deriv)
			targets = append(targets, i)
		}
		if len(targets) == 0 {
			break
		}
		pick := s.bestIdx(derivs)
		best := deltas[pick]
		newCash := floats.Sum(best)
		if math.Abs(newCash) >= math.Abs(left) {
			floats.Scale(left/newCash, best)
			newCash = left
		}

		bounded := s.boundAtZero(x, best, equal, zeroed)
		if bounded != nil {
			best = bounded
			newCash = floats.Sum(bounded)
		}
		floats.Add(x, best)
		s.updateClasses(best)
		left -= newCash
		if bounded == nil {
			equal[targets[pick]] = true
		}
	}

	for math.Abs(left) > deltaTolerance {
		if len(equal) == 0 {
			return nil, validationErrorf("unable to allocate the remaining cash (%s left)", Dollars(left).Round())
		}
		deltas := s.allocateAll(left, slices.Sorted(maps.Keys(equal)))
		if bounded := s.boundAtZero(x, deltas, equal, zeroed); bounded != nil {
			deltas = bounded
		}
		floats.Add(x, deltas)
		s.updateClasses(deltas)
		left -= floats.Sum(deltas)
	}

	return x, nil
}

// leastSquares returns the minimum-norm least squares solution of a*x = b.
// Minimum-norm matters: two identical assets make the system singular, and
// the minimum-norm solution splits the money equally between them.
func leastSquares(a *mat.Dense, b *mat.VecDense) []float64 {
	rows, cols := a.Dims()
	out := make([]float64, cols)

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return out
	}
	values := svd.Values(nil)
	eps := math.Nextafter(1, 2) - 1
	cutoff := float64(max(rows, cols)) * eps * values[0]
	rank := 0
	for _, v := range values {
		if v > cutoff {
			rank++
		}
	}
	if rank == 0 {
		return out
	}

	var x mat.VecDense
	svd.SolveVecTo(&x, b, rank)
	for i := range out {
		out[i] = x.AtVec(i)
	}
	return out
}
