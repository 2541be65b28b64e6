// Copyright 2024 The terminos Authors
// This file is part of the terminos library.
//
// The terminos library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The terminos library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the terminos library. If not, see <http://www.gnu.org/licenses/>.

// Package difficulty implements the one-step Kalman filter the
// BlockDAG consensus uses to track network hashrate and derive the
// next block's difficulty target from the previous block's solve
// time. All arithmetic is done on math/big.Int so overflow never
// loses precision and results are bit-identical across platforms,
// which floating point cannot guarantee.
package difficulty

import (
	"math/big"

	"github.com/tos-network/terminos/internal/tlog"
)

var logger = tlog.NewModuleLogger(tlog.Difficulty)

const (
	// Shift is the fixed-point scale the filter's internal gain/noise
	// terms are expressed in.
	Shift = 28

	// MillisPerSecond converts solve times (ms) to difficulty's
	// per-second basis.
	MillisPerSecond = 1000
)

// LeftShift is 1<<Shift, the fixed-point unit ("1.0").
var LeftShift = new(big.Int).Lsh(big.NewInt(1), Shift)

// ProcessNoise is the filter's process noise covariance, Q = LeftShift
// * 3 / 100 (a conservative 3% of the fixed-point unit).
var ProcessNoise = new(big.Int).Div(new(big.Int).Mul(LeftShift, big.NewInt(3)), big.NewInt(100))

// Difficulty is a non-negative, arbitrary-width target; the BlockDAG
// consensus requires at least 128 bits of headroom (see DESIGN.md),
// which math/big.Int provides unconditionally.
type Difficulty = *big.Int

// State carries the Kalman filter's estimate and error covariance
// across blocks.
type State struct {
	Estimate   *big.Int // x, hashrate estimate scaled by BlockTimeMillis
	Covariance *big.Int // p, error covariance
}

// InitialState is the state used for a chain's first difficulty
// adjustment.
func InitialState() State {
	return State{Estimate: big.NewInt(1), Covariance: new(big.Int).Set(LeftShift)}
}

// kalmanFilter runs one scalar Kalman update:
//
//	p' = p + Q
//	k  = p' * LeftShift / (p' + LeftShift)
//	x' = xPrior + k * (z - xPrior) / LeftShift
//	p''= (LeftShift - k) * p' / LeftShift
//
// Every division is big.Int.Div, which is Euclidean: it floors on
// positive operands, and when z < xPrior the negative correction term
// rounds toward negative infinity rather than toward zero.
func kalmanFilter(z, xPrior, p *big.Int) (xNew, pNew *big.Int) {
	pPredicted := new(big.Int).Add(p, ProcessNoise)

	denom := new(big.Int).Add(pPredicted, LeftShift)
	gain := new(big.Int).Div(new(big.Int).Mul(pPredicted, LeftShift), denom)

	innovation := new(big.Int).Sub(z, xPrior)
	correction := new(big.Int).Div(new(big.Int).Mul(gain, innovation), LeftShift)
	xNew = new(big.Int).Add(xPrior, correction)

	oneMinusGain := new(big.Int).Sub(LeftShift, gain)
	pNew = new(big.Int).Div(new(big.Int).Mul(oneMinusGain, pPredicted), LeftShift)
	return xNew, pNew
}

// NextDifficulty computes the difficulty for the next block given the
// previous block's solve time, the previous difficulty, the current
// filter state, and the network's minimum difficulty floor. When the
// computed difficulty falls below the floor, it is clamped to the
// floor and the covariance is reset to LeftShift, matching the
// controller's self-recovery behavior after an outlier solve time.
func NextDifficulty(solveTimeMillis int64, previousDifficulty Difficulty, state State, blockTimeMillis int64, minimumDifficulty Difficulty) (Difficulty, State) {
	if solveTimeMillis <= 0 {
		solveTimeMillis = 1
	}
	z := new(big.Int).Div(new(big.Int).Mul(previousDifficulty, big.NewInt(MillisPerSecond)), big.NewInt(solveTimeMillis))

	xPrior := new(big.Int).Div(new(big.Int).Mul(previousDifficulty, big.NewInt(MillisPerSecond)), big.NewInt(blockTimeMillis))

	xNew, pNew := kalmanFilter(z, xPrior, state.Covariance)

	nextDifficulty := new(big.Int).Div(new(big.Int).Mul(xNew, big.NewInt(blockTimeMillis)), big.NewInt(MillisPerSecond))

	if nextDifficulty.Cmp(minimumDifficulty) < 0 {
		logger.Debug("difficulty below minimum, clamping", "computed", nextDifficulty.String(), "minimum", minimumDifficulty.String())
		return new(big.Int).Set(minimumDifficulty), State{Estimate: xNew, Covariance: new(big.Int).Set(LeftShift)}
	}

	return nextDifficulty, State{Estimate: xNew, Covariance: pNew}
}
