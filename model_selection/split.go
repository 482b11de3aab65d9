// Package model_selection splits labelled data into train and test partitions.
package model_selection

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/pricecast/pkg/errors"
)

// NewRand returns the deterministic generator used for seed-driven choices.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// TestSize returns the number of samples that go to the test partition:
// round(n*testFraction) clamped to [1, n-1].
func TestSize(n int, testFraction float64) int {
	nTest := int(math.Round(float64(n) * testFraction))
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-1 {
		nTest = n - 1
	}
	return nTest
}

// TrainTestSplit は samples を学習用とテスト用に分割する
//
// テスト集合のメンバーはシード付きの乱数順列で選ばれ、
// 両方の分割内では入力順が保持される。同じ入力と seed からは常に同じ分割が得られる。
//
// パラメータ:
//   - samples: 分割対象（2件以上）
//   - testFraction: テスト集合の割合 (0, 1)
//   - seed: 乱数シード
//
// 使用例:
//
//	train, test, err := model_selection.TrainTestSplit(records, 0.2, 0)
func TrainTestSplit[T any](samples []T, testFraction float64, seed int64) (train, test []T, err error) {
	if math.IsNaN(testFraction) || testFraction <= 0 || testFraction >= 1 {
		return nil, nil, errors.NewValidationError("testFraction", "must be in the open interval (0, 1)", testFraction)
	}
	n := len(samples)
	if n < 2 {
		return nil, nil, errors.NewValidationError("samples", "at least 2 samples are required to split", n)
	}

	nTest := TestSize(n, testFraction)
	inTest := make([]bool, n)
	for _, idx := range NewRand(seed).Perm(n)[:nTest] {
		inTest[idx] = true
	}

	train = make([]T, 0, n-nTest)
	test = make([]T, 0, nTest)
	for i, s := range samples {
		if inTest[i] {
			test = append(test, s)
		} else {
			train = append(train, s)
		}
	}
	return train, test, nil
}
