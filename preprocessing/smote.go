package preprocessing

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/pkg/errors"
)

// SMOTE balances class counts by synthesizing minority-class samples.
// Each synthetic sample is an interpolation between a minority sample and
// one of its k nearest neighbours within the same class.
type SMOTE struct {
	KNeighbors int
	Seed       int
}

// NewSMOTE creates a SMOTE resampler with the conventional k=5 neighbours.
func NewSMOTE(seed int) *SMOTE {
	return &SMOTE{KNeighbors: 5, Seed: seed}
}

// FitResample oversamples every minority class up to the majority count.
// The returned matrix holds the original rows followed by the synthetic
// ones; the input is never mutated.
func (s *SMOTE) FitResample(X *mat.Dense, y []int) (*mat.Dense, []int, error) {
	r, c := X.Dims()
	if r != len(y) {
		return nil, nil, errors.NewDimensionError("SMOTE.FitResample", r, len(y), 0)
	}
	if r == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "SMOTE.FitResample")
	}

	classIndices := make(map[int][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}

	classes := make([]int, 0, len(classIndices))
	majority := 0
	for label, idx := range classIndices {
		classes = append(classes, label)
		if len(idx) > majority {
			majority = len(idx)
		}
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewPCG(uint64(s.Seed), uint64(s.Seed)))

	rows := make([][]float64, 0, r)
	labels := make([]int, 0, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		copy(row, X.RawRowView(i))
		rows = append(rows, row)
		labels = append(labels, y[i])
	}

	for _, label := range classes {
		indices := classIndices[label]
		deficit := majority - len(indices)
		if deficit == 0 {
			continue
		}

		// A singleton class has no neighbours to interpolate with, so it
		// is duplicated instead.
		if len(indices) == 1 {
			src := X.RawRowView(indices[0])
			for n := 0; n < deficit; n++ {
				row := make([]float64, c)
				copy(row, src)
				rows = append(rows, row)
				labels = append(labels, label)
			}
			continue
		}

		k := s.KNeighbors
		if k > len(indices)-1 {
			k = len(indices) - 1
		}
		neighbours := nearestWithinClass(X, indices, k)

		for n := 0; n < deficit; n++ {
			i := rng.IntN(len(indices))
			base := X.RawRowView(indices[i])
			nb := X.RawRowView(neighbours[i][rng.IntN(k)])

			gap := rng.Float64()
			row := make([]float64, c)
			for j := 0; j < c; j++ {
				row[j] = base[j] + gap*(nb[j]-base[j])
			}
			rows = append(rows, row)
			labels = append(labels, label)
		}
	}

	out := mat.NewDense(len(rows), c, nil)
	for i, row := range rows {
		out.SetRow(i, row)
	}
	return out, labels, nil
}

// nearestWithinClass returns, for each class member, the row indices of
// its k nearest neighbours among the other members (euclidean distance).
func nearestWithinClass(X *mat.Dense, indices []int, k int) [][]int {
	type distIdx struct {
		d   float64
		idx int
	}

	out := make([][]int, len(indices))
	for i, a := range indices {
		dists := make([]distIdx, 0, len(indices)-1)
		for _, b := range indices {
			if a == b {
				continue
			}
			dists = append(dists, distIdx{d: euclidean(X.RawRowView(a), X.RawRowView(b)), idx: b})
		}
		sort.Slice(dists, func(x, y int) bool {
			if dists[x].d != dists[y].d {
				return dists[x].d < dists[y].d
			}
			return dists[x].idx < dists[y].idx
		})

		nearest := make([]int, k)
		for j := 0; j < k; j++ {
			nearest[j] = dists[j].idx
		}
		out[i] = nearest
	}
	return out
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
