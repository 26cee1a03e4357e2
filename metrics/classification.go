// Package metrics implements the classification and regression scores used
// by the trainer and evaluator.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/pkg/errors"
)

// Accuracy returns the fraction of exactly matching labels.
func Accuracy(yTrue, yPred []int) (float64, error) {
	if err := checkLabels("Accuracy", yTrue, yPred); err != nil {
		return 0, err
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// Classes returns the sorted distinct labels across yTrue and yPred.
func Classes(yTrue, yPred []int) []int {
	set := make(map[int]struct{})
	for _, l := range yTrue {
		set[l] = struct{}{}
	}
	for _, l := range yPred {
		set[l] = struct{}{}
	}
	classes := make([]int, 0, len(set))
	for l := range set {
		classes = append(classes, l)
	}
	sort.Ints(classes)
	return classes
}

// ConfusionMatrix returns counts[i][j] = samples with true class classes[i]
// predicted as classes[j], together with the class list.
func ConfusionMatrix(yTrue, yPred []int) ([][]int, []int, error) {
	if err := checkLabels("ConfusionMatrix", yTrue, yPred); err != nil {
		return nil, nil, err
	}

	classes := Classes(yTrue, yPred)
	pos := make(map[int]int, len(classes))
	for i, c := range classes {
		pos[c] = i
	}

	counts := make([][]int, len(classes))
	for i := range counts {
		counts[i] = make([]int, len(classes))
	}
	for i := range yTrue {
		counts[pos[yTrue[i]]][pos[yPred[i]]]++
	}
	return counts, classes, nil
}

// PrecisionWeighted returns the support-weighted average of per-class
// precision. Classes with no predicted samples score zeroDivision.
func PrecisionWeighted(yTrue, yPred []int, zeroDivision float64) (float64, error) {
	return weightedScore(yTrue, yPred, zeroDivision, func(tp, fp, fn int) (float64, bool) {
		if tp+fp == 0 {
			return 0, false
		}
		return float64(tp) / float64(tp+fp), true
	})
}

// RecallWeighted returns the support-weighted average of per-class recall.
// Classes with no true samples score zeroDivision.
func RecallWeighted(yTrue, yPred []int, zeroDivision float64) (float64, error) {
	return weightedScore(yTrue, yPred, zeroDivision, func(tp, fp, fn int) (float64, bool) {
		if tp+fn == 0 {
			return 0, false
		}
		return float64(tp) / float64(tp+fn), true
	})
}

// F1Weighted returns the support-weighted average of per-class F1.
// Degenerate classes score zeroDivision.
func F1Weighted(yTrue, yPred []int, zeroDivision float64) (float64, error) {
	return weightedScore(yTrue, yPred, zeroDivision, func(tp, fp, fn int) (float64, bool) {
		if 2*tp+fp+fn == 0 {
			return 0, false
		}
		return 2 * float64(tp) / float64(2*tp+fp+fn), true
	})
}

// weightedScore computes a support-weighted one-vs-rest score. perClass
// reports (score, ok); !ok means the score is undefined for that class and
// zeroDivision is substituted.
func weightedScore(yTrue, yPred []int, zeroDivision float64, perClass func(tp, fp, fn int) (float64, bool)) (float64, error) {
	counts, classes, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}

	total := 0.0
	weighted := 0.0
	for i := range classes {
		tp := counts[i][i]
		fp, fn := 0, 0
		support := 0
		for j := range classes {
			support += counts[i][j]
			if j != i {
				fn += counts[i][j]
				fp += counts[j][i]
			}
		}
		if support == 0 {
			// Class only appears in predictions; it carries no weight.
			continue
		}

		score, ok := perClass(tp, fp, fn)
		if !ok {
			score = zeroDivision
		}
		weighted += score * float64(support)
		total += float64(support)
	}

	if total == 0 {
		return 0, errors.NewValueError("weightedScore", "no supported classes")
	}
	return weighted / total, nil
}

// AUCBinary computes the area under the ROC curve from positive-class
// scores, using the rank statistic with midrank tie handling. yTrue must
// contain exactly the labels 0 and 1, both represented.
func AUCBinary(yTrue []int, scores []float64) (float64, error) {
	if len(yTrue) == 0 {
		return 0, errors.NewValueError("AUCBinary", "empty input")
	}
	if len(yTrue) != len(scores) {
		return 0, errors.NewDimensionError("AUCBinary", len(yTrue), len(scores), 0)
	}

	nPos, nNeg := 0, 0
	for _, l := range yTrue {
		switch l {
		case 1:
			nPos++
		case 0:
			nNeg++
		default:
			return 0, errors.NewValueError("AUCBinary", "labels must be binary 0/1")
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, errors.NewValueError("AUCBinary", "only one class present")
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	// Midranks over tied scores.
	ranks := make([]float64, len(scores))
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && scores[order[j]] == scores[order[i]] {
			j++
		}
		mid := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			ranks[order[k]] = mid
		}
		i = j
	}

	rankSum := 0.0
	for i, l := range yTrue {
		if l == 1 {
			rankSum += ranks[i]
		}
	}
	u := rankSum - float64(nPos)*float64(nPos+1)/2.0
	return u / (float64(nPos) * float64(nNeg)), nil
}

// AUCOneVsRest macro-averages binary AUC over the class columns of a
// probability matrix. Every class in classes must be represented in yTrue;
// otherwise the score is undefined and an error is returned.
func AUCOneVsRest(yTrue []int, proba mat.Matrix, classes []int) (float64, error) {
	r, c := proba.Dims()
	if r != len(yTrue) {
		return 0, errors.NewDimensionError("AUCOneVsRest", len(yTrue), r, 0)
	}
	if c != len(classes) {
		return 0, errors.NewDimensionError("AUCOneVsRest", len(classes), c, 1)
	}

	sum := 0.0
	for k, class := range classes {
		binary := make([]int, len(yTrue))
		scores := make([]float64, len(yTrue))
		for i, l := range yTrue {
			if l == class {
				binary[i] = 1
			}
			scores[i] = proba.At(i, k)
		}
		auc, err := AUCBinary(binary, scores)
		if err != nil {
			return 0, errors.Wrapf(err, "class %d", class)
		}
		sum += auc
	}
	return sum / float64(len(classes)), nil
}

func checkLabels(op string, yTrue, yPred []int) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty input")
	}
	if len(yTrue) != len(yPred) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	return nil
}
