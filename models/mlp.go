package models

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/core/model"
	"github.com/modelbench/modelbench/pkg/errors"
)

// MLP is a feedforward neural network classifier with one ReLU hidden
// layer and a softmax output, trained with full-batch Adam on the
// cross-entropy loss.
type MLP struct {
	state *model.StateManager

	hiddenSize   int
	learningRate float64
	alpha        float64 // L2 penalty
	maxIter      int
	tol          float64
	seed         int

	w1 *mat.Dense // input -> hidden
	b1 []float64
	w2 *mat.Dense // hidden -> output
	b2 []float64

	classes   []int
	nFeatures int
}

// NewMLP creates an unfitted network with defaults matching common
// single-hidden-layer setups.
func NewMLP() *MLP {
	return &MLP{
		state:        model.NewStateManager(),
		hiddenSize:   100,
		learningRate: 0.01,
		alpha:        0.0001,
		maxIter:      200,
		tol:          1e-4,
		seed:         42,
	}
}

// Name implements Classifier.
func (m *MLP) Name() string { return "Neural Network" }

// Fit trains with Adam until the loss improvement drops below tol or the
// iteration budget is exhausted, warning on non-convergence.
func (m *MLP) Fit(X mat.Matrix, y []int) error {
	if err := checkXY("MLP.Fit", X, y); err != nil {
		return err
	}

	Xd := toDense(X)
	nSamples, nFeatures := Xd.Dims()
	m.nFeatures = nFeatures
	m.classes = uniqueClasses(y)
	nOut := len(m.classes)

	classIndex := make(map[int]int, nOut)
	for ci, c := range m.classes {
		classIndex[c] = ci
	}

	rng := rand.New(rand.NewPCG(uint64(m.seed), uint64(m.seed)))
	scale1 := math.Sqrt(2.0 / float64(nFeatures))
	scale2 := math.Sqrt(2.0 / float64(m.hiddenSize))

	m.w1 = mat.NewDense(nFeatures, m.hiddenSize, nil)
	m.w2 = mat.NewDense(m.hiddenSize, nOut, nil)
	m.b1 = make([]float64, m.hiddenSize)
	m.b2 = make([]float64, nOut)
	for j := 0; j < nFeatures; j++ {
		for h := 0; h < m.hiddenSize; h++ {
			m.w1.Set(j, h, rng.NormFloat64()*scale1)
		}
	}
	for h := 0; h < m.hiddenSize; h++ {
		for o := 0; o < nOut; o++ {
			m.w2.Set(h, o, rng.NormFloat64()*scale2)
		}
	}

	// Adam moment estimates, flattened over all parameters.
	nParams := nFeatures*m.hiddenSize + m.hiddenSize + m.hiddenSize*nOut + nOut
	mom := make([]float64, nParams)
	vel := make([]float64, nParams)
	const beta1, beta2, eps = 0.9, 0.999, 1e-8

	prevLoss := math.Inf(1)
	converged := false

	for iter := 1; iter <= m.maxIter; iter++ {
		hidden, probs := m.forward(Xd)

		// Cross-entropy with L2 penalty.
		var loss float64
		for i := 0; i < nSamples; i++ {
			loss -= math.Log(math.Max(probs.At(i, classIndex[y[i]]), 1e-12))
		}
		loss /= float64(nSamples)
		loss += 0.5 * m.alpha * (sumSquares(m.w1) + sumSquares(m.w2)) / float64(nSamples)

		if math.Abs(prevLoss-loss) < m.tol {
			converged = true
			break
		}
		prevLoss = loss

		// Output delta: softmax probabilities minus one-hot targets.
		delta2 := mat.DenseCopyOf(probs)
		for i := 0; i < nSamples; i++ {
			ci := classIndex[y[i]]
			delta2.Set(i, ci, delta2.At(i, ci)-1)
		}
		delta2.Scale(1/float64(nSamples), delta2)

		gradW2 := mat.NewDense(m.hiddenSize, nOut, nil)
		gradW2.Mul(hidden.T(), delta2)
		gradW2.Apply(func(h, o int, v float64) float64 {
			return v + m.alpha*m.w2.At(h, o)/float64(nSamples)
		}, gradW2)
		gradB2 := colSums(delta2)

		delta1 := mat.NewDense(nSamples, m.hiddenSize, nil)
		delta1.Mul(delta2, m.w2.T())
		delta1.Apply(func(i, h int, v float64) float64 {
			if hidden.At(i, h) <= 0 {
				return 0
			}
			return v
		}, delta1)

		gradW1 := mat.NewDense(nFeatures, m.hiddenSize, nil)
		gradW1.Mul(Xd.T(), delta1)
		gradW1.Apply(func(j, h int, v float64) float64 {
			return v + m.alpha*m.w1.At(j, h)/float64(nSamples)
		}, gradW1)
		gradB1 := colSums(delta1)

		// One Adam step over the flattened parameter vector.
		k := 0
		step := func(param *float64, grad float64) {
			mom[k] = beta1*mom[k] + (1-beta1)*grad
			vel[k] = beta2*vel[k] + (1-beta2)*grad*grad
			mHat := mom[k] / (1 - math.Pow(beta1, float64(iter)))
			vHat := vel[k] / (1 - math.Pow(beta2, float64(iter)))
			*param -= m.learningRate * mHat / (math.Sqrt(vHat) + eps)
			k++
		}
		for j := 0; j < nFeatures; j++ {
			for h := 0; h < m.hiddenSize; h++ {
				v := m.w1.At(j, h)
				step(&v, gradW1.At(j, h))
				m.w1.Set(j, h, v)
			}
		}
		for h := range m.b1 {
			step(&m.b1[h], gradB1[h])
		}
		for h := 0; h < m.hiddenSize; h++ {
			for o := 0; o < nOut; o++ {
				v := m.w2.At(h, o)
				step(&v, gradW2.At(h, o))
				m.w2.Set(h, o, v)
			}
		}
		for o := range m.b2 {
			step(&m.b2[o], gradB2[o])
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("MLP", m.maxIter))
	}

	m.state.SetDimensions(nFeatures, nSamples)
	m.state.SetFitted()
	return nil
}

// forward computes hidden activations and softmax outputs.
func (m *MLP) forward(X *mat.Dense) (*mat.Dense, *mat.Dense) {
	r, _ := X.Dims()
	nOut := len(m.b2)

	hidden := mat.NewDense(r, m.hiddenSize, nil)
	hidden.Mul(X, m.w1)
	hidden.Apply(func(i, h int, v float64) float64 {
		v += m.b1[h]
		if v < 0 {
			return 0
		}
		return v
	}, hidden)

	logits := mat.NewDense(r, nOut, nil)
	logits.Mul(hidden, m.w2)
	probs := mat.NewDense(r, nOut, nil)
	for i := 0; i < r; i++ {
		row := logits.RawRowView(i)
		maxLogit := math.Inf(-1)
		for o, v := range row {
			v += m.b2[o]
			row[o] = v
			if v > maxLogit {
				maxLogit = v
			}
		}
		var sum float64
		for o, v := range row {
			p := math.Exp(v - maxLogit)
			probs.Set(i, o, p)
			sum += p
		}
		for o := 0; o < nOut; o++ {
			probs.Set(i, o, probs.At(i, o)/sum)
		}
	}
	return hidden, probs
}

func sumSquares(m *mat.Dense) float64 {
	var s float64
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			s += v * v
		}
	}
	return s
}

func colSums(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[j] += m.At(i, j)
		}
	}
	return out
}

// Predict returns the class with the largest softmax output per row.
func (m *MLP) Predict(X mat.Matrix) ([]int, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		out[i] = m.classes[argmax(proba.RawRowView(i))]
	}
	return out, nil
}

// PredictProba implements ProbabilityClassifier.
func (m *MLP) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if !m.state.IsFitted() {
		return nil, errors.NewNotFittedError("MLP", "PredictProba")
	}
	if err := checkPredict("MLP.PredictProba", X, m.nFeatures); err != nil {
		return nil, err
	}
	_, probs := m.forward(toDense(X))
	return probs, nil
}

// Classes implements ProbabilityClassifier.
func (m *MLP) Classes() []int { return append([]int(nil), m.classes...) }

// GetParams implements Classifier.
func (m *MLP) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"hidden_layer_sizes": m.hiddenSize,
		"learning_rate_init": m.learningRate,
		"alpha":              m.alpha,
		"max_iter":           m.maxIter,
		"tol":                m.tol,
		"random_state":       m.seed,
	}
}

// SetParams implements Classifier.
func (m *MLP) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "hidden_layer_sizes":
			v, ok := paramInt(value)
			if !ok || v < 1 {
				return errors.NewValidationError(key, "must be a positive integer", value)
			}
			m.hiddenSize = v
		case "learning_rate_init":
			v, ok := paramFloat(value)
			if !ok || v <= 0 {
				return errors.NewValidationError(key, "must be a positive number", value)
			}
			m.learningRate = v
		case "alpha":
			v, ok := paramFloat(value)
			if !ok || v < 0 {
				return errors.NewValidationError(key, "must be a non-negative number", value)
			}
			m.alpha = v
		case "max_iter":
			v, ok := paramInt(value)
			if !ok || v < 1 {
				return errors.NewValidationError(key, "must be a positive integer", value)
			}
			m.maxIter = v
		case "tol":
			v, ok := paramFloat(value)
			if !ok || v <= 0 {
				return errors.NewValidationError(key, "must be a positive number", value)
			}
			m.tol = v
		case "random_state":
			v, ok := paramInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			m.seed = v
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}
