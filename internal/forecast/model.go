package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ridge is a linear model fit by L2-regularized normal equations. The
// intercept is unpenalized. Fitting is fully deterministic, which keeps saved
// and reloaded models numerically identical.
type ridge struct {
	lambda    float64
	weights   []float64
	intercept float64
}

// fit solves (XᵀX + λI)w = Xᵀy with an implicit leading intercept column.
func (m *ridge) fit(x *mat.Dense, y []float64) error {
	n, d := x.Dims()
	if n == 0 || n != len(y) {
		return fmt.Errorf("ridge: design matrix has %d rows for %d targets", n, len(y))
	}

	// Augment with the intercept column.
	xa := mat.NewDense(n, d+1, nil)
	for i := 0; i < n; i++ {
		xa.Set(i, 0, 1)
		for j := 0; j < d; j++ {
			xa.Set(i, j+1, x.At(i, j))
		}
	}

	var xtx mat.Dense
	xtx.Mul(xa.T(), xa)
	for j := 1; j <= d; j++ {
		xtx.Set(j, j, xtx.At(j, j)+m.lambda)
	}

	var xty mat.VecDense
	xty.MulVec(xa.T(), mat.NewVecDense(n, y))

	var w mat.VecDense
	if err := w.SolveVec(&xtx, &xty); err != nil {
		// A Condition error still carries a usable solution; anything else
		// means the system is genuinely singular.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return fmt.Errorf("ridge: solving normal equations: %w", err)
		}
	}

	m.intercept = w.AtVec(0)
	m.weights = make([]float64, d)
	for j := 0; j < d; j++ {
		m.weights[j] = w.AtVec(j + 1)
	}
	return nil
}

// predictRow evaluates the model on one feature row.
func (m *ridge) predictRow(row []float64) float64 {
	p := m.intercept
	for j, w := range m.weights {
		p += w * row[j]
	}
	return p
}

// predictAll evaluates the model on every row of x.
func (m *ridge) predictAll(x *mat.Dense) []float64 {
	n, d := x.Dims()
	out := make([]float64, n)
	row := make([]float64, d)
	for i := 0; i < n; i++ {
		mat.Row(row, i, x)
		out[i] = m.predictRow(row)
	}
	return out
}

// meanAbsoluteError scores predictions against targets.
func meanAbsoluteError(predicted, actual []float64) float64 {
	if len(predicted) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i, p := range predicted {
		sum += math.Abs(p - actual[i])
	}
	return sum / float64(len(predicted))
}
