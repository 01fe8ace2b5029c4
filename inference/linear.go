package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// LinearArtifact is the on-disk form of a fitted linear regression.
type LinearArtifact struct {
	Name         string    `json:"name"`
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// LinearModel evaluates y = X·β + b.
type LinearModel struct {
	name      string
	features  []string
	coef      *mat.VecDense
	intercept float64
}

func NewLinearModel(a LinearArtifact) (*LinearModel, error) {
	if len(a.Coefficients) == 0 {
		return nil, fmt.Errorf("model %q has no coefficients", a.Name)
	}
	if len(a.Features) != 0 && len(a.Features) != len(a.Coefficients) {
		return nil, fmt.Errorf("model %q lists %d features for %d coefficients",
			a.Name, len(a.Features), len(a.Coefficients))
	}
	coef := make([]float64, len(a.Coefficients))
	copy(coef, a.Coefficients)
	return &LinearModel{
		name:      a.Name,
		features:  a.Features,
		coef:      mat.NewVecDense(len(coef), coef),
		intercept: a.Intercept,
	}, nil
}

// LoadLinearModel reads a JSON LinearArtifact from path.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a LinearArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return NewLinearModel(a)
}

func (m *LinearModel) Name() string { return m.name }

// Arity is the number of features each row must carry.
func (m *LinearModel) Arity() int { return m.coef.Len() }

func (m *LinearModel) Predict(ctx context.Context, batch [][]float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	width := m.coef.Len()
	flat := make([]float64, 0, len(batch)*width)
	for i, row := range batch {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d features, model %q expects %d", i, len(row), m.name, width)
		}
		flat = append(flat, row...)
	}

	x := mat.NewDense(len(batch), width, flat)
	var y mat.VecDense
	y.MulVec(x, m.coef)

	out := make([]float64, len(batch))
	for i := range out {
		out[i] = y.AtVec(i) + m.intercept
	}
	return out, nil
}
