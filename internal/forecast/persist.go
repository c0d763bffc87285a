package forecast

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hotelrevenue/backend/internal/domain"
)

// modelBundle is the opaque serialized form of a trained model. It carries no
// cross-version compatibility guarantee beyond a same-process round trip.
type modelBundle struct {
	Trained      bool
	Lambda       float64
	Weights      []float64
	Intercept    float64
	FeatureNames []string
	FeatureStd   []float64
	ResidualStd  float64
	Config       Config
}

// Save writes the model artifact atomically: encode to a sibling temp file,
// then rename over the destination.
func (m *TrainedModel) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*")
	if err != nil {
		return fmt.Errorf("forecast: creating model artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	bundle := modelBundle{
		Trained:      true,
		Lambda:       m.model.lambda,
		Weights:      m.model.weights,
		Intercept:    m.model.intercept,
		FeatureNames: m.featureNames,
		FeatureStd:   m.featureStd,
		ResidualStd:  m.residualStd,
		Config:       m.cfg,
	}
	if err := gob.NewEncoder(tmp).Encode(bundle); err != nil {
		tmp.Close()
		return fmt.Errorf("forecast: encoding model artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("forecast: closing model artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("forecast: installing model artifact: %w", err)
	}
	return nil
}

// Load restores a trained model from a saved artifact. Predictions from the
// loaded model are numerically identical to the instance that saved it.
func Load(path string) (*TrainedModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("forecast: opening model artifact: %w", err)
	}
	defer f.Close()

	var bundle modelBundle
	if err := gob.NewDecoder(f).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("forecast: decoding model artifact: %w", err)
	}
	if !bundle.Trained {
		return nil, fmt.Errorf("forecast: artifact %s: %w", path, domain.ErrNotTrained)
	}
	return &TrainedModel{
		model: ridge{
			lambda:    bundle.Lambda,
			weights:   bundle.Weights,
			intercept: bundle.Intercept,
		},
		featureNames: bundle.FeatureNames,
		featureStd:   bundle.FeatureStd,
		residualStd:  bundle.ResidualStd,
		cfg:          bundle.Config,
	}, nil
}
