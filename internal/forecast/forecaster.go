// Package forecast trains and serves demand (occupancy) predictions from
// booking history. A Forecaster only knows how to train; prediction, feature
// importance and persistence live on the TrainedModel it produces, so
// "predict before train" is impossible at the type level.
package forecast

import (
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/hotelrevenue/backend/internal/domain"
	"github.com/hotelrevenue/backend/internal/features"
	"github.com/hotelrevenue/backend/pkg/utils"
)

// Config enumerates the columns and hyperparameters used for training,
// validated once at construction rather than at each call site.
type Config struct {
	FeatureColumns  []string
	TargetColumn    string
	Features        features.Config
	Folds           int
	Lambda          float64
	ConfidenceWidth float64
}

// DefaultConfig trains on the full derived feature set with five
// forward-chaining folds and 95% confidence intervals.
func DefaultConfig() Config {
	fc := features.DefaultConfig()
	return Config{
		FeatureColumns:  fc.DefaultFeatureColumns(),
		TargetColumn:    features.ColOccupancy,
		Features:        fc,
		Folds:           5,
		Lambda:          1.0,
		ConfidenceWidth: 1.96,
	}
}

// Validate rejects inconsistent training configuration.
func (c Config) Validate() error {
	if len(c.FeatureColumns) == 0 {
		return domain.NewConfigError("no feature columns configured")
	}
	if c.TargetColumn == "" {
		return domain.NewConfigError("no target column configured")
	}
	if c.Folds < 2 {
		return domain.NewConfigError("cross-validation needs at least 2 folds, got %d", c.Folds)
	}
	if c.Lambda < 0 {
		return domain.NewConfigError("regularization strength must be non-negative, got %g", c.Lambda)
	}
	if c.ConfidenceWidth <= 0 {
		return domain.NewConfigError("confidence width must be positive, got %g", c.ConfidenceWidth)
	}
	return c.Features.Validate()
}

// Forecaster builds demand models. It carries no trained state.
type Forecaster struct {
	cfg Config
	log *zap.Logger
}

// NewForecaster validates the configuration once and returns a Forecaster.
func NewForecaster(cfg Config, log *zap.Logger) (*Forecaster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Forecaster{cfg: cfg, log: log}, nil
}

// Train fits a demand model on the observations for roomType and returns it
// together with the mean absolute error across forward-chaining
// cross-validation folds. Cross-validation is diagnostic only: the returned
// model is refit on the complete feature set.
func (f *Forecaster) Train(obs []domain.Observation, roomType string) (*TrainedModel, float64, error) {
	filtered := domain.FilterRoomType(obs, roomType)
	if len(filtered) == 0 {
		return nil, 0, domain.NewDataError("no observations for room type %q", roomType)
	}

	table, err := features.Build(filtered, f.cfg.Features)
	if err != nil {
		return nil, 0, err
	}

	x, err := table.Matrix(f.cfg.FeatureColumns)
	if err != nil {
		return nil, 0, err
	}
	y, err := table.Column(f.cfg.TargetColumn)
	if err != nil {
		return nil, 0, err
	}

	n := table.Len()
	if n < 2*f.cfg.Folds {
		return nil, 0, domain.NewConfigError("%d feature rows are too few for %d cross-validation folds",
			n, f.cfg.Folds)
	}

	// Forward-chaining cross-validation: every validation fold is strictly
	// later than its training fold.
	maeScores := make([]float64, 0, f.cfg.Folds)
	for _, fd := range forwardChainFolds(n, f.cfg.Folds) {
		cv := ridge{lambda: f.cfg.Lambda}
		trainX := mat.DenseCopyOf(x.Slice(0, fd.trainEnd, 0, len(f.cfg.FeatureColumns)))
		if err := cv.fit(trainX, y[:fd.trainEnd]); err != nil {
			return nil, 0, err
		}
		valX := mat.DenseCopyOf(x.Slice(fd.valStart, fd.valEnd, 0, len(f.cfg.FeatureColumns)))
		maeScores = append(maeScores, meanAbsoluteError(cv.predictAll(valX), y[fd.valStart:fd.valEnd]))
	}
	mae := stat.Mean(maeScores, nil)

	// Final refit on all rows.
	model := ridge{lambda: f.cfg.Lambda}
	if err := model.fit(x, y); err != nil {
		return nil, 0, err
	}

	fitted := model.predictAll(x)
	residuals := make([]float64, n)
	for i := range fitted {
		residuals[i] = y[i] - fitted[i]
	}
	residualStd := stat.StdDev(residuals, nil)

	featureStd := make([]float64, len(f.cfg.FeatureColumns))
	col := make([]float64, n)
	for j := range f.cfg.FeatureColumns {
		mat.Col(col, j, x)
		featureStd[j] = stat.StdDev(col, nil)
	}

	f.log.Info("demand model trained",
		zap.String("room_type", roomType),
		zap.Int("rows", n),
		zap.Int("folds", f.cfg.Folds),
		zap.Float64("cv_mae", mae),
		zap.Float64("residual_std", residualStd),
	)

	return &TrainedModel{
		model:        model,
		featureNames: append([]string(nil), f.cfg.FeatureColumns...),
		featureStd:   featureStd,
		residualStd:  residualStd,
		cfg:          f.cfg,
	}, mae, nil
}

// TrainedModel is a fitted demand model. The feature-name list is fixed at
// training time; prediction always recomputes features with the same logic
// and column ordering used during training.
type TrainedModel struct {
	model        ridge
	featureNames []string
	featureStd   []float64
	residualStd  float64
	cfg          Config
}

// FeatureNames returns the ordered feature columns the model expects.
func (m *TrainedModel) FeatureNames() []string {
	return append([]string(nil), m.featureNames...)
}

// Warmup is the number of leading history rows prediction input must carry so
// that lag and rolling features are defined for the rows of interest.
func (m *TrainedModel) Warmup() int {
	return m.cfg.Features.Warmup()
}

// ResidualStd is the spread of training residuals backing the intervals.
func (m *TrainedModel) ResidualStd() float64 {
	return m.residualStd
}

// Predict forecasts occupancy for the rows of obs that survive the feature
// warmup drop, in input order. Each point estimate carries a symmetric
// interval of ±width×σ(residuals), clipped to [0, 1].
func (m *TrainedModel) Predict(obs []domain.Observation, roomType string) ([]domain.Prediction, error) {
	filtered := domain.FilterRoomType(obs, roomType)
	if len(filtered) == 0 {
		return nil, domain.NewDataError("no observations for room type %q", roomType)
	}

	table, err := features.Build(filtered, m.cfg.Features)
	if err != nil {
		return nil, err
	}
	x, err := table.Matrix(m.featureNames)
	if err != nil {
		return nil, err
	}

	points := m.model.predictAll(x)
	margin := m.cfg.ConfidenceWidth * m.residualStd

	preds := make([]domain.Prediction, len(points))
	for i, p := range points {
		preds[i] = domain.Prediction{
			Date:               table.Dates[i],
			RoomType:           roomType,
			PredictedOccupancy: utils.Clamp(p, 0, 1),
			LowerBound:         utils.Clamp(p-margin, 0, 1),
			UpperBound:         utils.Clamp(p+margin, 0, 1),
		}
	}
	return preds, nil
}

// FeatureImportance ranks features by |coefficient|×σ(column), normalized to
// sum to one, descending.
func (m *TrainedModel) FeatureImportance() []domain.FeatureImportance {
	raw := make([]float64, len(m.featureNames))
	total := 0.0
	for j := range m.featureNames {
		raw[j] = math.Abs(m.model.weights[j]) * m.featureStd[j]
		total += raw[j]
	}

	out := make([]domain.FeatureImportance, len(m.featureNames))
	for j, name := range m.featureNames {
		importance := 0.0
		if total > 0 {
			importance = raw[j] / total
		}
		out[j] = domain.FeatureImportance{Feature: name, Importance: importance}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	return out
}
