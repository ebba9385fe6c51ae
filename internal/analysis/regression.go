package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/mortstat/internal/dataset"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Predictor names understood by FitLinearModel.
const (
	PredictorGDP        = "gdp_per_capita"
	PredictorYear       = "year"
	PredictorPopulation = "population"
	PredictorSexMale    = "sex_male"
	PredictorAge15to24  = "age_15_24"
	PredictorAge25to34  = "age_25_34"
	PredictorAge35to54  = "age_35_54"
	PredictorAge55to74  = "age_55_74"
	PredictorAge75Plus  = "age_75_plus"
)

// ageBands maps the one-hot age predictors onto the substring matched in Record.Age.
var ageBands = map[string]string{
	PredictorAge15to24: "15-24",
	PredictorAge25to34: "25-34",
	PredictorAge35to54: "35-54",
	PredictorAge55to74: "55-74",
	PredictorAge75Plus: "75+",
}

// Predictors lists every known predictor name.
func Predictors() []string {
	return []string{
		PredictorGDP, PredictorYear, PredictorPopulation, PredictorSexMale,
		PredictorAge15to24, PredictorAge25to34, PredictorAge35to54, PredictorAge55to74, PredictorAge75Plus,
	}
}

// DefaultPredictors is the predictor set used when none is configured.
func DefaultPredictors() []string {
	return []string{PredictorGDP, PredictorYear, PredictorSexMale, PredictorAge35to54}
}

// RegressionModel is an ordinary least squares fit of the rate on z-scored predictors.
// Coefficients are in standardized units (per one standard deviation of the predictor).
type RegressionModel struct {
	Predictors   []string           `json:"predictors"`
	Coefficients map[string]float64 `json:"coefficients"`
	Intercept    float64            `json:"intercept"`
	RSquared     float64            `json:"r_squared"`
	Predictions  []float64          `json:"predictions"`
	// FeatureMeans and FeatureStds undo the normalization for new records.
	FeatureMeans []float64 `json:"feature_means"`
	FeatureStds  []float64 `json:"feature_stds"`
	weights      []float64
}

// featureValue derives the scalar for one predictor. Unknown names yield 0.
func featureValue(r dataset.Record, name string) float64 {
	switch name {
	case PredictorGDP:
		return r.GDPPerCapita
	case PredictorYear:
		return float64(r.Year)
	case PredictorPopulation:
		return math.Log(float64(r.Population) + 1)
	case PredictorSexMale:
		return indicator(r.Sex == "male")
	}
	if band, ok := ageBands[name]; ok {
		return indicator(strings.Contains(r.Age, band))
	}
	return 0
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// FitLinearModel fits suicides_per_100k against the named predictors. Each feature
// column is z-score normalized (a column without spread keeps std 1), an intercept
// column is prepended and the normal equations are solved by Gaussian elimination
// with partial pivoting. Predictors whose columns carry no information receive a
// zero weight. It fails when no predictors are given or when there are not more
// records than predictors.
func FitLinearModel(records []dataset.Record, predictors []string) (*RegressionModel, error) {
	m := len(predictors)
	if m == 0 {
		return nil, ErrNoPredictors
	}
	n := len(records)
	if n <= m {
		return nil, fmt.Errorf("%w: %d records for %d predictors", ErrInsufficientSamples, n, m)
	}

	x := mat.NewDense(n, m+1, nil)
	y := make([]float64, n)
	means := make([]float64, m)
	stds := make([]float64, m)
	col := make([]float64, n)
	for j, name := range predictors {
		for i, r := range records {
			col[i] = featureValue(r, name)
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		std = stdOrOne(std, mean)
		means[j], stds[j] = mean, std
		for i, v := range col {
			x.Set(i, j+1, (v-mean)/std)
		}
	}
	for i, r := range records {
		x.Set(i, 0, 1)
		y[i] = r.RatePer100k
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	var xty mat.VecDense
	xty.MulVec(x.T(), mat.NewVecDense(n, y))
	w := solveLinearSystem(&xtx, &xty)

	var fitted mat.VecDense
	fitted.MulVec(x, mat.NewVecDense(m+1, w))
	predictions := make([]float64, n)
	for i := range predictions {
		predictions[i] = fitted.AtVec(i)
	}

	model := &RegressionModel{
		Predictors:   append([]string(nil), predictors...),
		Coefficients: make(map[string]float64, m),
		Intercept:    w[0],
		RSquared:     rSquared(y, predictions),
		Predictions:  predictions,
		FeatureMeans: means,
		FeatureStds:  stds,
		weights:      w,
	}
	for j, name := range predictors {
		model.Coefficients[name] = w[j+1]
	}
	return model, nil
}

// Predict applies the fitted model to a record.
func (m *RegressionModel) Predict(r dataset.Record) float64 {
	out := m.weights[0]
	for j, name := range m.Predictors {
		out += m.weights[j+1] * (featureValue(r, name) - m.FeatureMeans[j]) / m.FeatureStds[j]
	}
	return out
}

// rSquared is 1 - RSS/TSS clamped to [0, 1]. A target without variance scores 0.
func rSquared(y, predictions []float64) float64 {
	mean := stat.Mean(y, nil)
	var rss, tss float64
	for i, v := range y {
		d := v - predictions[i]
		rss += d * d
		t := v - mean
		tss += t * t
	}
	return clamp(1-ratioOr(rss, tss, 1), 0, 1)
}

// solveLinearSystem solves a·w = b by Gaussian elimination with partial pivoting
// followed by back substitution. A pivot that is numerically zero marks its
// unknown as free; free unknowns are set to 0.
func solveLinearSystem(a mat.Matrix, b mat.Vector) []float64 {
	size, _ := a.Dims()
	aug := make([][]float64, size)
	scale := 0.0
	for i := range aug {
		aug[i] = make([]float64, size+1)
		for j := 0; j < size; j++ {
			aug[i][j] = a.At(i, j)
		}
		aug[i][size] = b.AtVec(i)
		scale = math.Max(scale, math.Abs(aug[i][i]))
	}
	tol := pivotTolerance * math.Max(1, scale)

	free := make([]bool, size)
	for i := 0; i < size; i++ {
		pivot := i
		for k := i + 1; k < size; k++ {
			if math.Abs(aug[k][i]) > math.Abs(aug[pivot][i]) {
				pivot = k
			}
		}
		aug[i], aug[pivot] = aug[pivot], aug[i]
		if math.Abs(aug[i][i]) <= tol {
			free[i] = true
			continue
		}
		for k := i + 1; k < size; k++ {
			factor := aug[k][i] / aug[i][i]
			for j := i; j <= size; j++ {
				aug[k][j] -= factor * aug[i][j]
			}
		}
	}

	w := make([]float64, size)
	for i := size - 1; i >= 0; i-- {
		if free[i] {
			continue
		}
		v := aug[i][size]
		for j := i + 1; j < size; j++ {
			v -= aug[i][j] * w[j]
		}
		w[i] = v / aug[i][i]
	}
	return w
}

const pivotTolerance = 1e-10
