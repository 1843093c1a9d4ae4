package stats

import (
	"fmt"

	"microplastics/internal/core"
	"microplastics/internal/sample"
)

// TestKind identifies which hypothesis test a comparison ran.
type TestKind string

const (
	TestWelchT        TestKind = "welch_t"
	TestStudentT      TestKind = "student_t"
	TestMannWhitney   TestKind = "mann_whitney_u"
	TestANOVA         TestKind = "one_way_anova"
	TestKruskalWallis TestKind = "kruskal_wallis"
)

// NormalityResult records the Shapiro-Wilk outcome that drove test
// selection for one sample.
type NormalityResult struct {
	SampleID string  `json:"sample_id"`
	N        int     `json:"n"`
	W        float64 `json:"w,omitempty"`
	PValue   float64 `json:"p_value,omitempty"`
	// Tested is false when the sample was too small (or degenerate) to
	// test; such samples are treated as non-normal.
	Tested bool `json:"tested"`
	Normal bool `json:"normal"`
}

// ComparisonResult is the immutable outcome of comparing one metric
// across two or more samples.
type ComparisonResult struct {
	Metric      core.Metric       `json:"metric"`
	Test        TestKind          `json:"test"`
	Statistic   float64           `json:"statistic"`
	PValue      float64           `json:"p_value"`
	Alpha       float64           `json:"alpha"`
	Significant bool              `json:"significant"`
	Normality   []NormalityResult `json:"normality"`
}

// Config configures the comparison engine.
type Config struct {
	// Alpha is the significance level for both the normality gate and
	// the final test. Defaults to 0.05.
	Alpha float64

	// EqualVariance switches the two-sample parametric branch from
	// Welch's t-test to the pooled Student's t-test.
	EqualVariance bool
}

// Engine selects and runs the correct hypothesis test for a dataset's
// shape. It reads only frozen samples and holds no mutable state.
type Engine struct {
	cfg Config
}

// NewEngine creates a comparison engine.
func NewEngine(cfg Config) *Engine {
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		cfg.Alpha = 0.05
	}
	return &Engine{cfg: cfg}
}

// branch keys the test decision table: two samples vs more, and whether
// every sample passed the normality gate.
type branch struct {
	multi     bool
	allNormal bool
}

var decisionTable = map[branch]TestKind{
	{multi: false, allNormal: true}:  TestWelchT,
	{multi: false, allNormal: false}: TestMannWhitney,
	{multi: true, allNormal: true}:   TestANOVA,
	{multi: true, allNormal: false}:  TestKruskalWallis,
}

// Compare runs the decision procedure for one metric across >= 2 samples:
// Shapiro-Wilk per sample (n < 3 counts as non-normal), then the test the
// decision table selects. Any sample with fewer than 2 observations makes
// the comparison invalid with ErrInsufficientData naming that sample.
func (e *Engine) Compare(metric core.Metric, samples []*sample.Sample) (*ComparisonResult, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("comparison needs at least 2 samples, got %d", len(samples))
	}

	groups := make([][]float64, len(samples))
	for i, s := range samples {
		groups[i] = s.Values(metric)
		if len(groups[i]) < 2 {
			return nil, fmt.Errorf("%w: sample %s has %d observation(s) for %s",
				core.ErrInsufficientData, s.ID(), len(groups[i]), metric)
		}
	}

	normality := make([]NormalityResult, len(samples))
	allNormal := true
	for i, s := range samples {
		normality[i] = e.testNormality(s.ID(), groups[i])
		if !normality[i].Normal {
			allNormal = false
		}
	}

	kind := decisionTable[branch{multi: len(samples) > 2, allNormal: allNormal}]
	if kind == TestWelchT && e.cfg.EqualVariance {
		kind = TestStudentT
	}

	var statistic, p float64
	switch kind {
	case TestWelchT:
		statistic, p = WelchTTest(groups[0], groups[1])
	case TestStudentT:
		statistic, p = PooledTTest(groups[0], groups[1])
	case TestMannWhitney:
		statistic, p = MannWhitneyU(groups[0], groups[1])
	case TestANOVA:
		statistic, p = OneWayANOVA(groups)
	case TestKruskalWallis:
		statistic, p = KruskalWallis(groups)
	}

	return &ComparisonResult{
		Metric:      metric,
		Test:        kind,
		Statistic:   statistic,
		PValue:      p,
		Alpha:       e.cfg.Alpha,
		Significant: p < e.cfg.Alpha,
		Normality:   normality,
	}, nil
}

// CompareAll runs Compare for every metric. A metric failing with
// ErrInsufficientData does not abort the others; per-metric errors are
// returned alongside the successful results.
func (e *Engine) CompareAll(metrics []core.Metric, samples []*sample.Sample) (map[core.Metric]*ComparisonResult, map[core.Metric]error) {
	results := make(map[core.Metric]*ComparisonResult)
	errs := make(map[core.Metric]error)
	for _, metric := range metrics {
		result, err := e.Compare(metric, samples)
		if err != nil {
			errs[metric] = err
			continue
		}
		results[metric] = result
	}
	return results, errs
}

// testNormality applies the Shapiro-Wilk gate. Samples with fewer than 3
// values cannot be tested and default to non-normal; degenerate data
// (constant values) likewise.
func (e *Engine) testNormality(id string, values []float64) NormalityResult {
	if len(values) < 3 {
		return NormalityResult{SampleID: id, N: len(values)}
	}
	w, p, err := ShapiroWilk(values)
	if err != nil {
		return NormalityResult{SampleID: id, N: len(values)}
	}
	return NormalityResult{
		SampleID: id,
		N:        len(values),
		W:        w,
		PValue:   p,
		Tested:   true,
		Normal:   p > e.cfg.Alpha,
	}
}
