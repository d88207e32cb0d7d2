package predictor

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rushteam/inscost/artifact"
	"github.com/rushteam/inscost/core"
	"github.com/rushteam/inscost/feature"
)

// fakeModel 记录收到的行，返回固定值。
type fakeModel struct {
	name  string
	value float64
	err   error
	panic bool

	mu   sync.Mutex
	rows [][]float64
}

func (m *fakeModel) Name() string { return m.name }

func (m *fakeModel) Predict(_ context.Context, row []float64) (float64, error) {
	if m.panic {
		panic("boom")
	}
	m.mu.Lock()
	m.rows = append(m.rows, append([]float64(nil), row...))
	m.mu.Unlock()
	return m.value, m.err
}

type recordObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordObserver) ObservePrediction(segment, status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, segment+"/"+status)
}

var scaledCols = []string{
	feature.ColAge, feature.ColDependants, feature.PlaceholderColumn,
	feature.ColIncomeLakhs, feature.ColInsurancePlan, feature.ColGeneticalRisk,
}

// identityScaler 保持原值不变
func identityScaler() *feature.Scaler {
	n := len(scaledCols)
	scale := make([]float64, n)
	for i := range scale {
		scale[i] = 1
	}
	return &feature.Scaler{
		ColumnsToScale: scaledCols,
		Transformer:    &feature.MinMaxTransformer{Min: make([]float64, n), Scale: scale},
	}
}

func newFakePredictor(t *testing.T, young, rest *fakeModel, opts ...Option) *Predictor {
	t.Helper()
	set, err := artifact.NewSet(young, identityScaler(), rest, identityScaler())
	if err != nil {
		t.Fatalf("NewSet() error = %v", err)
	}
	p, err := New(set, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func scenario() core.InputRecord {
	return core.InputRecord{
		core.FieldAge:              30,
		core.FieldDependants:       2,
		core.FieldIncomeLakhs:      10,
		core.FieldGeneticalRisk:    0,
		core.FieldInsurancePlan:    "Silver",
		core.FieldEmploymentStatus: "Salaried",
		core.FieldGender:           "Male",
		core.FieldMaritalStatus:    "Married",
		core.FieldBMICategory:      "Obesity",
		core.FieldSmokingStatus:    "None",
		core.FieldRegion:           "Northeast",
		core.FieldMedicalHistory:   "Diabetes",
	}
}

func TestPredict_SegmentBoundary(t *testing.T) {
	tests := []struct {
		age  any
		want string
	}{
		{18, artifact.SegmentYoung},
		{25, artifact.SegmentYoung},
		{26, artifact.SegmentRest},
		{64, artifact.SegmentRest},
		{nil, artifact.SegmentYoung},
	}
	for _, tt := range tests {
		young := &fakeModel{name: "young", value: 100}
		rest := &fakeModel{name: "rest", value: 200}
		p := newFakePredictor(t, young, rest)

		in := scenario()
		if tt.age == nil {
			delete(in, core.FieldAge)
		} else {
			in[core.FieldAge] = tt.age
		}
		res, err := p.Explain(context.Background(), in)
		if err != nil {
			t.Fatalf("age %v: Explain() error = %v", tt.age, err)
		}
		if res.Segment != tt.want {
			t.Errorf("age %v: segment = %s, want %s", tt.age, res.Segment, tt.want)
		}
		if tt.want == artifact.SegmentYoung && (len(young.rows) != 1 || len(rest.rows) != 0) {
			t.Errorf("age %v: young calls = %d, rest calls = %d", tt.age, len(young.rows), len(rest.rows))
		}
		if tt.want == artifact.SegmentRest && (len(rest.rows) != 1 || len(young.rows) != 0) {
			t.Errorf("age %v: young calls = %d, rest calls = %d", tt.age, len(young.rows), len(rest.rows))
		}
	}
}

func TestPredict_RowShape(t *testing.T) {
	rest := &fakeModel{name: "rest", value: 1}
	p := newFakePredictor(t, &fakeModel{name: "young"}, rest)

	if _, err := p.Predict(context.Background(), scenario()); err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	row := rest.rows[0]
	if len(row) != feature.NumColumns {
		t.Fatalf("model received %d columns, want %d", len(row), feature.NumColumns)
	}
	v := feature.Vector(row)
	checks := map[string]float64{
		feature.ColAge:                 30,
		feature.ColInsurancePlan:       2,
		feature.ColBMIObesity:          1,
		feature.ColGenderMale:          1,
		feature.ColNormalizedRiskScore: 6.0 / 14.0,
		feature.ColEmploymentSalaried:  1,
	}
	for col, want := range checks {
		if got := v.Get(col); got != want {
			t.Errorf("%s = %v, want %v", col, got, want)
		}
	}
}

func TestPredict_Truncation(t *testing.T) {
	tests := []struct {
		raw  float64
		want int64
	}{
		{15234.97, 15234},
		{15234.01, 15234},
		{0.99, 0},
		{-3.7, -3},
	}
	for _, tt := range tests {
		p := newFakePredictor(t, &fakeModel{name: "young"}, &fakeModel{name: "rest", value: tt.raw})
		got, err := p.Predict(context.Background(), scenario())
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		if got != tt.want {
			t.Errorf("Predict() with raw %v = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestPredict_Failures(t *testing.T) {
	tests := []struct {
		name string
		rest *fakeModel
		msg  string
	}{
		{"model error", &fakeModel{name: "rest", err: errors.New("backend unavailable")}, "backend unavailable"},
		{"model panic", &fakeModel{name: "rest", panic: true}, "boom"},
		{"nan output", &fakeModel{name: "rest", value: math.NaN()}, "NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &recordObserver{}
			p := newFakePredictor(t, &fakeModel{name: "young"}, tt.rest, WithObserver(obs))
			_, err := p.Predict(context.Background(), scenario())
			if !core.IsPredictionFailed(err) {
				t.Fatalf("Predict() error = %v, want PREDICTION_FAILED", err)
			}
			if !strings.HasPrefix(err.Error(), "prediction failed: ") {
				t.Errorf("error = %q", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not contain %q", err, tt.msg)
			}
			if len(obs.calls) != 1 || obs.calls[0] != "rest/"+StatusError {
				t.Errorf("observer calls = %v", obs.calls)
			}
		})
	}
}

func TestPredict_ScalerFailure(t *testing.T) {
	bad := &feature.Scaler{
		ColumnsToScale: []string{feature.ColAge, "height"},
		Transformer:    &feature.MinMaxTransformer{Min: []float64{0, 0}, Scale: []float64{1, 1}},
	}
	set := &artifact.Set{
		Young: artifact.Pair{Segment: artifact.SegmentYoung, Model: &fakeModel{name: "young"}, Scaler: bad},
		Rest:  artifact.Pair{Segment: artifact.SegmentRest, Model: &fakeModel{name: "rest"}, Scaler: bad},
	}
	p, err := New(set)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Predict(context.Background(), scenario()); !core.IsPredictionFailed(err) {
		t.Errorf("Predict() error = %v, want PREDICTION_FAILED", err)
	}
}

func TestNew_IncompleteSet(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) expected error")
	}
	if _, err := New(&artifact.Set{}); !core.IsArtifactMissing(err) {
		t.Errorf("New() error = %v, want ARTIFACT_MISSING", err)
	}
}

func TestPredict_Concurrent(t *testing.T) {
	obs := &recordObserver{}
	p := newFakePredictor(t, &fakeModel{name: "young", value: 10}, &fakeModel{name: "rest", value: 20}, WithObserver(obs))

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(age int) {
			defer wg.Done()
			in := scenario()
			in[core.FieldAge] = age
			want := int64(20)
			if age <= artifact.YoungMaxAge {
				want = 10
			}
			got, err := p.Predict(context.Background(), in)
			if err != nil {
				errs <- err
				return
			}
			if got != want {
				errs <- errors.New("wrong segment result")
			}
		}(18 + i%20)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if len(obs.calls) != 64 {
		t.Errorf("observer calls = %d, want 64", len(obs.calls))
	}
}

func TestPredict_SampleArtifacts(t *testing.T) {
	set, err := artifact.Load(context.Background(), artifact.NewDirSource("../artifacts", ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	p, err := New(set)
	if err != nil {
		t.Fatal(err)
	}

	in := scenario()
	res, err := p.Explain(context.Background(), in)
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if res.Segment != artifact.SegmentRest {
		t.Errorf("segment = %s, want rest", res.Segment)
	}
	if res.Features[feature.ColBMIObesity] != 1 {
		t.Errorf("bmi_category_Obesity = %v", res.Features[feature.ColBMIObesity])
	}
	if res.Features[feature.ColNormalizedRiskScore] != 6.0/14.0 {
		t.Errorf("normalized_risk_score = %v", res.Features[feature.ColNormalizedRiskScore])
	}
	if _, ok := res.Features[feature.PlaceholderColumn]; ok {
		t.Errorf("placeholder column leaked into model input")
	}
	if res.Cost != 23700 {
		t.Errorf("cost = %d, want 23700 (raw %v)", res.Cost, res.Raw)
	}

	again, err := p.Predict(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if again != res.Cost {
		t.Errorf("Predict() not idempotent: %d != %d", again, res.Cost)
	}

	young := scenario()
	young[core.FieldAge] = 22
	cost, err := p.Predict(context.Background(), young)
	if err != nil {
		t.Fatalf("Predict() young error = %v", err)
	}
	if cost < 0 {
		t.Errorf("young cost = %d", cost)
	}
}
