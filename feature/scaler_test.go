package feature

import (
	"errors"
	"math"
	"testing"
)

// recordingTransformer 记录变换时收到的行，并把每个值加 100。
type recordingTransformer struct {
	got []float64
	err error
}

func (r *recordingTransformer) Transform(row []float64) ([]float64, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.got = append([]float64(nil), row...)
	out := make([]float64, len(row))
	for i, x := range row {
		out[i] = x + 100
	}
	return out, nil
}

func TestScaler_ApplyWithPlaceholder(t *testing.T) {
	rt := &recordingTransformer{}
	s := &Scaler{
		ColumnsToScale: []string{ColAge, ColDependants, PlaceholderColumn, ColIncomeLakhs},
		Transformer:    rt,
	}
	v := NewVector()
	v.Set(ColAge, 30)
	v.Set(ColDependants, 2)
	v.Set(ColIncomeLakhs, 10)
	v.Set(ColGenderMale, 1)

	out, err := s.Apply(v)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	wantRow := []float64{30, 2, 0, 10}
	if len(rt.got) != len(wantRow) {
		t.Fatalf("transform row = %v, want %v", rt.got, wantRow)
	}
	for i := range wantRow {
		if rt.got[i] != wantRow[i] {
			t.Errorf("transform row[%d] = %v, want %v", i, rt.got[i], wantRow[i])
		}
	}

	if len(out) != NumColumns {
		t.Fatalf("scaled vector has %d columns, want %d", len(out), NumColumns)
	}
	if _, ok := out.Map()[PlaceholderColumn]; ok {
		t.Errorf("placeholder column leaked into scaled vector")
	}
	if out.Get(ColAge) != 130 || out.Get(ColIncomeLakhs) != 110 {
		t.Errorf("scaled values = %v", out.Map())
	}
	if out.Get(ColGenderMale) != 1 {
		t.Errorf("unscaled column changed: gender_Male = %v", out.Get(ColGenderMale))
	}
	if v.Get(ColAge) != 30 {
		t.Errorf("Apply mutated its input")
	}
}

func TestScaler_ApplyErrors(t *testing.T) {
	if _, err := (&Scaler{ColumnsToScale: []string{"bogus"}, Transformer: &recordingTransformer{}}).Apply(NewVector()); err == nil {
		t.Errorf("expected error for unknown column")
	}
	boom := errors.New("boom")
	_, err := (&Scaler{ColumnsToScale: []string{ColAge}, Transformer: &recordingTransformer{err: boom}}).Apply(NewVector())
	if !errors.Is(err, boom) {
		t.Errorf("Apply() error = %v, want wrapping %v", err, boom)
	}
	var nilScaler *Scaler
	if _, err := nilScaler.Apply(NewVector()); err == nil {
		t.Errorf("expected error for nil scaler")
	}
}

func TestDecodeScaler(t *testing.T) {
	data := []byte(`{
		"cols_to_scale": ["age", "number_of_dependants", "income_level", "income_lakhs", "insurance_plan", "genetical_risk"],
		"scaler": {"type": "min_max", "min": [-0.25, 0, 0, -0.01, -0.5, 0], "scale": [0.0125, 0.2, 0.333, 0.01, 0.5, 0.2]}
	}`)
	s, err := DecodeScaler(data)
	if err != nil {
		t.Fatalf("DecodeScaler() error = %v", err)
	}
	v := NewVector()
	v.Set(ColAge, 30)
	v.Set(ColInsurancePlan, 2)
	out, err := s.Apply(v)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got, want := out.Get(ColAge), 30*0.0125-0.25; math.Abs(got-want) > 1e-12 {
		t.Errorf("age = %v, want %v", got, want)
	}
	if got := out.Get(ColInsurancePlan); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("insurance_plan = %v, want 0.5", got)
	}
}

func TestDecodeScaler_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"empty columns", `{"cols_to_scale": [], "scaler": {"type": "min_max"}}`},
		{"unknown column", `{"cols_to_scale": ["height"], "scaler": {"type": "min_max", "min": [0], "scale": [1]}}`},
		{"param count", `{"cols_to_scale": ["age"], "scaler": {"type": "standard", "mean": [0, 1], "scale": [1]}}`},
		{"unknown type", `{"cols_to_scale": ["age"], "scaler": {"type": "robust"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeScaler([]byte(tt.data)); err == nil {
				t.Errorf("DecodeScaler(%s) expected error", tt.data)
			}
		})
	}
}

func TestStandardTransformer(t *testing.T) {
	st := &StandardTransformer{Mean: []float64{10, 5}, Scale: []float64{2, 0}}
	out, err := st.Transform([]float64{14, 7})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if out[0] != 2 || out[1] != 7 {
		t.Errorf("Transform() = %v, want [2 7]", out)
	}
	if _, err := st.Transform([]float64{1}); err == nil {
		t.Errorf("expected length error")
	}
}
