package conv

import (
	"encoding/json"
	"testing"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{"nil", nil, 0, false},
		{"int", 30, 30, true},
		{"int64", int64(2), 2, true},
		{"float64", 10.5, 10.5, true},
		{"json number", json.Number("12"), 12, true},
		{"numeric string", "7", 7, true},
		{"text", "Male", 0, false},
		{"bool", true, 1, true},
		{"slice", []int{1}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ToFloat64(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestConfigGet(t *testing.T) {
	m := map[string]any{"protocol": "v1", "timeout": 3}
	if got := ConfigGet[string](m, "protocol", "v2"); got != "v1" {
		t.Errorf("protocol = %q, want v1", got)
	}
	if got := ConfigGet[string](m, "timeout", "x"); got != "x" {
		t.Errorf("type mismatch should fall back to default, got %q", got)
	}
	if got := ConfigGet[string](nil, "protocol", "v2"); got != "v2" {
		t.Errorf("nil map should return default, got %q", got)
	}
}
