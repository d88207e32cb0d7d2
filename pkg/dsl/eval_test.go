package dsl

import (
	"strings"
	"sync"
	"testing"
)

func TestExpr_Eval(t *testing.T) {
	tests := []struct {
		name   string
		expr   string
		value  string
		record map[string]any
		want   string
	}{
		{"keep listed value", `value in ["Occasional", "Regular"] ? value : "None"`, "Regular", nil, "Regular"},
		{"map unlisted value", `value in ["Occasional", "Regular"] ? value : "None"`, "No Smoking", nil, "None"},
		{"not equal", `value != "Normal" ? value : "None"`, "Normal", nil, "None"},
		{"identity", `value`, "Obesity", nil, "Obesity"},
		{"record access", `record["Age"] >= 60 ? "Retired" : value`, "Salaried", map[string]any{"Age": 61}, "Retired"},
		{"record float", `record["Age"] >= 60 ? "Retired" : value`, "Salaried", map[string]any{"Age": 30.0}, "Salaried"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			got, err := e.Eval(tt.value, tt.record)
			if err != nil {
				t.Fatalf("Eval() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Eval(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{`value ==`, "compile error"},
		{`value == "x"`, "must return string"},
		{`unknown_var`, "compile error"},
	}
	for _, tt := range tests {
		_, err := Compile(tt.expr)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Compile(%q) error = %v, want %q", tt.expr, err, tt.want)
		}
	}
}

func TestExpr_EvalRuntimeError(t *testing.T) {
	e := MustCompile(`record["missing"] == 1 ? "a" : value`)
	if _, err := e.Eval("x", nil); err == nil {
		t.Error("Eval() expected error for missing key")
	}
}

func TestExpr_Concurrent(t *testing.T) {
	e := MustCompile(`value != "Normal" ? value : "None"`)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, err := e.Eval("Normal", nil); err != nil || got != "None" {
				t.Errorf("Eval() = %q, %v", got, err)
			}
		}()
	}
	wg.Wait()
}
