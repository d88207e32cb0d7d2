package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rushteam/inscost/core"
)

func TestKServeClient_PredictV2(t *testing.T) {
	var gotPath string
	var gotShape []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body struct {
			Inputs []struct {
				Shape []int     `json:"shape"`
				Data  []float64 `json:"data"`
			} `json:"inputs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotShape = body.Inputs[0].Shape
		w.Write([]byte(`{"model_name":"rest","outputs":[{"name":"aux","data":[1]},{"name":"predict","data":[[12345.6]]}]}`))
	}))
	defer srv.Close()

	c := NewKServeClient(srv.URL, "rest", WithKServeV2OutputName("predict"), WithKServeVersion("3"))
	resp, err := c.Predict(context.Background(), &core.MLPredictRequest{Instances: [][]float64{{1, 2, 3}}})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if gotPath != "/v2/models/rest/versions/3/infer" {
		t.Errorf("path = %q", gotPath)
	}
	if len(gotShape) != 2 || gotShape[0] != 1 || gotShape[1] != 3 {
		t.Errorf("shape = %v, want [1 3]", gotShape)
	}
	if len(resp.Predictions) != 1 || resp.Predictions[0] != 12345.6 {
		t.Errorf("predictions = %v", resp.Predictions)
	}
}

func TestKServeClient_PredictV1(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models/young:predict" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"predictions":[8000.25]}`))
	}))
	defer srv.Close()

	c := NewKServeClient(srv.URL, "young",
		WithKServeProtocol(KServeV1),
		WithKServeAuth(&AuthConfig{Type: "bearer", Token: "secret"}),
	)
	resp, err := c.Predict(context.Background(), &core.MLPredictRequest{Instances: [][]float64{{1}}})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if resp.Predictions[0] != 8000.25 {
		t.Errorf("prediction = %v, want 8000.25", resp.Predictions[0])
	}
}

func TestKServeClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/models/broken/infer":
			http.Error(w, "model crashed", http.StatusInternalServerError)
		case "/v2/models/empty/infer":
			w.Write([]byte(`{"outputs":[{"name":"predict","data":[]}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	req := &core.MLPredictRequest{Instances: [][]float64{{1, 2}}}
	if _, err := NewKServeClient(srv.URL, "broken").Predict(ctx, req); err == nil {
		t.Errorf("expected error for 500 response")
	}
	if _, err := NewKServeClient(srv.URL, "empty").Predict(ctx, req); err == nil {
		t.Errorf("expected error for prediction count mismatch")
	}
	if _, err := NewKServeClient(srv.URL, "empty").Predict(ctx, &core.MLPredictRequest{}); err == nil {
		t.Errorf("expected error for empty instances")
	}
	ragged := &core.MLPredictRequest{Instances: [][]float64{{1, 2}, {1}}}
	if _, err := NewKServeClient(srv.URL, "empty").Predict(ctx, ragged); err == nil {
		t.Errorf("expected error for ragged instances")
	}
}

func TestKServeClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/health/ready" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if err := TestConnection(context.Background(), NewKServeClient(srv.URL, "rest")); err != nil {
		t.Errorf("Health() error = %v", err)
	}
	v1 := NewKServeClient(srv.URL, "rest", WithKServeProtocol(KServeV1))
	if err := v1.Health(context.Background()); err == nil {
		t.Errorf("expected v1 health failure")
	}
}

func TestNewMLService(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *ServiceConfig
		wantErr bool
	}{
		{"nil", nil, true},
		{"kserve", &ServiceConfig{Type: ServiceTypeKServe, Endpoint: "http://localhost:8000", ModelName: "rest"}, false},
		{"tfserving", &ServiceConfig{Type: ServiceTypeTFServing, Endpoint: "http://localhost:8501", ModelName: "rest"}, false},
		{"unknown", &ServiceConfig{Type: "torchserve", Endpoint: "http://localhost:8501", ModelName: "rest"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMLService(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMLService() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *ServiceConfig
		wantErr bool
	}{
		{"ok", &ServiceConfig{Endpoint: "https://models.local", ModelName: "rest"}, false},
		{"no endpoint", &ServiceConfig{ModelName: "rest"}, true},
		{"grpc endpoint", &ServiceConfig{Endpoint: "localhost:8500", ModelName: "rest"}, true},
		{"no model", &ServiceConfig{Endpoint: "http://localhost:8000"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateConfig(tt.cfg); (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
