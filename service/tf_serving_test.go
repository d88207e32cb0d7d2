package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rushteam/inscost/core"
)

func TestTFServingClient_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/v1/models/rest:predict":
			w.Write([]byte(`{"predictions":[15000.5, [9000]]}`))
		case "/v1/models/short:predict":
			w.Write([]byte(`{"predictions":[1]}`))
		case "/v1/models/text:predict":
			w.Write([]byte(`{"predictions":[{"value":1}, 2]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	auth := WithTFServingAuth(&AuthConfig{Type: "api_key", APIKey: "k"})
	req := &core.MLPredictRequest{Instances: [][]float64{{1, 2}, {3, 4}}}

	resp, err := NewTFServingClient(srv.URL, "rest", auth).Predict(context.Background(), req)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if len(resp.Predictions) != 2 || resp.Predictions[0] != 15000.5 || resp.Predictions[1] != 9000 {
		t.Errorf("predictions = %v", resp.Predictions)
	}

	tests := []struct {
		model string
		want  string
	}{
		{"short", "expected 2 predictions"},
		{"text", "unexpected prediction type"},
		{"missing", "status=404"},
	}
	for _, tt := range tests {
		_, err := NewTFServingClient(srv.URL, tt.model, auth).Predict(context.Background(), req)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error = %v, want %q", tt.model, err, tt.want)
		}
	}

	if _, err := NewTFServingClient(srv.URL, "rest").Predict(context.Background(), &core.MLPredictRequest{}); err == nil {
		t.Error("Predict() expected error for empty instances")
	}
}

func TestTFServingClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/models/rest/versions/2" {
			w.Write([]byte(`{"model_version_status":[{"version":"2","state":"AVAILABLE"}]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if err := NewTFServingClient(srv.URL, "rest", WithTFServingVersion("2")).Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
	if err := NewTFServingClient(srv.URL, "rest").Health(context.Background()); err == nil {
		t.Error("Health() expected error for unknown model path")
	}
}
