package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

type testConfig struct {
	baseURL string
	token   string
	model   string
}

func (c testConfig) GetImageBaseURL() string { return c.baseURL }
func (c testConfig) GetImageToken() string   { return c.token }
func (c testConfig) GetImageModel() string   { return c.model }

func TestGenerate(t *testing.T) {
	var got GenerationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/images/generations" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"b64_json":"aGVsbG8="}]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig{baseURL: server.URL, token: "sk-test", model: "dall-e-2"}, WithLogger(zaptest.NewLogger(t)))
	b64, err := client.Generate(context.Background(), "a red fox", "512x512")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if b64 != "aGVsbG8=" {
		t.Errorf("Generate() = %q", b64)
	}

	want := GenerationRequest{Model: "dall-e-2", Prompt: "a red fox", N: 1, Size: "512x512", ResponseFormat: "b64_json"}
	if got != want {
		t.Errorf("request = %+v, want %+v", got, want)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
		wantIs  error
	}{
		{
			name:    "api error message",
			status:  http.StatusBadRequest,
			body:    `{"error":{"message":"Invalid size","type":"invalid_request_error"}}`,
			wantErr: "Invalid size",
		},
		{
			name:    "opaque error",
			status:  http.StatusBadGateway,
			body:    `upstream down`,
			wantErr: "status 502",
		},
		{
			name:   "empty data",
			status: http.StatusOK,
			body:   `{"data":[]}`,
			wantIs: ErrNoImage,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `{"data":`,
			wantErr: "error parsing response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(testConfig{baseURL: server.URL})
			_, err := client.Generate(context.Background(), "prompt", "256x256")
			if err == nil {
				t.Fatal("Generate() succeeded, want error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantIs)
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Generate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("Authorization = %q, want none", auth)
		}
		_, _ = w.Write([]byte(`{"data":[{"b64_json":"eA=="}]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig{baseURL: server.URL})
	if _, err := client.Generate(context.Background(), "prompt", "256x256"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
}

func TestGenerateCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(testConfig{baseURL: server.URL})
	if _, err := client.Generate(ctx, "prompt", "256x256"); !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}
