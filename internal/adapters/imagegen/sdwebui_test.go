package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/longregen/lexigen/internal/config"
)

func testGenConfig(url string, images int) config.GenerationConfig {
	return config.GenerationConfig{
		Backend: "sd-webui",
		URL:     url,
		APIKey:  "test-key",
		Images:  images,
		Width:   512,
		Height:  512,
		Steps:   30,
	}
}

func TestSDWebUIGenerate(t *testing.T) {
	payloads := [][]byte{[]byte("png-one"), []byte("png-two")}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sdapi/v1/txt2img" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %s", got)
		}

		var req txt2imgRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Prompt != "a cat on a roof" {
			t.Errorf("unexpected prompt: %s", req.Prompt)
		}
		if req.BatchSize != 2 || req.Width != 512 || req.Height != 512 || req.Steps != 30 {
			t.Errorf("unexpected generation parameters: %+v", req)
		}

		var encoded []string
		for _, p := range payloads {
			encoded = append(encoded, base64.StdEncoding.EncodeToString(p))
		}
		json.NewEncoder(w).Encode(txt2imgResponse{Images: encoded})
	}))
	defer server.Close()

	client := NewSDWebUIClient(testGenConfig(server.URL, 2))
	images, err := client.Generate(context.Background(), "a cat on a roof")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	for i, img := range images {
		if string(img) != string(payloads[i]) {
			t.Errorf("image %d: expected %q, got %q", i, payloads[i], img)
		}
	}
}

func TestSDWebUIGenerate_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(txt2imgResponse{
			Images: []string{base64.StdEncoding.EncodeToString([]byte("only-one"))},
		})
	}))
	defer server.Close()

	client := NewSDWebUIClient(testGenConfig(server.URL, 4))
	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Error("expected error for short image batch")
	}
}

func TestSDWebUIGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid sampler", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewSDWebUIClient(testGenConfig(server.URL, 1))
	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Error("expected error for API failure")
	}
}

func TestSDWebUIGenerate_BadBase64(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(txt2imgResponse{Images: []string{"not base64 at all!!"}})
	}))
	defer server.Close()

	client := NewSDWebUIClient(testGenConfig(server.URL, 1))
	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Error("expected error for undecodable image payload")
	}
}
