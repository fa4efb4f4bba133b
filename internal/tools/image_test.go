package tools

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testImage(t *testing.T) *Image {
	t.Helper()
	return NewImage(slog.New(slog.DiscardHandler))
}

func TestGenerate_BuildsURL(t *testing.T) {
	im := testImage(t)

	result, err := im.Generate(toolCtx(), ImageInput{Prompt: "a red fox in snow"})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	url, _ := result["image_url"].(string)
	if !strings.HasPrefix(url, "https://image.pollinations.ai/prompt/") {
		t.Errorf("image_url = %q, wrong base", url)
	}
	if !strings.Contains(url, "width=768") || !strings.Contains(url, "height=768") {
		t.Errorf("image_url = %q, want default 768x768", url)
	}
	if result["width"] != 768 || result["height"] != 768 {
		t.Errorf("dimensions = %vx%v, want 768x768", result["width"], result["height"])
	}
	if _, ok := result["preview_base64"]; ok {
		t.Error("preview_base64 present without return_preview")
	}
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	im := testImage(t)

	_, err := im.Generate(toolCtx(), ImageInput{Prompt: "  "})
	if err == nil {
		t.Fatal("Generate(empty prompt) expected error, got nil")
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Errorf("error type = %T, want *ToolError", err)
	}
}

func TestDimensionsForRatio(t *testing.T) {
	tests := []struct {
		ratio      string
		wantWidth  int
		wantHeight int
	}{
		{"1:1", 768, 768},
		{"16:9", 1024, 432}, // 768*16 clamps to 1024
		{"9:16", 432, 1024},
		{"0.1:1", 128, 768}, // 76 clamps up to 128
		{"", 768, 768},
		{"junk", 768, 768},
		{"4:0", 768, 768}, // zero side rejected, ratio falls back
		{"-1:2", 768, 768},
	}

	for _, tt := range tests {
		t.Run(tt.ratio, func(t *testing.T) {
			w, h := dimensionsForRatio(tt.ratio)
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("dimensionsForRatio(%q) = %dx%d, want %dx%d",
					tt.ratio, w, h, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestGenerate_Preview(t *testing.T) {
	imageBytes := []byte{0x89, 'P', 'N', 'G'}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(imageBytes)
	}))
	defer srv.Close()

	im := testImage(t)
	im.baseURL = srv.URL + "/prompt/"

	result, err := im.Generate(toolCtx(), ImageInput{Prompt: "fox", ReturnPreview: true})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	want := base64.StdEncoding.EncodeToString(imageBytes)
	if result["preview_base64"] != want {
		t.Errorf("preview_base64 = %v, want %q", result["preview_base64"], want)
	}
}

func TestGenerate_PreviewFetchFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	im := testImage(t)
	im.baseURL = srv.URL + "/prompt/"

	if _, err := im.Generate(toolCtx(), ImageInput{Prompt: "fox", ReturnPreview: true}); err == nil {
		t.Fatal("Generate(preview, 5xx) expected error, got nil")
	}
}
