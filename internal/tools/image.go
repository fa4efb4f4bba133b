package tools

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
)

// ImageGeneratorName is the Genkit tool name for image generation.
const ImageGeneratorName = "image_generator"

const (
	imagePreviewTimeout = 60 * time.Second

	imageBaseSize = 768
	imageMinSize  = 128
	imageMaxSize  = 1024

	maxPreviewBody = 16 << 20 // 16 MiB
)

// ImageInput defines input for the image_generator tool.
type ImageInput struct {
	Prompt        string `json:"prompt" jsonschema_description:"Detailed image prompt describing the scene to create."`
	AspectRatio   string `json:"aspect_ratio,omitempty" jsonschema_description:"Aspect ratio formatted as WIDTH:HEIGHT, e.g. 1:1 or 16:9."`
	ReturnPreview bool   `json:"return_preview,omitempty" jsonschema_description:"Whether to return a Base64 encoded thumbnail of the image."`
}

// Image generates images through the Pollinations public API. The URL
// is built locally; only the optional preview requires a network fetch.
type Image struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewImage creates the image generation tool handler.
func NewImage(logger *slog.Logger) *Image {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Image{
		client:  &http.Client{Timeout: imagePreviewTimeout},
		baseURL: "https://image.pollinations.ai/prompt/",
		logger:  logger,
	}
}

// Generate builds a Pollinations image URL for the prompt. The aspect
// ratio scales a 768px base with both sides clamped to 128-1024; an
// unparseable ratio falls back to 1:1. When return_preview is set the
// image bytes are fetched and inlined as Base64, and a failed fetch is
// a tool error.
func (im *Image) Generate(ctx *ai.ToolContext, input ImageInput) (map[string]any, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		return nil, NewInvalidArgumentsError("prompt must not be empty")
	}

	width, height := dimensionsForRatio(input.AspectRatio)
	imageURL := fmt.Sprintf("%s%s?width=%d&height=%d",
		im.baseURL, url.QueryEscape(prompt), width, height)

	im.logger.Debug("Generate called", "width", width, "height", height, "preview", input.ReturnPreview)

	result := map[string]any{
		"prompt":    prompt,
		"image_url": imageURL,
		"width":     width,
		"height":    height,
	}

	if input.ReturnPreview {
		preview, err := im.fetchPreview(ctx, imageURL)
		if err != nil {
			im.logger.Warn("image preview fetch failed", "error", err)
			return nil, fmt.Errorf("fetching image preview: %w", err)
		}
		result["preview_base64"] = preview
	}

	return result, nil
}

func (im *Image) fetchPreview(ctx *ai.ToolContext, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx.Context, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	resp, err := im.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBody))
	if err != nil {
		return "", fmt.Errorf("reading image bytes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(body), nil
}

// dimensionsForRatio maps a "W:H" ratio onto concrete pixel dimensions.
func dimensionsForRatio(ratio string) (width, height int) {
	widthRatio, heightRatio := 1.0, 1.0
	if parts := strings.SplitN(strings.TrimSpace(ratio), ":", 2); len(parts) == 2 {
		w, errW := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		h, errH := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errW == nil && errH == nil && w > 0 && h > 0 {
			widthRatio, heightRatio = w, h
		}
	}
	return clampSize(imageBaseSize * widthRatio), clampSize(imageBaseSize * heightRatio)
}

func clampSize(v float64) int {
	size := int(v)
	if size < imageMinSize {
		return imageMinSize
	}
	if size > imageMaxSize {
		return imageMaxSize
	}
	return size
}
