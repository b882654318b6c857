package utils

import (
	"context"
	"errors"
)

// GenerateOptions tunes a single text generation call.
type GenerateOptions struct {
	// JSONMode asks the provider for a JSON-only response when it supports it.
	JSONMode    bool
	Temperature float32
}

// TextGenerator is the opaque model capability: a prompt goes in, raw text
// (ideally JSON) comes out.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// ImageGenerator renders a prompt into encoded image bytes.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

var ErrImagesDisabled = errors.New("image generation disabled")

type disabledImageGenerator struct{}

func NewDisabledImageGenerator() ImageGenerator {
	return disabledImageGenerator{}
}

func (disabledImageGenerator) GenerateImage(context.Context, string) ([]byte, error) {
	return nil, ErrImagesDisabled
}
