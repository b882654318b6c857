package utils

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient serves both text generation (chat completions) and day card
// illustrations (image generation).
type OpenAIClient struct {
	client     *openai.Client
	model      string
	imageModel string
}

func NewOpenAIClient(apiKey, model, imageModel string) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	if imageModel == "" {
		imageModel = openai.CreateImageModelDallE3
	}
	return &OpenAIClient{
		client:     openai.NewClient(apiKey),
		model:      model,
		imageModel: imageModel,
	}
}

// GenerateContent ignores JSONMode: json_object mode rejects top-level arrays,
// which the question prompt asks for.
func (c *OpenAIClient) GenerateContent(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if opts.Temperature > 0 {
		req.Temperature = opts.Temperature
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned by OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.imageModel,
		N:              1,
		Size:           openai.CreateImageSize1792x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("openai image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("no image returned by OpenAI")
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return raw, nil
}
