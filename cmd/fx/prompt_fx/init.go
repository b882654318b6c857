package prompt_fx

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tripdaddy/internal/services"
	"tripdaddy/pkg/config"
	mem "tripdaddy/pkg/memcache"
	"tripdaddy/pkg/utils"
)

var Module = fx.Provide(
	ProvideTextGenerator,
	ProvideImageGenerator,
	services.NewPromptService,
	ProvideGenerationService,
)

// ProvideTextGenerator picks the text model from TEXT_PROVIDER.
func ProvideTextGenerator(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (utils.TextGenerator, error) {
	provider := strings.ToLower(cfg.AI.TextProvider)
	log.Info("initializing text model", zap.String("provider", provider))

	switch provider {
	case "openai":
		return utils.NewOpenAIClient(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIModel, cfg.AI.ImageModel), nil
	case "gemini", "":
		client, err := utils.NewGeminiClient(context.Background(), cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		lc.Append(fx.StopHook(client.Close))
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported text provider: %s. Use 'openai' or 'gemini'", cfg.AI.TextProvider)
	}
}

// ProvideImageGenerator returns the OpenAI image client, or a disabled one
// when images are switched off or no OpenAI key is set.
func ProvideImageGenerator(cfg *config.Config, log *zap.Logger) utils.ImageGenerator {
	if !cfg.AI.ImagesEnabled || cfg.AI.OpenAIAPIKey == "" {
		log.Info("day card images disabled")
		return utils.NewDisabledImageGenerator()
	}
	return utils.NewOpenAIClient(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIModel, cfg.AI.ImageModel)
}

func ProvideGenerationService(
	ai utils.TextGenerator,
	prompts services.PromptServiceInterface,
	cache mem.ResponseCache,
	cfg *config.Config,
	log *zap.Logger,
) services.GenerationServiceInterface {
	return services.NewGenerationService(ai, prompts, cache, cfg.Cache.TTL, log)
}
