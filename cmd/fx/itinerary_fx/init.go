package itinerary_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tripdaddy/internal/repositories"
	"tripdaddy/internal/services"
	"tripdaddy/pkg/config"
	"tripdaddy/pkg/utils"
)

var Module = fx.Options(
	fx.Provide(
		provideImageService,
		services.NewExportService,
		services.NewItineraryService,
	),
	fx.Invoke(waitForImages),
)

func provideImageService(
	images utils.ImageGenerator,
	prompts services.PromptServiceInterface,
	tripRepo repositories.ITripRepository,
	cfg *config.Config,
	log *zap.Logger,
) services.ImageServiceInterface {
	return services.NewImageService(images, prompts, tripRepo, cfg.AI.ImageMaxWidth, log)
}

// waitForImages lets in-flight day images finish before the stores close.
func waitForImages(lc fx.Lifecycle, images services.ImageServiceInterface) {
	lc.Append(fx.StopHook(images.Wait))
}
