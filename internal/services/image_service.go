package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"tripdaddy/internal/models/response_models"
	"tripdaddy/internal/repositories"
	"tripdaddy/pkg/utils"
)

const (
	imageTimeout     = 90 * time.Second
	imageJPEGQuality = 80
)

type ImageServiceInterface interface {
	// GenerateDayImage returns a data URL for the day card, or "" when the
	// image could not be produced.
	GenerateDayImage(ctx context.Context, day response_models.DayPlan, destination string) string
	// GenerateInBackground starts one goroutine per day and stores each image
	// on the trip as soon as it is ready.
	GenerateInBackground(tripID, destination string, days []response_models.DayPlan)
	// Wait blocks until every background image job has finished.
	Wait()
}

type ImageService struct {
	images   utils.ImageGenerator
	prompts  PromptServiceInterface
	tripRepo repositories.ITripRepository
	maxWidth int
	log      *zap.Logger
	wg       sync.WaitGroup
}

func NewImageService(
	images utils.ImageGenerator,
	prompts PromptServiceInterface,
	tripRepo repositories.ITripRepository,
	maxWidth int,
	log *zap.Logger,
) ImageServiceInterface {
	return &ImageService{
		images:   images,
		prompts:  prompts,
		tripRepo: tripRepo,
		maxWidth: maxWidth,
		log:      log.Named("images"),
	}
}

func (s *ImageService) GenerateDayImage(ctx context.Context, day response_models.DayPlan, destination string) string {
	prompt := s.prompts.BuildDayImagePrompt(day.Title, day.AreaFocus, destination, day.Vibe)

	raw, err := s.images.GenerateImage(ctx, prompt)
	if err != nil {
		if !errors.Is(err, utils.ErrImagesDisabled) {
			s.log.Warn("day image generation failed", zap.Int("day", day.DayNumber), zap.Error(err))
		}
		return ""
	}

	dataURL, err := s.toDataURL(raw)
	if err != nil {
		s.log.Warn("day image could not be encoded", zap.Int("day", day.DayNumber), zap.Error(err))
		return ""
	}
	return dataURL
}

func (s *ImageService) GenerateInBackground(tripID, destination string, days []response_models.DayPlan) {
	for _, day := range days {
		s.wg.Add(1)
		go func(day response_models.DayPlan) {
			defer s.wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), imageTimeout)
			defer cancel()

			dataURL := s.GenerateDayImage(ctx, day, destination)
			if dataURL == "" {
				return
			}
			if err := s.tripRepo.SetDayImage(ctx, tripID, day.DayNumber, dataURL); err != nil {
				s.log.Error("failed to store day image",
					zap.String("trip_id", tripID), zap.Int("day", day.DayNumber), zap.Error(err))
				return
			}
			s.log.Debug("day image stored", zap.String("trip_id", tripID), zap.Int("day", day.DayNumber))
		}(day)
	}
}

func (s *ImageService) Wait() {
	s.wg.Wait()
}

// toDataURL downsizes the image to maxWidth and re-encodes it as JPEG. Bytes
// that cannot be decoded are passed through with their sniffed content type.
func (s *ImageService) toDataURL(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("empty image")
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return "data:" + http.DetectContentType(raw) + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
	}

	if s.maxWidth > 0 && img.Bounds().Dx() > s.maxWidth {
		img = imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(imageJPEGQuality)); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
