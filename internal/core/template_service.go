package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edvin/clustertemplates/internal/metrics"
	"github.com/edvin/clustertemplates/internal/model"
	"github.com/edvin/clustertemplates/internal/platform"
	"github.com/edvin/clustertemplates/internal/storage"
)

// maxKeyAttempts bounds how many fresh keys are tried when the store
// reports a collision.
const maxKeyAttempts = 3

// ArtifactStore persists rendered templates. Implementations must reject
// writes to an existing key with storage.ErrArtifactExists.
type ArtifactStore interface {
	Put(ctx context.Context, key string, body []byte) (*model.Artifact, error)
}

type TemplateService struct {
	store  ArtifactStore
	newKey func() string
	logger zerolog.Logger
}

func NewTemplateService(logger zerolog.Logger, store ArtifactStore) *TemplateService {
	return &TemplateService{
		store:  store,
		newKey: platform.NewArtifactKey,
		logger: logger.With().Str("component", "template-service").Logger(),
	}
}

// Generate renders the deployment template for req and uploads it under a
// fresh key, returning the stored artifact.
func (s *TemplateService) Generate(ctx context.Context, req *model.ClusterRequest) (*model.Artifact, error) {
	params := BuildParams(req)
	variant := TemplateName(req.VPC)

	body, err := Render(params, req.VPC)
	if err != nil {
		metrics.TemplateFailures.WithLabelValues("render").Inc()
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxKeyAttempts; attempt++ {
		key := s.newKey()
		artifact, err := s.store.Put(ctx, key, body)
		if err == nil {
			metrics.TemplatesGenerated.WithLabelValues(variant).Inc()
			s.logger.Info().
				Str("key", artifact.Key).
				Str("variant", variant).
				Int("size", artifact.Size).
				Msg("template uploaded")
			return artifact, nil
		}
		if !errors.Is(err, storage.ErrArtifactExists) {
			metrics.TemplateFailures.WithLabelValues("upload").Inc()
			return nil, fmt.Errorf("upload template: %w", err)
		}
		s.logger.Warn().Str("key", key).Int("attempt", attempt).Msg("artifact key collision, retrying")
		lastErr = err
	}

	metrics.TemplateFailures.WithLabelValues("upload").Inc()
	return nil, fmt.Errorf("upload template after %d attempts: %w", maxKeyAttempts, lastErr)
}
