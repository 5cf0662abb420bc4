package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/invclose/backend-go/internal/config"
	"github.com/andresuchdata/invclose/backend-go/internal/drive"
	"github.com/andresuchdata/invclose/backend-go/internal/graph"
	"github.com/andresuchdata/invclose/backend-go/internal/pipeline/monthly_close"
	"github.com/andresuchdata/invclose/backend-go/internal/source"
	"github.com/andresuchdata/invclose/backend-go/internal/storage"
)

// PipelineConfig validates the report settings.
func PipelineConfig(rc config.ReportConfig) (monthly_close.Config, error) {
	cfg := monthly_close.Config{
		StatusFlags:      rc.StatusFlags,
		Inclusion:        monthly_close.InclusionMode(rc.Inclusion),
		DegeneratePolicy: monthly_close.DegeneratePolicy(rc.DegeneratePolicy),
	}

	switch cfg.Inclusion {
	case "", monthly_close.InclusionAnySale, monthly_close.InclusionTrailingSales:
	default:
		return cfg, fmt.Errorf("unknown inclusion mode %q", rc.Inclusion)
	}
	switch cfg.DegeneratePolicy {
	case "", monthly_close.DegenerateRankD, monthly_close.DegenerateFail:
	default:
		return cfg, fmt.Errorf("unknown degenerate policy %q", rc.DegeneratePolicy)
	}
	return cfg, nil
}

// Remotes opens every remote store that has settings. The returned cleanup
// releases the clients that hold connections.
func Remotes(ctx context.Context, cfg *config.Config, log zerolog.Logger) (map[string]source.Fetcher, func(), error) {
	remotes := make(map[string]source.Fetcher)
	cleanup := func() {}

	if cfg.Drive.CredentialsJSON != "" {
		svc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, cleanup, err
		}
		remotes["drive"] = svc
	}

	if cfg.S3.Endpoint != "" {
		client, err := storage.NewS3Client(cfg.S3)
		if err != nil {
			return nil, cleanup, err
		}
		remotes["s3"] = client
	}

	if cfg.GCS.Bucket != "" {
		client, err := storage.NewGCSClient(ctx, cfg.GCS.Bucket)
		if err != nil {
			return nil, cleanup, err
		}
		remotes["gcs"] = client
		cleanup = func() {
			if err := client.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close gcs client")
			}
		}
	}

	return remotes, cleanup, nil
}

// OneDriveFactory builds Graph fetchers for the configured drive root.
func OneDriveFactory(ctx context.Context, cfg config.GraphConfig) FetcherFactory {
	return func(token string) source.Fetcher {
		return graph.NewFetcher(ctx, cfg.BaseURL, token)
	}
}
