package build

import (
	"context"
	"fmt"

	"github.com/cr-imson-co/layer-updater/cloud"
	"github.com/cr-imson-co/layer-updater/pipeline"
)

// ObjectStore uploads artifacts to object storage.
type ObjectStore interface {
	UploadFile(ctx context.Context, bucket, key, path string) (*cloud.UploadResult, error)
}

// LayerPublisher publishes layer versions and invokes the updater function.
type LayerPublisher interface {
	PublishFromS3(ctx context.Context, in cloud.PublishInput) (*cloud.PublishedLayer, error)
	InvokeAsync(ctx context.Context, function string, payload any) error
}

// updaterPayload is the event sent to the downstream updater function.
type updaterPayload struct {
	LayerName string `json:"layer_name"`
	Runtime   string `json:"runtime"`
}

// PublishStage uploads the archive, publishes it as a new layer version,
// and asynchronously invokes the downstream updater. It runs only on the
// primary branch; everywhere else it is skipped entirely. AWS clients are
// created lazily so credentials are only touched when publishing happens.
type PublishStage struct {
	Clients func(ctx context.Context, region string) (ObjectStore, LayerPublisher, error)
}

// NewPublishStage creates a publish stage backed by real AWS clients.
func NewPublishStage() *PublishStage {
	return &PublishStage{
		Clients: func(ctx context.Context, region string) (ObjectStore, LayerPublisher, error) {
			cfg, err := cloud.LoadConfig(ctx, region)
			if err != nil {
				return nil, nil, err
			}
			return cloud.NewUploader(cfg), cloud.NewPublisher(cfg), nil
		},
	}
}

func (s *PublishStage) Name() string { return "publish" }

func (s *PublishStage) Execute(ctx context.Context, bc *pipeline.BuildContext) error {
	cfg := bc.Config
	if bc.Branch != cfg.Publish.PrimaryBranch {
		bc.Log.Info("not on primary branch, skipping publish", map[string]any{
			"branch":  bc.Branch,
			"primary": cfg.Publish.PrimaryBranch,
		})
		return nil
	}
	if cfg.Publish.Bucket == "" {
		return fmt.Errorf("publish bucket is not configured (set BUCKET_NAME)")
	}
	if bc.ArchivePath == "" {
		return fmt.Errorf("no archive to publish")
	}

	store, publisher, err := s.Clients(ctx, cfg.Publish.Region)
	if err != nil {
		return err
	}

	upload, err := store.UploadFile(ctx, cfg.Publish.Bucket, cfg.ArchiveKey(), bc.ArchivePath)
	if err != nil {
		return err
	}
	bc.UploadedTo = fmt.Sprintf("s3://%s/%s", upload.Bucket, upload.Key)
	bc.Log.Info("archive uploaded", map[string]any{
		"destination": bc.UploadedTo,
		"bytes":       upload.Size,
		"duration":    upload.Duration.String(),
	})

	published, err := publisher.PublishFromS3(ctx, cloud.PublishInput{
		LayerName:   cfg.Layer.Name,
		Description: cfg.Layer.Description,
		License:     cfg.Layer.License,
		Bucket:      upload.Bucket,
		Key:         upload.Key,
		Runtimes:    cfg.Layer.Runtimes,
	})
	if err != nil {
		return err
	}
	bc.Published = true
	bc.LayerVersionArn = published.Arn
	bc.LayerVersion = published.Version
	bc.Log.Info("layer version published", map[string]any{
		"arn":     published.Arn,
		"version": published.Version,
	})

	payload := updaterPayload{LayerName: cfg.Layer.Name, Runtime: cfg.Runtime()}
	if err := publisher.InvokeAsync(ctx, cfg.Publish.UpdaterFunction, payload); err != nil {
		return err
	}
	bc.Log.Info("updater invoked", map[string]any{
		"function": cfg.Publish.UpdaterFunction,
		"runtime":  cfg.Runtime(),
	})
	return nil
}
