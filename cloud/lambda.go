package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// LambdaAPI is the subset of the Lambda client the publisher needs.
type LambdaAPI interface {
	PublishLayerVersion(ctx context.Context, in *lambda.PublishLayerVersionInput, opts ...func(*lambda.Options)) (*lambda.PublishLayerVersionOutput, error)
	Invoke(ctx context.Context, in *lambda.InvokeInput, opts ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Publisher publishes layer versions and fires downstream invocations.
type Publisher struct {
	api LambdaAPI
}

// NewPublisher creates a Publisher backed by a real Lambda client.
func NewPublisher(cfg aws.Config) *Publisher {
	return &Publisher{api: lambda.NewFromConfig(cfg)}
}

// NewPublisherWithAPI creates a Publisher with a custom API implementation,
// primarily for testing.
func NewPublisherWithAPI(api LambdaAPI) *Publisher {
	return &Publisher{api: api}
}

// PublishInput describes a layer version to publish from an uploaded
// archive.
type PublishInput struct {
	LayerName   string
	Description string
	License     string
	Bucket      string
	Key         string
	Runtimes    []string
}

// PublishedLayer identifies the newly published layer version.
type PublishedLayer struct {
	Arn     string
	Version int64
}

// PublishFromS3 publishes a new layer version whose content was previously
// uploaded to S3.
func (p *Publisher) PublishFromS3(ctx context.Context, in PublishInput) (*PublishedLayer, error) {
	runtimes := make([]types.Runtime, 0, len(in.Runtimes))
	for _, r := range in.Runtimes {
		runtimes = append(runtimes, types.Runtime(r))
	}

	req := &lambda.PublishLayerVersionInput{
		LayerName:          aws.String(in.LayerName),
		CompatibleRuntimes: runtimes,
		Content: &types.LayerVersionContentInput{
			S3Bucket: aws.String(in.Bucket),
			S3Key:    aws.String(in.Key),
		},
	}
	if in.Description != "" {
		req.Description = aws.String(in.Description)
	}
	if in.License != "" {
		req.LicenseInfo = aws.String(in.License)
	}

	out, err := p.api.PublishLayerVersion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("publishing layer %s: %w", in.LayerName, err)
	}

	return &PublishedLayer{
		Arn:     aws.ToString(out.LayerVersionArn),
		Version: out.Version,
	}, nil
}

// InvokeAsync fires an event invocation of the given function and does not
// wait for it to run.
func (p *Publisher) InvokeAsync(ctx context.Context, function string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling payload for %s: %w", function, err)
	}

	out, err := p.api.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(function),
		InvocationType: types.InvocationTypeEvent,
		Payload:        data,
	})
	if err != nil {
		return fmt.Errorf("invoking %s: %w", function, err)
	}
	if out.StatusCode != http.StatusAccepted {
		return fmt.Errorf("invoking %s: unexpected status %d", function, out.StatusCode)
	}
	return nil
}
