package updater

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/cr-imson-co/layer-updater/pipeline"
)

// LambdaAPI is the subset of the Lambda client the updater needs.
type LambdaAPI interface {
	ListFunctions(ctx context.Context, in *lambda.ListFunctionsInput, opts ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error)
	GetFunction(ctx context.Context, in *lambda.GetFunctionInput, opts ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error)
	ListLayerVersions(ctx context.Context, in *lambda.ListLayerVersionsInput, opts ...func(*lambda.Options)) (*lambda.ListLayerVersionsOutput, error)
	UpdateFunctionConfiguration(ctx context.Context, in *lambda.UpdateFunctionConfigurationInput, opts ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error)
}

// Updater rewrites function layer configurations.
type Updater struct {
	api LambdaAPI
	log pipeline.Logger
}

// New creates an Updater backed by a real Lambda client.
func New(cfg aws.Config, log pipeline.Logger) *Updater {
	return &Updater{api: lambda.NewFromConfig(cfg), log: log}
}

// NewWithAPI creates an Updater with a custom API implementation, primarily
// for testing.
func NewWithAPI(api LambdaAPI, log pipeline.Logger) *Updater {
	return &Updater{api: api, log: log}
}

// Request names the layer and runtime to retarget. When FunctionNames is
// empty, every function of the runtime is considered.
type Request struct {
	LayerName     string
	Runtime       string
	FunctionNames []string
}

// Report summarizes what a retarget run did.
type Report struct {
	Examined    int
	Matched     int
	BestVersion *LayerVersionARN
	BestArn     string
	Updated     []string
}

// Retarget points every function that uses the named layer at its newest
// version for the given runtime, preserving the order of each function's
// layer list.
func (u *Updater) Retarget(ctx context.Context, req Request) (*Report, error) {
	if req.LayerName == "" {
		return nil, fmt.Errorf("a layer name to update must be specified")
	}
	if req.Runtime == "" {
		return nil, fmt.Errorf("a target runtime must be specified")
	}

	candidates, err := u.candidateFunctions(ctx, req)
	if err != nil {
		return nil, err
	}
	u.log.Info("pulled back function details", map[string]any{"count": len(candidates)})

	// Narrow to functions that actually use the layer being updated.
	targets := make([]types.FunctionConfiguration, 0, len(candidates))
	for _, fn := range candidates {
		if usesLayer(fn, req.LayerName) {
			targets = append(targets, fn)
		}
	}
	u.log.Info("filtered to functions using the layer", map[string]any{
		"layer": req.LayerName,
		"count": len(targets),
	})

	bestArn, best, err := u.bestLayerVersion(ctx, req.LayerName, req.Runtime)
	if err != nil {
		return nil, err
	}
	u.log.Info("best layer version identified", map[string]any{
		"layer":   req.LayerName,
		"version": best.Version,
	})

	report := &Report{
		Examined:    len(candidates),
		Matched:     len(targets),
		BestVersion: best,
		BestArn:     bestArn,
	}

	for _, fn := range targets {
		newLayers, changed, err := retargetLayers(fn.Layers, req.LayerName, bestArn)
		if err != nil {
			return report, fmt.Errorf("function %s: %w", aws.ToString(fn.FunctionName), err)
		}
		if !changed {
			continue
		}

		u.log.Info("updating function layer configuration", map[string]any{
			"function": aws.ToString(fn.FunctionName),
			"layers":   newLayers,
		})
		_, err = u.api.UpdateFunctionConfiguration(ctx, &lambda.UpdateFunctionConfigurationInput{
			FunctionName: fn.FunctionArn,
			Layers:       newLayers,
		})
		if err != nil {
			return report, fmt.Errorf("updating %s: %w", aws.ToString(fn.FunctionName), err)
		}
		report.Updated = append(report.Updated, aws.ToString(fn.FunctionName))
	}

	return report, nil
}

// candidateFunctions gathers functions by explicit name, or pages through
// every function, keeping only those on the target runtime.
func (u *Updater) candidateFunctions(ctx context.Context, req Request) ([]types.FunctionConfiguration, error) {
	runtime := types.Runtime(req.Runtime)

	if len(req.FunctionNames) > 0 {
		funcs := make([]types.FunctionConfiguration, 0, len(req.FunctionNames))
		for _, name := range req.FunctionNames {
			out, err := u.api.GetFunction(ctx, &lambda.GetFunctionInput{FunctionName: aws.String(name)})
			if err != nil {
				return nil, fmt.Errorf("looking up function %s: %w", name, err)
			}
			if out.Configuration != nil && out.Configuration.Runtime == runtime {
				funcs = append(funcs, *out.Configuration)
			}
		}
		return funcs, nil
	}

	var funcs []types.FunctionConfiguration
	var marker *string
	for {
		out, err := u.api.ListFunctions(ctx, &lambda.ListFunctionsInput{Marker: marker})
		if err != nil {
			return nil, fmt.Errorf("listing functions: %w", err)
		}
		for _, fn := range out.Functions {
			if fn.Runtime == runtime {
				funcs = append(funcs, fn)
			}
		}
		if out.NextMarker == nil {
			return funcs, nil
		}
		marker = out.NextMarker
	}
}

// bestLayerVersion pages through the layer's versions for the runtime and
// returns the highest-numbered one.
func (u *Updater) bestLayerVersion(ctx context.Context, layerName, runtime string) (string, *LayerVersionARN, error) {
	var bestArn string
	var best *LayerVersionARN

	var marker *string
	for {
		out, err := u.api.ListLayerVersions(ctx, &lambda.ListLayerVersionsInput{
			LayerName:         aws.String(layerName),
			CompatibleRuntime: types.Runtime(runtime),
			Marker:            marker,
		})
		if err != nil {
			return "", nil, fmt.Errorf("listing versions of layer %s: %w", layerName, err)
		}
		for _, lv := range out.LayerVersions {
			arn := aws.ToString(lv.LayerVersionArn)
			parsed, err := ParseLayerVersionARN(arn)
			if err != nil {
				return "", nil, err
			}
			if best == nil || parsed.Version > best.Version {
				best, bestArn = parsed, arn
			}
		}
		if out.NextMarker == nil {
			break
		}
		marker = out.NextMarker
	}

	if best == nil {
		return "", nil, fmt.Errorf("layer %s has no versions for runtime %s", layerName, runtime)
	}
	return bestArn, best, nil
}

// usesLayer reports whether the function has a version of the named layer
// attached.
func usesLayer(fn types.FunctionConfiguration, layerName string) bool {
	for _, l := range fn.Layers {
		parsed, err := ParseLayerVersionARN(aws.ToString(l.Arn))
		if err != nil {
			continue
		}
		if parsed.Name == layerName {
			return true
		}
	}
	return false
}

// retargetLayers rebuilds a function's layer list, substituting only the
// named layer's ARN and leaving the rest in place.
func retargetLayers(layers []types.Layer, layerName, bestArn string) ([]string, bool, error) {
	newLayers := make([]string, 0, len(layers))
	changed := false
	for _, l := range layers {
		arn := aws.ToString(l.Arn)
		if arn == bestArn {
			return nil, false, nil
		}
		parsed, err := ParseLayerVersionARN(arn)
		if err != nil {
			return nil, false, err
		}
		if parsed.Name == layerName {
			newLayers = append(newLayers, bestArn)
			changed = true
		} else {
			newLayers = append(newLayers, arn)
		}
	}
	return newLayers, changed, nil
}
