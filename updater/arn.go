// Package updater retargets Lambda functions onto the newest version of a
// published layer.
package updater

import (
	"fmt"
	"strconv"
	"strings"
)

// LayerVersionARN is a parsed layer version ARN of the form
// arn:aws:lambda:<region>:<account>:layer:<name>:<version>.
type LayerVersionARN struct {
	Region    string
	AccountID string
	Name      string
	Version   int
}

// ParseLayerVersionARN parses a layer version ARN.
func ParseLayerVersionARN(arn string) (*LayerVersionARN, error) {
	parts := strings.Split(arn, ":")
	if len(parts) != 8 || parts[0] != "arn" || parts[2] != "lambda" || parts[5] != "layer" {
		return nil, fmt.Errorf("malformed layer version ARN %q", arn)
	}

	version, err := strconv.Atoi(parts[7])
	if err != nil {
		return nil, fmt.Errorf("malformed layer version in ARN %q: %w", arn, err)
	}

	return &LayerVersionARN{
		Region:    parts[3],
		AccountID: parts[4],
		Name:      parts[6],
		Version:   version,
	}, nil
}
