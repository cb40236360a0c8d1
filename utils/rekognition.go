package utils

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// ImageModerator flags images carrying unsafe content.
type ImageModerator struct {
	client        *rekognition.Client
	minConfidence float32
}

func NewImageModerator(ctx context.Context, region string, minConfidence float32) (*ImageModerator, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config for Rekognition: %w", err)
	}
	return &ImageModerator{client: rekognition.NewFromConfig(cfg), minConfidence: minConfidence}, nil
}

// ModerationLabels returns the names of the labels detected above the
// configured confidence. An empty result means the image is acceptable.
func (m *ImageModerator) ModerationLabels(ctx context.Context, img *DataURI) ([]string, error) {
	out, err := m.client.DetectModerationLabels(ctx, &rekognition.DetectModerationLabelsInput{
		Image:         &types.Image{Bytes: img.Data},
		MinConfidence: aws.Float32(m.minConfidence),
	})
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(out.ModerationLabels))
	for _, l := range out.ModerationLabels {
		labels = append(labels, aws.ToString(l.Name))
	}
	return labels, nil
}
