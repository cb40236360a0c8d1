package services

import (
	"context"
	"fmt"

	"github.com/JJublanc/tidimondo-sub001/utils"
)

// ImageStore persists an image and returns its public URL.
type ImageStore interface {
	UploadImage(ctx context.Context, prefix string, img *utils.DataURI) (string, error)
}

// ImageModerator returns the moderation labels detected on an image.
type ImageModerator interface {
	ModerationLabels(ctx context.Context, img *utils.DataURI) ([]string, error)
}

// parseImage decodes raw without uploading it.
func parseImage(store ImageStore, raw string) (*utils.DataURI, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: image storage", ErrNotConfigured)
	}
	img, err := utils.ParseDataURI(raw)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	return img, nil
}
