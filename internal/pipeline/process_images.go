package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// ProcessImages processes multiple images sequentially and returns results.
func (p *Pipeline) ProcessImages(images []image.Image) ([]*ImageResult, error) {
	return p.ProcessImagesContext(context.Background(), images)
}

// ProcessImagesContext processes images with context cancellation support.
// It stops at the first error.
func (p *Pipeline) ProcessImagesContext(ctx context.Context, images []image.Image) ([]*ImageResult, error) {
	if len(images) == 0 {
		return nil, errors.New("no images provided")
	}
	if p == nil || p.Recognizer == nil {
		return nil, errNotInitialized
	}
	results := make([]*ImageResult, 0, len(images))
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := p.ProcessImageContext(ctx, img)
		if err != nil {
			return results, fmt.Errorf("image %d: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}
