package adapter

import "context"

// ImageSearchAdapter resolves a destination name to a representative image
// URL. Failures are non-fatal to the generation pipeline.
type ImageSearchAdapter interface {
	GetDestinationImage(ctx context.Context, destination string) (string, error)
}
