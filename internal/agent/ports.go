package agent

import "context"

// CaptionRequest carries the blueprint fields that drive text generation.
type CaptionRequest struct {
	Theme        string
	Tone         string
	CallToAction string
}

type CaptionResult struct {
	Caption  string
	Hashtags []string
}

// TextGenerator produces the caption and a hashtag list for a run.
type TextGenerator interface {
	GenerateCaption(ctx context.Context, req CaptionRequest) (*CaptionResult, error)
}

type ImageResult struct {
	URL     string
	AltText string
}

// ImageGenerator turns the configured image prompt into a hosted image.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*ImageResult, error)
}

// Publisher is the two-phase publishing protocol: create a media
// container, then confirm it. Both calls can fail independently.
type Publisher interface {
	CreateContainer(ctx context.Context, imageURL, caption string) (string, error)
	PublishContainer(ctx context.Context, containerID string) (string, error)
}
