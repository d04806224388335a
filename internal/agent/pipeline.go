package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"instagram-agent-platform/internal/logger"
	"instagram-agent-platform/internal/storage"
	"instagram-agent-platform/models"
)

type RunOptions struct {
	ForcePublish bool `json:"forcePublish"`
}

// RunWarning is a non-fatal stage failure attached to a successful run.
type RunWarning struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

type RunResult struct {
	Post     models.GeneratedPost `json:"post"`
	Warnings []RunWarning         `json:"warnings,omitempty"`
}

// Pipeline orchestrates one generation-and-publish run: text, image,
// optional two-phase publish, then atomic persistence of the outcome.
// Text generation and persistence failures are fatal; image and publish
// failures degrade the result instead of aborting it.
type Pipeline struct {
	store     storage.ConfigStore
	text      TextGenerator
	image     ImageGenerator
	publisher Publisher
	loc       *time.Location
	timeout   time.Duration
}

func NewPipeline(store storage.ConfigStore, text TextGenerator, image ImageGenerator, publisher Publisher, loc *time.Location, timeout time.Duration) *Pipeline {
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Pipeline{
		store:     store,
		text:      text,
		image:     image,
		publisher: publisher,
		loc:       loc,
		timeout:   timeout,
	}
}

func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	cfg, err := p.store.Get(ctx)
	if err != nil {
		return nil, &PipelineError{Stage: StagePersistence, Err: err}
	}

	result := &RunResult{}

	// Text generation: fatal on failure, nothing is persisted.
	caption, err := p.generateCaption(ctx, cfg)
	if err != nil {
		return nil, &PipelineError{Stage: StageTextGeneration, Err: err}
	}

	now := time.Now().In(p.loc)
	post := models.GeneratedPost{
		Caption:   caption.Caption,
		Hashtags:  MergeHashtags(cfg.Hashtags, caption.Hashtags),
		CreatedAt: now,
	}

	// Image generation: a caption without an image still ships.
	if strings.TrimSpace(cfg.ImagePrompt) == "" {
		logger.Debug("No image prompt configured, skipping image generation")
	} else if img, err := p.generateImage(ctx, cfg.ImagePrompt); err != nil {
		logger.Warn("Image generation failed, continuing with text-only post", "error", err)
		result.warn(StageImageGeneration, err.Error())
	} else {
		post.ImageURL = img.URL
		post.AltText = img.AltText
	}

	if opts.ForcePublish || cfg.AutoPublish {
		p.publish(ctx, &post, result)
	}

	// Persistence: losing the write race counts as a failed run too; the
	// durable "ran today" record must reflect the mutator applied to the
	// freshest stored state.
	lastRunDate := now.Format(dateLayout)
	_, err = p.store.Update(ctx, func(current models.AgentConfig) models.AgentConfig {
		current.LastPost = &post
		current.LastRunDate = lastRunDate
		return current
	})
	if err != nil {
		return nil, &PipelineError{Stage: StagePersistence, Err: err}
	}

	logger.Info("Agent run completed",
		"published", post.Published,
		"has_image", post.ImageURL != "",
		"warnings", len(result.Warnings))

	result.Post = post
	return result, nil
}

func (p *Pipeline) generateCaption(ctx context.Context, cfg models.AgentConfig) (*CaptionResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.text.GenerateCaption(callCtx, CaptionRequest{
		Theme:        cfg.ContentTheme,
		Tone:         cfg.Tone,
		CallToAction: cfg.CallToAction,
	})
}

func (p *Pipeline) generateImage(ctx context.Context, prompt string) (*ImageResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.image.GenerateImage(callCtx, prompt)
}

// publish runs the two-phase protocol. Container creation failure leaves
// an unpublished draft; confirmation failure keeps the container id so an
// operator can retry out of band. Once the container exists the confirm
// call is shielded from caller cancellation so it is never abandoned
// half-way.
func (p *Pipeline) publish(ctx context.Context, post *models.GeneratedPost, result *RunResult) {
	createCtx, cancel := context.WithTimeout(ctx, p.timeout)
	containerID, err := p.publisher.CreateContainer(createCtx, post.ImageURL, RenderCaption(post.Caption, post.Hashtags))
	cancel()
	if err != nil {
		logger.Warn("Media container creation failed, keeping post as draft", "error", err)
		result.warn(StagePublish, fmt.Sprintf("container creation failed: %v", err))
		return
	}

	confirmCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	mediaID, err := p.publisher.PublishContainer(confirmCtx, containerID)
	if err != nil {
		logger.Warn("Media container created but publish was not confirmed",
			"container_id", containerID, "error", err)
		post.InstagramMediaID = containerID
		result.warn(StagePublish, fmt.Sprintf("container %s created but not confirmed: %v", containerID, err))
		return
	}

	post.Published = true
	post.InstagramMediaID = mediaID
}

func (r *RunResult) warn(stage Stage, message string) {
	r.Warnings = append(r.Warnings, RunWarning{Stage: stage, Message: message})
}

// RenderCaption builds the caption body sent to the platform, hashtags
// appended after a blank line per Instagram convention.
func RenderCaption(caption string, hashtags []string) string {
	caption = strings.TrimSpace(caption)
	if len(hashtags) == 0 {
		return caption
	}
	return caption + "\n\n" + strings.Join(hashtags, " ")
}
