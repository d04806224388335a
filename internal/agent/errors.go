package agent

import "fmt"

// Stage identifies the pipeline stage an error belongs to.
type Stage string

const (
	StageTextGeneration  Stage = "text-generation"
	StageImageGeneration Stage = "image-generation"
	StagePublish         Stage = "publish"
	StagePersistence     Stage = "persistence"
)

// PipelineError is a fatal run failure tagged with the stage it came from.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
