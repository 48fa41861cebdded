// Package jobs contains the scheduled job implementations.
package jobs

import (
	"context"

	"github.com/studypulse/performance-hub/internal/application/command"
)

// RetrainJob periodically retrains the model from the configured dataset
// so that rows appended to the CSV between restarts are picked up.
type RetrainJob struct {
	handler *command.RetrainModelHandler
}

// NewRetrainJob creates a RetrainJob.
func NewRetrainJob(handler *command.RetrainModelHandler) *RetrainJob {
	return &RetrainJob{handler: handler}
}

// Name returns the job name.
func (j *RetrainJob) Name() string {
	return "model_retrain"
}

// Run retrains the model from the default dataset path.
func (j *RetrainJob) Run(ctx context.Context) error {
	_, err := j.handler.Handle(ctx, command.RetrainModelCommand{})
	return err
}
