// Package analysis talks to the external exercise analysis service. Two
// strategies share the Gateway interface: SyncGateway waits for the verdict
// in the same call, AsyncGateway only hands the job over and the verdict is
// later read from an ArtifactStore.
package analysis

import (
	"context"

	"github.com/kdimtricp/formcheck/internal/models"
)

const processPath = "/process"

// Request is the payload posted to the analysis service.
type Request struct {
	Path       string `json:"path"`
	JobID      string `json:"jobId"`
	ResultsDir string `json:"resultsDir,omitempty"`
}

// Summary is the verdict block of a synchronous response.
type Summary struct {
	PredictedExercise string   `json:"predicted_exercise"`
	IsCorrect         *bool    `json:"is_correct"`
	Feedback          []string `json:"feedback"`
}

// Dispatch reports what a gateway did with a job. Summary is only set
// when Status is done.
type Dispatch struct {
	Status  models.JobStatus
	Summary *Summary
}

type Gateway interface {
	Mode() string
	Dispatch(ctx context.Context, req Request) (*Dispatch, error)
}
