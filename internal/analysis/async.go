package analysis

import (
	"context"
	"time"

	"github.com/kdimtricp/formcheck/internal/apperr"
	"github.com/kdimtricp/formcheck/internal/models"
)

const ModeAsync = "async"

// AsyncGateway hands a job to the service and returns as soon as it is
// accepted. The service writes its answer into the artifact directory.
type AsyncGateway struct {
	client     *client
	resultsDir string
}

func NewAsyncGateway(baseURL string, timeout time.Duration, artifacts *ArtifactStore) *AsyncGateway {
	return &AsyncGateway{
		client:     newClient(baseURL, timeout),
		resultsDir: artifacts.Dir(),
	}
}

func (g *AsyncGateway) Mode() string {
	return ModeAsync
}

// Dispatch reports processing once the service accepts the job. The
// response body is ignored.
func (g *AsyncGateway) Dispatch(ctx context.Context, req Request) (*Dispatch, error) {
	req.ResultsDir = g.resultsDir

	if _, err := g.client.post(ctx, req); err != nil {
		return nil, apperr.Upstream(err)
	}
	return &Dispatch{Status: models.JobProcessing}, nil
}
