package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kdimtricp/formcheck/internal/apperr"
	"github.com/kdimtricp/formcheck/internal/models"
)

const ModeSync = "sync"

var ErrMissingSummary = errors.New("analysis response has no summary")

// SyncGateway posts a job and blocks until the service answers with a
// summary or the timeout expires. A single attempt is made.
type SyncGateway struct {
	client *client
}

func NewSyncGateway(baseURL string, timeout time.Duration) *SyncGateway {
	return &SyncGateway{client: newClient(baseURL, timeout)}
}

func (g *SyncGateway) Mode() string {
	return ModeSync
}

type syncResponse struct {
	Summary *Summary `json:"summary"`
}

// Dispatch returns an upstream error on transport failure, timeout, non-2xx
// status or a response that lacks the required summary fields.
func (g *SyncGateway) Dispatch(ctx context.Context, req Request) (*Dispatch, error) {
	req.ResultsDir = ""

	body, err := g.client.post(ctx, req)
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	summary, err := parseSummary(body)
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	return &Dispatch{Status: models.JobDone, Summary: summary}, nil
}

func parseSummary(body []byte) (*Summary, error) {
	var resp syncResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	s := resp.Summary
	if s == nil {
		return nil, ErrMissingSummary
	}
	if s.PredictedExercise == "" {
		return nil, fmt.Errorf("%w: predicted_exercise missing", ErrMissingSummary)
	}
	if s.IsCorrect == nil {
		return nil, fmt.Errorf("%w: is_correct missing", ErrMissingSummary)
	}
	if s.Feedback == nil {
		s.Feedback = []string{}
	}
	return s, nil
}
