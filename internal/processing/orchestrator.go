// Package processing runs the upload workflow: keep the video, mint a job
// id, hand the job to the analysis gateway and, when the verdict comes back
// in the same call, store it as a Result.
package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kdimtricp/formcheck/internal/analysis"
	"github.com/kdimtricp/formcheck/internal/apperr"
	"github.com/kdimtricp/formcheck/internal/logging"
	"github.com/kdimtricp/formcheck/internal/models"
	"github.com/kdimtricp/formcheck/internal/storage"
)

type ResultStore interface {
	Create(ctx context.Context, result *models.Result) error
	GetByJobID(ctx context.Context, jobID string) (*models.Result, error)
}

// UserLookup resolves the owner of an upload. A missing user is reported
// as a NotFound error.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type ArtifactReader interface {
	Lookup(jobID string) (json.RawMessage, bool, error)
}

type Upload struct {
	File        io.Reader
	Filename    string
	ContentType string
	Size        int64
	UserID      string
}

// UploadResult is Result-bearing in sync mode and processing in async mode.
type UploadResult struct {
	JobID  string
	Status models.JobStatus
	Result *models.Result
}

type LookupResult struct {
	Status models.JobStatus
	Data   json.RawMessage
}

type Orchestrator struct {
	storage   storage.Storage
	users     UserLookup
	gateway   analysis.Gateway
	results   ResultStore
	artifacts ArtifactReader
	logger    logging.Logger
	newJobID  func() string
}

// NewOrchestrator wires the workflow. artifacts may be nil when the gateway
// is synchronous; lookups then go to the result store.
func NewOrchestrator(store storage.Storage, users UserLookup, gateway analysis.Gateway, results ResultStore, artifacts ArtifactReader, logger logging.Logger) *Orchestrator {
	return &Orchestrator{
		storage:   store,
		users:     users,
		gateway:   gateway,
		results:   results,
		artifacts: artifacts,
		logger:    logger.With("component", "processing", "mode", gateway.Mode()),
		newJobID:  NewJobID,
	}
}

func (o *Orchestrator) Mode() string {
	return o.gateway.Mode()
}

// Upload runs the workflow for one video. Steps are strictly ordered:
// validate the file and its owner, save the payload, mint the job id, dispatch, persist.
func (o *Orchestrator) Upload(ctx context.Context, up Upload) (*UploadResult, error) {
	if up.File == nil {
		return nil, apperr.Validation("No file uploaded")
	}
	userID := strings.TrimSpace(up.UserID)
	if userID == "" {
		return nil, apperr.Validation("userId not provided")
	}
	if _, err := o.users.FindByID(ctx, userID); err != nil {
		return nil, o.fail(ctx, "resolve owner", err)
	}

	name, err := o.storage.SaveFile(ctx, up.File, storage.FileInfo{
		Filename:    up.Filename,
		ContentType: up.ContentType,
		Size:        up.Size,
	})
	if err != nil {
		return nil, o.fail(ctx, "save upload", fmt.Errorf("saving upload: %w", err))
	}

	location, err := o.storage.Location(name)
	if err != nil {
		o.discard(ctx, name)
		return nil, o.fail(ctx, "save upload", err)
	}

	job := models.Job{ID: o.newJobID(), UserID: userID, Location: location}
	log := o.logger.With("job_id", job.ID, "user_id", job.UserID)
	log.Info(ctx, "upload stored", "location", job.Location, "size", up.Size)

	dispatch, err := o.gateway.Dispatch(ctx, analysis.Request{Path: job.Location, JobID: job.ID})
	if o.gateway.Mode() == analysis.ModeAsync {
		if err != nil {
			log.Warn(ctx, "analysis enqueue failed, job left processing", "error", err)
		}
		return &UploadResult{JobID: job.ID, Status: models.JobProcessing}, nil
	}
	if err != nil {
		o.discard(ctx, name)
		return nil, o.fail(ctx, "analysis", err)
	}
	if dispatch.Summary == nil {
		o.discard(ctx, name)
		return nil, o.fail(ctx, "analysis", apperr.Upstream(analysis.ErrMissingSummary))
	}

	s := dispatch.Summary
	result := models.NewResult(job.UserID, job.ID, s.PredictedExercise, s.IsCorrect, s.Feedback)
	if err := o.results.Create(ctx, result); err != nil {
		o.discard(ctx, name)
		return nil, o.fail(ctx, "save result", err)
	}

	log.Info(ctx, "result saved", "exercise", result.PredictedExercise)
	return &UploadResult{JobID: job.ID, Status: models.JobDone, Result: result}, nil
}

// Lookup polls for a job's outcome. A job with nothing to show yet is
// processing, never an error.
func (o *Orchestrator) Lookup(ctx context.Context, jobID string) (*LookupResult, error) {
	if !ValidJobID(jobID) {
		return nil, apperr.Validation("invalid job id")
	}

	if o.artifacts != nil {
		data, ok, err := o.artifacts.Lookup(jobID)
		if err != nil {
			return nil, o.fail(ctx, "lookup", err)
		}
		if !ok {
			return &LookupResult{Status: models.JobProcessing}, nil
		}
		return &LookupResult{Status: models.JobDone, Data: data}, nil
	}

	result, err := o.results.GetByJobID(ctx, jobID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return &LookupResult{Status: models.JobProcessing}, nil
		}
		return nil, o.fail(ctx, "lookup", err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, o.fail(ctx, "lookup", err)
	}
	return &LookupResult{Status: models.JobDone, Data: data}, nil
}

// discard removes a stored payload whose job failed. It runs even if the
// request context is already cancelled.
func (o *Orchestrator) discard(ctx context.Context, name string) {
	if err := o.storage.DeleteFile(context.WithoutCancel(ctx), name); err != nil {
		o.logger.Warn(ctx, "failed to remove upload", "name", name, "error", err)
	}
}

func (o *Orchestrator) fail(ctx context.Context, op string, err error) error {
	err = apperr.Wrap(err)
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindNotFound:
		o.logger.Warn(ctx, op+" rejected", "error", err)
	default:
		o.logger.Error(ctx, op+" failed", "error", err)
	}
	return err
}
