package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kdimtricp/formcheck/internal/apperr"
	"github.com/kdimtricp/formcheck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubService(t *testing.T, status int, body string, got *Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != processPath || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSyncGateway_Summary(t *testing.T) {
	var got Request
	srv := stubService(t, http.StatusOK,
		`{"summary":{"predicted_exercise":"squat","is_correct":true,"feedback":["good depth"]}}`, &got)

	gw := NewSyncGateway(srv.URL+"/", time.Second)
	d, err := gw.Dispatch(context.Background(), Request{Path: "/tmp/v.mp4", JobID: "job-1", ResultsDir: "/ignored"})
	require.NoError(t, err)

	assert.Equal(t, models.JobDone, d.Status)
	assert.Equal(t, "squat", d.Summary.PredictedExercise)
	require.NotNil(t, d.Summary.IsCorrect)
	assert.True(t, *d.Summary.IsCorrect)
	assert.Equal(t, []string{"good depth"}, d.Summary.Feedback)

	assert.Equal(t, Request{Path: "/tmp/v.mp4", JobID: "job-1"}, got)
}

func TestSyncGateway_FeedbackOptional(t *testing.T) {
	srv := stubService(t, http.StatusOK, `{"summary":{"predicted_exercise":"lunge","is_correct":false}}`, nil)

	d, err := NewSyncGateway(srv.URL, time.Second).Dispatch(context.Background(), Request{JobID: "j"})
	require.NoError(t, err)
	assert.NotNil(t, d.Summary.Feedback)
	assert.Empty(t, d.Summary.Feedback)
	assert.False(t, *d.Summary.IsCorrect)
}

func TestSyncGateway_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"missing summary", http.StatusOK, `{"status":"ok"}`},
		{"missing exercise", http.StatusOK, `{"summary":{"is_correct":true}}`},
		{"missing verdict", http.StatusOK, `{"summary":{"predicted_exercise":"squat"}}`},
		{"not json", http.StatusOK, `<html>`},
		{"server error", http.StatusInternalServerError, `{"error":"model crashed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := stubService(t, tt.status, tt.body, nil)
			_, err := NewSyncGateway(srv.URL, time.Second).Dispatch(context.Background(), Request{JobID: "j"})
			assert.ErrorIs(t, err, apperr.ErrUpstream)
		})
	}
}

func TestSyncGateway_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	_, err := NewSyncGateway(srv.URL, 50*time.Millisecond).Dispatch(context.Background(), Request{JobID: "j"})
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}

func TestAsyncGateway_SendsResultsDir(t *testing.T) {
	artifacts, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	var got Request
	srv := stubService(t, http.StatusAccepted, `{"accepted":true}`, &got)

	gw := NewAsyncGateway(srv.URL, time.Second, artifacts)
	d, err := gw.Dispatch(context.Background(), Request{Path: "/tmp/v.mp4", JobID: "job-2"})
	require.NoError(t, err)

	assert.Equal(t, models.JobProcessing, d.Status)
	assert.Nil(t, d.Summary)
	assert.Equal(t, artifacts.Dir(), got.ResultsDir)
	assert.Equal(t, ModeAsync, gw.Mode())
}

func TestAsyncGateway_Unreachable(t *testing.T) {
	artifacts, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err = NewAsyncGateway(srv.URL, time.Second, artifacts).Dispatch(context.Background(), Request{JobID: "j"})
	assert.ErrorIs(t, err, apperr.ErrUpstream)
	assert.EqualValues(t, 1, calls.Load())
}
