package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginUploadResults(t *testing.T) {
	ts := setupTestServer(t, serverOptions{analysisURL: stubAnalysis(t, http.StatusOK, squatSummary).URL})
	base := ts.Server.URL

	resp := postJSON(t, base+"/api/register", registerRequest{Username: "alice", Email: "alice@x.com", Password: "pw1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, base+"/api/login", loginRequest{LoginName: "alice", Password: "pw1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := decodeBody[loginResponse](t, resp)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)
	aliceID := session.User.ID

	resp = uploadVideo(t, base, aliceID, "squat.mp4", []byte("fake mp4 content"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upload := decodeBody[uploadResponse](t, resp)
	require.NotNil(t, upload.Result)
	assert.Equal(t, "squat", upload.Result.PredictedExercise)
	require.NotNil(t, upload.Result.IsCorrect)
	assert.True(t, *upload.Result.IsCorrect)

	resp = get(t, base+"/api/results?userId="+url.QueryEscape(aliceID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	results := decodeBody[resultsResponse](t, resp).Results
	require.Len(t, results, 1)
	assert.Equal(t, upload.JobID, results[0].JobID)
	assert.Equal(t, upload.Result.ID, results[0].ID)
}
