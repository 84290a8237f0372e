package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/kdimtricp/formcheck/internal/analysis"
	"github.com/kdimtricp/formcheck/internal/auth"
	"github.com/kdimtricp/formcheck/internal/database"
	"github.com/kdimtricp/formcheck/internal/logging"
	"github.com/kdimtricp/formcheck/internal/models"
	"github.com/kdimtricp/formcheck/internal/processing"
	"github.com/kdimtricp/formcheck/internal/storage"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testOrigin = "http://localhost:5173"

type testServer struct {
	Server    *httptest.Server
	DB        *database.DB
	Results   *database.ResultRepository
	UploadDir string
	Artifacts *analysis.ArtifactStore
	// Owner is a registered user id that uploads can be attributed to.
	Owner string
}

type serverOptions struct {
	mode          string
	analysisURL   string
	maxUploadSize int64
}

func setupTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()

	if opts.mode == "" {
		opts.mode = analysis.ModeSync
	}
	if opts.maxUploadSize == 0 {
		opts.maxUploadSize = 10 * 1024 * 1024
	}
	if opts.analysisURL == "" {
		opts.analysisURL = "http://127.0.0.1:1"
	}

	tempDir := t.TempDir()
	uploadDir := filepath.Join(tempDir, "uploads")
	localStorage, err := storage.NewLocalStorage(uploadDir)
	require.NoError(t, err)

	db := database.NewTestDB(t)
	users := database.NewUserRepository(db)
	results := database.NewResultRepository(db)

	owner := models.NewUser("owner", "owner@x.com", "hash")
	require.NoError(t, users.Create(t.Context(), owner))

	tokens := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  "test-access",
		RefreshSecret: "test-refresh",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	}, users)
	authService := auth.NewService(users, results, auth.NewPasswordHasher(bcrypt.MinCost), tokens, logging.Discard())

	var (
		gateway   analysis.Gateway
		artifacts *analysis.ArtifactStore
		lookup    processing.ArtifactReader
	)
	if opts.mode == analysis.ModeAsync {
		artifacts, err = analysis.NewArtifactStore(filepath.Join(tempDir, "results"))
		require.NoError(t, err)
		gateway = analysis.NewAsyncGateway(opts.analysisURL, time.Second, artifacts)
		lookup = artifacts
	} else {
		gateway = analysis.NewSyncGateway(opts.analysisURL, 5*time.Second)
	}

	app := &App{
		Auth:          authService,
		Uploads:       processing.NewOrchestrator(localStorage, users, gateway, results, lookup, logging.Discard()),
		DB:            db,
		Logger:        logging.Discard(),
		ClientOrigin:  testOrigin,
		MaxUploadSize: opts.maxUploadSize,
		AccessMaxAge:  15 * time.Minute,
		RefreshMaxAge: time.Hour,
	}

	server := httptest.NewServer(NewRouter(app))
	t.Cleanup(server.Close)

	return &testServer{
		Server:    server,
		DB:        db,
		Results:   results,
		UploadDir: uploadDir,
		Artifacts: artifacts,
		Owner:     owner.ID,
	}
}

// stubAnalysis fakes the analysis service with a fixed answer.
func stubAnalysis(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createMultipartUpload(userID, filename string, content []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if filename != "" {
		part, err := writer.CreateFormFile("video", filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(content); err != nil {
			return nil, "", err
		}
	}

	if userID != "" {
		if err := writer.WriteField("userId", userID); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func uploadVideo(t *testing.T, server, userID, filename string, content []byte) *http.Response {
	t.Helper()
	body, contentType, err := createMultipartUpload(userID, filename, content)
	require.NoError(t, err)

	resp, err := http.Post(server+"/api/upload", contentType, body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func registerAndLogin(t *testing.T, server, username, email, password string) loginResponse {
	t.Helper()

	resp := postJSON(t, server+"/api/register", registerRequest{Username: username, Email: email, Password: password})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, server+"/api/login", loginRequest{LoginName: username, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeBody[loginResponse](t, resp)
}
