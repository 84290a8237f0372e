package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kdimtricp/formcheck/internal/apperr"
	"github.com/kdimtricp/formcheck/internal/models"
	"github.com/kdimtricp/formcheck/internal/processing"
)

// multipartMemory is how much of a form is held in memory before the
// remainder spills to temp files.
const multipartMemory = 32 << 20

type uploadResponse struct {
	Message string           `json:"message"`
	JobID   string           `json:"jobId"`
	Status  models.JobStatus `json:"status"`
	Result  *models.Result   `json:"result,omitempty"`
}

type jobResponse struct {
	Status models.JobStatus `json:"status"`
	Data   json.RawMessage  `json:"data,omitempty"`
}

func (app *App) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			app.writeError(w, r, apperr.Validation("file too large"))
			return
		case !errors.Is(err, http.ErrNotMultipart):
			app.writeError(w, r, apperr.Validation("invalid multipart form"))
			return
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	up := processing.Upload{UserID: r.FormValue("userId")}

	file, header, err := r.FormFile("video")
	if err == nil {
		defer file.Close()
		up.File = file
		up.Filename = header.Filename
		up.ContentType = header.Header.Get("Content-Type")
		up.Size = header.Size
	}

	res, err := app.Uploads.Upload(r.Context(), up)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	if res.Status == models.JobDone {
		writeJSON(w, http.StatusOK, uploadResponse{
			Message: "Video processed and result saved",
			JobID:   res.JobID,
			Status:  res.Status,
			Result:  res.Result,
		})
		return
	}

	writeJSON(w, http.StatusAccepted, uploadResponse{
		Message: "Video uploaded, processing started",
		JobID:   res.JobID,
		Status:  res.Status,
	})
}

func (app *App) ResultHandler(w http.ResponseWriter, r *http.Request) {
	res, err := app.Uploads.Lookup(r.Context(), chi.URLParam(r, "jobId"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Status == models.JobProcessing {
		status = http.StatusAccepted
	}
	writeJSON(w, status, jobResponse{Status: res.Status, Data: res.Data})
}
