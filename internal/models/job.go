package models

// JobStatus is what a client sees for a job.
type JobStatus string

const (
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
)

// Job correlates one uploaded video with its eventual Result. It is not
// stored on its own; the Result's JobID is the only durable trace.
type Job struct {
	ID       string
	UserID   string
	Location string
}
