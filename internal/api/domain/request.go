package domain

// PA request status constants
const (
	RequestStatusPending    = "pending"
	RequestStatusProcessing = "processing"
	RequestStatusCompleted  = "completed"
	RequestStatusFailed     = "failed"
)

// Document job status constants. A job is born "queued" by the API; every
// later transition belongs to the worker.
const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Audit action names
const (
	ActionRequestCreated   = "PA_REQUEST_CREATED"
	ActionDocumentUploaded = "DOCUMENT_UPLOADED"
)
