package types

// SuccessEnvelope wraps every 2xx body: a resolved price, an admin record page or the
// records created by an ingestion.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the error body. Details is only set for validation failures, e.g. the
// per-field query issues or the per-record ingestion issues.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
