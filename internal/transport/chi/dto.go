package chi

// ErrorCode is the machine-readable error kind in error responses.
type ErrorCode string

const (
	ErrorCodeBadRequest          ErrorCode = "bad_request"
	ErrorCodeValidationFailed    ErrorCode = "validation_failed"
	ErrorCodeUnauthorized        ErrorCode = "unauthorized"
	ErrorCodeNotFound            ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed    ErrorCode = "method_not_allowed"
	ErrorCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrorCodeDataIntegrity       ErrorCode = "data_integrity"
	ErrorCodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// QueryRequest is the POST /query body.
type QueryRequest struct {
	Query string `json:"query"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
