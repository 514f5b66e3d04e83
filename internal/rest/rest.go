package rest

// ErrorResponse is the JSON envelope returned by handlers on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
