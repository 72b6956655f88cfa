package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/target/coursedesk/internal/errors"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, ErrorParams{
				Code:    http.StatusRequestEntityTooLarge,
				ErrCode: "body_too_large",
				Err:     errors.New("Request body too large"),
			})
			return false
		}
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: errors.New("Invalid JSON body")})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// Envelope is the body of every API response: status, an optional message and the payload keys.
type Envelope map[string]any

// WriteSuccess writes body with status "success". message is omitted when empty.
func WriteSuccess(w http.ResponseWriter, code int, message string, body Envelope) {
	out := Envelope{"status": statusSuccess}
	if message != "" {
		out["message"] = message
	}
	for k, v := range body {
		out[k] = v
	}
	WriteJSON(w, code, out)
}

// ErrorParams groups parameters for WriteError to adhere to the ≤3 params guideline.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error envelope using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	body := Envelope{"status": statusError, "message": p.Err.Error()}
	if p.ErrCode != "" {
		body["error"] = p.ErrCode
	}
	WriteJSON(w, p.Code, body)
}

// statusForCode maps application error codes to HTTP statuses.
func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation, apperrors.ErrCodeForeignKey:
		return http.StatusBadRequest
	case apperrors.ErrCodeAuthenticationRequired,
		apperrors.ErrCodeInvalidCredentials,
		apperrors.ErrCodeOAuthExchangeFailed:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeProviderUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteAppError maps err to an HTTP status and writes the error envelope.
// Only the AppError message is exposed, after redaction; causes and unknown errors are logged instead.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(err, apperrors.ErrCodeInternal, "Internal server error")
	}

	status := statusForCode(appErr.Code)
	message := apperrors.Redact(appErr.Message)
	if status == http.StatusInternalServerError {
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", apperrors.Redact(err.Error())))
		message = "Internal server error"
	}

	WriteError(w, ErrorParams{Code: status, ErrCode: string(appErr.Code), Err: errors.New(message)})
}
