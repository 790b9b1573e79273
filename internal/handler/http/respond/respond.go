// Package respond writes the service's JSON responses. Error writers
// sanitize what goes back to the client: quota and validation failures carry
// their message, anything internal is collapsed to a generic one with the
// detail kept in the log.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// ヘッダー送信済みのためエラー応答は返せない
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes err verbatim as {"error": ...}. Callers use it for errors that
// are already client-facing, such as the quota and credit failures mapped by
// the summarize handler.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// safeFragments marks messages that may be shown to clients. The vocabulary
// comes from the request validators, the auth layer and the usage ledger.
var safeFragments = []string{
	"required",
	"invalid",
	"unauthorized",
	"not found",
	"unsupported",
	"exhausted",
	"must be",
	"cannot be",
	"too large",
	"too long",
	"too short",
}

// SafeError decides whether err is fit for the client. Messages matching
// safeFragments pass through; everything else, and any 5xx regardless of
// message, becomes "internal server error" with the sanitized detail logged.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	isSafe := false
	lowerMsg := strings.ToLower(msg)
	for _, safe := range safeFragments {
		if strings.Contains(lowerMsg, safe) {
			isSafe = true
			break
		}
	}

	// 500番台は常に内部エラー扱い
	if code >= 500 {
		isSafe = false
	}

	if isSafe {
		JSON(w, code, map[string]string{"error": msg})
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.Any("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

// AppError pairs a client-facing message with the internal error that caused
// it, so handlers can return a precise status without leaking the cause.
type AppError struct {
	UserMsg string
	Err     error
	Code    int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// SafeErrorV2 is SafeError with AppError support: an AppError in err's chain
// responds with its own code and user message while the internal error is
// sanitized and logged. Other errors fall back to SafeError.
func SafeErrorV2(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			slog.Default().Error("application error",
				slog.String("status", http.StatusText(appErr.Code)),
				slog.Int("code", appErr.Code),
				slog.String("user_message", appErr.UserMsg),
				slog.Any("error", SanitizeError(appErr.Err)))
		}
		JSON(w, appErr.Code, map[string]string{"error": appErr.UserMsg})
		return
	}

	SafeError(w, code, err)
}
