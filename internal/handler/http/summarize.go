package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"summarly/internal/domain/entity"
	"summarly/internal/handler/http/auth"
	"summarly/internal/handler/http/respond"
	"summarly/internal/observability/logging"
)

// SummarizeService is the orchestrator the handlers delegate to.
type SummarizeService interface {
	SummarizeText(ctx context.Context, req entity.SummaryRequest) (*entity.SummaryResult, error)
	SummarizeFile(ctx context.Context, data []byte, filename, contentType string, strategy entity.Strategy, tone entity.Tone, caller entity.Caller) (*entity.SummaryResult, error)
}

type summarizeTextRequest struct {
	Text     string `json:"text"`
	Strategy string `json:"strategy"`
	Tone     string `json:"tone"`
}

type fileMetadataResponse struct {
	Filename    string  `json:"filename"`
	ContentType string  `json:"content_type"`
	SizeKB      float64 `json:"size_kb"`
	Pages       int     `json:"pages,omitempty"`
	WordCount   int     `json:"word_count"`
}

type summaryResponse struct {
	Summary             string                `json:"summary"`
	MethodUsed          string                `json:"method_used"`
	Tone                string                `json:"tone"`
	Premium             bool                  `json:"premium"`
	RemainingUses       *int                  `json:"remaining_uses,omitempty"`
	RemainingCredits    *int                  `json:"remaining_credits,omitempty"`
	CharactersProcessed int                   `json:"characters_processed"`
	CompressionRatio    float64               `json:"compression_ratio"`
	ProcessingTimeMS    int64                 `json:"processing_time_ms"`
	FileMetadata        *fileMetadataResponse `json:"file_metadata,omitempty"`
	Success             bool                  `json:"success"`
}

// SummarizeHandler serves the summarization endpoints.
type SummarizeHandler struct {
	Service SummarizeService

	// Logger receives one completion entry per request, tagged with the
	// request ID. Nil falls back to slog.Default.
	Logger *slog.Logger

	// MaxUploadBytes bounds the multipart form memory and the accepted
	// file size at the handler before the orchestrator's own gate.
	MaxUploadBytes int64
}

// requestLogger correlates handler log entries with the request ID minted
// by the middleware chain.
func (h *SummarizeHandler) requestLogger(ctx context.Context) *slog.Logger {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return logging.WithRequestID(ctx, logger)
}

// Text handles POST /summarize with a JSON body.
func (h *SummarizeHandler) Text(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	var req summarizeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	strategy, err := entity.ParseStrategy(req.Strategy)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	tone, err := entity.ParseTone(req.Tone)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	caller := auth.CallerFromContext(r.Context())
	result, err := h.Service.SummarizeText(r.Context(), entity.SummaryRequest{
		Text:     req.Text,
		Strategy: strategy,
		Tone:     tone,
		Caller:   caller,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.requestLogger(r.Context()).Info("text summarized",
		slog.String("strategy", string(result.Strategy)),
		slog.Bool("guest", caller.IsGuest()),
		slog.Int("characters_processed", result.CharactersProcessed))
	respond.JSON(w, http.StatusOK, toResponse(result))
}

// File handles POST /summarize/file with a multipart form carrying the
// document under the "file" field plus optional strategy and tone fields.
func (h *SummarizeHandler) File(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	maxMemory := h.MaxUploadBytes
	if maxMemory <= 0 {
		maxMemory = 10 << 20
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("missing file field"))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxMemory+1))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("failed to read upload"))
		return
	}
	if int64(len(data)) > maxMemory {
		writeDomainError(w, fmt.Errorf("%w: upload exceeds %d bytes", entity.ErrPayloadTooLarge, maxMemory))
		return
	}

	strategy, err := entity.ParseStrategy(r.FormValue("strategy"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	tone, err := entity.ParseTone(r.FormValue("tone"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	caller := auth.CallerFromContext(r.Context())
	result, err := h.Service.SummarizeFile(r.Context(), data, header.Filename,
		header.Header.Get("Content-Type"), strategy, tone, caller)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.requestLogger(r.Context()).Info("document summarized",
		slog.String("filename", header.Filename),
		slog.String("strategy", string(result.Strategy)),
		slog.Bool("guest", caller.IsGuest()))
	respond.JSON(w, http.StatusOK, toResponse(result))
}

func toResponse(result *entity.SummaryResult) summaryResponse {
	resp := summaryResponse{
		Summary:             result.Summary,
		MethodUsed:          string(result.Strategy),
		Tone:                string(result.Tone),
		Premium:             result.Premium,
		CharactersProcessed: result.CharactersProcessed,
		CompressionRatio:    result.CompressionRatio,
		ProcessingTimeMS:    result.ProcessingTime.Milliseconds(),
		Success:             result.Success,
	}
	if result.IsGuest {
		remaining := result.RemainingUses
		resp.RemainingUses = &remaining
	} else {
		remaining := result.RemainingCredits
		resp.RemainingCredits = &remaining
	}
	if meta := result.FileMetadata; meta != nil {
		resp.FileMetadata = &fileMetadataResponse{
			Filename:    meta.Filename,
			ContentType: meta.ContentType,
			SizeKB:      meta.SizeKB,
			Pages:       meta.Pages,
			WordCount:   meta.WordCount,
		}
	}
	return resp
}

// writeDomainError maps domain sentinel errors onto HTTP status codes.
// Everything below the handlers is HTTP-agnostic; this is the only place
// the mapping lives.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidInput):
		respond.Error(w, http.StatusBadRequest, err)
	case errors.Is(err, entity.ErrEmptyInput):
		respond.Error(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, entity.ErrQuotaExhausted):
		respond.Error(w, http.StatusTooManyRequests, err)
	case errors.Is(err, entity.ErrInsufficientCredits):
		respond.Error(w, http.StatusPaymentRequired, err)
	case errors.Is(err, entity.ErrAccountInactive):
		respond.Error(w, http.StatusForbidden, err)
	case errors.Is(err, entity.ErrAccountNotFound):
		respond.Error(w, http.StatusUnauthorized, err)
	case errors.Is(err, entity.ErrUnsupportedFormat):
		respond.Error(w, http.StatusUnsupportedMediaType, err)
	case errors.Is(err, entity.ErrPayloadTooLarge):
		respond.Error(w, http.StatusRequestEntityTooLarge, err)
	case errors.Is(err, entity.ErrEngineUnavailable):
		respond.Error(w, http.StatusServiceUnavailable, err)
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}
