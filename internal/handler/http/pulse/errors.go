package pulse

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/handler/http/requestid"
	"company-pulse/internal/handler/http/respond"
	"company-pulse/internal/usecase/ai"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind ai.ErrorKind) int {
	switch kind {
	case ai.KindValidationFailed:
		return http.StatusBadRequest
	case ai.KindNoProviderAvailable:
		return http.StatusServiceUnavailable
	case ai.KindAllProvidersFailed, ai.KindProviderOperationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as an ErrorResponse.
// AI errors carry their kind and providers; domain validation errors are
// 400; anything else is sanitized.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := requestid.FromContext(r.Context())

	var aiErr *ai.AIServiceError
	switch {
	case errors.As(err, &aiErr):
		code := StatusFor(aiErr.Kind)
		msg := aiErr.Message
		if aiErr.Kind == ai.KindValidationFailed && aiErr.Cause != nil {
			msg = aiErr.Cause.Error()
		}
		if code >= http.StatusInternalServerError {
			slog.Error("AI request failed",
				slog.String("request_id", reqID),
				slog.String("kind", string(aiErr.Kind)),
				slog.Any("error", respond.SanitizeError(err)))
		}
		respond.JSON(w, code, ErrorResponse{
			Error:   msg,
			Kind:    string(aiErr.Kind),
			Service: aiErr.Services(),
		})
	case errors.Is(err, entity.ErrValidationFailed):
		respond.JSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: string(ai.KindValidationFailed)})
	case errors.Is(err, context.DeadlineExceeded):
		respond.JSON(w, http.StatusGatewayTimeout, ErrorResponse{Error: "request timeout"})
	default:
		slog.Error("request failed",
			slog.String("request_id", reqID),
			slog.Any("error", respond.SanitizeError(err)))
		respond.JSON(w, http.StatusBadGateway, ErrorResponse{Error: "upstream request failed"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	respond.JSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Kind: string(ai.KindValidationFailed)})
}
