package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/appshelf/appshelf/internal/usecase"
	"github.com/labstack/echo/v4"
)

// errorResponse maps usecase errors to a status code and the Res envelope.
func (s *Server) errorResponse(ctx echo.Context, err error) error {
	var (
		validation  usecase.ErrValidation
		missingSlot usecase.ErrMissingRequiredSlot
		notFound    usecase.ErrNotFound
		unauth      usecase.ErrUnauthorized
		upload      usecase.ErrUploadFailed
		persistence usecase.ErrPersistenceFailedAfterUpload
	)

	// the wrapping errors go first; their causes are often NotFound
	switch {
	case errors.As(err, &persistence):
		s.logger.ErrorContext(ctx.Request().Context(), "objects stored without a record",
			slog.Any("keys", persistence.Keys),
			slog.String("err", err.Error()),
		)
		return ctx.JSON(http.StatusInternalServerError, Res{
			Error:   "persistence_failed_after_upload",
			Message: "files were stored but could not be recorded, please retry",
		})
	case errors.As(err, &upload):
		return ctx.JSON(http.StatusBadGateway, Res{Error: "upload_failed", Message: upload.Error()})
	case errors.As(err, &validation):
		return ctx.JSON(http.StatusUnprocessableEntity, Res{Error: "validation_failed", Message: validation.Error()})
	case errors.As(err, &missingSlot):
		return ctx.JSON(http.StatusUnprocessableEntity, Res{Error: "missing_required_slot", Message: missingSlot.Error()})
	case errors.As(err, &notFound):
		return ctx.JSON(http.StatusNotFound, Res{Error: notFound.Code, Message: notFound.Message})
	case errors.As(err, &unauth):
		return ctx.JSON(http.StatusForbidden, Res{Error: "unauthorized", Message: unauth.Error()})
	default:
		return ctx.JSON(http.StatusInternalServerError, Res{Error: err.Error()})
	}
}
