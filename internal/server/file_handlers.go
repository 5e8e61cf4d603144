package server

import (
	"net/http"

	"github.com/appshelf/appshelf/internal/config"
	"github.com/appshelf/appshelf/internal/usecase"
	"github.com/labstack/echo/v4"
)

type ProfileImage struct {
	ID          string  `json:"id"`
	URL         *string `json:"url"`
	ContentType string  `json:"content_type,omitempty"`
	Size        int64   `json:"size,omitempty"`
	UploadedAt  string  `json:"uploaded_at,omitzero"`
}

func convertProfileImage(p usecase.ProfileImageURL) ProfileImage {
	return ProfileImage{
		ID:          p.ID.String(),
		URL:         p.URL,
		ContentType: p.ContentType,
		Size:        p.Size,
		UploadedAt:  formatTime(p.UploadedAt),
	}
}

func (s *Server) UploadProfileImage(ctx echo.Context) error {
	uid, ok := userID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, Res{Error: "user id not found in context"})
	}

	fh, err := ctx.FormFile(config.SLOT_PROFILE)
	if err != nil {
		return s.errorResponse(ctx, usecase.ErrValidation{
			Field:   config.SLOT_PROFILE,
			Message: "a file is required",
		})
	}
	f, err := readFile(config.SLOT_PROFILE, fh)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	img, err := s.server.UploadProfileImage(ctx.Request().Context(), uid, f)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	status := http.StatusOK
	if img.Created {
		status = http.StatusCreated
	}
	return ctx.JSON(status, Res{
		Data:    convertProfileImage(img),
		Message: "File uploaded successfully",
	})
}

func (s *Server) GetProfileImage(ctx echo.Context) error {
	uid, ok := userID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, Res{Error: "user id not found in context"})
	}

	img, err := s.server.GetProfileImageURL(ctx.Request().Context(), uid)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, Res{Data: convertProfileImage(img)})
}

func (s *Server) ListMyFiles(ctx echo.Context) error {
	uid, ok := userID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, Res{Error: "user id not found in context"})
	}

	list, err := s.server.ListProfileImages(ctx.Request().Context(), uid)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	files := make([]ProfileImage, 0, len(list))
	for _, p := range list {
		files = append(files, convertProfileImage(p))
	}

	return ctx.JSON(http.StatusOK, Res{Data: files})
}
