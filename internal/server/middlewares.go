package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/appshelf/appshelf/internal/config"
	"github.com/labstack/echo/v4"
)

var errMissingToken = errors.New("Authorization header is required")

func (s *Server) getUID(c echo.Context) (string, error) {
	if s.isLocal {
		if uid := strings.TrimSpace(c.Request().Header.Get(config.HEADER_KEY_X_USER_ID)); uid != "" {
			return uid, nil
		}
	}

	auth := c.Request().Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errMissingToken
	}
	if s.identity == nil {
		return "", errors.New("identity provider not configured")
	}

	return s.identity.VerifyIDToken(c.Request().Context(), strings.TrimSpace(token))
}

// AuthMiddleware verifies the bearer token through the identity provider
// and stores the acting identity in the request context.
func (s *Server) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, err := s.getUID(c)
		if err != nil {
			s.logger.DebugContext(c.Request().Context(), "auth rejected", "err", err.Error())
			return c.JSON(http.StatusUnauthorized, Res{
				Error:   err.Error(),
				Message: "Invalid token",
			})
		}

		ctx := context.WithValue(c.Request().Context(), config.CTX_KEY_USER_ID, uid)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

func userID(c echo.Context) (string, bool) {
	uid, ok := c.Request().Context().Value(config.CTX_KEY_USER_ID).(string)
	return uid, ok && uid != ""
}
