// Package server exposes the models.json resolver over HTTP.
package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const authErrorType = "authentication_error"

// AuthMiddleware creates an Echo middleware that validates the master key
// if it's configured. If masterKey is empty, no authentication is required.
func AuthMiddleware(masterKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if masterKey == "" {
				return next(c)
			}

			token, problem := bearerToken(c.Request().Header.Get("Authorization"))
			if problem != "" {
				return errorResponse(c, http.StatusUnauthorized, authErrorType, problem)
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(masterKey)) != 1 {
				return errorResponse(c, http.StatusUnauthorized, authErrorType, "invalid master key")
			}

			return next(c)
		}
	}
}

// bearerToken extracts the token from an Authorization header value.
// A non-empty second return describes why the header was rejected.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "missing authorization header"
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", "invalid authorization header format, expected 'Bearer <token>'"
	}
	return strings.TrimPrefix(header, prefix), ""
}
