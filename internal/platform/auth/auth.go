// Package auth provides optional bearer-token protection for the API.
// When no signing secret is configured the middleware is a no-op and the
// login endpoint is not registered.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/dencare/dencare/internal/platform/apperr"
)

const tokenTTL = 24 * time.Hour

type Service struct {
	secret        []byte
	adminPassword string
}

func NewService(secret, adminPassword string) *Service {
	return &Service{secret: []byte(secret), adminPassword: adminPassword}
}

// Enabled reports whether a signing secret was configured.
func (s *Service) Enabled() bool { return len(s.secret) > 0 }

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Service) LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.adminPassword)) != 1 {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	expires := time.Now().Add(tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return apperr.Internal("sign token", err)
	}
	return c.JSON(http.StatusOK, loginResponse{Token: signed, ExpiresAt: expires})
}

// Middleware validates the Authorization header on every request. With auth
// disabled it passes requests through untouched.
func (s *Service) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !s.Enabled() {
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return s.secret, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			return next(c)
		}
	}
}
