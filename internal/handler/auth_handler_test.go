package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mock-interview-api/internal/dto"
	"github.com/noah-isme/mock-interview-api/internal/handler"
	"github.com/noah-isme/mock-interview-api/internal/middleware"
	"github.com/noah-isme/mock-interview-api/internal/service"
)

type authServiceStub struct {
	registered dto.RegisterRequest
	loginErr   error
}

func (s *authServiceStub) Register(_ context.Context, payload dto.RegisterRequest) (dto.UserResponse, error) {
	s.registered = payload
	if payload.Email == "taken@example.com" {
		return dto.UserResponse{}, service.ErrEmailTaken
	}
	return dto.UserResponse{ID: 1, FullName: payload.FullName, Email: payload.Email}, nil
}

func (s *authServiceStub) Login(_ context.Context, _ dto.LoginRequest) (dto.LoginResponse, error) {
	if s.loginErr != nil {
		return dto.LoginResponse{}, s.loginErr
	}
	return dto.LoginResponse{Token: "signed-token", FullName: "Ada", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func newAuthApp(svc service.AuthService) *fiber.App {
	app := fiber.New()
	authenticate := func(c *fiber.Ctx) error {
		if c.Cookies(middleware.TokenCookieName) == "" {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		c.Locals(middleware.UserIDLocal, uint(5))
		return c.Next()
	}
	handler.NewAuthHandler(svc, true, zerolog.Nop()).Register(app.Group("/api/v1/user"), authenticate)
	return app
}

func TestRegisterReturnsCreated(t *testing.T) {
	svc := &authServiceStub{}
	app := newAuthApp(svc)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/user/register", map[string]string{
		"fullName": "Ada Lovelace", "email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "Ada Lovelace", svc.registered.FullName)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/user/register", map[string]string{
		"fullName": "Ada Lovelace", "email": "taken@example.com", "password": "secret123",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var payload envelope
	decodeResponse(t, resp, &payload)
	require.Equal(t, "user already exists", payload.Message)
}

func TestLoginSetsStrictCookie(t *testing.T) {
	app := newAuthApp(&authServiceStub{})

	resp := doJSON(t, app, http.MethodPost, "/api/v1/user/login", map[string]string{"email": "ada@example.com", "password": "secret123"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookie := resp.Header.Get("Set-Cookie")
	require.Contains(t, cookie, "token=signed-token")
	require.Contains(t, cookie, "HttpOnly")
	require.Contains(t, cookie, "secure")
	require.Contains(t, strings.ToLower(cookie), "samesite=strict")

	var payload struct {
		Data dto.LoginResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, "signed-token", payload.Data.Token)
	require.Equal(t, "Ada", payload.Data.FullName)
}

func TestLoginInvalidCredentials(t *testing.T) {
	app := newAuthApp(&authServiceStub{loginErr: service.ErrInvalidCredentials})

	resp := doJSON(t, app, http.MethodPost, "/api/v1/user/login", map[string]string{"email": "ada@example.com", "password": "nope"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Empty(t, resp.Header.Get("Set-Cookie"))
}

func TestGetTokenAndLogout(t *testing.T) {
	app := newAuthApp(&authServiceStub{})

	resp := doJSON(t, app, http.MethodGet, "/api/v1/user/getToken", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/getToken", nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookieName, Value: "abc"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data map[string]string `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, "abc", payload.Data["token"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/user/verify-token", nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookieName, Value: "abc"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/user/logout", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Set-Cookie"), "token=;")
}
