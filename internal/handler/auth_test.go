package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anonymous123-code/chatApp/internal/auth"
	"github.com/anonymous123-code/chatApp/internal/handler"
	"github.com/anonymous123-code/chatApp/internal/repository/sqlite"
	"github.com/anonymous123-code/chatApp/internal/service"
)

func newTestAuthHandler(t *testing.T) *handler.AuthHandler {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(4)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	authService := service.NewAuthService(db, tokens, passwords, logger)
	return handler.NewAuthHandler(authService, logger)
}

func postJSON(t *testing.T, h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestAuthHandler_HandleRegister(t *testing.T) {
	h := newTestAuthHandler(t)

	t.Run("valid registration", func(t *testing.T) {
		rr := postJSON(t, h.HandleRegister, "/api/users/register",
			`{"username":"alice","password":"s3cret","full_name":"Alice A.","email":"alice@example.com"}`)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var res map[string]any
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "alice", res["username"])
		// Only the public subset goes out; no hash, no email.
		assert.NotContains(t, res, "password_hash")
		assert.NotContains(t, res, "email")
	})

	t.Run("duplicate username", func(t *testing.T) {
		rr := postJSON(t, h.HandleRegister, "/api/users/register",
			`{"username":"alice","password":"other","email":"alice2@example.com"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var res handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "username already registered", res.Message)
	})

	t.Run("invalid email", func(t *testing.T) {
		rr := postJSON(t, h.HandleRegister, "/api/users/register",
			`{"username":"bob","password":"pw","email":"not-an-email"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var res handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "email is invalid", res.Message)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		rr := postJSON(t, h.HandleRegister, "/api/users/register", `{"username":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_HandleToken(t *testing.T) {
	h := newTestAuthHandler(t)

	rr := postJSON(t, h.HandleRegister, "/api/users/register",
		`{"username":"alice","password":"s3cret","email":"alice@example.com"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)

	t.Run("valid credentials", func(t *testing.T) {
		rr := postJSON(t, h.HandleToken, "/api/token",
			`{"username":"alice","password":"s3cret"}`)

		assert.Equal(t, http.StatusOK, rr.Code)

		var res struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.NotEmpty(t, res.AccessToken)
		assert.Equal(t, "bearer", res.TokenType)

		// Browser clients get the same token as an HttpOnly cookie.
		cookies := rr.Result().Cookies()
		var tokenCookie *http.Cookie
		for _, c := range cookies {
			if c.Name == "token" {
				tokenCookie = c
			}
		}
		if assert.NotNil(t, tokenCookie, "token cookie must be set") {
			assert.Equal(t, res.AccessToken, tokenCookie.Value)
			assert.True(t, tokenCookie.HttpOnly)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := postJSON(t, h.HandleToken, "/api/token",
			`{"username":"alice","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown username", func(t *testing.T) {
		rr := postJSON(t, h.HandleToken, "/api/token",
			`{"username":"ghost","password":"whatever"}`)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
