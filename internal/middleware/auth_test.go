package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func setupAuthApp() *fiber.App {
	auth := NewAuthMiddleware(testSecret)

	app := fiber.New()
	app.Get("/protected", auth.Authenticate(), func(c *fiber.Ctx) error {
		return c.SendString(GetUserID(c))
	})
	return app
}

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()

	claims := &UserClaims{
		UserID: "user-1",
		Email:  "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func authRequest(t *testing.T, app *fiber.App, header string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestAuthenticateValidToken(t *testing.T) {
	app := setupAuthApp()
	token := signToken(t, testSecret, time.Now().Add(time.Hour))

	resp := authRequest(t, app, "Bearer "+token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthenticateMissingHeader(t *testing.T) {
	app := setupAuthApp()

	resp := authRequest(t, app, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	app := setupAuthApp()

	resp := authRequest(t, app, "Token abc")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-bearer scheme, got %d", resp.StatusCode)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	app := setupAuthApp()
	token := signToken(t, testSecret, time.Now().Add(-time.Hour))

	resp := authRequest(t, app, "Bearer "+token)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", resp.StatusCode)
	}
}

func TestAuthenticateWrongSecret(t *testing.T) {
	app := setupAuthApp()
	token := signToken(t, "other-secret", time.Now().Add(time.Hour))

	resp := authRequest(t, app, "Bearer "+token)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong signing key, got %d", resp.StatusCode)
	}
}
