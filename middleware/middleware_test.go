package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"learnhub/apperrors"
	"learnhub/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.Nop())})
}

func do(t *testing.T, app *fiber.App, method, path, token string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return resp.StatusCode, env
}

func TestJWTMiddlewareStoresCaller(t *testing.T) {
	app := newApp()
	app.Get("/me", JWTMiddleware(testSecret), func(c *fiber.Ctx) error {
		userID, err := UserID(c)
		if err != nil {
			return err
		}
		return JsonResponse(c, fiber.StatusOK, true, "ok", fiber.Map{"id": userID, "role": c.Locals("role")})
	})

	token, err := GenerateJWT(testSecret, 42, "Ada", "INSTRUCTOR", "ada@example.com")
	require.NoError(t, err)

	code, env := do(t, app, fiber.MethodGet, "/me", token)

	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `{"id":42,"role":"INSTRUCTOR"}`, string(env.Data))
}

func TestJWTMiddlewareRejects(t *testing.T) {
	app := newApp()
	app.Get("/me", JWTMiddleware(testSecret), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	wrongKey, err := GenerateJWT("other-secret", 1, "x", "LEARNER", "x@example.com")
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": 1,
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})
	expiredToken, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "LEARNER"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"missing":   "",
		"wrong key": wrongKey,
		"expired":   expiredToken,
		"no user":   noUser,
	} {
		code, env := do(t, app, fiber.MethodGet, "/me", token)
		assert.Equal(t, fiber.StatusUnauthorized, code, name)
		assert.False(t, env.Status, name)
	}
}

func TestJWTMiddlewareRequiresBearerPrefix(t *testing.T) {
	app := newApp()
	app.Get("/me", JWTMiddleware(testSecret), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	cases := map[string]struct {
		err     error
		status  int
		message string
	}{
		"not found":   {apperrors.NotFound("Lesson not found!"), fiber.StatusNotFound, "Lesson not found!"},
		"not allowed": {apperrors.NotAllowed("Unauthorized instructor!"), fiber.StatusForbidden, "Unauthorized instructor!"},
		"conflict":    {apperrors.Conflict("Same title"), fiber.StatusConflict, "Same title"},
		"expired":     {apperrors.Expired("Verification code has expired!"), fiber.StatusGone, "Verification code has expired!"},
		"invalid":     {apperrors.InvalidCode("Invalid verification code!"), fiber.StatusUnprocessableEntity, "Invalid verification code!"},
		"internal":    {apperrors.Internal("Failed to save!", errors.New("disk full")), fiber.StatusInternalServerError, "Failed to save!"},
		"fiber":       {fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), fiber.StatusMethodNotAllowed, "nope"},
		"plain":       {errors.New("secret detail"), fiber.StatusInternalServerError, "Internal server error!"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := newApp()
			app.Get("/", func(c *fiber.Ctx) error { return tc.err })

			code, env := do(t, app, fiber.MethodGet, "/", "")

			assert.Equal(t, tc.status, code)
			assert.False(t, env.Status)
			assert.Equal(t, tc.message, env.Message)
			assert.Equal(t, "null", string(env.Data))
		})
	}
}

func TestRequireRole(t *testing.T) {
	app := newApp()
	app.Get("/teach", JWTMiddleware(testSecret), RequireRole("INSTRUCTOR"), func(c *fiber.Ctx) error {
		return JsonResponse(c, fiber.StatusOK, true, "ok", nil)
	})

	instructor, err := GenerateJWT(testSecret, 1, "I", "INSTRUCTOR", "i@example.com")
	require.NoError(t, err)
	learner, err := GenerateJWT(testSecret, 2, "L", "LEARNER", "l@example.com")
	require.NoError(t, err)

	code, _ := do(t, app, fiber.MethodGet, "/teach", instructor)
	assert.Equal(t, fiber.StatusOK, code)

	code, env := do(t, app, fiber.MethodGet, "/teach", learner)
	assert.Equal(t, fiber.StatusForbidden, code)
	assert.False(t, env.Status)
}

func TestValidationErrorResponse(t *testing.T) {
	app := newApp()
	app.Post("/", func(c *fiber.Ctx) error {
		return ValidationErrorResponse(c, map[string]string{"title": "title is required"})
	})

	code, env := do(t, app, fiber.MethodPost, "/", "")

	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.Equal(t, "Validation failed!", env.Message)
	assert.JSONEq(t, `{"title":"title is required"}`, string(env.Data))
}
