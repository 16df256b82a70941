package routers

import (
	"testing"

	"learnhub/database/testutil"
	"learnhub/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupVerifyLogin(t *testing.T) {
	a := newTestApp(t)
	creds := fiber.Map{"email": "ada@example.com", "password": "correct-horse"}

	code, env := a.do(t, fiber.MethodPost, "/auth/signup", "", fiber.Map{
		"name": "Ada", "email": "ada@example.com", "password": "correct-horse", "role": models.RoleInstructor,
	})
	require.Equal(t, fiber.StatusCreated, code, env.Message)
	sent := a.outbox.Last(t)
	assert.Equal(t, "ada@example.com", sent.To.Email)

	code, env = a.do(t, fiber.MethodPost, "/auth/login", "", creds)
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "Email not verified!", env.Message)

	code, _ = a.do(t, fiber.MethodPatch, "/auth/verify/email", "", fiber.Map{"email": "ada@example.com", "code": "000000"})
	if sent.Code != "000000" {
		assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	}

	code, env = a.do(t, fiber.MethodPatch, "/auth/verify/email", "", fiber.Map{"email": "ada@example.com", "code": sent.Code})
	require.Equal(t, fiber.StatusOK, code, env.Message)

	code, env = a.do(t, fiber.MethodPost, "/auth/login", "", creds)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	var session struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	decode(t, env.Data, &session)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, models.RoleInstructor, session.User.Role)

	code, env = a.do(t, fiber.MethodPost, "/course", session.Token, fiber.Map{"title": "From login", "description": "Token works"})
	assert.Equal(t, fiber.StatusCreated, code, env.Message)

	code, _ = a.do(t, fiber.MethodPost, "/auth/signup", "", fiber.Map{
		"name": "Ada", "email": "ada@example.com", "password": "correct-horse",
	})
	assert.Equal(t, fiber.StatusConflict, code)
}

func TestSignupValidation(t *testing.T) {
	a := newTestApp(t)

	code, env := a.do(t, fiber.MethodPost, "/auth/signup", "", fiber.Map{
		"name": "A", "email": "not-an-email", "password": "short", "role": "ADMIN",
	})

	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	var fields map[string]string
	decode(t, env.Data, &fields)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "role")
	assert.Empty(t, a.outbox.Sent)
}

func TestLoginLockout(t *testing.T) {
	a := newTestApp(t)

	code, _ := a.do(t, fiber.MethodPost, "/auth/signup", "", fiber.Map{
		"name": "Grace", "email": "grace@example.com", "password": "correct-horse",
	})
	require.Equal(t, fiber.StatusCreated, code)
	code, _ = a.do(t, fiber.MethodPatch, "/auth/verify/email", "", fiber.Map{"email": "grace@example.com", "code": a.outbox.Last(t).Code})
	require.Equal(t, fiber.StatusOK, code)

	for i := 0; i < 3; i++ {
		code, env := a.do(t, fiber.MethodPost, "/auth/login", "", fiber.Map{"email": "grace@example.com", "password": "wrong-horse"})
		assert.Equal(t, fiber.StatusUnauthorized, code)
		assert.Equal(t, "Wrong Password", env.Message)
	}

	code, env := a.do(t, fiber.MethodPost, "/auth/login", "", fiber.Map{"email": "grace@example.com", "password": "correct-horse"})
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Contains(t, env.Message, "temporarily blocked")

	code, _ = a.do(t, fiber.MethodPost, "/auth/login", "", fiber.Map{"email": "nobody@example.com", "password": "whatever"})
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newTestApp(t)

	for _, path := range []string{"/user/enrollments", "/user/certificates", "/course/1", "/chat/room/1"} {
		code, env := a.do(t, fiber.MethodGet, path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, code, path)
		assert.False(t, env.Status)
	}

	code, _ := a.do(t, fiber.MethodGet, "/user/enrollments", "not-a-jwt", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestPasswordResetLiftsLockout(t *testing.T) {
	a := newTestApp(t)
	user := testutil.SeedUser(t, a.db, models.RoleLearner)

	code, env := a.do(t, fiber.MethodPost, "/auth/password/forgot", "", fiber.Map{"email": "nobody@example.com"})
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, a.outbox.Sent)

	for i := 0; i < 3; i++ {
		a.do(t, fiber.MethodPost, "/auth/login", "", fiber.Map{"email": user.Email, "password": "wrong-horse"})
	}

	code, env = a.do(t, fiber.MethodPost, "/auth/password/forgot", "", fiber.Map{"email": user.Email})
	require.Equal(t, fiber.StatusOK, code, env.Message)
	sent := a.outbox.Last(t)
	assert.Equal(t, user.Email, sent.To.Email)

	reset := fiber.Map{"email": user.Email, "code": sent.Code, "password": "fresh-password"}
	code, env = a.do(t, fiber.MethodPatch, "/auth/password/reset", "", reset)
	require.Equal(t, fiber.StatusOK, code, env.Message)

	code, env = a.do(t, fiber.MethodPost, "/auth/login", "", fiber.Map{"email": user.Email, "password": "fresh-password"})
	assert.Equal(t, fiber.StatusOK, code, env.Message)

	code, _ = a.do(t, fiber.MethodPatch, "/auth/password/reset", "", reset)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
}
