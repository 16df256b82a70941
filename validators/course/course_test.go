package courseValidator

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, h fiber.Handler, body string) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Post("/", h, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": true})
	})

	req := httptest.NewRequest(fiber.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestCreateQuestion(t *testing.T) {
	code, _ := post(t, CreateQuestion(), `{"question_text":"Pick one","options":["a","b"],"correct_option":1}`)
	assert.Equal(t, fiber.StatusOK, code)

	code, out := post(t, CreateQuestion(), `{"question_text":"Pick one","options":["a","b"],"correct_option":2}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.Contains(t, out["data"], "correct_option")

	code, out = post(t, CreateQuestion(), `{"question_text":"Pick one","options":["a"]}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	data := out["data"].(map[string]interface{})
	assert.Contains(t, data, "options")
	assert.Contains(t, data, "correct_option")
}

func TestConfirmDelete(t *testing.T) {
	code, _ := post(t, ConfirmDelete(), `{"code":" 123456 "}`)
	assert.Equal(t, fiber.StatusOK, code)

	for _, body := range []string{`{}`, `{"code":"12345"}`, `{"code":"12345a"}`} {
		code, _ := post(t, ConfirmDelete(), body)
		assert.Equal(t, fiber.StatusUnprocessableEntity, code, body)
	}
}

func TestUpdateLessonNeedsSomething(t *testing.T) {
	code, _ := post(t, UpdateLesson(), `{}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, _ = post(t, UpdateLesson(), `{"course_id": 4}`)
	assert.Equal(t, fiber.StatusOK, code)
}

func TestCreateCourse(t *testing.T) {
	code, _ := post(t, CreateCourse(), `{"title":"Go","description":"short"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, _ = post(t, CreateCourse(), `{"title":"Go Basics","description":"Learn Go","price":0}`)
	assert.Equal(t, fiber.StatusOK, code)
}

func TestMalformedBody(t *testing.T) {
	code, out := post(t, CreateQuiz(), `{`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body!", out["message"])
}
