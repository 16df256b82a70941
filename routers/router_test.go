package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"learnhub/config"
	"learnhub/database/testutil"
	"learnhub/logger"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"
	"learnhub/services/verifycode"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fakeImages struct {
	mu        sync.Mutex
	uploaded  []string
	destroyed []string
}

func (f *fakeImages) Upload(_ context.Context, file *multipart.FileHeader, folder string) (*utils.UploadedImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("%s/%d-%s", folder, len(f.uploaded)+1, file.Filename)
	f.uploaded = append(f.uploaded, id)
	return &utils.UploadedImage{URL: "https://cdn.example.com/" + id, PublicID: id}, nil
}

func (f *fakeImages) Destroy(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) Send(_ context.Context, to utils.Recipient, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to.Email+": "+subject)
	return nil
}

type testApp struct {
	app    *fiber.App
	db     *gorm.DB
	cfg    *config.Config
	outbox *testutil.Outbox
	images *fakeImages
	mailer *fakeMailer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := testutil.DB(t)
	cfg := &config.Config{
		JWTKey:              "test-secret",
		SaltRound:           bcrypt.MinCost,
		StripeWebhookSecret: "whsec_test",
	}
	outbox := &testutil.Outbox{}
	images := &fakeImages{}
	mailer := &fakeMailer{}
	codes := verifycode.New(db, outbox, logger.Nop(), verifycode.Options{HashCost: bcrypt.MinCost})

	app := NewApp(Deps{
		DB:     db,
		Config: cfg,
		Log:    logger.Nop(),
		Mailer: mailer,
		Codes:  codes,
		Images: images,
	}, Options{})

	return &testApp{app: app, db: db, cfg: cfg, outbox: outbox, images: images, mailer: mailer}
}

func (a *testApp) token(t *testing.T, user models.User) string {
	t.Helper()
	token, err := middleware.GenerateJWT(a.cfg.JWTKey, user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)
	return token
}

func (a *testApp) send(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.send(t, req)
}

func decode(t *testing.T, raw json.RawMessage, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out), string(raw))
}

func (a *testApp) lesson(t *testing.T, id uint) courseModels.Lesson {
	t.Helper()
	var lesson courseModels.Lesson
	require.NoError(t, a.db.First(&lesson, id).Error)
	return lesson
}

// world is two instructors with one course each, an enrolled learner and an outsider.
type world struct {
	owner, otherOwner   models.User
	learner, outsider   models.User
	course, otherCourse courseModels.Course
	lesson              courseModels.Lesson
	quiz                courseModels.Quiz
	question            courseModels.Question
}

func (a *testApp) world(t *testing.T) world {
	t.Helper()
	w := world{
		owner:      testutil.SeedUser(t, a.db, models.RoleInstructor),
		otherOwner: testutil.SeedUser(t, a.db, models.RoleInstructor),
		learner:    testutil.SeedUser(t, a.db, models.RoleLearner),
		outsider:   testutil.SeedUser(t, a.db, models.RoleLearner),
	}
	w.course = testutil.SeedCourse(t, a.db, w.owner.ID)
	w.otherCourse = testutil.SeedCourse(t, a.db, w.otherOwner.ID)
	w.lesson = testutil.SeedLesson(t, a.db, w.course, "Intro")
	w.quiz = testutil.SeedQuiz(t, a.db, w.course.ID)
	w.question = testutil.SeedQuestion(t, a.db, w.quiz.ID)
	testutil.SeedEnrollment(t, a.db, w.learner.ID, w.course.ID)
	return w
}
