package deletion

import (
	"context"
	"testing"

	"learnhub/apperrors"
	"learnhub/database/testutil"
	"learnhub/models"
	"learnhub/models/chat"
	courseModels "learnhub/models/course"
	"learnhub/services/entitlement"
	"learnhub/services/verifycode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	workflow *Workflow
	outbox   *testutil.Outbox
	owner    models.User
	course   courseModels.Course
	lesson   courseModels.Lesson
	quiz     courseModels.Quiz
	question courseModels.Question
	cert     courseModels.Certificate
	learner  models.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.DB(t)
	outbox := &testutil.Outbox{}
	log := testutil.Logger(t)
	codes := verifycode.New(db, outbox, log, verifycode.Options{HashCost: bcrypt.MinCost})

	owner := testutil.SeedUser(t, db, models.RoleInstructor)
	learner := testutil.SeedUser(t, db, models.RoleLearner)
	course := testutil.SeedCourse(t, db, owner.ID)
	quiz := testutil.SeedQuiz(t, db, course.ID)
	testutil.SeedEnrollment(t, db, learner.ID, course.ID)

	return fixture{
		db:       db,
		workflow: New(entitlement.New(db), codes, log),
		outbox:   outbox,
		owner:    owner,
		course:   course,
		lesson:   testutil.SeedLesson(t, db, course, "Intro"),
		quiz:     quiz,
		question: testutil.SeedQuestion(t, db, quiz.ID),
		cert:     testutil.SeedCertificate(t, db, learner.ID, course.ID),
		learner:  learner,
	}
}

func isDeleted(t *testing.T, db *gorm.DB, model interface{}, id uint) bool {
	t.Helper()
	var flags []bool
	require.NoError(t, db.Model(model).Where("id = ?", id).Pluck("is_deleted", &flags).Error)
	require.Len(t, flags, 1)
	return flags[0]
}

func TestRequestNeverDeletes(t *testing.T) {
	f := newFixture(t)
	ref := entitlement.Ref{Kind: entitlement.KindQuestion, ID: f.question.ID}

	expiresAt, err := f.workflow.Request(context.Background(), f.owner.ID, ref)

	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())
	assert.False(t, isDeleted(t, f.db, &courseModels.Question{}, f.question.ID))
	assert.Contains(t, f.outbox.Last(t).Subject, "question")

	_, err = entitlement.New(f.db).Check(context.Background(), f.owner.ID, ref, entitlement.RelationMember)
	assert.NoError(t, err)
}

func TestRequestFailsClosedForNonOwners(t *testing.T) {
	f := newFixture(t)
	stranger := testutil.SeedUser(t, f.db, models.RoleInstructor)
	admin := testutil.SeedUser(t, f.db, "ADMIN")
	ref := entitlement.Ref{Kind: entitlement.KindLesson, ID: f.lesson.ID}

	for _, principal := range []models.User{f.learner, stranger, admin} {
		_, err := f.workflow.Request(context.Background(), principal.ID, ref)
		assert.True(t, apperrors.Is(err, apperrors.KindNotAllowed), principal.Role)
	}
	assert.Empty(t, f.outbox.Sent)
}

func TestRequestRejectsUndeletableKind(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.Request(context.Background(), f.owner.ID, entitlement.Ref{Kind: entitlement.KindChatRoom, ID: 1})

	assert.True(t, apperrors.Is(err, apperrors.KindBadRequest))
}

func TestConfirmDeletesEachKind(t *testing.T) {
	cases := []struct {
		name  string
		ref   func(f fixture) entitlement.Ref
		model interface{}
	}{
		{"question", func(f fixture) entitlement.Ref {
			return entitlement.Ref{Kind: entitlement.KindQuestion, ID: f.question.ID}
		}, &courseModels.Question{}},
		{"quiz", func(f fixture) entitlement.Ref { return entitlement.Ref{Kind: entitlement.KindQuiz, ID: f.quiz.ID} }, &courseModels.Quiz{}},
		{"lesson", func(f fixture) entitlement.Ref { return entitlement.Ref{Kind: entitlement.KindLesson, ID: f.lesson.ID} }, &courseModels.Lesson{}},
		{"certificate", func(f fixture) entitlement.Ref {
			return entitlement.Ref{Kind: entitlement.KindCertificate, ID: f.cert.ID}
		}, &courseModels.Certificate{}},
		{"course", func(f fixture) entitlement.Ref { return entitlement.Ref{Kind: entitlement.KindCourse, ID: f.course.ID} }, &courseModels.Course{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ref := tc.ref(f)
			ctx := context.Background()

			_, err := f.workflow.Request(ctx, f.owner.ID, ref)
			require.NoError(t, err)
			require.NoError(t, f.workflow.Confirm(ctx, f.owner.ID, ref, f.outbox.Last(t).Code))

			assert.True(t, isDeleted(t, f.db, tc.model, ref.ID))
		})
	}
}

func TestQuizDeletionTakesItsQuestions(t *testing.T) {
	f := newFixture(t)
	ref := entitlement.Ref{Kind: entitlement.KindQuiz, ID: f.quiz.ID}

	_, err := f.workflow.Request(context.Background(), f.owner.ID, ref)
	require.NoError(t, err)
	require.NoError(t, f.workflow.Confirm(context.Background(), f.owner.ID, ref, f.outbox.Last(t).Code))

	assert.True(t, isDeleted(t, f.db, &courseModels.Question{}, f.question.ID))
	assert.False(t, isDeleted(t, f.db, &courseModels.Lesson{}, f.lesson.ID))
}

func TestCourseDeletionCascades(t *testing.T) {
	f := newFixture(t)
	room := testutil.SeedChatRoom(t, f.db, f.course.ID)
	msg := testutil.SeedChatMessage(t, f.db, room.ID, f.learner.ID, "hello")
	other := testutil.SeedCourse(t, f.db, f.owner.ID)
	otherLesson := testutil.SeedLesson(t, f.db, other, "Kept")
	ref := entitlement.Ref{Kind: entitlement.KindCourse, ID: f.course.ID}

	_, err := f.workflow.Request(context.Background(), f.owner.ID, ref)
	require.NoError(t, err)
	require.NoError(t, f.workflow.Confirm(context.Background(), f.owner.ID, ref, f.outbox.Last(t).Code))

	assert.True(t, isDeleted(t, f.db, &courseModels.Lesson{}, f.lesson.ID))
	assert.True(t, isDeleted(t, f.db, &courseModels.Quiz{}, f.quiz.ID))
	assert.True(t, isDeleted(t, f.db, &courseModels.Question{}, f.question.ID))
	assert.True(t, isDeleted(t, f.db, &courseModels.Certificate{}, f.cert.ID))
	assert.True(t, isDeleted(t, f.db, &chat.ChatRoom{}, room.ID))
	assert.True(t, isDeleted(t, f.db, &chat.ChatMessage{}, msg.ID))

	var live int64
	require.NoError(t, f.db.Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND is_deleted = ?", f.course.ID, false).Count(&live).Error)
	assert.Zero(t, live)

	assert.False(t, isDeleted(t, f.db, &courseModels.Course{}, other.ID))
	assert.False(t, isDeleted(t, f.db, &courseModels.Lesson{}, otherLesson.ID))
}

func TestConfirmWithWrongCodeKeepsTarget(t *testing.T) {
	f := newFixture(t)
	ref := entitlement.Ref{Kind: entitlement.KindLesson, ID: f.lesson.ID}

	_, err := f.workflow.Request(context.Background(), f.owner.ID, ref)
	require.NoError(t, err)
	wrong := "000000"
	if f.outbox.Last(t).Code == wrong {
		wrong = "999999"
	}

	err = f.workflow.Confirm(context.Background(), f.owner.ID, ref, wrong)

	assert.True(t, apperrors.Is(err, apperrors.KindInvalidCode))
	assert.False(t, isDeleted(t, f.db, &courseModels.Lesson{}, f.lesson.ID))
}

func TestCodeForOneKindCannotDeleteAnother(t *testing.T) {
	f := newFixture(t)
	lessonRef := entitlement.Ref{Kind: entitlement.KindLesson, ID: f.lesson.ID}
	courseRef := entitlement.Ref{Kind: entitlement.KindCourse, ID: f.course.ID}

	_, err := f.workflow.Request(context.Background(), f.owner.ID, lessonRef)
	require.NoError(t, err)

	err = f.workflow.Confirm(context.Background(), f.owner.ID, courseRef, f.outbox.Last(t).Code)

	assert.True(t, apperrors.Is(err, apperrors.KindInvalidCode))
	assert.False(t, isDeleted(t, f.db, &courseModels.Course{}, f.course.ID))
}

func TestConfirmRechecksOwnership(t *testing.T) {
	f := newFixture(t)
	ref := entitlement.Ref{Kind: entitlement.KindCertificate, ID: f.cert.ID}

	_, err := f.workflow.Request(context.Background(), f.owner.ID, ref)
	require.NoError(t, err)
	code := f.outbox.Last(t).Code

	err = f.workflow.Confirm(context.Background(), f.learner.ID, ref, code)

	assert.True(t, apperrors.Is(err, apperrors.KindNotAllowed))
	assert.False(t, isDeleted(t, f.db, &courseModels.Certificate{}, f.cert.ID))
}

func TestReasonFor(t *testing.T) {
	reason, ok := ReasonFor(entitlement.KindCourse)
	assert.True(t, ok)
	assert.Equal(t, verifycode.ReasonDeleteCourse, reason)

	_, ok = ReasonFor(entitlement.KindChatRoom)
	assert.False(t, ok)
}
