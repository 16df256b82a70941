package entitlement

import (
	"context"
	"errors"
	"testing"

	"learnhub/apperrors"
	"learnhub/database/testutil"
	"learnhub/models"
	courseModels "learnhub/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	checker  *Checker
	owner    models.User
	stranger models.User
	enrolled models.User
	outsider models.User
	admin    models.User
	course   courseModels.Course
	refs     []Ref
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.DB(t)

	owner := testutil.SeedUser(t, db, models.RoleInstructor)
	stranger := testutil.SeedUser(t, db, models.RoleInstructor)
	enrolled := testutil.SeedUser(t, db, models.RoleLearner)
	outsider := testutil.SeedUser(t, db, models.RoleLearner)
	admin := testutil.SeedUser(t, db, "ADMIN")

	course := testutil.SeedCourse(t, db, owner.ID)
	lesson := testutil.SeedLesson(t, db, course, "Intro")
	quiz := testutil.SeedQuiz(t, db, course.ID)
	question := testutil.SeedQuestion(t, db, quiz.ID)
	cert := testutil.SeedCertificate(t, db, enrolled.ID, course.ID)
	room := testutil.SeedChatRoom(t, db, course.ID)
	testutil.SeedEnrollment(t, db, enrolled.ID, course.ID)

	// the stranger owns a course of their own
	testutil.SeedCourse(t, db, stranger.ID)

	return fixture{
		checker:  New(db),
		owner:    owner,
		stranger: stranger,
		enrolled: enrolled,
		outsider: outsider,
		admin:    admin,
		course:   course,
		refs: []Ref{
			{Kind: KindCourse, ID: course.ID},
			{Kind: KindLesson, ID: lesson.ID},
			{Kind: KindQuiz, ID: quiz.ID},
			{Kind: KindQuestion, ID: question.ID},
			{Kind: KindCertificate, ID: cert.ID},
			{Kind: KindChatRoom, ID: room.ID},
		},
	}
}

func TestInstructorAllowedOnlyOnOwnCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, ref := range f.refs {
		for _, rel := range []Relation{RelationOwner, RelationMember} {
			grant, err := f.checker.Check(ctx, f.owner.ID, ref, rel)
			require.NoError(t, err, ref.String())
			assert.Equal(t, f.course.ID, grant.Course.ID)
			assert.Equal(t, RoleInstructor, grant.Role)

			_, err = f.checker.Check(ctx, f.stranger.ID, ref, rel)
			assert.True(t, apperrors.Is(err, apperrors.KindNotAllowed), ref.String())
		}
	}
}

func TestLearnerNeedsEnrollment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, ref := range f.refs {
		grant, err := f.checker.Check(ctx, f.enrolled.ID, ref, RelationMember)
		require.NoError(t, err, ref.String())
		assert.Equal(t, RoleLearner, grant.Role)

		_, err = f.checker.Check(ctx, f.outsider.ID, ref, RelationMember)
		assert.True(t, apperrors.Is(err, apperrors.KindNotAllowed), ref.String())
	}
}

func TestLearnerNeverOwns(t *testing.T) {
	f := newFixture(t)

	for _, ref := range f.refs {
		_, err := f.checker.Check(context.Background(), f.enrolled.ID, ref, RelationOwner)
		assert.True(t, apperrors.Is(err, apperrors.KindNotAllowed), ref.String())
	}
}

func TestOtherRoleIsAlwaysDenied(t *testing.T) {
	f := newFixture(t)

	for _, ref := range f.refs {
		for _, rel := range []Relation{RelationOwner, RelationMember} {
			_, err := f.checker.Check(context.Background(), f.admin.ID, ref, rel)
			assert.True(t, apperrors.Is(err, apperrors.KindNotAllowed), ref.String())
		}
	}
}

func TestMissingResourceOrPrincipalIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, kind := range []Kind{KindCourse, KindLesson, KindQuiz, KindQuestion, KindCertificate, KindChatRoom} {
		_, err := f.checker.Check(ctx, f.owner.ID, Ref{Kind: kind, ID: 9999}, RelationMember)
		assert.True(t, apperrors.Is(err, apperrors.KindNotFound), string(kind))
	}

	_, err := f.checker.Check(ctx, 9999, f.refs[0], RelationMember)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestDeletedQuizHidesItsQuestions(t *testing.T) {
	db := testutil.DB(t)
	owner := testutil.SeedUser(t, db, models.RoleInstructor)
	course := testutil.SeedCourse(t, db, owner.ID)
	quiz := testutil.SeedQuiz(t, db, course.ID)
	question := testutil.SeedQuestion(t, db, quiz.ID)
	require.NoError(t, db.Model(&quiz).Update("is_deleted", true).Error)

	_, err := New(db).Check(context.Background(), owner.ID, Ref{Kind: KindQuestion, ID: question.ID}, RelationOwner)

	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestDecideIsExhaustive(t *testing.T) {
	course := courseModels.Course{InstructorID: 1}
	never := func() (bool, error) { return false, errors.New("enrollment must not be consulted") }

	assert.NoError(t, decide(RoleInstructor, 1, course, RelationOwner, never))
	assert.True(t, apperrors.Is(decide(RoleInstructor, 2, course, RelationMember, never), apperrors.KindNotAllowed))
	assert.True(t, apperrors.Is(decide(RoleLearner, 1, course, RelationOwner, never), apperrors.KindNotAllowed))
	assert.True(t, apperrors.Is(decide(RoleOther, 1, course, RelationMember, never), apperrors.KindNotAllowed))
	assert.True(t, apperrors.Is(decide(Role(42), 1, course, RelationMember, never), apperrors.KindNotAllowed))
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleInstructor, ParseRole(models.RoleInstructor))
	assert.Equal(t, RoleLearner, ParseRole(models.RoleLearner))
	assert.Equal(t, RoleOther, ParseRole("ADMIN"))
	assert.Equal(t, RoleOther, ParseRole(""))
}
