// Package deletion gates destructive course operations behind an emailed code.
package deletion

import (
	"context"
	"fmt"
	"time"

	"learnhub/apperrors"
	"learnhub/logger"
	"learnhub/services/entitlement"
	"learnhub/services/verifycode"
)

type target struct {
	reason  verifycode.Reason
	label   string
	execute executor
}

var targets = map[entitlement.Kind]target{
	entitlement.KindQuestion:    {verifycode.ReasonDeleteQuestion, "question", deleteQuestion},
	entitlement.KindQuiz:        {verifycode.ReasonDeleteQuiz, "quiz", deleteQuiz},
	entitlement.KindLesson:      {verifycode.ReasonDeleteLesson, "lesson", deleteLesson},
	entitlement.KindCertificate: {verifycode.ReasonDeleteCertificate, "certificate", deleteCertificate},
	entitlement.KindCourse:      {verifycode.ReasonDeleteCourse, "course", deleteCourse},
}

// ReasonFor returns the verification reason used to delete kind.
func ReasonFor(kind entitlement.Kind) (verifycode.Reason, bool) {
	t, ok := targets[kind]
	return t.reason, ok
}

type Workflow struct {
	checker *entitlement.Checker
	codes   *verifycode.Service
	log     *logger.Logger
}

func New(checker *entitlement.Checker, codes *verifycode.Service, log *logger.Logger) *Workflow {
	return &Workflow{checker: checker, codes: codes, log: log.With("component", "deletion")}
}

// Request mails a deletion code to the course owner and returns when it expires.
// Nothing is deleted here.
func (w *Workflow) Request(ctx context.Context, principalID uint, ref entitlement.Ref) (time.Time, error) {
	t, ok := targets[ref.Kind]
	if !ok {
		return time.Time{}, apperrors.BadRequest(fmt.Sprintf("Cannot delete %s!", ref.Kind))
	}

	grant, err := w.checker.Check(ctx, principalID, ref, entitlement.RelationOwner)
	if err != nil {
		return time.Time{}, err
	}

	expiresAt, err := w.codes.Issue(ctx, verifycode.IssueRequest{
		User:     grant.User,
		Reason:   t.reason,
		TargetID: ref.ID,
		Subject:  fmt.Sprintf("Confirm %s deletion: %s", t.label, grant.Course.Title),
	})
	if err != nil {
		return time.Time{}, err
	}

	w.log.Info("deletion requested", "userId", principalID, "target", ref.String())
	return expiresAt, nil
}

// Confirm re-checks ownership, then consumes the code and deletes the target in one
// transaction.
func (w *Workflow) Confirm(ctx context.Context, principalID uint, ref entitlement.Ref, code string) error {
	t, ok := targets[ref.Kind]
	if !ok {
		return apperrors.BadRequest(fmt.Sprintf("Cannot delete %s!", ref.Kind))
	}

	if _, err := w.checker.Check(ctx, principalID, ref, entitlement.RelationOwner); err != nil {
		return err
	}

	err := w.codes.Confirm(ctx, principalID, t.reason, ref.ID, code, t.execute.bind(ref.ID))
	if err != nil {
		return err
	}

	w.log.Info("deletion confirmed", "userId", principalID, "target", ref.String())
	return nil
}
