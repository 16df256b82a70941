package entitlement

import (
	"fmt"

	"learnhub/apperrors"
	"learnhub/models/chat"
	courseModels "learnhub/models/course"

	"gorm.io/gorm"
)

// Kind names a resource type that hangs off a course.
type Kind string

const (
	KindCourse      Kind = "course"
	KindLesson      Kind = "lesson"
	KindQuiz        Kind = "quiz"
	KindQuestion    Kind = "question"
	KindCertificate Kind = "certificate"
	KindChatRoom    Kind = "chat-room"
)

// Ref identifies one resource.
type Ref struct {
	Kind Kind
	ID   uint
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}

type resolverFunc func(db *gorm.DB, id uint) (uint, error)

// resolvers turn a resource id into the id of its owning course.
var resolvers = map[Kind]resolverFunc{
	KindCourse: func(db *gorm.DB, id uint) (uint, error) {
		return id, nil
	},
	KindLesson: func(db *gorm.DB, id uint) (uint, error) {
		return pluckCourseID(db.Model(&courseModels.Lesson{}).
			Where("id = ? AND is_deleted = ?", id, false))
	},
	KindQuiz: func(db *gorm.DB, id uint) (uint, error) {
		return pluckCourseID(db.Model(&courseModels.Quiz{}).
			Where("id = ? AND is_deleted = ?", id, false))
	},
	KindQuestion: func(db *gorm.DB, id uint) (uint, error) {
		return pluckCourseID(db.Model(&courseModels.Question{}).
			Select("quizzes.course_id").
			Joins("JOIN quizzes ON quizzes.id = questions.quiz_id AND quizzes.is_deleted = ?", false).
			Where("questions.id = ? AND questions.is_deleted = ?", id, false))
	},
	KindCertificate: func(db *gorm.DB, id uint) (uint, error) {
		return pluckCourseID(db.Model(&courseModels.Certificate{}).
			Where("id = ? AND is_deleted = ?", id, false))
	},
	KindChatRoom: func(db *gorm.DB, id uint) (uint, error) {
		return pluckCourseID(db.Model(&chat.ChatRoom{}).
			Where("id = ? AND is_deleted = ?", id, false))
	},
}

var notFoundMessages = map[Kind]string{
	KindCourse:      "Course not found!",
	KindLesson:      "Lesson not found!",
	KindQuiz:        "Quiz not found!",
	KindQuestion:    "Question not found!",
	KindCertificate: "Certificate not found!",
	KindChatRoom:    "Chat room not found!",
}

func resolveCourseID(db *gorm.DB, ref Ref) (uint, error) {
	resolve, ok := resolvers[ref.Kind]
	if !ok {
		return 0, apperrors.BadRequest(fmt.Sprintf("Unknown resource kind %q!", ref.Kind))
	}
	courseID, err := resolve(db, ref.ID)
	if err != nil {
		return 0, apperrors.Internal("Failed to resolve "+string(ref.Kind)+"!", err)
	}
	if courseID == 0 {
		return 0, apperrors.NotFound(notFoundMessages[ref.Kind])
	}
	return courseID, nil
}

func pluckCourseID(query *gorm.DB) (uint, error) {
	var ids []uint
	if err := query.Limit(1).Pluck("course_id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}
