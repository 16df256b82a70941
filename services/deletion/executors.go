package deletion

import (
	"learnhub/apperrors"
	"learnhub/models/chat"
	courseModels "learnhub/models/course"
	"learnhub/services/verifycode"

	"gorm.io/gorm"
)

type executor func(tx *gorm.DB, id uint) error

func (e executor) bind(id uint) verifycode.Action {
	return func(tx *gorm.DB) error { return e(tx, id) }
}

// softDelete flags live rows matched by query and reports how many changed.
func softDelete(query *gorm.DB) (int64, error) {
	res := query.Where("is_deleted = ?", false).Update("is_deleted", true)
	return res.RowsAffected, res.Error
}

func softDeleteOne(tx *gorm.DB, model interface{}, id uint, notFound string) error {
	n, err := softDelete(tx.Model(model).Where("id = ?", id))
	if err != nil {
		return apperrors.Internal("Failed to delete!", err)
	}
	if n == 0 {
		return apperrors.NotFound(notFound)
	}
	return nil
}

func deleteQuestion(tx *gorm.DB, id uint) error {
	return softDeleteOne(tx, &courseModels.Question{}, id, "Question not found!")
}

func deleteQuiz(tx *gorm.DB, id uint) error {
	if _, err := softDelete(tx.Model(&courseModels.Question{}).Where("quiz_id = ?", id)); err != nil {
		return apperrors.Internal("Failed to delete quiz questions!", err)
	}
	return softDeleteOne(tx, &courseModels.Quiz{}, id, "Quiz not found!")
}

func deleteLesson(tx *gorm.DB, id uint) error {
	return softDeleteOne(tx, &courseModels.Lesson{}, id, "Lesson not found!")
}

func deleteCertificate(tx *gorm.DB, id uint) error {
	return softDeleteOne(tx, &courseModels.Certificate{}, id, "Certificate not found!")
}

// deleteCourse removes the course and everything that hangs off it.
func deleteCourse(tx *gorm.DB, id uint) error {
	quizIDs := tx.Model(&courseModels.Quiz{}).Select("id").Where("course_id = ?", id)
	roomIDs := tx.Model(&chat.ChatRoom{}).Select("id").Where("course_id = ?", id)

	cascade := []struct {
		name  string
		query *gorm.DB
	}{
		{"questions", tx.Model(&courseModels.Question{}).Where("quiz_id IN (?)", quizIDs)},
		{"quizzes", tx.Model(&courseModels.Quiz{}).Where("course_id = ?", id)},
		{"lessons", tx.Model(&courseModels.Lesson{}).Where("course_id = ?", id)},
		{"certificates", tx.Model(&courseModels.Certificate{}).Where("course_id = ?", id)},
		{"enrollments", tx.Model(&courseModels.Enrollment{}).Where("course_id = ?", id)},
		{"chat messages", tx.Model(&chat.ChatMessage{}).Where("room_id IN (?)", roomIDs)},
		{"chat rooms", tx.Model(&chat.ChatRoom{}).Where("course_id = ?", id)},
	}
	for _, step := range cascade {
		if _, err := softDelete(step.query); err != nil {
			return apperrors.Internal("Failed to delete course "+step.name+"!", err)
		}
	}

	return softDeleteOne(tx, &courseModels.Course{}, id, "Course not found!")
}
