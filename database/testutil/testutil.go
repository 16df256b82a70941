// Package testutil opens throwaway sqlite databases and seeds fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"learnhub/database"
	"learnhub/logger"
	"learnhub/models"
	"learnhub/models/chat"
	courseModels "learnhub/models/course"
	"learnhub/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB returns a fresh, migrated in-memory database private to tb.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("get sql db: %v", err)
	}
	// one connection keeps the in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.RunMigrations(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}

func SeedUser(tb testing.TB, db *gorm.DB, role string) models.User {
	tb.Helper()
	user := models.User{
		Name:            role + " user",
		Email:           fmt.Sprintf("%s-%s@example.com", strings.ToLower(role), uuid.NewString()),
		Role:            role,
		Password:        "not-a-real-hash",
		IsEmailVerified: true,
	}
	if err := db.Create(&user).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return user
}

func SeedCourse(tb testing.TB, db *gorm.DB, instructorID uint) courseModels.Course {
	tb.Helper()
	course := courseModels.Course{
		InstructorID: instructorID,
		Title:        "Course " + uuid.NewString()[:8],
		Description:  "A course",
		Status:       "ACTIVE",
	}
	if err := db.Create(&course).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return course
}

func SeedLesson(tb testing.TB, db *gorm.DB, course courseModels.Course, title string) courseModels.Lesson {
	tb.Helper()
	lesson := courseModels.Lesson{
		CourseID:     course.ID,
		InstructorID: course.InstructorID,
		Title:        title,
		Content:      "Lesson body",
	}
	if err := db.Create(&lesson).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return lesson
}

func SeedQuiz(tb testing.TB, db *gorm.DB, courseID uint) courseModels.Quiz {
	tb.Helper()
	quiz := courseModels.Quiz{CourseID: courseID, Title: "Quiz"}
	if err := db.Create(&quiz).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return quiz
}

func SeedQuestion(tb testing.TB, db *gorm.DB, quizID uint) courseModels.Question {
	tb.Helper()
	correct := 1
	question := courseModels.Question{
		QuizID:        quizID,
		QuestionText:  "What does gofmt do?",
		Options:       datatypes.JSON(`["compiles","formats","tests"]`),
		CorrectOption: &correct,
		Points:        1,
	}
	if err := db.Create(&question).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return question
}

func SeedEnrollment(tb testing.TB, db *gorm.DB, userID, courseID uint) courseModels.Enrollment {
	tb.Helper()
	enrollment := courseModels.Enrollment{UserID: userID, CourseID: courseID, Status: "ENROLLED"}
	if err := db.Create(&enrollment).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return enrollment
}

func SeedCertificate(tb testing.TB, db *gorm.DB, userID, courseID uint) courseModels.Certificate {
	tb.Helper()
	cert := courseModels.Certificate{
		UserID:            userID,
		CourseID:          courseID,
		CertificateNumber: "CERT-" + uuid.NewString(),
		IssuedAt:          time.Now().UTC(),
	}
	if err := db.Create(&cert).Error; err != nil {
		tb.Fatalf("seed certificate: %v", err)
	}
	return cert
}

func SeedChatRoom(tb testing.TB, db *gorm.DB, courseID uint) chat.ChatRoom {
	tb.Helper()
	room := chat.ChatRoom{CourseID: courseID, Name: "General"}
	if err := db.Create(&room).Error; err != nil {
		tb.Fatalf("seed chat room: %v", err)
	}
	return room
}

func SeedChatMessage(tb testing.TB, db *gorm.DB, roomID, senderID uint, body string) chat.ChatMessage {
	tb.Helper()
	msg := chat.ChatMessage{RoomID: roomID, SenderID: senderID, Body: body}
	if err := db.Create(&msg).Error; err != nil {
		tb.Fatalf("seed chat message: %v", err)
	}
	return msg
}

// SentCode is one verification code captured by Outbox.
type SentCode struct {
	To        utils.Recipient
	Subject   string
	Code      string
	ExpiresAt time.Time
}

// Outbox records verification codes instead of mailing them.
type Outbox struct {
	mu   sync.Mutex
	Sent []SentCode
	Err  error
}

func (o *Outbox) SendVerificationCode(_ context.Context, to utils.Recipient, subject, code string, expiresAt time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Err != nil {
		return o.Err
	}
	o.Sent = append(o.Sent, SentCode{To: to, Subject: subject, Code: code, ExpiresAt: expiresAt})
	return nil
}

// Last returns the most recent code, failing tb if nothing was sent.
func (o *Outbox) Last(tb testing.TB) SentCode {
	tb.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.Sent) == 0 {
		tb.Fatalf("outbox is empty")
	}
	return o.Sent[len(o.Sent)-1]
}
