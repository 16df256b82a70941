// Package entitlement decides whether a principal may act on a course resource.
//
// Every resource kind is first normalized to its owning course; the decision
// itself only looks at the principal's role, the course's instructor and the
// principal's enrollment.
package entitlement

import (
	"context"
	"errors"
	"fmt"

	"learnhub/apperrors"
	"learnhub/models"
	courseModels "learnhub/models/course"

	"gorm.io/gorm"
)

// Role is the closed set of roles the decision understands.
type Role int

const (
	RoleOther Role = iota
	RoleInstructor
	RoleLearner
)

// ParseRole maps a stored role value onto Role. Unknown values are RoleOther.
func ParseRole(s string) Role {
	switch s {
	case models.RoleInstructor:
		return RoleInstructor
	case models.RoleLearner:
		return RoleLearner
	default:
		return RoleOther
	}
}

func (r Role) String() string {
	switch r {
	case RoleInstructor:
		return "instructor"
	case RoleLearner:
		return "learner"
	default:
		return "other"
	}
}

// Relation is what the caller needs the principal to be with respect to the course.
type Relation int

const (
	// RelationOwner admits only the course's instructor.
	RelationOwner Relation = iota + 1
	// RelationMember admits the course's instructor and enrolled learners.
	RelationMember
)

// Grant is returned on success so handlers do not have to reload what the check read.
type Grant struct {
	User   models.User
	Course courseModels.Course
	Role   Role
}

type Checker struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Checker {
	return &Checker{db: db}
}

// Check resolves ref to its owning course, loads the principal and applies the
// role decision. It only reads.
func (c *Checker) Check(ctx context.Context, principalID uint, ref Ref, rel Relation) (*Grant, error) {
	db := c.db.WithContext(ctx)

	courseID, err := resolveCourseID(db, ref)
	if err != nil {
		return nil, err
	}

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Course not found!")
		}
		return nil, apperrors.Internal("Failed to load course!", err)
	}

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", principalID, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found!")
		}
		return nil, apperrors.Internal("Failed to load user!", err)
	}

	role := ParseRole(user.Role)
	enrolled := func() (bool, error) {
		var count int64
		err := db.Model(&courseModels.Enrollment{}).
			Where("user_id = ? AND course_id = ? AND is_deleted = ?", user.ID, course.ID, false).
			Count(&count).Error
		return count > 0, err
	}

	if err := decide(role, user.ID, course, rel, enrolled); err != nil {
		return nil, err
	}

	return &Grant{User: user, Course: course, Role: role}, nil
}

// CheckCourse is Check for a course id.
func (c *Checker) CheckCourse(ctx context.Context, principalID, courseID uint, rel Relation) (*Grant, error) {
	return c.Check(ctx, principalID, Ref{Kind: KindCourse, ID: courseID}, rel)
}

func decide(role Role, principalID uint, course courseModels.Course, rel Relation, enrolled func() (bool, error)) error {
	switch role {
	case RoleInstructor:
		if course.InstructorID == principalID {
			return nil
		}
		return apperrors.NotAllowed("Unauthorized instructor!")
	case RoleLearner:
		if rel != RelationMember {
			return apperrors.NotAllowed("Only the course instructor can perform this action!")
		}
		ok, err := enrolled()
		if err != nil {
			return apperrors.Internal("Failed to check enrollment!", err)
		}
		if !ok {
			return apperrors.NotAllowed("You are not enrolled in this course!")
		}
		return nil
	case RoleOther:
		return apperrors.NotAllowed("Your role cannot access this course!")
	default:
		return apperrors.NotAllowed(fmt.Sprintf("Unknown role %d!", role))
	}
}
