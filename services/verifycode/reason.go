package verifycode

// Reason scopes a code to one kind of action. A code issued for one reason never
// confirms another.
type Reason string

const (
	ReasonUpdatePasswordVerified Reason = "update-password-verified"
	ReasonUpdateEmail            Reason = "update-email"
	ReasonUpdatePassword         Reason = "update-password"
	ReasonDeleteQuestion         Reason = "delete-question"
	ReasonDeleteCourse           Reason = "delete-course"
	ReasonDeleteLesson           Reason = "delete-lesson"
	ReasonDeleteReview           Reason = "delete-review"
	ReasonDeleteVideo            Reason = "delete-video"
	ReasonDeleteCertificate      Reason = "delete-certificate"
	ReasonDeleteQuiz             Reason = "delete-quiz"
	ReasonSignup                 Reason = "signup"
)

var knownReasons = map[Reason]bool{
	ReasonUpdatePasswordVerified: true,
	ReasonUpdateEmail:            true,
	ReasonUpdatePassword:         true,
	ReasonDeleteQuestion:         true,
	ReasonDeleteCourse:           true,
	ReasonDeleteLesson:           true,
	ReasonDeleteReview:           true,
	ReasonDeleteVideo:            true,
	ReasonDeleteCertificate:      true,
	ReasonDeleteQuiz:             true,
	ReasonSignup:                 true,
}

func (r Reason) Valid() bool {
	return knownReasons[r]
}

func (r Reason) String() string {
	return string(r)
}
