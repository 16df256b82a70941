package courseRoutes

import (
	courseController "learnhub/controllers/course"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/services/entitlement"
	"learnhub/validators"
	courseValidators "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes wires course content, enrollment, certificates and deletion.
// Routes take auth individually so no path runs it twice.
func SetupCourseRoutes(app *fiber.App, ctl *courseController.Controller, auth fiber.Handler) {
	id := validators.ID("id")
	instructorOnly := middleware.RequireRole(models.RoleInstructor)

	courseGroup := app.Group("/course")
	courseGroup.Post("/", auth, instructorOnly, courseValidators.CreateCourse(), ctl.CreateCourse)
	courseGroup.Get("/:id", auth, id, ctl.GetCourse)
	courseGroup.Post("/:id/lesson", auth, id, instructorOnly, courseValidators.CreateLesson(), ctl.CreateLesson)
	courseGroup.Post("/:id/quiz", auth, id, instructorOnly, courseValidators.CreateQuiz(), ctl.CreateQuiz)
	courseGroup.Post("/:id/enroll", auth, id, ctl.Enroll)
	courseGroup.Post("/:id/certificate", auth, id, instructorOnly, courseValidators.IssueCertificate(), ctl.IssueCertificate)

	app.Post("/quiz/:id/question", auth, id, instructorOnly, courseValidators.CreateQuestion(), ctl.CreateQuestion)
	app.Put("/lesson/:id", auth, id, courseValidators.UpdateLesson(), ctl.UpdateLesson)
	app.Get("/question/:id", auth, id, ctl.GetQuestion)
	app.Get("/certificate/:id", auth, id, ctl.GetCertificate)

	app.Get("/user/enrollments", auth, ctl.MyEnrollments)
	app.Get("/user/certificates", auth, ctl.MyCertificates)

	// two-step deletion: DELETE mails a code, confirm-delete spends it
	for _, kind := range []entitlement.Kind{
		entitlement.KindQuestion,
		entitlement.KindQuiz,
		entitlement.KindLesson,
		entitlement.KindCourse,
		entitlement.KindCertificate,
	} {
		path := "/" + string(kind) + "/:id"
		app.Delete(path, auth, id, ctl.RequestDeletion(kind))
		app.Post(path+"/confirm-delete", auth, id, courseValidators.ConfirmDelete(), ctl.ConfirmDeletion(kind))
	}
}
