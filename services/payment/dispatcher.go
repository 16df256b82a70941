// Package payment applies Stripe webhook events to payments and enrollments.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"learnhub/logger"
	"learnhub/models"
	courseModels "learnhub/models/course"
	"learnhub/utils"

	"github.com/stripe/stripe-go/v76"
	"gorm.io/gorm"
)

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventChargeRefunded    = "charge.refunded"
)

type Dispatcher struct {
	db     *gorm.DB
	mailer utils.Mailer
	log    *logger.Logger
}

func NewDispatcher(db *gorm.DB, mailer utils.Mailer, log *logger.Logger) *Dispatcher {
	return &Dispatcher{db: db, mailer: mailer, log: log.With("component", "payment")}
}

// Dispatch applies event. A returned error means Stripe should retry.
func (d *Dispatcher) Dispatch(ctx context.Context, event stripe.Event) error {
	log := d.log.With("eventId", event.ID, "type", event.Type)
	if event.Data == nil {
		return fmt.Errorf("stripe event %s has no data", event.ID)
	}

	switch event.Type {
	case EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		return d.checkoutCompleted(ctx, log, event.ID, &session)
	case EventChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return fmt.Errorf("decode charge: %w", err)
		}
		return d.chargeRefunded(ctx, log, &charge)
	default:
		log.Debug("ignoring stripe event")
		return nil
	}
}

func (d *Dispatcher) checkoutCompleted(ctx context.Context, log *logger.Logger, eventID string, session *stripe.CheckoutSession) error {
	userID, errUser := metadataID(session.Metadata, "user_id")
	courseID, errCourse := metadataID(session.Metadata, "course_id")
	if errUser != nil || errCourse != nil {
		// nothing to retry, the session can never be matched
		log.Warn("checkout session without usable metadata", "sessionId", session.ID, "metadata", session.Metadata)
		return nil
	}

	var (
		user      models.User
		course    courseModels.Course
		duplicate bool
	)
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seen int64
		if err := tx.Model(&models.Payment{}).Where("stripe_event_id = ?", eventID).Count(&seen).Error; err != nil {
			return err
		}
		if seen > 0 {
			duplicate = true
			return nil
		}

		if err := tx.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
			return fmt.Errorf("load user %d: %w", userID, err)
		}
		if err := tx.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
			return fmt.Errorf("load course %d: %w", courseID, err)
		}

		payment := models.Payment{
			StripeEventID:     eventID,
			CheckoutSessionID: session.ID,
			UserID:            userID,
			CourseID:          courseID,
			Amount:            session.AmountTotal,
			Currency:          string(session.Currency),
			Status:            models.PaymentStatusPaid,
		}
		if session.PaymentIntent != nil {
			payment.PaymentIntentID = session.PaymentIntent.ID
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		var enrolled int64
		if err := tx.Model(&courseModels.Enrollment{}).
			Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
			Count(&enrolled).Error; err != nil {
			return err
		}
		if enrolled > 0 {
			return nil
		}
		return tx.Create(&courseModels.Enrollment{
			UserID:   userID,
			CourseID: courseID,
			Status:   "ENROLLED",
			Source:   courseModels.EnrollmentSourceStripe,
		}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("checkout session for unknown user or course", "userId", userID, "courseId", courseID)
		return nil
	}
	if err != nil {
		return err
	}
	if duplicate {
		log.Info("duplicate checkout event")
		return nil
	}

	log.Info("course purchased", "userId", userID, "courseId", courseID, "amount", session.AmountTotal)

	subject, html := utils.EnrollmentEmail(user.Name, course.Title)
	if err := d.mailer.Send(ctx, utils.Recipient{Name: user.Name, Email: user.Email}, subject, html); err != nil {
		log.Error("enrollment email failed", "userId", userID, "error", err)
	}
	return nil
}

func (d *Dispatcher) chargeRefunded(ctx context.Context, log *logger.Logger, charge *stripe.Charge) error {
	if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
		log.Warn("refunded charge without payment intent", "chargeId", charge.ID)
		return nil
	}
	intentID := charge.PaymentIntent.ID

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := tx.Where("payment_intent_id = ? AND status = ?", intentID, models.PaymentStatusPaid).First(&payment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("refund for unknown payment", "paymentIntentId", intentID)
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&payment).Update("status", models.PaymentStatusRefunded).Error; err != nil {
			return err
		}
		if err := tx.Model(&courseModels.Enrollment{}).
			Where("user_id = ? AND course_id = ? AND source = ? AND is_deleted = ?",
				payment.UserID, payment.CourseID, courseModels.EnrollmentSourceStripe, false).
			Update("is_deleted", true).Error; err != nil {
			return err
		}

		log.Info("payment refunded", "userId", payment.UserID, "courseId", payment.CourseID)
		return nil
	})
}

func metadataID(metadata map[string]string, key string) (uint, error) {
	raw, ok := metadata[key]
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return uint(id), nil
}
