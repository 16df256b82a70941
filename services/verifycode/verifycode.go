// Package verifycode issues and confirms single-use, reason-scoped codes that are
// mailed to a user before a sensitive action runs.
package verifycode

import (
	"context"
	"errors"
	"time"

	"learnhub/apperrors"
	"learnhub/config"
	"learnhub/logger"
	"learnhub/models"
	"learnhub/utils"

	"github.com/jinzhu/now"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Sender delivers a plaintext code to the user. The code is never stored in clear.
type Sender interface {
	SendVerificationCode(ctx context.Context, to utils.Recipient, subject, code string, expiresAt time.Time) error
}

type Options struct {
	TTL         time.Duration
	MaxPerDay   int
	MaxAttempts int
	HashCost    int
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TTL:         cfg.VerifyCodeTTL,
		MaxPerDay:   cfg.VerifyCodeMaxPerDay,
		MaxAttempts: cfg.VerifyCodeMaxAttempts,
		HashCost:    bcrypt.DefaultCost,
	}
}

type Service struct {
	db     *gorm.DB
	sender Sender
	log    *logger.Logger
	opts   Options
	now    func() time.Time
}

func New(db *gorm.DB, sender Sender, log *logger.Logger, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	return &Service{
		db:     db,
		sender: sender,
		log:    log.With("component", "verifycode"),
		opts:   opts,
		now:    time.Now,
	}
}

type IssueRequest struct {
	User     models.User
	Reason   Reason
	TargetID uint
	Subject  string
}

// Issue supersedes any live code for (user, reason, target), stores a new one and
// mails it. The new code is committed before it is sent. If sending fails the new
// code is marked UNDELIVERED and the codes it superseded are live again.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (time.Time, error) {
	if !req.Reason.Valid() {
		return time.Time{}, apperrors.BadRequest("Invalid verification reason!")
	}

	db := s.db.WithContext(ctx)
	issuedAt := s.now()

	if err := s.checkDailyLimit(db, req.User.ID, issuedAt); err != nil {
		return time.Time{}, err
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return time.Time{}, apperrors.Internal("Failed to generate verification code!", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.opts.HashCost)
	if err != nil {
		return time.Time{}, apperrors.Internal("Failed to generate verification code!", err)
	}

	record := models.VerificationCode{
		Model:     gorm.Model{CreatedAt: issuedAt},
		UserID:    req.User.ID,
		Reason:    req.Reason.String(),
		TargetID:  req.TargetID,
		Status:    models.CodeStatusIssued,
		CodeHash:  string(hash),
		ExpiresAt: issuedAt.Add(s.opts.TTL),
	}

	var superseded []uint
	err = db.Transaction(func(tx *gorm.DB) error {
		live := tx.Model(&models.VerificationCode{}).
			Where("user_id = ? AND reason = ? AND target_id = ? AND status = ?",
				req.User.ID, req.Reason.String(), req.TargetID, models.CodeStatusIssued)
		if err := live.Pluck("id", &superseded).Error; err != nil {
			return err
		}
		if len(superseded) > 0 {
			if err := tx.Model(&models.VerificationCode{}).
				Where("id IN ?", superseded).
				Update("status", models.CodeStatusSuperseded).Error; err != nil {
				return err
			}
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return time.Time{}, apperrors.Internal("Failed to store verification code!", err)
	}

	subject := req.Subject
	if subject == "" {
		subject = "Your verification code"
	}
	to := utils.Recipient{Name: req.User.Name, Email: req.User.Email}
	if err := s.sender.SendVerificationCode(ctx, to, subject, code, record.ExpiresAt); err != nil {
		s.log.Error("verification email failed", "userId", req.User.ID, "reason", req.Reason, "error", err)
		if rerr := s.undeliver(db, record.ID, superseded); rerr != nil {
			s.log.Error("failed to roll back undelivered code", "codeId", record.ID, "error", rerr)
		}
		return time.Time{}, apperrors.Internal("Failed to send verification email!", err)
	}

	s.log.Info("verification code issued",
		"userId", req.User.ID, "reason", req.Reason, "targetId", req.TargetID, "expiresAt", record.ExpiresAt)
	return record.ExpiresAt, nil
}

// undeliver retires a code whose email never went out and puts back the codes it
// superseded.
func (s *Service) undeliver(db *gorm.DB, codeID uint, superseded []uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.VerificationCode{}).
			Where("id = ? AND status = ?", codeID, models.CodeStatusIssued).
			Update("status", models.CodeStatusUndelivered).Error; err != nil {
			return err
		}
		if len(superseded) == 0 {
			return nil
		}
		return tx.Model(&models.VerificationCode{}).
			Where("id IN ? AND status = ?", superseded, models.CodeStatusSuperseded).
			Update("status", models.CodeStatusIssued).Error
	})
}

func (s *Service) checkDailyLimit(db *gorm.DB, userID uint, at time.Time) error {
	if s.opts.MaxPerDay <= 0 {
		return nil
	}

	var recent []time.Time
	if err := db.Model(&models.VerificationCode{}).
		Where("user_id = ? AND status <> ?", userID, models.CodeStatusUndelivered).
		Order("id DESC").
		Limit(s.opts.MaxPerDay).
		Pluck("created_at", &recent).Error; err != nil {
		return apperrors.Internal("Failed to check verification limit!", err)
	}

	startOfDay := now.With(at).BeginningOfDay()
	today := 0
	for _, createdAt := range recent {
		if !createdAt.Before(startOfDay) {
			today++
		}
	}
	if today >= s.opts.MaxPerDay {
		return apperrors.TooManyRequests("Daily verification code limit reached. Try again tomorrow!")
	}
	return nil
}

// Action runs inside the confirming transaction. An error rolls back the consumption.
type Action func(tx *gorm.DB) error

// Confirm checks code against the live code for (user, reason, target). On a match the
// code is consumed and action runs in the same transaction. An expired code is marked
// EXPIRED and a wrong code counts an attempt; both outcomes are committed.
func (s *Service) Confirm(ctx context.Context, userID uint, reason Reason, targetID uint, code string, action Action) error {
	if !reason.Valid() {
		return apperrors.BadRequest("Invalid verification reason!")
	}

	var outcome error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.VerificationCode
		err := tx.Where("user_id = ? AND reason = ? AND target_id = ? AND status = ?",
			userID, reason.String(), targetID, models.CodeStatusIssued).
			Order("id DESC").
			First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.InvalidCode("Invalid verification code!")
		}
		if err != nil {
			return apperrors.Internal("Failed to load verification code!", err)
		}

		if !s.now().Before(record.ExpiresAt) {
			if err := tx.Model(&models.VerificationCode{}).
				Where("id = ? AND status = ?", record.ID, models.CodeStatusIssued).
				Update("status", models.CodeStatusExpired).Error; err != nil {
				return apperrors.Internal("Failed to expire verification code!", err)
			}
			outcome = apperrors.Expired("Verification code has expired!")
			return nil
		}

		if bcrypt.CompareHashAndPassword([]byte(record.CodeHash), []byte(code)) != nil {
			updates := map[string]interface{}{"attempts": record.Attempts + 1}
			if record.Attempts+1 >= s.opts.MaxAttempts {
				updates["status"] = models.CodeStatusRevoked
			}
			if err := tx.Model(&models.VerificationCode{}).
				Where("id = ? AND status = ?", record.ID, models.CodeStatusIssued).
				Updates(updates).Error; err != nil {
				return apperrors.Internal("Failed to record verification attempt!", err)
			}
			if _, revoked := updates["status"]; revoked {
				s.log.Warn("verification code revoked", "userId", userID, "reason", reason, "targetId", targetID)
				outcome = apperrors.InvalidCode("Too many wrong attempts. Request a new code!")
			} else {
				outcome = apperrors.InvalidCode("Invalid verification code!")
			}
			return nil
		}

		consumedAt := s.now()
		res := tx.Model(&models.VerificationCode{}).
			Where("id = ? AND status = ?", record.ID, models.CodeStatusIssued).
			Updates(map[string]interface{}{
				"status":      models.CodeStatusConsumed,
				"consumed_at": consumedAt,
			})
		if res.Error != nil {
			return apperrors.Internal("Failed to consume verification code!", res.Error)
		}
		if res.RowsAffected != 1 {
			return apperrors.InvalidCode("Verification code was already used!")
		}

		if action == nil {
			return nil
		}
		return action(tx)
	})
	if err != nil {
		return err
	}
	if outcome != nil {
		return outcome
	}

	s.log.Info("verification code consumed", "userId", userID, "reason", reason, "targetId", targetID)
	return nil
}

// sweepBatch bounds how many live codes Sweep holds in memory at once.
const sweepBatch = 500

// Sweep marks ISSUED codes past their expiry as EXPIRED and returns how many it changed.
//
// Expiry is compared in Go: sqlite stores times as text and a SQL comparison against
// a bound time is only correct when both sides share an offset and precision.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	db := s.db.WithContext(ctx)
	cutoff := s.now()

	var swept int64
	var batch []models.VerificationCode
	res := db.Select("id", "expires_at").
		Where("status = ?", models.CodeStatusIssued).
		FindInBatches(&batch, sweepBatch, func(tx *gorm.DB, _ int) error {
			ids := make([]uint, 0, len(batch))
			for _, c := range batch {
				if !cutoff.Before(c.ExpiresAt) {
					ids = append(ids, c.ID)
				}
			}
			if len(ids) == 0 {
				return nil
			}
			res := db.Model(&models.VerificationCode{}).
				Where("id IN ? AND status = ?", ids, models.CodeStatusIssued).
				Update("status", models.CodeStatusExpired)
			swept += res.RowsAffected
			return res.Error
		})
	if res.Error != nil {
		return swept, res.Error
	}
	return swept, nil
}
