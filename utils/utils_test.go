package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	digits := regexp.MustCompile(`^[0-9]{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, digits, otp)
		seen[otp] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestGenerateCertificateNumber(t *testing.T) {
	a := GenerateCertificateNumber(7)
	b := GenerateCertificateNumber(7)

	assert.Regexp(t, `^CERT-7-[0-9A-F]{12}$`, a)
	assert.NotEqual(t, a, b)
}

func TestVerificationCodeEmail(t *testing.T) {
	expires := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	html := VerificationCodeEmail("Ada", "123456", expires)

	assert.Contains(t, html, "Dear Ada")
	assert.Contains(t, html, "123456")
	assert.Contains(t, html, "2026-01-02 03:04 UTC")
	assert.Contains(t, html, "<!DOCTYPE html>")
}

func TestEnrollmentEmail(t *testing.T) {
	subject, html := EnrollmentEmail("Ada", "Go Basics")

	assert.Equal(t, "Course Enrollment Confirmation", subject)
	assert.Contains(t, html, "Go Basics")
}
