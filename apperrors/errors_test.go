package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindBadRequest:      http.StatusBadRequest,
		KindUnauthorized:    http.StatusUnauthorized,
		KindNotFound:        http.StatusNotFound,
		KindNotAllowed:      http.StatusForbidden,
		KindConflict:        http.StatusConflict,
		KindExpired:         http.StatusGone,
		KindInvalidCode:     http.StatusUnprocessableEntity,
		KindTooManyRequests: http.StatusTooManyRequests,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}

func TestKindOfSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("update lesson: %w", NotAllowed("Unauthorized instructor!"))

	assert.Equal(t, KindNotAllowed, KindOf(err))
	assert.True(t, Is(err, KindNotAllowed))
	assert.False(t, Is(err, KindNotFound))
	assert.False(t, Is(nil, KindInternal))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("Failed to save lesson!", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to save lesson!: connection reset", err.Error())
}
