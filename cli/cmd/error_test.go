package cmd

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	cause := errors.New("cause")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message", NewError("msg"), "msg"},
		{"wrapped", NewError("msg").Wrap(cause), "msg: cause"},
		{"cause only", NewError("").Wrap(cause), "cause"},
		{"empty", NewError(""), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Is(t *testing.T) {
	cause := errors.New("cause")
	err := ErrEvaluate.Wrap(cause).With(slog.String("expr", "x"))

	assert.ErrorIs(t, err, ErrEvaluate)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrRender)
}

func TestError_With(t *testing.T) {
	base := ErrRender.With(slog.String("a", "1"))
	derived := base.With(slog.String("b", "2"))

	assert.Len(t, base.attrs, 1)
	assert.Len(t, derived.attrs, 2)

	v := derived.Wrap(errors.New("cause")).LogValue()

	attrs := v.Group()
	keys := make([]string, len(attrs))

	for i, a := range attrs {
		keys[i] = a.Key
	}

	assert.Equal(t, []string{"error", "cause", "a", "b"}, keys)
}
