package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadforge-cli/internal/model"
)

type httpErr struct{ code int }

func (e httpErr) Error() string   { return "http error" }
func (e httpErr) StatusCode() int { return e.code }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"wrapped transient", eris.Wrap(NewTransientError(errors.New("boom"), 503), "pipeline: complete"), true},
		{"status 429", httpErr{429}, true},
		{"status 529", httpErr{529}, true},
		{"status 400", httpErr{400}, false},
		{"connection reset text", errors.New("read tcp: connection reset by peer"), true},
		{"overloaded text", errors.New("Anthropic is Overloaded"), true},
		{"plain", errors.New("bad request"), false},
		{"canceled", context.Canceled, false},
		{"deadline", eris.Wrap(context.DeadlineExceeded, "x"), false},
		{"malformed", &model.MalformedResponseError{Reason: "invalid JSON"}, false},
		{"malformed over transient", &model.MalformedResponseError{Reason: "x", Err: NewTransientError(errors.New("y"), 503)}, false},
		{"invalid lead", &model.InvalidLeadError{Index: 1, Reason: "x"}, false},
		{"not authenticated", &model.NotAuthenticatedError{Op: "list"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, "transient", Classify(httpErr{502}))
	assert.Equal(t, "permanent", Classify(errors.New("nope")))
}
