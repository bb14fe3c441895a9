package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadforge-cli/internal/campaign"
	"github.com/sells-group/leadforge-cli/internal/model"
	"github.com/sells-group/leadforge-cli/internal/resilience"
)

// maxBody caps request bodies.
const maxBody = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

// badRequest marks errors caused by an unreadable request.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

var errUnavailable = eris.New("this feature is not configured on the server")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: write response", zap.Error(err))
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &badRequest{msg: "invalid request body: " + err.Error()}
	}
	return nil
}

// statusFor maps domain errors to HTTP statuses and the message shown to
// the caller. Unclassified errors are logged and reported generically.
func statusFor(err error) (int, string) {
	var (
		br   *badRequest
		nf   *model.NotFoundError
		na   *model.NotAuthenticatedError
		it   *model.InvalidTransitionError
		il   *model.InvalidLeadError
		ii   *model.InvalidInputError
		mal  *model.MalformedResponseError
	)
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest, br.Error()
	case errors.As(err, &na):
		return http.StatusUnauthorized, "missing " + UserHeader + " header"
	case errors.As(err, &nf):
		return http.StatusNotFound, nf.Error()
	case errors.As(err, &it):
		return http.StatusUnprocessableEntity, it.Error()
	case errors.As(err, &il):
		return http.StatusUnprocessableEntity, il.Error()
	case errors.As(err, &ii):
		return http.StatusUnprocessableEntity, ii.Error()
	case errors.As(err, &mal):
		return http.StatusBadGateway, mal.Error()
	case errors.Is(err, campaign.ErrCampaignCompleted):
		return http.StatusConflict, campaign.ErrCampaignCompleted.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	case errors.Is(err, resilience.ErrBreakerOpen), errors.Is(err, errUnavailable):
		return http.StatusServiceUnavailable, eris.Cause(err).Error()
	case resilience.IsTransient(err):
		return http.StatusBadGateway, "upstream service unavailable, try again"
	}
	return http.StatusInternalServerError, "internal error"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	logFailure(r, status, err)
	writeJSON(w, status, errorBody{Error: msg})
}

func logFailure(r *http.Request, status int, err error) {
	if status < http.StatusInternalServerError {
		return
	}
	zap.L().Error("api: request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
}
