package api

import (
	"bytes"
	"encoding/json"

	"github.com/coolteam/cardshop/internal/errors"
)

// Response is an Envelope whose data payload has been decoded into T.
type Response[T any] struct {
	Success bool
	Data    T
	Message string
	Token   string
	URL     string
	Count   int
	Status  int
	Err     error
}

// Decode converts an Envelope into a typed Response. A successful envelope
// whose data cannot be decoded into T becomes a "malformed response"
// failure. A missing or null payload leaves Data at its zero value.
func Decode[T any](env *Envelope) Response[T] {
	resp := Response[T]{
		Success: env.Success,
		Message: env.Message,
		Token:   env.Token,
		URL:     env.URL,
		Count:   env.Count.Int(),
		Status:  env.Status,
		Err:     env.Err,
	}
	if !env.Success {
		return resp
	}

	raw := bytes.TrimSpace(env.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return resp
	}

	if err := json.Unmarshal(raw, &resp.Data); err != nil {
		var zero T
		resp.Data = zero
		resp.Success = false
		resp.Message = MsgMalformed
		resp.Err = errors.NewAPIError("", MsgMalformed, errors.Join(errors.ErrMalformedResponse, err)).
			WithStatus(env.Status).WithRequestID(env.RequestID)
	}
	return resp
}

// Error returns nil on success and otherwise the classified failure. When
// the server rejected the call without a message, fallback is used as the
// displayed text.
func (r Response[T]) Error(fallback string) error {
	if r.Success {
		return nil
	}
	msg := r.Message
	if msg == "" {
		msg = fallback
	}

	var apiErr *errors.APIError
	if errors.As(r.Err, &apiErr) {
		out := errors.NewAPIError(apiErr.Action, msg, apiErr.Unwrap()).
			WithStatus(apiErr.Status).WithRequestID(apiErr.RequestID).
			WithSeverity(apiErr.Severity()).WithRetryable(apiErr.IsRetryable())
		return out
	}
	return errors.NewAPIError("", msg, errors.ErrRejected)
}
