package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"github.com/mmynk/wasteline/internal/auth"
	"github.com/mmynk/wasteline/internal/repository"
)

// toConnectError maps domain errors onto Connect codes.
// Anything unrecognised is Internal.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	code := connect.CodeInternal
	switch {
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, auth.ErrUnknownPhone):
		code = connect.CodeNotFound
	case errors.Is(err, repository.ErrConflict):
		code = connect.CodeAlreadyExists
	case errors.Is(err, repository.ErrVersionConflict):
		code = connect.CodeAborted
	case errors.Is(err, repository.ErrInvalid), errors.Is(err, auth.ErrUnsupportedRole):
		code = connect.CodeInvalidArgument
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnknownChallenge),
		errors.Is(err, auth.ErrInvalidCode),
		errors.Is(err, auth.ErrCodeExpired),
		errors.Is(err, auth.ErrTooManyAttempts):
		code = connect.CodeUnauthenticated
	case errors.Is(err, auth.ErrDeliveryFailed):
		code = connect.CodeUnavailable
	}
	return connect.NewError(code, err)
}

func invalidArgument(err error) error {
	return connect.NewError(connect.CodeInvalidArgument, err)
}
