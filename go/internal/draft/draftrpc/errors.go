package draftrpc

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/drafterr"
)

// errorHeader carries the engine error code so clients can restore the
// sentinel.
const errorHeader = "Draft-Error"

var errorCodes = map[error]connect.Code{
	drafterr.ErrInvalidTransition:     connect.CodeFailedPrecondition,
	drafterr.ErrNotYourTurn:           connect.CodeFailedPrecondition,
	drafterr.ErrPlayerUnavailable:     connect.CodeFailedPrecondition,
	drafterr.ErrRosterSlotFilled:      connect.CodeFailedPrecondition,
	drafterr.ErrTeamNotInDraft:        connect.CodeFailedPrecondition,
	drafterr.ErrUnsupportedDraftType:  connect.CodeFailedPrecondition,
	drafterr.ErrNoPlayersAvailable:    connect.CodeFailedPrecondition,
	drafterr.ErrUnauthorized:          connect.CodePermissionDenied,
	drafterr.ErrDraftNotFound:         connect.CodeNotFound,
	drafterr.ErrDraftHalted:           connect.CodeInternal,
	drafterr.ErrStaleOperation:        connect.CodeInternal,
	drafterr.ErrDependencyUnavailable: connect.CodeInternal,
}

// toConnectError maps an engine error to a connect error with the matching code.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	if key := drafterr.Code(err); key != "" {
		cerr := connect.NewError(errorCodes[drafterr.FromCode(key)], err)
		cerr.Meta().Set(errorHeader, key)
		return cerr
	}
	switch {
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// fromConnectError restores the engine sentinel carried by a connect error.
// The result matches both the sentinel and the connect code.
func fromConnectError(err error) error {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return err
	}
	if sentinel := drafterr.FromCode(cerr.Meta().Get(errorHeader)); sentinel != nil {
		return fmt.Errorf("%w: %w", sentinel, cerr)
	}
	return err
}
