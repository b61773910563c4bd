// Package sign applies the toggle-signature mutation against a displayed
// letter. The server response is the only thing allowed to mutate local
// state: there is no optimistic update, a failed call leaves the letter
// exactly as it was.
package sign

import (
	"context"
	"errors"
	"fmt"

	"github.com/openletters/carta/internal/api"
	"github.com/openletters/carta/internal/logger"
	"github.com/openletters/carta/internal/model"
)

// Toggler performs the signature mutation against the API
type Toggler interface {
	ToggleSignature(ctx context.Context, id string) (api.ToggleResult, error)
}

// Sessions is the slice of the session manager this controller needs
type Sessions interface {
	IsAuthenticated() bool
	Clear() error
}

// Controller composes the session check with the API mutation
type Controller struct {
	api      Toggler
	sessions Sessions
}

// New creates a signature toggle controller
func New(toggler Toggler, sessions Sessions) *Controller {
	return &Controller{api: toggler, sessions: sessions}
}

// Toggle signs or unsigns the letter for the current user and replaces
// IsSigned and SignatureCount with the server-confirmed values. No other
// field changes.
//
// Error conditions, each with its own corrective action:
//   - api.ErrUnauthenticated: no valid session; nothing was sent, the caller
//     should direct the user to log in.
//   - api.ErrSessionExpired: the server rejected the token mid-action; the
//     session is cleared here so the next attempt starts from login.
//   - *api.ValidationError: server-reported message, shown verbatim; the
//     session stays intact.
//   - anything else: generic failure, letter untouched.
func (c *Controller) Toggle(ctx context.Context, l *model.Letter) error {
	if !c.sessions.IsAuthenticated() {
		return api.ErrUnauthenticated
	}

	res, err := c.api.ToggleSignature(ctx, l.ID)
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			logger.Info("Session rejected by server, clearing stored token")
			_ = c.sessions.Clear()
			return err
		}
		var verr *api.ValidationError
		if errors.As(err, &verr) {
			return err
		}
		return fmt.Errorf("could not update signature: %w", err)
	}

	l.IsSigned = res.Signed
	l.SignatureCount = res.SignatureCount
	return nil
}
