package gate

import (
	"errors"
	"time"

	apperrors "github.com/jrsteele09/hospital-records/internal/errors"
	"github.com/jrsteele09/hospital-records/session"
	"github.com/jrsteele09/hospital-records/token"
)

// State is the validity of the stored session for one page load.
type State int

const (
	Unknown State = iota
	Absent
	Valid
	ExpiredRefreshable
	ExpiredTerminal
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Valid:
		return "valid"
	case ExpiredRefreshable:
		return "expired-refreshable"
	case ExpiredTerminal:
		return "expired-terminal"
	default:
		return "unknown"
	}
}

// Classify inspects the token store without touching the network or the store.
// An access token that cannot be decoded classifies as ExpiredTerminal and returns
// ErrMalformedToken; the caller must force a logout.
func Classify(tokens *session.TokenStore, now time.Time) (State, error) {
	access, err := tokens.AccessToken()
	if err != nil {
		return Unknown, err
	}
	refresh, err := tokens.RefreshToken()
	if err != nil {
		return Unknown, err
	}

	if access == "" {
		if refresh == "" {
			return Absent, nil
		}
		return ExpiredRefreshable, nil
	}

	expiry, err := token.CheckExpiry(access, now)
	if err != nil {
		return ExpiredTerminal, err
	}
	switch {
	case expiry.Valid:
		return Valid, nil
	case refresh != "":
		return ExpiredRefreshable, nil
	default:
		return ExpiredTerminal, nil
	}
}

func isMalformed(err error) bool {
	return errors.Is(err, apperrors.ErrMalformedToken)
}
