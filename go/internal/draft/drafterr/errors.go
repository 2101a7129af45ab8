// Package drafterr holds the error taxonomy shared by the draft engine and its transports.
package drafterr

import "errors"

var (
	ErrInvalidTransition     = errors.New("operation not allowed in current draft status")
	ErrNotYourTurn           = errors.New("team is not on the clock")
	ErrPlayerUnavailable     = errors.New("player is not available")
	ErrRosterSlotFilled      = errors.New("team has no open roster slot for player")
	ErrUnauthorized          = errors.New("only the commissioner can perform this action")
	ErrStaleOperation        = errors.New("operation refers to a superseded pick")
	ErrDependencyUnavailable = errors.New("draft dependency unavailable")
	ErrDraftNotFound         = errors.New("draft not found")
	ErrDraftHalted           = errors.New("draft halted after failed resync")
	ErrUnsupportedDraftType  = errors.New("draft type not supported")
	ErrNoPlayersAvailable    = errors.New("no players available")
	ErrTeamNotInDraft        = errors.New("team is not part of this draft")
)

// IsRejection reports whether err is a caller-facing rejection that leaves
// the draft unchanged.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNotYourTurn) ||
		errors.Is(err, ErrPlayerUnavailable) ||
		errors.Is(err, ErrRosterSlotFilled) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrTeamNotInDraft) ||
		errors.Is(err, ErrUnsupportedDraftType)
}

var codes = []struct {
	code string
	err  error
}{
	{"invalid_transition", ErrInvalidTransition},
	{"not_your_turn", ErrNotYourTurn},
	{"player_unavailable", ErrPlayerUnavailable},
	{"roster_slot_filled", ErrRosterSlotFilled},
	{"team_not_in_draft", ErrTeamNotInDraft},
	{"unsupported_draft_type", ErrUnsupportedDraftType},
	{"no_players_available", ErrNoPlayersAvailable},
	{"unauthorized", ErrUnauthorized},
	{"draft_not_found", ErrDraftNotFound},
	{"draft_halted", ErrDraftHalted},
	{"stale_operation", ErrStaleOperation},
	{"dependency_unavailable", ErrDependencyUnavailable},
}

// Code returns the stable wire name of the sentinel err wraps, or "" when it
// wraps none.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// FromCode returns the sentinel named by code, or nil.
func FromCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}
