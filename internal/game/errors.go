package game

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a game operation was rejected.
type ErrorKind string

const (
	KindNotFound              ErrorKind = "NOT_FOUND"
	KindInvalidToken          ErrorKind = "INVALID_TOKEN"
	KindNotYourTurn           ErrorKind = "NOT_YOUR_TURN"
	KindNoActionsRemaining    ErrorKind = "NO_ACTIONS_REMAINING"
	KindInsufficientMana      ErrorKind = "INSUFFICIENT_MANA"
	KindSpellNotKnown         ErrorKind = "SPELL_NOT_KNOWN"
	KindSpellCategoryMismatch ErrorKind = "SPELL_CATEGORY_MISMATCH"
	KindInvalidTarget         ErrorKind = "INVALID_TARGET"
	KindWrongPhase            ErrorKind = "WRONG_PHASE"
	KindNotEnoughPlayers      ErrorKind = "NOT_ENOUGH_PLAYERS"
	KindEliminated            ErrorKind = "ELIMINATED"
	KindItemNotHeld           ErrorKind = "ITEM_NOT_HELD"
)

// Error is a recoverable rejection of a game operation. The match is left
// unchanged whenever an Error is returned.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error with the same kind, so errors.Is(err, ErrNotYourTurn)
// works regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrInvalidToken          = &Error{Kind: KindInvalidToken}
	ErrNotYourTurn           = &Error{Kind: KindNotYourTurn}
	ErrNoActionsRemaining    = &Error{Kind: KindNoActionsRemaining}
	ErrInsufficientMana      = &Error{Kind: KindInsufficientMana}
	ErrSpellNotKnown         = &Error{Kind: KindSpellNotKnown}
	ErrSpellCategoryMismatch = &Error{Kind: KindSpellCategoryMismatch}
	ErrInvalidTarget         = &Error{Kind: KindInvalidTarget}
	ErrWrongPhase            = &Error{Kind: KindWrongPhase}
	ErrNotEnoughPlayers      = &Error{Kind: KindNotEnoughPlayers}
	ErrEliminated            = &Error{Kind: KindEliminated}
	ErrItemNotHeld           = &Error{Kind: KindItemNotHeld}
)

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a game error, or "" if err is not one.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func messageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
