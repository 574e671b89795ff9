package service

import "errors"

var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrParticipantNotFound = errors.New("participant not found")

	// Generation preconditions
	ErrNotEnoughParticipants = errors.New("fewer than 2 confirmed participants")
	ErrScheduleConflict      = errors.New("a schedule already exists for this tournament phase")
	ErrTournamentClosed      = errors.New("tournament no longer accepts schedule changes")

	// Match workflow
	ErrInvalidStatusTransition = errors.New("invalid match status transition")
	ErrValidation              = errors.New("validation failed")
	ErrNotAdvanceable          = errors.New("match winner cannot be advanced")

	ErrForbidden = errors.New("operation not allowed for the current user")
)
