package service

import "errors"

var (
	ErrForbidden          = errors.New("not allowed to change this tournament")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrInvalidInput       = errors.New("invalid input")
)
