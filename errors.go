/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"log"
	"time"
)

// Signup mutations fail atomically: when one of these is returned, the
// session was left untouched and no event was broadcast.
var (
	ErrDuplicateSignup     = errors.New("name is already signed up for this session")
	ErrCapacityExceeded    = errors.New("session is full")
	ErrInsufficientPlayers = errors.New("not enough players signed up to split teams")
	ErrUnknownParticipant  = errors.New("no participant with that id")
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}
