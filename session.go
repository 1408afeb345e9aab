/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"math/rand"
	"sync"
	"time"
)

// sessionCapacity is the most skaters one sheet of ice will take.
const sessionCapacity = 22

type Position string

const (
	PositionForward Position = "forward"
	PositionDefense Position = "defense"
	PositionGoalie  Position = "goalie"
)

func parsePosition(s string) (Position, bool) {
	switch s {
	case "forward":
		return PositionForward, true
	case "defense":
		return PositionDefense, true
	case "goalie":
		return PositionGoalie, true
	default:
		return "", false
	}
}

type Team string

const (
	TeamRed        Team = "red"
	TeamBlue       Team = "blue"
	TeamUnassigned Team = "unassigned"
)

func parseTeam(s string) (Team, bool) {
	switch s {
	case "red":
		return TeamRed, true
	case "blue":
		return TeamBlue, true
	case "unassigned":
		return TeamUnassigned, true
	default:
		return "", false
	}
}

// nextTeam advances one step through the manual override cycle.
func nextTeam(t Team) Team {
	switch t {
	case TeamUnassigned:
		return TeamRed
	case TeamRed:
		return TeamBlue
	default:
		return TeamUnassigned
	}
}

// Participant is one signup for the current session. The name and position
// are copied from the roster (or typed in by a walk-on) at signup time and
// keep no link back to the roster entry.
type Participant struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
	Team     Team     `json:"team"`
}

// Session owns the signup sheet for the current week. Every mutation locks
// the same mutex across its check, its write, and its event emit, so
// mutations serialize, the duplicate-name check cannot race the insert, and
// viewers receive events in the order the mutations landed.
type Session struct {
	cfg *Config

	mu           sync.Mutex
	participants []Participant
	nextID       int64
	rng          *rand.Rand

	broadcaster *Broadcaster
}

// newSession creates an empty session. A zero seed picks a time-based one;
// tests pass a fixed seed to make splits reproducible.
func newSession(cfg *Config, broadcaster *Broadcaster, seed int64) *Session {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Session{
		cfg:         cfg,
		nextID:      1,
		rng:         rand.New(rand.NewSource(seed)),
		broadcaster: broadcaster,
	}
}

// snapshot returns a copy of the signup sheet in signup order.
func (s *Session) snapshot() []Participant {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Participant, len(s.participants))
	copy(out, s.participants)

	return out
}

// signup adds a participant, or rejects the request without touching the
// sheet. The new participant starts unassigned.
func (s *Session) signup(name string, position Position) (Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.participants {
		if p.Name == name {
			return Participant{}, ErrDuplicateSignup
		}
	}

	if len(s.participants) >= sessionCapacity {
		return Participant{}, ErrCapacityExceeded
	}

	p := Participant{
		ID:       s.nextID,
		Name:     name,
		Position: position,
		Team:     TeamUnassigned,
	}
	s.nextID++
	s.participants = append(s.participants, p)

	logf(s.cfg, "SESSION: %q signed up as %s (%d/%d)", p.Name, p.Position, len(s.participants), sessionCapacity)

	s.broadcaster.emit(Event{Type: EventSignupAdded, Participant: &p})

	return p, nil
}

// remove takes a participant off the sheet. Removing an id that is not
// present is a no-op: nothing changes and nothing is broadcast.
func (s *Session) remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.participants {
		if p.ID != id {
			continue
		}

		s.participants = append(s.participants[:i], s.participants[i+1:]...)

		logf(s.cfg, "SESSION: %q removed (%d/%d)", p.Name, len(s.participants), sessionCapacity)

		s.broadcaster.emit(Event{Type: EventSignupRemoved, ID: id})

		return true
	}

	return false
}

// split shuffles the signed-up players into red and blue. Any manual
// overrides from earlier in the week are discarded along with the previous
// assignment. The new sheet is built complete and swapped in whole, so a
// concurrent snapshot sees either the old assignment or the new one.
func (s *Session) split() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.participants) < 2 {
		return ErrInsufficientPlayers
	}

	assignment := splitTeams(s.participants, s.rng)

	next := make([]Participant, len(s.participants))
	for i, p := range s.participants {
		p.Team = assignment[p.ID]
		next[i] = p
	}
	s.participants = next

	logf(s.cfg, "SESSION: Split %d players into teams", len(s.participants))

	s.broadcaster.emit(Event{Type: EventTeamsChanged})

	return nil
}

// override advances one participant through the unassigned -> red -> blue
// cycle, leaving everyone else alone. It shares the teams_changed event with
// split: viewers refetch either way and cannot tell which one happened.
func (s *Session) override(id int64) (Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.participants {
		if s.participants[i].ID != id {
			continue
		}

		team := nextTeam(s.participants[i].Team)
		s.participants[i].Team = team

		logf(s.cfg, "SESSION: %q moved to %s", s.participants[i].Name, team)

		s.broadcaster.emit(Event{Type: EventTeamsChanged})

		return team, nil
	}

	return "", ErrUnknownParticipant
}

// setTeam pins one participant to an explicit team.
func (s *Session) setTeam(id int64, team Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.participants {
		if s.participants[i].ID != id {
			continue
		}

		s.participants[i].Team = team

		logf(s.cfg, "SESSION: %q moved to %s", s.participants[i].Name, team)

		s.broadcaster.emit(Event{Type: EventTeamsChanged})

		return nil
	}

	return ErrUnknownParticipant
}

// reset clears the sheet for the next week. Resetting an already-empty
// session still broadcasts, so every reset is visible to viewers.
func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants = nil

	logf(s.cfg, "SESSION: Reset")

	s.broadcaster.emit(Event{Type: EventSessionReset})
}
