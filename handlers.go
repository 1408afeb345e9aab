/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// signupRequest is the body for roster additions and session signups alike.
type signupRequest struct {
	Name     string `json:"name"`
	Position string `json:"position"`
}

// teamsRequest selects between a full split (empty body or {}), cycling one
// participant through the override loop ({id}), and pinning a participant to
// an explicit team ({id, team}).
type teamsRequest struct {
	ID   int64  `json:"id,omitempty"`
	Team string `json:"team,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrDuplicateSignup),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrInsufficientPlayers):
		return http.StatusConflict
	case errors.Is(err, ErrUnknownParticipant):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	return w.Write(append(data, '\n'))
}

func writeError(cfg *Config, w http.ResponseWriter, status int, message string) {
	_, _ = writeJSON(cfg, w, status, errorResponse{Error: message})
}

func writeNoContent(cfg *Config, w http.ResponseWriter) {
	securityHeaders(cfg, w)
	w.WriteHeader(http.StatusNoContent)
}

func parseID(p httprouter.Params) (int64, bool) {
	id, err := strconv.ParseInt(p.ByName("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}

	return id, true
}

func serveRosterList(cfg *Config, store *RosterStore, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		entries, err := store.list(r.Context())
		if err != nil {
			errs <- err
			writeError(cfg, w, http.StatusInternalServerError, "roster unavailable")

			return
		}

		written, err := writeJSON(cfg, w, http.StatusOK, entries)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Roster (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveRosterAdd(cfg *Config, store *RosterStore, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(cfg, w, http.StatusBadRequest, "invalid request body")

			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			writeError(cfg, w, http.StatusBadRequest, "name is required")

			return
		}

		position, ok := parsePosition(req.Position)
		if !ok {
			writeError(cfg, w, http.StatusBadRequest, "position must be forward, defense, or goalie")

			return
		}

		entry, err := store.add(r.Context(), name, position)
		if err != nil {
			errs <- err
			writeError(cfg, w, http.StatusInternalServerError, "roster unavailable")

			return
		}

		logf(cfg, "ROSTER: %q added as %s (id %d)", entry.Name, entry.Position, entry.ID)

		if _, err := writeJSON(cfg, w, http.StatusCreated, entry); err != nil {
			errs <- err
		}
	}
}

func serveRosterRemove(cfg *Config, store *RosterStore, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		id, ok := parseID(p)
		if !ok {
			writeError(cfg, w, http.StatusBadRequest, "invalid id")

			return
		}

		removed, err := store.remove(r.Context(), id)
		if err != nil {
			errs <- err
			writeError(cfg, w, http.StatusInternalServerError, "roster unavailable")

			return
		}

		if !removed {
			writeError(cfg, w, http.StatusNotFound, "no roster entry with that id")

			return
		}

		logf(cfg, "ROSTER: Entry %d removed", id)

		writeNoContent(cfg, w)
	}
}

func serveSession(cfg *Config, session *Session, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		written, err := writeJSON(cfg, w, http.StatusOK, session.snapshot())
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Session (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveSignup(cfg *Config, session *Session, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(cfg, w, http.StatusBadRequest, "invalid request body")

			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			writeError(cfg, w, http.StatusBadRequest, "name is required")

			return
		}

		position, ok := parsePosition(req.Position)
		if !ok {
			writeError(cfg, w, http.StatusBadRequest, "position must be forward, defense, or goalie")

			return
		}

		participant, err := session.signup(name, position)
		if err != nil {
			writeError(cfg, w, statusForError(err), err.Error())

			return
		}

		if _, err := writeJSON(cfg, w, http.StatusCreated, participant); err != nil {
			errs <- err
		}
	}
}

func serveSignupRemove(cfg *Config, session *Session) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		id, ok := parseID(p)
		if !ok {
			writeError(cfg, w, http.StatusBadRequest, "invalid id")

			return
		}

		// Removing an id that is not signed up succeeds without an event.
		session.remove(id)

		writeNoContent(cfg, w)
	}
}

func serveTeams(cfg *Config, session *Session, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req teamsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(cfg, w, http.StatusBadRequest, "invalid request body")

			return
		}

		switch {
		case req.ID == 0 && req.Team == "":
			if err := session.split(); err != nil {
				writeError(cfg, w, statusForError(err), err.Error())

				return
			}
		case req.ID == 0:
			writeError(cfg, w, http.StatusBadRequest, "id is required")

			return
		case req.Team == "":
			if _, err := session.override(req.ID); err != nil {
				writeError(cfg, w, statusForError(err), err.Error())

				return
			}
		default:
			team, ok := parseTeam(req.Team)
			if !ok {
				writeError(cfg, w, http.StatusBadRequest, "team must be red, blue, or unassigned")

				return
			}

			if err := session.setTeam(req.ID, team); err != nil {
				writeError(cfg, w, statusForError(err), err.Error())

				return
			}
		}

		// The optional pause lands after the mutation and its broadcast, so
		// it holds back only this response.
		if cfg.splitDelay > 0 {
			time.Sleep(cfg.splitDelay)
		}

		if _, err := writeJSON(cfg, w, http.StatusOK, session.snapshot()); err != nil {
			errs <- err
		}
	}
}

func serveReset(cfg *Config, session *Session) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		session.reset()

		writeNoContent(cfg, w)
	}
}

// QR handler: generates a PNG QR code for the signup page URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../qr; strip the trailing "/qr" to get the signup URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")
	if path == "" {
		path = "/"
	}

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
