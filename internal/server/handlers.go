package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sstrack/sstrack/internal/utils"
	"github.com/sstrack/sstrack/pkg/command"
	"github.com/sstrack/sstrack/pkg/provider"
	"github.com/sstrack/sstrack/pkg/storage"
	"github.com/sstrack/sstrack/pkg/tracking"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Log.Debugf("Writing response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.DB.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// CommandRequest is a chat line submitted by a bot front end.
type CommandRequest struct {
	Context string `json:"context"`
	User    string `json:"user"`
	Text    string `json:"text"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Context == "" {
		writeError(w, http.StatusBadRequest, "context is required")
		return
	}

	utils.Log.WithField("context", req.Context).WithField("user", req.User).Debugf("Command %q", req.Text)
	err := s.Dispatcher.HandleText(r.Context(), command.Caller{ContextID: req.Context, UserID: req.User}, req.Text)

	var usage *command.UsageError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	case errors.As(err, &usage):
		writeError(w, http.StatusBadRequest, usage.Text)
	case errors.Is(err, provider.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, provider.ErrTransport):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, tracking.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type sessionView struct {
	Context         string    `json:"context"`
	Target          string    `json:"target"`
	IntervalSeconds int64     `json:"interval_seconds"`
	State           string    `json:"state"`
	SuccessCount    int64     `json:"success_count"`
	StartedAt       time.Time `json:"started_at"`
	LastTick        time.Time `json:"last_tick"`
	LastError       string    `json:"last_error,omitempty"`
}

func viewSession(i tracking.Info) sessionView {
	v := sessionView{
		Context:         i.ContextID,
		Target:          i.TargetID,
		IntervalSeconds: int64(i.Interval / time.Second),
		State:           i.State.String(),
		SuccessCount:    i.SuccessCount,
		StartedAt:       i.StartedAt,
		LastTick:        i.LastTick,
	}
	if i.LastErr != nil {
		v.LastError = i.LastErr.Error()
	}
	return v
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	infos := s.Tracker.Sessions()
	out := make([]sessionView, 0, len(infos))
	for _, i := range infos {
		out = append(out, viewSession(i))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	info, ok := s.Tracker.Session(r.PathValue("context"))
	if !ok {
		writeError(w, http.StatusNotFound, "no session for context")
		return
	}
	writeJSON(w, http.StatusOK, viewSession(info))
}

func (s *Server) handleStopSession(w http.ResponseWriter, r *http.Request) {
	stopped := s.Tracker.Stop(r.PathValue("context"))
	writeJSON(w, http.StatusOK, map[string]bool{"stopped": stopped})
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.DB.ListPlayers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if players == nil {
		players = []storage.PlayerRecord{}
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	p, err := s.DB.GetPlayer(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}
