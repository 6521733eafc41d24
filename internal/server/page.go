package server

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/sstrack/sstrack/internal/utils"
	"github.com/sstrack/sstrack/pkg/notify"
	"github.com/sstrack/sstrack/pkg/storage"
	"github.com/sstrack/sstrack/pkg/tracking"
)

// handleStatusPage renders a small HTML overview of sessions and stored players.
func (s *Server) handleStatusPage(w http.ResponseWriter, r *http.Request) {
	stats, err := s.DB.GetStats(r.Context())
	if err != nil {
		utils.Log.Errorf("status page: %v", err)
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}
	players, err := s.DB.ListPlayers(r.Context())
	if err != nil {
		utils.Log.Errorf("status page: %v", err)
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statusPage(s.Tracker.Sessions(), players, stats).Render(w); err != nil {
		utils.Log.Warnf("status page render: %v", err)
	}
}

func statusPage(sessions []tracking.Info, players []storage.PlayerRecord, stats storage.Stats) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(Lang("en"),
			Head(
				Meta(Charset("UTF-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(notify.SimpleTitle)),
				StyleEl(g.Raw(`
					body { font-family: ui-sans-serif, system-ui, sans-serif; background: #0f172a; color: #e2e8f0; margin: 2rem; }
					table { border-collapse: collapse; width: 100%; margin-bottom: 2rem; }
					th, td { text-align: left; padding: .4rem .8rem; border-bottom: 1px solid #1e293b; }
					th { color: #94a3b8; font-weight: 600; }
					.muted { color: #64748b; }
					.err { color: #f87171; }
				`)),
			),
			Body(
				H1(g.Text(notify.SimpleTitle)),
				statsSummary(stats),
				H2(g.Text("Sessions")),
				sessionsTable(sessions),
				H2(g.Text("Players")),
				playersTable(players),
			),
		),
	})
}

func statsSummary(stats storage.Stats) g.Node {
	last := "never"
	if !stats.LastUpdated.IsZero() {
		last = humanize.Time(stats.LastUpdated)
	}
	return P(Class("muted"),
		g.Textf("%s players stored, %s linked, last update %s",
			humanize.Comma(int64(stats.Players)), humanize.Comma(int64(stats.Linked)), last),
	)
}

func sessionsTable(sessions []tracking.Info) g.Node {
	if len(sessions) == 0 {
		return P(Class("muted"), g.Text("No active sessions."))
	}
	return Table(
		THead(Tr(
			Th(g.Text("Context")), Th(g.Text("Player")), Th(g.Text("Interval")),
			Th(g.Text("State")), Th(g.Text("Ticks")), Th(g.Text("Last tick")), Th(g.Text("Last error")),
		)),
		TBody(g.Map(sessions, func(i tracking.Info) g.Node {
			lastErr := ""
			if i.LastErr != nil {
				lastErr = i.LastErr.Error()
			}
			return Tr(
				Td(g.Text(i.ContextID)),
				Td(g.Text(i.TargetID)),
				Td(g.Text(i.Interval.String())),
				Td(g.Text(i.State.String())),
				Td(g.Text(humanize.Comma(i.SuccessCount))),
				Td(g.Text(sinceOrNever(i.LastTick))),
				Td(Class("err"), g.Text(lastErr)),
			)
		})),
	)
}

func playersTable(players []storage.PlayerRecord) g.Node {
	if len(players) == 0 {
		return P(Class("muted"), g.Text("No players stored yet."))
	}
	return Table(
		THead(Tr(
			Th(g.Text("Rank")), Th(g.Text("Name")), Th(g.Text("Country")),
			Th(g.Text("PP")), Th(g.Text("Discord")), Th(g.Text("Updated")),
		)),
		TBody(g.Map(players, func(p storage.PlayerRecord) g.Node {
			snap := p.Snapshot
			return Tr(
				Td(g.Text("#"+notify.AddCommas(snap.Rank, false))),
				Td(A(Href("https://scoresaber.com/u/"+snap.ID), g.Text(snap.Name))),
				Td(g.Text(snap.Country)),
				Td(g.Textf("%.2f", snap.PP)),
				Td(g.Text(p.Discord)),
				Td(g.Text(sinceOrNever(p.UpdatedAt))),
			)
		})),
	)
}

func sinceOrNever(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
