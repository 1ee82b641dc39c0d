package hub

import "battleship/internal/session"

type SessionInfo struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

type Stats struct {
	Queued            int           `json:"queued"`
	ActiveSessions    int           `json:"activeSessions"`
	CompletedSessions int           `json:"completedSessions"`
	MaxSessions       int           `json:"maxSessions"`
	ReturnToLobby     bool          `json:"returnToLobby"`
	Sessions          []SessionInfo `json:"sessions"`
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := Stats{
		Queued:            len(h.queue),
		ActiveSessions:    len(h.sessions),
		CompletedSessions: h.completed,
		MaxSessions:       h.opts.MaxSessions,
		ReturnToLobby:     h.opts.ReturnToLobby,
		Sessions:          make([]SessionInfo, 0, len(h.sessions)),
	}
	for id, r := range h.sessions {
		info := SessionInfo{ID: id.String(), State: "running"}
		if s, ok := r.(interface{ State() session.State }); ok {
			info.State = s.State().String()
		}
		stats.Sessions = append(stats.Sessions, info)
	}
	return stats
}
