package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lazypower/neurograph/internal/graph"
	"github.com/lazypower/neurograph/internal/layout"
	"github.com/lazypower/neurograph/internal/render"
	"github.com/lazypower/neurograph/internal/store"
)

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.scene.Snapshot())
}

func (s *Server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	t := 0.0
	if v := r.URL.Query().Get("t"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "t must be a number of seconds")
			return
		}
		t = parsed
	}

	opts := render.DefaultOptions()
	if r.URL.Query().Get("labels") == "false" {
		opts.Labels = false
	}

	snap := s.scene.Snapshot()
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := render.Frame(w, snap.Graph(), snap.Width, snap.Height, snap.Mode, t, opts); err != nil {
		s.logger.Warn("render svg", zap.Error(err))
	}
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode" validate:"required"`
	}
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := layout.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.scene.SetMode(mode)
	writeJSON(w, http.StatusOK, mode)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID string `json:"agent_id" validate:"max=64"`
		Demo    bool   `json:"demo"`
	}
	// An empty body rebuilds every agent's records.
	if err := decodeValid(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Demo {
		s.scene.LoadDemo()
	} else {
		if req.AgentID != "" {
			a, err := s.db.GetAgent(req.AgentID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if a == nil {
				writeError(w, http.StatusNotFound, "agent not found")
				return
			}
		}
		recs, err := s.db.LoadRecords(req.AgentID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.scene.Load(recs)
	}

	snap := s.scene.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"source": snap.Source,
		"nodes":  len(snap.Nodes),
		"edges":  len(snap.Edges),
	})
}

type agentJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.db.ListAgents()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]agentJSON, len(agents))
	for i, a := range agents {
		out[i] = agentJSON{a.ID, a.Name, a.CreatedAt}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(out),
		"agents": out,
	})
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name" validate:"required,max=200"`
	}
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := s.db.CreateAgent(req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, agentJSON{a.ID, a.Name, a.CreatedAt})
}

type recordJSON struct {
	ID        string   `json:"id"`
	AgentID   string   `json:"agent_id,omitempty"`
	Text      string   `json:"text"`
	Value     *float64 `json:"value,omitempty"`
	CreatedAt int64    `json:"created_at"`
}

// tierParam resolves the {tier} path segment, answering 404 when it names no
// tier.
func tierParam(w http.ResponseWriter, r *http.Request) (graph.NodeType, bool) {
	tier, err := store.ParseTier(chi.URLParam(r, "tier"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return tier, true
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	tier, ok := tierParam(w, r)
	if !ok {
		return
	}
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	recs, err := s.db.ListRecords(tier, r.URL.Query().Get("agent_id"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]recordJSON, len(recs))
	for i, rec := range recs {
		out[i] = recordJSON{rec.ID, rec.AgentID, rec.Text, rec.Value, rec.CreatedAt}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tier":    tier,
		"count":   len(out),
		"records": out,
	})
}

func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	tier, ok := tierParam(w, r)
	if !ok {
		return
	}
	var req struct {
		AgentID string   `json:"agent_id" validate:"max=64"`
		Text    string   `json:"text" validate:"max=4000"`
		Value   *float64 `json:"value" validate:"omitempty,gte=0,lte=1"`
	}
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.AgentID != "" {
		a, err := s.db.GetAgent(req.AgentID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if a == nil {
			writeError(w, http.StatusNotFound, "agent not found")
			return
		}
	}

	rec := &store.Record{Tier: tier, AgentID: req.AgentID, Text: req.Text, Value: req.Value}
	if err := s.db.AddRecord(rec); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, recordJSON{rec.ID, rec.AgentID, rec.Text, rec.Value, rec.CreatedAt})
}
