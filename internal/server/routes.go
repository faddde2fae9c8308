package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/rapport/internal/engine"
	"github.com/lazypower/rapport/internal/relationship"
)

func pairParams(r *http.Request) (string, string) {
	return chi.URLParam(r, "userID"), chi.URLParam(r, "characterID")
}

func (s *Server) handleEnsureRelationship(w http.ResponseWriter, r *http.Request) {
	userID, characterID := pairParams(r)

	snap, err := s.engine.GetOrCreate(r.Context(), userID, characterID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetRelationship(w http.ResponseWriter, r *http.Request) {
	userID, characterID := pairParams(r)

	snap, err := s.engine.Get(r.Context(), userID, characterID)
	if errors.Is(err, engine.ErrNotFound) {
		writeError(w, http.StatusNotFound, "relationship not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleApplyEvent(w http.ResponseWriter, r *http.Request) {
	userID, characterID := pairParams(r)

	var ev relationship.UpdateEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	snap, err := s.engine.Update(r.Context(), userID, characterID, ev)
	if err != nil {
		var verr *relationship.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	userID, characterID := pairParams(r)

	snap, err := s.engine.Get(r.Context(), userID, characterID)
	if errors.Is(err, engine.ErrNotFound) {
		writeError(w, http.StatusNotFound, "relationship not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.engine.Events(r.Context(), snap.ID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": entries})
}

func (s *Server) handleListInsights(w http.ResponseWriter, r *http.Request) {
	userID, characterID := pairParams(r)

	snap, err := s.engine.Get(r.Context(), userID, characterID)
	if errors.Is(err, engine.ErrNotFound) {
		writeError(w, http.StatusNotFound, "relationship not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	insights, err := s.engine.Insights(r.Context(), snap.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"insights": insights})
}

// handleContext renders the compact text block prompt builders inject
// ahead of generation: tier, familiarity, rupture state, and the
// strongest learned patterns.
func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	userID, characterID := pairParams(r)

	snap, err := s.engine.Get(r.Context(), userID, characterID)
	if errors.Is(err, engine.ErrNotFound) {
		writeError(w, http.StatusNotFound, "relationship not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	insights, err := s.engine.Insights(r.Context(), snap.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Relationship: %s (%s stage)\n", snap.Tier, snap.Familiarity)
	fmt.Fprintf(&b, "Score %.1f | warmth %.1f, trust %.1f, playfulness %.1f, stability %.1f\n",
		snap.Score, snap.Warmth, snap.Trust, snap.Playfulness, snap.Stability)
	if snap.IsRuptured {
		b.WriteString("The relationship is currently ruptured; tread carefully.\n")
	}
	for i, in := range insights {
		if i >= 5 || in.Confidence < 0.3 {
			break
		}
		fmt.Fprintf(&b, "- %s (confidence %.1f, seen %dx)\n", in.Summary, in.Confidence, in.TimesObserved)
	}

	writeJSON(w, http.StatusOK, map[string]string{"context": b.String()})
}

func (s *Server) handleRunDecay(w http.ResponseWriter, r *http.Request) {
	n, err := s.engine.DecayInactive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"decayed": n})
}
