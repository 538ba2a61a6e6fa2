package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	tokens, pending, err := s.ledgerSvc.GetBalance(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tokens":            tokens,
		"pending_penalties": pending,
	})
}

func (s *Server) handleLedgerHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt32(r.URL.Query().Get("limit"), 50)
	entries, err := s.ledgerSvc.ListEntries(r.Context(), userIDFrom(r.Context()), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleListPenalties(w http.ResponseWriter, r *http.Request) {
	penalties, err := s.ledgerSvc.ListPendingPenalties(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"penalties": penalties})
}

func (s *Server) handlePayPenalty(w http.ResponseWriter, r *http.Request) {
	penalty, err := s.ledgerSvc.PayPenalty(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, penalty)
}
