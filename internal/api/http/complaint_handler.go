package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/service"
)

func (s *Server) handleFileComplaint(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, r, errors.Validation("invalid multipart form: %v", err))
		return
	}
	images, err := s.storedFormImages(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in := service.FileComplaintInput{
		TransactionID: r.FormValue("transaction_id"),
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		Severity:      domain.DamageSeverity(r.FormValue("severity")),
		ProofImages:   images,
	}
	complaint, err := s.complaintSvc.File(r.Context(), userIDFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, complaint)
}

func (s *Server) handleListComplaints(w http.ResponseWriter, r *http.Request) {
	filed, against, err := s.complaintSvc.ListMine(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filed":   filed,
		"against": against,
	})
}

func (s *Server) handleResolveComplaint(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Valid bool `json:"valid"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	complaint, err := s.complaintSvc.Resolve(r.Context(), mux.Vars(r)["id"], in.Valid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, complaint)
}
