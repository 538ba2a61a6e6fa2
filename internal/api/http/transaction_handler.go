package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/errors"
)

const maxMultipartMemory = 16 << 20 // 16 MB held in memory, rest spills to disk

func (s *Server) handleRequestBorrow(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ItemID    string `json:"item_id"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Message   string `json:"message"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := parseDate(in.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseDate(in.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := s.txSvc.RequestBorrow(r.Context(), userIDFrom(r.Context()), in.ItemID, start, end, in.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt32(r.URL.Query().Get("limit"), 50)
	views, err := s.txSvc.ListTransactions(r.Context(), userIDFrom(r.Context()), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": views})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	view, err := s.txSvc.GetTransaction(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	view, err := s.txSvc.Approve(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	view, err := s.txSvc.Reject(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	images, err := s.storedImages(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.txSvc.ConfirmDelivery(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"], images)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleConfirmReturn(w http.ResponseWriter, r *http.Request) {
	images, err := s.storedImages(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.txSvc.ConfirmReturn(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"], images)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleReportDamage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, r, errors.Validation("invalid multipart form: %v", err))
		return
	}
	severity := domain.DamageSeverity(r.FormValue("severity"))
	description := r.FormValue("description")

	images, err := s.storedFormImages(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.txSvc.ReportDamage(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"], severity, description, images)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Rating  int32  `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	review, err := s.reviewSvc.Submit(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"], in.Rating, in.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// storedImages parses the multipart form and persists its "images" files.
func (s *Server) storedImages(r *http.Request) ([]string, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, errors.Validation("invalid multipart form: %v", err)
	}
	return s.storedFormImages(r)
}

func (s *Server) storedFormImages(r *http.Request) ([]string, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	return s.images.SaveAll(r.MultipartForm.File["images"])
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.Validation("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}
