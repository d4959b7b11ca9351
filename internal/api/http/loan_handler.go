package http

import (
	"encoding/json"
	"net/http"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/service"
)

type LoanHandler struct {
	loanSvc service.LoanService
}

func NewLoanHandler(loanSvc service.LoanService) *LoanHandler {
	return &LoanHandler{loanSvc: loanSvc}
}

type borrowRequest struct {
	BookID int64 `json:"book_id"`
}

func (h *LoanHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req borrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.BookID <= 0 {
		respondStatus(w, http.StatusBadRequest, "book_id is required")
		return
	}

	loan, err := h.loanSvc.RequestBorrow(r.Context(), actorID(r), req.BookID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, loan)
}

func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondStatus(w, http.StatusBadRequest, "invalid loan id")
		return
	}

	loan, err := h.loanSvc.GetLoan(r.Context(), actorID(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, loan)
}

func (h *LoanHandler) transition(w http.ResponseWriter, r *http.Request,
	action func(int64, int64) (*domain.Loan, error)) {
	id, ok := pathID(r, "id")
	if !ok {
		respondStatus(w, http.StatusBadRequest, "invalid loan id")
		return
	}

	loan, err := action(actorID(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, loan)
}

func (h *LoanHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor, id int64) (*domain.Loan, error) {
		return h.loanSvc.Approve(r.Context(), actor, id)
	})
}

func (h *LoanHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor, id int64) (*domain.Loan, error) {
		return h.loanSvc.Reject(r.Context(), actor, id)
	})
}

func (h *LoanHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor, id int64) (*domain.Loan, error) {
		return h.loanSvc.Cancel(r.Context(), actor, id)
	})
}

func (h *LoanHandler) Handover(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor, id int64) (*domain.Loan, error) {
		return h.loanSvc.Handover(r.Context(), actor, id)
	})
}

func (h *LoanHandler) Return(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor, id int64) (*domain.Loan, error) {
		return h.loanSvc.Return(r.Context(), actor, id)
	})
}

func (h *LoanHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	status := domain.LoanStatus(r.URL.Query().Get("status"))
	page := queryInt(r, "page", "1")
	pageSize := queryInt(r, "page_size", "20")

	loans, total, err := h.loanSvc.ListMyLoans(r.Context(), actorID(r), status, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, loans, total, page, pageSize)
}

func (h *LoanHandler) ListLendings(w http.ResponseWriter, r *http.Request) {
	status := domain.LoanStatus(r.URL.Query().Get("status"))
	page := queryInt(r, "page", "1")
	pageSize := queryInt(r, "page_size", "20")

	loans, total, err := h.loanSvc.ListLendings(r.Context(), actorID(r), status, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, loans, total, page, pageSize)
}
