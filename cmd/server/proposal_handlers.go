package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hvacpro/proposals/internal/proposal"
)

type proposalRequest struct {
	Title string         `json:"title"`
	State proposal.State `json:"state"`
}

type proposalResponse struct {
	proposal.Proposal
	PaymentUnavailable bool   `json:"payment_unavailable"`
	PaymentError       string `json:"payment_error,omitempty"`
	Stale              bool   `json:"stale,omitempty"`
}

type draftResponse struct {
	ID        string `json:"id"`
	Pending   bool   `json:"pending"`
	LastError string `json:"last_error,omitempty"`
}

func (s *server) quote(r *http.Request, sel proposal.Selections) (proposal.Quote, error) {
	book, err := s.books.Load(r.Context())
	if err != nil {
		return proposal.Quote{}, err
	}
	return proposal.NewQuote(book, sel)
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var sel proposal.Selections
	if err := decodeJSON(w, r, &sel); err != nil {
		s.fail(w, r, err)
		return
	}
	q, err := s.quote(r, sel)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleProposalsList(w http.ResponseWriter, r *http.Request) {
	items, err := s.proposals.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	book, err := s.books.Load(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	proposal.RepriceList(book, items)
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleProposalCreate(w http.ResponseWriter, r *http.Request) {
	var req proposalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	q, err := s.quote(r, req.State.Selections)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.proposals.Create(r.Context(), req.Title, req.State, q.Totals)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newProposalResponse(p, q))
}

// handleProposalGet prices the proposal against the current price book. If its selections no
// longer resolve the stored totals are returned and marked stale.
func (s *server) handleProposalGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.proposals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	book, err := s.books.Load(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	p, q, err := proposal.Reprice(book, p)
	resp := newProposalResponse(p, q)
	if err != nil {
		s.log.Warn("proposal selections no longer resolve", zap.String("proposal_id", p.ID), zap.Error(err))
		resp.Stale = true
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleProposalUpdate(w http.ResponseWriter, r *http.Request) {
	p, err := s.proposals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req proposalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	q, err := s.quote(r, req.State.Selections)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	p.Title = strings.TrimSpace(req.Title)
	p.State = req.State
	p.Totals = q.Totals
	s.autosave.Cancel(p.ID)
	if err := s.proposals.Save(r.Context(), p); err != nil {
		s.fail(w, r, err)
		return
	}
	saved, err := s.proposals.Get(r.Context(), p.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProposalResponse(saved, q))
}

// handleProposalDraft queues an autosave and answers before the write happens.
func (s *server) handleProposalDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := proposal.ValidateID(id); err != nil {
		s.fail(w, r, err)
		return
	}
	var req proposalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	q, err := s.quote(r, req.State.Selections)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	draft := proposal.Proposal{
		ID:     id,
		Title:  strings.TrimSpace(req.Title),
		State:  req.State,
		Totals: q.Totals,
	}
	if err := s.autosave.Schedule(draft); err != nil {
		s.fail(w, r, err)
		return
	}

	resp := draftResponse{ID: id, Pending: true}
	if lastErr := s.autosave.LastError(id); lastErr != nil {
		resp.LastError = lastErr.Error()
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *server) handleProposalText(w http.ResponseWriter, r *http.Request) {
	p, err := s.proposals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	book, err := s.books.Load(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	p, _, _ = proposal.Reprice(book, p)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(proposal.Summary(p, p.Totals, book)))
}

func newProposalResponse(p proposal.Proposal, q proposal.Quote) proposalResponse {
	return proposalResponse{Proposal: p, PaymentUnavailable: q.PaymentUnavailable, PaymentError: q.PaymentError}
}
