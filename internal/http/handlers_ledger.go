package http

import (
	"net/http"
	"sort"

	"finsmart/internal/core"
	applog "finsmart/internal/log"
)

func transactionOwner(t core.Transaction) string { return t.UserID }

// handleListTransactions returns the user's transactions, newest first.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, userID string) {
	txs, err := s.transactions.List(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err, "transaction", applog.OpList)
		return
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })
	NewJSONResponse().Body(nonNil(txs)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	var in transactionInput
	if !decodeOrFail(w, r, &in) {
		return
	}
	tx := in.toTransaction(userID)
	if tx.Date.IsZero() {
		tx.Date = s.clock().UTC()
	}

	created, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		s.writeError(w, r, err, "transaction", applog.OpCreate)
		return
	}
	s.appMetrics.transactionsCreated.Add(1)

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		applog.FieldEntityID, created.ID,
		applog.FieldAmount, created.Amount.StringFixed(2),
		"is_expense", created.IsExpense)
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	existing, ok := loadOwned(s, w, r, userID, "transaction", s.transactions.Get, transactionOwner)
	if !ok {
		return
	}
	var in transactionInput
	if !decodeOrFail(w, r, &in) {
		return
	}
	tx := in.toTransaction(userID)
	tx.ID = existing.ID
	if tx.Date.IsZero() {
		tx.Date = existing.Date
	}
	if err := s.transactions.Update(r.Context(), tx); err != nil {
		s.writeError(w, r, err, "transaction", applog.OpUpdate)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	existing, ok := loadOwned(s, w, r, userID, "transaction", s.transactions.Get, transactionOwner)
	if !ok {
		return
	}
	if err := s.transactions.Delete(r.Context(), existing); err != nil {
		s.writeError(w, r, err, "transaction", applog.OpDelete)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// nonNil keeps empty collections encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
