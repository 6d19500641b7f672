package http

import (
	"net/http"

	"finsmart/internal/core"
	applog "finsmart/internal/log"
)

// Budgets

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request, userID string) {
	budgets, err := s.store.ListBudgets(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err, "budget", applog.OpList)
		return
	}
	NewJSONResponse().Body(nonNil(budgets)).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request, userID string) {
	var in budgetInput
	if !decodeOrFail(w, r, &in) {
		return
	}
	b := in.toBudget(userID)
	if err := b.Validate(); err != nil {
		s.writeError(w, r, err, "budget", applog.OpCreate)
		return
	}
	created, err := s.store.CreateBudget(r.Context(), b)
	if err != nil {
		s.writeError(w, r, err, "budget", applog.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request, userID string) {
	existing, ok := loadOwned(s, w, r, userID, "budget", s.store.GetBudget, func(b core.Budget) string { return b.UserID })
	if !ok {
		return
	}
	var in budgetInput
	if !decodeOrFail(w, r, &in) {
		return
	}
	b := in.toBudget(userID)
	b.ID = existing.ID
	if err := b.Validate(); err != nil {
		s.writeError(w, r, err, "budget", applog.OpUpdate)
		return
	}
	if err := s.store.UpdateBudget(r.Context(), b); err != nil {
		s.writeError(w, r, err, "budget", applog.OpUpdate)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request, userID string) {
	existing, ok := loadOwned(s, w, r, userID, "budget", s.store.GetBudget, func(b core.Budget) string { return b.UserID })
	if !ok {
		return
	}
	if err := s.store.DeleteBudget(r.Context(), existing.ID); err != nil {
		s.writeError(w, r, err, "budget", applog.OpDelete)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// Bills

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request, userID string) {
	bills, err := s.store.ListBills(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err, "bill", applog.OpList)
		return
	}
	NewJSONResponse().Body(nonNil(bills)).Write(w)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request, userID string) {
	var in billInput
	if !decodeOrFail(w, r, &in) {
		return
	}
	b := in.toBill(userID)
	if err := b.Validate(); err != nil {
		s.writeError(w, r, err, "bill", applog.OpCreate)
		return
	}
	created, err := s.store.CreateBill(r.Context(), b)
	if err != nil {
		s.writeError(w, r, err, "bill", applog.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request, userID string) {
	existing, ok := loadOwned(s, w, r, userID, "bill", s.store.GetBill, func(b core.Bill) string { return b.UserID })
	if !ok {
		return
	}
	var in billInput
	if !decodeOrFail(w, r, &in) {
		return
	}
	b := in.toBill(userID)
	b.ID = existing.ID
	if err := b.Validate(); err != nil {
		s.writeError(w, r, err, "bill", applog.OpUpdate)
		return
	}
	if err := s.store.UpdateBill(r.Context(), b); err != nil {
		s.writeError(w, r, err, "bill", applog.OpUpdate)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request, userID string) {
	existing, ok := loadOwned(s, w, r, userID, "bill", s.store.GetBill, func(b core.Bill) string { return b.UserID })
	if !ok {
		return
	}
	if err := s.store.DeleteBill(r.Context(), existing.ID); err != nil {
		s.writeError(w, r, err, "bill", applog.OpDelete)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// Subscriptions feed the monthly cost on the dashboard summary, so every
// write drops the user's cached summary.

func subscriptionOwner(sub core.Subscription) string { return sub.UserID }

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request, userID string) {
	subs, err := s.store.ListSubscriptions(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err, "subscription", applog.OpList)
		return
	}
	NewJSONResponse().Body(nonNil(subs)).Write(w)
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request, userID string) {
	var in subscriptionInput
	if !decodeOrFail(w, r, &in) {
		return
	}
	sub := in.toSubscription(userID, s.clock().UTC())
	if err := sub.Validate(); err != nil {
		s.writeError(w, r, err, "subscription", applog.OpCreate)
		return
	}
	created, err := s.store.CreateSubscription(r.Context(), sub)
	if err != nil {
		s.writeError(w, r, err, "subscription", applog.OpCreate)
		return
	}
	s.dashboard.Invalidate(userID)
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request, userID string) {
	existing, ok := loadOwned(s, w, r, userID, "subscription", s.store.GetSubscription, subscriptionOwner)
	if !ok {
		return
	}
	var in subscriptionInput
	if !decodeOrFail(w, r, &in) {
		return
	}
	sub := in.toSubscription(userID, existing.StartDate)
	sub.ID = existing.ID
	if err := sub.Validate(); err != nil {
		s.writeError(w, r, err, "subscription", applog.OpUpdate)
		return
	}
	if err := s.store.UpdateSubscription(r.Context(), sub); err != nil {
		s.writeError(w, r, err, "subscription", applog.OpUpdate)
		return
	}
	s.dashboard.Invalidate(userID)
	NewJSONResponse().Body(sub).Write(w)
}

// handleCancelSubscription keeps the row and marks it cancelled, so billing
// history stays visible.
func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request, userID string) {
	existing, ok := loadOwned(s, w, r, userID, "subscription", s.store.GetSubscription, subscriptionOwner)
	if !ok {
		return
	}
	existing.Status = core.SubscriptionCancelled
	if err := s.store.UpdateSubscription(r.Context(), existing); err != nil {
		s.writeError(w, r, err, "subscription", applog.OpDelete)
		return
	}
	s.dashboard.Invalidate(userID)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// Goals

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request, userID string) {
	goals, err := s.store.ListGoals(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err, "goal", applog.OpList)
		return
	}
	NewJSONResponse().Body(nonNil(goals)).Write(w)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request, userID string) {
	var in goalInput
	if !decodeOrFail(w, r, &in) {
		return
	}
	g := in.toGoal(userID)
	if err := g.Validate(); err != nil {
		s.writeError(w, r, err, "goal", applog.OpCreate)
		return
	}
	created, err := s.store.CreateGoal(r.Context(), g)
	if err != nil {
		s.writeError(w, r, err, "goal", applog.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request, userID string) {
	existing, ok := loadOwned(s, w, r, userID, "goal", s.store.GetGoal, func(g core.Goal) string { return g.UserID })
	if !ok {
		return
	}
	var in goalInput
	if !decodeOrFail(w, r, &in) {
		return
	}
	g := in.toGoal(userID)
	g.ID = existing.ID
	if err := g.Validate(); err != nil {
		s.writeError(w, r, err, "goal", applog.OpUpdate)
		return
	}
	if err := s.store.UpdateGoal(r.Context(), g); err != nil {
		s.writeError(w, r, err, "goal", applog.OpUpdate)
		return
	}
	NewJSONResponse().Body(g).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request, userID string) {
	existing, ok := loadOwned(s, w, r, userID, "goal", s.store.GetGoal, func(g core.Goal) string { return g.UserID })
	if !ok {
		return
	}
	if err := s.store.DeleteGoal(r.Context(), existing.ID); err != nil {
		s.writeError(w, r, err, "goal", applog.OpDelete)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
