package http

import (
	"net/http"

	applog "finsmart/internal/log"
)

// The evaluation endpoints all accept ?now=<RFC 3339> so a view can be
// reproduced at a fixed instant.

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request, userID string) {
	now, ok := s.nowOrFail(w, r)
	if !ok {
		return
	}
	statuses, err := s.dashboard.BudgetStatuses(r.Context(), userID, now)
	if err != nil {
		s.writeError(w, r, err, "budget", applog.OpEvaluate)
		return
	}
	NewJSONResponse().Body(nonNil(statuses)).Write(w)
}

func (s *Server) handleBillStatus(w http.ResponseWriter, r *http.Request, userID string) {
	now, ok := s.nowOrFail(w, r)
	if !ok {
		return
	}
	statuses, err := s.dashboard.BillStatuses(r.Context(), userID, now)
	if err != nil {
		s.writeError(w, r, err, "bill", applog.OpEvaluate)
		return
	}
	NewJSONResponse().Body(nonNil(statuses)).Write(w)
}

func (s *Server) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request, userID string) {
	now, ok := s.nowOrFail(w, r)
	if !ok {
		return
	}
	statuses, err := s.dashboard.SubscriptionStatuses(r.Context(), userID, now)
	if err != nil {
		s.writeError(w, r, err, "subscription", applog.OpEvaluate)
		return
	}
	NewJSONResponse().Body(nonNil(statuses)).Write(w)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request, userID string) {
	now, ok := s.nowOrFail(w, r)
	if !ok {
		return
	}
	progress, err := s.dashboard.GoalProgress(r.Context(), userID, now)
	if err != nil {
		s.writeError(w, r, err, "goal", applog.OpEvaluate)
		return
	}
	NewJSONResponse().Body(nonNil(progress)).Write(w)
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request, userID string) {
	now, ok := s.nowOrFail(w, r)
	if !ok {
		return
	}
	summary, err := s.dashboard.Summary(r.Context(), userID, now)
	if err != nil {
		s.writeError(w, r, err, "summary", applog.OpEvaluate)
		return
	}
	summary.ByCategory = nonNil(summary.ByCategory)
	NewJSONResponse().Body(summary).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, userID string) {
	now, ok := s.nowOrFail(w, r)
	if !ok {
		return
	}
	dash, err := s.dashboard.Overview(r.Context(), userID, now)
	if err != nil {
		s.writeError(w, r, err, "dashboard", applog.OpEvaluate)
		return
	}
	dash.Summary.ByCategory = nonNil(dash.Summary.ByCategory)
	dash.Budgets = nonNil(dash.Budgets)
	dash.Bills = nonNil(dash.Bills)
	dash.Subscriptions = nonNil(dash.Subscriptions)
	dash.Goals = nonNil(dash.Goals)
	NewJSONResponse().Body(dash).Write(w)
}
