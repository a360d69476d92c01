package http

import (
	"net/http"

	"gastos/internal/log"
	"gastos/internal/session"
)

// owner returns the session owner. The session middleware guarantees it on
// every /api/ route.
func owner(r *http.Request) (string, bool) {
	s, ok := session.FromContext(r.Context())
	return s.OwnerID, ok && s.OwnerID != ""
}

func unauthenticated(w http.ResponseWriter) {
	ErrorResponse(http.StatusUnauthorized, "unauthenticated").Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		unauthenticated(w)
		return
	}
	period, err := ParseRangeParams(r.URL.Query(), s.today())
	if err != nil {
		writeParamError(w, r, log.OpList, err)
		return
	}

	expenses, err := s.expenses.ListExpenses(r.Context(), ownerID, period)
	if err != nil {
		writeServiceError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(listDTO{
		Period:   toPeriod(period),
		Count:    len(expenses),
		Expenses: toExpenses(expenses),
	}).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		unauthenticated(w)
		return
	}
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	e, err := req.toExpense(ownerID, s.now())
	if err != nil {
		writeServiceError(w, r, log.OpCreate, err)
		return
	}

	created, err := s.expenses.CreateExpense(r.Context(), e)
	if err != nil {
		writeServiceError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+created.ID).
		Body(toExpense(created)).
		Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		unauthenticated(w)
		return
	}
	e, err := s.expenses.GetExpense(r.Context(), ownerID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(toExpense(e)).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		unauthenticated(w)
		return
	}
	var req patchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeServiceError(w, r, log.OpUpdate, err)
		return
	}

	updated, err := s.expenses.UpdateExpense(r.Context(), ownerID, r.PathValue("id"), patch)
	if err != nil {
		writeServiceError(w, r, log.OpUpdate, err)
		return
	}
	NewJSONResponse().Body(toExpense(updated)).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		unauthenticated(w)
		return
	}
	if err := s.expenses.DeleteExpense(r.Context(), ownerID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
