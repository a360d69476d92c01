package http

import (
	"errors"
	"net/http"

	"gastos/internal/core"
	"gastos/internal/log"
)

// writeParamError answers malformed query or path parameters with 400.
func writeParamError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, core.ErrInvalidRange) {
		writeServiceError(w, r, op, err)
		return
	}
	BadRequestError(err.Error()).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().
		Header("Cache-Control", "private, max-age=3600").
		Body(map[string]any{"categories": categoryCatalog()}).
		Write(w)
}

// handleSummary takes either an explicit from/to range or a view
// (day, week, month, year) around date.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		unauthenticated(w)
		return
	}
	q := r.URL.Query()

	var period core.Period
	if hasRangeParams(q) {
		p, err := ParseRangeParams(q, s.today())
		if err != nil {
			writeParamError(w, r, log.OpSummary, err)
			return
		}
		period = p
	} else {
		mode, err := core.ParseViewMode(q.Get("view"))
		if err != nil {
			writeParamError(w, r, log.OpSummary, err)
			return
		}
		date, err := ParseDateParam(q, "date", s.today())
		if err != nil {
			writeParamError(w, r, log.OpSummary, err)
			return
		}
		ws, err := ParseWeekStartParam(q, s.weekStart)
		if err != nil {
			writeParamError(w, r, log.OpSummary, err)
			return
		}
		if period, err = core.PeriodFor(mode, date, ws); err != nil {
			writeParamError(w, r, log.OpSummary, err)
			return
		}
	}

	sum, err := s.reports.Summary(r.Context(), ownerID, period)
	if err != nil {
		writeServiceError(w, r, log.OpSummary, err)
		return
	}
	NewJSONResponse().Body(toSummary(sum)).Write(w)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		unauthenticated(w)
		return
	}
	q := r.URL.Query()
	month, err := ParseMonthParams(q, s.today())
	if err != nil {
		writeParamError(w, r, log.OpCalendar, err)
		return
	}
	ws, err := ParseWeekStartParam(q, s.weekStart)
	if err != nil {
		writeParamError(w, r, log.OpCalendar, err)
		return
	}

	cal, err := s.reports.Calendar(r.Context(), ownerID, month.Date(), ws)
	if err != nil {
		writeServiceError(w, r, log.OpCalendar, err)
		return
	}
	NewJSONResponse().Body(toCalendar(cal)).Write(w)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		unauthenticated(w)
		return
	}
	d, err := core.ParseDate(r.PathValue("date"))
	if err != nil {
		writeParamError(w, r, log.OpSummary, err)
		return
	}

	ds, err := s.reports.Day(r.Context(), ownerID, d)
	if err != nil {
		writeServiceError(w, r, log.OpSummary, err)
		return
	}
	NewJSONResponse().Body(toDaySummary(ds)).Write(w)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		unauthenticated(w)
		return
	}
	month, err := ParseMonthParams(r.URL.Query(), s.today())
	if err != nil {
		writeParamError(w, r, log.OpSummary, err)
		return
	}

	ov, err := s.reports.Overview(r.Context(), ownerID, month.Date())
	if err != nil {
		writeServiceError(w, r, log.OpSummary, err)
		return
	}
	NewJSONResponse().Body(toOverview(month.Date(), ov)).Write(w)
}
