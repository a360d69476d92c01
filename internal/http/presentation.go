package http

import (
	"strconv"
	"strings"
	"time"

	"gastos/internal/core"
	"gastos/internal/services"
)

// display is how a category or sub-category is shown to users.
type display struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var categoryDisplay = map[core.Category]display{
	core.Food:      {Label: "Comida", Color: "green", Icon: "utensils-crossed"},
	core.Transport: {Label: "Transporte", Color: "blue", Icon: "bus"},
	core.Other:     {Label: "Otros", Color: "purple", Icon: "package"},
}

var subCategoryDisplay = map[core.SubCategory]display{
	core.Saeta:     {Label: "Saeta", Color: "blue", Icon: "bus"},
	core.Didi:      {Label: "DiDi", Color: "orange", Icon: "car"},
	core.Uber:      {Label: "Uber", Color: "gray", Icon: "car"},
	core.PedidosYa: {Label: "Pedidos Ya", Color: "red", Icon: "bike"},
	core.Rappi:     {Label: "Rappi", Color: "orange", Icon: "bike"},
	core.Homemade:  {Label: "De casa", Color: "green", Icon: "home"},
	core.Bought:    {Label: "Comprado", Color: "yellow", Icon: "store"},
}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// weekdayNames is indexed by time.Weekday.
var weekdayNames = [...]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"}

// formatPesos renders cents the way es-AR shows ARS: "$ 1.234,56".
func formatPesos(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	frac := cents % 100
	return sign + "$ " + b.String() + "," + strconv.FormatInt(frac/10, 10) + strconv.FormatInt(frac%10, 10)
}

func monthLabel(d core.Date) string {
	return monthNames[d.Month()-1] + " " + strconv.Itoa(d.Year())
}

// weekdayHeaders returns the column titles of a grid starting on ws.
func weekdayHeaders(ws core.WeekStart) []string {
	first := time.Monday
	if ws == core.Sunday {
		first = time.Sunday
	}
	out := make([]string, 7)
	for i := range out {
		out[i] = weekdayNames[(int(first)+i)%7]
	}
	return out
}

type (
	amountDTO struct {
		Cents     int64  `json:"cents"`
		Decimal   string `json:"decimal"`
		Formatted string `json:"formatted"`
	}

	expenseDTO struct {
		ID          string    `json:"id"`
		Date        time.Time `json:"date"`
		Day         string    `json:"day"`
		Category    string    `json:"category"`
		SubCategory string    `json:"sub_category,omitempty"`
		Amount      amountDTO `json:"amount"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	periodDTO struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}

	listDTO struct {
		Period   periodDTO    `json:"period"`
		Count    int          `json:"count"`
		Expenses []expenseDTO `json:"expenses"`
	}

	subTotalDTO struct {
		SubCategory string `json:"sub_category"`
		display
		Amount amountDTO `json:"amount"`
		// ShareBP is the share of the parent category in basis points.
		ShareBP int64 `json:"share_bp"`
	}

	categoryTotalDTO struct {
		Category string `json:"category"`
		display
		Amount        amountDTO     `json:"amount"`
		ShareBP       int64         `json:"share_bp"`
		SubCategories []subTotalDTO `json:"sub_categories"`
	}

	summaryDTO struct {
		Period     periodDTO          `json:"period"`
		Total      amountDTO          `json:"total"`
		Categories []categoryTotalDTO `json:"categories"`
	}

	daySummaryDTO struct {
		Date       string           `json:"date"`
		Total      amountDTO        `json:"total"`
		ByCategory map[string]int64 `json:"by_category"`
		Expenses   []expenseDTO     `json:"expenses"`
	}

	cellDTO struct {
		Date           string       `json:"date"`
		Day            int          `json:"day"`
		InCurrentMonth bool         `json:"in_current_month"`
		Total          amountDTO    `json:"total"`
		Categories     []string     `json:"categories"`
		Expenses       []expenseDTO `json:"expenses"`
	}

	monthRefDTO struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}

	calendarDTO struct {
		Year      int         `json:"year"`
		Month     int         `json:"month"`
		Label     string      `json:"label"`
		WeekStart string      `json:"week_start"`
		Weekdays  []string    `json:"weekdays"`
		Weeks     [][]cellDTO `json:"weeks"`
		Summary   summaryDTO  `json:"summary"`
		Prev      monthRefDTO `json:"prev"`
		Next      monthRefDTO `json:"next"`
	}

	overviewDTO struct {
		Label            string          `json:"label"`
		Current          summaryDTO      `json:"current"`
		Previous         summaryDTO      `json:"previous"`
		Delta            amountDTO       `json:"delta"`
		DeltaBasisPoints int64           `json:"delta_bp"`
		Days             []daySummaryDTO `json:"days"`
	}

	subCategoryInfoDTO struct {
		ID string `json:"id"`
		display
	}

	categoryInfoDTO struct {
		ID string `json:"id"`
		display
		SubCategories []subCategoryInfoDTO `json:"sub_categories"`
	}
)

func toAmount(m core.Money) amountDTO {
	return amountDTO{Cents: m.Cents, Decimal: m.Decimal(), Formatted: formatPesos(m.Cents)}
}

func toPeriod(p core.Period) periodDTO {
	return periodDTO{Start: p.Start.String(), End: p.End.String()}
}

func toExpense(e core.Expense) expenseDTO {
	return expenseDTO{
		ID:          e.ID,
		Date:        e.Date,
		Day:         e.Day().String(),
		Category:    string(e.Category),
		SubCategory: string(e.SubCategory),
		Amount:      toAmount(e.Amount),
		Title:       e.Title,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toExpenses(in []core.Expense) []expenseDTO {
	out := make([]expenseDTO, 0, len(in))
	for _, e := range in {
		out = append(out, toExpense(e))
	}
	return out
}

// toSummary lists every category in display order, zero totals included.
func toSummary(s core.ExpenseSummary) summaryDTO {
	dto := summaryDTO{
		Period:     toPeriod(s.Period),
		Total:      toAmount(s.Total),
		Categories: make([]categoryTotalDTO, 0, len(core.Categories())),
	}
	for _, c := range core.Categories() {
		ct := categoryTotalDTO{
			Category:      string(c),
			display:       categoryDisplay[c],
			Amount:        toAmount(s.ByCategory[c]),
			ShareBP:       s.Share(c),
			SubCategories: []subTotalDTO{},
		}
		for _, sc := range core.SubCategoriesOf(c) {
			ct.SubCategories = append(ct.SubCategories, subTotalDTO{
				SubCategory: string(sc),
				display:     subCategoryDisplay[sc],
				Amount:      toAmount(s.BySubCategory[sc]),
				ShareBP:     s.SubShare(sc),
			})
		}
		dto.Categories = append(dto.Categories, ct)
	}
	return dto
}

func toDaySummary(ds core.DaySummary) daySummaryDTO {
	by := make(map[string]int64, len(ds.ByCategory))
	for c, m := range ds.ByCategory {
		by[string(c)] = m.Cents
	}
	return daySummaryDTO{
		Date:       ds.Date.String(),
		Total:      toAmount(ds.Total),
		ByCategory: by,
		Expenses:   toExpenses(ds.Expenses),
	}
}

func toCell(c core.CalendarCell) cellDTO {
	cats := []string{}
	for _, cat := range core.Categories() {
		if c.HasCategory(cat) {
			cats = append(cats, string(cat))
		}
	}
	return cellDTO{
		Date:           c.Date.String(),
		Day:            c.Date.Day(),
		InCurrentMonth: c.InCurrentMonth,
		Total:          toAmount(c.Total),
		Categories:     cats,
		Expenses:       toExpenses(c.Expenses),
	}
}

func toCalendar(mc services.MonthCalendar) calendarDTO {
	dto := calendarDTO{
		Year:      mc.Month.Year(),
		Month:     int(mc.Month.Month()),
		Label:     monthLabel(mc.Month),
		WeekStart: mc.WeekStart.String(),
		Weekdays:  weekdayHeaders(mc.WeekStart),
		Summary:   toSummary(mc.Summary),
		Prev:      monthRefDTO{Year: mc.Prev.Year(), Month: int(mc.Prev.Month())},
		Next:      monthRefDTO{Year: mc.Next.Year(), Month: int(mc.Next.Month())},
	}
	for _, week := range core.Weeks(mc.Cells) {
		row := make([]cellDTO, 0, len(week))
		for _, c := range week {
			row = append(row, toCell(c))
		}
		dto.Weeks = append(dto.Weeks, row)
	}
	return dto
}

func toOverview(month core.Date, ov services.Overview) overviewDTO {
	days := make([]daySummaryDTO, 0, len(ov.Days))
	for _, d := range ov.Days {
		days = append(days, toDaySummary(d))
	}
	return overviewDTO{
		Label:            monthLabel(month),
		Current:          toSummary(ov.Current),
		Previous:         toSummary(ov.Previous),
		Delta:            toAmount(ov.Delta),
		DeltaBasisPoints: ov.DeltaBasisPoints,
		Days:             days,
	}
}

func categoryCatalog() []categoryInfoDTO {
	out := make([]categoryInfoDTO, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		info := categoryInfoDTO{ID: string(c), display: categoryDisplay[c], SubCategories: []subCategoryInfoDTO{}}
		for _, sc := range core.SubCategoriesOf(c) {
			info.SubCategories = append(info.SubCategories, subCategoryInfoDTO{ID: string(sc), display: subCategoryDisplay[sc]})
		}
		out = append(out, info)
	}
	return out
}
