package google

import (
	"fmt"
	"strings"
	"time"

	"gastos/internal/core"
)

// Column layout of the mirror sheet, one expense per row keyed by id.
var header = []interface{}{"ID", "Owner", "Date", "Time", "Category", "SubCategory", "Amount", "Title", "Description", "UpdatedAt"}

const lastColumn = "J"

// expenseRow renders e as a sheet row. The amount is written as a plain
// decimal so the sheet can sum it; free text is escaped so it is never
// evaluated as a formula.
func expenseRow(e core.Expense) []interface{} {
	return []interface{}{
		e.ID,
		textCell(e.OwnerID),
		e.Day().String(),
		e.Date.Format("15:04"),
		string(e.Category),
		string(e.SubCategory),
		e.Amount.Decimal(),
		textCell(e.Title),
		textCell(e.Description),
		e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// textCell prefixes a quote to text the sheet would parse as a formula, so
// it is stored as typed.
func textCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@'", rune(s[0])) {
		return "'" + s
	}
	return s
}

// findRow returns the 1-based sheet row whose first column equals id, or 0.
// The header row never matches.
func findRow(column [][]interface{}, id string) int {
	for i, row := range column {
		if i == 0 || len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", sheet, row, lastColumn, row)
}
