package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/restaurant-dashboard/internal/model"
)

// ErrEmptySheet is returned when the workbook has no data rows.
var ErrEmptySheet = errors.New("spreadsheet must have a header and at least one row")

// RowError explains why one row was skipped.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ParseMenuItems reads menu items from the first sheet of an xlsx file.
// Columns follow the export layout: Category, Price, Name, Description,
// Available.  Rows that cannot be used are reported, not fatal.
func ParseMenuItems(r io.Reader) ([]model.MenuItemInput, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil, ErrEmptySheet
	}

	var items []model.MenuItemInput
	var skipped []RowError
	for i, row := range rows[1:] {
		n := i + 2
		col := func(j int) string {
			if j < len(row) {
				return strings.TrimSpace(row[j])
			}
			return ""
		}
		name := col(2)
		if name == "" {
			skipped = append(skipped, RowError{Row: n, Reason: "name is empty"})
			continue
		}
		price, err := strconv.ParseFloat(col(1), 64)
		if err != nil || price < 0 {
			skipped = append(skipped, RowError{Row: n, Reason: fmt.Sprintf("invalid price %q", col(1))})
			continue
		}
		in := model.MenuItemInput{Name: name, Price: price, Category: col(0)}
		if in.Category == "" {
			in.Category = model.DefaultMenuCategory
		}
		if d := col(3); d != "" {
			in.Description = &d
		}
		if a := col(4); a != "" {
			avail := parseBool(a)
			in.Available = &avail
		}
		items = append(items, in)
	}
	return items, skipped, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "no", "n", "false", "0", "off":
		return false
	}
	return true
}
