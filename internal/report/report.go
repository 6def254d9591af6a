// Package report builds and reads the spreadsheets the dashboard offers
// for download and bulk import.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/restaurant-dashboard/internal/model"
)

const (
	SheetItems      = "Menu"
	SheetCategories = "Categories"
	SheetModifiers  = "Modifiers"
	SheetCalls      = "Calls"
)

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	itemHeader     = []any{"Category", "Price", "Name", "Description", "Available", "Image URL"}
	categoryHeader = []any{"Name", "Description", "Display order"}
	modifierHeader = []any{"Name", "Description", "Price"}
	callHeader     = []any{"Started", "Ended", "Duration (s)", "Caller", "Outcome", "Messages", "Cost"}
)

// MenuWorkbook writes the menu of one restaurant: items grouped by
// category, then the categories and modifiers on their own sheets.
func MenuWorkbook(w io.Writer, categories []model.Category, items []model.MenuItem, modifiers []model.Modifier) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetItems); err != nil {
		return err
	}
	order := categoryOrder(categories)
	sorted := append([]model.MenuItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		oi, oj := rank(order, sorted[i].Category), rank(order, sorted[j].Category)
		if oi != oj {
			return oi < oj
		}
		return sorted[i].Name < sorted[j].Name
	})
	rows := make([][]any, 0, len(sorted))
	for _, it := range sorted {
		rows = append(rows, []any{it.Category, it.Price, it.Name, deref(it.Description), yesNo(it.Available), deref(it.ImageURL)})
	}
	if err := writeSheet(f, SheetItems, itemHeader, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, c := range categories {
		rows = append(rows, []any{c.Name, deref(c.Description), c.DisplayOrder})
	}
	if err := addSheet(f, SheetCategories, categoryHeader, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, m := range modifiers {
		rows = append(rows, []any{m.Name, deref(m.Description), m.Price})
	}
	if err := addSheet(f, SheetModifiers, modifierHeader, rows); err != nil {
		return err
	}
	return f.Write(w)
}

// CallsWorkbook writes the call history, newest first as received.
func CallsWorkbook(w io.Writer, calls []model.Call) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCalls); err != nil {
		return err
	}
	rows := make([][]any, 0, len(calls))
	for _, c := range calls {
		rows = append(rows, []any{
			stamp(c.StartedAt), stamp(c.EndedAt), intOr(c.DurationSeconds),
			deref(c.Caller), deref(c.Outcome), len(c.Messages), floatOr(c.Cost),
		})
	}
	if err := writeSheet(f, SheetCalls, callHeader, rows); err != nil {
		return err
	}
	return f.Write(w)
}

func addSheet(f *excelize.File, name string, header []any, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return writeSheet(f, name, header, rows)
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func categoryOrder(categories []model.Category) map[string]int {
	order := make(map[string]int, len(categories))
	for _, c := range categories {
		order[strings.ToLower(c.Name)] = c.DisplayOrder
	}
	return order
}

// rank sorts unknown categories after the known ones.
func rank(order map[string]int, category string) int {
	if o, ok := order[strings.ToLower(category)]; ok {
		return o
	}
	return 1 << 30
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func stamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func intOr(p *int) any {
	if p == nil {
		return ""
	}
	return *p
}

func floatOr(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}
