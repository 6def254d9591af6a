package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/restaurant-dashboard/internal/model"
)

func TestMenuWorkbookRoundTrip(t *testing.T) {
	desc := "Tomato soup"
	cats := []model.Category{{Name: "Mains", DisplayOrder: 2}, {Name: "Starters", DisplayOrder: 1}}
	items := []model.MenuItem{
		{Name: "Steak", Price: 24.5, Category: "Mains", Available: true},
		{Name: "Soup", Price: 6, Category: "Starters", Description: &desc, Available: false},
	}
	mods := []model.Modifier{{Name: "Extra cheese", Price: 1.5}}

	var buf bytes.Buffer
	if err := MenuWorkbook(&buf, cats, items, mods); err != nil {
		t.Fatalf("MenuWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	for _, sheet := range []string{SheetItems, SheetCategories, SheetModifiers} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Errorf("missing sheet %s", sheet)
		}
	}
	if v, _ := f.GetCellValue(SheetItems, "C2"); v != "Soup" {
		t.Errorf("expected starters first, got %q", v)
	}

	parsed, skipped, err := ParseMenuItems(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ParseMenuItems: %v", err)
	}
	if len(skipped) != 0 || len(parsed) != 2 {
		t.Fatalf("parsed=%+v skipped=%+v", parsed, skipped)
	}
	soup := parsed[0]
	if soup.Name != "Soup" || soup.Price != 6 || soup.Category != "Starters" || *soup.Description != desc || *soup.Available {
		t.Errorf("unexpected parsed item %+v", soup)
	}
}

func TestParseMenuItemsSkipsBadRows(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"Category", "Price", "Name"},
		{"", "4.5", "Fries"},
		{"Drinks", "abc", "Cola"},
		{"Drinks", "2", ""},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		f.SetSheetRow("Sheet1", cell, &row)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	items, skipped, err := ParseMenuItems(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Category != model.DefaultMenuCategory {
		t.Errorf("unexpected items %+v", items)
	}
	if len(skipped) != 2 || skipped[0].Row != 3 || skipped[1].Row != 4 {
		t.Errorf("unexpected skipped rows %+v", skipped)
	}
}

func TestParseMenuItemsEmpty(t *testing.T) {
	f := excelize.NewFile()
	var buf bytes.Buffer
	f.Write(&buf)
	if _, _, err := ParseMenuItems(&buf); !errors.Is(err, ErrEmptySheet) {
		t.Errorf("expected ErrEmptySheet, got %v", err)
	}
}

func TestCallsWorkbook(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	dur := 300
	caller := "+1234567890"
	calls := []model.Call{{ID: "c1", StartedAt: &start, DurationSeconds: &dur, Caller: &caller, Messages: make([]model.CallMessage, 3)}}

	var buf bytes.Buffer
	if err := CallsWorkbook(&buf, calls); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	row, err := f.GetRows(SheetCalls)
	if err != nil || len(row) != 2 {
		t.Fatalf("rows = %v, %v", row, err)
	}
	if row[1][0] != "2025-01-01 12:00:00" || row[1][2] != "300" || row[1][3] != caller || row[1][5] != "3" {
		t.Errorf("unexpected row %v", row[1])
	}
}
