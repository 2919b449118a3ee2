package handler

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"finance-tracker/internal/finance"
	"finance-tracker/internal/models"
	"finance-tracker/internal/service"

	"github.com/shopspring/decimal"
)

func sampleRows() []service.ExportRow {
	return []service.ExportRow{
		{
			Date:        time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			Type:        models.TransactionTransfer,
			Amount:      decimal.RequireFromString("60"),
			Currency:    "EUR",
			Account:     "Checking",
			Destination: "Savings",
			Description: "monthly move",
			Active:      true,
		},
		{
			Date:     time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			Type:     models.TransactionExpense,
			Amount:   decimal.RequireFromString("12.3"),
			Currency: "EUR",
			Account:  "Checking",
			Category: "Food",
			Debt:     "Card",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := writeCSV(&buf, sampleRows()); err != nil {
		t.Fatalf("writeCSV failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("%d records, want 3", len(records))
	}
	if records[0][0] != "Date" || len(records[0]) != len(ledgerHeaders) {
		t.Errorf("header = %v", records[0])
	}
	want := []string{"2024-03-02", "expense", "12.30", "EUR", "Checking", "", "Food", "", "Card", "", "no"}
	for i, v := range want {
		if records[2][i] != v {
			t.Errorf("record[2][%d] = %q, want %q", i, records[2][i], v)
		}
	}
}

func TestBuildWorkbook(t *testing.T) {
	progress := []service.BudgetProgress{{
		BudgetName:         "Food",
		BudgetAmount:       decimal.RequireFromString("500"),
		SpentAmount:        decimal.RequireFromString("450"),
		RemainingAmount:    decimal.RequireFromString("50"),
		ProgressPercentage: 90,
		Status:             finance.BudgetWarning,
	}}
	f, err := buildWorkbook(sampleRows(), progress)
	if err != nil {
		t.Fatalf("buildWorkbook failed: %v", err)
	}
	defer f.Close()

	testCases := []struct {
		sheet, cell, want string
	}{
		{ledgerSheet, "A1", "Date"},
		{ledgerSheet, "B2", "transfer"},
		{ledgerSheet, "F2", "Savings"},
		{ledgerSheet, "C3", "12.3"},
		{budgetSheet, "A2", "Food"},
		{budgetSheet, "E2", "90"},
		{budgetSheet, "F2", "warning"},
	}
	for _, tc := range testCases {
		got, err := f.GetCellValue(tc.sheet, tc.cell)
		if err != nil {
			t.Errorf("%s!%s: %v", tc.sheet, tc.cell, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s!%s = %q, want %q", tc.sheet, tc.cell, got, tc.want)
		}
	}

	f2, err := buildWorkbook(nil, nil)
	if err != nil {
		t.Fatalf("buildWorkbook(empty) failed: %v", err)
	}
	defer f2.Close()
	if got := f2.GetSheetList(); len(got) != 1 || got[0] != ledgerSheet {
		t.Errorf("sheets without budgets = %v", got)
	}
}
