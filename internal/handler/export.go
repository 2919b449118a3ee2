package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"time"

	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const (
	ledgerSheet = "Transactions"
	budgetSheet = "Budgets"
)

var ledgerHeaders = []string{
	"Date", "Type", "Amount", "Currency", "Account", "Destination",
	"Category", "Payment method", "Debt", "Description", "Active",
}

var budgetHeaders = []string{
	"Budget", "Budgeted", "Spent", "Remaining", "Progress %", "Status",
}

// ExportHandler streams the ledger as CSV or XLSX.
type ExportHandler struct {
	Export  *service.ExportService
	Budgets *service.BudgetService
}

func NewExportHandler(export *service.ExportService, budgets *service.BudgetService) *ExportHandler {
	return &ExportHandler{Export: export, Budgets: budgets}
}

func ledgerRecord(r service.ExportRow) []string {
	active := "yes"
	if !r.Active {
		active = "no"
	}
	return []string{
		r.Date.Format(util.DateLayout),
		string(r.Type),
		r.Amount.StringFixed(2),
		r.Currency,
		r.Account,
		r.Destination,
		r.Category,
		r.PaymentMethod,
		r.Debt,
		r.Description,
		active,
	}
}

// writeCSV writes a header line and one record per row.
func writeCSV(w io.Writer, rows []service.ExportRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ledgerHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write(ledgerRecord(r)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// buildWorkbook lays out the ledger sheet and, when progress is given, a
// budget sheet for that month.
func buildWorkbook(rows []service.ExportRow, progress []service.BudgetProgress) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return nil, err
	}
	if err := writeSheet(f, ledgerSheet, ledgerHeaders, len(rows), func(i int) []any {
		r := rows[i]
		rec := ledgerRecord(r)
		out := make([]any, len(rec))
		for j, v := range rec {
			out[j] = v
		}
		out[2] = r.Amount.InexactFloat64()
		return out
	}); err != nil {
		return nil, err
	}
	widths := map[string]float64{"A": 12, "B": 10, "C": 12, "D": 9, "E": 18, "F": 18, "G": 16, "H": 16, "I": 16, "J": 30, "K": 8}
	for col, w := range widths {
		if err := f.SetColWidth(ledgerSheet, col, col, w); err != nil {
			return nil, err
		}
	}

	if progress != nil {
		if _, err := f.NewSheet(budgetSheet); err != nil {
			return nil, err
		}
		if err := writeSheet(f, budgetSheet, budgetHeaders, len(progress), func(i int) []any {
			p := progress[i]
			return []any{
				p.BudgetName,
				p.BudgetAmount.InexactFloat64(),
				p.SpentAmount.InexactFloat64(),
				p.RemainingAmount.InexactFloat64(),
				p.ProgressPercentage,
				string(p.Status),
			}
		}); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(budgetSheet, "A", "A", 24); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// writeSheet writes headers in row 1 and n data rows below them.
func writeSheet(f *excelize.File, sheet string, headers []string, n int, row func(int) []any) error {
	head := make([]any, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		values := row(i)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// rows loads the export for the current user honoring ?from=&to=.
func (h *ExportHandler) rows(c *gin.Context) ([]service.ExportRow, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	from, ok := optionalDate(c, "from", c.Query("from"))
	if !ok {
		return nil, false
	}
	to, ok := optionalDate(c, "to", c.Query("to"))
	if !ok {
		return nil, false
	}
	rows, err := h.Export.Rows(c.Request.Context(), user.ID, from, to)
	if err != nil {
		util.Fail(c, err)
		return nil, false
	}
	return rows, true
}

func attachment(c *gin.Context, contentType, ext string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.%s\"",
		time.Now().Format("20060102"), ext))
}

// ExportCSV: GET /export/transactions.csv
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	rows, ok := h.rows(c)
	if !ok {
		return
	}
	attachment(c, "text/csv; charset=utf-8", "csv")
	c.Status(http.StatusOK)
	// UTF-8 BOM so spreadsheet apps pick the right encoding
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})
	if err := writeCSV(c.Writer, rows); err != nil {
		_ = c.Error(err)
	}
}

// ExportXLSX: GET /export/transactions.xlsx. With ?year=&month= a budget
// sheet for that month is added.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	rows, ok := h.rows(c)
	if !ok {
		return
	}
	var progress []service.BudgetProgress
	if c.Query("year") != "" || c.Query("month") != "" {
		w, ok := windowQuery(c)
		if !ok {
			return
		}
		user, _ := currentUser(c)
		all, err := h.Budgets.AllProgress(c.Request.Context(), user.ID, w)
		if err != nil {
			util.Fail(c, err)
			return
		}
		progress = append([]service.BudgetProgress{}, all...)
	}

	f, err := buildWorkbook(rows, progress)
	if err != nil {
		util.Fail(c, err)
		return
	}
	defer f.Close()

	attachment(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx")
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
