package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"dailysettle/internal/domain/settlement"
)

const summarySheet = "Summary"

var summaryHeaders = []string{
	"Report", "Driver", "Date", "Status", "Sales", "Advance", "ETC refund",
	"Over/short to driver", "Over/short to company", "Payroll total", "Commission",
}

// BuildWorkbook lays out a batch as one summary sheet plus one sheet per
// computed report.
func BuildWorkbook(summary settlement.BatchSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(summarySheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := writeRow(f, summarySheet, 1, toAny(summaryHeaders)); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(summarySheet, 1, 1, headerStyle); err != nil {
		return nil, err
	}

	row := 2
	used := map[string]int{summarySheet: 1}
	for _, result := range summary.Results {
		values := []any{result.Report.ID, driverLabel(result.Report), formatDate(result.Report)}
		if result.Err != nil {
			values = append(values, "rejected: "+result.Err.Error())
		} else {
			p := result.Totals.Payroll
			values = append(values, "ok", p.Sales, p.Advance, p.EtcRefund, p.OverShortToDriver, p.OverShortToCompany, p.Total, result.Totals.CommissionTotal)
		}
		if err := writeRow(f, summarySheet, row, values); err != nil {
			return nil, err
		}
		row++

		if result.Err != nil {
			continue
		}
		if err := writeReportSheet(f, sheetName(result.Report, used), result); err != nil {
			return nil, err
		}
	}

	totals := []any{"Total", "", "", fmt.Sprintf("%d reports, %d rejected", summary.ReportCount, summary.FailedCount),
		summary.SalesTotal, "", summary.EtcRefund, "", "", summary.PayrollTotal}
	if err := writeRow(f, summarySheet, row+1, totals); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(summarySheet, row+1, row+1, headerStyle); err != nil {
		return nil, err
	}
	return f, nil
}

func writeReportSheet(f *excelize.File, name string, result settlement.Result) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	t := result.Totals
	rows := [][]any{
		{"Driver", driverLabel(result.Report)},
		{"Date", formatDate(result.Report)},
		{},
		{"Method", "Sales", "ETC credited", "Commission rate", "Commission", "Net"},
	}
	for _, c := range t.Commission {
		rows = append(rows, []any{string(c.Method), c.Gross, t.Etc.ByMethod[c.Method], c.Rate, c.Fee, c.Net})
	}
	rows = append(rows,
		[]any{},
		[]any{"Meter only", t.Sales.MeterOnlyTotal},
		[]any{"Uber reservation", t.Sales.UberReservation.Total, t.Sales.UberReservation.Count},
		[]any{"Uber tip", t.Sales.UberTip.Total, t.Sales.UberTip.Count},
		[]any{"Uber promotion", t.Sales.UberPromotion.Total, t.Sales.UberPromotion.Count},
		[]any{"Charter cash", t.Sales.CharterCashTotal},
		[]any{"Charter uncollected", t.Sales.CharterUncollectedTotal},
		[]any{"Unresolved", t.Sales.Unresolved.Total, t.Sales.Unresolved.Count},
		[]any{"Sales total", t.Sales.SalesTotal},
		[]any{},
		[]any{"ETC company", t.Etc.Company},
		[]any{"ETC driver", t.Etc.Driver},
		[]any{"ETC customer", t.Etc.Customer},
		[]any{"ETC refund to driver", t.Etc.ActualCompanyToDriver},
		[]any{"Driver empty ETC deduction", t.Etc.DriverEmptyEtcDeductionTotal},
		[]any{},
		[]any{"Deposit", t.Reconciliation.DepositAmount},
		[]any{"Expected cash", t.Reconciliation.ExpectedCash},
		[]any{"Imbalance", t.Reconciliation.Imbalance},
		[]any{"Imbalance after fuel", t.Reconciliation.ImbalanceAdjusted},
		[]any{},
		[]any{"Payroll total", t.Payroll.Total},
	)
	for i, values := range rows {
		if err := writeRow(f, name, i+1, values); err != nil {
			return err
		}
	}
	return f.SetColWidth(name, "A", "A", 28)
}

// WriteWorkbook streams the batch workbook to w.
func WriteWorkbook(w io.Writer, summary settlement.BatchSummary) error {
	f, err := BuildWorkbook(summary)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

// SaveWorkbook writes the batch workbook under dir and returns its path.
func SaveWorkbook(dir string, summary settlement.BatchSummary) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := BuildWorkbook(summary)
	if err != nil {
		return "", err
	}
	defer f.Close()
	name := "settlements-" + summary.Date.Format("2006-01-02")
	if summary.RunID != "" {
		name += "-" + truncateRunes(summary.RunID, 8)
	}
	path := filepath.Join(dir, name+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func driverLabel(report settlement.Report) string {
	if report.DriverName != "" {
		return report.DriverName
	}
	return report.DriverID
}

func formatDate(report settlement.Report) string {
	if report.Date.IsZero() {
		return ""
	}
	return report.Date.Format("2006-01-02")
}

// sheetName derives a unique, Excel-legal sheet name for a report.
func sheetName(report settlement.Report, used map[string]int) string {
	base := driverLabel(report)
	if base == "" {
		base = report.ID
	}
	if base == "" {
		base = "Report"
	}
	base = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, base)
	base = truncateRunes(base, 25)
	used[base]++
	if n := used[base]; n > 1 {
		return fmt.Sprintf("%s (%d)", base, n)
	}
	return base
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
