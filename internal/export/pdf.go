package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"dailysettle/internal/domain/settlement"
)

// WriteSlip renders the settlement slip of one report: payroll line items,
// the cash reconciliation and the toll detail lines.
func WriteSlip(w io.Writer, report settlement.Report, totals settlement.Totals) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Daily settlement", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Daily settlement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Driver: %s", driverLabel(report))))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Date: %s", formatDate(report)))
	pdf.Ln(6)
	if report.ID != "" {
		pdf.Cell(0, 7, tr(fmt.Sprintf("Report: %s", report.ID)))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	section(pdf, "Payroll")
	p := totals.Payroll
	amountLine(pdf, "Sales", p.Sales)
	amountLine(pdf, "Advance", p.Advance)
	amountLine(pdf, "ETC refund", p.EtcRefund)
	amountLine(pdf, "Over/short to driver", p.OverShortToDriver)
	amountLine(pdf, "Over/short to company", p.OverShortToCompany)
	pdf.SetFont("Helvetica", "B", 11)
	amountLine(pdf, "Total payable", p.Total)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Ln(4)

	section(pdf, "Cash reconciliation")
	rec := totals.Reconciliation
	amountLine(pdf, "Deposit", rec.DepositAmount)
	amountLine(pdf, "Expected cash", rec.ExpectedCash)
	amountLine(pdf, "Imbalance", rec.Imbalance)
	if rec.ImbalanceAdjusted != rec.Imbalance {
		amountLine(pdf, "Imbalance after fuel", rec.ImbalanceAdjusted)
	}
	pdf.Ln(4)

	section(pdf, "Sales by method")
	for _, method := range settlement.Methods {
		if amount := totals.Sales.ByMethod[method]; amount != 0 {
			amountLine(pdf, string(method), amount)
		}
	}
	amountLine(pdf, "Charter cash", totals.Sales.CharterCashTotal)
	amountLine(pdf, "Charter uncollected", totals.Sales.CharterUncollectedTotal)
	pdf.Ln(4)

	if len(totals.Etc.Lines) > 0 {
		section(pdf, "ETC")
		pdf.SetFont("Helvetica", "B", 10)
		for _, header := range []string{"#", "Time", "Payment", "Riding", "Empty", "Total"} {
			pdf.CellFormat(30, 7, header, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		for _, line := range totals.Etc.Lines {
			pdf.CellFormat(30, 7, fmt.Sprintf("%d", line.Index+1), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 7, line.RideTime, "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 7, tr(line.PaymentMethod), "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 7, yen(line.Riding), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 7, yen(line.Empty), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 7, yen(line.Total), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
}

func amountLine(pdf *gofpdf.Fpdf, label string, amount int) {
	pdf.CellFormat(80, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, yen(amount), "", 0, "R", false, 0, "")
	pdf.Ln(6)
}

// yen formats whole yen with thousands separators, e.g. -12,345 JPY.
func yen(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := fmt.Sprintf("%d", amount)
	var out []byte
	for i := range len(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return sign + string(out) + " JPY"
}
