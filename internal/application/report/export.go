package report

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/creatorhub/backend/internal/domain/report"
)

// SalesCSVHeader is the first line of a sales export
var SalesCSVHeader = []string{"Date", "Platform", "Product", "Brand", "Status", "Commission", "Order Value"}

// ExportFilename names an export produced at t
func ExportFilename(t time.Time) string {
	return "earnings-export-" + t.UTC().Format(time.DateOnly) + ".csv"
}

// WriteSalesCSV writes rows as CSV. Product and brand are always quoted; the other
// columns never contain separators.
func WriteSalesCSV(w io.Writer, rows []report.SaleRow) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(SalesCSVHeader, ","))
	for _, row := range rows {
		date := ""
		if !row.SaleDate.IsZero() {
			date = row.SaleDate.UTC().Format(time.DateOnly)
		}
		bw.WriteByte('\n')
		bw.WriteString(strings.Join([]string{
			date,
			row.Platform.String(),
			quoteCSV(row.ProductName),
			quoteCSV(row.Brand),
			string(row.Status),
			row.CommissionAmount.StringFixed(2),
			row.OrderValue.StringFixed(2),
		}, ","))
	}
	return bw.Flush()
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
