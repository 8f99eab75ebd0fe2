package reporting

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{
	"TransactionID",
	"PaymentID",
	"AccountID",
	"RecommenderID",
	"Currency",
	"TotalAmount",
	"RvnuFee",
	"RecommenderCommission",
	"AssetsUpdated",
	"Reference",
	"CreatedAt",
	"LastAuditStatus",
}

// WriteCSV writes one row per transaction. Amounts are fixed to two places.
func WriteCSV(w io.Writer, details []TransactionDetail) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, d := range details {
		lastStatus := ""
		if n := len(d.AuditLogs); n > 0 {
			lastStatus = d.AuditLogs[n-1].Status
		}

		record := []string{
			strconv.FormatUint(d.TransactionID, 10),
			d.PaymentID,
			d.AccountID,
			d.RecommenderID,
			d.Currency,
			d.TotalAmount.StringFixed(2),
			d.RvnuFee.StringFixed(2),
			d.RecommenderCommission.StringFixed(2),
			strconv.FormatBool(d.AssetsUpdated),
			d.Reference,
			d.CreatedAt.Format("2006-01-02 15:04:05"),
			lastStatus,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
