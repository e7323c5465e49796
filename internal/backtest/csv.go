package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"rebalance-backtest/internal/model"
)

var ledgerHeader = []string{
	"index",
	"date",
	"return_a",
	"return_b",
	"regime",
	"prev_weight",
	"prev_hedged",
	"weight",
	"hedged",
	"direction",
	"exposure",
	"turnover",
	"cost",
	"strategy_return",
	"benchmark_return",
	"cum_strategy",
	"cum_benchmark",
}

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteLedger(f, ledger); err != nil {
		return err
	}
	return f.Close()
}

// WriteLedger writes the ledger as CSV with a header row. Undefined values
// are written as empty fields.
func WriteLedger(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)

	if err := w.Write(ledgerHeader); err != nil {
		return err
	}
	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			r.Date.Format(model.DateLayout),
			fmtFloat(r.ReturnA),
			fmtFloat(r.ReturnB),
			fmtFloat(r.Regime),
			fmtFloat(r.PrevWeight),
			strconv.FormatBool(r.PrevHedged),
			fmtFloat(r.Weight),
			strconv.FormatBool(r.Hedged),
			string(r.Direction),
			fmtFloat(r.Exposure),
			fmtFloat(r.Turnover),
			fmtFloat(r.Cost),
			fmtFloat(r.StrategyReturn),
			fmtFloat(r.BenchmarkReturn),
			fmtFloat(r.CumStrategy),
			fmtFloat(r.CumBenchmark),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	if !model.IsDefined(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'f', 8, 64)
}
