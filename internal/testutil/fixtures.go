// Package testutil provides deterministic loan datasets for tests.
package testutil

import (
	"encoding/csv"
	"math/rand"
	"os"
	"strconv"
	"testing"

	"github.com/kartoza/loan-risk/internal/features"
)

// Purposes mirrors the categories found in the lending club extract
var Purposes = []string{
	"debt_consolidation",
	"credit_card",
	"all_other",
	"home_improvement",
	"small_business",
	"major_purchase",
	"educational",
}

// LoanRecords generates n labelled applicants. Defaults are driven by low
// FICO scores and high interest rates, so a forest separates them easily.
func LoanRecords(n int, seed int64) ([]features.Record, []int) {
	rnd := rand.New(rand.NewSource(seed))
	records := make([]features.Record, n)
	labels := make([]int, n)

	for i := 0; i < n; i++ {
		rec := features.Defaults()
		rec.FICO = float64(600 + rnd.Intn(231))
		rec.InterestRate = 0.05 + rnd.Float64()*0.18
		rec.DTI = rnd.Float64() * 30
		rec.Installment = 50 + rnd.Float64()*900
		rec.LogAnnualIncome = 9.5 + rnd.Float64()*3
		rec.DaysWithCreditLine = 500 + rnd.Float64()*9000
		rec.RevolBal = rnd.Float64() * 60000
		rec.RevolUtil = rnd.Float64() * 100
		rec.InquiriesLast6Months = float64(rnd.Intn(6))
		rec.Delinquencies2Years = float64(rnd.Intn(2))
		rec.CreditPolicy = float64(rnd.Intn(2))
		rec.Purpose = Purposes[rnd.Intn(len(Purposes))]

		score := (700-rec.FICO)/50 + (rec.InterestRate-0.12)*20 + rnd.NormFloat64()*0.3
		if score > 0.5 {
			labels[i] = 1
		}
		records[i] = rec
	}
	return records, labels
}

// WriteLoanCSV writes LoanRecords(n, seed) to path in the training CSV layout
func WriteLoanCSV(t *testing.T, path string, n int, seed int64) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create dataset: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append(append([]string{}, features.Columns...), features.LabelColumn)
	if err := w.Write(header); err != nil {
		t.Fatalf("Failed to write header: %v", err)
	}

	records, labels := LoanRecords(n, seed)
	for i, rec := range records {
		values := rec.Values()
		row := make([]string, 0, len(header))
		for _, c := range features.Columns {
			switch v := values[c].(type) {
			case string:
				row = append(row, v)
			case float64:
				row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
			}
		}
		row = append(row, strconv.Itoa(labels[i]))
		if err := w.Write(row); err != nil {
			t.Fatalf("Failed to write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("Failed to flush dataset: %v", err)
	}
}
