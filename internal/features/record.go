// Package features maps loosely specified applicant payloads onto the fixed
// feature schema the default-risk classifier is trained with.
package features

import (
	"github.com/kartoza/loan-risk/internal/models"
)

// Column names in training order. The classifier, the dataset loader and the
// normalizer all index into this slice.
var Columns = []string{
	"credit.policy",
	"purpose",
	"int.rate",
	"installment",
	"log.annual.inc",
	"dti",
	"fico",
	"days.with.cr.line",
	"revol.bal",
	"revol.util",
	"inq.last.6mths",
	"delinq.2yrs",
	"pub.rec",
}

// PurposeColumn is the only categorical column
const PurposeColumn = "purpose"

// LabelColumn is the dataset target: 1 when the loan was not fully paid
const LabelColumn = "not.fully.paid"

// NumericColumns returns Columns without the categorical column, in order.
func NumericColumns() []string {
	out := make([]string, 0, len(Columns)-1)
	for _, c := range Columns {
		if c != PurposeColumn {
			out = append(out, c)
		}
	}
	return out
}

// Record is one complete applicant row.
type Record struct {
	CreditPolicy         float64
	Purpose              string
	InterestRate         float64
	Installment          float64
	LogAnnualIncome      float64
	DTI                  float64
	FICO                 float64
	DaysWithCreditLine   float64
	RevolBal             float64
	RevolUtil            float64
	InquiriesLast6Months float64
	Delinquencies2Years  float64
	PublicRecords        float64
}

// Defaults returns the record used for every field a client leaves out.
func Defaults() Record {
	return Record{
		CreditPolicy:         1,
		Purpose:              "debt_consolidation",
		InterestRate:         0.12,
		Installment:          500,
		LogAnnualIncome:      11.0,
		DTI:                  15,
		FICO:                 700,
		DaysWithCreditLine:   3000,
		RevolBal:             25000,
		RevolUtil:            50,
		InquiriesLast6Months: 0,
		Delinquencies2Years:  0,
		PublicRecords:        0,
	}
}

// Numeric returns the numeric fields in NumericColumns order.
func (r Record) Numeric() []float64 {
	return []float64{
		r.CreditPolicy,
		r.InterestRate,
		r.Installment,
		r.LogAnnualIncome,
		r.DTI,
		r.FICO,
		r.DaysWithCreditLine,
		r.RevolBal,
		r.RevolUtil,
		r.InquiriesLast6Months,
		r.Delinquencies2Years,
		r.PublicRecords,
	}
}

// Values returns all fields keyed by internal column name.
func (r Record) Values() map[string]interface{} {
	values := make(map[string]interface{}, len(Columns))
	nums := r.Numeric()
	i := 0
	for _, c := range Columns {
		if c == PurposeColumn {
			values[c] = r.Purpose
			continue
		}
		values[c] = nums[i]
		i++
	}
	return values
}

// FromNumeric builds a record from a purpose and numeric values in
// NumericColumns order. It is the inverse of Numeric.
func FromNumeric(purpose string, nums []float64) Record {
	v := make([]float64, len(Columns)-1)
	copy(v, nums)
	return Record{
		CreditPolicy:         v[0],
		Purpose:              purpose,
		InterestRate:         v[1],
		Installment:          v[2],
		LogAnnualIncome:      v[3],
		DTI:                  v[4],
		FICO:                 v[5],
		DaysWithCreditLine:   v[6],
		RevolBal:             v[7],
		RevolUtil:            v[8],
		InquiriesLast6Months: v[9],
		Delinquencies2Years:  v[10],
		PublicRecords:        v[11],
	}
}

// Normalize fills every field missing from req with its default. Values are
// passed through unchecked.
func Normalize(req models.PredictRequest) Record {
	rec := Defaults()

	setFloat(&rec.CreditPolicy, req.CreditPolicy)
	if req.Purpose != nil {
		rec.Purpose = *req.Purpose
	}
	setFloat(&rec.InterestRate, req.InterestRate)
	setFloat(&rec.Installment, req.Installment)
	setFloat(&rec.LogAnnualIncome, req.LogAnnualIncome)
	setFloat(&rec.DTI, req.DTI)
	setFloat(&rec.FICO, req.FICO)
	setFloat(&rec.DaysWithCreditLine, req.DaysWithCreditLine)
	setFloat(&rec.RevolBal, req.RevolBal)
	setFloat(&rec.RevolUtil, req.RevolUtil)
	setFloat(&rec.InquiriesLast6Months, req.InquiriesLast6Months)
	setFloat(&rec.Delinquencies2Years, req.Delinquencies2Years)
	setFloat(&rec.PublicRecords, req.PublicRecords)

	return rec
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
