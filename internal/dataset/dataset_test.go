package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "credit.policy,purpose,int.rate,installment,log.annual.inc,dti,fico,days.with.cr.line,revol.bal,revol.util,inq.last.6mths,delinq.2yrs,pub.rec,not.fully.paid\n"

func TestRead(t *testing.T) {
	data := header +
		"1,debt_consolidation,0.1189,829.1,11.35,19.48,737,5639.96,28854,52.1,0,0,0,0\n" +
		"0,small_business,0.1596,169.47,10.31,14.29,667,4066,3660,33.2,1,0,0,1\n"

	ds, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, 1, ds.Positives())

	first := ds.Records[0]
	assert.Equal(t, "debt_consolidation", first.Purpose)
	assert.Equal(t, 737.0, first.FICO)
	assert.Equal(t, 0.1189, first.InterestRate)
	assert.Equal(t, []int{0, 1}, ds.Labels)
}

func TestReadReorderedAndExtraColumns(t *testing.T) {
	data := "id,not.fully.paid,pub.rec,delinq.2yrs,inq.last.6mths,revol.util,revol.bal,days.with.cr.line,fico,dti,log.annual.inc,installment,int.rate,purpose,credit.policy\n" +
		"7,1,2,1,3,90,100,200,610,30,9.5,50,0.2,car,0\n"

	ds, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	rec := ds.Records[0]
	assert.Equal(t, "car", rec.Purpose)
	assert.Equal(t, 610.0, rec.FICO)
	assert.Equal(t, 2.0, rec.PublicRecords)
	assert.Equal(t, 0.0, rec.CreditPolicy)
	assert.Equal(t, 1, ds.Labels[0])
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"empty", "", "missing header"},
		{"missing column", "credit.policy,purpose\n1,car\n", "missing column"},
		{"bad number", header + "1,car,abc,1,1,1,1,1,1,1,1,1,1,0\n", "int.rate"},
		{"bad label", header + "1,car,0.1,1,1,1,1,1,1,1,1,1,1,x\n", "not.fully.paid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadHeaderOnly(t *testing.T) {
	_, err := Read(strings.NewReader(header))
	assert.True(t, errors.Is(err, ErrNoRows))
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
