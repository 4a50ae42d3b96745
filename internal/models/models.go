package models

// PredictRequest is the loan applicant payload accepted by /api/predict.
// Every field is optional; a nil field takes the documented default.
type PredictRequest struct {
	CreditPolicy         *float64 `json:"creditPolicy,omitempty"`
	Purpose              *string  `json:"purpose,omitempty"`
	InterestRate         *float64 `json:"interestRate,omitempty"`
	Installment          *float64 `json:"installment,omitempty"`
	LogAnnualIncome      *float64 `json:"logAnnualIncome,omitempty"`
	DTI                  *float64 `json:"dti,omitempty"`
	FICO                 *float64 `json:"fico,omitempty"`
	DaysWithCreditLine   *float64 `json:"daysWithCreditLine,omitempty"`
	RevolBal             *float64 `json:"revolBal,omitempty"`
	RevolUtil            *float64 `json:"revolUtil,omitempty"`
	InquiriesLast6Months *float64 `json:"inquiriesLast6Months,omitempty"`
	Delinquencies2Years  *float64 `json:"delinquencies2Years,omitempty"`
	PublicRecords        *float64 `json:"publicRecords,omitempty"`
}

// PredictResponse is returned on a successful prediction
type PredictResponse struct {
	Success            bool    `json:"success"`
	DefaultProbability float64 `json:"defaultProbability"`
	DefaultRisk        string  `json:"defaultRisk"`
	Recommendation     string  `json:"recommendation"`
}

// ErrorResponse is returned when a request cannot be served
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ModelRun describes one bootstrap of the classifier
type ModelRun struct {
	ID          string `json:"id"`
	Fingerprint string `json:"fingerprint"`
	Source      string `json:"source"`
	Artifact    string `json:"artifact"`
	Dataset     string `json:"dataset,omitempty"`
	Samples     int    `json:"samples"`
	Positives   int    `json:"positives"`
	Trees       int    `json:"trees"`
	DurationMS  int64  `json:"durationMs"`
	CreatedAt   string `json:"createdAt"`
}

// ModelInfoResponse describes the classifier currently serving requests
type ModelInfoResponse struct {
	Fingerprint string     `json:"fingerprint"`
	Trees       int        `json:"trees"`
	Columns     []string   `json:"columns"`
	Categories  []string   `json:"categories"`
	Runs        []ModelRun `json:"runs"`
}
