package services

import (
	"encoding/json"
	"io"
	"net/http"
)

// taxBand is one bracket of the progressive personal income tax table.
// Widths are annual amounts in kobo; a zero width is open-ended.
type taxBand struct {
	width int64
	rate  int64 // percent
}

// Nigerian PIT brackets: 7% on the first ₦300k, 11% on the next ₦300k,
// 15% on the next ₦500k, 19% on the next ₦500k, 21% on the next ₦1.6m,
// 24% above ₦3.2m.
var personalIncomeBands = []taxBand{
	{width: 30_000_000, rate: 7},
	{width: 30_000_000, rate: 11},
	{width: 50_000_000, rate: 15},
	{width: 50_000_000, rate: 19},
	{width: 160_000_000, rate: 21},
	{width: 0, rate: 24},
}

// EstimateAnnualTax computes progressive income tax on an annual taxable
// income in kobo. Pure and stateless; used only to display estimates.
func EstimateAnnualTax(taxableIncome int64) int64 {
	var tax int64
	remaining := taxableIncome
	for _, band := range personalIncomeBands {
		if remaining <= 0 {
			break
		}
		portion := remaining
		if band.width > 0 && portion > band.width {
			portion = band.width
		}
		tax += portion * band.rate / 100
		remaining -= portion
	}
	return tax
}

type TaxService struct {
	validator *ValidationHelper
}

func NewTaxService() *TaxService {
	return &TaxService{
		validator: NewValidationHelper(),
	}
}

// EstimateTax returns a progressive tax estimate
// @Summary Estimate income tax
// @Description Compute a progressive personal income tax estimate for an annual taxable income
// @Tags tax
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{annualIncome=int64} true "Annual taxable income in kobo"
// @Success 200 {object} object{annualIncome=int64,annualTax=int64,monthlyTax=int64,effectiveRate=float64}
// @Failure 400 {object} ErrorResponse
// @Router /tax/estimate [post]
func (ts *TaxService) EstimateTax(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AnnualIncome int64 `json:"annualIncome" validate:"required,gt=0"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := ts.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	annualTax := EstimateAnnualTax(req.AnnualIncome)
	effectiveRate := 0.0
	if req.AnnualIncome > 0 {
		effectiveRate = float64(annualTax) / float64(req.AnnualIncome) * 100
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"annualIncome":  req.AnnualIncome,
		"annualTax":     annualTax,
		"monthlyTax":    annualTax / 12,
		"effectiveRate": effectiveRate,
	})
}
