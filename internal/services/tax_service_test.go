package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateAnnualTax(t *testing.T) {
	t.Run("zero income", func(t *testing.T) {
		assert.Equal(t, int64(0), EstimateAnnualTax(0))
	})

	t.Run("income inside the first band", func(t *testing.T) {
		// ₦200,000 at 7%
		assert.Equal(t, int64(1_400_000), EstimateAnnualTax(20_000_000))
	})

	t.Run("income exactly at the first band boundary", func(t *testing.T) {
		// ₦300,000 at 7%
		assert.Equal(t, int64(2_100_000), EstimateAnnualTax(30_000_000))
	})

	t.Run("income across several bands", func(t *testing.T) {
		// ₦1,000,000: 300k@7 + 300k@11 + 400k@15
		// = 21,000 + 33,000 + 60,000 = ₦114,000
		assert.Equal(t, int64(11_400_000), EstimateAnnualTax(100_000_000))
	})

	t.Run("income above the top band", func(t *testing.T) {
		// ₦5,000,000: full bands up to ₦3.2m plus ₦1.8m at 24%
		// = 21,000 + 33,000 + 75,000 + 95,000 + 336,000 + 432,000 = ₦992,000
		assert.Equal(t, int64(99_200_000), EstimateAnnualTax(500_000_000))
	})
}

func TestTaxService_EstimateTax(t *testing.T) {
	service := NewTaxService()

	t.Run("valid estimate", func(t *testing.T) {
		body, _ := json.Marshal(map[string]int64{"annualIncome": 100_000_000})
		req := httptest.NewRequest(http.MethodPost, "/tax/estimate", bytes.NewReader(body))
		w := httptest.NewRecorder()

		service.EstimateTax(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, float64(11_400_000), response["annualTax"])
		assert.Equal(t, float64(950_000), response["monthlyTax"])
		assert.InDelta(t, 11.4, response["effectiveRate"], 0.01)
	})

	t.Run("missing income", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tax/estimate", bytes.NewReader([]byte(`{}`)))
		w := httptest.NewRecorder()

		service.EstimateTax(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tax/estimate",
			bytes.NewReader([]byte(`{"annualIncome": 1000, "bogus": true}`)))
		w := httptest.NewRecorder()

		service.EstimateTax(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
