package controllers

import (
	"net/http"

	"github.com/svelazco/storeflow-backend/api/responses"
	"github.com/svelazco/storeflow-backend/api/validators"
	"github.com/svelazco/storeflow-backend/internal/reports"
	"github.com/svelazco/storeflow-backend/pkg/logger"
	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

func InventoryReport(svc *reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := pagination.Params{
			Page:  validators.ParseQueryInt(r, "page", 1),
			Limit: validators.ParseQueryInt(r, "limit", pagination.ReportLimit),
		}
		report, err := svc.Inventory(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, report)
	}
}

func SalesReport(svc *reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Sales(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, report)
	}
}
