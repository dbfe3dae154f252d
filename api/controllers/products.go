package controllers

import (
	"net/http"

	"github.com/omarhassan/retailops-backend/api/responses"
	"github.com/omarhassan/retailops-backend/api/validators"
	"github.com/omarhassan/retailops-backend/internal/audit"
	"github.com/omarhassan/retailops-backend/internal/catalog"
	pkgerrors "github.com/omarhassan/retailops-backend/pkg/errors"
	"github.com/omarhassan/retailops-backend/pkg/logger"
)

// GetProduct fetches one product by id.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseURLUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// LookupProduct resolves a product by barcode, falling back to product code.
// POS scanners hit this endpoint on every scan.
func LookupProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		barcode := validators.ParseQueryString(r, "barcode")
		code := validators.ParseQueryString(r, "code")

		product, err := svc.LookupProduct(r.Context(), barcode, code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductAuditTrail pages through a product's audit entries, newest first.
func ProductAuditTrail(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		productID, err := validators.ParseURLUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListByProduct(r.Context(), productID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, page.Data, page.Total)
	}
}
