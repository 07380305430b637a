package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/omarhegazy/modelbay-backend/api/responses"
	"github.com/omarhegazy/modelbay-backend/api/validators"
	"github.com/omarhegazy/modelbay-backend/internal/entitlements"
	pkgerrors "github.com/omarhegazy/modelbay-backend/pkg/errors"
	"github.com/omarhegazy/modelbay-backend/pkg/logger"
)

// Download resolves the asset reference for a paid model purchase. Courses
// have no downloadable asset and resolve to not found.
func Download(svc entitlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entitlements service unavailable"))
			return
		}

		itemID := chi.URLParam(r, "itemId")
		if itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id required"))
			return
		}
		buyerID, err := validators.RequireQueryString(r, "uid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assetRef, err := svc.AssetRef(r.Context(), buyerID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"asset_ref": assetRef})
	}
}
