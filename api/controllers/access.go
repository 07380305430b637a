package controllers

import (
	"net/http"

	"github.com/omarhegazy/modelbay-backend/api/responses"
	"github.com/omarhegazy/modelbay-backend/api/validators"
	"github.com/omarhegazy/modelbay-backend/internal/entitlements"
	pkgerrors "github.com/omarhegazy/modelbay-backend/pkg/errors"
	"github.com/omarhegazy/modelbay-backend/pkg/logger"
)

// Access reports whether a buyer may open an item. A denied check answers
// 403 rather than a soft flag, and a lookup failure is surfaced as an error
// so it can never be confused with a grant.
func Access(svc entitlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entitlements service unavailable"))
			return
		}

		buyerID, err := validators.RequireQueryString(r, "uid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.RequireQueryString(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		allowed, err := svc.Allowed(r.Context(), buyerID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !allowed {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "Access Denied"))
			return
		}

		responses.WriteSuccess(w, map[string]bool{"access": true})
	}
}

// Library lists the buyer's purchases, pending ones included.
func Library(svc entitlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entitlements service unavailable"))
			return
		}

		buyerID, err := validators.RequireQueryString(r, "uid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchases, err := svc.ListPurchases(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"purchases": purchases})
	}
}
