package controllers

import (
	"net/http"

	"github.com/avaldera/localmart-backend/api/responses"
	"github.com/avaldera/localmart-backend/api/validators"
	"github.com/avaldera/localmart-backend/internal/wallet"
	"github.com/avaldera/localmart-backend/pkg/logger"
	"github.com/avaldera/localmart-backend/pkg/pagination"
)

// WalletBalance returns the caller's wallet balance. Accounts that never
// moved money read as a zero balance.
func WalletBalance(service wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := service.Balance(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, walletToView(balance))
	}
}

// WalletHistory returns the caller's ledger entries, newest first.
func WalletHistory(service wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, pagination.MaxOffset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := service.History(r.Context(), accountID, limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transactionsToViews(entries))
	}
}
