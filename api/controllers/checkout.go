package controllers

import (
	"net/http"
	"strings"

	"github.com/jvacosta/dailyfish-backend/api/responses"
	"github.com/jvacosta/dailyfish-backend/api/validators"
	checkoutsvc "github.com/jvacosta/dailyfish-backend/internal/checkout"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	pkgerrors "github.com/jvacosta/dailyfish-backend/pkg/errors"
	"github.com/jvacosta/dailyfish-backend/pkg/logger"
)

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
	// Blank address means "use the profile address"; the service decides.
	DeliveryAddress string  `json:"delivery_address"`
	ContactNumber   string  `json:"contact_number" validate:"required"`
	Notes           *string `json:"notes,omitempty"`
}

// Checkout converts the buyer's active cart into a pending order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		buyerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(payload.PaymentMethod))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_method"))
			return
		}

		order, err := svc.Execute(r.Context(), buyerID, checkoutsvc.CheckoutInput{
			PaymentMethod:   method,
			DeliveryAddress: payload.DeliveryAddress,
			ContactNumber:   payload.ContactNumber,
			Notes:           payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
