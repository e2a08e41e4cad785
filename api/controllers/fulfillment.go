package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/retailpos-backend/api/middleware"
	"github.com/angelmondragon/retailpos-backend/api/responses"
	"github.com/angelmondragon/retailpos-backend/api/validators"
	"github.com/angelmondragon/retailpos-backend/internal/fulfillment"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/angelmondragon/retailpos-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type pendingOrderResponse struct {
	CustomerID   uuid.UUID          `json:"customer_id"`
	CustomerName string             `json:"customer_name"`
	ItemCount    int                `json:"item_count"`
	Total        decimal.Decimal    `json:"total"`
	WaitingSince time.Time          `json:"waiting_since"`
	Items        []listItemResponse `json:"items"`
}

type collectResponse struct {
	CustomerID  uuid.UUID   `json:"customer_id"`
	ItemIDs     []uuid.UUID `json:"item_ids"`
	CollectedAt time.Time   `json:"collected_at"`
}

// PendingPickups lists the open click-and-collect carts of the staff member's business.
func PendingPickups(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		businessID, err := middleware.BusinessUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.PendingOrders(r.Context(), businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]pendingOrderResponse, 0, len(orders))
		for _, o := range orders {
			out = append(out, pendingOrderResponse{
				CustomerID:   o.CustomerID,
				CustomerName: o.CustomerName,
				ItemCount:    o.ItemCount,
				Total:        o.Total,
				WaitingSince: o.OldestItemAt,
				Items:        newListItemsResponse(o.Items),
			})
		}
		responses.WriteSuccess(w, out)
	}
}

// MarkCollected hands a customer's cart over at the desk.
func MarkCollected(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		ctx := r.Context()
		businessID, err := middleware.BusinessUUID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		subjectID, err := middleware.SubjectUUID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		branchID, err := middleware.BranchUUID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		customerID, err := validators.URLParamUUID(r, "customerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.MarkCollected(ctx, fulfillment.Staff{
			SubjectID:  subjectID,
			BusinessID: businessID,
			BranchID:   branchID,
			Role:       enums.ActorRole(middleware.RoleFromContext(ctx)),
		}, customerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, collectResponse{
			CustomerID:  result.CustomerID,
			ItemIDs:     result.ItemIDs,
			CollectedAt: result.CollectedAt,
		})
	}
}
