package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/retailpos-backend/api/middleware"
	"github.com/angelmondragon/retailpos-backend/api/responses"
	"github.com/angelmondragon/retailpos-backend/api/validators"
	"github.com/angelmondragon/retailpos-backend/internal/shoppinglist"
	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/angelmondragon/retailpos-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddListItemRequest is the body of POST /list/items. Either product_id or
// text must be present; weight only applies to weight-priced products.
type AddListItemRequest struct {
	ProductID         *uuid.UUID       `json:"product_id"`
	Quantity          int              `json:"quantity" validate:"omitempty,min=1,max=999"`
	Weight            *decimal.Decimal `json:"weight"`
	IsClickAndCollect bool             `json:"is_click_and_collect"`
	Text              string           `json:"text" validate:"max=200"`
}

// SubmitCartRequest optionally routes the cart to a branch other than the token's.
type SubmitCartRequest struct {
	BranchID *uuid.UUID `json:"branch_id"`
}

type addListItemResponse struct {
	Item   listItemResponse `json:"item"`
	Merged bool             `json:"merged"`
	Cart   cartResponse     `json:"cart"`
}

type submissionResponse struct {
	ID          uuid.UUID       `json:"id"`
	BranchID    *uuid.UUID      `json:"branch_id,omitempty"`
	LineCount   int             `json:"line_count"`
	Total       decimal.Decimal `json:"total"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

func ListItems(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := requireCustomer(w, r, svc == nil, logg)
		if !ok {
			return
		}
		items, err := svc.ListItems(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListItemsResponse(items))
	}
}

// AddListItem adds a product or free-text row, merging into an open row where allowed.
func AddListItem(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := requireCustomer(w, r, svc == nil, logg)
		if !ok {
			return
		}

		var payload AddListItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.ProductID == nil && strings.TrimSpace(payload.Text) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product_id or text is required"))
			return
		}

		result, err := svc.AddItem(r.Context(), customerID, shoppinglist.AddItemInput{
			ProductID:         payload.ProductID,
			Quantity:          payload.Quantity,
			Weight:            payload.Weight,
			IsClickAndCollect: payload.IsClickAndCollect,
			CustomText:        validators.SanitizeString(payload.Text, 200),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.Merged {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, addListItemResponse{
			Item:   newListItemResponse(result.Item),
			Merged: result.Merged,
			Cart:   newCartResponse(&result.Cart),
		})
	}
}

func ToggleListItem(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := requireCustomer(w, r, svc == nil, logg)
		if !ok {
			return
		}
		itemID, err := validators.URLParamUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.ToggleCompleted(r.Context(), customerID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListItemResponse(*item))
	}
}

func DeleteListItem(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := requireCustomer(w, r, svc == nil, logg)
		if !ok {
			return
		}
		itemID, err := validators.URLParamUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteItem(r.Context(), customerID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}

// ClearList deletes the whole list, or only completed rows with ?completed=true.
func ClearList(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := requireCustomer(w, r, svc == nil, logg)
		if !ok {
			return
		}
		completedOnly, err := validators.ParseQueryBool(r, "completed", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		deleted, err := svc.ClearList(r.Context(), customerID, completedOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": deleted})
	}
}

func GetCart(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := requireCustomer(w, r, svc == nil, logg)
		if !ok {
			return
		}
		view, err := svc.Cart(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

// StageCartItem moves an existing list row into the click-and-collect cart.
func StageCartItem(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := requireCustomer(w, r, svc == nil, logg)
		if !ok {
			return
		}
		itemID, err := validators.URLParamUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.StageItem(r.Context(), customerID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

// RemoveCartItem takes a row out of the cart; the row stays on the list.
func RemoveCartItem(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := requireCustomer(w, r, svc == nil, logg)
		if !ok {
			return
		}
		itemID, err := validators.URLParamUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.RemoveFromCart(r.Context(), customerID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

func SubmitCart(svc shoppinglist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := requireCustomer(w, r, svc == nil, logg)
		if !ok {
			return
		}

		var payload SubmitCartRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		businessID, err := middleware.BusinessUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dest := shoppinglist.Destination{BusinessID: businessID, BranchID: payload.BranchID}
		if dest.BranchID == nil {
			if dest.BranchID, err = middleware.BranchUUID(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		submission, err := svc.SubmitCart(r.Context(), customerID, dest)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, submissionResponse{
			ID:          submission.ID,
			BranchID:    submission.BranchID,
			LineCount:   len(submission.Lines),
			Total:       submission.Total,
			SubmittedAt: submission.SubmittedAt,
		})
	}
}

// requireCustomer writes the error response itself and reports whether the handler may continue.
func requireCustomer(w http.ResponseWriter, r *http.Request, unavailable bool, logg *logger.Logger) (uuid.UUID, bool) {
	if unavailable {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shopping list service unavailable"))
		return uuid.Nil, false
	}
	customerID, err := middleware.CustomerUUID(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, false
	}
	return customerID, true
}
