package workorder

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"mfg/database"
	"mfg/model"
	"mfg/respond"
)

// WorkOrdersHandler は GET で工単一覧、POST で工単の新規登録を行います。
func WorkOrdersHandler(db *sqlx.DB) http.HandlerFunc {
	svc := NewService(db)
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			orders, err := database.ListWorkOrders(r.Context(), db, r.URL.Query().Get("status"))
			if err != nil {
				respond.Error(w, r, "list work orders", err)
				return
			}
			respond.JSON(w, http.StatusOK, orders)
		case http.MethodPost:
			var input model.WorkOrder
			if !respond.Decode(w, r, &input) {
				return
			}
			wo, err := svc.Create(r.Context(), input)
			if err != nil {
				respond.Error(w, r, "create work order", err)
				return
			}
			respond.JSON(w, http.StatusCreated, wo)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

type createByOrderRequest struct {
	OrderID int64 `json:"orderId"`
}

// CreateByOrderHandler は POST {orderId} で受注から工単を作成します。
func CreateByOrderHandler(db *sqlx.DB) http.HandlerFunc {
	svc := NewService(db)
	return func(w http.ResponseWriter, r *http.Request) {
		if !respond.RequireMethod(w, r, http.MethodPost) {
			return
		}
		var req createByOrderRequest
		if !respond.Decode(w, r, &req) {
			return
		}
		wo, err := svc.CreateFromOrder(r.Context(), req.OrderID)
		if err != nil {
			respond.Error(w, r, "create work order from order", err)
			return
		}
		respond.JSON(w, http.StatusCreated, wo)
	}
}

func UpdateHandler(db *sqlx.DB) http.HandlerFunc {
	svc := NewService(db)
	return func(w http.ResponseWriter, r *http.Request) {
		if !respond.RequireMethod(w, r, http.MethodPost) {
			return
		}
		id, err := respond.QueryID(r, "id")
		if err != nil {
			respond.Error(w, r, "update work order", err)
			return
		}
		var input model.WorkOrder
		if !respond.Decode(w, r, &input) {
			return
		}
		wo, err := svc.Update(r.Context(), id, input)
		if err != nil {
			respond.Error(w, r, "update work order", err)
			return
		}
		respond.JSON(w, http.StatusOK, wo)
	}
}

func GenerateDetailsHandler(db *sqlx.DB) http.HandlerFunc {
	svc := NewService(db)
	return func(w http.ResponseWriter, r *http.Request) {
		if !respond.RequireMethod(w, r, http.MethodPost) {
			return
		}
		id, err := respond.QueryID(r, "id")
		if err != nil {
			respond.Error(w, r, "generate details", err)
			return
		}
		created, err := svc.GenerateDetails(r.Context(), id)
		if err != nil {
			respond.Error(w, r, "generate details", err)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]interface{}{
			"message": "工序明细已生成",
			"created": created,
		})
	}
}

func DetailsHandler(db *sqlx.DB) http.HandlerFunc {
	svc := NewService(db)
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.QueryID(r, "id")
		if err != nil {
			respond.Error(w, r, "list details", err)
			return
		}
		wo, details, err := svc.Details(r.Context(), id)
		if err != nil {
			respond.Error(w, r, "list details", err)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]interface{}{
			"workorder": wo,
			"details":   details,
		})
	}
}

func DeleteDetailsHandler(db *sqlx.DB) http.HandlerFunc {
	svc := NewService(db)
	return func(w http.ResponseWriter, r *http.Request) {
		if !respond.RequireMethod(w, r, http.MethodPost) {
			return
		}
		id, err := respond.QueryID(r, "id")
		if err != nil {
			respond.Error(w, r, "delete details", err)
			return
		}
		removed, err := svc.DeleteDetails(r.Context(), id)
		if err != nil {
			respond.Error(w, r, "delete details", err)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]interface{}{"removed": removed})
	}
}

type feedbackRequest struct {
	DetailID int64           `json:"detailId"`
	Quantity decimal.Decimal `json:"quantity"`
}

func FeedbackHandler(db *sqlx.DB) http.HandlerFunc {
	svc := NewService(db)
	return func(w http.ResponseWriter, r *http.Request) {
		if !respond.RequireMethod(w, r, http.MethodPost) {
			return
		}
		var req feedbackRequest
		if !respond.Decode(w, r, &req) {
			return
		}
		d, err := svc.RecordFeedback(r.Context(), req.DetailID, req.Quantity)
		if err != nil {
			respond.Error(w, r, "record feedback", err)
			return
		}
		respond.JSON(w, http.StatusOK, d)
	}
}
