package masteredit

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"mfg/database"
	"mfg/model"
	"mfg/respond"
)

// OrdersHandler は受注の一覧と登録を扱います。受注番号が空の場合は採番します。
func OrdersHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			list, err := database.ListSalesOrders(ctx, db)
			if err != nil {
				respond.Error(w, r, "list orders", err)
				return
			}
			respond.JSON(w, http.StatusOK, list)
		case http.MethodPost:
			var o model.SalesOrder
			if !respond.Decode(w, r, &o) {
				return
			}
			if o.CompanyID == 0 || !o.Quantity.IsPositive() {
				respond.Error(w, r, "create order", model.NewClientError("客户和数量不能为空"))
				return
			}
			err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
				if o.OrderNo == "" {
					no, err := database.NextSequenceInTx(ctx, tx, "SO", "SO", 6)
					if err != nil {
						return err
					}
					o.OrderNo = no
				}
				id, err := database.CreateSalesOrder(ctx, tx, o)
				o.ID = id
				return err
			})
			if err != nil {
				respond.Error(w, r, "create order", err)
				return
			}
			o.TotalAmount = o.Quantity.Mul(o.UnitPrice).Round(2)
			respond.JSON(w, http.StatusCreated, o)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

// OrdersWithoutWorkOrderHandler はまだ工単が作成されていない受注を返します。
func OrdersWithoutWorkOrderHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !respond.RequireMethod(w, r, http.MethodGet) {
			return
		}
		list, err := database.ListSalesOrdersWithoutWorkOrder(r.Context(), db)
		if err != nil {
			respond.Error(w, r, "list orders without work order", err)
			return
		}
		respond.JSON(w, http.StatusOK, list)
	}
}
