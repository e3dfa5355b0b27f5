package masteredit

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"mfg/database"
	"mfg/mastermanager"
	"mfg/model"
	"mfg/respond"
)

// ProductsHandler は製品 (is_material=0) の一覧と登録・更新を扱います。
func ProductsHandler(db *sqlx.DB) http.HandlerFunc {
	return productsHandler(db, false)
}

// MaterialsHandler は物料 (is_material=1) の一覧と登録・更新を扱います。
func MaterialsHandler(db *sqlx.DB) http.HandlerFunc {
	return productsHandler(db, true)
}

func productsHandler(db *sqlx.DB, isMaterial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			if id := optionalID(r, "id"); id != 0 {
				view, err := mastermanager.GetProductView(ctx, db, id)
				if err != nil {
					respond.Error(w, r, "get product", err)
					return
				}
				respond.JSON(w, http.StatusOK, view)
				return
			}
			list, err := database.ListProducts(ctx, db, isMaterial, optionalID(r, "categoryId"))
			if err != nil {
				respond.Error(w, r, "list products", err)
				return
			}
			respond.JSON(w, http.StatusOK, list)
		case http.MethodPost:
			var input model.ProductInput
			if !respond.Decode(w, r, &input) {
				return
			}
			input.IsMaterial = isMaterial

			var saved *model.Product
			err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
				var err error
				saved, err = mastermanager.SaveProduct(ctx, tx, input)
				return err
			})
			if err != nil {
				respond.Error(w, r, "save product", err)
				return
			}
			respond.JSON(w, http.StatusOK, saved)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

type paramsRequest struct {
	ProductID int64             `json:"productId"`
	Params    map[string]string `json:"params"`
}

// ProductParamsHandler は GET (?productId=) でパラメータ値一覧、POST で全件置き換えます。
func ProductParamsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			productID, err := respond.QueryID(r, "productId")
			if err != nil {
				respond.Error(w, r, "list product params", err)
				return
			}
			values, err := database.ListParamValues(ctx, db, productID)
			if err != nil {
				respond.Error(w, r, "list product params", err)
				return
			}
			respond.JSON(w, http.StatusOK, values)
		case http.MethodPost:
			var req paramsRequest
			if !respond.Decode(w, r, &req) {
				return
			}
			err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
				p, err := database.GetProduct(ctx, tx, req.ProductID)
				if err != nil {
					return err
				}
				return database.ReplaceParamValues(ctx, tx, p.ID, p.CategoryID, req.Params)
			})
			if err != nil {
				respond.Error(w, r, "save product params", err)
				return
			}
			respond.JSON(w, http.StatusOK, map[string]string{"message": "参数已保存"})
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}
