package masteredit

import (
	"net/http"
	"strconv"

	"github.com/jmoiron/sqlx"

	"mfg/database"
	"mfg/model"
	"mfg/respond"
)

func CompaniesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			list, err := database.ListCompanies(ctx, db)
			if err != nil {
				respond.Error(w, r, "list companies", err)
				return
			}
			respond.JSON(w, http.StatusOK, list)
		case http.MethodPost:
			var c model.Company
			if !respond.Decode(w, r, &c) {
				return
			}
			if c.Name == "" {
				respond.Error(w, r, "create company", model.NewClientError("公司名称不能为空"))
				return
			}
			id, err := database.CreateCompany(ctx, db, c)
			if err != nil {
				respond.Error(w, r, "create company", err)
				return
			}
			c.ID = id
			respond.JSON(w, http.StatusCreated, c)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

func CategoriesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			list, err := database.ListCategories(ctx, db)
			if err != nil {
				respond.Error(w, r, "list categories", err)
				return
			}
			respond.JSON(w, http.StatusOK, list)
		case http.MethodPost:
			var c model.ProductCategory
			if !respond.Decode(w, r, &c) {
				return
			}
			if c.CompanyID == 0 || c.Code == "" {
				respond.Error(w, r, "create category", model.NewClientError("公司和产品类编码不能为空"))
				return
			}
			id, err := database.CreateCategory(ctx, db, c)
			if err != nil {
				respond.Error(w, r, "create category", err)
				return
			}
			c.ID = id
			respond.JSON(w, http.StatusCreated, c)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

// CategoryParamsHandler は GET (?categoryId=) でパラメータ項目一覧、POST で追加します。
func CategoryParamsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			categoryID, err := respond.QueryID(r, "categoryId")
			if err != nil {
				respond.Error(w, r, "list category params", err)
				return
			}
			list, err := database.ListCategoryParams(ctx, db, categoryID)
			if err != nil {
				respond.Error(w, r, "list category params", err)
				return
			}
			respond.JSON(w, http.StatusOK, list)
		case http.MethodPost:
			var p model.CategoryParam
			if !respond.Decode(w, r, &p) {
				return
			}
			if p.CategoryID == 0 || p.Name == "" {
				respond.Error(w, r, "create category param", model.NewClientError("产品类和参数名不能为空"))
				return
			}
			if _, err := database.GetCategory(ctx, db, p.CategoryID); err != nil {
				respond.Error(w, r, "create category param", err)
				return
			}
			id, err := database.CreateCategoryParam(ctx, db, p.CategoryID, p.Name)
			if err != nil {
				respond.Error(w, r, "create category param", err)
				return
			}
			p.ID = id
			respond.JSON(w, http.StatusCreated, p)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

func optionalID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return id
}
