package masteredit

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"mfg/database"
	"mfg/model"
	"mfg/respond"
)

func ProcessesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			list, err := database.ListProcesses(ctx, db)
			if err != nil {
				respond.Error(w, r, "list processes", err)
				return
			}
			respond.JSON(w, http.StatusOK, list)
		case http.MethodPost:
			var p model.Process
			if !respond.Decode(w, r, &p) {
				return
			}
			if p.Code == "" || p.Name == "" {
				respond.Error(w, r, "create process", model.NewClientError("工序编码和名称不能为空"))
				return
			}
			id, err := database.CreateProcess(ctx, db, p)
			if err != nil {
				respond.Error(w, r, "create process", err)
				return
			}
			p.ID = id
			respond.JSON(w, http.StatusCreated, p)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

func ProcessCodesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			list, err := database.ListProcessCodes(ctx, db)
			if err != nil {
				respond.Error(w, r, "list process codes", err)
				return
			}
			respond.JSON(w, http.StatusOK, list)
		case http.MethodPost:
			var pc model.ProcessCode
			if !respond.Decode(w, r, &pc) {
				return
			}
			if pc.Code == "" || pc.Version == "" {
				respond.Error(w, r, "create process code", model.NewClientError("工艺流程编码和版本不能为空"))
				return
			}
			id, err := database.CreateProcessCode(ctx, db, pc)
			if err != nil {
				respond.Error(w, r, "create process code", err)
				return
			}
			pc.ID = id
			respond.JSON(w, http.StatusCreated, pc)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

// ProductProcessCodesHandler は製品と工艺流程の紐づけを扱います (GET ?productId=)。
func ProductProcessCodesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			productID, err := respond.QueryID(r, "productId")
			if err != nil {
				respond.Error(w, r, "list product process codes", err)
				return
			}
			list, err := database.ListProductProcessCodes(ctx, db, productID)
			if err != nil {
				respond.Error(w, r, "list product process codes", err)
				return
			}
			respond.JSON(w, http.StatusOK, list)
		case http.MethodPost:
			var link model.ProductProcessCode
			if !respond.Decode(w, r, &link) {
				return
			}
			var id int64
			err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
				if _, err := database.GetProduct(ctx, tx, link.ProductID); err != nil {
					return err
				}
				if _, err := database.GetProcessCode(ctx, tx, link.ProcessCodeID); err != nil {
					return err
				}
				var err error
				id, err = database.CreateProductProcessCode(ctx, tx, link)
				return err
			})
			if err != nil {
				respond.Error(w, r, "create product process code", err)
				return
			}
			link.ID = id
			respond.JSON(w, http.StatusCreated, link)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

// CategoryProcessCodesHandler は製品カテゴリと工艺流程の紐づけを扱います (GET ?categoryId=)。
func CategoryProcessCodesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			categoryID, err := respond.QueryID(r, "categoryId")
			if err != nil {
				respond.Error(w, r, "list category process codes", err)
				return
			}
			list, err := database.ListCategoryProcessCodes(ctx, db, categoryID)
			if err != nil {
				respond.Error(w, r, "list category process codes", err)
				return
			}
			respond.JSON(w, http.StatusOK, list)
		case http.MethodPost:
			var link model.CategoryProcessCode
			if !respond.Decode(w, r, &link) {
				return
			}
			var id int64
			err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
				if _, err := database.GetCategory(ctx, tx, link.CategoryID); err != nil {
					return err
				}
				if _, err := database.GetProcessCode(ctx, tx, link.ProcessCodeID); err != nil {
					return err
				}
				var err error
				id, err = database.CreateCategoryProcessCode(ctx, tx, link)
				return err
			})
			if err != nil {
				respond.Error(w, r, "create category process code", err)
				return
			}
			link.ID = id
			respond.JSON(w, http.StatusCreated, link)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}
