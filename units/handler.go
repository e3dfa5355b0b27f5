package units

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"mfg/database"
	"mfg/model"
	"mfg/respond"
)

// UnitsHandler は GET で一覧、POST で登録・更新、DELETE (?code=) で削除します。
func UnitsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			list, err := database.ListUnits(ctx, db)
			if err != nil {
				respond.Error(w, r, "list units", err)
				return
			}
			respond.JSON(w, http.StatusOK, list)
		case http.MethodPost:
			var u model.Unit
			if !respond.Decode(w, r, &u) {
				return
			}
			if u.Code == "" || u.Name == "" {
				respond.Error(w, r, "save unit", model.NewClientError("单位编码和名称不能为空"))
				return
			}
			if err := database.UpsertUnitInTx(ctx, db, u); err != nil {
				respond.Error(w, r, "save unit", err)
				return
			}
			if err := Refresh(ctx, db); err != nil {
				respond.Error(w, r, "save unit", err)
				return
			}
			respond.JSON(w, http.StatusOK, map[string]string{"message": "单位已保存"})
		case http.MethodDelete:
			code := r.URL.Query().Get("code")
			if code == "" {
				respond.Error(w, r, "delete unit", model.NewClientError("code is required"))
				return
			}
			if err := database.DeleteUnit(ctx, db, code); err != nil {
				respond.Error(w, r, "delete unit", err)
				return
			}
			if err := Refresh(ctx, db); err != nil {
				respond.Error(w, r, "delete unit", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

func MapHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, Map())
	}
}
