package processdetail

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	"mfg/database"
	"mfg/loader"
	"mfg/model"
	"mfg/respond"
)

// DetailsHandler は GET で一覧 (?processCodeId=)、POST で登録、DELETE (?id=) で削除します。
func DetailsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			pcID, err := respond.QueryID(r, "processCodeId")
			if err != nil {
				respond.Error(w, r, "list process details", err)
				return
			}
			details, err := database.ListProcessDetails(ctx, db, pcID)
			if err != nil {
				respond.Error(w, r, "list process details", err)
				return
			}
			respond.JSON(w, http.StatusOK, details)
		case http.MethodPost:
			var d model.ProcessDetail
			if !respond.Decode(w, r, &d) {
				return
			}
			if d.ProcessCodeID == 0 || d.ProcessID == 0 {
				respond.Error(w, r, "create process detail", model.NewClientError("工艺流程和工序不能为空"))
				return
			}
			id, err := database.CreateProcessDetail(ctx, db, d)
			if err != nil {
				respond.Error(w, r, "create process detail", err)
				return
			}
			d.ID = id
			respond.JSON(w, http.StatusCreated, d)
		case http.MethodDelete:
			id, err := respond.QueryID(r, "id")
			if err != nil {
				respond.Error(w, r, "delete process detail", err)
				return
			}
			if err := database.DeleteProcessDetail(ctx, db, id); err != nil {
				respond.Error(w, r, "delete process detail", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

// ImportHandler は multipart の file (.csv は GBK、.xlsx は Excel) を取り込みます。
func ImportHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !respond.RequireMethod(w, r, http.MethodPost) {
			return
		}
		pcID, err := respond.QueryID(r, "processCodeId")
		if err != nil {
			respond.Error(w, r, "import process details", err)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			respond.Error(w, r, "import process details", model.NewClientError("文件读取失败: %v", err))
			return
		}
		defer file.Close()

		var n int
		if strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
			n, err = loader.ImportProcessDetailCSV(r.Context(), db, file, pcID)
		} else {
			n, err = ImportExcel(r.Context(), db, pcID, file)
		}
		if err != nil {
			respond.Error(w, r, "import process details", err)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]interface{}{
			"message":  fmt.Sprintf("%d 行已导入", n),
			"imported": n,
		})
	}
}

func ExportHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pcID, err := respond.QueryID(r, "processCodeId")
		if err != nil {
			respond.Error(w, r, "export process details", err)
			return
		}
		pc, err := database.GetProcessCode(r.Context(), db, pcID)
		if err != nil {
			respond.Error(w, r, "export process details", err)
			return
		}
		var buf bytes.Buffer
		if err := ExportExcel(r.Context(), db, pcID, &buf); err != nil {
			respond.Error(w, r, "export process details", err)
			return
		}
		filename := fmt.Sprintf("工艺明细_%s_%s.xlsx", pc.Code, pc.Version)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
		w.Write(buf.Bytes())
	}
}

// AutoGenerateHandler は POST ?id=<製品工艺流程ID> でカテゴリ既定の工艺明细を複写します。
func AutoGenerateHandler(db *sqlx.DB) http.HandlerFunc {
	svc := NewService(db)
	return func(w http.ResponseWriter, r *http.Request) {
		if !respond.RequireMethod(w, r, http.MethodPost) {
			return
		}
		id, err := respond.QueryID(r, "id")
		if err != nil {
			respond.Error(w, r, "auto generate details", err)
			return
		}
		created, err := svc.AutoGenerateDetails(r.Context(), id)
		if err != nil {
			respond.Error(w, r, "auto generate details", err)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]interface{}{"created": created})
	}
}
