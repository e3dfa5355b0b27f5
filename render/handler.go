package render

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"mfg/automation"
	"mfg/config"
	"mfg/database"
	"mfg/model"
	"mfg/respond"
)

// PrintHandler は GET (?id=) で工单流转卡の HTML を返し、
// POST (?id=) で PDF を生成して保存し、印刷待ちの工単を下達済みにします。
func PrintHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := respond.QueryID(r, "id")
		if err != nil {
			respond.Error(w, r, "print work order", err)
			return
		}
		sheet, err := LoadSheet(ctx, db, id)
		if err != nil {
			respond.Error(w, r, "print work order", err)
			return
		}
		doc := RenderWorkOrderSheetHTML(sheet)

		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(doc))
		case http.MethodPost:
			if len(sheet.Details) == 0 {
				respond.Error(w, r, "print work order", model.NewClientError("工单 %s 没有工序明细，不能打印", sheet.WorkOrder.WorkOrderNo))
				return
			}
			cfg := config.GetConfig()
			pdf, err := automation.HTMLToPDF(ctx, doc, cfg.BrowserBin)
			if err != nil {
				respond.Error(w, r, "print work order", err)
				return
			}

			outDir := cfg.PrintOutputDir
			if outDir == "" {
				outDir = os.TempDir()
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				respond.Error(w, r, "print work order", fmt.Errorf("failed to create print dir: %w", err))
				return
			}
			path := filepath.Join(outDir, uuid.NewString()+".pdf")
			if err := os.WriteFile(path, pdf, 0644); err != nil {
				respond.Error(w, r, "print work order", fmt.Errorf("failed to write pdf: %w", err))
				return
			}

			if sheet.WorkOrder.Status == model.WorkOrderPrint {
				if err := database.UpdateWorkOrderStatus(ctx, db, id, model.WorkOrderReleased); err != nil {
					respond.Error(w, r, "print work order", err)
					return
				}
			}
			zap.L().Info("work order sheet printed",
				zap.String("workorder_no", sheet.WorkOrder.WorkOrderNo),
				zap.String("path", path))

			filename := fmt.Sprintf("工单流转卡_%s.pdf", sheet.WorkOrder.WorkOrderNo)
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
			w.Write(pdf)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}
