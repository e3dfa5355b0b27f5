package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfg/database"
	"mfg/loader"
	"mfg/model"
)

func TestRenderWorkOrderSheetHTML(t *testing.T) {
	start := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	s := &Sheet{
		WorkOrder:    model.WorkOrder{WorkOrderNo: "WO000007", Quantity: decimal.NewFromInt(20), PlanStart: &start, Remark: "<急>"},
		ProductCode:  "FL-12",
		ProductName:  "法兰",
		UnitName:     "件",
		Params:       []model.ParamValue{{ParamName: "D", Value: "12"}},
		ProcessNames: map[int64]string{3: "钻孔"},
		Details: []model.WorkOrderProcessDetail{
			{StepNo: 20, ProcessID: 3, ProcessContent: "钻孔直径15mm", MachineTime: decimal.NewFromInt(15)},
		},
	}

	doc := RenderWorkOrderSheetHTML(s)
	assert.Contains(t, doc, "工单流转卡 WO000007")
	assert.Contains(t, doc, "20 件")
	assert.Contains(t, doc, "D=12")
	assert.Contains(t, doc, "2026-04-01 08:00")
	assert.Contains(t, doc, "<td>钻孔</td>")
	assert.Contains(t, doc, "钻孔直径15mm")
	assert.Contains(t, doc, "&lt;急&gt;")
	assert.NotContains(t, doc, "没有工序明细")
}

func TestRenderWorkOrderSheetHTMLWithoutDetails(t *testing.T) {
	doc := RenderWorkOrderSheetHTML(&Sheet{WorkOrder: model.WorkOrder{WorkOrderNo: "WO1"}})
	assert.Contains(t, doc, "没有工序明细")
}

func TestPrintHandlerServesHTMLPreview(t *testing.T) {
	db, err := loader.OpenDatabase(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	id, err := database.CreateWorkOrder(ctx, db, model.WorkOrder{WorkOrderNo: "WO-PREVIEW", Quantity: decimal.NewFromInt(1), Status: model.WorkOrderDraft})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	PrintHandler(db)(rec, httptest.NewRequest(http.MethodGet, "/api/workorders/print?id="+strconv.FormatInt(id, 10), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "WO-PREVIEW")

	rec = httptest.NewRecorder()
	PrintHandler(db)(rec, httptest.NewRequest(http.MethodPost, "/api/workorders/print?id="+strconv.FormatInt(id, 10), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	PrintHandler(db)(rec, httptest.NewRequest(http.MethodGet, "/api/workorders/print?id=404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
