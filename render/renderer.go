package render

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"mfg/database"
	"mfg/model"
	"mfg/units"
)

// Sheet は工单流转卡 (工単の作業指示書) 1枚分の表示データです。
type Sheet struct {
	WorkOrder    model.WorkOrder
	ProductCode  string
	ProductName  string
	UnitName     string
	ProcessCode  string
	Params       []model.ParamValue
	Details      []model.WorkOrderProcessDetail
	ProcessNames map[int64]string
}

// LoadSheet は工単と製品、工序明細をまとめて読み込みます。
func LoadSheet(ctx context.Context, q database.DBTX, workOrderID int64) (*Sheet, error) {
	wo, err := database.GetWorkOrder(ctx, q, workOrderID)
	if err != nil {
		return nil, err
	}
	s := &Sheet{WorkOrder: *wo, ProcessNames: map[int64]string{}}

	if wo.ProductID != nil {
		p, err := database.GetProduct(ctx, q, *wo.ProductID)
		if err != nil {
			return nil, err
		}
		s.ProductCode, s.ProductName = p.Code, p.Name
		if p.UnitID != nil {
			list, err := database.ListUnits(ctx, q)
			if err != nil {
				return nil, err
			}
			for _, u := range list {
				if u.ID == *p.UnitID {
					s.UnitName = units.ResolveName(u.Code)
				}
			}
		}
		if s.Params, err = database.ListParamValues(ctx, q, p.ID); err != nil {
			return nil, err
		}
	}
	if wo.ProcessCodeID != nil {
		pc, err := database.GetProcessCode(ctx, q, *wo.ProcessCodeID)
		if err != nil {
			return nil, err
		}
		s.ProcessCode = pc.Code + " / " + pc.Version
	}

	if s.Details, err = database.ListWorkOrderDetails(ctx, q, workOrderID); err != nil {
		return nil, err
	}
	processes, err := database.ListProcesses(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, p := range processes {
		s.ProcessNames[p.ID] = p.Name
	}
	return s, nil
}

const timeLayout = "2006-01-02 15:04"

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}

// RenderWorkOrderSheetHTML は工单流转卡の HTML 文書を生成します。
func RenderWorkOrderSheetHTML(s *Sheet) string {
	var sb strings.Builder
	esc := html.EscapeString
	wo := s.WorkOrder

	sb.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>工单流转卡</title>
<style>
body { font-family: "Microsoft YaHei", "Noto Sans CJK SC", sans-serif; font-size: 12px; }
table { border-collapse: collapse; width: 100%; margin-bottom: 8px; }
th, td { border: 1px solid #333; padding: 3px 5px; }
th { background: #eee; }
.left { text-align: left; }
.right { text-align: right; }
</style></head><body>`)

	sb.WriteString(fmt.Sprintf(`<h2>工单流转卡 %s</h2>`, esc(wo.WorkOrderNo)))
	sb.WriteString(`<table class="header"><tbody>`)
	sb.WriteString(fmt.Sprintf(`<tr><th>产品编码</th><td>%s</td><th>产品名称</th><td>%s</td></tr>`,
		esc(s.ProductCode), esc(s.ProductName)))
	sb.WriteString(fmt.Sprintf(`<tr><th>数量</th><td class="right">%s %s</td><th>工艺流程</th><td>%s</td></tr>`,
		wo.Quantity.String(), esc(s.UnitName), esc(s.ProcessCode)))
	sb.WriteString(fmt.Sprintf(`<tr><th>计划开始</th><td>%s</td><th>计划结束</th><td>%s</td></tr>`,
		formatTime(wo.PlanStart), formatTime(wo.PlanEnd)))
	if len(s.Params) > 0 {
		parts := make([]string, 0, len(s.Params))
		for _, p := range s.Params {
			parts = append(parts, esc(p.ParamName)+"="+esc(p.Value))
		}
		sb.WriteString(fmt.Sprintf(`<tr><th>参数</th><td colspan="3">%s</td></tr>`, strings.Join(parts, "　")))
	}
	if wo.Remark != "" {
		sb.WriteString(fmt.Sprintf(`<tr><th>备注</th><td colspan="3" class="left">%s</td></tr>`, esc(wo.Remark)))
	}
	sb.WriteString(`</tbody></table>`)

	sb.WriteString(`<table class="details"><thead><tr>
<th>工序号</th><th>工序</th><th>工艺内容</th><th>所需设备</th><th>设备时间</th><th>人工时间</th>
<th>计划开始</th><th>计划结束</th><th>程序</th><th>完工数量</th><th>签名</th>
</tr></thead><tbody>`)
	if len(s.Details) == 0 {
		sb.WriteString(`<tr><td colspan="11">没有工序明细。</td></tr>`)
	}
	for _, d := range s.Details {
		sb.WriteString(`<tr>`)
		sb.WriteString(fmt.Sprintf(`<td class="right">%d</td>`, d.StepNo))
		sb.WriteString(fmt.Sprintf(`<td>%s</td>`, esc(s.ProcessNames[d.ProcessID])))
		sb.WriteString(fmt.Sprintf(`<td class="left">%s</td>`, esc(d.ProcessContent)))
		sb.WriteString(fmt.Sprintf(`<td>%s</td>`, esc(d.RequiredEquipment)))
		sb.WriteString(fmt.Sprintf(`<td class="right">%s</td>`, d.MachineTime.String()))
		sb.WriteString(fmt.Sprintf(`<td class="right">%s</td>`, d.LaborTime.String()))
		sb.WriteString(fmt.Sprintf(`<td>%s</td>`, formatTime(d.PlanStartTime)))
		sb.WriteString(fmt.Sprintf(`<td>%s</td>`, formatTime(d.PlanEndTime)))
		sb.WriteString(fmt.Sprintf(`<td>%s</td>`, esc(d.ProgramFile)))
		sb.WriteString(`<td></td><td></td>`)
		sb.WriteString(`</tr>`)
	}
	sb.WriteString(`</tbody></table></body></html>`)

	return sb.String()
}
