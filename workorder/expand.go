// Package workorder は工単の作成と、工艺流程テンプレートから工序明細への展開を扱います。
package workorder

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mfg/config"
	"mfg/database"
	"mfg/expression"
	"mfg/metrics"
	"mfg/model"
)

var (
	automaticMetrics = metrics.NewRecorder("automatic")
	manualMetrics    = metrics.NewRecorder("manual")
)

// Expand は工単の工艺流程を工序明細に展開し、作成した行数を返します。
// 工単に工艺流程が無い場合は何もせず 0 を返します。
// 工艺流程にテンプレート行が無い場合は工単を草稿のまま残します。
// 呼び出し側のトランザクション上で実行し、明細が空であることを前提とします。
func Expand(ctx context.Context, q database.DBTX, wo *model.WorkOrder) (int, error) {
	if wo.ProcessCodeID == nil {
		return 0, nil
	}
	start := time.Now()

	n, err := expandRows(ctx, q, wo, *wo.ProcessCodeID, false, automaticMetrics)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		zap.L().Warn("routing has no process details, work order stays draft",
			zap.String("workorder_no", wo.WorkOrderNo),
			zap.Int64("process_code_id", *wo.ProcessCodeID))
		return 0, nil
	}
	if err := database.UpdateWorkOrderStatus(ctx, q, wo.ID, model.WorkOrderPrint); err != nil {
		return 0, err
	}
	wo.Status = model.WorkOrderPrint

	automaticMetrics.RecordExpansion(n, time.Since(start))
	zap.L().Info("work order expanded",
		zap.String("workorder_no", wo.WorkOrderNo),
		zap.Int64("process_code_id", *wo.ProcessCodeID),
		zap.Int("rows", n))
	return n, nil
}

// expandRows はテンプレート行ごとに明細を1行作成します。
// skipExisting が true の場合、同じ (工単, 工序号, 工序) の行が既にあれば作成しません。
func expandRows(ctx context.Context, q database.DBTX, wo *model.WorkOrder, processCodeID int64, skipExisting bool, rec *metrics.Recorder) (int, error) {
	params := map[string]string{}
	if wo.ProductID != nil {
		var err error
		params, err = database.GetParamMap(ctx, q, *wo.ProductID)
		if err != nil {
			return 0, err
		}
	}

	templates, err := database.ListProcessDetails(ctx, q, processCodeID)
	if err != nil {
		return 0, err
	}
	legacy := config.GetConfig().LegacyParenArithmetic
	slots := schedule(wo.PlanStart, wo.PlanEnd, len(templates))

	created := 0
	for idx, t := range templates {
		if skipExisting {
			exists, err := database.WorkOrderDetailExists(ctx, q, wo.ID, t.StepNo, t.ProcessID)
			if err != nil {
				return created, err
			}
			if exists {
				continue
			}
		}

		d := model.WorkOrderProcessDetail{
			WorkOrderID:       wo.ID,
			StepNo:            t.StepNo,
			ProcessID:         t.ProcessID,
			MachineTime:       t.MachineTime,
			LaborTime:         t.LaborTime,
			ProcessContent:    expression.Expand(t.ProcessContent, params, legacy),
			RequiredEquipment: expression.Expand(t.RequiredEquipment, params, legacy),
			PendingQuantity:   decimal.Zero,
			ProcessedQuantity: decimal.Zero,
			CompletedQuantity: decimal.Zero,
			Status:            model.DetailPending,
			ProgramFile:       t.ProgramFile,
		}
		if idx == 0 {
			d.PendingQuantity = wo.Quantity
		}
		if slots != nil {
			d.PlanStartTime = &slots[idx].start
			d.PlanEndTime = &slots[idx].end
		}

		if left := expression.Placeholders(d.ProcessContent); len(left) > 0 {
			rec.RecordUnresolved(len(left))
			zap.L().Warn("unresolved placeholders in process content",
				zap.String("workorder_no", wo.WorkOrderNo),
				zap.Int("step_no", t.StepNo),
				zap.Strings("placeholders", left))
		}

		if _, err := database.CreateWorkOrderDetail(ctx, q, d); err != nil {
			return created, fmt.Errorf("failed to expand step %d of work order %s: %w", t.StepNo, wo.WorkOrderNo, err)
		}
		created++
	}
	return created, nil
}

type slot struct {
	start, end time.Time
}

// schedule は計画開始〜終了を n 等分します。期間が不明または長さ0以下の場合は nil を返します。
func schedule(planStart, planEnd *time.Time, n int) []slot {
	if planStart == nil || planEnd == nil || n == 0 || !planEnd.After(*planStart) {
		return nil
	}
	step := planEnd.Sub(*planStart) / time.Duration(n)
	slots := make([]slot, n)
	for i := range slots {
		slots[i].start = planStart.Add(step * time.Duration(i))
		slots[i].end = slots[i].start.Add(step)
	}
	slots[n-1].end = *planEnd
	return slots
}
