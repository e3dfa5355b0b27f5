package workorder

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mfg/database"
	"mfg/model"
)

// RecordFeedback は工序の完工数量を報告します。
// 完工数量は当該工序の待加工数量から差し引かれ、次の工序の待加工数量に加算されます。
func (s *Service) RecordFeedback(ctx context.Context, detailID int64, qty decimal.Decimal) (*model.WorkOrderProcessDetail, error) {
	if !qty.IsPositive() {
		return nil, model.NewClientError("完工数量必须大于0")
	}
	var result model.WorkOrderProcessDetail
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		d, err := database.GetWorkOrderDetail(ctx, tx, detailID)
		if err != nil {
			return err
		}
		wo, err := database.GetWorkOrder(ctx, tx, d.WorkOrderID)
		if err != nil {
			return err
		}
		switch wo.Status {
		case model.WorkOrderPrint, model.WorkOrderReleased, model.WorkOrderInProgress:
		default:
			return model.NewClientError("工单 %s 状态为 %s，不能报工", wo.WorkOrderNo, wo.Status)
		}
		if qty.GreaterThan(d.PendingQuantity) {
			return model.NewClientError("完工数量 %s 超过待加工数量 %s", qty, d.PendingQuantity)
		}

		details, err := database.ListWorkOrderDetails(ctx, tx, d.WorkOrderID)
		if err != nil {
			return err
		}

		d.PendingQuantity = d.PendingQuantity.Sub(qty)
		d.ProcessedQuantity = d.ProcessedQuantity.Add(qty)
		d.CompletedQuantity = d.CompletedQuantity.Add(qty)
		d.Status = model.DetailInProgress
		if d.PendingQuantity.IsZero() && d.CompletedQuantity.GreaterThanOrEqual(wo.Quantity) {
			d.Status = model.DetailCompleted
		}
		if err := database.UpdateWorkOrderDetailProgress(ctx, tx, *d); err != nil {
			return err
		}

		allDone := true
		for i := range details {
			cur := &details[i]
			if cur.ID == d.ID {
				*cur = *d
				if i+1 < len(details) {
					next := &details[i+1]
					next.PendingQuantity = next.PendingQuantity.Add(qty)
					if err := database.UpdateWorkOrderDetailProgress(ctx, tx, *next); err != nil {
						return err
					}
				}
			}
			if cur.Status != model.DetailCompleted && cur.Status != model.DetailSkipped {
				allDone = false
			}
		}

		status := model.WorkOrderInProgress
		if allDone {
			status = model.WorkOrderCompleted
		}
		if status != wo.Status {
			if err := database.UpdateWorkOrderStatus(ctx, tx, wo.ID, status); err != nil {
				return err
			}
			zap.L().Info("work order status changed",
				zap.String("workorder_no", wo.WorkOrderNo),
				zap.String("from", wo.Status),
				zap.String("to", status))
		}
		result = *d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
