package workorder

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"mfg/config"
	"mfg/database"
	"mfg/model"
)

type Service struct {
	db *sqlx.DB
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

func workOrderPrefix() string {
	if p := config.GetConfig().WorkOrderPrefix; p != "" {
		return p
	}
	return "WO"
}

func validate(input model.WorkOrder) error {
	if !input.Quantity.IsPositive() {
		return model.NewClientError("工单数量必须大于0")
	}
	if input.PlanStart != nil && input.PlanEnd != nil && input.PlanEnd.Before(*input.PlanStart) {
		return model.NewClientError("计划结束时间不能早于计划开始时间")
	}
	return nil
}

// Create は工単を登録し、同じトランザクションで工艺流程を展開します。
// 工単番号が空の場合は採番します。
func (s *Service) Create(ctx context.Context, input model.WorkOrder) (*model.WorkOrder, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	var wo *model.WorkOrder
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		wo, err = createInTx(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return wo, nil
}

func createInTx(ctx context.Context, tx *sqlx.Tx, input model.WorkOrder) (*model.WorkOrder, error) {
	wo := input
	wo.Status = model.WorkOrderDraft
	if wo.WorkOrderNo == "" {
		no, err := database.NextSequenceInTx(ctx, tx, "WO", workOrderPrefix(), 6)
		if err != nil {
			return nil, err
		}
		wo.WorkOrderNo = no
	}
	id, err := database.CreateWorkOrder(ctx, tx, wo)
	if err != nil {
		return nil, err
	}
	wo.ID = id
	if _, err := Expand(ctx, tx, &wo); err != nil {
		return nil, err
	}
	return &wo, nil
}

// CreateFromOrder は受注から工単を作成します。工単番号は WO+受注番号、製品と数量は受注のものです。
// 1つの受注から作成できる工単は1つだけです。
func (s *Service) CreateFromOrder(ctx context.Context, orderID int64) (*model.WorkOrder, error) {
	if orderID == 0 {
		return nil, model.NewClientError("缺少orderId")
	}
	var wo *model.WorkOrder
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		order, err := database.GetSalesOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		exists, err := database.WorkOrderExistsForOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if exists {
			return model.NewClientError("订单 %s 已生成工单", order.OrderNo)
		}
		input := model.WorkOrder{
			WorkOrderNo: "WO" + order.OrderNo,
			OrderID:     &order.ID,
			ProductID:   order.ProductID,
			Quantity:    order.Quantity,
			Remark:      fmt.Sprintf("由订单%s自动生成", order.OrderNo),
		}
		if err := validate(input); err != nil {
			return err
		}
		wo, err = createInTx(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("work order created from sales order",
		zap.Int64("order_id", orderID),
		zap.String("workorder_no", wo.WorkOrderNo))
	return wo, nil
}

func sameProcessCode(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Update は工単を更新します。工艺流程が変わった場合は既存の明細を全て削除してから展開し直します。
func (s *Service) Update(ctx context.Context, id int64, input model.WorkOrder) (*model.WorkOrder, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	var wo model.WorkOrder
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		current, err := database.GetWorkOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Status == model.WorkOrderCompleted || current.Status == model.WorkOrderCancelled {
			return model.NewClientError("工单 %s 已结束，不能修改", current.WorkOrderNo)
		}

		wo = *current
		wo.OrderID = input.OrderID
		wo.ProductID = input.ProductID
		wo.Quantity = input.Quantity
		wo.ProcessCodeID = input.ProcessCodeID
		wo.PlanStart = input.PlanStart
		wo.PlanEnd = input.PlanEnd
		wo.Remark = input.Remark

		rerun := !sameProcessCode(current.ProcessCodeID, input.ProcessCodeID)
		if rerun {
			if current.Status == model.WorkOrderInProgress {
				return model.NewClientError("工单 %s 已开始生产，不能更换工艺流程", current.WorkOrderNo)
			}
			removed, err := database.DeleteWorkOrderDetails(ctx, tx, id)
			if err != nil {
				return err
			}
			zap.L().Info("routing changed, regenerating details",
				zap.String("workorder_no", wo.WorkOrderNo),
				zap.Int64("removed", removed))
			wo.Status = model.WorkOrderDraft
		}

		if err := database.UpdateWorkOrder(ctx, tx, wo); err != nil {
			return err
		}
		if rerun {
			_, err = Expand(ctx, tx, &wo)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

// GenerateDetails は手動で工序明細を生成します (草稿状態の工単のみ)。
// 工単に工艺流程が無い場合は製品の既定、続いて製品カテゴリの既定を使い、工単に書き戻します。
func (s *Service) GenerateDetails(ctx context.Context, id int64) (int, error) {
	start := time.Now()
	created := 0
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		wo, err := database.GetWorkOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if wo.Status != model.WorkOrderDraft {
			return model.NewClientError("工单 %s 状态为 %s，只有草稿状态才能生成工序明细", wo.WorkOrderNo, wo.Status)
		}
		count, err := database.CountWorkOrderDetails(ctx, tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return model.NewClientError("工单 %s 已有工序明细，请先删除后再生成", wo.WorkOrderNo)
		}

		processCodeID, err := resolveProcessCode(ctx, tx, wo)
		if err != nil {
			return err
		}
		if processCodeID == nil {
			return model.NewClientError("工单 %s 未设置工艺流程，且产品及产品类均无默认工艺流程", wo.WorkOrderNo)
		}
		if wo.ProcessCodeID == nil {
			if err := database.SetWorkOrderProcessCode(ctx, tx, id, *processCodeID); err != nil {
				return err
			}
			wo.ProcessCodeID = processCodeID
		}

		created, err = expandRows(ctx, tx, wo, *processCodeID, true, manualMetrics)
		if err != nil {
			return err
		}
		if created == 0 {
			return model.NewClientError("工艺流程 %d 没有工艺明细，无法生成工序明细", *processCodeID)
		}
		return database.UpdateWorkOrderStatus(ctx, tx, id, model.WorkOrderPrint)
	})
	if err != nil {
		return 0, err
	}
	manualMetrics.RecordExpansion(created, time.Since(start))
	return created, nil
}

func resolveProcessCode(ctx context.Context, q database.DBTX, wo *model.WorkOrder) (*int64, error) {
	if wo.ProcessCodeID != nil {
		return wo.ProcessCodeID, nil
	}
	if wo.ProductID == nil {
		return nil, nil
	}
	pcID, err := database.DefaultProcessCodeForProduct(ctx, q, *wo.ProductID)
	if err != nil || pcID != nil {
		return pcID, err
	}
	product, err := database.GetProduct(ctx, q, *wo.ProductID)
	if err != nil {
		return nil, err
	}
	return database.DefaultProcessCodeForCategory(ctx, q, product.CategoryID)
}

// DeleteDetails は工序明細を全て削除し、工単を草稿に戻します。
func (s *Service) DeleteDetails(ctx context.Context, id int64) (int64, error) {
	var removed int64
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		wo, err := database.GetWorkOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		switch wo.Status {
		case model.WorkOrderInProgress, model.WorkOrderCompleted:
			return model.NewClientError("工单 %s 已开始生产，不能删除工序明细", wo.WorkOrderNo)
		}
		removed, err = database.DeleteWorkOrderDetails(ctx, tx, id)
		if err != nil {
			return err
		}
		return database.UpdateWorkOrderStatus(ctx, tx, id, model.WorkOrderDraft)
	})
	return removed, err
}

// Details は工単と工序明細を返します。
func (s *Service) Details(ctx context.Context, id int64) (*model.WorkOrder, []model.WorkOrderProcessDetail, error) {
	wo, err := database.GetWorkOrder(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	details, err := database.ListWorkOrderDetails(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	return wo, details, nil
}
