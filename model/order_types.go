package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 工単ステータス
const (
	WorkOrderDraft      = "draft"
	WorkOrderPrint      = "print"
	WorkOrderReleased   = "released"
	WorkOrderInProgress = "in_progress"
	WorkOrderCompleted  = "completed"
	WorkOrderCancelled  = "cancelled"
)

// 工序明細ステータス
const (
	DetailPending    = "pending"
	DetailInProgress = "in_progress"
	DetailCompleted  = "completed"
	DetailSkipped    = "skipped"
)

type WorkOrder struct {
	ID            int64           `db:"id" json:"id"`
	WorkOrderNo   string          `db:"workorder_no" json:"workorderNo"`
	OrderID       *int64          `db:"order_id" json:"orderId,omitempty"`
	ProductID     *int64          `db:"product_id" json:"productId,omitempty"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	ProcessCodeID *int64          `db:"process_code_id" json:"processCodeId,omitempty"`
	PlanStart     *time.Time      `db:"plan_start" json:"planStart,omitempty"`
	PlanEnd       *time.Time      `db:"plan_end" json:"planEnd,omitempty"`
	Status        string          `db:"status" json:"status"`
	Remark        string          `db:"remark" json:"remark"`
}

// WorkOrderProcessDetail は工艺流程のテンプレート行を工単ごとに展開した行です。
type WorkOrderProcessDetail struct {
	ID                int64           `db:"id" json:"id"`
	WorkOrderID       int64           `db:"workorder_id" json:"workorderId"`
	StepNo            int             `db:"step_no" json:"stepNo"`
	ProcessID         int64           `db:"process_id" json:"processId"`
	MachineTime       decimal.Decimal `db:"machine_time" json:"machineTime"`
	LaborTime         decimal.Decimal `db:"labor_time" json:"laborTime"`
	ProcessContent    string          `db:"process_content" json:"processContent"`
	RequiredEquipment string          `db:"required_equipment" json:"requiredEquipment"`
	PlanStartTime     *time.Time      `db:"plan_start_time" json:"planStartTime,omitempty"`
	PlanEndTime       *time.Time      `db:"plan_end_time" json:"planEndTime,omitempty"`
	PendingQuantity   decimal.Decimal `db:"pending_quantity" json:"pendingQuantity"`
	ProcessedQuantity decimal.Decimal `db:"processed_quantity" json:"processedQuantity"`
	CompletedQuantity decimal.Decimal `db:"completed_quantity" json:"completedQuantity"`
	Status            string          `db:"status" json:"status"`
	Remark            string          `db:"remark" json:"remark"`
	ProgramFile       string          `db:"program_file" json:"programFile"`
}

type Process struct {
	ID          int64  `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

// ProcessCode は工艺流程 (ルーティング) のコードとバージョンです。
type ProcessCode struct {
	ID          int64  `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	Version     string `db:"version" json:"version"`
	Description string `db:"description" json:"description"`
	ProcessPDF  string `db:"process_pdf" json:"processPdf"`
}

// ProcessDetail は工艺流程のテンプレート行です。ProcessContent には ${D+3} のような
// プレースホルダを含めることができます。
type ProcessDetail struct {
	ID                int64           `db:"id" json:"id"`
	ProcessCodeID     int64           `db:"process_code_id" json:"processCodeId"`
	StepNo            int             `db:"step_no" json:"stepNo"`
	ProcessID         int64           `db:"process_id" json:"processId"`
	MachineTime       decimal.Decimal `db:"machine_time" json:"machineTime"`
	LaborTime         decimal.Decimal `db:"labor_time" json:"laborTime"`
	ProcessContent    string          `db:"process_content" json:"processContent"`
	RequiredEquipment string          `db:"required_equipment" json:"requiredEquipment"`
	ProgramFile       string          `db:"program_file" json:"programFile"`
}

type ProductProcessCode struct {
	ID            int64 `db:"id" json:"id"`
	ProductID     int64 `db:"product_id" json:"productId"`
	ProcessCodeID int64 `db:"process_code_id" json:"processCodeId"`
	IsDefault     bool  `db:"is_default" json:"isDefault"`
}

type CategoryProcessCode struct {
	ID            int64 `db:"id" json:"id"`
	CategoryID    int64 `db:"category_id" json:"categoryId"`
	ProcessCodeID int64 `db:"process_code_id" json:"processCodeId"`
	IsDefault     bool  `db:"is_default" json:"isDefault"`
}
