package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mfg/model"
)

const workOrderDetailColumns = `id, workorder_id, step_no, process_id, machine_time, labor_time,
	process_content, required_equipment, plan_start_time, plan_end_time,
	pending_quantity, processed_quantity, completed_quantity, status, remark, program_file`

func ListWorkOrderDetails(ctx context.Context, q DBTX, workOrderID int64) ([]model.WorkOrderProcessDetail, error) {
	details := []model.WorkOrderProcessDetail{}
	err := q.SelectContext(ctx, &details,
		"SELECT "+workOrderDetailColumns+" FROM workorder_process_details WHERE workorder_id = ? ORDER BY step_no", workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list details for work order %d: %w", workOrderID, err)
	}
	return details, nil
}

func GetWorkOrderDetail(ctx context.Context, q DBTX, id int64) (*model.WorkOrderProcessDetail, error) {
	var d model.WorkOrderProcessDetail
	err := q.GetContext(ctx, &d, "SELECT "+workOrderDetailColumns+" FROM workorder_process_details WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("work order detail %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get work order detail %d: %w", id, err)
	}
	return &d, nil
}

func CreateWorkOrderDetail(ctx context.Context, q DBTX, d model.WorkOrderProcessDetail) (int64, error) {
	const stmt = `
		INSERT INTO workorder_process_details (workorder_id, step_no, process_id, machine_time, labor_time,
			process_content, required_equipment, plan_start_time, plan_end_time,
			pending_quantity, processed_quantity, completed_quantity, status, remark, program_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := insertID(q.ExecContext(ctx, stmt, d.WorkOrderID, d.StepNo, d.ProcessID, d.MachineTime, d.LaborTime,
		d.ProcessContent, d.RequiredEquipment, d.PlanStartTime, d.PlanEndTime,
		d.PendingQuantity, d.ProcessedQuantity, d.CompletedQuantity, d.Status, d.Remark, d.ProgramFile))
	if err != nil {
		return 0, fmt.Errorf("CreateWorkOrderDetail (work order %d, step %d) failed: %w", d.WorkOrderID, d.StepNo, err)
	}
	return id, nil
}

func CountWorkOrderDetails(ctx context.Context, q DBTX, workOrderID int64) (int, error) {
	var n int
	if err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM workorder_process_details WHERE workorder_id = ?`, workOrderID); err != nil {
		return 0, fmt.Errorf("failed to count details for work order %d: %w", workOrderID, err)
	}
	return n, nil
}

// WorkOrderDetailExists は (工単, 工序号, 工序) の組が既に存在するかを返します。
func WorkOrderDetailExists(ctx context.Context, q DBTX, workOrderID int64, stepNo int, processID int64) (bool, error) {
	var n int
	err := q.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM workorder_process_details WHERE workorder_id = ? AND step_no = ? AND process_id = ?`,
		workOrderID, stepNo, processID)
	if err != nil {
		return false, fmt.Errorf("failed to check work order detail (%d, %d, %d): %w", workOrderID, stepNo, processID, err)
	}
	return n > 0, nil
}

func DeleteWorkOrderDetails(ctx context.Context, q DBTX, workOrderID int64) (int64, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM workorder_process_details WHERE workorder_id = ?`, workOrderID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete details for work order %d: %w", workOrderID, err)
	}
	return res.RowsAffected()
}

// UpdateWorkOrderDetailProgress は数量とステータスのみを更新します。
func UpdateWorkOrderDetailProgress(ctx context.Context, q DBTX, d model.WorkOrderProcessDetail) error {
	const stmt = `
		UPDATE workorder_process_details
		SET pending_quantity = ?, processed_quantity = ?, completed_quantity = ?, status = ?
		WHERE id = ?`
	_, err := q.ExecContext(ctx, stmt, d.PendingQuantity, d.ProcessedQuantity, d.CompletedQuantity, d.Status, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update progress of work order detail %d: %w", d.ID, err)
	}
	return nil
}
