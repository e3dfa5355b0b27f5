package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mfg/model"
)

const workOrderColumns = `id, workorder_no, order_id, product_id, quantity, process_code_id, plan_start, plan_end, status, remark`

func GetWorkOrder(ctx context.Context, q DBTX, id int64) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	err := q.GetContext(ctx, &wo, "SELECT "+workOrderColumns+" FROM work_orders WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("work order %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get work order %d: %w", id, err)
	}
	return &wo, nil
}

// ListWorkOrders は工単を新しい順に返します。status が空の場合は全件です。
func ListWorkOrders(ctx context.Context, q DBTX, status string) ([]model.WorkOrder, error) {
	orders := []model.WorkOrder{}
	query := "SELECT " + workOrderColumns + " FROM work_orders"
	var args []interface{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id DESC"
	if err := q.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}
	return orders, nil
}

func CreateWorkOrder(ctx context.Context, q DBTX, wo model.WorkOrder) (int64, error) {
	const stmt = `
		INSERT INTO work_orders (workorder_no, order_id, product_id, quantity, process_code_id, plan_start, plan_end, status, remark)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := insertID(q.ExecContext(ctx, stmt, wo.WorkOrderNo, wo.OrderID, wo.ProductID, wo.Quantity,
		wo.ProcessCodeID, wo.PlanStart, wo.PlanEnd, wo.Status, wo.Remark))
	if err != nil {
		return 0, fmt.Errorf("CreateWorkOrder (%s) failed: %w", wo.WorkOrderNo, err)
	}
	return id, nil
}

func UpdateWorkOrder(ctx context.Context, q DBTX, wo model.WorkOrder) error {
	const stmt = `
		UPDATE work_orders SET order_id = ?, product_id = ?, quantity = ?, process_code_id = ?,
			plan_start = ?, plan_end = ?, status = ?, remark = ?
		WHERE id = ?`
	res, err := q.ExecContext(ctx, stmt, wo.OrderID, wo.ProductID, wo.Quantity, wo.ProcessCodeID,
		wo.PlanStart, wo.PlanEnd, wo.Status, wo.Remark, wo.ID)
	if err != nil {
		return fmt.Errorf("UpdateWorkOrder (%d) failed: %w", wo.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("work order %d: %w", wo.ID, model.ErrNotFound)
	}
	return nil
}

func UpdateWorkOrderStatus(ctx context.Context, q DBTX, id int64, status string) error {
	if _, err := q.ExecContext(ctx, `UPDATE work_orders SET status = ? WHERE id = ?`, status, id); err != nil {
		return fmt.Errorf("failed to set status %s on work order %d: %w", status, id, err)
	}
	return nil
}

func SetWorkOrderProcessCode(ctx context.Context, q DBTX, id, processCodeID int64) error {
	if _, err := q.ExecContext(ctx, `UPDATE work_orders SET process_code_id = ? WHERE id = ?`, processCodeID, id); err != nil {
		return fmt.Errorf("failed to set process code %d on work order %d: %w", processCodeID, id, err)
	}
	return nil
}

func WorkOrderExistsForOrder(ctx context.Context, q DBTX, orderID int64) (bool, error) {
	var n int
	if err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM work_orders WHERE order_id = ?`, orderID); err != nil {
		return false, fmt.Errorf("failed to check work orders for order %d: %w", orderID, err)
	}
	return n > 0, nil
}
