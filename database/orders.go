package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mfg/model"
)

func ListSalesOrders(ctx context.Context, q DBTX) ([]model.SalesOrder, error) {
	orders := []model.SalesOrder{}
	const query = `SELECT id, order_no, company_id, order_date, product_id, quantity, unit_price, plan_delivery, total_amount
		FROM sales_orders ORDER BY order_date DESC, id DESC`
	if err := q.SelectContext(ctx, &orders, query); err != nil {
		return nil, fmt.Errorf("failed to list sales orders: %w", err)
	}
	return orders, nil
}

// CreateSalesOrder は受注を登録します。合計金額は数量 x 単価で計算します。
func CreateSalesOrder(ctx context.Context, q DBTX, o model.SalesOrder) (int64, error) {
	o.TotalAmount = o.Quantity.Mul(o.UnitPrice).Round(2)
	const stmt = `
		INSERT INTO sales_orders (order_no, company_id, order_date, product_id, quantity, unit_price, plan_delivery, total_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := insertID(q.ExecContext(ctx, stmt, o.OrderNo, o.CompanyID, o.OrderDate, o.ProductID,
		o.Quantity, o.UnitPrice, o.PlanDelivery, o.TotalAmount))
	if err != nil {
		return 0, fmt.Errorf("CreateSalesOrder (%s) failed: %w", o.OrderNo, err)
	}
	return id, nil
}

func GetSalesOrder(ctx context.Context, q DBTX, id int64) (*model.SalesOrder, error) {
	var o model.SalesOrder
	const query = `SELECT id, order_no, company_id, order_date, product_id, quantity, unit_price, plan_delivery, total_amount
		FROM sales_orders WHERE id = ?`
	if err := q.GetContext(ctx, &o, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sales order %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get sales order %d: %w", id, err)
	}
	return &o, nil
}

// ListSalesOrdersWithoutWorkOrder はどの工単からも参照されていない受注を返します。
func ListSalesOrdersWithoutWorkOrder(ctx context.Context, q DBTX) ([]model.SalesOrder, error) {
	orders := []model.SalesOrder{}
	const query = `SELECT id, order_no, company_id, order_date, product_id, quantity, unit_price, plan_delivery, total_amount
		FROM sales_orders
		WHERE id NOT IN (SELECT order_id FROM work_orders WHERE order_id IS NOT NULL)
		ORDER BY order_date DESC, id DESC`
	if err := q.SelectContext(ctx, &orders, query); err != nil {
		return nil, fmt.Errorf("failed to list sales orders without work order: %w", err)
	}
	return orders, nil
}
