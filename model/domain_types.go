package model

import "github.com/shopspring/decimal"

// SalesOrder は受注 (销售订单) です。
type SalesOrder struct {
	ID           int64           `db:"id" json:"id"`
	OrderNo      string          `db:"order_no" json:"orderNo"`
	CompanyID    int64           `db:"company_id" json:"companyId"`
	OrderDate    string          `db:"order_date" json:"orderDate"`
	ProductID    *int64          `db:"product_id" json:"productId,omitempty"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unitPrice"`
	PlanDelivery string          `db:"plan_delivery" json:"planDelivery"`
	TotalAmount  decimal.Decimal `db:"total_amount" json:"totalAmount"`
}
