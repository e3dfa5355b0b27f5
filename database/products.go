package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mfg/model"
)

const productColumns = `id, code, name, price, category_id, unit_id, drawing_pdf, is_material`

func GetProduct(ctx context.Context, q DBTX, id int64) (*model.Product, error) {
	var p model.Product
	err := q.GetContext(ctx, &p, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &p, nil
}

// FindProductByCode はコードで製品を検索します。見つからない場合は nil, nil を返します。
func FindProductByCode(ctx context.Context, q DBTX, code string) (*model.Product, error) {
	var p model.Product
	err := q.GetContext(ctx, &p, "SELECT "+productColumns+" FROM products WHERE code = ?", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query product by code %s: %w", code, err)
	}
	return &p, nil
}

// ListProducts は製品 (isMaterial=false) または物料 (isMaterial=true) を返します。
// categoryID が 0 の場合はカテゴリで絞り込みません。
func ListProducts(ctx context.Context, q DBTX, isMaterial bool, categoryID int64) ([]model.Product, error) {
	products := []model.Product{}
	query := "SELECT " + productColumns + " FROM products WHERE is_material = ?"
	args := []interface{}{isMaterial}
	if categoryID != 0 {
		query += " AND category_id = ?"
		args = append(args, categoryID)
	}
	query += " ORDER BY code"
	if err := q.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func CreateProduct(ctx context.Context, q DBTX, p model.Product) (int64, error) {
	const stmt = `
		INSERT INTO products (code, name, price, category_id, unit_id, drawing_pdf, is_material)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	id, err := insertID(q.ExecContext(ctx, stmt, p.Code, p.Name, p.Price, p.CategoryID, p.UnitID, p.DrawingPDF, p.IsMaterial))
	if err != nil {
		return 0, fmt.Errorf("CreateProduct (%s) failed: %w", p.Code, err)
	}
	return id, nil
}

func UpdateProduct(ctx context.Context, q DBTX, p model.Product) error {
	const stmt = `
		UPDATE products SET code = ?, name = ?, price = ?, category_id = ?, unit_id = ?, drawing_pdf = ?, is_material = ?
		WHERE id = ?`
	res, err := q.ExecContext(ctx, stmt, p.Code, p.Name, p.Price, p.CategoryID, p.UnitID, p.DrawingPDF, p.IsMaterial, p.ID)
	if err != nil {
		return fmt.Errorf("UpdateProduct (%d) failed: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product %d: %w", p.ID, model.ErrNotFound)
	}
	return nil
}
