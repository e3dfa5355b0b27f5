package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mfg/model"
)

const categoryColumns = `id, company_id, code, display_name, unit_id, drawing_pdf, process_pdf`

func ListCategories(ctx context.Context, q DBTX) ([]model.ProductCategory, error) {
	categories := []model.ProductCategory{}
	err := q.SelectContext(ctx, &categories, "SELECT "+categoryColumns+" FROM product_categories ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func GetCategory(ctx context.Context, q DBTX, id int64) (*model.ProductCategory, error) {
	var c model.ProductCategory
	err := q.GetContext(ctx, &c, "SELECT "+categoryColumns+" FROM product_categories WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return &c, nil
}

func CreateCategory(ctx context.Context, q DBTX, c model.ProductCategory) (int64, error) {
	const stmt = `
		INSERT INTO product_categories (company_id, code, display_name, unit_id, drawing_pdf, process_pdf)
		VALUES (?, ?, ?, ?, ?, ?)`
	id, err := insertID(q.ExecContext(ctx, stmt, c.CompanyID, c.Code, c.DisplayName, c.UnitID, c.DrawingPDF, c.ProcessPDF))
	if err != nil {
		return 0, fmt.Errorf("CreateCategory (%s) failed: %w", c.Code, err)
	}
	return id, nil
}

// ListCategoryParams はカテゴリのパラメータ項目を登録順に返します。
func ListCategoryParams(ctx context.Context, q DBTX, categoryID int64) ([]model.CategoryParam, error) {
	params := []model.CategoryParam{}
	err := q.SelectContext(ctx, &params,
		"SELECT id, category_id, name FROM category_params WHERE category_id = ? ORDER BY id", categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list params for category %d: %w", categoryID, err)
	}
	return params, nil
}

func CreateCategoryParam(ctx context.Context, q DBTX, categoryID int64, name string) (int64, error) {
	id, err := insertID(q.ExecContext(ctx,
		`INSERT INTO category_params (category_id, name) VALUES (?, ?)`, categoryID, name))
	if err != nil {
		return 0, fmt.Errorf("CreateCategoryParam (%d, %s) failed: %w", categoryID, name, err)
	}
	return id, nil
}
