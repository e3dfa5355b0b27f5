package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mfg/model"
)

func ListProductProcessCodes(ctx context.Context, q DBTX, productID int64) ([]model.ProductProcessCode, error) {
	links := []model.ProductProcessCode{}
	err := q.SelectContext(ctx, &links,
		`SELECT id, product_id, process_code_id, is_default FROM product_process_codes WHERE product_id = ? ORDER BY id`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list process codes for product %d: %w", productID, err)
	}
	return links, nil
}

func GetProductProcessCode(ctx context.Context, q DBTX, id int64) (*model.ProductProcessCode, error) {
	var link model.ProductProcessCode
	err := q.GetContext(ctx, &link,
		`SELECT id, product_id, process_code_id, is_default FROM product_process_codes WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product process code %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product process code %d: %w", id, err)
	}
	return &link, nil
}

// CreateProductProcessCode は製品と工艺流程を紐づけます。既定にした場合は他の既定を外します。
func CreateProductProcessCode(ctx context.Context, q DBTX, link model.ProductProcessCode) (int64, error) {
	if link.IsDefault {
		if _, err := q.ExecContext(ctx,
			`UPDATE product_process_codes SET is_default = 0 WHERE product_id = ?`, link.ProductID); err != nil {
			return 0, fmt.Errorf("failed to clear default process code for product %d: %w", link.ProductID, err)
		}
	}
	id, err := insertID(q.ExecContext(ctx,
		`INSERT INTO product_process_codes (product_id, process_code_id, is_default) VALUES (?, ?, ?)`,
		link.ProductID, link.ProcessCodeID, link.IsDefault))
	if err != nil {
		return 0, fmt.Errorf("CreateProductProcessCode (%d, %d) failed: %w", link.ProductID, link.ProcessCodeID, err)
	}
	return id, nil
}

func ListCategoryProcessCodes(ctx context.Context, q DBTX, categoryID int64) ([]model.CategoryProcessCode, error) {
	links := []model.CategoryProcessCode{}
	err := q.SelectContext(ctx, &links,
		`SELECT id, category_id, process_code_id, is_default FROM category_process_codes WHERE category_id = ? ORDER BY id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list process codes for category %d: %w", categoryID, err)
	}
	return links, nil
}

func CreateCategoryProcessCode(ctx context.Context, q DBTX, link model.CategoryProcessCode) (int64, error) {
	if link.IsDefault {
		if _, err := q.ExecContext(ctx,
			`UPDATE category_process_codes SET is_default = 0 WHERE category_id = ?`, link.CategoryID); err != nil {
			return 0, fmt.Errorf("failed to clear default process code for category %d: %w", link.CategoryID, err)
		}
	}
	id, err := insertID(q.ExecContext(ctx,
		`INSERT INTO category_process_codes (category_id, process_code_id, is_default) VALUES (?, ?, ?)`,
		link.CategoryID, link.ProcessCodeID, link.IsDefault))
	if err != nil {
		return 0, fmt.Errorf("CreateCategoryProcessCode (%d, %d) failed: %w", link.CategoryID, link.ProcessCodeID, err)
	}
	return id, nil
}

// DefaultProcessCodeForProduct は製品の既定工艺流程を返します。無い場合は nil です。
func DefaultProcessCodeForProduct(ctx context.Context, q DBTX, productID int64) (*int64, error) {
	return defaultProcessCode(ctx, q,
		`SELECT process_code_id FROM product_process_codes WHERE product_id = ? AND is_default = 1 LIMIT 1`, productID)
}

// DefaultProcessCodeForCategory は製品カテゴリの既定工艺流程を返します。無い場合は nil です。
func DefaultProcessCodeForCategory(ctx context.Context, q DBTX, categoryID int64) (*int64, error) {
	return defaultProcessCode(ctx, q,
		`SELECT process_code_id FROM category_process_codes WHERE category_id = ? AND is_default = 1 LIMIT 1`, categoryID)
}

func defaultProcessCode(ctx context.Context, q DBTX, query string, id int64) (*int64, error) {
	var pcID int64
	if err := q.GetContext(ctx, &pcID, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve default process code for %d: %w", id, err)
	}
	return &pcID, nil
}
