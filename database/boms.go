package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mfg/model"
)

// FindBOM は (製品, 名称, 版) で BOM を検索します。見つからない場合は nil, nil を返します。
func FindBOM(ctx context.Context, q DBTX, productID int64, name, version string) (*model.BOM, error) {
	var b model.BOM
	err := q.GetContext(ctx, &b,
		`SELECT id, product_id, name, version, description FROM boms WHERE product_id = ? AND name = ? AND version = ?`,
		productID, name, version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find bom %s (%s) for product %d: %w", name, version, productID, err)
	}
	return &b, nil
}

func CreateBOM(ctx context.Context, q DBTX, b model.BOM) (int64, error) {
	id, err := insertID(q.ExecContext(ctx,
		`INSERT INTO boms (product_id, name, version, description) VALUES (?, ?, ?, ?)`,
		b.ProductID, b.Name, b.Version, b.Description))
	if err != nil {
		return 0, fmt.Errorf("CreateBOM (%s) failed: %w", b.Name, err)
	}
	return id, nil
}

// ListBOMs は製品の BOM を明細付きで返します。
func ListBOMs(ctx context.Context, q DBTX, productID int64) ([]model.BOM, error) {
	boms := []model.BOM{}
	err := q.SelectContext(ctx, &boms,
		`SELECT id, product_id, name, version, description FROM boms WHERE product_id = ? ORDER BY name, version`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boms for product %d: %w", productID, err)
	}
	for i := range boms {
		items, err := ListBOMItems(ctx, q, boms[i].ID)
		if err != nil {
			return nil, err
		}
		boms[i].Items = items
	}
	return boms, nil
}

func ListBOMItems(ctx context.Context, q DBTX, bomID int64) ([]model.BOMItem, error) {
	const query = `
		SELECT i.id, i.bom_id, i.material_id, p.code AS material_code, i.quantity, i.remark
		FROM bom_items i
		JOIN products p ON p.id = i.material_id
		WHERE i.bom_id = ?
		ORDER BY i.id`
	items := []model.BOMItem{}
	if err := q.SelectContext(ctx, &items, query, bomID); err != nil {
		return nil, fmt.Errorf("failed to list items for bom %d: %w", bomID, err)
	}
	return items, nil
}

// FindBOMItem は (BOM, 物料) の明細を検索します。見つからない場合は nil, nil を返します。
func FindBOMItem(ctx context.Context, q DBTX, bomID, materialID int64) (*model.BOMItem, error) {
	const query = `
		SELECT i.id, i.bom_id, i.material_id, p.code AS material_code, i.quantity, i.remark
		FROM bom_items i
		JOIN products p ON p.id = i.material_id
		WHERE i.bom_id = ? AND i.material_id = ?`
	var item model.BOMItem
	if err := q.GetContext(ctx, &item, query, bomID, materialID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find bom item (%d, %d): %w", bomID, materialID, err)
	}
	return &item, nil
}

func CreateBOMItem(ctx context.Context, q DBTX, item model.BOMItem) (int64, error) {
	id, err := insertID(q.ExecContext(ctx,
		`INSERT INTO bom_items (bom_id, material_id, quantity, remark) VALUES (?, ?, ?, ?)`,
		item.BOMID, item.MaterialID, item.Quantity, item.Remark))
	if err != nil {
		return 0, fmt.Errorf("CreateBOMItem (%d, %d) failed: %w", item.BOMID, item.MaterialID, err)
	}
	return id, nil
}
