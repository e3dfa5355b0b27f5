// Package mastermanager は製品・物料・BOM の「検索して無ければ作成」を扱います。
// 呼び出し側のトランザクション上で実行します。
package mastermanager

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"mfg/database"
	"mfg/model"
)

const autoBOMItemRemark = "规则自动生成"

// FindOrCreateMaterial はコードで物料を検索し、無ければ生成先カテゴリの物料として作成します。
// 作成時はパラメータ値も登録します。2番目の戻り値は新規作成したかどうかです。
func FindOrCreateMaterial(ctx context.Context, q database.DBTX, code string, category *model.ProductCategory, params map[string]string) (*model.Product, bool, error) {
	existing, err := database.FindProductByCode(ctx, q, code)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if !existing.IsMaterial {
			return nil, false, model.NewClientError("编码 %s 已被产品占用", code)
		}
		return existing, false, nil
	}

	material := model.Product{
		Code:       code,
		Name:       code,
		CategoryID: category.ID,
		UnitID:     category.UnitID,
		IsMaterial: true,
	}
	id, err := database.CreateProduct(ctx, q, material)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create material %s: %w", code, err)
	}
	material.ID = id

	if err := database.ReplaceParamValues(ctx, q, id, category.ID, params); err != nil {
		return nil, false, err
	}
	return &material, true, nil
}

// FindOrCreateBOM は製品の BOM を (名称, 版) で検索し、無ければ作成します。
func FindOrCreateBOM(ctx context.Context, q database.DBTX, productID int64, name, version string) (*model.BOM, error) {
	bom, err := database.FindBOM(ctx, q, productID, name, version)
	if err != nil || bom != nil {
		return bom, err
	}
	b := model.BOM{ProductID: productID, Name: name, Version: version}
	id, err := database.CreateBOM(ctx, q, b)
	if err != nil {
		return nil, err
	}
	b.ID = id
	return &b, nil
}

// EnsureBOMItem は BOM に物料の明細が無ければ数量1で追加します。2番目の戻り値は追加したかどうかです。
func EnsureBOMItem(ctx context.Context, q database.DBTX, bomID int64, material *model.Product) (*model.BOMItem, bool, error) {
	item, err := database.FindBOMItem(ctx, q, bomID, material.ID)
	if err != nil {
		return nil, false, err
	}
	if item != nil {
		return item, false, nil
	}
	newItem := model.BOMItem{
		BOMID:        bomID,
		MaterialID:   material.ID,
		MaterialCode: material.Code,
		Quantity:     decimal.NewFromInt(1),
		Remark:       autoBOMItemRemark,
	}
	id, err := database.CreateBOMItem(ctx, q, newItem)
	if err != nil {
		return nil, false, err
	}
	newItem.ID = id
	return &newItem, true, nil
}

// SaveProduct は製品を登録または更新し、パラメータ値を置き換えます。ID が 0 の場合は新規登録です。
func SaveProduct(ctx context.Context, q database.DBTX, input model.ProductInput) (*model.Product, error) {
	if input.Code == "" {
		return nil, model.NewClientError("编码不能为空")
	}
	if input.CategoryID == 0 {
		return nil, model.NewClientError("请选择产品类")
	}
	p := input.Product

	dup, err := database.FindProductByCode(ctx, q, p.Code)
	if err != nil {
		return nil, err
	}
	if dup != nil && dup.ID != p.ID {
		return nil, model.NewClientError("编码 %s 已存在", p.Code)
	}

	if p.ID == 0 {
		id, err := database.CreateProduct(ctx, q, p)
		if err != nil {
			return nil, err
		}
		p.ID = id
	} else if err := database.UpdateProduct(ctx, q, p); err != nil {
		return nil, err
	}

	if input.Params != nil {
		if err := database.ReplaceParamValues(ctx, q, p.ID, p.CategoryID, input.Params); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// GetProductView は製品とカテゴリコード、パラメータ値をまとめて返します。
func GetProductView(ctx context.Context, q database.DBTX, id int64) (*model.ProductView, error) {
	p, err := database.GetProduct(ctx, q, id)
	if err != nil {
		return nil, err
	}
	category, err := database.GetCategory(ctx, q, p.CategoryID)
	if err != nil {
		return nil, err
	}
	params, err := database.ListParamValues(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return &model.ProductView{Product: *p, CategoryCode: category.Code, Params: params}, nil
}
