package database

import (
	"context"
	"fmt"
	"sort"

	"mfg/model"
)

// ListParamValues は製品のパラメータ値をパラメータ項目の登録順に返します。
func ListParamValues(ctx context.Context, q DBTX, productID int64) ([]model.ParamValue, error) {
	const query = `
		SELECT v.product_id, v.param_id, p.name AS param_name, v.value
		FROM product_param_values v
		JOIN category_params p ON p.id = v.param_id
		WHERE v.product_id = ?
		ORDER BY p.id`
	values := []model.ParamValue{}
	if err := q.SelectContext(ctx, &values, query, productID); err != nil {
		return nil, fmt.Errorf("failed to list param values for product %d: %w", productID, err)
	}
	return values, nil
}

// GetParamMap は製品のパラメータ値を name -> value のマップで返します。
func GetParamMap(ctx context.Context, q DBTX, productID int64) (map[string]string, error) {
	values, err := ListParamValues(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(values))
	for _, v := range values {
		m[v.ParamName] = v.Value
	}
	return m, nil
}

// ReplaceParamValues は製品のパラメータ値を全件削除してから再登録します (履歴は保持しません)。
// params のキーはカテゴリのパラメータ項目名です。未定義の項目名はクライアントエラーになります。
func ReplaceParamValues(ctx context.Context, q DBTX, productID, categoryID int64, params map[string]string) error {
	defs, err := ListCategoryParams(ctx, q, categoryID)
	if err != nil {
		return err
	}
	ids := make(map[string]int64, len(defs))
	for _, d := range defs {
		ids[d.Name] = d.ID
	}

	names := make([]string, 0, len(params))
	for name := range params {
		if _, ok := ids[name]; !ok {
			return model.NewClientError("参数项 %s 不属于该产品类", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := q.ExecContext(ctx, `DELETE FROM product_param_values WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("failed to delete param values for product %d: %w", productID, err)
	}
	for _, name := range names {
		_, err := q.ExecContext(ctx,
			`INSERT INTO product_param_values (product_id, param_id, value) VALUES (?, ?, ?)`,
			productID, ids[name], params[name])
		if err != nil {
			return fmt.Errorf("failed to insert param value %s for product %d: %w", name, productID, err)
		}
	}
	return nil
}
