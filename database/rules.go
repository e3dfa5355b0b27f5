package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mfg/model"
)

func ListRules(ctx context.Context, q DBTX) ([]model.CategoryMaterialRule, error) {
	rules := []model.CategoryMaterialRule{}
	err := q.SelectContext(ctx, &rules,
		`SELECT id, source_category_id, target_category_id FROM category_material_rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list material rules: %w", err)
	}
	return rules, nil
}

// GetRule はルールを式一覧 (登録順) 付きで返します。
func GetRule(ctx context.Context, q DBTX, id int64) (*model.CategoryMaterialRule, error) {
	var r model.CategoryMaterialRule
	err := q.GetContext(ctx, &r,
		`SELECT id, source_category_id, target_category_id FROM category_material_rules WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("material rule %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get material rule %d: %w", id, err)
	}

	const paramsQuery = `
		SELECT rp.id, rp.rule_id, rp.target_param_id, cp.name AS param_name, rp.expression
		FROM category_material_rule_params rp
		JOIN category_params cp ON cp.id = rp.target_param_id
		WHERE rp.rule_id = ?
		ORDER BY rp.id`
	r.Params = []model.RuleParam{}
	if err := q.SelectContext(ctx, &r.Params, paramsQuery, id); err != nil {
		return nil, fmt.Errorf("failed to list params for material rule %d: %w", id, err)
	}
	return &r, nil
}

func CreateRule(ctx context.Context, q DBTX, r model.CategoryMaterialRule) (int64, error) {
	id, err := insertID(q.ExecContext(ctx,
		`INSERT INTO category_material_rules (source_category_id, target_category_id) VALUES (?, ?)`,
		r.SourceCategoryID, r.TargetCategoryID))
	if err != nil {
		return 0, fmt.Errorf("CreateRule (%d -> %d) failed: %w", r.SourceCategoryID, r.TargetCategoryID, err)
	}
	return id, nil
}

// UpsertRuleParamInTx は生成先パラメータの式を挿入または更新します。
func UpsertRuleParamInTx(ctx context.Context, q DBTX, p model.RuleParam) error {
	const stmt = `
		INSERT INTO category_material_rule_params (rule_id, target_param_id, expression)
		VALUES (?, ?, ?)
		ON CONFLICT(rule_id, target_param_id) DO UPDATE SET
			expression = excluded.expression`
	if _, err := q.ExecContext(ctx, stmt, p.RuleID, p.TargetParamID, p.Expression); err != nil {
		return fmt.Errorf("UpsertRuleParamInTx (rule %d, param %d) failed: %w", p.RuleID, p.TargetParamID, err)
	}
	return nil
}
