package materialgen

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"mfg/database"
	"mfg/mastermanager"
	"mfg/metrics"
	"mfg/model"
)

const (
	bomSuffix  = "-A"
	bomVersion = "A"
)

type Result struct {
	Material       *model.Product `json:"material"`
	Created        bool           `json:"created"`
	BOM            *model.BOM     `json:"bom"`
	BOMItem        *model.BOMItem `json:"bomItem"`
	BOMItemCreated bool           `json:"bomItemCreated"`
}

type Service struct {
	db *sqlx.DB
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Generate はルールと製品のパラメータから物料を求め (無ければ作成し)、製品の BOM に追加します。
// 同じルールと製品で繰り返し呼んでも物料と BOM 明細は重複しません。
func (s *Service) Generate(ctx context.Context, ruleID, productID int64) (*Result, error) {
	var result Result
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		rule, err := database.GetRule(ctx, tx, ruleID)
		if err != nil {
			return err
		}
		product, err := database.GetProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		if product.CategoryID != rule.SourceCategoryID {
			return model.NewClientError("产品 %s 不属于该规则的源产品类", product.Code)
		}

		params, err := database.GetParamMap(ctx, tx, productID)
		if err != nil {
			return err
		}
		if len(params) == 0 {
			return model.NewClientError("产品 %s 没有参数值", product.Code)
		}
		if len(rule.Params) == 0 {
			return model.NewClientError("规则 %d 未配置参数表达式", rule.ID)
		}

		target, err := database.GetCategory(ctx, tx, rule.TargetCategoryID)
		if err != nil {
			return err
		}

		resolved := make(map[string]string, len(rule.Params))
		parts := []string{target.Code}
		for _, rp := range rule.Params {
			value, err := EvaluateStrict(rp.Expression, params)
			if err != nil {
				return err
			}
			resolved[rp.ParamName] = value
			parts = append(parts, rp.ParamName, value)
		}
		code := strings.Join(parts, "-")

		material, created, err := mastermanager.FindOrCreateMaterial(ctx, tx, code, target, resolved)
		if err != nil {
			return err
		}
		bom, err := mastermanager.FindOrCreateBOM(ctx, tx, product.ID, product.Code+bomSuffix, bomVersion)
		if err != nil {
			return err
		}
		item, itemCreated, err := mastermanager.EnsureBOMItem(ctx, tx, bom.ID, material)
		if err != nil {
			return err
		}

		result = Result{Material: material, Created: created, BOM: bom, BOMItem: item, BOMItemCreated: itemCreated}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordMaterial(result.Created)
	zap.L().Info("material generated",
		zap.Int64("rule_id", ruleID),
		zap.Int64("product_id", productID),
		zap.String("material", result.Material.Code),
		zap.Bool("created", result.Created),
		zap.Bool("bom_item_created", result.BOMItemCreated))
	return &result, nil
}
