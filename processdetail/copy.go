// Package processdetail は工艺流程のテンプレート行 (工艺明细) を管理します。
package processdetail

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"mfg/config"
	"mfg/database"
	"mfg/expression"
	"mfg/metrics"
	"mfg/model"
)

var copyMetrics = metrics.NewRecorder("copy")

type Service struct {
	db *sqlx.DB
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// AutoGenerateDetails は製品カテゴリの既定工艺流程のテンプレート行を、製品に紐づく工艺流程へ複写します。
// 工艺内容は製品のパラメータで置換します。同じ (工艺流程, 工序号, 工序) の行が既にある場合は作成しません。
func (s *Service) AutoGenerateDetails(ctx context.Context, productProcessCodeID int64) (int, error) {
	start := time.Now()
	created := 0
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		link, err := database.GetProductProcessCode(ctx, tx, productProcessCodeID)
		if err != nil {
			return err
		}
		product, err := database.GetProduct(ctx, tx, link.ProductID)
		if err != nil {
			return err
		}
		source, err := database.DefaultProcessCodeForCategory(ctx, tx, product.CategoryID)
		if err != nil {
			return err
		}
		if source == nil {
			return model.NewClientError("产品 %s 所属产品类没有默认工艺流程", product.Code)
		}
		if *source == link.ProcessCodeID {
			return model.NewClientError("产品工艺流程与产品类默认工艺流程相同，无需复制")
		}

		params, err := database.GetParamMap(ctx, tx, product.ID)
		if err != nil {
			return err
		}
		templates, err := database.ListProcessDetails(ctx, tx, *source)
		if err != nil {
			return err
		}
		legacy := config.GetConfig().LegacyParenArithmetic

		for _, t := range templates {
			existing, err := database.FindProcessDetailByStep(ctx, tx, link.ProcessCodeID, t.StepNo)
			if err != nil {
				return err
			}
			if existing != nil {
				if existing.ProcessID == t.ProcessID {
					continue
				}
				return model.NewClientError("工序号 %d 已被其他工序占用，无法复制", t.StepNo)
			}
			d := t
			d.ID = 0
			d.ProcessCodeID = link.ProcessCodeID
			d.ProcessContent = expression.Expand(t.ProcessContent, params, legacy)
			d.RequiredEquipment = expression.Expand(t.RequiredEquipment, params, legacy)
			if left := expression.Placeholders(d.ProcessContent); len(left) > 0 {
				copyMetrics.RecordUnresolved(len(left))
				zap.L().Warn("unresolved placeholders in copied process content",
					zap.String("product", product.Code),
					zap.Int("step_no", t.StepNo),
					zap.Strings("placeholders", left))
			}
			if _, err := database.CreateProcessDetail(ctx, tx, d); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	copyMetrics.RecordExpansion(created, time.Since(start))
	return created, nil
}
