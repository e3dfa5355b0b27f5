package masteredit

import (
	"context"
	"net/http"

	"github.com/jmoiron/sqlx"

	"mfg/database"
	"mfg/mastermanager"
	"mfg/model"
	"mfg/respond"
)

// BOMsHandler は GET (?productId=) で明細付き BOM 一覧、POST で BOM と明細を登録します。
func BOMsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			productID, err := respond.QueryID(r, "productId")
			if err != nil {
				respond.Error(w, r, "list boms", err)
				return
			}
			list, err := database.ListBOMs(ctx, db, productID)
			if err != nil {
				respond.Error(w, r, "list boms", err)
				return
			}
			respond.JSON(w, http.StatusOK, list)
		case http.MethodPost:
			var input model.BOM
			if !respond.Decode(w, r, &input) {
				return
			}
			if input.ProductID == 0 || input.Name == "" || input.Version == "" {
				respond.Error(w, r, "save bom", model.NewClientError("产品、BOM名称和版本不能为空"))
				return
			}
			var bom *model.BOM
			err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
				var err error
				bom, err = mastermanager.FindOrCreateBOM(ctx, tx, input.ProductID, input.Name, input.Version)
				if err != nil {
					return err
				}
				for _, item := range input.Items {
					existing, err := database.FindBOMItem(ctx, tx, bom.ID, item.MaterialID)
					if err != nil {
						return err
					}
					if existing != nil {
						continue
					}
					item.BOMID = bom.ID
					if !item.Quantity.IsPositive() {
						return model.NewClientError("物料 %d 的用量必须大于0", item.MaterialID)
					}
					if _, err := database.CreateBOMItem(ctx, tx, item); err != nil {
						return err
					}
				}
				bom.Items, err = database.ListBOMItems(ctx, tx, bom.ID)
				return err
			})
			if err != nil {
				respond.Error(w, r, "save bom", err)
				return
			}
			respond.JSON(w, http.StatusOK, bom)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

// RulesHandler は物料生成ルールを扱います。GET ?id= で式付きの1件を返します。
func RulesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			if id := optionalID(r, "id"); id != 0 {
				rule, err := database.GetRule(ctx, db, id)
				if err != nil {
					respond.Error(w, r, "get rule", err)
					return
				}
				respond.JSON(w, http.StatusOK, rule)
				return
			}
			list, err := database.ListRules(ctx, db)
			if err != nil {
				respond.Error(w, r, "list rules", err)
				return
			}
			respond.JSON(w, http.StatusOK, list)
		case http.MethodPost:
			var input model.CategoryMaterialRule
			if !respond.Decode(w, r, &input) {
				return
			}
			var rule *model.CategoryMaterialRule
			err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
				if _, err := database.GetCategory(ctx, tx, input.SourceCategoryID); err != nil {
					return err
				}
				if _, err := database.GetCategory(ctx, tx, input.TargetCategoryID); err != nil {
					return err
				}
				id, err := database.CreateRule(ctx, tx, input)
				if err != nil {
					return err
				}
				for _, p := range input.Params {
					p.RuleID = id
					if err := saveRuleParam(ctx, tx, input.TargetCategoryID, p); err != nil {
						return err
					}
				}
				rule, err = database.GetRule(ctx, tx, id)
				return err
			})
			if err != nil {
				respond.Error(w, r, "create rule", err)
				return
			}
			respond.JSON(w, http.StatusCreated, rule)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

// RuleParamsHandler は POST でルールの式を1件追加または更新します。
func RuleParamsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !respond.RequireMethod(w, r, http.MethodPost) {
			return
		}
		ctx := r.Context()
		var p model.RuleParam
		if !respond.Decode(w, r, &p) {
			return
		}
		var rule *model.CategoryMaterialRule
		err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
			current, err := database.GetRule(ctx, tx, p.RuleID)
			if err != nil {
				return err
			}
			if err := saveRuleParam(ctx, tx, current.TargetCategoryID, p); err != nil {
				return err
			}
			rule, err = database.GetRule(ctx, tx, p.RuleID)
			return err
		})
		if err != nil {
			respond.Error(w, r, "save rule param", err)
			return
		}
		respond.JSON(w, http.StatusOK, rule)
	}
}

func saveRuleParam(ctx context.Context, q database.DBTX, targetCategoryID int64, p model.RuleParam) error {
	if p.Expression == "" {
		return model.NewClientError("表达式不能为空")
	}
	params, err := database.ListCategoryParams(ctx, q, targetCategoryID)
	if err != nil {
		return err
	}
	for _, cp := range params {
		if cp.ID == p.TargetParamID {
			return database.UpsertRuleParamInTx(ctx, q, p)
		}
	}
	return model.NewClientError("参数项 %d 不属于目标产品类", p.TargetParamID)
}
