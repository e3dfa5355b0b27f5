package masteredit

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mfg/database"
	"mfg/loader"
	"mfg/model"
	"mfg/respond"
)

// ImportResult は一括取り込みの結果です。Errors は失敗した行ごとのメッセージです。
type ImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
	Message string   `json:"message"`
}

const maxReportedErrors = 5

var importColumns = []struct {
	key     string
	aliases []string
}{
	{"code", []string{"code", "编码"}},
	{"name", []string{"name", "名称"}},
	{"price", []string{"price", "价格", "单价"}},
	{"category", []string{"category", "产品类", "物料类"}},
}

func headerIndex(header []string) (map[string]int, error) {
	idx := map[string]int{}
	for _, col := range importColumns {
		for i, h := range header {
			h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
			for _, alias := range col.aliases {
				if h == alias {
					idx[col.key] = i
				}
			}
		}
		if _, ok := idx[col.key]; !ok {
			return nil, model.NewClientError("缺少字段: %s", col.key)
		}
	}
	return idx, nil
}

// ImportProducts は code,name,price,category の表を製品 (isMaterial=false) または物料として
// コードで登録・更新します。category は製品カテゴリのコードまたは表示名です。
// 不正な行は読み飛ばして結果に記録し、それ以外の行は1つのトランザクションで反映します。
func ImportProducts(ctx context.Context, db *sqlx.DB, rows [][]string, isMaterial bool) (*ImportResult, error) {
	if len(rows) == 0 || rows[0] == nil {
		return nil, model.NewClientError("文件为空或缺少表头")
	}
	idx, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}
	kind, other := "产品", "物料"
	if isMaterial {
		kind, other = "物料", "产品"
	}

	result := &ImportResult{Errors: []string{}}
	fail := func(line int, format string, args ...interface{}) {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("第%d行: ", line)+fmt.Sprintf(format, args...))
	}

	err = database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		categories, err := database.ListCategories(ctx, tx)
		if err != nil {
			return err
		}
		byName := make(map[string]model.ProductCategory, len(categories)*2)
		for _, c := range categories {
			if c.DisplayName != "" {
				byName[c.DisplayName] = c
			}
		}
		for _, c := range categories {
			byName[c.Code] = c
		}

		for i, row := range rows[1:] {
			line := i + 2
			if row == nil {
				fail(line, "无法解析")
				continue
			}
			get := func(key string) string {
				if j := idx[key]; j < len(row) {
					return strings.TrimSpace(row[j])
				}
				return ""
			}
			code := get("code")
			if code == "" {
				fail(line, "编码为空")
				continue
			}
			category, ok := byName[get("category")]
			if !ok {
				fail(line, "%s类不存在", kind)
				continue
			}
			price := decimal.Zero
			if raw := get("price"); raw != "" {
				price, err = decimal.NewFromString(raw)
				if err != nil {
					fail(line, "价格 %q 不是数字", raw)
					continue
				}
			}

			existing, err := database.FindProductByCode(ctx, tx, code)
			if err != nil {
				return err
			}
			if existing == nil {
				p := model.Product{Code: code, Name: get("name"), Price: price, CategoryID: category.ID, UnitID: category.UnitID, IsMaterial: isMaterial}
				if _, err := database.CreateProduct(ctx, tx, p); err != nil {
					return err
				}
			} else {
				if existing.IsMaterial != isMaterial {
					fail(line, "编码 %s 已被%s占用", code, other)
					continue
				}
				existing.Name = get("name")
				existing.Price = price
				existing.CategoryID = category.ID
				if err := database.UpdateProduct(ctx, tx, *existing); err != nil {
					return err
				}
			}
			result.Success++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("导入完成，成功%d条，失败%d条。", result.Success, result.Failed)
	if result.Failed > 0 {
		shown := result.Errors
		if len(shown) > maxReportedErrors {
			shown = shown[:maxReportedErrors]
		}
		result.Message += " 错误: " + strings.Join(shown, "; ")
	}
	zap.L().Info("bulk import finished",
		zap.Bool("is_material", isMaterial),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed))
	return result, nil
}

// ImportProductsHandler は multipart の file (.csv は GBK、.xlsx は Excel) から製品を取り込みます。
func ImportProductsHandler(db *sqlx.DB) http.HandlerFunc {
	return importHandler(db, false)
}

// ImportMaterialsHandler は同じ形式で物料を取り込みます。
func ImportMaterialsHandler(db *sqlx.DB) http.HandlerFunc {
	return importHandler(db, true)
}

func importHandler(db *sqlx.DB, isMaterial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !respond.RequireMethod(w, r, http.MethodPost) {
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			respond.Error(w, r, "import products", model.NewClientError("未上传文件"))
			return
		}
		defer file.Close()

		rows, err := loader.ReadTable(file, header.Filename)
		if err != nil {
			respond.Error(w, r, "import products", model.NewClientError("文件解析失败: %v", err))
			return
		}
		result, err := ImportProducts(r.Context(), db, rows, isMaterial)
		if err != nil {
			respond.Error(w, r, "import products", err)
			return
		}
		respond.JSON(w, http.StatusOK, result)
	}
}
