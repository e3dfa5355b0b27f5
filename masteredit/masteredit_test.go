package masteredit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfg/database"
	"mfg/loader"
	"mfg/model"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := loader.OpenDatabase(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func do(t *testing.T, h http.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func seedCategory(t *testing.T, db *sqlx.DB, code string, params ...string) int64 {
	t.Helper()
	ctx := context.Background()
	companyID, err := database.CreateCompany(ctx, db, model.Company{Name: "公司" + code, Code: "C-" + code})
	require.NoError(t, err)
	categoryID, err := database.CreateCategory(ctx, db, model.ProductCategory{CompanyID: companyID, Code: code})
	require.NoError(t, err)
	for _, p := range params {
		_, err := database.CreateCategoryParam(ctx, db, categoryID, p)
		require.NoError(t, err)
	}
	return categoryID
}

func TestCompaniesHandler(t *testing.T) {
	db := setupTestDB(t)

	rec := do(t, CompaniesHandler(db), http.MethodPost, "/api/companies", model.Company{Name: "华东机械", Code: "HD"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, CompaniesHandler(db), http.MethodPost, "/api/companies", model.Company{Code: "X"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, CompaniesHandler(db), http.MethodGet, "/api/companies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Company
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "华东机械", list[0].Name)

	rec = do(t, CompaniesHandler(db), http.MethodDelete, "/api/companies", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCategoryParamsRequiresExistingCategory(t *testing.T) {
	db := setupTestDB(t)

	rec := do(t, CategoryParamsHandler(db), http.MethodPost, "/api/categories/params",
		model.CategoryParam{CategoryID: 999, Name: "D"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, CategoryParamsHandler(db), http.MethodGet, "/api/categories/params", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductsAndMaterialsAreSeparated(t *testing.T) {
	db := setupTestDB(t)
	categoryID := seedCategory(t, db, "FLANGE", "D")

	product := map[string]interface{}{
		"code":       "FL-12",
		"name":       "法兰12",
		"categoryId": categoryID,
		"isMaterial": true,
		"params":     map[string]string{"D": "12"},
	}
	rec := do(t, ProductsHandler(db), http.MethodPost, "/api/products", product)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var saved model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.False(t, saved.IsMaterial)

	rec = do(t, MaterialsHandler(db), http.MethodGet, "/api/materials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var materials []model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &materials))
	assert.Empty(t, materials)

	rec = do(t, ProductsHandler(db), http.MethodGet, "/api/products?id="+strconv.FormatInt(saved.ID, 10), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view model.ProductView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "FLANGE", view.CategoryCode)
	require.Len(t, view.Params, 1)
	assert.Equal(t, "12", view.Params[0].Value)

	product["code"] = "FL-12"
	rec = do(t, ProductsHandler(db), http.MethodPost, "/api/products", product)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductParamsRejectsUnknownParam(t *testing.T) {
	db := setupTestDB(t)
	categoryID := seedCategory(t, db, "FLANGE", "D")
	productID, err := database.CreateProduct(context.Background(), db, model.Product{Code: "FL-1", CategoryID: categoryID})
	require.NoError(t, err)

	rec := do(t, ProductParamsHandler(db), http.MethodPost, "/api/products/params",
		paramsRequest{ProductID: productID, Params: map[string]string{"L": "30"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, ProductParamsHandler(db), http.MethodPost, "/api/products/params",
		paramsRequest{ProductID: productID, Params: map[string]string{"D": "20"}})
	require.Equal(t, http.StatusOK, rec.Code)

	values, err := database.GetParamMap(context.Background(), db, productID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"D": "20"}, values)
}

func TestRulesHandlerValidatesTargetParams(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	sourceID := seedCategory(t, db, "FLANGE", "D")
	targetID := seedCategory(t, db, "BOLT")
	lengthID, err := database.CreateCategoryParam(ctx, db, targetID, "L")
	require.NoError(t, err)
	foreignParams, err := database.ListCategoryParams(ctx, db, sourceID)
	require.NoError(t, err)

	bad := model.CategoryMaterialRule{
		SourceCategoryID: sourceID,
		TargetCategoryID: targetID,
		Params:           []model.RuleParam{{TargetParamID: foreignParams[0].ID, Expression: "${D}"}},
	}
	rec := do(t, RulesHandler(db), http.MethodPost, "/api/rules", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rules, err := database.ListRules(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, rules)

	good := model.CategoryMaterialRule{
		SourceCategoryID: sourceID,
		TargetCategoryID: targetID,
		Params:           []model.RuleParam{{TargetParamID: lengthID, Expression: "${D+18}"}},
	}
	rec = do(t, RulesHandler(db), http.MethodPost, "/api/rules", good)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var rule model.CategoryMaterialRule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rule))
	require.Len(t, rule.Params, 1)
	assert.Equal(t, "L", rule.Params[0].ParamName)

	rec = do(t, RuleParamsHandler(db), http.MethodPost, "/api/rules/params",
		model.RuleParam{RuleID: rule.ID, TargetParamID: lengthID, Expression: "${D+20}"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rule))
	require.Len(t, rule.Params, 1)
	assert.Equal(t, "${D+20}", rule.Params[0].Expression)
}

func TestOrdersHandlerAssignsOrderNo(t *testing.T) {
	db := setupTestDB(t)
	companyID, err := database.CreateCompany(context.Background(), db, model.Company{Name: "客户", Code: "K1"})
	require.NoError(t, err)

	body := map[string]interface{}{"companyId": companyID, "orderDate": "2024-05-01", "quantity": "4", "unitPrice": "2.5"}
	rec := do(t, OrdersHandler(db), http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order model.SalesOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "SO000001", order.OrderNo)
	assert.Equal(t, "10", order.TotalAmount.String())

	rec = do(t, OrdersHandler(db), http.MethodPost, "/api/orders", map[string]interface{}{"companyId": companyID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
