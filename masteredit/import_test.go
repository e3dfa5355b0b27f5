package masteredit

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"

	"mfg/database"
	"mfg/model"
)

func multipartFile(t *testing.T, target, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportProductsUpsertsByCode(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	categoryID := seedCategory(t, db, "FLANGE")
	_, err := database.CreateProduct(ctx, db, model.Product{Code: "FL-1", Name: "旧名称", CategoryID: categoryID})
	require.NoError(t, err)
	_, err = database.CreateProduct(ctx, db, model.Product{Code: "M-1", CategoryID: categoryID, IsMaterial: true})
	require.NoError(t, err)

	rows := [][]string{
		{"code", "name", "price", "category"},
		{"FL-1", "法兰1", "12.5", "FLANGE"},
		{"FL-2", "法兰2", "", "FLANGE"},
		{"FL-3", "法兰3", "abc", "FLANGE"},
		{"FL-4", "法兰4", "1", "NOPE"},
		{"M-1", "占用", "1", "FLANGE"},
		nil,
	}
	result, err := ImportProducts(ctx, db, rows, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 4, result.Failed)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "第4行")
	assert.Contains(t, result.Errors[1], "第5行: 产品类不存在")
	assert.Contains(t, result.Errors[2], "第6行")
	assert.Contains(t, result.Message, "成功2条，失败4条")

	updated, err := database.FindProductByCode(ctx, db, "FL-1")
	require.NoError(t, err)
	assert.Equal(t, "法兰1", updated.Name)
	assert.Equal(t, "12.5", updated.Price.String())
	assert.False(t, updated.IsMaterial)

	material, err := database.FindProductByCode(ctx, db, "M-1")
	require.NoError(t, err)
	assert.True(t, material.IsMaterial)
}

func TestImportProductsRequiresColumns(t *testing.T) {
	db := setupTestDB(t)

	_, err := ImportProducts(context.Background(), db, [][]string{{"code", "name", "category"}}, false)
	require.Error(t, err)
	assert.True(t, model.IsClientError(err))
	assert.Contains(t, err.Error(), "price")
}

func TestImportMaterialsHandlerReadsGBKCSV(t *testing.T) {
	db := setupTestDB(t)
	seedCategory(t, db, "BOLT")

	csv, err := simplifiedchinese.GBK.NewEncoder().String("编码,名称,价格,物料类\nBOLT-D-15,螺栓15,0.8,BOLT\n")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ImportMaterialsHandler(db)(rec, multipartFile(t, "/api/materials/import", "materials.csv", []byte(csv)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Success)

	m, err := database.FindProductByCode(context.Background(), db, "BOLT-D-15")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "螺栓15", m.Name)
	assert.True(t, m.IsMaterial)
}

func TestImportProductsHandlerReadsXLSX(t *testing.T) {
	db := setupTestDB(t)
	seedCategory(t, db, "FLANGE")

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"code", "name", "price", "category"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"FL-9", "法兰9", "3", "FLANGE"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ImportProductsHandler(db)(rec, multipartFile(t, "/api/products/import", "products.xlsx", buf.Bytes()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p, err := database.FindProductByCode(context.Background(), db, "FL-9")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.False(t, p.IsMaterial)
	assert.Equal(t, "3", p.Price.String())
}

func TestImportHandlerRequiresFile(t *testing.T) {
	db := setupTestDB(t)
	rec := httptest.NewRecorder()
	ImportProductsHandler(db)(rec, httptest.NewRequest(http.MethodPost, "/api/products/import", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersWithoutWorkOrderHandler(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	companyID, err := database.CreateCompany(ctx, db, model.Company{Name: "客户", Code: "K1"})
	require.NoError(t, err)
	used, err := database.CreateSalesOrder(ctx, db, model.SalesOrder{OrderNo: "SO1", CompanyID: companyID, OrderDate: "2026-01-02"})
	require.NoError(t, err)
	free, err := database.CreateSalesOrder(ctx, db, model.SalesOrder{OrderNo: "SO2", CompanyID: companyID, OrderDate: "2026-01-01"})
	require.NoError(t, err)
	_, err = database.CreateWorkOrder(ctx, db, model.WorkOrder{WorkOrderNo: "WOSO1", OrderID: &used, Status: model.WorkOrderDraft})
	require.NoError(t, err)

	rec := do(t, OrdersWithoutWorkOrderHandler(db), http.MethodGet, "/api/orders/without_workorder", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.SalesOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, free, list[0].ID)
}
