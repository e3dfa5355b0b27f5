package processdetail

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

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

type fixture struct {
	db         *sqlx.DB
	categoryID int64
	productID  int64
	templateID int64
	ownID      int64
	linkID     int64
	drillID    int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{db: setupTestDB(t)}

	companyID, err := database.CreateCompany(ctx, f.db, model.Company{Name: "测试公司"})
	require.NoError(t, err)
	f.categoryID, err = database.CreateCategory(ctx, f.db, model.ProductCategory{CompanyID: companyID, Code: "SHAFT", DisplayName: "轴"})
	require.NoError(t, err)
	_, err = database.CreateCategoryParam(ctx, f.db, f.categoryID, "D")
	require.NoError(t, err)
	f.productID, err = database.CreateProduct(ctx, f.db, model.Product{Code: "SH-12", Name: "轴12", CategoryID: f.categoryID})
	require.NoError(t, err)
	require.NoError(t, database.ReplaceParamValues(ctx, f.db, f.productID, f.categoryID, map[string]string{"D": "12"}))

	turnID, err := database.CreateProcess(ctx, f.db, model.Process{Code: "TURN", Name: "车削"})
	require.NoError(t, err)
	f.drillID, err = database.CreateProcess(ctx, f.db, model.Process{Code: "DRILL", Name: "钻孔"})
	require.NoError(t, err)

	f.templateID, err = database.CreateProcessCode(ctx, f.db, model.ProcessCode{Code: "R-SHAFT", Version: "1"})
	require.NoError(t, err)
	f.ownID, err = database.CreateProcessCode(ctx, f.db, model.ProcessCode{Code: "R-SH-12", Version: "1"})
	require.NoError(t, err)
	_, err = database.CreateProcessDetail(ctx, f.db, model.ProcessDetail{ProcessCodeID: f.templateID, StepNo: 1, ProcessID: turnID, MachineTime: decimal.NewFromInt(20), ProcessContent: "车外圆Φ${D}"})
	require.NoError(t, err)
	_, err = database.CreateProcessDetail(ctx, f.db, model.ProcessDetail{ProcessCodeID: f.templateID, StepNo: 2, ProcessID: f.drillID, ProcessContent: "钻孔直径${D+3}mm", RequiredEquipment: "钻床"})
	require.NoError(t, err)

	_, err = database.CreateCategoryProcessCode(ctx, f.db, model.CategoryProcessCode{CategoryID: f.categoryID, ProcessCodeID: f.templateID, IsDefault: true})
	require.NoError(t, err)
	f.linkID, err = database.CreateProductProcessCode(ctx, f.db, model.ProductProcessCode{ProductID: f.productID, ProcessCodeID: f.ownID, IsDefault: true})
	require.NoError(t, err)
	return f
}

func TestAutoGenerateDetailsCopiesAndResolves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewService(f.db)

	created, err := svc.AutoGenerateDetails(ctx, f.linkID)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	details, err := database.ListProcessDetails(ctx, f.db, f.ownID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "车外圆Φ12", details[0].ProcessContent)
	assert.True(t, details[0].MachineTime.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "钻孔直径15mm", details[1].ProcessContent)
	assert.Equal(t, "钻床", details[1].RequiredEquipment)

	again, err := svc.AutoGenerateDetails(ctx, f.linkID)
	require.NoError(t, err)
	assert.Zero(t, again)

	details, err = database.ListProcessDetails(ctx, f.db, f.ownID)
	require.NoError(t, err)
	assert.Len(t, details, 2)
}

func TestAutoGenerateDetailsRejectsStepTakenByOtherProcess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := database.CreateProcessDetail(ctx, f.db, model.ProcessDetail{ProcessCodeID: f.ownID, StepNo: 1, ProcessID: f.drillID, ProcessContent: "预钻"})
	require.NoError(t, err)

	_, err = NewService(f.db).AutoGenerateDetails(ctx, f.linkID)
	require.Error(t, err)
	assert.True(t, model.IsClientError(err))
	assert.Contains(t, err.Error(), "工序号 1")

	details, err := database.ListProcessDetails(ctx, f.db, f.ownID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "预钻", details[0].ProcessContent)
}

func TestAutoGenerateDetailsWithoutCategoryDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.db.ExecContext(ctx, `UPDATE category_process_codes SET is_default = 0`)
	require.NoError(t, err)

	_, err = NewService(f.db).AutoGenerateDetails(ctx, f.linkID)
	assert.True(t, model.IsClientError(err))
}

func TestExcelRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, ExportExcel(ctx, f.db, f.templateID, &buf))

	wb, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	rows, err := wb.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, excelHeader, rows[0])
	assert.Equal(t, "DRILL", rows[2][1])
	assert.Equal(t, "钻孔直径${D+3}mm", rows[2][4])
	require.NoError(t, wb.Close())

	n, err := ImportExcel(ctx, f.db, f.ownID, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	details, err := database.ListProcessDetails(ctx, f.db, f.ownID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, f.drillID, details[1].ProcessID)
	assert.Equal(t, "钻孔直径${D+3}mm", details[1].ProcessContent)
	assert.Equal(t, "", details[0].RequiredEquipment)
}

func TestImportExcelRejectsUnknownProcess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	wb := excelize.NewFile()
	require.NoError(t, wb.SetSheetRow("Sheet1", "A1", &excelHeader))
	require.NoError(t, wb.SetSheetRow("Sheet1", "A2", &[]interface{}{1, "MILL", "1", "1", "铣平面"}))
	var buf bytes.Buffer
	_, err := wb.WriteTo(&buf)
	require.NoError(t, err)

	_, err = ImportExcel(ctx, f.db, f.ownID, &buf)
	require.Error(t, err)
	assert.True(t, model.IsClientError(err))
	assert.Contains(t, err.Error(), "第2行")
}

func TestImportHandlerAcceptsXLSX(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var xlsx bytes.Buffer
	require.NoError(t, ExportExcel(ctx, f.db, f.templateID, &xlsx))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "details.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/process_details/import?processCodeId="+strconv.FormatInt(f.ownID, 10), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ImportHandler(f.db)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"imported":2`)
}
