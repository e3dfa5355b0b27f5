package loader

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"mfg/database"
	"mfg/model"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenDatabase(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func gbk(t *testing.T, s string) []byte {
	t.Helper()
	b, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestInitDatabaseIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, InitDatabase(db))
	require.NoError(t, InitDatabase(db))

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM code_sequences`))
	assert.Equal(t, 2, n)
}

func TestInitDatabaseAlignsSequenceWithExistingOrders(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.Exec(`INSERT INTO work_orders (workorder_no, quantity, status) VALUES ('WO000041', 1, 'draft')`)
	require.NoError(t, err)
	require.NoError(t, InitDatabase(db))

	no, err := database.NextSequenceInTx(context.Background(), db, "WO", "WO", 6)
	require.NoError(t, err)
	assert.Equal(t, "WO000042", no)
}

func TestImportProcessDetailCSV(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	_, err := database.CreateProcess(ctx, db, model.Process{Code: "DRILL", Name: "钻孔"})
	require.NoError(t, err)
	pcID, err := database.CreateProcessCode(ctx, db, model.ProcessCode{Code: "R1", Version: "1"})
	require.NoError(t, err)

	csv := "工序号,工序代码,设备时间,人工时间,工艺内容,所需设备\n" +
		"10,DRILL,12.5,3,钻孔直径${D+3}mm,钻床\n" +
		"20,DRILL,,,\"倒角, 去毛刺\",\n" +
		"short,row\n"
	n, err := ImportProcessDetailCSV(ctx, db, bytes.NewReader(gbk(t, csv)), pcID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	details, err := database.ListProcessDetails(ctx, db, pcID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "钻孔直径${D+3}mm", details[0].ProcessContent)
	assert.Equal(t, "钻床", details[0].RequiredEquipment)
	assert.Equal(t, "12.5", details[0].MachineTime.String())
	assert.Equal(t, "倒角, 去毛刺", details[1].ProcessContent)
	assert.True(t, details[1].LaborTime.IsZero())

	// 同じ工序号は上書き
	n, err = ImportProcessDetailCSV(ctx, db, bytes.NewReader(gbk(t, "h\n10,DRILL,1,1,新内容,\n")), pcID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	details, err = database.ListProcessDetails(ctx, db, pcID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "新内容", details[0].ProcessContent)
}

func TestImportProcessDetailCSVRejectsBadRow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	pcID, err := database.CreateProcessCode(ctx, db, model.ProcessCode{Code: "R1", Version: "1"})
	require.NoError(t, err)

	_, err = ImportProcessDetailCSV(ctx, db, bytes.NewReader(gbk(t, "h\n10,NOPE,1,1,x,\n")), pcID)
	require.Error(t, err)
	assert.True(t, model.IsClientError(err))
	assert.Contains(t, err.Error(), "第2行")

	_, err = ImportProcessDetailCSV(ctx, db, bytes.NewReader(gbk(t, "h\n")), 999)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

const seedYAML = `
units:
  - {code: PCS, name: 件}
  - {code: KG, name: 千克}
companies:
  - {code: C01, name: 测试机械}
processes:
  - {code: TURN, name: 车削}
  - {code: DRILL, name: 钻孔}
categories:
  - company: C01
    code: FLANGE
    name: 法兰
    unit: PCS
    params: [D, T]
  - company: C01
    code: BOLT
    name: 螺栓
    params: [D, L]
`

func TestLoadSeed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, LoadSeed(ctx, db, strings.NewReader(seedYAML)))

	units, err := database.ListUnits(ctx, db)
	require.NoError(t, err)
	assert.Len(t, units, 2)

	processes, err := database.GetProcessMap(ctx, db)
	require.NoError(t, err)
	assert.Contains(t, processes, "DRILL")

	categories, err := database.ListCategories(ctx, db)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	var flange model.ProductCategory
	for _, c := range categories {
		if c.Code == "FLANGE" {
			flange = c
		}
	}
	require.NotNil(t, flange.UnitID)

	params, err := database.ListCategoryParams(ctx, db, flange.ID)
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.Equal(t, "D", params[0].Name)
	assert.Equal(t, "T", params[1].Name)
}

func TestLoadSeedUnknownCompanyRollsBack(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	bad := `
units:
  - {code: PCS, name: 件}
categories:
  - {company: NOPE, code: X, name: X}
`
	require.Error(t, LoadSeed(ctx, db, strings.NewReader(bad)))

	units, err := database.ListUnits(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, units)
}
