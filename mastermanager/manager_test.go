package mastermanager

import (
	"context"
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

func newCategory(t *testing.T, db *sqlx.DB, code string, params ...string) *model.ProductCategory {
	t.Helper()
	ctx := context.Background()
	companyID, err := database.CreateCompany(ctx, db, model.Company{Name: "公司", Code: "C-" + code})
	require.NoError(t, err)
	id, err := database.CreateCategory(ctx, db, model.ProductCategory{CompanyID: companyID, Code: code})
	require.NoError(t, err)
	for _, p := range params {
		_, err := database.CreateCategoryParam(ctx, db, id, p)
		require.NoError(t, err)
	}
	c, err := database.GetCategory(ctx, db, id)
	require.NoError(t, err)
	return c
}

func TestFindOrCreateMaterialIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	bolt := newCategory(t, db, "BOLT", "D", "L")

	m, created, err := FindOrCreateMaterial(ctx, db, "BOLT-D-15-L-30", bolt, map[string]string{"D": "15", "L": "30"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, m.IsMaterial)

	again, created, err := FindOrCreateMaterial(ctx, db, "BOLT-D-15-L-30", bolt, map[string]string{"D": "15", "L": "30"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, m.ID, again.ID)

	params, err := database.GetParamMap(ctx, db, m.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"D": "15", "L": "30"}, params)
}

func TestFindOrCreateMaterialRejectsProductCode(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	bolt := newCategory(t, db, "BOLT")
	_, err := database.CreateProduct(ctx, db, model.Product{Code: "BOLT-X", CategoryID: bolt.ID})
	require.NoError(t, err)

	_, _, err = FindOrCreateMaterial(ctx, db, "BOLT-X", bolt, nil)
	var ce *model.ClientError
	assert.ErrorAs(t, err, &ce)
}

func TestEnsureBOMItem(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	flange := newCategory(t, db, "FLANGE")
	bolt := newCategory(t, db, "BOLT")
	productID, err := database.CreateProduct(ctx, db, model.Product{Code: "FL-12", CategoryID: flange.ID})
	require.NoError(t, err)
	material, _, err := FindOrCreateMaterial(ctx, db, "BOLT", bolt, nil)
	require.NoError(t, err)

	bom, err := FindOrCreateBOM(ctx, db, productID, "FL-12-A", "A")
	require.NoError(t, err)
	same, err := FindOrCreateBOM(ctx, db, productID, "FL-12-A", "A")
	require.NoError(t, err)
	assert.Equal(t, bom.ID, same.ID)

	item, added, err := EnsureBOMItem(ctx, db, bom.ID, material)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "1", item.Quantity.String())
	assert.Equal(t, "规则自动生成", item.Remark)

	_, added, err = EnsureBOMItem(ctx, db, bom.ID, material)
	require.NoError(t, err)
	assert.False(t, added)
}

func TestSaveProductUpdatesAndReplacesParams(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	flange := newCategory(t, db, "FLANGE", "D")

	p, err := SaveProduct(ctx, db, model.ProductInput{
		Product: model.Product{Code: "FL-1", Name: "法兰", CategoryID: flange.ID},
		Params:  map[string]string{"D": "10"},
	})
	require.NoError(t, err)

	p.Name = "法兰改"
	_, err = SaveProduct(ctx, db, model.ProductInput{Product: *p, Params: map[string]string{"D": "11"}})
	require.NoError(t, err)

	view, err := GetProductView(ctx, db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "法兰改", view.Name)
	assert.Equal(t, "FLANGE", view.CategoryCode)
	require.Len(t, view.Params, 1)
	assert.Equal(t, "11", view.Params[0].Value)

	_, err = SaveProduct(ctx, db, model.ProductInput{Product: model.Product{CategoryID: flange.ID}})
	var ce *model.ClientError
	assert.ErrorAs(t, err, &ce)
}
