package main

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mfg/masteredit"
	"mfg/materialgen"
	"mfg/processdetail"
	"mfg/render"
	"mfg/units"
	"mfg/workorder"
)

func SetupRoutes(mux *http.ServeMux, dbConn *sqlx.DB) {
	mux.HandleFunc("/api/companies", masteredit.CompaniesHandler(dbConn))
	mux.HandleFunc("/api/units", units.UnitsHandler(dbConn))
	mux.HandleFunc("/api/units/map", units.MapHandler())
	mux.HandleFunc("/api/categories", masteredit.CategoriesHandler(dbConn))
	mux.HandleFunc("/api/categories/params", masteredit.CategoryParamsHandler(dbConn))
	mux.HandleFunc("/api/products", masteredit.ProductsHandler(dbConn))
	mux.HandleFunc("/api/products/params", masteredit.ProductParamsHandler(dbConn))
	mux.HandleFunc("/api/products/import", masteredit.ImportProductsHandler(dbConn))
	mux.HandleFunc("/api/materials", masteredit.MaterialsHandler(dbConn))
	mux.HandleFunc("/api/materials/import", masteredit.ImportMaterialsHandler(dbConn))

	mux.HandleFunc("/api/processes", masteredit.ProcessesHandler(dbConn))
	mux.HandleFunc("/api/process_codes", masteredit.ProcessCodesHandler(dbConn))
	mux.HandleFunc("/api/process_details", processdetail.DetailsHandler(dbConn))
	mux.HandleFunc("/api/process_details/import", processdetail.ImportHandler(dbConn))
	mux.HandleFunc("/api/process_details/export", processdetail.ExportHandler(dbConn))
	mux.HandleFunc("/api/product_process_codes", masteredit.ProductProcessCodesHandler(dbConn))
	mux.HandleFunc("/api/product_process_codes/auto_generate", processdetail.AutoGenerateHandler(dbConn))
	mux.HandleFunc("/api/category_process_codes", masteredit.CategoryProcessCodesHandler(dbConn))

	mux.HandleFunc("/api/boms", masteredit.BOMsHandler(dbConn))
	mux.HandleFunc("/api/rules", masteredit.RulesHandler(dbConn))
	mux.HandleFunc("/api/rules/params", masteredit.RuleParamsHandler(dbConn))
	mux.HandleFunc("/api/rules/generate_material", materialgen.GenerateMaterialHandler(dbConn))

	mux.HandleFunc("/api/orders", masteredit.OrdersHandler(dbConn))
	mux.HandleFunc("/api/orders/without_workorder", masteredit.OrdersWithoutWorkOrderHandler(dbConn))
	mux.HandleFunc("/api/workorders", workorder.WorkOrdersHandler(dbConn))
	mux.HandleFunc("/api/workorders/create_by_order", workorder.CreateByOrderHandler(dbConn))
	mux.HandleFunc("/api/workorders/update", workorder.UpdateHandler(dbConn))
	mux.HandleFunc("/api/workorders/generate_details", workorder.GenerateDetailsHandler(dbConn))
	mux.HandleFunc("/api/workorders/details", workorder.DetailsHandler(dbConn))
	mux.HandleFunc("/api/workorders/details/delete", workorder.DeleteDetailsHandler(dbConn))
	mux.HandleFunc("/api/workorders/feedback", workorder.FeedbackHandler(dbConn))
	mux.HandleFunc("/api/workorders/print", render.PrintHandler(dbConn))

	mux.HandleFunc("/api/config", ConfigHandler())
	mux.Handle("/metrics", promhttp.Handler())
}
