package model

import "github.com/shopspring/decimal"

type Company struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Code    string `db:"code" json:"code"`
	Address string `db:"address" json:"address"`
	Contact string `db:"contact" json:"contact"`
	Phone   string `db:"phone" json:"phone"`
}

type Unit struct {
	ID          int64  `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

// ProductCategory は製品・物料のカテゴリです。パラメータ項目 (CategoryParam) を持ちます。
type ProductCategory struct {
	ID          int64  `db:"id" json:"id"`
	CompanyID   int64  `db:"company_id" json:"companyId"`
	Code        string `db:"code" json:"code"`
	DisplayName string `db:"display_name" json:"displayName"`
	UnitID      *int64 `db:"unit_id" json:"unitId,omitempty"`
	DrawingPDF  string `db:"drawing_pdf" json:"drawingPdf"`
	ProcessPDF  string `db:"process_pdf" json:"processPdf"`
}

type CategoryParam struct {
	ID         int64  `db:"id" json:"id"`
	CategoryID int64  `db:"category_id" json:"categoryId"`
	Name       string `db:"name" json:"name"`
}

// Product は製品マスタです。IsMaterial が true のものは物料 (外購品) として扱います。
type Product struct {
	ID         int64           `db:"id" json:"id"`
	Code       string          `db:"code" json:"code"`
	Name       string          `db:"name" json:"name"`
	Price      decimal.Decimal `db:"price" json:"price"`
	CategoryID int64           `db:"category_id" json:"categoryId"`
	UnitID     *int64          `db:"unit_id" json:"unitId,omitempty"`
	DrawingPDF string          `db:"drawing_pdf" json:"drawingPdf"`
	IsMaterial bool            `db:"is_material" json:"isMaterial"`
}

// ParamValue は製品 (または物料) 1件に紐づくパラメータ値です。値は常に文字列で保持します。
type ParamValue struct {
	ProductID int64  `db:"product_id" json:"productId"`
	ParamID   int64  `db:"param_id" json:"paramId"`
	ParamName string `db:"param_name" json:"paramName"`
	Value     string `db:"value" json:"value"`
}

type ProductInput struct {
	Product
	Params map[string]string `json:"params"`
}

type ProductView struct {
	Product
	CategoryCode string       `json:"categoryCode"`
	Params       []ParamValue `json:"params"`
}

type BOM struct {
	ID          int64     `db:"id" json:"id"`
	ProductID   int64     `db:"product_id" json:"productId"`
	Name        string    `db:"name" json:"name"`
	Version     string    `db:"version" json:"version"`
	Description string    `db:"description" json:"description"`
	Items       []BOMItem `db:"-" json:"items,omitempty"`
}

type BOMItem struct {
	ID           int64           `db:"id" json:"id"`
	BOMID        int64           `db:"bom_id" json:"bomId"`
	MaterialID   int64           `db:"material_id" json:"materialId"`
	MaterialCode string          `db:"material_code" json:"materialCode"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	Remark       string          `db:"remark" json:"remark"`
}

// CategoryMaterialRule は製品カテゴリから物料カテゴリへの生成ルールです。
type CategoryMaterialRule struct {
	ID               int64       `db:"id" json:"id"`
	SourceCategoryID int64       `db:"source_category_id" json:"sourceCategoryId"`
	TargetCategoryID int64       `db:"target_category_id" json:"targetCategoryId"`
	Params           []RuleParam `db:"-" json:"params,omitempty"`
}

// RuleParam は生成先パラメータ1つ分の式です (固定値、または ${D+3} のような式)。
type RuleParam struct {
	ID            int64  `db:"id" json:"id"`
	RuleID        int64  `db:"rule_id" json:"ruleId"`
	TargetParamID int64  `db:"target_param_id" json:"targetParamId"`
	ParamName     string `db:"param_name" json:"paramName"`
	Expression    string `db:"expression" json:"expression"`
}
