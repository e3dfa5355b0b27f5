package processdetail

import (
	"context"
	"io"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"

	"mfg/database"
	"mfg/loader"
)

const sheetName = "工艺明细"

var excelHeader = []string{"工序号", "工序代码", "设备时间", "人工时间", "工艺内容", "所需设备"}

// ExportExcel は工艺流程のテンプレート行を xlsx として w に書き出します。
func ExportExcel(ctx context.Context, q database.DBTX, processCodeID int64, w io.Writer) error {
	details, err := database.ListProcessDetails(ctx, q, processCodeID)
	if err != nil {
		return err
	}
	processes, err := database.ListProcesses(ctx, q)
	if err != nil {
		return err
	}
	codes := make(map[int64]string, len(processes))
	for _, p := range processes {
		codes[p.ID] = p.Code
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A1", &excelHeader); err != nil {
		return err
	}
	for i, d := range details {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			d.StepNo,
			codes[d.ProcessID],
			d.MachineTime.String(),
			d.LaborTime.String(),
			d.ProcessContent,
			d.RequiredEquipment,
		}
		if err := f.SetSheetRow(sheetName, addr, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheetName, "E", "E", 40); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

// ImportExcel は xlsx の先頭シートを読み込み、テンプレート行を登録します。1行目はヘッダーです。
func ImportExcel(ctx context.Context, db *sqlx.DB, processCodeID int64, r io.Reader) (int, error) {
	rows, err := loader.ReadWorkbook(r)
	if err != nil {
		return 0, err
	}
	if len(rows) <= 1 {
		return 0, nil
	}
	body := rows[1:]
	for i, row := range body {
		if row == nil {
			continue
		}
		for len(row) < len(excelHeader) {
			row = append(row, "")
		}
		body[i] = row
	}
	return loader.ImportProcessDetailRows(ctx, db, processCodeID, body)
}
