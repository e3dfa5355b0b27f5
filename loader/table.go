package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// ReadTable はファイル名の拡張子で形式を判定し、全行 (ヘッダー含む) を返します。
// .csv は GBK の CSV、それ以外は xlsx として読みます。
func ReadTable(r io.Reader, filename string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return ReadGBKCSV(r)
	}
	return ReadWorkbook(r)
}

// ReadGBKCSV は GBK エンコードの CSV を全行読み込みます。
// 解析できない行は nil として残し、行番号がずれないようにします。
func ReadGBKCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(transform.NewReader(r, simplifiedchinese.GBK.NewDecoder()))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to read csv: %w", err)
			}
			zap.S().Warnf("Error reading row %d (skipping): %v", line, err)
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, row)
	}
}

// ReadWorkbook は xlsx の先頭シートを読み込みます。
// GetRows は行末の空セルを返さないため、各行をヘッダーの列数まで空文字で埋めます。
func ReadWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) == 0 {
			rows[i] = nil
			continue
		}
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rows, nil
}
