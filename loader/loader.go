package loader

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mfg/database"
	"mfg/model"
)

//go:embed schema.sql
var schemaSQL string

// OpenDatabase は SQLite データベースを開き、スキーマを適用します。
// SQLite は書き込みが1本のみのため接続数を1に制限します。
func OpenDatabase(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := InitDatabase(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitDatabase はデータベーススキーマを適用し、採番シーケンスを初期化します。
func InitDatabase(db *sqlx.DB) error {
	zap.S().Info("Applying database schema...")
	if err := applySchema(db); err != nil {
		return fmt.Errorf("failed to apply schema.sql: %w", err)
	}

	ctx := context.Background()
	err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		return database.InitializeSequenceFromMaxWorkOrderNo(ctx, tx, "WO")
	})
	if err != nil {
		zap.S().Warnf("Failed to initialize WO sequence: %v", err)
	}
	return nil
}

func applySchema(db *sqlx.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// 工艺明細 CSV の列 (ヘッダー行あり、GBK):
// 工序号, 工序代码, 设备时间, 人工时间, 工艺内容, 所需设备
const processDetailCSVColumns = 6

// LoadProcessDetailCSV は GBK エンコードの CSV を読み込み、指定の工艺流程にテンプレート行を登録します。
// 既存の工序号は上書きします。
func LoadProcessDetailCSV(ctx context.Context, db *sqlx.DB, path string, processCodeID int64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("could not open file %s: %w", path, err)
	}
	defer f.Close()
	return ImportProcessDetailCSV(ctx, db, f, processCodeID)
}

func ImportProcessDetailCSV(ctx context.Context, db *sqlx.DB, r io.Reader, processCodeID int64) (int, error) {
	rows, err := ReadGBKCSV(r)
	if err != nil {
		return 0, err
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}
	return ImportProcessDetailRows(ctx, db, processCodeID, rows)
}

// ImportProcessDetailRows はヘッダーを除いた行をテンプレート行として登録します。
// 列数が足りない行は読み飛ばし、不正な値がある行は行番号付きのクライアントエラーにします。
// CSV と Excel の取り込みで共通に使います。
func ImportProcessDetailRows(ctx context.Context, db *sqlx.DB, processCodeID int64, rows [][]string) (int, error) {
	rowCount := 0
	err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := database.GetProcessCode(ctx, tx, processCodeID); err != nil {
			return err
		}
		processes, err := database.GetProcessMap(ctx, tx)
		if err != nil {
			return err
		}

		for i, row := range rows {
			if len(row) < processDetailCSVColumns {
				continue
			}
			detail, err := parseProcessDetailRow(row, processes)
			if err != nil {
				return model.NewClientError("第%d行: %v", i+2, err)
			}
			detail.ProcessCodeID = processCodeID
			if err := database.UpsertProcessDetailInTx(ctx, tx, detail); err != nil {
				return err
			}
			rowCount++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	zap.S().Infof("Inserted or replaced %d process detail rows into process code %d", rowCount, processCodeID)
	return rowCount, nil
}

func parseProcessDetailRow(row []string, processes map[string]model.Process) (model.ProcessDetail, error) {
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	stepNo, err := strconv.Atoi(row[0])
	if err != nil {
		return model.ProcessDetail{}, fmt.Errorf("工序号 %q 不是整数", row[0])
	}
	process, ok := processes[row[1]]
	if !ok {
		return model.ProcessDetail{}, fmt.Errorf("工序代码 %q 不存在", row[1])
	}
	machineTime, err := parseDecimalOrZero(row[2])
	if err != nil {
		return model.ProcessDetail{}, fmt.Errorf("设备时间 %q 不是数字", row[2])
	}
	laborTime, err := parseDecimalOrZero(row[3])
	if err != nil {
		return model.ProcessDetail{}, fmt.Errorf("人工时间 %q 不是数字", row[3])
	}

	return model.ProcessDetail{
		StepNo:            stepNo,
		ProcessID:         process.ID,
		MachineTime:       machineTime,
		LaborTime:         laborTime,
		ProcessContent:    row[4],
		RequiredEquipment: row[5],
	}, nil
}

func parseDecimalOrZero(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
