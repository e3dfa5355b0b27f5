package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

func NextSequenceInTx(ctx context.Context, tx DBTX, name, prefix string, padding int) (string, error) {
	var lastNo int
	err := tx.GetContext(ctx, &lastNo, "SELECT last_no FROM code_sequences WHERE name = ?", name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("sequence '%s' not found", name)
		}
		return "", fmt.Errorf("failed to get sequence '%s': %w", name, err)
	}

	newNo := lastNo + 1
	_, err = tx.ExecContext(ctx, `UPDATE code_sequences SET last_no = ? WHERE name = ?`, newNo, name)
	if err != nil {
		return "", fmt.Errorf("failed to update sequence '%s': %w", name, err)
	}

	format := fmt.Sprintf("%s%%0%dd", prefix, padding)
	return fmt.Sprintf(format, newNo), nil
}

// InitializeSequenceFromMaxWorkOrderNo は既存の工単番号の最大値から 'WO' シーケンスを合わせます。
// 手入力された番号と自動採番が衝突しないようにするためです。
func InitializeSequenceFromMaxWorkOrderNo(ctx context.Context, tx DBTX, prefix string) error {
	var maxNo sql.NullString
	err := tx.GetContext(ctx, &maxNo,
		"SELECT workorder_no FROM work_orders WHERE workorder_no LIKE ? ORDER BY workorder_no DESC LIMIT 1", prefix+"%")

	maxNum := 0
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if maxNo.Valid && strings.HasPrefix(maxNo.String, prefix) {
		maxNum, _ = strconv.Atoi(strings.TrimPrefix(maxNo.String, prefix))
	}

	zap.S().Infof("[Sequence] Setting 'WO' last_no to %d", maxNum)

	_, err = tx.ExecContext(ctx, `UPDATE code_sequences SET last_no = MAX(last_no, ?) WHERE name = 'WO'`, maxNum)
	return err
}
