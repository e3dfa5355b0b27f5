package database

import (
	"context"
	"fmt"

	"mfg/model"
)

func ListUnits(ctx context.Context, q DBTX) ([]model.Unit, error) {
	units := []model.Unit{}
	if err := q.SelectContext(ctx, &units, "SELECT id, code, name, description FROM units ORDER BY code"); err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

// UpsertUnitInTx は単位を単位コードで挿入または更新します。
func UpsertUnitInTx(ctx context.Context, q DBTX, u model.Unit) error {
	const stmt = `
		INSERT INTO units (code, name, description)
		VALUES (?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			description = excluded.description
	`
	if _, err := q.ExecContext(ctx, stmt, u.Code, u.Name, u.Description); err != nil {
		return fmt.Errorf("UpsertUnitInTx (Code: %s, Name: %s) failed: %w", u.Code, u.Name, err)
	}
	return nil
}

func DeleteUnit(ctx context.Context, q DBTX, code string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM units WHERE code = ?`, code); err != nil {
		return fmt.Errorf("failed to delete unit with code %s: %w", code, err)
	}
	return nil
}
