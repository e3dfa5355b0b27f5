package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mfg/model"
)

func ListProcesses(ctx context.Context, q DBTX) ([]model.Process, error) {
	processes := []model.Process{}
	if err := q.SelectContext(ctx, &processes, "SELECT id, code, name, description FROM processes ORDER BY code"); err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	return processes, nil
}

// GetProcessMap は工序コード -> 工序 のマップを返します (取込処理用)。
func GetProcessMap(ctx context.Context, q DBTX) (map[string]model.Process, error) {
	processes, err := ListProcesses(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get process list for map: %w", err)
	}
	m := make(map[string]model.Process, len(processes))
	for _, p := range processes {
		m[p.Code] = p
	}
	return m, nil
}

func CreateProcess(ctx context.Context, q DBTX, p model.Process) (int64, error) {
	id, err := insertID(q.ExecContext(ctx,
		`INSERT INTO processes (code, name, description) VALUES (?, ?, ?)`, p.Code, p.Name, p.Description))
	if err != nil {
		return 0, fmt.Errorf("CreateProcess (%s) failed: %w", p.Code, err)
	}
	return id, nil
}

func ListProcessCodes(ctx context.Context, q DBTX) ([]model.ProcessCode, error) {
	codes := []model.ProcessCode{}
	err := q.SelectContext(ctx, &codes,
		"SELECT id, code, version, description, process_pdf FROM process_codes ORDER BY code, version")
	if err != nil {
		return nil, fmt.Errorf("failed to list process codes: %w", err)
	}
	return codes, nil
}

func GetProcessCode(ctx context.Context, q DBTX, id int64) (*model.ProcessCode, error) {
	var pc model.ProcessCode
	err := q.GetContext(ctx, &pc, "SELECT id, code, version, description, process_pdf FROM process_codes WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("process code %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get process code %d: %w", id, err)
	}
	return &pc, nil
}

func CreateProcessCode(ctx context.Context, q DBTX, pc model.ProcessCode) (int64, error) {
	const stmt = `INSERT INTO process_codes (code, version, description, process_pdf) VALUES (?, ?, ?, ?)`
	id, err := insertID(q.ExecContext(ctx, stmt, pc.Code, pc.Version, pc.Description, pc.ProcessPDF))
	if err != nil {
		return 0, fmt.Errorf("CreateProcessCode (%s v%s) failed: %w", pc.Code, pc.Version, err)
	}
	return id, nil
}
