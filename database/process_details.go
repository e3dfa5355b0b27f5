package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mfg/model"
)

const processDetailColumns = `id, process_code_id, step_no, process_id, machine_time, labor_time,
	process_content, required_equipment, program_file`

// ListProcessDetails は工艺流程のテンプレート行を工序号順に返します。
func ListProcessDetails(ctx context.Context, q DBTX, processCodeID int64) ([]model.ProcessDetail, error) {
	details := []model.ProcessDetail{}
	err := q.SelectContext(ctx, &details,
		"SELECT "+processDetailColumns+" FROM process_details WHERE process_code_id = ? ORDER BY step_no", processCodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list process details for process code %d: %w", processCodeID, err)
	}
	return details, nil
}

func CreateProcessDetail(ctx context.Context, q DBTX, d model.ProcessDetail) (int64, error) {
	const stmt = `
		INSERT INTO process_details (process_code_id, step_no, process_id, machine_time, labor_time,
			process_content, required_equipment, program_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := insertID(q.ExecContext(ctx, stmt, d.ProcessCodeID, d.StepNo, d.ProcessID, d.MachineTime, d.LaborTime,
		d.ProcessContent, d.RequiredEquipment, d.ProgramFile))
	if err != nil {
		return 0, fmt.Errorf("CreateProcessDetail (process code %d, step %d) failed: %w", d.ProcessCodeID, d.StepNo, err)
	}
	return id, nil
}

// UpsertProcessDetailInTx は (工艺流程, 工序号) をキーにテンプレート行を挿入または更新します。
func UpsertProcessDetailInTx(ctx context.Context, q DBTX, d model.ProcessDetail) error {
	const stmt = `
		INSERT INTO process_details (process_code_id, step_no, process_id, machine_time, labor_time,
			process_content, required_equipment, program_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(process_code_id, step_no) DO UPDATE SET
			process_id = excluded.process_id,
			machine_time = excluded.machine_time,
			labor_time = excluded.labor_time,
			process_content = excluded.process_content,
			required_equipment = excluded.required_equipment`
	_, err := q.ExecContext(ctx, stmt, d.ProcessCodeID, d.StepNo, d.ProcessID, d.MachineTime, d.LaborTime,
		d.ProcessContent, d.RequiredEquipment, d.ProgramFile)
	if err != nil {
		return fmt.Errorf("UpsertProcessDetailInTx (process code %d, step %d) failed: %w", d.ProcessCodeID, d.StepNo, err)
	}
	return nil
}

func DeleteProcessDetail(ctx context.Context, q DBTX, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM process_details WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete process detail %d: %w", id, err)
	}
	return nil
}

// FindProcessDetailByStep は工艺流程の指定工序号の行を返します。無い場合は nil です。
func FindProcessDetailByStep(ctx context.Context, q DBTX, processCodeID int64, stepNo int) (*model.ProcessDetail, error) {
	var d model.ProcessDetail
	err := q.GetContext(ctx, &d,
		"SELECT "+processDetailColumns+" FROM process_details WHERE process_code_id = ? AND step_no = ?",
		processCodeID, stepNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find process detail (%d, %d): %w", processCodeID, stepNo, err)
	}
	return &d, nil
}
