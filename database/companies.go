package database

import (
	"context"
	"fmt"

	"mfg/model"
)

func ListCompanies(ctx context.Context, q DBTX) ([]model.Company, error) {
	companies := []model.Company{}
	err := q.SelectContext(ctx, &companies, "SELECT id, name, code, address, contact, phone FROM companies ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

func CreateCompany(ctx context.Context, q DBTX, c model.Company) (int64, error) {
	const stmt = `INSERT INTO companies (name, code, address, contact, phone) VALUES (?, ?, ?, ?, ?)`
	id, err := insertID(q.ExecContext(ctx, stmt, c.Name, c.Code, c.Address, c.Contact, c.Phone))
	if err != nil {
		return 0, fmt.Errorf("CreateCompany (%s) failed: %w", c.Name, err)
	}
	return id, nil
}
