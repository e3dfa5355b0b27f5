package loader

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"mfg/database"
	"mfg/model"
)

// Seed は初期マスタデータの YAML 表現です。
type Seed struct {
	Units      []SeedUnit     `yaml:"units"`
	Companies  []SeedCompany  `yaml:"companies"`
	Processes  []SeedProcess  `yaml:"processes"`
	Categories []SeedCategory `yaml:"categories"`
}

type SeedUnit struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type SeedCompany struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type SeedProcess struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type SeedCategory struct {
	Company string   `yaml:"company"`
	Code    string   `yaml:"code"`
	Name    string   `yaml:"name"`
	Unit    string   `yaml:"unit"`
	Params  []string `yaml:"params"`
}

func LoadSeedFile(ctx context.Context, db *sqlx.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open seed file %s: %w", path, err)
	}
	defer f.Close()
	return LoadSeed(ctx, db, f)
}

// LoadSeed は YAML の初期データを1トランザクションで登録します。
func LoadSeed(ctx context.Context, db *sqlx.DB, r io.Reader) error {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	return database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, u := range seed.Units {
			if err := database.UpsertUnitInTx(ctx, tx, model.Unit{Code: u.Code, Name: u.Name}); err != nil {
				return err
			}
		}

		companyIDs := map[string]int64{}
		for _, c := range seed.Companies {
			id, err := database.CreateCompany(ctx, tx, model.Company{Code: c.Code, Name: c.Name})
			if err != nil {
				return err
			}
			companyIDs[c.Code] = id
		}

		for _, p := range seed.Processes {
			if _, err := database.CreateProcess(ctx, tx, model.Process{Code: p.Code, Name: p.Name}); err != nil {
				return err
			}
		}

		units, err := database.ListUnits(ctx, tx)
		if err != nil {
			return err
		}
		unitIDs := map[string]int64{}
		for _, u := range units {
			unitIDs[u.Code] = u.ID
		}

		for _, c := range seed.Categories {
			companyID, ok := companyIDs[c.Company]
			if !ok {
				return fmt.Errorf("category %s refers to unknown company %q", c.Code, c.Company)
			}
			category := model.ProductCategory{CompanyID: companyID, Code: c.Code, DisplayName: c.Name}
			if id, ok := unitIDs[c.Unit]; ok {
				category.UnitID = &id
			}
			categoryID, err := database.CreateCategory(ctx, tx, category)
			if err != nil {
				return err
			}
			for _, name := range c.Params {
				if _, err := database.CreateCategoryParam(ctx, tx, categoryID, name); err != nil {
					return err
				}
			}
		}

		zap.S().Infof("Seed loaded: %d units, %d companies, %d processes, %d categories",
			len(seed.Units), len(seed.Companies), len(seed.Processes), len(seed.Categories))
		return nil
	})
}
