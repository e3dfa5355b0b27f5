package units

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"mfg/database"
	"mfg/model"
)

var (
	mu          sync.RWMutex
	internalMap map[string]string
	reverseMap  map[string]string
)

// LoadUnitFile は GBK エンコードの単位 CSV (编码, 名称[, 说明]) を読み込み、units テーブルに登録します。
func LoadUnitFile(ctx context.Context, db *sqlx.DB, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("LoadUnitFile: open %s: %w", path, err)
	}
	defer file.Close()
	return ImportUnits(ctx, db, file)
}

func ImportUnits(ctx context.Context, db *sqlx.DB, r io.Reader) (int, error) {
	reader := csv.NewReader(transform.NewReader(r, simplifiedchinese.GBK.NewDecoder()))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var units []model.Unit
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("ImportUnits: read: %w", err)
		}
		if len(record) < 2 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		u := model.Unit{Code: strings.TrimSpace(record[0]), Name: strings.TrimSpace(record[1])}
		if len(record) > 2 {
			u.Description = strings.TrimSpace(record[2])
		}
		units = append(units, u)
	}

	err := database.InTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, u := range units {
			if err := database.UpsertUnitInTx(ctx, tx, u); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := Refresh(ctx, db); err != nil {
		return 0, err
	}
	zap.S().Infof("Loaded %d units", len(units))
	return len(units), nil
}

// Refresh は units テーブルから単位コードと単位名のマップを読み直します。
func Refresh(ctx context.Context, q database.DBTX) error {
	list, err := database.ListUnits(ctx, q)
	if err != nil {
		return err
	}
	m := make(map[string]string, len(list))
	rev := make(map[string]string, len(list))
	for _, u := range list {
		m[u.Code] = u.Name
		rev[u.Name] = u.Code
	}
	mu.Lock()
	internalMap, reverseMap = m, rev
	mu.Unlock()
	return nil
}

// Map は単位コードと単位名のマップの複製を返します。
func Map() map[string]string {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]string, len(internalMap))
	for k, v := range internalMap {
		out[k] = v
	}
	return out
}

// ResolveName は単位コードを単位名に変換します。
func ResolveName(code string) string {
	mu.RLock()
	defer mu.RUnlock()
	if name, ok := internalMap[code]; ok {
		return name
	}
	return code
}

// ResolveCode は単位名を単位コードに変換します。
func ResolveCode(name string) string {
	mu.RLock()
	defer mu.RUnlock()
	return reverseMap[name]
}
