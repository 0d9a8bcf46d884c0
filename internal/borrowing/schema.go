package borrowing

import (
	"context"
	"database/sql"
	"strings"
)

// 貸出テーブルは移行経緯で2つの物理名が存在する。
// 起動時に一度だけ解決し、以後は解決済み Schema を引き回す。
var candidateTables = []string{"borrowing", "asset_borrowing"}

const idColumn = "id"

// Schema は解決済みの貸出テーブル情報。
type Schema struct {
	Table           string
	IDAutoGenerated bool
	columns         map[string]struct{}
}

func NewSchema(table string, columns []string, idAutoGenerated bool) Schema {
	m := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		m[c] = struct{}{}
	}
	return Schema{Table: table, IDAutoGenerated: idAutoGenerated, columns: m}
}

func (s Schema) HasColumn(name string) bool {
	_, ok := s.columns[name]
	return ok
}

type columnInfo struct {
	Name  string
	Extra string
}

// ProbeSchema は INFORMATION_SCHEMA から候補テーブルのカラム構成を読み、
// 使用するテーブルを確定する。override 指定時は候補探索を行わない。
func ProbeSchema(ctx context.Context, conn *sql.DB, dbName, override string) (Schema, error) {
	const q = `
	SELECT TABLE_NAME, COLUMN_NAME, EXTRA
	FROM INFORMATION_SCHEMA.COLUMNS
	WHERE TABLE_SCHEMA = ? AND TABLE_NAME IN (?, ?, ?)`

	third := override
	if third == "" {
		third = candidateTables[0]
	}
	rows, err := conn.QueryContext(ctx, q, dbName, candidateTables[0], candidateTables[1], third)
	if err != nil {
		return Schema{}, err
	}
	defer rows.Close()

	catalog := map[string][]columnInfo{}
	for rows.Next() {
		var table, column, extra string
		if err := rows.Scan(&table, &column, &extra); err != nil {
			return Schema{}, err
		}
		catalog[table] = append(catalog[table], columnInfo{Name: column, Extra: extra})
	}
	if err := rows.Err(); err != nil {
		return Schema{}, err
	}
	return resolveSchema(catalog, override)
}

// resolveSchema はカタログ情報から Schema を組み立てる純粋関数。
func resolveSchema(catalog map[string][]columnInfo, override string) (Schema, error) {
	pick := func(table string) (Schema, bool) {
		cols, ok := catalog[table]
		if !ok || len(cols) == 0 {
			return Schema{}, false
		}
		s := Schema{Table: table, columns: make(map[string]struct{}, len(cols))}
		for _, c := range cols {
			s.columns[c.Name] = struct{}{}
			if c.Name == idColumn && strings.Contains(strings.ToLower(c.Extra), "auto_increment") {
				s.IDAutoGenerated = true
			}
		}
		return s, true
	}

	if override != "" {
		if s, ok := pick(override); ok {
			return s, nil
		}
		return Schema{}, ErrConfig("configured borrowing table not found: " + override)
	}
	for _, t := range candidateTables {
		if s, ok := pick(t); ok {
			return s, nil
		}
	}
	return Schema{}, ErrConfig("no borrowing table found")
}
