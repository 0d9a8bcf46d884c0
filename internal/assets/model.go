package assets

import (
	"database/sql"
	"strings"
	"time"

	"golang.org/x/text/width"
)

// 資産ステータス（正準値）
const (
	StatusAvailable   = "available"
	StatusActive      = "active"
	StatusAssigned    = "assigned"
	StatusMaintenance = "maintenance"
	StatusRetired     = "retired"
)

// Asset は資産の正準リードモデル。
// 物理行の形は環境ごとに揺れるため、必ず FromRecord を通して作ること。
type Asset struct {
	AssetTag string
	Name     string
	Category *string
	Status   string
	Loanable bool
	Serial   *string
	Location *string
	Notes    *string
}

// 行の形ゆれ対策。status/loanable は別サブシステム由来のカラム名を許容する。
var (
	statusFieldNames   = []string{"status", "Status", "asset_status", "state"}
	loanableFieldNames = []string{"loanable", "Loanable", "is_loanable", "loanable_flag"}
)

// NormalizeTag は全角混じりのタグを半角へ畳み、前後空白を落として大文字化する。
func NormalizeTag(s string) string {
	return strings.ToUpper(strings.TrimSpace(width.Narrow.String(s)))
}

// NormalizeStatus は大小文字と空白のゆれを吸収する。
func NormalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "_")
}

// parseLoanable: bool / 数値1 / "true" 系の表現を受け付ける。
// 値が取れない場合は貸出可とみなす（カラム欠落許容）。
func parseLoanable(v any, ok bool) bool {
	if !ok || v == nil {
		return true
	}
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []byte:
		return truthy(string(t))
	case string:
		return truthy(t)
	default:
		return true
	}
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

func stringField(rec map[string]any, key string) (string, bool) {
	v, ok := rec[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	default:
		return "", false
	}
}

// FromRecord は生の行マップから正準モデルへ変換する。
// フィールド名の揺れの吸収はここ一箇所に集約する。
func FromRecord(rec map[string]any) Asset {
	var a Asset

	if v, ok := stringField(rec, "asset_tag"); ok {
		a.AssetTag = v
	} else if v, ok := stringField(rec, "tag"); ok {
		a.AssetTag = v
	}
	if v, ok := stringField(rec, "name"); ok {
		a.Name = v
	}
	for _, f := range statusFieldNames {
		if v, ok := stringField(rec, f); ok {
			a.Status = NormalizeStatus(v)
			break
		}
	}
	a.Loanable = true
	for _, f := range loanableFieldNames {
		if v, ok := rec[f]; ok {
			a.Loanable = parseLoanable(v, true)
			break
		}
	}

	if v, ok := stringField(rec, "category"); ok {
		a.Category = &v
	}
	if v, ok := stringField(rec, "serial"); ok {
		a.Serial = &v
	}
	if v, ok := stringField(rec, "location"); ok {
		a.Location = &v
	}
	if v, ok := stringField(rec, "notes"); ok {
		a.Notes = &v
	}
	return a
}

// RowMap は現在行をカラム名->値のマップに読み出す。
// MySQLドライバは文字列を []byte で返すため FromRecord 側で吸収する。
func RowMap(rows *sql.Rows) (map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	rec := make(map[string]any, len(cols))
	for i, c := range cols {
		if t, ok := vals[i].(time.Time); ok {
			rec[c] = t
			continue
		}
		rec[c] = vals[i]
	}
	return rec, nil
}
