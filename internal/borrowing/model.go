package borrowing

import (
	"fmt"
	"time"

	"ATLAS-backend/internal/assets"
)

const (
	StatusCheckedOut = "checked_out"
	StatusReturned   = "returned"
)

// BorrowRecord は貸出1件。DBの行と1対1。
type BorrowRecord struct {
	ID                  string
	BorrowULID          string
	AssetTag            string
	BorrowerName        string
	BorrowerContact     *string
	CheckoutDate        string // "2006-01-02"
	DueDate             *string
	CheckinDate         *time.Time
	Purpose             *string
	Location            *string
	Notes               *string
	Status              string
	Condition           *string
	DamageReported      bool
	DamageDescription   *string
	MaintenanceRequired bool
	MaintenanceNotes    *string
	ReturnedByName      *string
}

type BorrowFilter struct {
	Status       *string
	BorrowerName *string // user_id クエリはこのフィールドに対応させる
	AssetTag     *string
}

// CheckinUpdate は返却処理でストアへ渡す確定値。
type CheckinUpdate struct {
	Condition           string
	DamageReported      bool
	DamageDescription   *string
	MaintenanceRequired bool
	MaintenanceNotes    *string
	ReturnedByName      *string
	CheckinAt           time.Time
}

// isOpenStatus: "checked out" / "Checked-Out" 等の揺れを吸収して未返却かを判定する。
func isOpenStatus(s string) bool {
	switch assets.NormalizeStatus(s) {
	case StatusCheckedOut, "checked-out":
		return true
	default:
		return false
	}
}

const borrowIDDateLayout = "02012006" // DDMMYYYY

// buildBorrowID: id カラムに自動採番が無い環境向けの代替ID。
// BR-<DDMMYYYY><連番4桁>
func buildBorrowID(t time.Time, seq int) string {
	return fmt.Sprintf("BR-%s%04d", t.Format(borrowIDDateLayout), seq)
}

func borrowIDDayPrefix(t time.Time) string {
	return "BR-" + t.Format(borrowIDDateLayout)
}
