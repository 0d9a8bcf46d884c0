package borrowing

import "time"

const DateLayout = "2006-01-02"

// 貸出（チェックアウト）リクエスト
type CheckoutRequest struct {
	AssetTag        string  `json:"asset_tag"`
	BorrowerName    string  `json:"borrowername"`
	BorrowerContact *string `json:"borrowercontact,omitempty"`
	CheckoutDate    string  `json:"checkout_date"` // "YYYY-MM-DD"
	DueDate         *string `json:"due_date,omitempty"`
	Purpose         *string `json:"purpose,omitempty"`
	Location        *string `json:"location,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	Status          *string `json:"status,omitempty"` // 省略時 checked_out
}

// 返却（チェックイン）リクエスト
type CheckinRequest struct {
	Condition           string  `json:"condition"`
	DamageReported      *bool   `json:"damage_reported,omitempty"`
	DamageDescription   *string `json:"damage_description,omitempty"`
	MaintenanceRequired *bool   `json:"maintenance_required,omitempty"`
	MaintenanceNotes    *string `json:"maintenance_notes,omitempty"`
	ReturnedByName      *string `json:"returned_by_name,omitempty"`
}

// 旧経路 PUT /borrowing 用。レコードIDを本文で受ける。
type LegacyCheckinRequest struct {
	ID       string `json:"id"`
	BorrowID string `json:"borrow_id"`
	CheckinRequest
}

type BorrowResponse struct {
	ID                  string     `json:"id"`
	BorrowULID          string     `json:"borrow_ulid,omitempty"`
	AssetTag            string     `json:"asset_tag"`
	BorrowerName        string     `json:"borrowername"`
	BorrowerContact     *string    `json:"borrowercontact,omitempty"`
	CheckoutDate        string     `json:"checkout_date"`
	DueDate             *string    `json:"due_date,omitempty"`
	CheckinDate         *time.Time `json:"checkin_date,omitempty"`
	Purpose             *string    `json:"purpose,omitempty"`
	Location            *string    `json:"location,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
	Status              string     `json:"status"`
	Condition           *string    `json:"condition,omitempty"`
	DamageReported      bool       `json:"damage_reported"`
	DamageDescription   *string    `json:"damage_description,omitempty"`
	MaintenanceRequired bool       `json:"maintenance_required"`
	MaintenanceNotes    *string    `json:"maintenance_notes,omitempty"`
	ReturnedByName      *string    `json:"returned_by_name,omitempty"`
}

type Page struct {
	Limit  int
	Offset int
	Order  string // "asc" or "desc"
}

func toResponse(r *BorrowRecord) BorrowResponse {
	return BorrowResponse{
		ID:                  r.ID,
		BorrowULID:          r.BorrowULID,
		AssetTag:            r.AssetTag,
		BorrowerName:        r.BorrowerName,
		BorrowerContact:     r.BorrowerContact,
		CheckoutDate:        r.CheckoutDate,
		DueDate:             r.DueDate,
		CheckinDate:         r.CheckinDate,
		Purpose:             r.Purpose,
		Location:            r.Location,
		Notes:               r.Notes,
		Status:              r.Status,
		Condition:           r.Condition,
		DamageReported:      r.DamageReported,
		DamageDescription:   r.DamageDescription,
		MaintenanceRequired: r.MaintenanceRequired,
		MaintenanceNotes:    r.MaintenanceNotes,
		ReturnedByName:      r.ReturnedByName,
	}
}
