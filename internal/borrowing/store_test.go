package borrowing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInsert_FullSchema(t *testing.T) {
	schema := NewSchema("borrowing", []string{
		"id", "borrow_ulid", "asset_tag", "borrowername", "borrowercontact",
		"checkout_date", "due_date", "purpose", "location", "notes", "status",
	}, false)

	contact := "tanaka@example.com"
	due := "2025-03-14"
	rec := &BorrowRecord{
		ID:              "BR-070320250001",
		BorrowULID:      "01JNTESTULID0000000000000000",
		AssetTag:        "PC-001",
		BorrowerName:    "tanaka",
		BorrowerContact: &contact,
		CheckoutDate:    "2025-03-07",
		DueDate:         &due,
		Status:          StatusCheckedOut,
	}

	cols, args := buildInsert(schema, rec)
	require.Equal(t, len(cols), len(args))
	assert.Equal(t, []string{
		"id", "borrow_ulid", "asset_tag", "borrowername", "borrowercontact",
		"checkout_date", "due_date", "status",
	}, cols)
	assert.Equal(t, "BR-070320250001", args[0])
	assert.Equal(t, StatusCheckedOut, args[len(args)-1])
}

func TestBuildInsert_OmitsAbsentColumns(t *testing.T) {
	// 旧環境: borrow_ulid / borrowercontact / due_date が無い
	schema := NewSchema("asset_borrowing", []string{
		"id", "asset_tag", "borrowername", "checkout_date", "status",
	}, false)

	contact := "tanaka@example.com"
	due := "2025-03-14"
	rec := &BorrowRecord{
		ID:              "BR-070320250001",
		BorrowULID:      "01JNTESTULID0000000000000000",
		AssetTag:        "PC-001",
		BorrowerName:    "tanaka",
		BorrowerContact: &contact,
		CheckoutDate:    "2025-03-07",
		DueDate:         &due,
		Status:          StatusCheckedOut,
	}

	cols, args := buildInsert(schema, rec)
	assert.Equal(t, []string{"id", "asset_tag", "borrowername", "checkout_date", "status"}, cols)
	assert.Len(t, args, 5)
	assert.NotContains(t, cols, "borrow_ulid")
	assert.NotContains(t, cols, "due_date")
}

func TestBuildInsert_AutoGeneratedIDNotIncluded(t *testing.T) {
	schema := NewSchema("borrowing", []string{
		"id", "asset_tag", "borrowername", "checkout_date", "status",
	}, true)

	rec := &BorrowRecord{
		AssetTag:     "PC-001",
		BorrowerName: "tanaka",
		CheckoutDate: "2025-03-07",
		Status:       StatusCheckedOut,
	}

	cols, _ := buildInsert(schema, rec)
	assert.NotContains(t, cols, "id")
}

func TestFromRow(t *testing.T) {
	checkin := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	rec := map[string]any{
		"id":              int64(101),
		"borrow_ulid":     []byte("01JNTESTULID0000000000000000"),
		"asset_tag":       []byte("PC-001"),
		"borrowername":    []byte("tanaka"),
		"borrowercontact": nil,
		"checkout_date":   time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
		"due_date":        []byte("2025-03-14 00:00:00"),
		"checkin_date":    checkin,
		"status":          []byte("Checked Out"),
		"damage_reported": int64(1),
		"condition":       []byte("good"),
	}

	r := fromRow(rec)
	assert.Equal(t, "101", r.ID)
	assert.Equal(t, "PC-001", r.AssetTag)
	assert.Equal(t, "tanaka", r.BorrowerName)
	assert.Nil(t, r.BorrowerContact)
	assert.Equal(t, "2025-03-07", r.CheckoutDate)
	require.NotNil(t, r.DueDate)
	assert.Equal(t, "2025-03-14", *r.DueDate)
	require.NotNil(t, r.CheckinDate)
	assert.Equal(t, checkin, *r.CheckinDate)
	assert.Equal(t, StatusCheckedOut, r.Status)
	assert.True(t, r.DamageReported)
	require.NotNil(t, r.Condition)
	assert.Equal(t, "good", *r.Condition)
}

func TestMapBool(t *testing.T) {
	assert.True(t, mapBool(map[string]any{"k": true}, "k"))
	assert.True(t, mapBool(map[string]any{"k": int64(1)}, "k"))
	assert.True(t, mapBool(map[string]any{"k": []byte("1")}, "k"))
	assert.True(t, mapBool(map[string]any{"k": "true"}, "k"))
	assert.False(t, mapBool(map[string]any{"k": int64(0)}, "k"))
	assert.False(t, mapBool(map[string]any{}, "k"))
	assert.False(t, mapBool(map[string]any{"k": nil}, "k"))
}
