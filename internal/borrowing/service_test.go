package borrowing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ATLAS-backend/internal/assets"
)

// ===== テスト用フェイク =====

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

type fakeIDGen struct{ v string }

func (f fakeIDGen) NewULID(time.Time) string { return f.v }

type fakeAssets struct {
	byTag map[string]*assets.Asset
	calls int
}

func (f *fakeAssets) ReadByTag(_ context.Context, tag string) (*assets.Asset, error) {
	f.calls++
	return f.byTag[tag], nil
}

type fakeStore struct {
	open        map[string]*BorrowRecord
	byID        map[string]*BorrowRecord
	checkoutIn  *BorrowRecord
	checkoutOut *BorrowRecord
	checkoutErr error
	checkinID   string
	checkinUpd  *CheckinUpdate
	checkinErr  error
	calls       int
}

func (f *fakeStore) FindOpenByTag(_ context.Context, tag string) (*BorrowRecord, error) {
	f.calls++
	return f.open[tag], nil
}

func (f *fakeStore) ExecCheckout(_ context.Context, rec *BorrowRecord) (*BorrowRecord, error) {
	f.calls++
	f.checkoutIn = rec
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	if f.checkoutOut != nil {
		return f.checkoutOut, nil
	}
	out := *rec
	out.ID = "101"
	return &out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*BorrowRecord, error) {
	f.calls++
	return f.byID[id], nil
}

func (f *fakeStore) ExecCheckin(_ context.Context, id string, upd CheckinUpdate) (*BorrowRecord, error) {
	f.calls++
	f.checkinID = id
	f.checkinUpd = &upd
	if f.checkinErr != nil {
		return nil, f.checkinErr
	}
	cur, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound("borrow record not found")
	}
	if cur.Status == StatusReturned {
		return nil, ErrInvalidState("already returned")
	}
	out := *cur
	out.Status = StatusReturned
	out.Condition = &upd.Condition
	out.CheckinDate = &upd.CheckinAt
	return &out, nil
}

func (f *fakeStore) List(_ context.Context, _ BorrowFilter, _ Page) ([]BorrowRecord, int64, error) {
	f.calls++
	return nil, 0, nil
}

func newTestService(store *fakeStore, reader *fakeAssets) *Service {
	return &Service{
		store:  store,
		assets: reader,
		clock:  fakeClock{t: time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)},
		id:     fakeIDGen{v: "01JNTESTULID0000000000000000"},
	}
}

func loanableAsset(tag string) *assets.Asset {
	return &assets.Asset{AssetTag: tag, Status: assets.StatusAvailable, Loanable: true}
}

func checkoutReq(tag string) CheckoutRequest {
	return CheckoutRequest{
		AssetTag:     tag,
		BorrowerName: "tanaka",
		CheckoutDate: "2025-03-07",
	}
}

// ===== Checkout =====

func TestCheckout_ValidationErrorsDoNotTouchStore(t *testing.T) {
	cases := []struct {
		name string
		req  CheckoutRequest
	}{
		{"missing asset_tag", CheckoutRequest{BorrowerName: "tanaka", CheckoutDate: "2025-03-07"}},
		{"missing borrowername", CheckoutRequest{AssetTag: "PC-001", CheckoutDate: "2025-03-07"}},
		{"missing checkout_date", CheckoutRequest{AssetTag: "PC-001", BorrowerName: "tanaka"}},
		{"bad checkout_date", CheckoutRequest{AssetTag: "PC-001", BorrowerName: "tanaka", CheckoutDate: "07/03/2025"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			reader := &fakeAssets{}
			svc := newTestService(store, reader)

			_, err := svc.Checkout(context.Background(), tc.req)
			require.Error(t, err)
			api, ok := err.(*APIError)
			require.True(t, ok)
			assert.Equal(t, CodeValidation, api.Code)
			assert.Zero(t, store.calls)
			assert.Zero(t, reader.calls)
		})
	}
}

func TestCheckout_RejectsNonOpenStatusOverride(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeAssets{})

	req := checkoutReq("PC-001")
	st := "returned"
	req.Status = &st

	_, err := svc.Checkout(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, CodeValidation, err.(*APIError).Code)
	assert.Zero(t, store.calls)
}

func TestCheckout_AssetNotFound(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeAssets{byTag: map[string]*assets.Asset{}})

	_, err := svc.Checkout(context.Background(), checkoutReq("PC-404"))
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, err.(*APIError).Code)
}

func TestCheckout_AssetNotAvailable(t *testing.T) {
	cases := []struct {
		name  string
		asset *assets.Asset
	}{
		{"maintenance status", &assets.Asset{AssetTag: "PC-001", Status: assets.StatusMaintenance, Loanable: true}},
		{"retired status", &assets.Asset{AssetTag: "PC-001", Status: assets.StatusRetired, Loanable: true}},
		{"not loanable", &assets.Asset{AssetTag: "PC-001", Status: assets.StatusAvailable, Loanable: false}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reader := &fakeAssets{byTag: map[string]*assets.Asset{"PC-001": tc.asset}}
			svc := newTestService(&fakeStore{}, reader)

			_, err := svc.Checkout(context.Background(), checkoutReq("PC-001"))
			require.Error(t, err)
			assert.Equal(t, CodeNotAvailable, err.(*APIError).Code)
		})
	}
}

func TestCheckout_AlreadyCheckedOut(t *testing.T) {
	reader := &fakeAssets{byTag: map[string]*assets.Asset{"PC-001": loanableAsset("PC-001")}}
	store := &fakeStore{
		open: map[string]*BorrowRecord{"PC-001": {ID: "55", AssetTag: "PC-001", Status: StatusCheckedOut}},
	}
	svc := newTestService(store, reader)

	_, err := svc.Checkout(context.Background(), checkoutReq("PC-001"))
	require.Error(t, err)
	assert.Equal(t, CodeConflict, err.(*APIError).Code)
	assert.Nil(t, store.checkoutIn)
}

func TestCheckout_Success(t *testing.T) {
	reader := &fakeAssets{byTag: map[string]*assets.Asset{"PC-001": loanableAsset("PC-001")}}
	store := &fakeStore{}
	svc := newTestService(store, reader)

	contact := "tanaka@example.com"
	req := checkoutReq("PC-001")
	req.BorrowerContact = &contact

	resp, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "101", resp.ID)
	assert.Equal(t, StatusCheckedOut, resp.Status)
	assert.Equal(t, "PC-001", resp.AssetTag)
	assert.Equal(t, "2025-03-07", resp.CheckoutDate)

	require.NotNil(t, store.checkoutIn)
	assert.Equal(t, "01JNTESTULID0000000000000000", store.checkoutIn.BorrowULID)
	assert.Equal(t, StatusCheckedOut, store.checkoutIn.Status)
}

func TestCheckout_NormalizesAssetTag(t *testing.T) {
	reader := &fakeAssets{byTag: map[string]*assets.Asset{"PC-001": loanableAsset("PC-001")}}
	store := &fakeStore{}
	svc := newTestService(store, reader)

	resp, err := svc.Checkout(context.Background(), checkoutReq("  pc-001  "))
	require.NoError(t, err)
	assert.Equal(t, "PC-001", resp.AssetTag)
}

func TestCheckout_EmptyOptionalBecomesNil(t *testing.T) {
	reader := &fakeAssets{byTag: map[string]*assets.Asset{"PC-001": loanableAsset("PC-001")}}
	store := &fakeStore{}
	svc := newTestService(store, reader)

	empty := ""
	req := checkoutReq("PC-001")
	req.Purpose = &empty
	req.DueDate = &empty

	_, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, store.checkoutIn.Purpose)
	assert.Nil(t, store.checkoutIn.DueDate)
}

// ===== Checkin =====

func TestCheckin_Validation(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeAssets{})

	_, err := svc.Checkin(context.Background(), "", CheckinRequest{Condition: "good"})
	require.Error(t, err)
	assert.Equal(t, CodeValidation, err.(*APIError).Code)

	_, err = svc.Checkin(context.Background(), "101", CheckinRequest{})
	require.Error(t, err)
	assert.Equal(t, CodeValidation, err.(*APIError).Code)

	assert.Zero(t, store.calls)
}

func TestCheckin_Success(t *testing.T) {
	store := &fakeStore{
		byID: map[string]*BorrowRecord{
			"101": {ID: "101", AssetTag: "PC-001", Status: StatusCheckedOut},
		},
	}
	svc := newTestService(store, &fakeAssets{})

	damaged := true
	desc := "scratched lid"
	resp, err := svc.Checkin(context.Background(), "101", CheckinRequest{
		Condition:         "good",
		DamageReported:    &damaged,
		DamageDescription: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, resp.Status)
	require.NotNil(t, resp.CheckinDate)

	require.NotNil(t, store.checkinUpd)
	assert.Equal(t, "good", store.checkinUpd.Condition)
	assert.True(t, store.checkinUpd.DamageReported)
	assert.Equal(t, time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC), store.checkinUpd.CheckinAt)
}

func TestCheckin_AlreadyReturned(t *testing.T) {
	store := &fakeStore{
		byID: map[string]*BorrowRecord{
			"101": {ID: "101", AssetTag: "PC-001", Status: StatusReturned},
		},
	}
	svc := newTestService(store, &fakeAssets{})

	_, err := svc.Checkin(context.Background(), "101", CheckinRequest{Condition: "good"})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, err.(*APIError).Code)
}

// ===== Get / List =====

func TestGet_NotFound(t *testing.T) {
	svc := newTestService(&fakeStore{byID: map[string]*BorrowRecord{}}, &fakeAssets{})

	_, err := svc.Get(context.Background(), "999")
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, err.(*APIError).Code)
}

func TestList_NormalizesFilter(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeAssets{})

	st := "Checked Out"
	tag := " pc-001 "
	_, _, err := svc.List(context.Background(), BorrowFilter{Status: &st, AssetTag: &tag}, Page{})
	require.NoError(t, err)
}
