package borrowing

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ATLAS-backend/internal/assets"
)

// memStore は Store 契約をインメモリで満たすフェイク。
// ExecCheckout / ExecCheckin が確定判定を持つ点を実装と揃えている。
type memStore struct {
	seq  int
	byID map[string]*BorrowRecord
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]*BorrowRecord{}}
}

func (m *memStore) FindOpenByTag(_ context.Context, tag string) (*BorrowRecord, error) {
	for _, r := range m.byID {
		if r.AssetTag == tag && r.Status == StatusCheckedOut {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memStore) ExecCheckout(ctx context.Context, rec *BorrowRecord) (*BorrowRecord, error) {
	if open, _ := m.FindOpenByTag(ctx, rec.AssetTag); open != nil {
		return nil, ErrConflict("asset is already checked out")
	}
	m.seq++
	out := *rec
	out.ID = strconv.Itoa(m.seq)
	m.byID[out.ID] = &out
	return &out, nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*BorrowRecord, error) {
	return m.byID[id], nil
}

func (m *memStore) ExecCheckin(_ context.Context, id string, upd CheckinUpdate) (*BorrowRecord, error) {
	cur, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound("borrow record not found")
	}
	if cur.Status == StatusReturned {
		return nil, ErrInvalidState("already returned")
	}
	cur.Status = StatusReturned
	cur.Condition = &upd.Condition
	cur.CheckinDate = &upd.CheckinAt
	cur.DamageReported = upd.DamageReported
	return cur, nil
}

func (m *memStore) List(_ context.Context, f BorrowFilter, _ Page) ([]BorrowRecord, int64, error) {
	var out []BorrowRecord
	for _, r := range m.byID {
		if f.Status != nil && *f.Status != "" && r.Status != *f.Status {
			continue
		}
		if f.AssetTag != nil && *f.AssetTag != "" && r.AssetTag != *f.AssetTag {
			continue
		}
		if f.BorrowerName != nil && *f.BorrowerName != "" && r.BorrowerName != *f.BorrowerName {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func newTestRouter(store Store, reader AssetReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := &Service{
		store:  store,
		assets: reader,
		clock:  fakeClock{t: time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)},
		id:     fakeIDGen{v: "01JNTESTULID0000000000000000"},
	}
	RegisterRoutes(r, svc)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestBorrowingLifecycle(t *testing.T) {
	reader := &fakeAssets{byTag: map[string]*assets.Asset{
		"PC-001": {AssetTag: "PC-001", Status: assets.StatusAvailable, Loanable: true},
	}}
	r := newTestRouter(newMemStore(), reader)

	// 貸出
	w := doJSON(t, r, http.MethodPost, "/borrowing", CheckoutRequest{
		AssetTag:     "PC-001",
		BorrowerName: "tanaka",
		CheckoutDate: "2025-03-07",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env["success"])
	data := env["data"].(map[string]any)
	id := data["id"].(string)
	assert.Equal(t, StatusCheckedOut, data["status"])
	assert.Equal(t, "/borrowing/"+id, w.Header().Get("Location"))

	// 同一資産の二重貸出は拒否
	w = doJSON(t, r, http.MethodPost, "/borrowing", CheckoutRequest{
		AssetTag:     "PC-001",
		BorrowerName: "suzuki",
		CheckoutDate: "2025-03-07",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	env = decodeEnvelope(t, w)
	assert.Equal(t, false, env["success"])

	// 返却
	w = doJSON(t, r, http.MethodPatch, "/borrowing/"+id, CheckinRequest{Condition: "good"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env = decodeEnvelope(t, w)
	data = env["data"].(map[string]any)
	assert.Equal(t, StatusReturned, data["status"])
	assert.NotEmpty(t, data["checkin_date"])

	// 返却済みレコードの再返却は不可
	w = doJSON(t, r, http.MethodPatch, "/borrowing/"+id, CheckinRequest{Condition: "good"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env = decodeEnvelope(t, w)
	assert.Contains(t, env["error"], "already returned")

	// 返却後は再貸出できる
	w = doJSON(t, r, http.MethodPost, "/borrowing", CheckoutRequest{
		AssetTag:     "PC-001",
		BorrowerName: "suzuki",
		CheckoutDate: "2025-03-08",
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestHandler_CheckoutValidation(t *testing.T) {
	r := newTestRouter(newMemStore(), &fakeAssets{})

	w := doJSON(t, r, http.MethodPost, "/borrowing", CheckoutRequest{BorrowerName: "tanaka"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// 壊れたJSON
	req := httptest.NewRequest(http.MethodPost, "/borrowing", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	require.Equal(t, http.StatusBadRequest, w2.Code)
	env := decodeEnvelope(t, w2)
	assert.Equal(t, "invalid json", env["error"])
}

func TestHandler_CheckoutUnknownAsset(t *testing.T) {
	r := newTestRouter(newMemStore(), &fakeAssets{byTag: map[string]*assets.Asset{}})

	w := doJSON(t, r, http.MethodPost, "/borrowing", CheckoutRequest{
		AssetTag:     "PC-404",
		BorrowerName: "tanaka",
		CheckoutDate: "2025-03-07",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_GetNotFound(t *testing.T) {
	r := newTestRouter(newMemStore(), &fakeAssets{})

	w := doJSON(t, r, http.MethodGet, "/borrowing/999", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_LegacyCheckin(t *testing.T) {
	reader := &fakeAssets{byTag: map[string]*assets.Asset{
		"PC-001": {AssetTag: "PC-001", Status: assets.StatusActive, Loanable: true},
	}}
	store := newMemStore()
	r := newTestRouter(store, reader)

	w := doJSON(t, r, http.MethodPost, "/borrowing", CheckoutRequest{
		AssetTag:     "PC-001",
		BorrowerName: "tanaka",
		CheckoutDate: "2025-03-07",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeEnvelope(t, w)["data"].(map[string]any)["id"].(string)

	body := LegacyCheckinRequest{BorrowID: id}
	body.Condition = "good"
	w = doJSON(t, r, http.MethodPut, "/borrowing", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, StatusReturned, data["status"])
}

func TestHandler_ListFilters(t *testing.T) {
	reader := &fakeAssets{byTag: map[string]*assets.Asset{
		"PC-001": {AssetTag: "PC-001", Status: assets.StatusAvailable, Loanable: true},
		"PC-002": {AssetTag: "PC-002", Status: assets.StatusAvailable, Loanable: true},
	}}
	store := newMemStore()
	r := newTestRouter(store, reader)

	for _, tag := range []string{"PC-001", "PC-002"} {
		w := doJSON(t, r, http.MethodPost, "/borrowing", CheckoutRequest{
			AssetTag:     tag,
			BorrowerName: "tanaka",
			CheckoutDate: "2025-03-07",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/borrowing?asset_tag=pc-001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, float64(1), env["total"])

	w = doJSON(t, r, http.MethodGet, "/borrowing?status=checked_out", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	assert.Equal(t, float64(2), env["total"])
}
