package borrowing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func borrowingCols() []columnInfo {
	return []columnInfo{
		{Name: "id", Extra: "auto_increment"},
		{Name: "asset_tag"},
		{Name: "borrowername"},
		{Name: "checkout_date"},
		{Name: "status"},
	}
}

func legacyCols() []columnInfo {
	return []columnInfo{
		{Name: "id"},
		{Name: "asset_tag"},
		{Name: "borrowername"},
		{Name: "checkout_date"},
		{Name: "due_date"},
		{Name: "status"},
	}
}

func TestResolveSchema_PrefersBorrowing(t *testing.T) {
	catalog := map[string][]columnInfo{
		"borrowing":       borrowingCols(),
		"asset_borrowing": legacyCols(),
	}
	s, err := resolveSchema(catalog, "")
	require.NoError(t, err)
	assert.Equal(t, "borrowing", s.Table)
	assert.True(t, s.IDAutoGenerated)
	assert.True(t, s.HasColumn("asset_tag"))
	assert.False(t, s.HasColumn("due_date"))
}

func TestResolveSchema_FallsBackToAssetBorrowing(t *testing.T) {
	catalog := map[string][]columnInfo{
		"asset_borrowing": legacyCols(),
	}
	s, err := resolveSchema(catalog, "")
	require.NoError(t, err)
	assert.Equal(t, "asset_borrowing", s.Table)
	assert.False(t, s.IDAutoGenerated)
	assert.True(t, s.HasColumn("due_date"))
}

func TestResolveSchema_NoTableFound(t *testing.T) {
	_, err := resolveSchema(map[string][]columnInfo{}, "")
	require.Error(t, err)
	api, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, CodeConfig, api.Code)
}

func TestResolveSchema_Override(t *testing.T) {
	catalog := map[string][]columnInfo{
		"borrowing":        borrowingCols(),
		"borrowing_backup": legacyCols(),
	}

	s, err := resolveSchema(catalog, "borrowing_backup")
	require.NoError(t, err)
	assert.Equal(t, "borrowing_backup", s.Table)

	_, err = resolveSchema(catalog, "no_such_table")
	require.Error(t, err)
	api, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, CodeConfig, api.Code)
}

func TestResolveSchema_AutoIncrementDetection(t *testing.T) {
	catalog := map[string][]columnInfo{
		"borrowing": {
			{Name: "id", Extra: "AUTO_INCREMENT"},
			{Name: "asset_tag"},
		},
	}
	s, err := resolveSchema(catalog, "")
	require.NoError(t, err)
	assert.True(t, s.IDAutoGenerated)
}
