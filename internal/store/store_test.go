package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bgledger/kontir/internal/models"
)

func TestLoadAccountMappingsMissingFileIsIdentity(t *testing.T) {
	s := NewMappingStore(filepath.Join(t.TempDir(), "absent.yaml"), "")

	mappings, err := s.LoadAccountMappings()
	require.NoError(t, err)
	assert.Empty(t, mappings)
	assert.Equal(t, "601", MapAccountCode(mappings, "601"))
}

func TestAccountMappingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "account-mappings.yaml")
	s := NewMappingStore(path, "")

	require.NoError(t, s.SaveAccountMappings(map[string]string{
		"600": "601",
		"700": "702",
	}))

	loaded, err := s.LoadAccountMappings()
	require.NoError(t, err)
	assert.Equal(t, "601", MapAccountCode(loaded, "600"))
	assert.Equal(t, "702", MapAccountCode(loaded, "700"))
	// unmapped codes pass through
	assert.Equal(t, "4531", MapAccountCode(loaded, "4531"))
}

func TestApplyAccountMappings(t *testing.T) {
	result := &models.ImportResult{
		AccountCodes: []string{"600", "4531", "401"},
		Documents: []models.ImportDocument{
			{Entries: []models.ImportEntry{
				{AccountCode: "600"},
				{AccountCode: "4531"},
				{AccountCode: "401"},
			}},
		},
	}

	ApplyAccountMappings(result, map[string]string{"600": "601"})

	assert.Equal(t, "601", result.Documents[0].Entries[0].AccountCode)
	// unmapped codes stay verbatim
	assert.Equal(t, "4531", result.Documents[0].Entries[1].AccountCode)
	assert.Equal(t, []string{"601", "4531", "401"}, result.AccountCodes)
}

func TestApplyAccountMappingsEmptyIsNoOp(t *testing.T) {
	result := &models.ImportResult{
		AccountCodes: []string{"600"},
		Documents: []models.ImportDocument{
			{Entries: []models.ImportEntry{{AccountCode: "600"}}},
		},
	}

	ApplyAccountMappings(result, nil)

	assert.Equal(t, "600", result.Documents[0].Entries[0].AccountCode)
	assert.Equal(t, []string{"600"}, result.AccountCodes)
}

func TestLoadAccountMappingsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mappings: [not a map"), 0o644))

	s := NewMappingStore(path, "")
	_, err := s.LoadAccountMappings()
	assert.Error(t, err)
}

func TestCounterpartsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counterparts.yaml")
	s := NewMappingStore("", path)

	require.NoError(t, s.SaveCounterparts([]models.Counterpart{
		{Name: "Клиент ЕООД", EIK: "201122334", Country: "BG"},
		{Name: "МЕТРО АД", EIK: "121644736", VatNumber: "BG121644736", IsVatRegistered: true},
	}))

	loaded, err := s.LoadCounterparts()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	// sorted by EIK on save
	assert.Equal(t, "121644736", loaded[0].EIK)

	found, ok := FindCounterpartByEIK(loaded, "201122334")
	assert.True(t, ok)
	assert.Equal(t, "Клиент ЕООД", found.Name)

	_, ok = FindCounterpartByEIK(loaded, "")
	assert.False(t, ok)
}
