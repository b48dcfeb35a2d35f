package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFilters = NewFilterSet(
	FilterDef{Key: "startDate", Field: "created_at", Op: OpDateGte},
	FilterDef{Key: "endDate", Field: "created_at", Op: OpDateLte},
	FilterDef{Key: "title", Field: "title", Op: OpLike},
	FilterDef{Key: "state", Field: "state", Op: OpEq},
)

func TestFilterSet_Build_NoInputs(t *testing.T) {
	ps, err := testFilters.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ps.Len())
	assert.Empty(t, ps.ToConditions())
}

func TestFilterSet_Build_SkipsEmptyAndKeepsDefinitionOrder(t *testing.T) {
	ps, err := testFilters.Build(map[string]string{
		"state":     "closed",
		"title":     "",
		"startDate": "2024-01-01",
		"unknown":   "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, []Criterion{
		{Field: "created_at", Op: OpDateGte, Value: "2024-01-01"},
		{Field: "state", Op: OpEq, Value: "closed"},
	}, ps.ToConditions())
}

func TestFilterSet_Build_WrapsLikeValues(t *testing.T) {
	ps, err := testFilters.Build(map[string]string{"title": "park"})
	require.NoError(t, err)
	require.Equal(t, 1, ps.Len())
	assert.Equal(t, "%park%", ps.ToConditions()[0].Value)
}

func TestFilterSet_Build_DateFormats(t *testing.T) {
	for _, v := range []string{"2024-03-01", "2024/03/01"} {
		_, err := testFilters.Build(map[string]string{"endDate": v})
		assert.NoError(t, err, v)
	}

	for _, v := range []string{"2024-3-1", "01/03/2024", "2024-03-01T00:00:00", "yesterday"} {
		_, err := testFilters.Build(map[string]string{"startDate": v})
		assert.ErrorIs(t, err, ErrInvalidInput, v)
	}
}

func TestFilterSet_Build_RejectsImpossibleDates(t *testing.T) {
	_, err := testFilters.Build(map[string]string{"startDate": "2024-13-40"})
	var invalid *InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "startDate", invalid.Field)
	assert.Equal(t, "not a calendar date", invalid.Reason)

	_, err = testFilters.Build(map[string]string{"endDate": "2024-13-4"})
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "endDate", invalid.Field)
	assert.Contains(t, invalid.Reason, "format")

	_, err = testFilters.Build(map[string]string{"endDate": "2024/02/29"})
	assert.NoError(t, err)
}

func TestPredicateSet_IsImmutable(t *testing.T) {
	ps, err := testFilters.Build(map[string]string{"state": "open"})
	require.NoError(t, err)

	conds := ps.ToConditions()
	conds[0].Value = "tampered"
	assert.Equal(t, "open", ps.ToConditions()[0].Value)
}

func TestFilterSet_Collect(t *testing.T) {
	query := map[string]string{"title": "x", "other": "y"}
	got := testFilters.Collect(func(k string) string { return query[k] })
	assert.Equal(t, map[string]string{"title": "x"}, got)
	assert.Equal(t, []string{"startDate", "endDate", "title", "state"}, testFilters.Keys())
}
