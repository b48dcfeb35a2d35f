package listing_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/shared/domain"
	"github.com/glitchjsy/opendata-api/shared/platform/listing"
	"github.com/glitchjsy/opendata-api/shared/platform/query"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
)

func newExpander(exec *sqlstore.Executor) *listing.Expander {
	return listing.NewExpander(exec, "id", zap.NewNop(),
		listing.Relation{
			Name:       "notes",
			Table:      "notes",
			ForeignKey: "item_id",
			Columns:    []string{"body"},
			OrderBy:    []query.Sort{query.Asc("pos")},
			Kind:       listing.OneToMany,
		},
		listing.Relation{
			Name:       "owner",
			Table:      "owners",
			ForeignKey: "item_id",
			Kind:       listing.OneToOne,
		},
	)
}

func parents(t *testing.T, exec *sqlstore.Executor) []*sqlstore.Row {
	rows, err := exec.Query(context.Background(),
		exec.Builder().Select("id", "title").From("items").OrderBy("id"))
	require.NoError(t, err)
	return rows
}

func TestExpander_OneQueryPerRelation(t *testing.T) {
	exec, q := newFixture(t)
	in := parents(t, exec)
	q.Reset()

	out, err := newExpander(exec).Expand(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out, 5)
	assert.Equal(t, 2, q.Count())

	// Cinco padres distintos, una sola lista IN por relación.
	for _, rq := range q.Queries() {
		assert.Len(t, rq.Args, 5)
	}

	notes, _ := out[0].Get("notes")
	list, ok := notes.AsList()
	require.True(t, ok)
	require.Len(t, list, 2)
	first, _ := list[0].AsObject()
	body, _ := first.Get("body")
	assert.Equal(t, sqlstore.String("first"), body)

	owner, _ := out[0].Get("owner")
	obj, ok := owner.AsObject()
	require.True(t, ok)
	name, _ := obj.Get("name")
	assert.Equal(t, sqlstore.String("Ann"), name)

	// Sin hijos: lista vacía y null explícito.
	notesB, present := out[1].Get("notes")
	require.True(t, present)
	emptyList, _ := notesB.AsList()
	assert.NotNil(t, emptyList)
	assert.Empty(t, emptyList)

	ownerB, present := out[1].Get("owner")
	assert.True(t, present)
	assert.True(t, ownerB.IsNull())

	data, err := json.Marshal(out[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"b","title":"Beta","notes":[],"owner":null}`, string(data))
}

func TestExpander_DoesNotMutateInput(t *testing.T) {
	exec, _ := newFixture(t)
	in := parents(t, exec)

	_, err := newExpander(exec).Expand(context.Background(), in)
	require.NoError(t, err)

	for _, r := range in {
		assert.Equal(t, []string{"id", "title"}, r.Columns())
	}
}

func TestExpander_Idempotent(t *testing.T) {
	exec, _ := newFixture(t)
	in := parents(t, exec)
	e := newExpander(exec)

	a, err := e.Expand(context.Background(), in)
	require.NoError(t, err)
	b, err := e.Expand(context.Background(), in)
	require.NoError(t, err)

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	assert.Equal(t, string(ja), string(jb))
}

func TestExpander_EmptyPageIssuesNoQueries(t *testing.T) {
	exec, q := newFixture(t)

	out, err := newExpander(exec).Expand(context.Background(), []*sqlstore.Row{})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, q.Count())
}

func TestExpander_DuplicateParentsShareChildren(t *testing.T) {
	exec, q := newFixture(t)
	in := parents(t, exec)
	dup := []*sqlstore.Row{in[0], in[0].Clone()}
	q.Reset()

	out, err := newExpander(exec).Expand(context.Background(), dup)
	require.NoError(t, err)
	for _, rq := range q.Queries() {
		assert.Equal(t, []any{"a"}, rq.Args)
	}
	n0, _ := out[0].Get("notes")
	n1, _ := out[1].Get("notes")
	assert.Equal(t, n0, n1)
}

func TestExpander_FailureIsStoreError(t *testing.T) {
	exec, _ := newFixture(t)
	in := parents(t, exec)
	e := listing.NewExpander(exec, "id", zap.NewNop(), listing.Relation{
		Name: "ghost", Table: "missing", ForeignKey: "item_id", Kind: listing.OneToMany,
	})

	_, err := e.Expand(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
