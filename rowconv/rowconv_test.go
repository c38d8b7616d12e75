package rowconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glue-sql/glue/executor"
	"github.com/glue-sql/glue/value"
)

type user struct {
	ID   int64  `glue:"id"`
	Name string `glue:"name"`
}

func TestIntoSelectPayload(t *testing.T) {
	payload := executor.SelectPayload{
		Labels: []string{"id", "name"},
		Rows: [][]value.Value{
			{value.NewInt64(1), value.NewText("alice")},
			{value.NewInt64(2), value.NewText("bob")},
		},
	}

	users, err := Into[user](payload)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, user{ID: 1, Name: "alice"}, users[0])
	assert.Equal(t, user{ID: 2, Name: "bob"}, users[1])
}

func TestIntoSelectMapPayload(t *testing.T) {
	payload := executor.SelectMapPayload{
		Rows: []map[string]value.Value{
			{"id": value.NewInt64(3), "name": value.NewText("carol")},
		},
	}

	users, err := Into[user](payload)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, user{ID: 3, Name: "carol"}, users[0])
}

func TestIntoRejectsNonStructTarget(t *testing.T) {
	payload := executor.SelectPayload{Labels: []string{"id"}, Rows: [][]value.Value{{value.NewInt64(1)}}}
	_, err := Into[int](payload)
	assert.Error(t, err)
}

func TestIntoRejectsPayloadWithoutRows(t *testing.T) {
	_, err := Into[user](executor.InsertPayload{Count: 1})
	assert.Error(t, err)
}
