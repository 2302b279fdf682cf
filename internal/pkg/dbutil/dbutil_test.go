package dbutil

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestFinalize(t *testing.T) {
	query, args := Finalize("SELECT url FROM documents WHERE url LIKE ? LIMIT ?", []interface{}{"/case-studies/a%", 5})
	require.Equal(t, "SELECT url FROM documents WHERE url LIKE $1 LIMIT $2", query)
	require.Equal(t, []interface{}{"/case-studies/a%", 5}, args)
}

func TestIsConflict(t *testing.T) {
	require.True(t, IsConflict(&pq.Error{Code: "23505"}))
	require.False(t, IsConflict(&pq.Error{Code: "23503"}))
	require.False(t, IsConflict(errors.New("plain")))
	require.False(t, IsConflict(nil))
}
