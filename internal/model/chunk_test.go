package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBasePath(t *testing.T) {
	require.Equal(t, "/case-studies/rag-at-scale", BasePath("/case-studies/rag-at-scale#design"))
	require.Equal(t, "/case-studies/rag-at-scale", BasePath("/case-studies/rag-at-scale"))
	require.Equal(t, "/profile", BasePath("/profile#ml-systems-serving"))
	require.Equal(t, "", BasePath(""))
}
