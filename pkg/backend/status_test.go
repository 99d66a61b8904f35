package backend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusOK(t *testing.T) {
	require.True(t, StatusOK.OK())
	require.True(t, Status(42).OK())
	require.False(t, StatusNotFound.OK())
	require.False(t, StatusInProgress.OK())
}

func TestStatusStrings(t *testing.T) {
	require.Equal(t, "success", StatusOK.String())
	require.Equal(t, "success", Status(128).String())
	require.Equal(t, "no such file or directory", StatusNotFound.String())
	require.Equal(t, "operation now in progress", StatusInProgress.String())
	require.Equal(t, "unknown error -9999", Status(-9999).String())
}
