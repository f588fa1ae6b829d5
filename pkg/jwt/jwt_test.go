package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTripIdentidad(t *testing.T) {
	id := Identity{UserID: "u-1", BranchID: "suc-1", Role: RoleCashier}
	token, err := Generate("secreto", id, "farmacia-pos", 5)
	require.NoError(t, err)

	got, err := Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := Generate("secreto", Identity{UserID: "u-1", BranchID: "suc-1"}, "x", 5)
	require.NoError(t, err)

	_, err = Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_TokenExpirado(t *testing.T) {
	token, err := Generate("secreto", Identity{UserID: "u-1", BranchID: "suc-1"}, "x", -1)
	require.NoError(t, err)

	_, err = Parse("secreto", token)
	assert.Error(t, err)
}

func TestGenerate_SinSucursal(t *testing.T) {
	_, err := Generate("secreto", Identity{UserID: "u-1"}, "x", 5)
	assert.Error(t, err)
}
