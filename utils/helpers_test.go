package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("caballo123")
	require.NoError(t, err)
	assert.NoError(t, CheckPassword("caballo123", hash))
	assert.Error(t, CheckPassword("otra", hash))
}

func TestGenerateDefaultPassword(t *testing.T) {
	pwd, err := GenerateDefaultPassword(10)
	require.NoError(t, err)
	assert.Len(t, pwd, 10)
	for _, r := range pwd {
		assert.True(t, strings.ContainsRune(passwordAlphabet, r), "unexpected rune %q", r)
	}
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(7)
	require.NoError(t, err)
	assert.Len(t, s, 7)
}

func TestIsValidFileExtension(t *testing.T) {
	allowed := []string{"jpg", "png", "pdf"}
	assert.True(t, IsValidFileExtension("comprobante.PDF", allowed))
	assert.True(t, IsValidFileExtension("foto.final.jpg", allowed))
	assert.False(t, IsValidFileExtension("archivo.exe", allowed))
	assert.False(t, IsValidFileExtension("sin_extension", allowed))
	assert.False(t, IsValidFileExtension("punto.", allowed))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@club.com", NormalizeEmail("  Ana@Club.com\x00 "))
}
