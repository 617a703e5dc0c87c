package database

import (
	"testing"

	"ecuestre_go/models"
	"ecuestre_go/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAdminCreatesOnce(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	require.NoError(t, SeedAdmin(db, "admin@ecuestre.test", "secreto123"))
	require.NoError(t, SeedAdmin(db, "otro@ecuestre.test", "secreto456"))

	var admins []models.User
	require.NoError(t, db.Where("rol = ?", models.RolAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@ecuestre.test", admins[0].Email)
	assert.NoError(t, utils.CheckPassword("secreto123", admins[0].Password))
}

func TestSeedAdminSkipsWithoutCredentials(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	require.NoError(t, SeedAdmin(db, "", ""))

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)
}
