package server

import (
	"fmt"
	"net/http"
	"testing"

	"campushub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentEndpointsRequireAdmin(t *testing.T) {
	e := setupEnv(t)

	status, _ := httpGet(e, "/api/mahasiswa", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = httpGet(e, "/api/mahasiswa", e.token(e.student))
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = httpGet(e, "/api/mahasiswa", e.token(e.admin))
	assert.Equal(t, http.StatusOK, status)
}

func TestCreateStudentWithAccount(t *testing.T) {
	e := setupEnv(t)
	admin := e.token(e.admin)

	t.Run("creates record and backing account", func(t *testing.T) {
		status, body := e.request(http.MethodPost, "/api/mahasiswa", admin, map[string]interface{}{
			"nim":      "2201001",
			"nama":     "Budi Santoso",
			"email":    "budi@kampus.ac.id",
			"prodi_id": e.prodi.ID,
			"angkatan": 2022,
		})
		require.Equal(t, http.StatusCreated, status)

		mhs := body["mahasiswa"].(map[string]interface{})
		assert.Equal(t, "2201001", mhs["nim"])
		assert.Equal(t, models.StudentStatusAktif, mhs["status"])

		var user models.User
		require.NoError(t, e.db.Where("email = ?", "budi@kampus.ac.id").
			Preload("Roles").First(&user).Error)
		assert.True(t, user.HasRole(models.RoleMahasiswa))
	})

	t.Run("unknown prodi is a 404", func(t *testing.T) {
		status, _ := e.request(http.MethodPost, "/api/mahasiswa", admin, map[string]interface{}{
			"nim":      "2201002",
			"nama":     "Tanpa Prodi",
			"prodi_id": 9999,
		})
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("duplicate nim rolls back and reports 422", func(t *testing.T) {
		var usersBefore int64
		require.NoError(t, e.db.Model(&models.User{}).Count(&usersBefore).Error)

		status, _ := e.request(http.MethodPost, "/api/mahasiswa", admin, map[string]interface{}{
			"nim":      "2201001",
			"nama":     "Duplikat",
			"email":    "duplikat@kampus.ac.id",
			"prodi_id": e.prodi.ID,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, status)

		var usersAfter int64
		require.NoError(t, e.db.Model(&models.User{}).Count(&usersAfter).Error)
		assert.Equal(t, usersBefore, usersAfter)
	})

	t.Run("missing required fields map", func(t *testing.T) {
		status, body := e.request(http.MethodPost, "/api/mahasiswa", admin, map[string]interface{}{})
		require.Equal(t, http.StatusUnprocessableEntity, status)

		errs := body["errors"].(map[string]interface{})
		assert.Contains(t, errs, "nim")
		assert.Contains(t, errs, "nama")
		assert.Contains(t, errs, "prodi_id")
	})
}

func TestUpdateStudentSyncsAccount(t *testing.T) {
	e := setupEnv(t)

	status, body := e.request(http.MethodPut,
		fmt.Sprintf("/api/mahasiswa/%d", e.record.ID), e.token(e.admin),
		map[string]interface{}{
			"nim":      "2101001",
			"nama":     "Andi Pratama",
			"email":    "andi.pratama@kampus.ac.id",
			"prodi_id": e.prodi.ID,
			"status":   models.StudentStatusCuti,
		})
	require.Equal(t, http.StatusOK, status)

	mhs := body["mahasiswa"].(map[string]interface{})
	assert.Equal(t, "Andi Pratama", mhs["nama"])
	assert.Equal(t, models.StudentStatusCuti, mhs["status"])

	var user models.User
	require.NoError(t, e.db.First(&user, e.student.ID).Error)
	assert.Equal(t, "Andi Pratama", user.Name)
	assert.Equal(t, "andi.pratama@kampus.ac.id", user.Email)
}

func TestDeleteStudentRemovesAccount(t *testing.T) {
	e := setupEnv(t)

	status, _ := e.request(http.MethodDelete,
		fmt.Sprintf("/api/mahasiswa/%d", e.record.ID), e.token(e.admin), nil)
	require.Equal(t, http.StatusOK, status)

	var nStudents, nUsers int64
	require.NoError(t, e.db.Model(&models.Student{}).
		Where("id = ?", e.record.ID).Count(&nStudents).Error)
	require.NoError(t, e.db.Model(&models.User{}).
		Where("id = ?", e.student.ID).Count(&nUsers).Error)
	assert.Zero(t, nStudents)
	assert.Zero(t, nUsers)
}
