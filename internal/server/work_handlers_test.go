package server

import (
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"campushub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createWorkVia(e *testEnv, token string, fields map[string]string) (int, map[string]interface{}) {
	base := map[string]string{
		"judul":     "Aplikasi Perpustakaan",
		"deskripsi": "Sistem manajemen perpustakaan kampus",
		"jenis":     "aplikasi",
	}
	for k, v := range fields {
		base[k] = v
	}
	return e.multipartRequest(http.MethodPost, "/api/karya-mahasiswa", token, base, nil)
}

func workFromBody(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	item, ok := body["karya_mahasiswa"].(map[string]interface{})
	require.True(t, ok, "response should carry karya_mahasiswa, got %v", body)
	return item
}

func TestCreateWork(t *testing.T) {
	e := setupEnv(t)

	t.Run("requires authentication", func(t *testing.T) {
		status, _ := createWorkVia(e, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("student submission starts pending", func(t *testing.T) {
		status, body := createWorkVia(e, e.token(e.student), nil)
		require.Equal(t, http.StatusCreated, status)

		item := workFromBody(t, body)
		assert.Equal(t, false, item["is_published"])
		assert.Nil(t, item["approved_at"])
		assert.Equal(t, float64(e.record.ID), item["mahasiswa_id"])
	})

	t.Run("admin create publishes with approval stamp", func(t *testing.T) {
		status, body := createWorkVia(e, e.token(e.admin), map[string]string{
			"judul":        "Karya Unggulan",
			"mahasiswa_id": fmt.Sprint(e.record.ID),
		})
		require.Equal(t, http.StatusCreated, status)

		item := workFromBody(t, body)
		assert.Equal(t, true, item["is_published"])
		assert.NotNil(t, item["approved_at"])
	})

	t.Run("missing judul yields a field error map", func(t *testing.T) {
		status, body := createWorkVia(e, e.token(e.student), map[string]string{"judul": ""})
		require.Equal(t, http.StatusUnprocessableEntity, status)

		errs, ok := body["errors"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, errs, "judul")
	})

	t.Run("oversized thumbnail is rejected", func(t *testing.T) {
		status, body := e.multipartRequest(http.MethodPost, "/api/karya-mahasiswa",
			e.token(e.student),
			map[string]string{"judul": "Besar", "deskripsi": "x", "jenis": "desain"},
			map[string][]byte{"thumbnail": make([]byte, 3<<20)})
		require.Equal(t, http.StatusUnprocessableEntity, status)

		errs, ok := body["errors"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, errs, "thumbnail")
	})
}

func TestWorkVisibilityAndListing(t *testing.T) {
	e := setupEnv(t)

	_, body := createWorkVia(e, e.token(e.student), map[string]string{"judul": "Karya Pending"})
	pending := workFromBody(t, body)
	pendingSlug := pending["slug"].(string)

	_, body = createWorkVia(e, e.token(e.admin), map[string]string{
		"judul":        "Karya Terbit",
		"mahasiswa_id": fmt.Sprint(e.record.ID),
	})
	published := workFromBody(t, body)

	t.Run("anonymous list only contains published items", func(t *testing.T) {
		status, body := httpGet(e, "/api/karya-mahasiswa", "")
		require.Equal(t, http.StatusOK, status)

		page := body["karya_mahasiswa"].(map[string]interface{})
		assert.Equal(t, float64(1), page["total"])
	})

	t.Run("owner sees both via my_karya", func(t *testing.T) {
		status, body := httpGet(e, "/api/karya-mahasiswa?my_karya=1", e.token(e.student))
		require.Equal(t, http.StatusOK, status)

		page := body["karya_mahasiswa"].(map[string]interface{})
		assert.Equal(t, float64(2), page["total"])
	})

	t.Run("admin sees everything", func(t *testing.T) {
		status, body := httpGet(e, "/api/karya-mahasiswa", e.token(e.admin))
		require.Equal(t, http.StatusOK, status)

		page := body["karya_mahasiswa"].(map[string]interface{})
		assert.Equal(t, float64(2), page["total"])
	})

	t.Run("pending detail hidden from anonymous viewers", func(t *testing.T) {
		status, _ := httpGet(e, "/api/karya-mahasiswa/"+pendingSlug, "")
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = httpGet(e, "/api/karya-mahasiswa/"+pendingSlug, e.token(e.student))
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("published detail is public", func(t *testing.T) {
		status, body := httpGet(e, "/api/karya-mahasiswa/"+published["slug"].(string), "")
		require.Equal(t, http.StatusOK, status)

		item := workFromBody(t, body)
		mhs, ok := item["mahasiswa"].(map[string]interface{})
		require.True(t, ok, "detail should join the student record")
		assert.Equal(t, "2101001", mhs["nim"])
	})
}

func TestApproveRejectEndpoints(t *testing.T) {
	e := setupEnv(t)

	_, body := createWorkVia(e, e.token(e.student), nil)
	item := workFromBody(t, body)
	id := fmt.Sprintf("%.0f", item["id"].(float64))

	t.Run("student cannot approve", func(t *testing.T) {
		status, _ := e.request(http.MethodPut, "/api/karya-mahasiswa/"+id+"/approve",
			e.token(e.student), nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("reject without reason is a validation error", func(t *testing.T) {
		status, body := e.request(http.MethodPut, "/api/karya-mahasiswa/"+id+"/reject",
			e.token(e.admin), map[string]string{})
		require.Equal(t, http.StatusUnprocessableEntity, status)

		errs := body["errors"].(map[string]interface{})
		assert.Contains(t, errs, "reason")
	})

	t.Run("reject stores the reason and unpublishes", func(t *testing.T) {
		status, body := e.request(http.MethodPut, "/api/karya-mahasiswa/"+id+"/reject",
			e.token(e.admin), map[string]string{"reason": "tidak sesuai pedoman"})
		require.Equal(t, http.StatusOK, status)

		updated := workFromBody(t, body)
		assert.Equal(t, "tidak sesuai pedoman", updated["rejection_reason"])
		assert.Equal(t, false, updated["is_published"])
	})

	t.Run("approve publishes and clears the rejection reason", func(t *testing.T) {
		status, body := e.request(http.MethodPut, "/api/karya-mahasiswa/"+id+"/approve",
			e.token(e.admin), nil)
		require.Equal(t, http.StatusOK, status)

		updated := workFromBody(t, body)
		assert.Equal(t, true, updated["is_published"])
		assert.NotNil(t, updated["approved_at"])
		assert.Empty(t, updated["rejection_reason"])
	})

	t.Run("owner cannot flip publish state after approval", func(t *testing.T) {
		status, _ := e.multipartRequest(http.MethodPut, "/api/karya-mahasiswa/"+id,
			e.token(e.student), map[string]string{"is_published": "0"}, nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("owner cannot delete after approval but admin can", func(t *testing.T) {
		status, _ := e.request(http.MethodDelete, "/api/karya-mahasiswa/"+id,
			e.token(e.student), nil)
		assert.Equal(t, http.StatusForbidden, status)

		status, _ = e.request(http.MethodDelete, "/api/karya-mahasiswa/"+id,
			e.token(e.admin), nil)
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestUpdateWorkSlugRegeneration(t *testing.T) {
	e := setupEnv(t)

	_, body := createWorkVia(e, e.token(e.student), nil)
	item := workFromBody(t, body)
	id := fmt.Sprintf("%.0f", item["id"].(float64))
	oldSlug := item["slug"].(string)

	status, body := e.multipartRequest(http.MethodPut, "/api/karya-mahasiswa/"+id,
		e.token(e.student), map[string]string{"judul": "Judul Revisi"}, nil)
	require.Equal(t, http.StatusOK, status)

	updated := workFromBody(t, body)
	assert.NotEqual(t, oldSlug, updated["slug"])
	assert.True(t, strings.HasPrefix(updated["slug"].(string), "judul-revisi-"))
}

// storedFileCount walks the storage root counting regular files.
func storedFileCount(t *testing.T, root string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func TestUpdateWorkRefusedCleansUploads(t *testing.T) {
	e := setupEnv(t)

	_, body := createWorkVia(e, e.token(e.student), nil)
	item := workFromBody(t, body)
	id := fmt.Sprintf("%.0f", item["id"].(float64))

	outsider := &models.User{Name: "Pengguna Lain", Email: "lain@kampus.ac.id", Password: "x"}
	require.NoError(t, e.db.Create(outsider).Error)

	status, _ := e.multipartRequest(http.MethodPut, "/api/karya-mahasiswa/"+id,
		e.token(outsider),
		map[string]string{"deskripsi": "coba ubah"},
		map[string][]byte{"file": []byte("bukan milik saya")})
	require.Equal(t, http.StatusForbidden, status)

	assert.Zero(t, storedFileCount(t, e.server.config.StoragePath),
		"a refused update must not leave uploaded files behind")
}

func TestDownloadWork(t *testing.T) {
	e := setupEnv(t)

	t.Run("missing file yields 404", func(t *testing.T) {
		_, body := createWorkVia(e, e.token(e.student), nil)
		item := workFromBody(t, body)
		id := fmt.Sprintf("%.0f", item["id"].(float64))

		status, _ := httpGet(e, "/api/karya-mahasiswa/"+id+"/download", "")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("stored file streams back", func(t *testing.T) {
		_, body := e.multipartRequest(http.MethodPost, "/api/karya-mahasiswa",
			e.token(e.student),
			map[string]string{"judul": "Dengan File", "deskripsi": "x", "jenis": "skripsi"},
			map[string][]byte{"file": []byte("isi laporan skripsi")})
		item := workFromBody(t, body)
		id := fmt.Sprintf("%.0f", item["id"].(float64))

		status, _ := httpGet(e, "/api/karya-mahasiswa/"+id+"/download", "")
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestWorkMetaAndStats(t *testing.T) {
	e := setupEnv(t)

	createWorkVia(e, e.token(e.student), map[string]string{"jenis": "skripsi"})
	createWorkVia(e, e.token(e.student), map[string]string{"judul": "Dua", "jenis": "aplikasi"})

	t.Run("jenis list is public and distinct", func(t *testing.T) {
		status, body := httpGet(e, "/api/karya-mahasiswa/meta/jenis", "")
		require.Equal(t, http.StatusOK, status)

		jenis := body["jenis"].([]interface{})
		assert.ElementsMatch(t, []interface{}{"aplikasi", "skripsi"}, jenis)
	})

	t.Run("approval stats are admin only", func(t *testing.T) {
		status, _ := httpGet(e, "/api/karya-mahasiswa/stats/approval", e.token(e.student))
		assert.Equal(t, http.StatusForbidden, status)

		status, body := httpGet(e, "/api/karya-mahasiswa/stats/approval", e.token(e.admin))
		require.Equal(t, http.StatusOK, status)

		stats := body["stats"].(map[string]interface{})
		assert.Equal(t, float64(2), stats["total"])
		assert.Equal(t, float64(2), stats["pending"])
	})
}

func TestNonAdminWithoutStudentRecordForbidden(t *testing.T) {
	e := setupEnv(t)

	plain := &models.User{Name: "Tanpa Record", Email: "plain@kampus.ac.id", Password: "x"}
	require.NoError(t, e.db.Create(plain).Error)

	status, _ := createWorkVia(e, e.token(plain), nil)
	assert.Equal(t, http.StatusForbidden, status)
}
