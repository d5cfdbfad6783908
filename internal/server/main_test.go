package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"campushub/internal/cache"
	"campushub/internal/config"
	"campushub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

type testEnv struct {
	t       *testing.T
	db      *gorm.DB
	app     *fiber.App
	server  *Server
	admin   *models.User
	student *models.User
	record  *models.Student
	prodi   *models.Program
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Permission{}, &models.Role{}, &models.User{},
		&models.Program{}, &models.Student{}, &models.WorkItem{},
		&models.News{}, &models.Announcement{}, &models.Event{},
		&models.Partnership{}, &models.Media{}, &models.CampusProfile{},
	))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(redisClient)
	t.Cleanup(func() { cache.SetClient(nil) })

	cfg := &config.Config{
		JWTSecret:   "test-secret-which-is-long-enough",
		Port:        "8080",
		Env:         "test",
		StoragePath: t.TempDir(),
		MaxUploadMB: 25,
	}

	srv, err := NewServerWithDeps(cfg, db, redisClient)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	srv.SetupRoutes(app)

	env := &testEnv{t: t, db: db, app: app, server: srv}
	env.seedUsers()
	return env
}

func (e *testEnv) seedUsers() {
	adminRole := &models.Role{Name: models.RoleAdmin}
	studentRole := &models.Role{Name: models.RoleMahasiswa}
	require.NoError(e.t, e.db.Create(adminRole).Error)
	require.NoError(e.t, e.db.Create(studentRole).Error)

	e.admin = &models.User{
		Name: "Admin", Email: "admin@kampus.ac.id", Password: "x",
		Roles: []models.Role{*adminRole},
	}
	require.NoError(e.t, e.db.Create(e.admin).Error)

	e.prodi = &models.Program{Nama: "Sistem Informasi", Slug: "sistem-informasi"}
	require.NoError(e.t, e.db.Create(e.prodi).Error)

	e.student = &models.User{
		Name: "Andi", Email: "andi@kampus.ac.id", Password: "x",
		Roles: []models.Role{*studentRole},
	}
	require.NoError(e.t, e.db.Create(e.student).Error)

	e.record = &models.Student{
		NIM: "2101001", Nama: "Andi", ProdiID: e.prodi.ID,
		UserID: &e.student.ID, Status: models.StudentStatusAktif,
	}
	require.NoError(e.t, e.db.Create(e.record).Error)
}

func (e *testEnv) token(user *models.User) string {
	token, err := e.server.generateToken(user.ID)
	require.NoError(e.t, err)
	return token
}

// request performs an HTTP round trip through the fiber app and decodes the
// JSON response body.
func (e *testEnv) request(method, path, token string, body interface{}) (int, map[string]interface{}) {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

// multipartRequest posts form fields (and optional files) as multipart data.
func (e *testEnv) multipartRequest(method, path, token string, fields map[string]string, files map[string][]byte) (int, map[string]interface{}) {
	e.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(e.t, w.WriteField(k, v))
	}
	for name, content := range files {
		part, err := w.CreateFormFile(name, name+".bin")
		require.NoError(e.t, err)
		_, err = part.Write(content)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

func httpGet(e *testEnv, path, token string) (int, map[string]interface{}) {
	return e.request(http.MethodGet, path, token, nil)
}
