package config

import (
	"context"
	"testing"
	"time"

	"myhotel/models"
	"myhotel/rbac"
	"myhotel/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveMySQLDSNFromURL(t *testing.T) {
	t.Setenv("MYSQL_URL", "mysql://u:p@db.example:3307/hotel?charset=utf8")
	dsn, name, err := resolveMySQLDSN()
	require.NoError(t, err)
	assert.Equal(t, "hotel", name)
	assert.Contains(t, dsn, "u:p@tcp(db.example:3307)/hotel?")
	assert.Contains(t, dsn, "charset=utf8")
	assert.Contains(t, dsn, "parseTime=True")
}

func TestResolveMySQLDSNFromParts(t *testing.T) {
	t.Setenv("MYSQL_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "hotel")
	t.Setenv("DB_PASS", "secret")
	t.Setenv("DB_HOST", "10.0.0.5")
	t.Setenv("DB_NAME", "bookings")
	dsn, name, err := resolveMySQLDSN()
	require.NoError(t, err)
	assert.Equal(t, "bookings", name)
	assert.Equal(t, "hotel:secret@tcp(10.0.0.5:3306)/bookings?charset=utf8mb4&parseTime=True&loc=UTC", dsn)
}

func TestResolveDSNUnknownDriver(t *testing.T) {
	_, _, err := resolveDSN("oracle", "")
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "test.db")
	t.Setenv("AUTH_TOKEN_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "test.db", cfg.DB.DSN)
	assert.Equal(t, 30*time.Minute, cfg.AuthTokenTTL)
	assert.Equal(t, time.Hour, cfg.PaymentIntentTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadEnvFileMissingIsFine(t *testing.T) {
	assert.NoError(t, LoadEnvFile(t.TempDir()+"/nope.env"))
}

func TestExpandPermissions(t *testing.T) {
	got, err := ExpandPermissions([]string{"*_booking", "view_room", "access_booking"})
	require.NoError(t, err)
	assert.Equal(t, []string{"access_booking", "add_booking", "delete_booking", "edit_booking", "view_booking", "view_room"}, got)

	views, err := ExpandPermissions([]string{"view_*"})
	require.NoError(t, err)
	assert.Len(t, views, len(rbac.Categories))

	_, err = ExpandPermissions([]string{"*_spaceship"})
	assert.Error(t, err)
	_, err = ExpandPermissions([]string{"fly_*"})
	assert.Error(t, err)
}

func TestDefaultSeedParses(t *testing.T) {
	data, err := DefaultSeed()
	require.NoError(t, err)
	require.NotEmpty(t, data.Roles)
	for _, r := range data.Roles {
		_, err := ExpandPermissions(r.Permissions)
		assert.NoError(t, err, r.Name)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db, err := OpenDatabase(DBConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	data, err := DefaultSeed()
	require.NoError(t, err)
	admin := AdminConfig{Username: "root@hotel.test", Password: "password1", FullName: "Root"}
	ctx := context.Background()
	require.NoError(t, Seed(ctx, db, data, admin, zap.NewNop()))
	require.NoError(t, Seed(ctx, db, data, admin, zap.NewNop()))

	var perms, roles, users, rooms int64
	db.Model(&models.Permission{}).Count(&perms)
	db.Model(&models.Role{}).Count(&roles)
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Room{}).Count(&rooms)
	assert.Equal(t, int64(len(rbac.All())), perms)
	assert.Equal(t, int64(len(data.Roles)), roles)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(5), rooms)

	ps := services.NewPermissionService(db, nil)
	var viewer models.Role
	require.NoError(t, db.Where("name = ?", "Viewer").First(&viewer).Error)
	var root models.User
	require.NoError(t, db.Where("username = ?", "root@hotel.test").First(&root).Error)
	_, err = ps.AssignRole(ctx, root.ID, viewer.ID, nil)
	require.NoError(t, err)
	p, err := ps.Snapshot(ctx, root.ID)
	require.NoError(t, err)
	assert.True(t, p.Superuser)
}
