package services

import (
	"path/filepath"
	"testing"
	"time"

	"bookshelf/backend/app/cache"
	"bookshelf/backend/app/db"
	jwtutil "bookshelf/backend/app/jwt"
	"bookshelf/backend/app/repo"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Connect(db.Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "services.db")}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func newBookService(t *testing.T) (*BookService, *cache.Memory) {
	t.Helper()
	sqlDB, err := newTestDB(t).DB()
	require.NoError(t, err)
	mem := cache.NewMemory(time.Minute)
	t.Cleanup(func() { _ = mem.Close() })
	books := repo.NewBookRepository(sqlDB, repo.SQLiteDialect{}, 5*time.Second)
	return NewBookService(books, mem, zerolog.Nop()), mem
}

func newUserService(t *testing.T, opts UserServiceOptions) *UserService {
	t.Helper()
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	signer := &jwtutil.Signer{Secret: []byte("test-secret"), Issuer: "bookshelf", ExpiresIn: time.Hour}
	users := repo.NewUserRepository(newTestDB(t), 5*time.Second)
	return NewUserService(users, signer, opts, zerolog.Nop())
}
