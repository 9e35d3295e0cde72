package repo

import (
	"context"
	"time"

	"bookshelf/backend/app/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewUserRepository(db *gorm.DB, timeout time.Duration) *UserRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &UserRepository{db: db, timeout: timeout}
}

func (r *UserRepository) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return r.db.WithContext(ctx), cancel
}

func (r *UserRepository) CountByEmail(ctx context.Context, email string) (int64, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var count int64
	err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count, wrapErr("count users by email", err)
}

func (r *UserRepository) CountByUsername(ctx context.Context, username string) (int64, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var count int64
	err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count, wrapErr("count users by username", err)
}

func (r *UserRepository) CountAdmins(ctx context.Context) (int64, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var count int64
	err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error
	return count, wrapErr("count admins", err)
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	db, cancel := r.conn(ctx)
	defer cancel()
	return wrapErr("create user", db.Create(u).Error)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) findOne(ctx context.Context, cond string, arg any) (*models.User, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var u models.User
	if err := db.Where(cond, arg).First(&u).Error; err != nil {
		return nil, wrapErr("find user", err)
	}
	return &u, nil
}

// List returns all users, newest first.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var users []models.User
	if err := db.Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, wrapErr("list users", err)
	}
	return users, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role string) (*models.User, error) {
	return r.updateColumn(ctx, id, "role", role)
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	_, err := r.updateColumn(ctx, id, "password_hash", hash)
	return err
}

func (r *UserRepository) updateColumn(ctx context.Context, id int64, column string, value any) (*models.User, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	res := db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		column:       value,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return nil, wrapErr("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		return nil, wrapErr("reload user", err)
	}
	return &u, nil
}

// Delete removes the user and reports whether a row existed.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	res := db.Delete(&models.User{}, id)
	if res.Error != nil {
		return false, wrapErr("delete user", res.Error)
	}
	return res.RowsAffected > 0, nil
}
