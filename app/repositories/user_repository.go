package repositories

import (
	"context"
	"time"

	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/pkg/orm"
	"gorm.io/gorm"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := orm.Use(r.db).WithContext(ctx).Model(&models.User{}).Where("email = ?", email).First(&user)
	return user, err
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint64) (models.User, error) {
	var user models.User
	err := orm.Use(r.db).WithContext(ctx).Model(&models.User{}).Where("user_id = ?", id).First(&user)
	return user, err
}

// EmailTaken reports whether an account already uses email.
func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	n, err := orm.Use(r.db).WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count()
	return n > 0, err
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update writes the given columns of user id.
func (r *UserRepository) Update(ctx context.Context, id uint64, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", id).Updates(fields).Error
}

// All returns every user's public contact fields.
func (r *UserRepository) All(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := orm.Use(r.db).WithContext(ctx).
		Model(&models.User{}).
		Select("user_id", "name", "email", "phone_number").
		Order("user_id").
		Get(&users)
	return users, err
}

// CreatedSince returns the creation time of every user created at or after since.
func (r *UserRepository) CreatedSince(ctx context.Context, since time.Time) ([]models.User, error) {
	var users []models.User
	err := orm.Use(r.db).WithContext(ctx).
		Model(&models.User{}).
		Select("user_id", "created_at").
		Where("created_at >= ?", since).
		Get(&users)
	return users, err
}

// RotateRefresh swaps the stored refresh digest only if it still equals
// old, so a refresh token can be redeemed once.
func (r *UserRepository) RotateRefresh(ctx context.Context, id uint64, old, next string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ? AND refresh_token = ?", id, old).
		Update("refresh_token", next)
	return res.RowsAffected == 1, res.Error
}
