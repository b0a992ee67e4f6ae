package repository

import (
	"errors"

	"auth_core_ms/apperrors"
	"auth_core_ms/domain"

	"gorm.io/gorm"
)

type IUserRepository interface {
	GetByID(db *gorm.DB, id uint) (*domain.User, error)
	GetByIDWithCredentials(db *gorm.DB, id uint) (*domain.User, error)
	GetByUsername(db *gorm.DB, username string) (*domain.User, error)
	GetByUsernameWithCredentials(db *gorm.DB, username string) (*domain.User, error)
	ExistsByUsernameOrEmail(db *gorm.DB, username string, email string) (bool, error)
	Create(db *gorm.DB, entity *domain.User) (*domain.User, error)
	Update(db *gorm.DB, entity *domain.User) error
}

type UserRepository struct {
}

func NewUserRepository() IUserRepository {
	return &UserRepository{}
}

func (u *UserRepository) GetByID(db *gorm.DB, id uint) (*domain.User, error) {
	var user domain.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, mapUserErr(err)
	}
	return &user, nil
}

func (u *UserRepository) GetByIDWithCredentials(db *gorm.DB, id uint) (*domain.User, error) {
	var user domain.User
	if err := db.Preload("Credentials").First(&user, id).Error; err != nil {
		return nil, mapUserErr(err)
	}
	return &user, nil
}

func (u *UserRepository) GetByUsername(db *gorm.DB, username string) (*domain.User, error) {
	var user domain.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, mapUserErr(err)
	}
	return &user, nil
}

func (u *UserRepository) GetByUsernameWithCredentials(db *gorm.DB, username string) (*domain.User, error) {
	var user domain.User
	err := db.Preload("Credentials").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, mapUserErr(err)
	}
	return &user, nil
}

func (u *UserRepository) ExistsByUsernameOrEmail(db *gorm.DB, username string, email string) (bool, error) {
	var count int64
	err := db.Model(&domain.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (u *UserRepository) Create(db *gorm.DB, entity *domain.User) (*domain.User, error) {
	return entity, db.Create(entity).Error
}

func (u *UserRepository) Update(db *gorm.DB, entity *domain.User) error {
	return db.Save(entity).Error
}

func mapUserErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Wrap("user lookup", apperrors.ErrNotFound)
	}
	return err
}
