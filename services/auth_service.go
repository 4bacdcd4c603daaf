package services

import (
	"errors"
	"time"

	"backend/config"
	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

func RegisterUser(email, password, fullName string) error {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	user := models.User{
		Email:            email,
		Password:         hashedPassword,
		FullName:         fullName,
		SubscriptionTier: models.TierFree,
	}

	return config.DB.Create(&user).Error
}

// AuthenticateUser verifies credentials and opens a session. The signed
// token doubles as the session key, so revocation is a row delete and one
// user may hold several sessions at once (multi-device).
func AuthenticateUser(email, password string) (string, error) {
	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return "", errors.New("invalid email or password")
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return "", errors.New("invalid email or password")
	}

	token, expiresAt, err := utils.GenerateJWT(user.ID)
	if err != nil {
		return "", err
	}

	session := models.Session{Token: token, UserID: user.ID, ExpiresAt: expiresAt}
	if err := config.DB.Create(&session).Error; err != nil {
		return "", err
	}
	return token, nil
}

// ValidateSession checks signature, session existence and expiry.
// Expired sessions are deleted on sight.
func ValidateSession(token string) (uint, error) {
	userID, err := utils.ParseJWT(token)
	if err != nil {
		return 0, err
	}

	var session models.Session
	if err := config.DB.Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errors.New("session revoked")
		}
		return 0, err
	}
	if time.Now().After(session.ExpiresAt) {
		_ = config.DB.Unscoped().Delete(&session).Error
		return 0, errors.New("session expired")
	}
	if session.UserID != userID {
		return 0, errors.New("session mismatch")
	}
	return userID, nil
}

func RevokeSession(token string) error {
	return config.DB.Unscoped().Where("token = ?", token).Delete(&models.Session{}).Error
}

func FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := config.DB.First(&user, "email = ?", email).Error; err != nil {
		return nil, errors.New("user not found")
	}
	return &user, nil
}

func FindUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return nil, errors.New("user not found")
	}
	return &user, nil
}
