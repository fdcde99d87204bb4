package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/workdeckhq/workdeck/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

func settingsFromModel(m UserSettingsModel) domain.UserSettings {
	return domain.UserSettings{
		UserID:             m.UserID,
		GeneralSettings:    []byte(m.GeneralSettings),
		AccountSettings:    []byte(m.AccountSettings),
		AppearanceSettings: []byte(m.AppearanceSettings),
		SecuritySettings:   []byte(m.SecuritySettings),
		UpdatedAt:          m.UpdatedAt,
	}
}

func (r *DashboardRepository) GetUserSettings(ctx context.Context, userID string) (domain.UserSettings, error) {
	var m UserSettingsModel
	if err := r.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error; err != nil {
		return domain.UserSettings{}, mapErr(err)
	}
	return settingsFromModel(m), nil
}

// UpsertUserSettings replaces the whole settings row for the user; the four
// partitions are never merged with what is already stored.
func (r *DashboardRepository) UpsertUserSettings(ctx context.Context, value domain.UserSettings) (domain.UserSettings, error) {
	m := UserSettingsModel{
		UserID:             value.UserID,
		GeneralSettings:    datatypes.JSON(value.GeneralSettings),
		AccountSettings:    datatypes.JSON(value.AccountSettings),
		AppearanceSettings: datatypes.JSON(value.AppearanceSettings),
		SecuritySettings:   datatypes.JSON(value.SecuritySettings),
		UpdatedAt:          time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&m).Error
	if err != nil {
		return domain.UserSettings{}, err
	}
	return settingsFromModel(m), nil
}

func profileFromModel(m UserProfileModel) domain.UserProfile {
	return domain.UserProfile{
		ID:        m.ID,
		FullName:  m.FullName,
		Email:     m.Email,
		AvatarURL: m.AvatarURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *DashboardRepository) GetUserProfile(ctx context.Context, id string) (domain.UserProfile, error) {
	var m UserProfileModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.UserProfile{}, mapErr(err)
	}
	return profileFromModel(m), nil
}

func (r *DashboardRepository) UpsertUserProfile(ctx context.Context, value domain.UserProfile) (domain.UserProfile, error) {
	m := UserProfileModel{
		ID:        value.ID,
		FullName:  value.FullName,
		Email:     value.Email,
		AvatarURL: value.AvatarURL,
		UpdatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&m).Error
	if err != nil {
		return domain.UserProfile{}, err
	}
	return profileFromModel(m), nil
}

func userFromModel(m UserModel) domain.User {
	return domain.User{ID: m.ID, Email: m.Email, PasswordHash: m.PasswordHash, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (r *DashboardRepository) CreateUser(ctx context.Context, value domain.User) (domain.User, error) {
	m := UserModel{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(value.Email)),
		PasswordHash: value.PasswordHash,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.User{}, err
	}
	return userFromModel(m), nil
}

func (r *DashboardRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&UserModel{}).Count(&count).Error
	return count, err
}

func (r *DashboardRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&m).Error; err != nil {
		return domain.User{}, mapErr(err)
	}
	return userFromModel(m), nil
}

func (r *DashboardRepository) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.User{}, mapErr(err)
	}
	return userFromModel(m), nil
}

func (r *DashboardRepository) CreateSession(ctx context.Context, value domain.AuthSession) (domain.AuthSession, error) {
	m := SessionModel{ID: uuid.NewString(), UserID: value.UserID, TokenHash: value.TokenHash, ExpiresAt: value.ExpiresAt}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.AuthSession{}, err
	}
	return domain.AuthSession{ID: m.ID, UserID: m.UserID, TokenHash: m.TokenHash, ExpiresAt: m.ExpiresAt, CreatedAt: m.CreatedAt}, nil
}

func (r *DashboardRepository) GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.AuthSession, error) {
	var m SessionModel
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&m).Error; err != nil {
		return domain.AuthSession{}, mapErr(err)
	}
	return domain.AuthSession{ID: m.ID, UserID: m.UserID, TokenHash: m.TokenHash, ExpiresAt: m.ExpiresAt, CreatedAt: m.CreatedAt}, nil
}

func (r *DashboardRepository) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&SessionModel{}).Error
}

func (r *DashboardRepository) CreateAPIToken(ctx context.Context, value domain.APIToken) (domain.APIToken, error) {
	m := APITokenModel{ID: uuid.NewString(), UserID: value.UserID, Name: value.Name, TokenHash: value.TokenHash, ExpiresAt: value.ExpiresAt}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.APIToken{}, err
	}
	return domain.APIToken{ID: m.ID, UserID: m.UserID, Name: m.Name, TokenHash: m.TokenHash, ExpiresAt: m.ExpiresAt, CreatedAt: m.CreatedAt}, nil
}

func (r *DashboardRepository) GetAPITokenByTokenHash(ctx context.Context, tokenHash string) (domain.APIToken, error) {
	var m APITokenModel
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&m).Error; err != nil {
		return domain.APIToken{}, mapErr(err)
	}
	return domain.APIToken{ID: m.ID, UserID: m.UserID, Name: m.Name, TokenHash: m.TokenHash, ExpiresAt: m.ExpiresAt, CreatedAt: m.CreatedAt}, nil
}
