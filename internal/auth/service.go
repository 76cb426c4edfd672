package auth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/models"
)

const invalidCredentials = "Kullanıcı adı veya PIN hatalı"

// LockoutPolicy art arda hatalı girişte hesabın ne kadar kilitleneceği.
type LockoutPolicy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

type Service struct {
	db     *gorm.DB
	policy LockoutPolicy
	now    func() time.Time
}

func NewService(db *gorm.DB, policy LockoutPolicy) *Service {
	return &Service{db: db, policy: policy, now: time.Now}
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func hashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Internal("PIN hashlenemedi", err)
	}
	return string(hash), nil
}

func userSnapshot(u *models.User) map[string]any {
	return map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"fullName": u.FullName,
		"isAdmin":  u.IsAdmin,
		"isActive": u.IsActive,
	}
}

// Setup ilk admin kullanıcıyı oluşturur; herhangi bir kullanıcı varsa reddedilir.
func (s *Service) Setup(ctx context.Context, username, fullName, pin string) (*models.User, error) {
	hash, err := hashPIN(pin)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: normalizeUsername(username),
		FullName: strings.TrimSpace(fullName),
		PinHash:  hash,
		IsAdmin:  true,
		IsActive: true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Forbidden("Kurulum zaten yapılmış")
		}
		if err := tx.Create(&user).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       audit.Actor{UserID: user.ID, UserName: user.Username},
			EntityType:  audit.EntityUser,
			EntityID:    user.ID,
			Action:      models.AuditActionCreate,
			Description: "İlk admin oluşturuldu: " + user.Username,
			After:       userSnapshot(&user),
		})
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Kullanıcı oluşturulamadı")
	}
	return &user, nil
}

// Login PIN'i doğrular. Art arda MaxAttempts hatalı denemeden sonra hesap
// LockDuration boyunca kilitlenir; başarılı giriş sayaçları sıfırlar.
func (s *Service) Login(ctx context.Context, username, pin string) (*models.User, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	var user models.User
	if err := db.Where("username = ?", normalizeUsername(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized(invalidCredentials)
		}
		return nil, apperr.Internal("Kullanıcı okunamadı", err)
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("Hesap pasif durumda")
	}
	if user.IsLocked(now) {
		return nil, lockedError(user.LockUntil.Sub(now))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(pin)); err != nil {
		attempts := user.LoginAttempts + 1
		updates := map[string]any{"login_attempts": attempts}
		locked := s.policy.MaxAttempts > 0 && attempts >= s.policy.MaxAttempts
		if locked {
			updates["login_attempts"] = 0
			updates["lock_until"] = now.Add(s.policy.LockDuration)
		}
		if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return nil, apperr.Internal("Giriş denemesi kaydedilemedi", err)
		}
		if locked {
			return nil, lockedError(s.policy.LockDuration)
		}
		return nil, apperr.Unauthorized(invalidCredentials)
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"login_attempts": 0,
		"lock_until":     nil,
		"last_login_at":  now,
	}).Error; err != nil {
		return nil, apperr.Internal("Giriş kaydedilemedi", err)
	}
	user.LoginAttempts = 0
	user.LockUntil = nil
	user.LastLoginAt = &now
	return &user, nil
}

func lockedError(remaining time.Duration) error {
	minutes := int(math.Ceil(remaining.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return apperr.Unauthorized(fmt.Sprintf("Hesap kilitli, %d dakika sonra tekrar deneyin", minutes))
}

func (s *Service) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "Kullanıcı bulunamadı")
	}
	return &user, nil
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username asc").Find(&users).Error; err != nil {
		return nil, apperr.Internal("Kullanıcılar listelenemedi", err)
	}
	return users, nil
}

type UserInput struct {
	Username string
	FullName string
	PIN      string
	IsAdmin  bool
}

func (s *Service) CreateUser(ctx context.Context, in UserInput, actor audit.Actor) (*models.User, error) {
	hash, err := hashPIN(in.PIN)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username: normalizeUsername(in.Username),
		FullName: strings.TrimSpace(in.FullName),
		PinHash:  hash,
		IsAdmin:  in.IsAdmin,
		IsActive: true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("username", "Bu kullanıcı adı zaten kullanılıyor")
			}
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityUser,
			EntityID:    user.ID,
			Action:      models.AuditActionCreate,
			Description: "Kullanıcı oluşturuldu: " + user.Username,
			After:       userSnapshot(&user),
		})
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Kullanıcı oluşturulamadı")
	}
	return &user, nil
}

type UserUpdate struct {
	FullName *string
	PIN      *string
	IsAdmin  *bool
	IsActive *bool
}

func (s *Service) UpdateUser(ctx context.Context, id uint, in UserUpdate, actor audit.Actor) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "Kullanıcı bulunamadı")
		}
		before := userSnapshot(&user)

		if in.FullName != nil {
			user.FullName = strings.TrimSpace(*in.FullName)
		}
		if in.PIN != nil {
			hash, err := hashPIN(*in.PIN)
			if err != nil {
				return err
			}
			user.PinHash = hash
		}
		if in.IsAdmin != nil {
			if !*in.IsAdmin && user.IsAdmin {
				if err := ensureOtherAdmin(tx, user.ID); err != nil {
					return err
				}
			}
			user.IsAdmin = *in.IsAdmin
		}
		if in.IsActive != nil {
			if !*in.IsActive && user.IsAdmin {
				if err := ensureOtherAdmin(tx, user.ID); err != nil {
					return err
				}
			}
			user.IsActive = *in.IsActive
		}

		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityUser,
			EntityID:    user.ID,
			Action:      models.AuditActionUpdate,
			Description: "Kullanıcı güncellendi: " + user.Username,
			Before:      before,
			After:       userSnapshot(&user),
		})
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Kullanıcı güncellenemedi")
	}
	return &user, nil
}

// DeactivateUser kullanıcıyı pasife alır; kendi hesabını ve son aktif admini silmek yasak.
func (s *Service) DeactivateUser(ctx context.Context, id uint, actor audit.Actor) error {
	if id == actor.UserID {
		return apperr.Business("Kendi hesabınızı silemezsiniz")
	}
	inactive := false
	_, err := s.UpdateUser(ctx, id, UserUpdate{IsActive: &inactive}, actor)
	return err
}

// Unlock kilidi ve hatalı deneme sayacını sıfırlar.
func (s *Service) Unlock(ctx context.Context, id uint, actor audit.Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "Kullanıcı bulunamadı")
		}
		if err := tx.Model(&user).Updates(map[string]any{"login_attempts": 0, "lock_until": nil}).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityUser,
			EntityID:    user.ID,
			Action:      models.AuditActionUpdate,
			Description: "Kullanıcı kilidi açıldı: " + user.Username,
		})
	})
	return apperr.Wrap(err, "Kullanıcı kilidi açılamadı")
}

func ensureOtherAdmin(tx *gorm.DB, exceptID uint) error {
	var count int64
	if err := tx.Model(&models.User{}).
		Where("is_admin = ? AND is_active = ? AND id <> ?", true, true, exceptID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.Business("Sistemde en az bir aktif admin kalmalı")
	}
	return nil
}
