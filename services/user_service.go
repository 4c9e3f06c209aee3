package services

import (
	"context"
	"fmt"
	"strings"

	"myhotel/models"
	"myhotel/rbac"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type UserInput struct {
	FullName    string `json:"full_name"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	IsSuperuser *bool  `json:"is_superuser"`
	IsActive    *bool  `json:"is_active"`
}

type UserService struct {
	DB     *gorm.DB
	Ledger *Ledger
	Log    *zap.Logger
}

func NewUserService(db *gorm.DB, ledger *Ledger, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	if ledger == nil {
		ledger = NewLedger(db)
	}
	return &UserService{DB: db, Ledger: ledger, Log: log}
}

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(plain string) error {
	if len(plain) < minPasswordLength {
		return Validation("weak_password", fmt.Sprintf("Password must be at least %d characters.", minPasswordLength))
	}
	return nil
}

// superuserOnly guards changes that only a superuser may make. A nil caller is
// the system itself, as when seeding.
func superuserOnly(caller *rbac.Principal) error {
	if caller == nil || caller.Superuser {
		return nil
	}
	return Forbidden("superuser_required", "Only a superuser can manage superuser accounts.")
}

func (s *UserService) Create(ctx context.Context, caller *rbac.Principal, in UserInput) (models.User, error) {
	if in.IsSuperuser != nil && *in.IsSuperuser {
		if err := superuserOnly(caller); err != nil {
			return models.User{}, err
		}
	}
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" {
		return models.User{}, Validation("invalid_user", "Username is required.")
	}
	if err := checkPassword(in.Password); err != nil {
		return models.User{}, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return models.User{}, Internal(err)
	}
	u := models.User{FullName: strings.TrimSpace(in.FullName), Username: username, Password: hash, IsActive: true}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.IsSuperuser != nil {
		u.IsSuperuser = *in.IsSuperuser
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if isDuplicateKey(err) {
			return models.User{}, Conflict("username_taken", fmt.Sprintf("Username %q is already taken.", username))
		}
		return models.User{}, Internal(err)
	}
	s.Log.Info("user created", zap.Uint("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// Update edits an account. Superuser accounts and the superuser flag itself
// are only editable by a superuser.
func (s *UserService) Update(ctx context.Context, caller *rbac.Principal, id uint, in UserInput) (models.User, error) {
	target, err := s.Get(ctx, id, QueryDefault)
	if err != nil {
		return models.User{}, err
	}
	if target.IsSuperuser || (in.IsSuperuser != nil && *in.IsSuperuser != target.IsSuperuser) {
		if err := superuserOnly(caller); err != nil {
			return models.User{}, err
		}
	}
	updates := map[string]interface{}{}
	if name := strings.TrimSpace(in.FullName); name != "" {
		updates["full_name"] = name
	}
	if username := strings.ToLower(strings.TrimSpace(in.Username)); username != "" {
		updates["username"] = username
	}
	if in.Password != "" {
		if err := checkPassword(in.Password); err != nil {
			return models.User{}, err
		}
		hash, err := HashPassword(in.Password)
		if err != nil {
			return models.User{}, Internal(err)
		}
		updates["password"] = hash
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.IsSuperuser != nil {
		updates["is_superuser"] = *in.IsSuperuser
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if isDuplicateKey(err) {
				return models.User{}, Conflict("username_taken", "That username is already taken.")
			}
			return models.User{}, Internal(err)
		}
	}
	return s.Get(ctx, id, QueryDefault)
}

func (s *UserService) Get(ctx context.Context, id uint, mode QueryMode) (models.User, error) {
	return getRow[models.User](s.DB.WithContext(ctx), id, mode, "user_not_found", "User not found.")
}

func (s *UserService) List(ctx context.Context, mode QueryMode) ([]models.User, error) {
	return listRows[models.User](s.DB.WithContext(ctx), mode, "username ASC")
}

// Delete soft-deletes the account. Users cannot delete themselves and only a
// superuser can delete another superuser.
func (s *UserService) Delete(ctx context.Context, caller *rbac.Principal, id uint) error {
	var actorID *uint
	if caller != nil {
		if caller.UserID == id {
			return Conflict("self_delete", "You cannot delete your own account.")
		}
		actorID = &caller.UserID
	}
	target, err := s.Get(ctx, id, QueryDefault)
	if err != nil {
		return err
	}
	if target.IsSuperuser {
		if err := superuserOnly(caller); err != nil {
			return err
		}
	}
	return s.Ledger.SoftDelete(ctx, &models.User{}, id, actorID)
}

func (s *UserService) Restore(ctx context.Context, id uint) error {
	return s.Ledger.Restore(ctx, &models.User{}, id)
}
