package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"myhotel/models"
	"myhotel/rbac"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PermissionService owns roles, their permission sets and user assignments,
// and builds rbac principals from the current store state.
type PermissionService struct {
	DB  *gorm.DB
	Now func() time.Time
	Log *zap.Logger
}

func NewPermissionService(db *gorm.DB, log *zap.Logger) *PermissionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PermissionService{DB: db, Now: time.Now, Log: log}
}

func permissionRow(p rbac.Permission) models.Permission {
	return models.Permission{
		Codename: p.Codename(),
		Name:     p.Name(),
		Category: string(p.Category),
		Action:   string(p.Action),
		Section:  string(p.Section),
	}
}

// SyncPermissions upserts one row per member of the rbac enumeration.
func (s *PermissionService) SyncPermissions(ctx context.Context) error {
	all := rbac.All()
	rows := make([]models.Permission, 0, len(all))
	for _, p := range all {
		rows = append(rows, permissionRow(p))
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "codename"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "category", "action", "section"}),
	}).Create(&rows).Error
	if err != nil {
		return Internal(err)
	}
	return nil
}

func (s *PermissionService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	if err := s.DB.WithContext(ctx).Order("category ASC, section ASC, action ASC").Find(&perms).Error; err != nil {
		return nil, Internal(err)
	}
	return perms, nil
}

// Snapshot loads the principal for userID with every role it holds. It reads
// the store on every call.
func (s *PermissionService) Snapshot(ctx context.Context, userID uint) (*rbac.Principal, error) {
	db := s.DB.WithContext(ctx)
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if isNotFound(err) {
			return nil, Unauthorized("unknown_user", "User no longer exists.")
		}
		return nil, Internal(err)
	}
	if !user.IsActive {
		return nil, Forbidden("user_inactive", "This account has been deactivated.")
	}
	var assignments []models.UserRole
	if err := db.Preload("Role.Permissions").Where("user_id = ?", userID).Find(&assignments).Error; err != nil {
		return nil, Internal(err)
	}
	p := &rbac.Principal{UserID: user.ID, Username: user.Username, Superuser: user.IsSuperuser}
	for _, a := range assignments {
		grant := rbac.RoleGrant{RoleID: a.RoleID, Name: a.Role.Name, Active: a.Role.IsActive}
		for _, perm := range a.Role.Permissions {
			grant.Codenames = append(grant.Codenames, perm.Codename)
		}
		p.Roles = append(p.Roles, grant)
	}
	return p, nil
}

type RoleInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsActive    *bool    `json:"is_active"`
	Permissions []string `json:"permissions"`
}

func (s *PermissionService) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := s.DB.WithContext(ctx).Preload("Permissions").Order("name ASC").Find(&roles).Error; err != nil {
		return nil, Internal(err)
	}
	return roles, nil
}

func (s *PermissionService) GetRole(ctx context.Context, id uint) (models.Role, error) {
	return s.getRole(s.DB.WithContext(ctx), id)
}

func (s *PermissionService) getRole(db *gorm.DB, id uint) (models.Role, error) {
	var role models.Role
	if err := db.Preload("Permissions").First(&role, id).Error; err != nil {
		if isNotFound(err) {
			return role, NotFound("role_not_found", "Role not found.")
		}
		return role, Internal(err)
	}
	return role, nil
}

// resolvePermissions maps codenames onto stored rows, rejecting anything
// outside the enumeration.
func (s *PermissionService) resolvePermissions(db *gorm.DB, codenames []string) ([]models.Permission, error) {
	var bad []string
	wanted := map[string]bool{}
	for _, c := range codenames {
		p, err := rbac.Parse(c)
		if err != nil {
			bad = append(bad, fmt.Sprintf("Unknown permission %q.", c))
			continue
		}
		wanted[p.Codename()] = true
	}
	if len(bad) > 0 {
		return nil, Validation("unknown_permission", bad...)
	}
	if len(wanted) == 0 {
		return []models.Permission{}, nil
	}
	list := make([]string, 0, len(wanted))
	for c := range wanted {
		list = append(list, c)
	}
	sort.Strings(list)
	var rows []models.Permission
	if err := db.Where("codename IN ?", list).Find(&rows).Error; err != nil {
		return nil, Internal(err)
	}
	if len(rows) != len(list) {
		return nil, Internal(fmt.Errorf("permission table out of sync: have %d of %d rows", len(rows), len(list)))
	}
	return rows, nil
}

func (s *PermissionService) replacePermissions(tx *gorm.DB, role *models.Role, codenames []string) error {
	perms, err := s.resolvePermissions(tx, codenames)
	if err != nil {
		return err
	}
	assoc := tx.Model(role).Association("Permissions")
	if len(perms) == 0 {
		if err := assoc.Clear(); err != nil {
			return Internal(err)
		}
		return nil
	}
	if err := assoc.Replace(perms); err != nil {
		return Internal(err)
	}
	return nil
}

func (s *PermissionService) CreateRole(ctx context.Context, in RoleInput) (models.Role, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Role{}, Validation("invalid_role", "Role name is required.")
	}
	role := models.Role{Name: name, Description: strings.TrimSpace(in.Description), IsActive: true}
	if in.IsActive != nil {
		role.IsActive = *in.IsActive
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Permissions").Create(&role).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict("role_exists", fmt.Sprintf("A role named %q already exists.", name))
			}
			return Internal(err)
		}
		return s.replacePermissions(tx, &role, in.Permissions)
	})
	if err != nil {
		return models.Role{}, storeErr(err)
	}
	return s.GetRole(ctx, role.ID)
}

// UpdateRole changes name, description and active flag. A nil permission
// list leaves the set untouched.
func (s *PermissionService) UpdateRole(ctx context.Context, id uint, in RoleInput) (models.Role, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := s.getRole(tx, id)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if name := strings.TrimSpace(in.Name); name != "" {
			updates["name"] = name
		}
		if in.Description != "" {
			updates["description"] = strings.TrimSpace(in.Description)
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Role{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				if isDuplicateKey(err) {
					return Conflict("role_exists", "A role with that name already exists.")
				}
				return Internal(err)
			}
		}
		if in.Permissions != nil {
			return s.replacePermissions(tx, &role, in.Permissions)
		}
		return nil
	})
	if err != nil {
		return models.Role{}, storeErr(err)
	}
	return s.GetRole(ctx, id)
}

func (s *PermissionService) SetRolePermissions(ctx context.Context, id uint, codenames []string) (models.Role, error) {
	if codenames == nil {
		codenames = []string{}
	}
	return s.UpdateRole(ctx, id, RoleInput{Permissions: codenames})
}

// DeleteRole removes the role together with its grants and assignments.
func (s *PermissionService) DeleteRole(ctx context.Context, id uint) error {
	return storeErr(s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := s.getRole(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(&role).Association("Permissions").Clear(); err != nil {
			return Internal(err)
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return Internal(err)
		}
		if err := tx.Delete(&models.Role{}, id).Error; err != nil {
			return Internal(err)
		}
		s.Log.Info("role deleted", zap.Uint("role_id", id), zap.String("name", role.Name))
		return nil
	}))
}

// AssignRole grants roleID to userID. Holding the same role twice is a
// conflict.
func (s *PermissionService) AssignRole(ctx context.Context, userID, roleID uint, grantedBy *uint) (models.UserRole, error) {
	db := s.DB.WithContext(ctx)
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if isNotFound(err) {
			return models.UserRole{}, NotFound("user_not_found", "User not found.")
		}
		return models.UserRole{}, Internal(err)
	}
	if _, err := s.getRole(db, roleID); err != nil {
		return models.UserRole{}, err
	}
	var existing int64
	if err := db.Model(&models.UserRole{}).Where("user_id = ? AND role_id = ?", userID, roleID).Count(&existing).Error; err != nil {
		return models.UserRole{}, Internal(err)
	}
	if existing > 0 {
		return models.UserRole{}, Conflict("role_already_assigned", "The user already holds this role.")
	}
	ur := models.UserRole{UserID: userID, RoleID: roleID, GrantedByID: grantedBy, GrantedAt: s.Now().UTC()}
	if err := db.Omit("User", "Role").Create(&ur).Error; err != nil {
		if isDuplicateKey(err) {
			return models.UserRole{}, Conflict("role_already_assigned", "The user already holds this role.")
		}
		return models.UserRole{}, Internal(err)
	}
	if err := db.Preload("Role").First(&ur, ur.ID).Error; err != nil {
		return models.UserRole{}, Internal(err)
	}
	return ur, nil
}

func (s *PermissionService) RemoveRole(ctx context.Context, userID, roleID uint) error {
	res := s.DB.WithContext(ctx).Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&models.UserRole{})
	if res.Error != nil {
		return Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound("assignment_not_found", "The user does not hold this role.")
	}
	return nil
}

func (s *PermissionService) UserRoles(ctx context.Context, userID uint) ([]models.UserRole, error) {
	var out []models.UserRole
	if err := s.DB.WithContext(ctx).Preload("Role.Permissions").Where("user_id = ?", userID).Order("granted_at ASC").Find(&out).Error; err != nil {
		return nil, Internal(err)
	}
	return out, nil
}
