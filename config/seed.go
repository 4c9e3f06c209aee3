package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"myhotel/models"
	"myhotel/rbac"
	"myhotel/services"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed seed.yaml
var defaultSeed []byte

type SeedRole struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Permissions []string `yaml:"permissions"`
}

type SeedAmenity struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type SeedRoomType struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	BasePrice   float64  `yaml:"base_price"`
	Capacity    int      `yaml:"capacity"`
	Amenities   []string `yaml:"amenities"`
	Rooms       []string `yaml:"rooms"`
}

type SeedData struct {
	Roles     []SeedRole     `yaml:"roles"`
	Amenities []SeedAmenity  `yaml:"amenities"`
	RoomTypes []SeedRoomType `yaml:"room_types"`
}

func ParseSeed(raw []byte) (SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("parse seed: %w", err)
	}
	return data, nil
}

func DefaultSeed() (SeedData, error) {
	return ParseSeed(defaultSeed)
}

// ExpandPermissions resolves "*_<category>", "<action>_*" and "access_*"
// patterns against the rbac enumeration. Plain codenames must parse.
func ExpandPermissions(patterns []string) ([]string, error) {
	set := map[string]struct{}{}
	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		switch {
		case pattern == "access_*":
			for _, s := range rbac.Sections {
				set[rbac.SectionAccess(s).Codename()] = struct{}{}
			}
		case strings.HasPrefix(pattern, "*_"):
			c := rbac.Category(strings.TrimPrefix(pattern, "*_"))
			if !c.Valid() {
				return nil, fmt.Errorf("unknown category in %q", pattern)
			}
			for _, a := range rbac.Actions {
				set[rbac.Perm(c, a).Codename()] = struct{}{}
			}
		case strings.HasSuffix(pattern, "_*"):
			a := rbac.Action(strings.TrimSuffix(pattern, "_*"))
			if !a.Valid() {
				return nil, fmt.Errorf("unknown action in %q", pattern)
			}
			for _, c := range rbac.Categories {
				set[rbac.Perm(c, a).Codename()] = struct{}{}
			}
		default:
			p, err := rbac.Parse(pattern)
			if err != nil {
				return nil, err
			}
			set[p.Codename()] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// Seed syncs the permission table, ensures default roles and the initial
// superuser, and creates starter inventory on an empty database.
func Seed(ctx context.Context, db *gorm.DB, data SeedData, admin AdminConfig, log *zap.Logger) error {
	perms := services.NewPermissionService(db, log)
	if err := perms.SyncPermissions(ctx); err != nil {
		return fmt.Errorf("sync permissions: %w", err)
	}

	for _, sr := range data.Roles {
		codenames, err := ExpandPermissions(sr.Permissions)
		if err != nil {
			return fmt.Errorf("role %s: %w", sr.Name, err)
		}
		var existing models.Role
		err = db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(sr.Name)).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if _, err := perms.CreateRole(ctx, services.RoleInput{
			Name:        sr.Name,
			Description: sr.Description,
			Permissions: codenames,
		}); err != nil {
			return fmt.Errorf("create role %s: %w", sr.Name, err)
		}
		log.Info("role seeded", zap.String("role", sr.Name), zap.Int("permissions", len(codenames)))
	}

	var userCount int64
	if err := db.WithContext(ctx).Unscoped().Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		users := services.NewUserService(db, nil, log)
		superuser := true
		if _, err := users.Create(ctx, nil, services.UserInput{
			FullName:    admin.FullName,
			Username:    admin.Username,
			Password:    admin.Password,
			IsSuperuser: &superuser,
		}); err != nil {
			return fmt.Errorf("create default admin: %w", err)
		}
		log.Info("default admin seeded", zap.String("username", admin.Username))
	}

	var rtCount int64
	if err := db.WithContext(ctx).Unscoped().Model(&models.RoomType{}).Count(&rtCount).Error; err != nil {
		return err
	}
	if rtCount > 0 {
		return nil
	}
	inventory := services.NewInventoryService(db, nil, log)
	amenityIDs := map[string]uint{}
	for _, a := range data.Amenities {
		created, err := inventory.CreateRoomAmenity(ctx, services.AmenityInput{Name: a.Name, Description: a.Description})
		if err != nil {
			return fmt.Errorf("seed amenity %s: %w", a.Name, err)
		}
		amenityIDs[a.Name] = created.ID
	}
	for _, rt := range data.RoomTypes {
		ids := make([]uint, 0, len(rt.Amenities))
		for _, name := range rt.Amenities {
			id, ok := amenityIDs[name]
			if !ok {
				return fmt.Errorf("room type %s: unknown amenity %q", rt.Name, name)
			}
			ids = append(ids, id)
		}
		created, err := inventory.CreateRoomType(ctx, services.RoomTypeInput{
			Name:        rt.Name,
			Description: rt.Description,
			BasePrice:   rt.BasePrice,
			Capacity:    rt.Capacity,
			AmenityIDs:  ids,
		})
		if err != nil {
			return fmt.Errorf("seed room type %s: %w", rt.Name, err)
		}
		for _, number := range rt.Rooms {
			if _, err := inventory.CreateRoom(ctx, services.RoomInput{RoomNumber: number, RoomTypeID: created.ID}); err != nil {
				return fmt.Errorf("seed room %s: %w", number, err)
			}
		}
	}
	log.Info("inventory seeded", zap.Int("room_types", len(data.RoomTypes)))
	return nil
}
