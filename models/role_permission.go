package models

// Permission rows mirror the rbac enumeration. Section permissions use the
// "section" category and carry the section name; entity permissions leave it
// empty, so (category, action, section) is unique across both kinds.
type Permission struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Codename    string `gorm:"size:100;not null;uniqueIndex" json:"codename"`
	Name        string `gorm:"size:255" json:"name"`
	Description string `gorm:"size:255" json:"description,omitempty"`
	Category    string `gorm:"size:50;not null;uniqueIndex:idx_permission_scope" json:"category"`
	Action      string `gorm:"size:20;not null;uniqueIndex:idx_permission_scope" json:"action"`
	Section     string `gorm:"size:50;not null;default:'';uniqueIndex:idx_permission_scope" json:"section,omitempty"`
}
