package domain

import (
	"errors"
	"time"
)

var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	RoleSuperuser Role = "superuser"
)

func (r Role) rank() int {
	switch r {
	case RoleModerator:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperuser:
		return 3
	}
	return 0
}

// Allows reports whether r carries at least the capabilities of required.
func (r Role) Allows(required Role) bool {
	return r.rank() > 0 && r.rank() >= required.rank()
}

func (r Role) Label() string {
	switch r {
	case RoleModerator:
		return "Moderator"
	case RoleAdmin:
		return "Administrator"
	case RoleSuperuser:
		return "Super Admin"
	}
	return string(r)
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if r.rank() == 0 {
		return "", ErrInvalidRole
	}
	return r, nil
}

type AdminUser struct {
	ID          int        `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"is_superuser"`
	Role        Role       `json:"role,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// EffectiveRole resolves users whose role field is missing.
func (u *AdminUser) EffectiveRole() Role {
	if u == nil {
		return ""
	}
	if u.Role.rank() > 0 {
		return u.Role
	}
	if u.IsSuperuser {
		return RoleSuperuser
	}
	return RoleModerator
}

func (u *AdminUser) Can(s Section) bool {
	return u.EffectiveRole().Allows(s.RequiredRole())
}

// Section is one area of the admin dashboard.
type Section string

const (
	SectionModeration      Section = "moderation"
	SectionReviews         Section = "reviews"
	SectionComments        Section = "comments"
	SectionImportExport    Section = "import-export"
	SectionAdminManagement Section = "admin-management"
	SectionSecurity        Section = "security"
)

var Sections = []Section{
	SectionModeration,
	SectionReviews,
	SectionComments,
	SectionImportExport,
	SectionAdminManagement,
	SectionSecurity,
}

func (s Section) RequiredRole() Role {
	switch s {
	case SectionAdminManagement:
		return RoleAdmin
	case SectionSecurity:
		return RoleSuperuser
	}
	return RoleModerator
}

func (s Section) Label() string {
	switch s {
	case SectionModeration:
		return "Moderation"
	case SectionReviews:
		return "All reviews"
	case SectionComments:
		return "Comments"
	case SectionImportExport:
		return "Import/Export"
	case SectionAdminManagement:
		return "Admin management"
	case SectionSecurity:
		return "Security"
	}
	return string(s)
}

// VisibleSections returns the sections u may open, in display order.
func VisibleSections(u *AdminUser) []Section {
	var out []Section
	for _, s := range Sections {
		if u.Can(s) {
			out = append(out, s)
		}
	}
	return out
}

type AdminUserList struct {
	Users      []AdminUser `json:"users"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	TotalPages int         `json:"total_pages"`
}

type AdminUserCreate struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,oneof=moderator admin superuser"`
}

type AdminUserUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type PasswordChange struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,nefield=OldPassword"`
}

type LoginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

type Message struct {
	Message string `json:"message"`
}
