package domain

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleCMSManager    Role = "cmsmanager"
	RoleSubscriber    Role = "subscriber"
)

// User meta keys.
const (
	MetaFirstName              = "first_name"
	MetaLastName               = "last_name"
	MetaNickname               = "nickname"
	MetaPhoneNumber            = "phone_number"
	MetaResetPasswordKey       = "reset_password_key"
	MetaVerificationKey        = "verification_key"
	MetaVerificationExpireDate = "verification_expire_date"
	MetaProfileID              = "profile_id"
	MetaAvatarID               = "avatar_id"
	MetaAccountVerification    = "account_verification_status"
	MetaSiteLanguage           = "site_language"
)

// UserMetaSchema lists every meta key a user carries.
var UserMetaSchema = NewMetaSchema(
	MetaFirstName,
	MetaLastName,
	MetaNickname,
	MetaPhoneNumber,
	MetaResetPasswordKey,
	MetaVerificationKey,
	MetaVerificationExpireDate,
).
	WithDefault(MetaProfileID, "0").
	WithDefault(MetaAvatarID, "0").
	WithDefault(MetaAccountVerification, "0").
	WithDefault(MetaSiteLanguage, "en")

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	Role         Role
	Meta         Meta
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser returns a user with default metadata.
func NewUser() *User {
	return &User{Role: RoleSubscriber, Meta: UserMetaSchema.New()}
}

func (u *User) FirstName() string { return u.Meta.Get(MetaFirstName) }
func (u *User) LastName() string  { return u.Meta.Get(MetaLastName) }

func (u *User) ProfileID() int64 { return u.metaInt(MetaProfileID) }
func (u *User) AvatarID() int64  { return u.metaInt(MetaAvatarID) }

func (u *User) Verified() bool {
	return u.Meta.Get(MetaAccountVerification) == "1"
}

func (u *User) metaInt(key string) int64 {
	n, _ := strconv.ParseInt(u.Meta.Get(key), 10, 64)
	return n
}

// NormalizeNames capitalizes first and last name and derives the display name.
func (u *User) NormalizeNames() {
	first := capitalize(u.FirstName())
	last := capitalize(u.LastName())
	_ = u.Meta.Set(MetaFirstName, first)
	_ = u.Meta.Set(MetaLastName, last)
	u.DisplayName = strings.TrimSpace(first + " " + last)
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
