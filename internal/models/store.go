package models

import (
	"regexp"
	"strings"
	"time"
)

const (
	MaxBanners       = 5
	MaxTelegramLinks = 5
)

// Asset is an uploaded image referenced by a store.
type Asset struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

// StoreSettings are the presentation options of a public menu.
type StoreSettings struct {
	Theme    string `json:"theme" gorm:"type:varchar(10);default:light" validate:"oneof=light dark auto"`
	Language string `json:"language" gorm:"type:varchar(5);default:en" validate:"oneof=en ru uz"`
	Currency string `json:"currency" gorm:"type:varchar(5);default:USD" validate:"oneof=USD EUR RUB UZS"`
}

// DefaultStoreSettings are applied to newly provisioned stores.
func DefaultStoreSettings() StoreSettings {
	return StoreSettings{Theme: "light", Language: "en", Currency: "USD"}
}

// Store is a tenant: one per admin, addressed publicly by slug.
type Store struct {
	Base
	AdminID       string        `json:"admin_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	Name          string        `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=2,max=100"`
	Slug          string        `json:"slug" gorm:"type:varchar(60);uniqueIndex;not null" validate:"required,min=2,max=60,slug"`
	PublicID      string        `json:"-" gorm:"type:varchar(36);uniqueIndex"`
	Phone         string        `json:"phone,omitempty" gorm:"type:varchar(30)" validate:"omitempty,max=30"`
	Address       string        `json:"address,omitempty" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	Description   string        `json:"description,omitempty" gorm:"type:varchar(1000)" validate:"omitempty,max=1000"`
	Website       string        `json:"website,omitempty" gorm:"type:varchar(255)" validate:"omitempty,httpurl"`
	Instagram     string        `json:"instagram,omitempty" gorm:"type:varchar(255)" validate:"omitempty,httpurl,host=instagram"`
	Facebook      string        `json:"facebook,omitempty" gorm:"type:varchar(255)" validate:"omitempty,httpurl,host=facebook"`
	TikTok        string        `json:"tiktok,omitempty" gorm:"type:varchar(255)" validate:"omitempty,httpurl,host=tiktok"`
	Telegram      string        `json:"-" gorm:"type:varchar(255)"` // legacy single link, folded into TelegramLinks
	TelegramLinks []string      `json:"telegram_links" gorm:"serializer:json" validate:"max=5,dive,httpurl,host=telegram"`
	Logo          *Asset        `json:"logo,omitempty" gorm:"serializer:json"`
	Banners       []Asset       `json:"banners" gorm:"serializer:json" validate:"max=5"`
	Wallpaper     string        `json:"wallpaper,omitempty" gorm:"type:varchar(500)"`
	IsActive      bool          `json:"is_active" gorm:"not null"`
	Settings      StoreSettings `json:"settings" gorm:"embedded;embeddedPrefix:settings_"`
	LastActiveAt  *time.Time    `json:"last_active_at,omitempty"`
}

var (
	schemeRe   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// withScheme prefixes a bare host/path with https://.
func withScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || schemeRe.MatchString(raw) {
		return raw
	}
	return "https://" + strings.TrimPrefix(raw, "//")
}

// Normalize canonicalizes user input before validation: trims text, lowercases
// the slug, adds a scheme to bare links and folds the legacy telegram field
// into TelegramLinks. It never repairs an invalid slug.
func (s *Store) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Slug = strings.ToLower(strings.TrimSpace(s.Slug))
	s.Website = withScheme(s.Website)
	s.Instagram = withScheme(s.Instagram)
	s.Facebook = withScheme(s.Facebook)
	s.TikTok = withScheme(s.TikTok)

	links := make([]string, 0, len(s.TelegramLinks)+1)
	seen := make(map[string]bool)
	if legacy := withScheme(s.Telegram); legacy != "" {
		links = append(links, legacy)
		seen[legacy] = true
	}
	for _, l := range s.TelegramLinks {
		l = withScheme(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		links = append(links, l)
	}
	s.TelegramLinks = links
	s.Telegram = ""

	if s.Banners == nil {
		s.Banners = []Asset{}
	}
}

// Slugify derives a candidate slug from a display name. The result may be
// empty when the name has no ASCII letters or digits.
func Slugify(name string) string {
	s := nonSlugRun.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	return s
}
