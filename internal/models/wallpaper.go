package models

// MaxWallpapersPerUploader bounds how many wallpapers one superadmin may own.
const MaxWallpapersPerUploader = 3

// Wallpaper is a shared background image uploaded by a superadmin.
type Wallpaper struct {
	Base
	Name       string `json:"name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	URL        string `json:"url" gorm:"type:varchar(500);not null"`
	AssetID    string `json:"-" gorm:"type:varchar(255);not null"`
	UploadedBy string `json:"uploaded_by" gorm:"type:varchar(36);index;not null"`
}
