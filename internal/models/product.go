package models

// Product is a menu item. Price is free-form text shown verbatim ("$5 / $8").
// A nil StoreID marks a global product managed by a superadmin.
type Product struct {
	Base
	Title       string  `json:"title" gorm:"type:varchar(100);not null" validate:"required,min=1,max=100"`
	Description string  `json:"description" gorm:"type:varchar(1000)" validate:"omitempty,max=1000"`
	Price       string  `json:"price" gorm:"type:varchar(50)" validate:"omitempty,max=50"`
	Image       string  `json:"image,omitempty" gorm:"type:varchar(500)"`
	ImageID     string  `json:"-" gorm:"type:varchar(255)"`
	ImageURL    string  `json:"image_url,omitempty" gorm:"type:varchar(500)" validate:"omitempty,httpurl"`
	IsAvailable bool    `json:"is_available" gorm:"not null"`
	Order       int     `json:"order" gorm:"column:sort_order;not null;default:0"`
	StoreID     *string `json:"store_id,omitempty" gorm:"type:varchar(36);index"`
	CategoryID  string  `json:"category_id" gorm:"type:varchar(36);index;not null" validate:"required"`
}

// DisplayImage returns the uploaded image, falling back to the external URL.
func (p *Product) DisplayImage() string {
	if p.Image != "" {
		return p.Image
	}
	return p.ImageURL
}
