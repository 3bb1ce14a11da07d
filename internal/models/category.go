package models

// Category groups products of one store. A nil StoreID marks a global
// category managed by a superadmin.
type Category struct {
	Base
	Name    string  `json:"name" gorm:"type:varchar(50);not null;uniqueIndex:idx_category_store_name" validate:"required,min=2,max=50,catname"`
	Order   int     `json:"order" gorm:"column:sort_order;not null;default:0"`
	StoreID *string `json:"store_id,omitempty" gorm:"type:varchar(36);uniqueIndex:idx_category_store_name"`
}
