package models

import "time"

// Category ürün kategorisi. Code, barkoddaki 2 haneli kategori kodudur;
// oluşturulurken bir kez atanır ve sonradan değişmez.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Code      *string   `gorm:"size:2;uniqueIndex" json:"code"`
	SortOrder int       `gorm:"not null;default:0" json:"sortOrder"`
	Color     string    `gorm:"size:20" json:"color"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Category) TableName() string { return "Categories" }

func (c *Category) CodeValue() string {
	if c.Code == nil {
		return ""
	}
	return *c.Code
}
