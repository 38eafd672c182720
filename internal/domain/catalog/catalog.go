package catalog

import "errors"

var (
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrTagNotFound        = errors.New("tag not found")
)

// Ingredient is a reference-book entry. The same name may appear with
// several measurement units ("sugar, g" and "sugar, tbsp" are two rows),
// so uniqueness is on the (name, unit) pair.
type Ingredient struct {
	ID              int64  `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"size:200;not null;index;uniqueIndex:idx_ingredient_name_unit"`
	MeasurementUnit string `json:"measurement_unit" gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit"`
}

func (Ingredient) TableName() string { return "ingredients" }

// Tag is a shared label recipes are filtered by. Slug is the stable
// identifier used in query strings; color is a hex value for the frontend.
type Tag struct {
	ID    int64  `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"size:200;not null"`
	Color string `json:"color" gorm:"size:7;not null"`
	Slug  string `json:"slug" gorm:"size:200;not null;uniqueIndex"`
}

func (Tag) TableName() string { return "tags" }
