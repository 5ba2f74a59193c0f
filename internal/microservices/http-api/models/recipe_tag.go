package models

// explicit join model so the (recipe, tag) pair is the primary key
type RecipeTag struct {
	RecipeID int64 `json:"recipe_id" gorm:"primaryKey"`
	TagID    int64 `json:"tag_id" gorm:"primaryKey;index"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}
