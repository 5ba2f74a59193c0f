package models

type Tag struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:32;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:32;not null"`
}

func (Tag) TableName() string {
	return "tags"
}
