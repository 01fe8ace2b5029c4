package models

type Region struct {
	ID   uint   `gorm:"column:id;primaryKey" json:"region_id"`
	Name string `gorm:"column:name;size:100;uniqueIndex;not null" json:"name"`
}

func (Region) TableName() string { return "regions" }
