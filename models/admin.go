package models

type Admin struct {
	ID           uint   `gorm:"column:id;primaryKey" json:"admin_id"`
	Username     string `gorm:"column:username;size:50;uniqueIndex;not null" json:"username"`
	Email        string `gorm:"column:email;size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`
}

func (Admin) TableName() string { return "admins" }
