package models

import "time"

// Todo is a single to-do item. SNo and DateCreated are assigned by the
// store at insert time and never change afterwards.
type Todo struct {
	SNo         uint      `gorm:"column:sno;primaryKey;autoIncrement"`
	Title       string    `gorm:"size:200;not null"`
	Desc        string    `gorm:"column:desc;size:500;not null"`
	DateCreated time.Time `gorm:"not null;index"`
}

// TableName returns the table name for the Todo model.
func (Todo) TableName() string {
	return "todo"
}
