package domain

import "time"

// StaffType is the role tag assigned to a staff account.
type StaffType struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:20;uniqueIndex" json:"name" form:"name"`
	Remark    string    `json:"remark" form:"remark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StaffType) TableName() string {
	return "staff_type"
}

type Staff struct {
	ID        int64     `json:"id,string" form:"id"`
	TypeID    int64     `gorm:"index" json:"type_id" form:"type_id"`
	Type      StaffType `gorm:"foreignKey:TypeID" json:"type"`
	Username  string    `gorm:"size:50;uniqueIndex" json:"username" form:"username"`
	Password  string    `json:"-" form:"password"`
	Realname  string    `json:"realname" form:"realname"`
	Email     string    `json:"email" form:"email"`
	Mobile    string    `json:"mobile" form:"mobile"`
	IsAdmin   bool      `json:"is_admin" form:"is_admin"`
	Status    string    `gorm:"size:16" json:"status" form:"status"`
	Remark    string    `json:"remark" form:"remark"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Staff) TableName() string {
	return "staff"
}
