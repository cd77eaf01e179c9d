package auth

// User is an operator account allowed to call the API.
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"column:nome;not null" json:"nome"`
	Email        string `gorm:"column:email;not null;uniqueIndex:uq_usuarios_email" json:"email"`
	PasswordHash string `gorm:"column:senha_hash;not null" json:"-"`
}

func (User) TableName() string { return "usuarios" }
