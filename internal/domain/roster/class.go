package roster

// Class groups children under an optional guardian.
type Class struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"column:nome;not null" json:"nome"`
	GuardianID *uint     `gorm:"column:responsavel_id;index" json:"responsavel_id"`
	Guardian   *Guardian `gorm:"foreignKey:GuardianID" json:"-"`
}

func (Class) TableName() string { return "turmas" }
