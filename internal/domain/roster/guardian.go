package roster

// Guardian is the adult administratively responsible for one or more classes.
type Guardian struct {
	ID      uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string  `gorm:"column:nome;not null" json:"nome"`
	Email   string  `gorm:"column:email;not null;uniqueIndex:uq_responsaveis_email" json:"email"`
	Phone   *string `gorm:"column:telefone" json:"telefone"`
	Classes []Class `gorm:"foreignKey:GuardianID" json:"-"`
}

func (Guardian) TableName() string { return "responsaveis" }

// ClassIDs lists the ids of the preloaded classes.
func (g *Guardian) ClassIDs() []uint {
	out := make([]uint, 0, len(g.Classes))
	for _, c := range g.Classes {
		out = append(out, c.ID)
	}
	return out
}
