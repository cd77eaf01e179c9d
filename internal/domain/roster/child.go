package roster

// Child belongs to at most one class at a time. The guardian responsible for
// a child is always reached through that class.
type Child struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"column:nome;not null" json:"nome"`
	Age         int        `gorm:"column:idade;not null" json:"idade"`
	DiagnosisID *uint      `gorm:"column:diagnostico_id;index" json:"diagnostico_id"`
	ClassID     *uint      `gorm:"column:turma_id;index" json:"turma_id"`
	Diagnosis   *Diagnosis `gorm:"foreignKey:DiagnosisID" json:"diagnostico,omitempty"`
	Class       *Class     `gorm:"foreignKey:ClassID" json:"-"`
}

func (Child) TableName() string { return "criancas" }
