package roster

type Diagnosis struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Type        string  `gorm:"column:tipo;not null" json:"tipo"`
	Description *string `gorm:"column:descricao" json:"descricao"`
}

func (Diagnosis) TableName() string { return "diagnosticos" }
