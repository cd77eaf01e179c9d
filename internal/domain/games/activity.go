package games

// DefaultDifficulty is assigned to activities created from a mini-game result.
const DefaultDifficulty = 1

// Activity is a mini-game definition. Two activities are the same when title
// and category match exactly; a null title never matches another row.
type Activity struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Category    string  `gorm:"column:categoria;not null;uniqueIndex:uq_atividades_titulo_categoria,priority:2" json:"categoria"`
	Title       *string `gorm:"column:titulo;uniqueIndex:uq_atividades_titulo_categoria,priority:1" json:"titulo"`
	Description *string `gorm:"column:descricao" json:"descricao"`
	Difficulty  int     `gorm:"column:nivel_dificuldade;not null;default:1" json:"nivel_dificuldade"`
}

func (Activity) TableName() string { return "atividades" }
