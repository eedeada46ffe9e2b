package model

// Reference data, unique by name. No lifecycle beyond create/delete.

// JobType is a reference record such as "Full-time" or "Internship"
type JobType struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// JobLevel is a reference record such as "Junior" or "Senior"
type JobLevel struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// Skill is a reference record such as "Go" or "PostgreSQL"
type Skill struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
