package domain

import "time"

// Severity levels, lowest to highest.
const (
	SeverityLow      = "bassa"
	SeverityMedium   = "media"
	SeverityHigh     = "alta"
	SeverityCritical = "critica"
)

// Repair difficulty levels.
const (
	DifficultyEasy   = "facile"
	DifficultyMedium = "media"
	DifficultyHard   = "difficile"
	DifficultyExpert = "esperto"
)

// SeverityRank orders severities for sorting; unknown values sink to 0.
func SeverityRank(severity string) int {
	switch severity {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

func ValidSeverity(severity string) bool {
	return SeverityRank(severity) > 0
}

func DifficultyRank(difficulty string) int {
	switch difficulty {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	case DifficultyExpert:
		return 4
	default:
		return 0
	}
}

func ValidDifficulty(difficulty string) bool {
	return DifficultyRank(difficulty) > 0
}

// Malfunction is a recorded product defect with its solution. The
// report count only grows: technicians confirming a recurrence bump it
// together with the last-reported date.
type Malfunction struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	ProductID        int64     `json:"product_id" gorm:"not null;index"`
	Title            string    `json:"title" gorm:"type:text;not null"`
	Description      string    `json:"description" gorm:"type:text"`
	Severity         string    `json:"severity" gorm:"type:text;not null;index"`
	Solution         string    `json:"solution" gorm:"type:text"`
	Difficulty       string    `json:"difficulty" gorm:"type:text;not null;default:media"`
	ToolsNeeded      *string   `json:"tools_needed,omitempty" gorm:"type:text"`
	EstimatedMinutes *int      `json:"estimated_minutes,omitempty"`
	ReportCount      int       `json:"report_count" gorm:"not null;default:1"`
	FirstReportedAt  time.Time `json:"first_reported_at" gorm:"not null"`
	LastReportedAt   time.Time `json:"last_reported_at" gorm:"not null"`
	CreatedBy        int64     `json:"created_by" gorm:"not null"`
	ModifiedBy       *int64    `json:"modified_by,omitempty"`
	CreatedAt        time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"not null"`
}

func (Malfunction) TableName() string { return "malfunctions" }
