package models

import "time"

// Organization is the top level unit, typically a college.
type Organization struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:200;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Organization model.
func (Organization) TableName() string {
	return "organizations"
}

// Department belongs to exactly one organization.
type Department struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	Name           string        `gorm:"size:200;not null;uniqueIndex:idx_department_org_name" json:"name"`
	OrganizationID uint          `gorm:"not null;uniqueIndex:idx_department_org_name" json:"organization_id"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"organization,omitempty"`
	Description    string        `gorm:"type:text" json:"description"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TableName specifies the database table name for the Department model.
func (Department) TableName() string {
	return "departments"
}

// Program belongs to exactly one department.
type Program struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"size:200;not null;uniqueIndex:idx_program_department_name" json:"name"`
	DepartmentID uint        `gorm:"not null;uniqueIndex:idx_program_department_name" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE" json:"department,omitempty"`
	Description  string      `gorm:"type:text" json:"description"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName specifies the database table name for the Program model.
func (Program) TableName() string {
	return "programs"
}

// PositionType distinguishes academic from administrative positions.
type PositionType string

// Position types.
const (
	PositionAcademic       PositionType = "Academic"
	PositionAdministration PositionType = "Administration"
)

// Academic ranks of the legacy position hierarchy.
const (
	RankVPAA            = "VPAA"
	RankDean            = "DEAN"
	RankProgramChair    = "PC"
	RankRegularFaculty  = "RF"
	RankPartTimeFaculty = "PTF"
	RankSecretary       = "SEC"
)

// legacyRankLevel maps an academic rank to its hierarchy level.
var legacyRankLevel = map[string]int{ //nolint:gochecknoglobals
	RankVPAA:            LevelExecutive,
	RankDean:            LevelDean,
	RankProgramChair:    LevelProgramChair,
	RankRegularFaculty:  LevelSeniorStaff,
	RankPartTimeFaculty: LevelStaff,
	RankSecretary:       LevelBasic,
}

// Position is a job title with an optional academic rank.
type Position struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Title     string       `gorm:"uniqueIndex;size:200;not null" json:"title"`
	Type      PositionType `gorm:"size:20;not null" json:"type"`
	Rank      string       `gorm:"size:10" json:"rank,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TableName specifies the database table name for the Position model.
func (Position) TableName() string {
	return "positions"
}

// Level returns the hierarchy level implied by the position's rank.
// Non-academic positions and unknown ranks rank below every academic one.
func (p *Position) Level() int {
	if p == nil || p.Type != PositionAcademic {
		return LevelUnranked
	}

	if level, ok := legacyRankLevel[p.Rank]; ok {
		return level
	}

	return LevelUnranked
}
