// Package rbactest builds seeded organizations for tests of packages using rbac.
package rbactest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/univhr/hrcore/internal/db/dbtest"
	"github.com/univhr/hrcore/internal/db/models"
	"github.com/univhr/hrcore/internal/rbac"
)

// Now is the fixed clock of every fixture, a Monday.
var Now = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

// Fixture is a migrated database with the default catalog seeded and a small organization:
// one college with departments A and B, programs A1 and A2 in A and B1 in B.
type Fixture struct {
	T    *testing.T
	Ctx  context.Context
	DB   *gorm.DB
	RBAC *rbac.Service

	Org       models.Organization
	DeptA     models.Department
	DeptB     models.Department
	ProgA1    models.Program
	ProgA2    models.Program
	ProgB1    models.Program
	Positions map[string]models.Position
}

// New creates a Fixture.
func New(t *testing.T, opts ...rbac.Option) *Fixture {
	t.Helper()

	db := dbtest.New(t)
	opts = append([]rbac.Option{rbac.WithClock(func() time.Time { return Now })}, opts...)

	f := &Fixture{
		T:         t,
		Ctx:       context.Background(),
		DB:        db,
		RBAC:      rbac.NewService(db, opts...),
		Positions: map[string]models.Position{},
	}

	_, err := f.RBAC.Seed(f.Ctx)
	require.NoError(t, err)

	f.Org = models.Organization{Name: "College of Engineering"}
	require.NoError(t, db.Create(&f.Org).Error)

	f.DeptA = models.Department{Name: "Computer Science", OrganizationID: f.Org.ID}
	f.DeptB = models.Department{Name: "Civil Engineering", OrganizationID: f.Org.ID}
	require.NoError(t, db.Create(&f.DeptA).Error)
	require.NoError(t, db.Create(&f.DeptB).Error)

	f.ProgA1 = models.Program{Name: "BS Computer Science", DepartmentID: f.DeptA.ID}
	f.ProgA2 = models.Program{Name: "BS Information Technology", DepartmentID: f.DeptA.ID}
	f.ProgB1 = models.Program{Name: "BS Civil Engineering", DepartmentID: f.DeptB.ID}
	require.NoError(t, db.Create(&f.ProgA1).Error)
	require.NoError(t, db.Create(&f.ProgA2).Error)
	require.NoError(t, db.Create(&f.ProgB1).Error)

	for _, rank := range []string{
		models.RankVPAA, models.RankDean, models.RankProgramChair,
		models.RankRegularFaculty, models.RankPartTimeFaculty, models.RankSecretary,
	} {
		p := models.Position{Title: "Academic " + rank, Type: models.PositionAcademic, Rank: rank}
		require.NoError(t, db.Create(&p).Error)
		f.Positions[rank] = p
	}

	admin := models.Position{Title: "Administrative Officer", Type: models.PositionAdministration}
	require.NoError(t, db.Create(&admin).Error)
	f.Positions[""] = admin

	return f
}

// Role returns a seeded role by code.
func (f *Fixture) Role(code string) models.Role {
	f.T.Helper()

	var r models.Role
	require.NoError(f.T, f.DB.Where("code = ?", code).First(&r).Error)

	return r
}

// Permission returns a seeded permission by code.
func (f *Fixture) Permission(code string) models.Permission {
	f.T.Helper()

	var p models.Permission
	require.NoError(f.T, f.DB.Where("code = ?", code).First(&p).Error)

	return p
}

// Employee creates an active employee. dept and prog may be nil, rank "" gives a non academic position.
func (f *Fixture) Employee(code string, dept *models.Department, prog *models.Program, rank string) *models.Employee {
	f.T.Helper()

	pos := f.Positions[rank]
	e := &models.Employee{
		Code:           code,
		FirstName:      code,
		LastName:       "Tester",
		Email:          strings.ToLower(code) + "@example.edu",
		OrganizationID: &f.Org.ID,
		PositionID:     &pos.ID,
		IsActive:       true,
	}

	if dept != nil {
		e.DepartmentID = &dept.ID
	}

	if prog != nil {
		e.ProgramID = &prog.ID
	}

	require.NoError(f.T, f.DB.Create(e).Error)

	return e
}

// Assign gives emp the role with the given code. mods adjust the input before assigning.
func (f *Fixture) Assign(emp *models.Employee, roleCode string, mods ...func(*rbac.AssignmentInput)) *models.EmployeeRole {
	f.T.Helper()

	in := rbac.AssignmentInput{EmployeeID: emp.ID, RoleID: f.Role(roleCode).ID, IsPrimary: true}
	for _, m := range mods {
		m(&in)
	}

	a, err := f.RBAC.Assign(f.Ctx, rbac.Audit{}, in)
	require.NoError(f.T, err)

	return a
}

// Actor resolves emp.
func (f *Fixture) Actor(emp *models.Employee) *rbac.Actor {
	f.T.Helper()

	a, err := f.RBAC.Actor(f.Ctx, emp.ID)
	require.NoError(f.T, err)

	return a
}

// Staff is the org chart created by Fixture.Staff.
type Staff struct {
	HR      *models.Employee // HR_ADMIN, no department
	VPAA    *models.Employee // VPAA
	DeanA   *models.Employee // DEAN of department A
	DeanB   *models.Employee // DEAN of department B
	ChairA1 *models.Employee // PROGRAM_CHAIR of program A1
	ChairA2 *models.Employee // PROGRAM_CHAIR of program A2
	FacA1   *models.Employee // REGULAR_FACULTY in program A1
	FacA2   *models.Employee // REGULAR_FACULTY in program A2
	FacB1   *models.Employee // REGULAR_FACULTY in program B1
}

// Staff creates a typical org chart with roles assigned.
func (f *Fixture) Staff() *Staff {
	f.T.Helper()

	s := &Staff{
		HR:      f.Employee("HR-1", nil, nil, ""),
		VPAA:    f.Employee("VPAA-1", nil, nil, models.RankVPAA),
		DeanA:   f.Employee("DEAN-A", &f.DeptA, nil, models.RankDean),
		DeanB:   f.Employee("DEAN-B", &f.DeptB, nil, models.RankDean),
		ChairA1: f.Employee("PC-A1", &f.DeptA, &f.ProgA1, models.RankProgramChair),
		ChairA2: f.Employee("PC-A2", &f.DeptA, &f.ProgA2, models.RankProgramChair),
		FacA1:   f.Employee("RF-A1", &f.DeptA, &f.ProgA1, models.RankRegularFaculty),
		FacA2:   f.Employee("RF-A2", &f.DeptA, &f.ProgA2, models.RankRegularFaculty),
		FacB1:   f.Employee("RF-B1", &f.DeptB, &f.ProgB1, models.RankRegularFaculty),
	}

	f.Assign(s.HR, "HR_ADMIN")
	f.Assign(s.VPAA, "VPAA")
	f.Assign(s.DeanA, "DEAN")
	f.Assign(s.DeanB, "DEAN")
	f.Assign(s.ChairA1, "PROGRAM_CHAIR")
	f.Assign(s.ChairA2, "PROGRAM_CHAIR")
	f.Assign(s.FacA1, "REGULAR_FACULTY")
	f.Assign(s.FacA2, "REGULAR_FACULTY")
	f.Assign(s.FacB1, "REGULAR_FACULTY")

	return s
}
