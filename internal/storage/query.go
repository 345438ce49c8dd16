package storage

import (
	"fmt"
	"strings"
)

// SortColumn is an allow-listed employee column usable in ORDER BY.
type SortColumn string

const (
	SortCreatedAt  SortColumn = "created_at"
	SortFirstName  SortColumn = "first_name"
	SortLastName   SortColumn = "last_name"
	SortEmail      SortColumn = "email"
	SortDepartment SortColumn = "department"
	SortPosition   SortColumn = "position"
	SortSalary     SortColumn = "salary"
	SortHireDate   SortColumn = "hire_date"
)

var sortColumns = map[string]SortColumn{
	string(SortCreatedAt):  SortCreatedAt,
	string(SortFirstName):  SortFirstName,
	string(SortLastName):   SortLastName,
	string(SortEmail):      SortEmail,
	string(SortDepartment): SortDepartment,
	string(SortPosition):   SortPosition,
	string(SortSalary):     SortSalary,
	string(SortHireDate):   SortHireDate,
}

// ParseSortColumn accepts only known columns; empty means created_at.
func ParseSortColumn(raw string) (SortColumn, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SortCreatedAt, nil
	}
	col, ok := sortColumns[strings.ToLower(raw)]
	if !ok {
		return "", fmt.Errorf("unsupported sort column %q", raw)
	}
	return col, nil
}

// SortOrder is ASC or DESC.
type SortOrder string

const (
	Ascending  SortOrder = "ASC"
	Descending SortOrder = "DESC"
)

// ParseSortOrder accepts asc/desc in any case; empty means DESC.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "":
		return Descending, nil
	case "ASC":
		return Ascending, nil
	case "DESC":
		return Descending, nil
	default:
		return "", fmt.Errorf("unsupported sort order %q", raw)
	}
}

// EmployeeQuery is a validated listing request. Only the typed fields reach SQL.
type EmployeeQuery struct {
	Search     string
	Department string
	Active     *bool
	SortBy     SortColumn
	Order      SortOrder
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchPattern wraps Search for a LIKE match with '\' as the escape
// character, so wildcards typed by the caller match literally.
func (q EmployeeQuery) SearchPattern() string {
	return "%" + likeEscaper.Replace(q.Search) + "%"
}

// OrderBy renders the ORDER BY clause from allow-listed values only.
func (q EmployeeQuery) OrderBy() string {
	col := q.SortBy
	if _, ok := sortColumns[string(col)]; !ok {
		col = SortCreatedAt
	}
	order := q.Order
	if order != Ascending {
		order = Descending
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", col, order, order)
}
