package database

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

type ConditionType string

const (
	Equal              ConditionType = "="
	NotEqual           ConditionType = "!="
	GreaterThan        ConditionType = ">"
	LessThan           ConditionType = "<"
	LessThanOrEqual    ConditionType = "<="
	GreaterThanOrEqual ConditionType = ">="
)

type Condition struct {
	Field string
	Type  ConditionType
	Value any
}

func WhereCond(field string, condType ConditionType, value any) Condition {
	return Condition{Field: field, Type: condType, Value: value}
}

type ListQueryOptions struct {
	Table      string
	Columns    []string
	Conditions []Condition
	OrderBy    string
	OrderDir   string
}

type ListQueryOption func(*ListQueryOptions)

func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{
		Table:      table,
		Columns:    []string{},
		Conditions: []Condition{},
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Columns = cols
	}
}

// WithCondition adds a single condition.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Conditions = append(o.Conditions, cond)
	}
}

// WithOrderBy sets the ordering column and direction.
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = column
		o.OrderDir = direction
	}
}

// sanitizeIdentifier wraps a single string identifier for sanitization.
func sanitizeIdentifier(ident string) string {
	return pgx.Identifier{ident}.Sanitize()
}

// sanitizeQualifiedIdentifier sanitizes qualified identifiers like "table.column".
func sanitizeQualifiedIdentifier(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

func sanitizeColumns(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = sanitizeQualifiedIdentifier(c)
	}
	return strings.Join(out, ", ")
}

// buildSelectClause generates the SELECT part of the query with sanitized columns.
func buildSelectClause(options *ListQueryOptions) string {
	if len(options.Columns) == 0 {
		return "SELECT * "
	}
	return fmt.Sprintf("SELECT %s ", sanitizeColumns(options.Columns))
}

func buildOrderClause(options *ListQueryOptions) string {
	if options.OrderBy == "" {
		return ""
	}
	var clause strings.Builder
	clause.WriteString(" ORDER BY ")
	clause.WriteString(sanitizeQualifiedIdentifier(options.OrderBy))
	if dir := strings.ToUpper(options.OrderDir); dir == "ASC" || dir == "DESC" {
		clause.WriteString(" ")
		clause.WriteString(dir)
	}
	return clause.String()
}

// BuildListQuery constructs a SQL query string and arguments from options, sanitizing identifiers.
//
// Example usage:
//
//	options := NewListQueryOptions("courses",
//		WithColumns("id", "name"),
//		WithCondition(WhereCond("id", Equal, 7)),
//		WithOrderBy("id", "ASC"),
//	)
//
//	query, args := BuildListQuery(options)
//	// SELECT "id", "name" FROM "courses" WHERE "id" = $1 ORDER BY "id" ASC
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	var query strings.Builder
	query.WriteString(buildSelectClause(options))
	query.WriteString("FROM ")
	query.WriteString(sanitizeIdentifier(options.Table))

	whereClause, args, _ := buildWhereClause(options.Conditions, 1)
	if whereClause != "" {
		query.WriteString(" ")
		query.WriteString(whereClause)
	}
	query.WriteString(buildOrderClause(options))
	return query.String(), args
}

// Assignment is one column = value pair of an UPDATE.
type Assignment struct {
	Column string
	Value  any
}

// UpdateQueryOptions describes a single-table UPDATE ... RETURNING.
type UpdateQueryOptions struct {
	Table      string
	Set        []Assignment
	Conditions []Condition
	Returning  []string
}

// BuildUpdateQuery constructs an UPDATE statement whose SET clause lists only the given assignments,
// in order. It returns an empty query when there is nothing to set.
func BuildUpdateQuery(options *UpdateQueryOptions) (string, []any) {
	if options == nil || len(options.Set) == 0 {
		return "", nil
	}

	var query strings.Builder
	query.WriteString("UPDATE ")
	query.WriteString(sanitizeIdentifier(options.Table))
	query.WriteString(" SET ")

	args := make([]any, 0, len(options.Set)+len(options.Conditions))
	sets := make([]string, len(options.Set))
	for i, a := range options.Set {
		args = append(args, a.Value)
		sets[i] = fmt.Sprintf("%s = $%d", sanitizeIdentifier(a.Column), len(args))
	}
	query.WriteString(strings.Join(sets, ", "))

	whereClause, whereArgs, _ := buildWhereClause(options.Conditions, len(args)+1)
	if whereClause != "" {
		query.WriteString(" ")
		query.WriteString(whereClause)
		args = append(args, whereArgs...)
	}
	if len(options.Returning) > 0 {
		query.WriteString(" RETURNING ")
		query.WriteString(sanitizeColumns(options.Returning))
	}
	return query.String(), args
}

func processCondition(cond Condition, paramCount int) (string, []any, int) {
	if cond.Field == "" {
		return "", nil, paramCount
	}
	switch cond.Type {
	case Equal, NotEqual, GreaterThan, LessThan, LessThanOrEqual, GreaterThanOrEqual:
		return fmt.Sprintf("%s %s $%d", sanitizeQualifiedIdentifier(cond.Field), cond.Type, paramCount),
			[]any{cond.Value}, paramCount + 1
	}
	return "", nil, paramCount
}

// buildWhereClause generates the WHERE part of the query with sanitized fields and manages parameters.
func buildWhereClause(inputConditions []Condition, startParamIndex int) (string, []any, int) {
	conditions := make([]string, 0, len(inputConditions))
	args := []any{}
	paramCount := startParamIndex

	for _, cond := range inputConditions {
		conditionStr, newArgs, nextParamCount := processCondition(cond, paramCount)
		if conditionStr != "" {
			conditions = append(conditions, conditionStr)
			args = append(args, newArgs...)
			paramCount = nextParamCount
		}
	}

	if len(conditions) == 0 {
		return "", args, paramCount
	}
	return "WHERE " + strings.Join(conditions, " AND "), args, paramCount
}
