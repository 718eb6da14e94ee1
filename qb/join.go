package qb

import "strings"

type JoinType string

const (
	LeftJoin  JoinType = "LEFT"
	InnerJoin JoinType = "INNER"
	RightJoin JoinType = "RIGHT"
)

// Join renders as "<TYPE> JOIN <Table> ON <Left> <Op> <Right>".
type Join struct {
	Type  JoinType
	Table string
	Left  string
	Op    string
	Right string
}

func (j Join) String() string {
	typ := strings.ToUpper(string(j.Type))
	if typ == "" {
		typ = string(LeftJoin)
	}

	op := j.Op
	if op == "" {
		op = "="
	}

	var sb strings.Builder

	sb.WriteString(typ)
	sb.WriteString(" JOIN ")
	sb.WriteString(j.Table)
	sb.WriteString(" ON ")
	sb.WriteString(j.Left)
	sb.WriteString(" ")
	sb.WriteString(op)
	sb.WriteString(" ")
	sb.WriteString(j.Right)

	return sb.String()
}
