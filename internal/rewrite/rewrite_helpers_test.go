package rewrite

import "github.com/roach88/sarge/internal/sqlir"

// Shared builders for the pass tests.

func col(spec sqlir.SpecID, name string) *sqlir.ColRef {
	return &sqlir.ColRef{Spec: spec, Column: name}
}

func intc(v int64) *sqlir.Const    { return &sqlir.Const{Val: sqlir.Int(v)} }
func strc(s string) *sqlir.Const   { return &sqlir.Const{Val: sqlir.String(s)} }
func cmpOf(op sqlir.CmpOp, l, r sqlir.Expr) *sqlir.Cmp {
	return &sqlir.Cmp{Op: op, Left: l, Right: r}
}

func where(terms ...sqlir.Expr) sqlir.Clause {
	return sqlir.NewClause(sqlir.WhereLocation, terms...)
}

func at(loc sqlir.SpecID, terms ...sqlir.Expr) sqlir.Clause {
	return sqlir.NewClause(loc, terms...)
}

// oneTable builds a single-spec SELECT.
func oneTable(table string) *sqlir.Statement {
	return &sqlir.Statement{
		Kind: sqlir.StmtSelect,
		Specs: []*sqlir.JoinSpec{
			{Location: 1, Table: table, JoinType: sqlir.JoinNone},
		},
	}
}

// twoTables builds a two-spec SELECT with the second spec joined as given.
func twoTables(t1, t2 string, join sqlir.JoinType) *sqlir.Statement {
	return &sqlir.Statement{
		Kind: sqlir.StmtSelect,
		Specs: []*sqlir.JoinSpec{
			{Location: 1, Table: t1, JoinType: sqlir.JoinNone},
			{Location: 2, Table: t2, JoinType: join},
		},
	}
}

// testSchema keys column properties by "table.column".
type testSchema struct {
	notNull   map[string]bool
	oid       map[string]bool
	discrete  map[string]bool
	partition map[string]string
}

func (s *testSchema) ColumnNullable(table, column string) bool {
	return !s.notNull[table+"."+column]
}

func (s *testSchema) IsOIDColumn(table, column string) bool {
	return s.oid[table+"."+column]
}

func (s *testSchema) ColumnDiscrete(table, column string) bool {
	return s.discrete[table+"."+column]
}

func (s *testSchema) PartitionKey(table string) (string, bool) {
	key, ok := s.partition[table]
	return key, ok
}
