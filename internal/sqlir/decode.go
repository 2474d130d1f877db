package sqlir

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// The YAML statement format stands in for the binder in the CLI and in
// tests: it is a literal serialization of the IR, not a SQL dialect.
// Column references are written as "tN.column" where N is the spec
// location (t0 is never valid). A clause is either a single expression
// node or an explicit OR-group:
//
//	where:
//	  - cmp: {op: ">=", left: {col: t1.salary}, right: {value: 1000}}
//	  - or:
//	      - cmp: {op: "=", left: {col: t1.dept}, right: {value: 10}}
//	      - cmp: {op: "=", left: {col: t1.dept}, right: {value: 20}}
//
// ON conditions are listed under their spec and receive that spec's
// location automatically.

type stmtDoc struct {
	Kind        string      `yaml:"kind"`
	Specs       []specDoc   `yaml:"specs"`
	Select      []exprDoc   `yaml:"select"`
	Where       []clauseDoc `yaml:"where"`
	Having      []clauseDoc `yaml:"having"`
	GroupBy     []string    `yaml:"group_by"`
	OrderBy     []orderDoc  `yaml:"order_by"`
	OrderedHint bool        `yaml:"ordered_hint"`
	NoMergeHint bool        `yaml:"no_merge_hint"`
}

type specDoc struct {
	Table      string      `yaml:"table"`
	Alias      string      `yaml:"alias"`
	Join       string      `yaml:"join"`
	On         []clauseDoc `yaml:"on"`
	Correlated int         `yaml:"correlated"`
	Derived    *stmtDoc    `yaml:"derived"`
	Columns    []string    `yaml:"columns"`
}

type orderDoc struct {
	Col  string `yaml:"col"`
	Desc bool   `yaml:"desc"`
}

// clauseDoc is either an inline expression (single term) or an explicit
// OR-group under the "or" key.
type clauseDoc struct {
	Or   []exprDoc `yaml:"or"`
	expr exprDoc
}

func (c *clauseDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain clauseDoc
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	if len(p.Or) > 0 {
		c.Or = p.Or
		return nil
	}
	return node.Decode(&c.expr)
}

type exprDoc struct {
	Col      string     `yaml:"col"`
	Value    yaml.Node  `yaml:"value"`
	Param    *int       `yaml:"param"`
	Cast     *castDoc   `yaml:"cast"`
	Cmp      *cmpDoc    `yaml:"cmp"`
	Func     *funcDoc   `yaml:"func"`
	Subquery *stmtDoc   `yaml:"subquery"`
	Bool     *bool      `yaml:"bool"`
}

type castDoc struct {
	Type string  `yaml:"type"`
	Of   exprDoc `yaml:"of"`
}

type cmpDoc struct {
	Op    string   `yaml:"op"`
	Left  exprDoc  `yaml:"left"`
	Right *exprDoc `yaml:"right"`
}

type funcDoc struct {
	Name string    `yaml:"name"`
	Args []exprDoc `yaml:"args"`
}

// DecodeStatement parses the YAML statement format.
func DecodeStatement(data []byte) (*Statement, error) {
	var doc stmtDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse statement: %w", err)
	}
	return buildStatement(&doc)
}

var stmtKinds = map[string]StatementKind{
	"select": StmtSelect,
	"update": StmtUpdate,
	"delete": StmtDelete,
	"insert": StmtInsert,
}

var joinTypes = map[string]JoinType{
	"":            JoinNone,
	"none":        JoinNone,
	"inner":       JoinInner,
	"left_outer":  JoinLeftOuter,
	"right_outer": JoinRightOuter,
}

var cmpOps = map[string]CmpOp{
	"=":           OpEQ,
	"<>":          OpNE,
	"!=":          OpNE,
	"<":           OpLT,
	"<=":          OpLE,
	">":           OpGT,
	">=":          OpGE,
	"like":        OpLike,
	"is_null":     OpIsNull,
	"is_not_null": OpIsNotNull,
	"in":          OpIn,
	"=some":       OpEqSome,
	"<some":       OpLtSome,
	"<=some":      OpLeSome,
	">some":       OpGtSome,
	">=some":      OpGeSome,
}

func buildStatement(doc *stmtDoc) (*Statement, error) {
	kind, ok := stmtKinds[strings.ToLower(doc.Kind)]
	if !ok {
		return nil, fmt.Errorf("unknown statement kind %q", doc.Kind)
	}
	stmt := &Statement{
		Kind:        kind,
		OrderedHint: doc.OrderedHint,
		NoMergeHint: doc.NoMergeHint,
	}
	for i, sd := range doc.Specs {
		jt, ok := joinTypes[strings.ToLower(sd.Join)]
		if !ok {
			return nil, fmt.Errorf("spec %d: unknown join type %q", i+1, sd.Join)
		}
		spec := &JoinSpec{
			Location:         SpecID(i + 1),
			Table:            sd.Table,
			Alias:            sd.Alias,
			JoinType:         jt,
			CorrelationLevel: sd.Correlated,
			DerivedColumns:   sd.Columns,
		}
		if sd.Derived != nil {
			derived, err := buildStatement(sd.Derived)
			if err != nil {
				return nil, fmt.Errorf("spec %d derived: %w", i+1, err)
			}
			spec.Derived = derived
		}
		on, err := buildClauses(sd.On, spec.Location)
		if err != nil {
			return nil, fmt.Errorf("spec %d on: %w", i+1, err)
		}
		spec.On = on
		stmt.Specs = append(stmt.Specs, spec)
	}
	var err error
	if stmt.Where, err = buildClauses(doc.Where, WhereLocation); err != nil {
		return nil, fmt.Errorf("where: %w", err)
	}
	if stmt.Having, err = buildClauses(doc.Having, WhereLocation); err != nil {
		return nil, fmt.Errorf("having: %w", err)
	}
	for _, ed := range doc.Select {
		e, err := buildExpr(&ed)
		if err != nil {
			return nil, fmt.Errorf("select: %w", err)
		}
		stmt.SelectList = append(stmt.SelectList, e)
	}
	for _, g := range doc.GroupBy {
		col, err := parseColRef(g)
		if err != nil {
			return nil, fmt.Errorf("group_by: %w", err)
		}
		stmt.GroupBy = append(stmt.GroupBy, *col)
	}
	for _, od := range doc.OrderBy {
		col, err := parseColRef(od.Col)
		if err != nil {
			return nil, fmt.Errorf("order_by: %w", err)
		}
		stmt.OrderBy = append(stmt.OrderBy, OrderItem{Col: *col, Desc: od.Desc})
	}
	return stmt, nil
}

func buildClauses(docs []clauseDoc, loc SpecID) (ClauseList, error) {
	var out ClauseList
	for i, cd := range docs {
		terms := cd.Or
		if len(terms) == 0 {
			terms = []exprDoc{cd.expr}
		}
		clause := Clause{Location: loc}
		for _, td := range terms {
			e, err := buildExpr(&td)
			if err != nil {
				return nil, fmt.Errorf("clause %d: %w", i, err)
			}
			clause.Terms = append(clause.Terms, e)
		}
		out = append(out, clause)
	}
	return out, nil
}

func buildExpr(doc *exprDoc) (Expr, error) {
	switch {
	case doc.Col != "":
		return parseColRef(doc.Col)
	case doc.Value.Kind != 0:
		v, err := decodeValue(&doc.Value)
		if err != nil {
			return nil, err
		}
		return &Const{Val: v}, nil
	case doc.Param != nil:
		return &Const{Val: ParamRef(*doc.Param)}, nil
	case doc.Cast != nil:
		inner, err := buildExpr(&doc.Cast.Of)
		if err != nil {
			return nil, err
		}
		return &Cast{Inner: inner, Type: doc.Cast.Type}, nil
	case doc.Cmp != nil:
		op, ok := cmpOps[strings.ToLower(doc.Cmp.Op)]
		if !ok {
			return nil, fmt.Errorf("unknown comparison operator %q", doc.Cmp.Op)
		}
		left, err := buildExpr(&doc.Cmp.Left)
		if err != nil {
			return nil, err
		}
		cmp := &Cmp{Op: op, Left: left}
		if doc.Cmp.Right != nil {
			if cmp.Right, err = buildExpr(doc.Cmp.Right); err != nil {
				return nil, err
			}
		} else if op != OpIsNull && op != OpIsNotNull {
			return nil, fmt.Errorf("operator %q requires a right operand", doc.Cmp.Op)
		}
		return cmp, nil
	case doc.Func != nil:
		f := &Func{Name: strings.ToUpper(doc.Func.Name)}
		for _, ad := range doc.Func.Args {
			a, err := buildExpr(&ad)
			if err != nil {
				return nil, err
			}
			f.Args = append(f.Args, a)
		}
		return f, nil
	case doc.Subquery != nil:
		stmt, err := buildStatement(doc.Subquery)
		if err != nil {
			return nil, err
		}
		return &Subquery{Stmt: stmt}, nil
	case doc.Bool != nil:
		return &BoolLit{Val: *doc.Bool}, nil
	default:
		return nil, fmt.Errorf("empty expression node")
	}
}

func parseColRef(s string) (*ColRef, error) {
	dot := strings.IndexByte(s, '.')
	if dot < 2 || s[0] != 't' {
		return nil, fmt.Errorf("column reference %q: want tN.column", s)
	}
	n, err := strconv.Atoi(s[1:dot])
	if err != nil || n < 1 {
		return nil, fmt.Errorf("column reference %q: bad spec number", s)
	}
	return &ColRef{Spec: SpecID(n), Column: s[dot+1:]}, nil
}

// decodeValue converts a YAML scalar or sequence into a Value.
// Unquoted integers decode as Int, decimals as Float; sequences become
// Set values for IN lists.
func decodeValue(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		set := make(Set, 0, len(node.Content))
		for _, elem := range node.Content {
			v, err := decodeValue(elem)
			if err != nil {
				return nil, err
			}
			set = append(set, v)
		}
		return set, nil
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!null":
			return Null{}, nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return nil, err
			}
			return Bool(b), nil
		case "!!int":
			var n int64
			if err := node.Decode(&n); err != nil {
				return nil, err
			}
			return Int(n), nil
		case "!!float":
			var f float64
			if err := node.Decode(&f); err != nil {
				return nil, err
			}
			return Float(f), nil
		case "!!str":
			return String(node.Value), nil
		}
	}
	return nil, fmt.Errorf("unsupported literal at line %d", node.Line)
}
