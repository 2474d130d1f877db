package sqlir

import "fmt"

// StatementKind enumerates the statement forms the rewrite pipeline
// accepts.
type StatementKind int

const (
	StmtSelect StatementKind = iota
	StmtUpdate
	StmtDelete
	StmtInsert
)

func (k StatementKind) String() string {
	switch k {
	case StmtSelect:
		return "SELECT"
	case StmtUpdate:
		return "UPDATE"
	case StmtDelete:
		return "DELETE"
	case StmtInsert:
		return "INSERT"
	default:
		return fmt.Sprintf("StatementKind(%d)", int(k))
	}
}

// JoinType classifies how a FROM spec joins the preceding specs.
type JoinType int

const (
	JoinNone JoinType = iota // first spec, or implicit (comma) join
	JoinInner
	JoinLeftOuter
	JoinRightOuter
)

func (t JoinType) String() string {
	switch t {
	case JoinNone:
		return "NONE"
	case JoinInner:
		return "INNER"
	case JoinLeftOuter:
		return "LEFT OUTER"
	case JoinRightOuter:
		return "RIGHT OUTER"
	default:
		return fmt.Sprintf("JoinType(%d)", int(t))
	}
}

// IsOuter reports whether the join NULL-pads unmatched rows.
func (t JoinType) IsOuter() bool {
	return t == JoinLeftOuter || t == JoinRightOuter
}

// JoinSpec is one FROM-list entry: a base table or a derived table, the
// join that attaches it, and its ON condition. Location doubles as the
// spec's identity; clauses tagged with it belong to this spec's ON
// condition while they travel through the rewrite pipeline.
//
// Lifecycle: created by the binder, mutated in place by the rewrite
// passes (join-type downgrades, ON-condition splicing, replacement by a
// derived table), discarded with the statement.
type JoinSpec struct {
	Location SpecID
	Table    string // base table name; empty for derived tables
	Alias    string
	JoinType JoinType
	On       ClauseList
	Derived  *Statement // non-nil for derived tables
	// DerivedColumns names the projection of a derived table in
	// SelectList order.
	DerivedColumns []string
	// CorrelationLevel is zero for uncorrelated specs; N>0 means the
	// spec references names N query levels up.
	CorrelationLevel int
}

// IsDerived reports whether the spec is a synthesized derived table.
func (s *JoinSpec) IsDerived() bool { return s.Derived != nil }

// OrderItem is one ORDER BY entry.
type OrderItem struct {
	Col  ColRef
	Desc bool
}

// Statement is a compiled statement as handed over by the binder:
// WHERE/HAVING already in CNF, specs with join types and locations
// populated. The rewrite pipeline mutates it in place.
type Statement struct {
	Kind       StatementKind
	Specs      []*JoinSpec
	SelectList []Expr
	Where      ClauseList
	Having     ClauseList
	GroupBy    []ColRef
	OrderBy    []OrderItem

	// ValueRows turns the statement into a single-column constant row
	// source (no specs, no clauses). The OID-equality rewrite
	// synthesizes derived tables of this form from constant OID sets.
	ValueRows []Value

	// OrderedHint pins explicit join order; it disables the
	// explicit-to-implicit join flattening pass.
	OrderedHint bool
	// NoMergeHint disables the subquery-to-join rewrites.
	NoMergeHint bool
}

// Spec returns the FROM spec with the given location, or nil.
func (s *Statement) Spec(loc SpecID) *JoinSpec {
	for _, spec := range s.Specs {
		if spec.Location == loc {
			return spec
		}
	}
	return nil
}

// NextLocation returns the location a newly appended spec should get.
func (s *Statement) NextLocation() SpecID {
	max := SpecID(0)
	for _, spec := range s.Specs {
		if spec.Location > max {
			max = spec.Location
		}
	}
	return max + 1
}

// HasCondition reports whether the statement carries anything the
// rewrite pipeline could act on.
func (s *Statement) HasCondition() bool {
	return len(s.Where) > 0 || len(s.Having) > 0 ||
		len(s.GroupBy) > 0 || len(s.OrderBy) > 0
}
