package sqlir

// Expr is the sealed predicate/scalar expression interface. The variant
// set is closed and exhaustively known; passes dispatch on it with type
// switches rather than virtual methods so that a missed case is a
// visible default branch, not silent fallthrough.
//
// Variants:
//   - ColRef: attribute reference (spec location + column name)
//   - Const: typed literal or positional placeholder (ParamRef value)
//   - Cast: type conversion wrapper around another expression
//   - Cmp: binary/unary comparison (=, <, LIKE, IS NULL, IN, =SOME, ...)
//   - Between: fused two-sided comparison with an explicit bound kind
//   - RangeOf: attribute restricted to a list of sub-ranges
//   - Func: function call (aggregates, CASE/COALESCE/NVL family)
//   - Subquery: nested statement used as a comparison operand
//   - BoolLit: literal TRUE/FALSE clause
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// SpecID identifies a FROM spec by its location tag. Zero is never a
// valid spec; it is reserved for the WHERE location.
type SpecID uint16

// ColRef references a column of one FROM spec.
type ColRef struct {
	Spec   SpecID
	Column string
}

func (*ColRef) exprNode() {}

// Const is a typed literal operand. A Const holding a ParamRef value is
// a positional placeholder into the statement's combined
// host-variable/auto-parameter array.
type Const struct {
	Val Value
}

func (*Const) exprNode() {}

// Cast wraps an expression in a type conversion. The equality reducer
// chases through Cast wrappers when substituting constants.
type Cast struct {
	Inner Expr
	Type  string
}

func (*Cast) exprNode() {}

// CmpOp enumerates comparison operators.
type CmpOp int

const (
	OpEQ CmpOp = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
	OpLike
	OpIsNull    // unary: Right is nil
	OpIsNotNull // unary: Right is nil
	OpIn
	OpEqSome
	OpLtSome
	OpLeSome
	OpGtSome
	OpGeSome
)

var cmpOpNames = map[CmpOp]string{
	OpEQ:        "=",
	OpNE:        "<>",
	OpLT:        "<",
	OpLE:        "<=",
	OpGT:        ">",
	OpGE:        ">=",
	OpLike:      "LIKE",
	OpIsNull:    "IS NULL",
	OpIsNotNull: "IS NOT NULL",
	OpIn:        "IN",
	OpEqSome:    "=SOME",
	OpLtSome:    "<SOME",
	OpLeSome:    "<=SOME",
	OpGtSome:    ">SOME",
	OpGeSome:    ">=SOME",
}

// String returns the SQL spelling of the operator.
func (op CmpOp) String() string {
	if s, ok := cmpOpNames[op]; ok {
		return s
	}
	return "<bad op>"
}

// Reverse returns the operator with swapped operand order, so that
// `const OP attr` can be rewritten as `attr Reverse(OP) const`.
// Symmetric operators return themselves.
func (op CmpOp) Reverse() CmpOp {
	switch op {
	case OpLT:
		return OpGT
	case OpLE:
		return OpGE
	case OpGT:
		return OpLT
	case OpGE:
		return OpLE
	default:
		return op
	}
}

// IsSome reports whether the operator is in the quantified (SOME) family.
func (op CmpOp) IsSome() bool {
	switch op {
	case OpEqSome, OpLtSome, OpLeSome, OpGtSome, OpGeSome:
		return true
	}
	return false
}

// SomeBase returns the plain comparison underlying a SOME operator.
func (op CmpOp) SomeBase() CmpOp {
	switch op {
	case OpEqSome:
		return OpEQ
	case OpLtSome:
		return OpLT
	case OpLeSome:
		return OpLE
	case OpGtSome:
		return OpGT
	case OpGeSome:
		return OpGE
	default:
		return op
	}
}

// Cmp is a comparison term. Right is nil for the unary IS [NOT] NULL
// forms. For IN and the SOME family, Right is a Const holding a Set or
// a Subquery.
type Cmp struct {
	Op    CmpOp
	Left  Expr
	Right Expr
}

func (*Cmp) exprNode() {}

// Between is a fused two-sided comparison produced by the comparison
// pairer or the LIKE-prefix rewriter. Kind records the open/closed
// classification of both endpoints.
type Between struct {
	Subject Expr
	Lower   Expr // nil when Kind has an unbounded lower endpoint
	Upper   Expr // nil when Kind has an unbounded upper endpoint
	Kind    BoundKind
}

func (*Between) exprNode() {}

// RangeOf restricts an attribute to an ordered list of sub-ranges. It is
// the canonical form the range converter collapses same-attribute
// comparisons into, and the form the merger and intersector operate on.
type RangeOf struct {
	Subject Expr
	Ranges  Range
}

func (*RangeOf) exprNode() {}

// Func is a function call. Aggregate names (MIN, MAX, COUNT, SUM, AVG)
// and the nullable-producing family (CASE, COALESCE, NVL, NVL2, DECODE)
// are recognized by name in the passes that care.
type Func struct {
	Name string
	Args []Expr
}

func (*Func) exprNode() {}

// Subquery is a nested statement used as a comparison operand.
type Subquery struct {
	Stmt *Statement
}

func (*Subquery) exprNode() {}

// BoolLit is a literal truth-value clause. The range intersector emits
// BoolLit{false} when a location's conjunction is proven unsatisfiable.
type BoolLit struct {
	Val bool
}

func (*BoolLit) exprNode() {}

// aggregateNames are the functions that force a HAVING clause to stay in
// HAVING and whose presence makes a select list non-reducible.
var aggregateNames = map[string]bool{
	"MIN":   true,
	"MAX":   true,
	"COUNT": true,
	"SUM":   true,
	"AVG":   true,
}

// nullableProducers are the functions that can manufacture a non-NULL
// value out of a NULL-padded row; their presence blocks outer-join
// demotion.
var nullableProducers = map[string]bool{
	"CASE":     true,
	"COALESCE": true,
	"NVL":      true,
	"NVL2":     true,
	"DECODE":   true,
}

// IsAggregate reports whether the function name is an aggregate.
func IsAggregate(name string) bool { return aggregateNames[name] }

// IsNullableProducer reports whether the function can produce a non-NULL
// result from NULL inputs.
func IsNullableProducer(name string) bool { return nullableProducers[name] }
