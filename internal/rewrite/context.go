package rewrite

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/sarge/internal/rangeop"
	"github.com/roach88/sarge/internal/sqlir"
)

// Schema is the slice of catalog the rewrite passes consult. A nil
// Schema disables the passes that need it (NULL folding, OID rewriting,
// partition-key exclusion); everything else still runs.
type Schema interface {
	// ColumnNullable reports whether the column can hold NULL. Unknown
	// columns must report true (the conservative answer).
	ColumnNullable(table, column string) bool
	// IsOIDColumn reports whether the column holds row identity.
	IsOIDColumn(table, column string) bool
	// ColumnDiscrete reports whether the column's domain is
	// integer-valued. Unknown columns must report false: integer
	// adjacency is only sound on a proven discrete domain.
	ColumnDiscrete(table, column string) bool
	// PartitionKey returns the partitioning column of a table, if any.
	PartitionKey(table string) (string, bool)
}

// columnDomain resolves the range-algebra domain of an attribute. No
// catalog, a derived-table column, and an unknown column all resolve
// to continuous: an integer literal bound says nothing about the
// column it constrains.
func columnDomain(ctx *Context, stmt *sqlir.Statement, col *sqlir.ColRef) rangeop.Domain {
	if ctx.Schema == nil || col == nil {
		return rangeop.Continuous
	}
	spec := stmt.Spec(col.Spec)
	if spec == nil || spec.IsDerived() {
		return rangeop.Continuous
	}
	if ctx.Schema.ColumnDiscrete(spec.Table, col.Column) {
		return rangeop.Discrete
	}
	return rangeop.Continuous
}

// PartitionPruner is the external partition-pruning pass, invoked at its
// fixed pipeline position. Implementations report whether pruning was
// applied so the auto-parameterizer can stop protecting partition keys.
type PartitionPruner interface {
	Prune(ctx *Context, stmt *sqlir.Statement) (pruned bool, err error)
}

// NoopPruner is the default pruner for unpartitioned deployments.
type NoopPruner struct{}

// Prune never prunes.
func (NoopPruner) Prune(*Context, *sqlir.Statement) (bool, error) { return false, nil }

// Context is the per-statement compile state threaded through the
// pipeline by exclusive reference. It is owned by one compiling session
// and never shared across statements.
type Context struct {
	// StatementID correlates diagnostics across passes.
	StatementID uuid.UUID

	// HostVarCount is the number of host variables the statement
	// arrived with. Auto-parameters are appended after them.
	HostVarCount int
	// AutoParams accumulates the literal values the auto-parameterizer
	// pulled out, in placeholder order.
	AutoParams []sqlir.Value

	// CannotPrepare marks statements that must not be auto-parameterized
	// (set by the session when the plan is not cacheable).
	CannotPrepare bool
	// PlanCache gates auto-parameterization entirely.
	PlanCache bool
	// PartitionPruned is set once the pruner has run on this statement.
	PartitionPruned bool
	// Disabled skips the whole pipeline.
	Disabled bool

	Schema Schema
	Pruner PartitionPruner

	// Warnings records pass-local failures that degraded to the
	// unrewritten predicate.
	Warnings []string
}

// NewContext builds a compile context with a fresh statement ID and the
// default no-op pruner.
func NewContext() *Context {
	return &Context{
		StatementID: uuid.New(),
		PlanCache:   true,
		Pruner:      NoopPruner{},
	}
}

// Warnf records a degraded-rewrite diagnostic.
func (c *Context) Warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// NextParam appends a value to the auto-parameter array and returns the
// placeholder index it is addressed by.
func (c *Context) NextParam(v sqlir.Value) sqlir.ParamRef {
	idx := c.HostVarCount + len(c.AutoParams)
	c.AutoParams = append(c.AutoParams, v)
	return sqlir.ParamRef(idx)
}

// ErrorCode categorizes rewrite errors.
type ErrorCode string

const (
	// ErrCodeInternal is a structural error, fatal to the current
	// statement compile (e.g. an ON clause whose origin spec is gone).
	ErrCodeInternal ErrorCode = "INTERNAL"

	// ErrCodeUnsupportedCompare marks an endpoint pair the total order
	// is not defined for; the pass degrades, the compile continues.
	ErrCodeUnsupportedCompare ErrorCode = "UNSUPPORTED_COMPARE"

	// ErrCodeBadStatement marks input that violates the binder contract.
	ErrCodeBadStatement ErrorCode = "BAD_STATEMENT"
)

// Error is a rewrite failure with its pass and clause origin attached.
type Error struct {
	Code     ErrorCode
	Pass     string
	Location sqlir.SpecID
	Message  string
}

func (e *Error) Error() string {
	if e.Pass != "" {
		return fmt.Sprintf("%s: %s (pass=%s, location=%d)", e.Code, e.Message, e.Pass, e.Location)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInternal reports whether the error must abort the statement compile.
// Uses errors.As to handle wrapped errors.
func IsInternal(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == ErrCodeInternal
	}
	return false
}

func internalErrorf(pass string, loc sqlir.SpecID, format string, args ...any) *Error {
	return &Error{
		Code:     ErrCodeInternal,
		Pass:     pass,
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
	}
}
