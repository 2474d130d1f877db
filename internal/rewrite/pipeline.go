package rewrite

import "github.com/roach88/sarge/internal/sqlir"

// A pass transforms the gathered clause list, and may mutate the
// statement (specs, select list, ORDER BY) alongside it.
type passFunc func(*Context, *sqlir.Statement, sqlir.ClauseList) (sqlir.ClauseList, error)

type pass struct {
	name string
	run  passFunc
}

// passes is the fixed pipeline. The order matters: equality reduction
// feeds the canonicalizer, canonical shapes feed the pairer, paired
// BETWEENs feed the range converter, and auto-parameterization comes
// last so every earlier pass sees concrete values.
var passes = []pass{
	{"having-move", moveHavingClauses},
	{"equality-reduce", reduceEqualityTerms},
	{"sarg-canon", canonicalizeSargs},
	{"pair", pairComparisons},
	{"like-prefix", rewriteLikePrefixes},
	{"range-convert", convertRanges},
	{"range-intersect", intersectRanges},
	{"null-fold", foldTrivialNullTests},
	{"join-demote", demoteOuterJoins},
	{"join-flatten", flattenInnerJoins},
	{"subquery-merge", rewriteSubqueries},
	{"oid-rewrite", rewriteOIDEqualities},
	{"orderby-reduce", reduceOrderBy},
	{"partition-prune", runPruner},
	{"auto-param", autoParameterize},
}

func runPruner(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
	pruned, err := ctx.Pruner.Prune(ctx, stmt)
	if err != nil {
		return list, err
	}
	if pruned {
		ctx.PartitionPruned = true
	}
	return list, nil
}

// Rewrite runs the full pipeline over one statement in place.
//
// SELECT statements have every FROM spec's ON condition pulled into the
// WHERE list first, tagged with the spec's location, so join conditions
// and filters are rewritten uniformly; afterwards the clauses are split
// back to their specs by tag. A clause whose origin spec no longer
// exists is a structural error, fatal to this compile only. A pass that
// fails for any lesser reason degrades: its input list survives
// untouched and the failure lands in ctx.Warnings.
func Rewrite(ctx *Context, stmt *sqlir.Statement) error {
	if ctx.Disabled || !stmt.HasCondition() {
		return nil
	}

	list := gather(stmt)
	for _, p := range passes {
		out, err := p.run(ctx, stmt, list)
		if err != nil {
			if IsInternal(err) {
				return err
			}
			ctx.Warnf("%s: %v", p.name, err)
			continue
		}
		list = out
	}
	return split(stmt, list)
}

// Snapshot is one pipeline step of a traced rewrite.
type Snapshot struct {
	Pass  string
	List  string
	Stmt  string
	Error string
}

// Trace runs the pipeline like Rewrite but records the clause list and
// statement after every pass. The trace is what the golden tests pin.
func Trace(ctx *Context, stmt *sqlir.Statement) ([]Snapshot, error) {
	if ctx.Disabled || !stmt.HasCondition() {
		return nil, nil
	}

	list := gather(stmt)
	snaps := make([]Snapshot, 0, len(passes)+1)
	snaps = append(snaps, Snapshot{Pass: "gather", List: list.String(), Stmt: stmt.String()})
	for _, p := range passes {
		snap := Snapshot{Pass: p.name}
		out, err := p.run(ctx, stmt, list)
		if err != nil {
			if IsInternal(err) {
				snap.Error = err.Error()
				snaps = append(snaps, snap)
				return snaps, err
			}
			ctx.Warnf("%s: %v", p.name, err)
			snap.Error = err.Error()
		} else {
			list = out
		}
		snap.List = list.String()
		snap.Stmt = stmt.String()
		snaps = append(snaps, snap)
	}
	err := split(stmt, list)
	snaps = append(snaps, Snapshot{Pass: "split", List: stmt.Where.String(), Stmt: stmt.String()})
	return snaps, err
}

// gather pulls the statement's rewritable clauses into one tagged list:
// WHERE clauses keep location 0, and for SELECT each spec's ON condition
// joins the list under the spec's location.
func gather(stmt *sqlir.Statement) sqlir.ClauseList {
	list := make(sqlir.ClauseList, 0, len(stmt.Where))
	for _, c := range stmt.Where {
		c.Location = sqlir.WhereLocation
		list = append(list, c)
	}
	stmt.Where = nil
	if stmt.Kind != sqlir.StmtSelect {
		return list
	}
	for _, spec := range stmt.Specs {
		for _, c := range spec.On {
			c.Location = spec.Location
			list = append(list, c)
		}
		spec.On = nil
	}
	return list
}

// split hands every clause back to its origin by location tag.
// Copy-pushed synthetic clauses have served their purpose and are
// dropped here.
func split(stmt *sqlir.Statement, list sqlir.ClauseList) error {
	for _, c := range list {
		if c.CopyPushed {
			continue
		}
		if c.Location == sqlir.WhereLocation {
			stmt.Where = append(stmt.Where, c)
			continue
		}
		spec := stmt.Spec(c.Location)
		if spec == nil {
			return internalErrorf("split", c.Location,
				"clause %q has no origin spec", c.String())
		}
		spec.On = append(spec.On, c)
	}
	return nil
}
