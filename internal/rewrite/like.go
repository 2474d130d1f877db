package rewrite

import (
	"strings"

	"github.com/roach88/sarge/internal/sqlir"
)

// The LIKE-prefix rewriter turns literal-prefix patterns into sargable
// shapes:
//
//	'abc'  (no wildcard)      ->  = 'abc'
//	'%'                       ->  IS NOT NULL
//	'ab%'                     ->  BETWEEN 'ab' GE_LT 'ac'
//	anything else             ->  unchanged LIKE
//
// Runs of consecutive % collapse to one before classification. The
// range upper bound is the prefix with its last byte incremented; this
// is byte-level on purpose (it matches how prefixes order in index
// storage) and therefore wrong as a codepoint successor for multi-byte
// tails. A prefix ending in 0xFF has no byte successor and stays LIKE.
// A prefix ending in a blank also stays LIKE: trailing blanks are
// ignored by padded-comparison semantics, so the range would be wrong.
func rewriteLikePrefixes(ctx *Context, stmt *sqlir.Statement, list sqlir.ClauseList) (sqlir.ClauseList, error) {
	for ci := range list {
		clause := &list[ci]
		for ti, term := range clause.Terms {
			cmp, ok := term.(*sqlir.Cmp)
			if !ok || cmp.Op != sqlir.OpLike {
				continue
			}
			cnst, ok := cmp.Right.(*sqlir.Const)
			if !ok {
				continue
			}
			pattern, ok := cnst.Val.(sqlir.String)
			if !ok {
				continue
			}
			if rewritten := classifyLike(cmp.Left, string(pattern)); rewritten != nil {
				clause.Terms[ti] = rewritten
			}
		}
	}
	return list, nil
}

func classifyLike(subject sqlir.Expr, pattern string) sqlir.Expr {
	pattern = collapsePercentRuns(pattern)

	switch {
	case pattern == "%":
		return &sqlir.Cmp{Op: sqlir.OpIsNotNull, Left: subject}
	case !strings.ContainsAny(pattern, "%_"):
		return &sqlir.Cmp{
			Op:    sqlir.OpEQ,
			Left:  subject,
			Right: &sqlir.Const{Val: sqlir.String(pattern)},
		}
	}

	// prefix% with no other wildcard anywhere in the prefix.
	if !strings.HasSuffix(pattern, "%") {
		return nil
	}
	prefix := pattern[:len(pattern)-1]
	if prefix == "" || strings.ContainsAny(prefix, "%_") {
		return nil
	}
	if strings.HasSuffix(prefix, " ") {
		return nil
	}
	succ, ok := byteSuccessor(prefix)
	if !ok {
		return nil
	}
	return &sqlir.Between{
		Subject: subject,
		Lower:   &sqlir.Const{Val: sqlir.String(prefix)},
		Upper:   &sqlir.Const{Val: sqlir.String(succ)},
		Kind:    sqlir.KindGeLt,
	}
}

// collapsePercentRuns reduces every run of consecutive % to a single %.
func collapsePercentRuns(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	prevPercent := false
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '%' {
			if prevPercent {
				continue
			}
			prevPercent = true
		} else {
			prevPercent = false
		}
		b.WriteByte(pattern[i])
	}
	return b.String()
}

// byteSuccessor increments the last byte of s. 0xFF has no successor.
func byteSuccessor(s string) (string, bool) {
	last := s[len(s)-1]
	if last == 0xFF {
		return "", false
	}
	return s[:len(s)-1] + string([]byte{last + 1}), true
}
