package eval

// likeMatch implements SQL LIKE over bytes: % matches any run (including
// empty), _ matches exactly one byte. No escape character; the rewrite
// passes never see escaped patterns either.
func likeMatch(s, pattern string) bool {
	// Iterative two-pointer match with backtracking to the last %.
	si, pi := 0, 0
	starPi, starSi := -1, 0
	for si < len(s) {
		switch {
		case pi < len(pattern) && pattern[pi] == '%':
			starPi, starSi = pi, si
			pi++
		case pi < len(pattern) && (pattern[pi] == '_' || pattern[pi] == s[si]):
			pi++
			si++
		case starPi >= 0:
			starSi++
			si = starSi
			pi = starPi + 1
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '%' {
		pi++
	}
	return pi == len(pattern)
}
