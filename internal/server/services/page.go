package services

// normalizePage clamps a skip/limit window. A non-positive limit means the
// caller asked for nothing and the store should not be touched; a negative
// skip is treated as zero.
func normalizePage(skip, limit int) (int, int, bool) {
	if limit <= 0 {
		return 0, 0, false
	}
	if skip < 0 {
		skip = 0
	}
	return skip, limit, true
}
