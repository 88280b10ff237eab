// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // returns 42
//	n = utils.AtoiDefault("", 10)   // returns 10
//	n = utils.AtoiDefault("x", 5)   // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Page normalizes 1-based page/limit query values. Non-positive or
// unparsable values fall back to page 1 and defLimit; limit is capped at
// maxLimit when maxLimit > 0. offset is the number of rows to skip.
func Page(pageStr, limitStr string, defLimit, maxLimit int) (page, limit, offset int) {
	page = AtoiDefault(pageStr, 1)
	if page < 1 {
		page = 1
	}
	limit = AtoiDefault(limitStr, defLimit)
	if limit < 1 {
		limit = defLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, (page - 1) * limit
}

// TotalPages returns ceil(total/limit), or 0 when limit is not positive.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
