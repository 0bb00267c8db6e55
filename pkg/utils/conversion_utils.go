package utils

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ParsePagination reads page/limit query values. Missing, malformed or non-positive
// values fall back to the defaults; limit is capped at MaxLimit.
func ParsePagination(pageStr, limitStr string) (int, int) {
	page := parsePositiveInt(pageStr, DefaultPage)
	limit := parsePositiveInt(limitStr, DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// NormalizePagination applies the same rules to already-parsed values.
func NormalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// RoundHours rounds to two decimal places.
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

func parsePositiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
