package utils

import (
	"math"
	"strconv"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100

	// MaxPage keeps (page-1)*per_page inside a postgres int4 offset.
	MaxPage = math.MaxInt32 / MaxPerPage
)

// ParseInt converts string to int, falling back to defaultValue for empty,
// malformed or non-positive input.
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil || result < 1 {
		return defaultValue
	}

	return result
}

func CalculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// ClampPage bounds page to [1, MaxPage].
func ClampPage(page int) int {
	if page < 1 {
		return DefaultPage
	}
	return min(page, MaxPage)
}

func CalculateOffset(page, perPage int) int {
	if page < 1 || perPage < 1 {
		return 0
	}
	return (ClampPage(page) - 1) * min(perPage, MaxPerPage)
}
