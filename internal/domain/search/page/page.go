// Package page converts between 1-based page numbers and engine offsets.
package page

import "fmt"

// Offset returns (page-1)*size. Both operands must be at least 1.
func Offset(page, size int) (int, error) {
	if page < 1 {
		return 0, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if size < 1 {
		return 0, fmt.Errorf("page size must be >= 1, got %d", size)
	}
	return (page - 1) * size, nil
}

// Count returns ceil(total/size), 0 when total is 0.
func Count(total, size int) (int, error) {
	if size <= 0 {
		return 0, fmt.Errorf("page size must be >= 1, got %d", size)
	}
	if total <= 0 {
		return 0, nil
	}
	return (total + size - 1) / size, nil
}
