// Package page slices a list into fixed-size, 1-indexed pages.
package page

// DefaultSize is the number of rows shown per page when none is configured.
const DefaultSize = 10

// Paginate returns page number (1-based) of items, clipped to the bounds of
// items. It returns an empty slice when number is past the last page.
func Paginate[T any](items []T, size, number int) []T {
	if size <= 0 || number < 1 {
		return []T{}
	}
	start := (number - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return items[start:end]
}

// TotalPages returns ceil(n/size), or 0 for an empty list.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Cursor tracks the page currently shown.
type Cursor struct {
	Page int
	Size int
}

func NewCursor(size int) Cursor {
	if size <= 0 {
		size = DefaultSize
	}
	return Cursor{Page: 1, Size: size}
}

func (c *Cursor) HasPrev() bool {
	return c.Page > 1
}

func (c *Cursor) HasNext(total int) bool {
	return c.Page < total
}

// Prev moves back one page. Moving before the first page is a no-op.
func (c *Cursor) Prev() bool {
	if !c.HasPrev() {
		return false
	}
	c.Page--
	return true
}

// Next moves forward one page. Moving past the last page is a no-op.
func (c *Cursor) Next(total int) bool {
	if !c.HasNext(total) {
		return false
	}
	c.Page++
	return true
}

// Clamp pulls the cursor back inside [1, total] after the list shrinks.
func (c *Cursor) Clamp(total int) {
	if c.Page > total {
		c.Page = total
	}
	if c.Page < 1 {
		c.Page = 1
	}
}

func (c *Cursor) Reset() {
	c.Page = 1
}
