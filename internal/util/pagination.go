package util

import "strconv"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps (MaxPage-1)*MaxPageSize well inside a 32-bit offset.
	MaxPage = 10000
)

// Page is a 1-based page request resolved into an offset and limit.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// ParsePage reads raw page and size query values. Missing or invalid values fall back to the
// first page and the default size. Pages above MaxPage and sizes above MaxPageSize are clamped.
func ParsePage(rawPage, rawSize string) Page {
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	size, err := strconv.Atoi(rawSize)
	if err != nil || size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: page, Size: size}
}
