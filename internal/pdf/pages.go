package pdf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// maxUnboundedPages caps a selection parsed without a known page count.
const maxUnboundedPages = 100000

// ParsePageRange parses a page selection like "1-3,5" into sorted, unique,
// 1-based page numbers. An empty selection returns nil, meaning all pages.
// Pages beyond total are rejected when total > 0. Bounds are checked before
// a range is expanded.
func ParsePageRange(pageRange string, total int) ([]int, error) {
	if strings.TrimSpace(pageRange) == "" {
		return nil, nil
	}

	limit := total
	if limit <= 0 {
		limit = maxUnboundedPages
	}

	seen := make(map[int]bool)
	var pages []int

	for _, part := range strings.Split(pageRange, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		first, last, err := parseRangeToken(part)
		if err != nil {
			return nil, err
		}
		if first < 1 {
			return nil, fmt.Errorf("invalid page number: %d", first)
		}
		if last > limit {
			if total > 0 {
				return nil, fmt.Errorf("page %d out of range (document has %d pages)", last, total)
			}
			return nil, fmt.Errorf("page %d exceeds the maximum of %d pages", last, maxUnboundedPages)
		}
		for p := first; p <= last; p++ {
			if !seen[p] {
				seen[p] = true
				pages = append(pages, p)
			}
		}
	}

	sort.Ints(pages)
	return pages, nil
}

// parseRangeToken parses either a single page token (e.g., "3") or a range
// token (e.g., "1-5") into its first and last page.
func parseRangeToken(part string) (int, int, error) {
	if strings.Contains(part, "-") {
		rangeParts := strings.Split(part, "-")
		if len(rangeParts) != 2 {
			return 0, 0, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid start page: %s", rangeParts[0])
		}
		end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid end page: %s", rangeParts[1])
		}
		if start > end {
			return 0, 0, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		return start, end, nil
	}
	page, err := strconv.Atoi(part)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page number: %s", part)
	}
	return page, page, nil
}
