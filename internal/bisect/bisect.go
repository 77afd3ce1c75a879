// Package bisect implements a nearest-element binary search with a
// configurable tie-break direction, as required for source map queries where
// the exact generated position is usually absent from the mapping table.
package bisect

// Bias selects which neighbor wins when the needle itself is not present.
// The zero value behaves like GreatestLowerBound.
type Bias int

const (
	// GreatestLowerBound returns the largest index whose element compares
	// less than or equal to the needle.
	GreatestLowerBound Bias = iota + 1
	// LeastUpperBound returns the smallest index whose element compares
	// greater than or equal to the needle.
	LeastUpperBound
)

// Search returns the index of the element matching needle, or the nearest
// element permitted by bias, or -1 if the haystack is empty or no element
// qualifies. cmp is a three-way comparator over element values; haystack must
// be sorted with respect to it.
//
// When several elements compare equal, the smallest qualifying index is
// returned, so queries against tables with duplicate keys (several zero-width
// mappings at one generated position) are deterministic.
func Search[E any](haystack []E, needle E, cmp func(a, b E) int, bias Bias) int {
	if len(haystack) == 0 {
		return -1
	}
	if bias == 0 {
		bias = GreatestLowerBound
	}

	// Partition [low, high) down to a single candidate. low and high start
	// one outside the slice so boundary misses fall out as -1 naturally.
	index := -1
	low, high := -1, len(haystack)
	for {
		mid := (high-low)/2 + low
		c := cmp(needle, haystack[mid])
		if c == 0 {
			index = mid
			break
		}
		if c > 0 {
			// needle is after mid.
			if high-mid > 1 {
				low = mid
				continue
			}
			if bias == LeastUpperBound {
				if high < len(haystack) {
					index = high
				}
			} else {
				index = mid
			}
			break
		}
		// needle is before mid.
		if mid-low > 1 {
			high = mid
			continue
		}
		if bias == LeastUpperBound {
			index = mid
		} else {
			index = low
		}
		break
	}
	if index < 0 {
		return -1
	}

	// Normalize runs of equal elements to the earliest index. A backward scan
	// bounded by the slice start keeps this safe on long duplicate runs.
	for index > 0 && cmp(haystack[index], haystack[index-1]) == 0 {
		index--
	}
	return index
}
