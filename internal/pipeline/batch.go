package pipeline

// SplitIntoGroups partitions items into contiguous groups of at most size,
// preserving order. Group indices are assigned 1..N. The final group may be
// shorter; concatenating all groups reproduces the input exactly.
func SplitIntoGroups(items []ImageItem, size int) []Group {
	if size <= 0 {
		size = BatchSize
	}

	var groups []Group
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		groups = append(groups, Group{
			Index: len(groups) + 1,
			Items: items[start:end],
		})
	}
	return groups
}
