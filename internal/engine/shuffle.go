package engine

// Shuffle permutes items in place with Fisher-Yates, drawing each swap index
// through NextInt so the counter advances once per element. The result is a
// uniformly random permutation of the input.
func Shuffle[S ~[]E, E any](g *Generator, items S) error {
	for m := int64(len(items)); m >= 1; m-- {
		i, err := g.NextInt(0, m-1)
		if err != nil {
			return err
		}
		items[m-1], items[i] = items[i], items[m-1]
	}
	return nil
}

// SampleUnique collects size distinct integers from [min, max], drawing
// through NextInt and discarding duplicates. A size larger than the domain
// is clamped to the domain; a negative size yields an empty result.
func (g *Generator) SampleUnique(min, max int64, size int) ([]int64, error) {
	if min > max {
		return nil, &RangeError{Min: float64(min), Max: float64(max)}
	}
	if size < 0 {
		size = 0
	}
	if domain := uint64(max) - uint64(min) + 1; domain != 0 && uint64(size) > domain {
		size = int(domain)
	}

	seen := make(map[int64]struct{}, size)
	out := make([]int64, 0, size)
	for len(out) < size {
		v, err := g.NextInt(min, max)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}
