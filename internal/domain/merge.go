package domain

// Merge reconciles a remote batch with the local quotes using remote-wins-by-ID
// precedence. The result holds every remote quote in order, followed by the local
// quotes whose ID is absent or does not appear in the remote batch.
//
// Local quotes without an ID always survive. Stale local-only quotes are never
// collected, so they accumulate across syncs.
func Merge(remote, local []Quote) []Quote {
	result := make([]Quote, 0, len(remote)+len(local))
	result = append(result, remote...)

	remoteIDs := make(map[int64]struct{}, len(remote))
	for _, q := range remote {
		if q.HasID() {
			remoteIDs[*q.ID] = struct{}{}
		}
	}

	for _, q := range local {
		if q.HasID() {
			if _, shadowed := remoteIDs[*q.ID]; shadowed {
				continue
			}
		}

		result = append(result, q)
	}

	return result
}

// Upsert applies an imported batch onto the current quotes while keeping the
// current order. An incoming quote with an ID replaces the existing quote with
// the same ID in place, or is appended when the ID is new. An incoming quote
// without an ID is appended unless an identical quote is already present.
func Upsert(current, incoming []Quote) []Quote {
	result := make([]Quote, len(current), len(current)+len(incoming))
	copy(result, current)

	byID := make(map[int64]int, len(result))
	for i, q := range result {
		if q.HasID() {
			byID[*q.ID] = i
		}
	}

	for _, q := range incoming {
		if q.HasID() {
			if i, ok := byID[*q.ID]; ok {
				result[i] = q
				continue
			}

			byID[*q.ID] = len(result)
			result = append(result, q)

			continue
		}

		if !containsQuote(result, q) {
			result = append(result, q)
		}
	}

	return result
}

// EqualQuotes reports whether two quote lists are structurally identical,
// element by element and in order.
func EqualQuotes(a, b []Quote) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}

	return true
}

func containsQuote(quotes []Quote, q Quote) bool {
	for _, existing := range quotes {
		if existing.Equal(q) {
			return true
		}
	}

	return false
}
