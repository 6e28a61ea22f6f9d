// Package collection holds the generic slice helpers the services use to
// shape query results.
//
//	ids := collection.Unique(collection.Map(items, func(it requests.OrderItem) uint64 { return it.MenuItemID.Uint64() }))
//	byMonth := collection.GroupBy(orders, func(o models.Order) string { return monthKey(o.CreatedAt) })
package collection

func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, 0, len(s))
	for _, v := range s {
		out = append(out, fn(v))
	}
	return out
}

// Filter keeps the elements fn accepts. The result is never nil.
func Filter[T any](s []T, keep func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Count is len(Filter(s, match)) without the allocation.
func Count[T any](s []T, match func(T) bool) int {
	n := 0
	for _, v := range s {
		if match(v) {
			n++
		}
	}
	return n
}

func Any[T any](s []T, match func(T) bool) bool {
	return Count(s, match) > 0
}

// Includes reports whether v is one of s.
func Includes[T comparable](s []T, v T) bool {
	return Any(s, func(x T) bool { return x == v })
}

// GroupBy buckets s by key, keeping the input order inside each bucket.
func GroupBy[T any, K comparable](s []T, key func(T) K) map[K][]T {
	out := make(map[K][]T)
	for _, v := range s {
		k := key(v)
		out[k] = append(out[k], v)
	}
	return out
}

// KeyBy indexes s by key. Later elements win.
func KeyBy[T any, K comparable](s []T, key func(T) K) map[K]T {
	out := make(map[K]T, len(s))
	for _, v := range s {
		out[key(v)] = v
	}
	return out
}

// Unique drops repeats, keeping first occurrences in order.
func Unique[T comparable](s []T) []T {
	seen := make(map[T]bool, len(s))
	return Filter(s, func(v T) bool {
		if seen[v] {
			return false
		}
		seen[v] = true
		return true
	})
}

func Reduce[T, R any](s []T, acc R, fn func(R, T) R) R {
	for _, v := range s {
		acc = fn(acc, v)
	}
	return acc
}
