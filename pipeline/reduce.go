package pipeline

// Cheapest returns the item with the smallest price. Ties go to the item met
// first. ok is false when items is empty.
func Cheapest[T any](items []T, price func(T) int) (best T, ok bool) {
	for i, item := range items {
		if i == 0 || price(item) < price(best) {
			best = item
			ok = true
		}
	}
	return best, ok
}
