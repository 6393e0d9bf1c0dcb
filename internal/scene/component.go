package scene

// AddComponent attaches c to o.
func AddComponent[T any](o *Object, c T) T {
	o.components = append(o.components, c)
	return c
}

// GetComponent returns the first component of type T on o.
func GetComponent[T any](o *Object) (T, bool) {
	for _, c := range o.components {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// GetComponentsInChildren collects every component of type T on o and its
// descendants, parents first.
func GetComponentsInChildren[T any](o *Object) []T {
	var out []T
	o.Walk(func(n *Object) {
		for _, c := range n.components {
			if t, ok := c.(T); ok {
				out = append(out, t)
			}
		}
	})
	return out
}
