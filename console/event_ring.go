package console

// EventRing keeps the most recent status lines, overwriting the oldest.
type EventRing struct {
	buffer []string
	head   int
	size   int
}

func NewEventRing(capacity int) *EventRing {
	if capacity < 1 {
		capacity = 1
	}
	return &EventRing{
		buffer: make([]string, capacity),
		head:   0,
		size:   0,
	}
}

func (r *EventRing) Push(item string) {
	if r.size == len(r.buffer) {
		// Overwrite
		r.buffer[r.head] = item
		r.head += 1
		r.head %= len(r.buffer)
	} else {
		end := (r.head + r.size) % len(r.buffer)
		r.buffer[end] = item
		r.size += 1
	}
}

func (r *EventRing) Len() int {
	return r.size
}

// Last returns up to n items, oldest first.
func (r *EventRing) Last(n int) []string {
	if n > r.size {
		n = r.size
	}
	items := make([]string, 0, n)
	for i := r.size - n; i < r.size; i++ {
		items = append(items, r.buffer[(r.head+i)%len(r.buffer)])
	}
	return items
}
