package doccode

// Memo caches the last formatted code and recomputes it only when the
// input tuple changes. The zero value is ready to use.
// Memo is not safe for concurrent use.
type Memo struct {
	key          Parts
	value        string
	valid        bool
	computations int
}

// Get returns Format(p), reusing the cached value when p equals the
// previous input.
func (m *Memo) Get(p Parts) string {
	if m.valid && m.key == p {
		return m.value
	}

	m.key = p
	m.value = Format(p)
	m.valid = true
	m.computations++
	return m.value
}

// Reset drops the cached value.
func (m *Memo) Reset() {
	m.valid = false
	m.value = ""
	m.key = Parts{}
}

// Computations reports how many times Get had to call Format.
func (m *Memo) Computations() int {
	return m.computations
}
