package location

import "sync"

// Reader returns the current link.
type Reader interface {
	Read() (Link, error)
}

// Writer replaces the current link. Mode and content change together in one
// call.
type Writer interface {
	Write(Link) error
}

// Resource is the single process-wide link. Subscribers are told about
// changes that did not come through Write.
type Resource interface {
	Reader
	Writer
	Subscribe(fn func(Link)) (cancel func())
}

// subscribers is a registry shared by Resource implementations.
type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(Link)
}

func (s *subscribers) add(fn func(Link)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(Link))
	}
	id := s.next
	s.next++
	s.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.fns, id)
		})
	}
}

func (s *subscribers) publish(link Link) {
	s.mu.Lock()
	fns := make([]func(Link), 0, len(s.fns))
	for id := 0; id < s.next; id++ {
		if fn, ok := s.fns[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(link)
	}
}

// Memory is an in-process Resource. Write behaves like replacing the browser
// history entry: it is silent. Navigate simulates an external change.
type Memory struct {
	mu      sync.Mutex
	current Link
	writes  []Link
	subs    subscribers
}

// NewMemory returns a Memory resource holding raw.
func NewMemory(raw string) *Memory {
	return &Memory{current: Parse(raw)}
}

// Read implements Reader.
func (m *Memory) Read() (Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, nil
}

// Write implements Writer.
func (m *Memory) Write(link Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = link
	m.writes = append(m.writes, link)
	return nil
}

// Subscribe implements Resource.
func (m *Memory) Subscribe(fn func(Link)) func() {
	return m.subs.add(fn)
}

// Navigate replaces the link from outside the session and notifies subscribers.
func (m *Memory) Navigate(raw string) {
	link := Parse(raw)
	m.mu.Lock()
	m.current = link
	m.mu.Unlock()
	m.subs.publish(link)
}

// Writes returns every link passed to Write, oldest first.
func (m *Memory) Writes() []Link {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Link, len(m.writes))
	copy(out, m.writes)
	return out
}

// URL returns the current link formatted as a URL.
func (m *Memory) URL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.String()
}
