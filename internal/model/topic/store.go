package topic

// Store exposes topic retrieval for the mentor prompt and HTTP handlers.
type Store interface {
	List() []Topic
	FindByID(id string) (Topic, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Topic
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied topics.
func NewMemoryStore(items []Topic) *MemoryStore {
	return &MemoryStore{items: append([]Topic(nil), items...)}
}

// List returns the topic catalogue.
func (s *MemoryStore) List() []Topic {
	return append([]Topic(nil), s.items...)
}

// FindByID looks up a topic by identifier.
func (s *MemoryStore) FindByID(id string) (Topic, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Topic{}, false
}

// Resolve returns the topic with the given id, falling back to DefaultID.
// The boolean reports whether id itself was found.
func Resolve(store Store, id string) (Topic, bool) {
	if t, ok := store.FindByID(id); ok {
		return t, true
	}
	t, _ := store.FindByID(DefaultID)
	return t, false
}
