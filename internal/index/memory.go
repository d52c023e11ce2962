package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"axiona-learning-core/models"
)

// MemoryIndex keeps all three namespaces in process. It backs tests and the
// no-database deployment mode. Reads take only an RLock, so queries stay
// concurrent with each other; a source replacement holds the write lock just
// long enough to swap that source's chunk set.
type MemoryIndex struct {
	namespaces map[models.Namespace]*memoryNamespace
	sourceMu   sync.Map // "ns/sourceID" -> *sync.Mutex
}

type memoryNamespace struct {
	mu     sync.RWMutex
	dim    int // pinned by the first upsert
	chunks map[string]models.Chunk
}

func NewMemoryIndex() *MemoryIndex {
	idx := &MemoryIndex{namespaces: make(map[models.Namespace]*memoryNamespace)}
	for _, ns := range models.AllNamespaces() {
		idx.namespaces[ns] = &memoryNamespace{chunks: make(map[string]models.Chunk)}
	}
	return idx
}

func (m *MemoryIndex) namespace(ns models.Namespace) (*memoryNamespace, error) {
	store, ok := m.namespaces[ns]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrNamespaceNotFound, ns)
	}
	return store, nil
}

func (m *MemoryIndex) sourceLock(ns models.Namespace, sourceID string) *sync.Mutex {
	key := string(ns) + "/" + sourceID
	mu, _ := m.sourceMu.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (m *MemoryIndex) Upsert(ctx context.Context, ns models.Namespace, chunks []models.Chunk) error {
	store, err := m.namespace(ns)
	if err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, ch := range chunks {
		if err := store.checkDim(ch); err != nil {
			return err
		}
		store.chunks[ch.ChunkID] = ch
	}
	return nil
}

// checkDim pins the namespace dimension on first write. Caller holds the
// write lock.
func (s *memoryNamespace) checkDim(ch models.Chunk) error {
	if len(ch.Embedding) == 0 {
		return fmt.Errorf("%w: chunk %s has no embedding", models.ErrDimensionMismatch, ch.ChunkID)
	}
	if s.dim == 0 {
		s.dim = len(ch.Embedding)
		return nil
	}
	if len(ch.Embedding) != s.dim {
		return fmt.Errorf("%w: chunk %s has dim %d, namespace expects %d",
			models.ErrDimensionMismatch, ch.ChunkID, len(ch.Embedding), s.dim)
	}
	return nil
}

func (m *MemoryIndex) ReplaceSource(ctx context.Context, ns models.Namespace, sourceID string, chunks []models.Chunk) error {
	store, err := m.namespace(ns)
	if err != nil {
		return err
	}

	// One replace per source at a time, so concurrent re-ingestions of the
	// same record cannot interleave their delete and write steps.
	lock := m.sourceLock(ns, sourceID)
	lock.Lock()
	defer lock.Unlock()

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, ch := range chunks {
		if err := store.checkDim(ch); err != nil {
			return err
		}
	}
	for id, ch := range store.chunks {
		if ch.SourceID == sourceID {
			delete(store.chunks, id)
		}
	}
	for _, ch := range chunks {
		store.chunks[ch.ChunkID] = ch
	}
	return nil
}

func (m *MemoryIndex) DeleteBySource(ctx context.Context, ns models.Namespace, sourceID string) error {
	store, err := m.namespace(ns)
	if err != nil {
		return err
	}

	lock := m.sourceLock(ns, sourceID)
	lock.Lock()
	defer lock.Unlock()

	store.mu.Lock()
	defer store.mu.Unlock()
	for id, ch := range store.chunks {
		if ch.SourceID == sourceID {
			delete(store.chunks, id)
		}
	}
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, ns models.Namespace, vector []float32, topK int, filter Filter) ([]Hit, error) {
	store, err := m.namespace(ns)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store.mu.RLock()
	hits := make([]Hit, 0, len(store.chunks))
	for _, ch := range store.chunks {
		if len(filter) > 0 && !MatchesFilter(ch.Fields, filter) {
			continue
		}
		hits = append(hits, Hit{Chunk: ch, Distance: CosineDistance(vector, ch.Embedding)})
	}
	store.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Chunk.ChunkID < hits[j].Chunk.ChunkID
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}
