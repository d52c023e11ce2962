package index

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"axiona-learning-core/models"
)

// chunkCollections maps each namespace to its own collection. Keeping them
// separate guarantees a query can never leak chunks across namespaces.
var chunkCollections = map[models.Namespace]string{
	models.NamespaceMaterials: "material_chunks",
	models.NamespaceVideos:    "video_chunks",
	models.NamespaceBooks:     "book_chunks",
}

// ChunkCollections exposes the namespace->collection mapping for index setup.
func ChunkCollections() map[models.Namespace]string {
	out := make(map[models.Namespace]string, len(chunkCollections))
	for ns, col := range chunkCollections {
		out[ns] = col
	}
	return out
}

// MongoIndex persists chunks in one MongoDB collection per namespace.
// Candidates are fetched by metadata filter and re-scored in process with
// cosine distance; access failures are retried with doubling backoff before
// surfacing ErrIndexUnavailable.
type MongoIndex struct {
	db             *mongo.Database
	dim            int // expected embedding dimension, 0 disables the check
	candidateLimit int64
	maxAttempts    int
	retryBase      time.Duration
	sourceMu       sync.Map
}

func NewMongoIndex(db *mongo.Database, dim int) *MongoIndex {
	return &MongoIndex{
		db:             db,
		dim:            dim,
		candidateLimit: 2000,
		maxAttempts:    3,
		retryBase:      200 * time.Millisecond,
	}
}

func (m *MongoIndex) collection(ns models.Namespace) (*mongo.Collection, error) {
	name, ok := chunkCollections[ns]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrNamespaceNotFound, ns)
	}
	return m.db.Collection(name), nil
}

func (m *MongoIndex) sourceLock(ns models.Namespace, sourceID string) *sync.Mutex {
	key := string(ns) + "/" + sourceID
	mu, _ := m.sourceMu.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (m *MongoIndex) checkDim(chunks []models.Chunk) error {
	for _, ch := range chunks {
		if len(ch.Embedding) == 0 || (m.dim > 0 && len(ch.Embedding) != m.dim) {
			return fmt.Errorf("%w: chunk %s has dim %d, namespace expects %d",
				models.ErrDimensionMismatch, ch.ChunkID, len(ch.Embedding), m.dim)
		}
	}
	return nil
}

// withRetry runs op up to maxAttempts times with doubling backoff. Exhausted
// retries are reported as ErrIndexUnavailable.
func (m *MongoIndex) withRetry(ctx context.Context, op func(context.Context) error) error {
	var err error
	delay := m.retryBase
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt < m.maxAttempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}
	return fmt.Errorf("%w: %v", models.ErrIndexUnavailable, err)
}

func (m *MongoIndex) Upsert(ctx context.Context, ns models.Namespace, chunks []models.Chunk) error {
	col, err := m.collection(ns)
	if err != nil {
		return err
	}
	if err := m.checkDim(chunks); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	batch := make([]mongo.WriteModel, 0, len(chunks))
	for _, ch := range chunks {
		ch.Fields = ch.Metadata.Fields()
		batch = append(batch, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"source_id": ch.SourceID, "chunk_id": ch.ChunkID}).
			SetUpdate(bson.M{"$set": ch}).
			SetUpsert(true))
	}
	return m.withRetry(ctx, func(ctx context.Context) error {
		_, err := col.BulkWrite(ctx, batch, options.BulkWrite().SetOrdered(false))
		return err
	})
}

func (m *MongoIndex) ReplaceSource(ctx context.Context, ns models.Namespace, sourceID string, chunks []models.Chunk) error {
	col, err := m.collection(ns)
	if err != nil {
		return err
	}
	if err := m.checkDim(chunks); err != nil {
		return err
	}

	lock := m.sourceLock(ns, sourceID)
	lock.Lock()
	defer lock.Unlock()

	// Upsert the new set first, then sweep chunk ids that are no longer
	// part of it. Each chunk write is atomic, so a concurrent reader sees
	// the old or the new version of any chunk id, never a torn one.
	if err := m.Upsert(ctx, ns, chunks); err != nil {
		return err
	}

	keep := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		keep = append(keep, ch.ChunkID)
	}
	return m.withRetry(ctx, func(ctx context.Context) error {
		_, err := col.DeleteMany(ctx, bson.M{
			"source_id": sourceID,
			"chunk_id":  bson.M{"$nin": keep},
		})
		return err
	})
}

func (m *MongoIndex) DeleteBySource(ctx context.Context, ns models.Namespace, sourceID string) error {
	col, err := m.collection(ns)
	if err != nil {
		return err
	}

	lock := m.sourceLock(ns, sourceID)
	lock.Lock()
	defer lock.Unlock()

	return m.withRetry(ctx, func(ctx context.Context) error {
		_, err := col.DeleteMany(ctx, bson.M{"source_id": sourceID})
		return err
	})
}

func (m *MongoIndex) Query(ctx context.Context, ns models.Namespace, vector []float32, topK int, filter Filter) ([]Hit, error) {
	col, err := m.collection(ns)
	if err != nil {
		return nil, err
	}

	var candidates []models.Chunk
	err = m.withRetry(ctx, func(ctx context.Context) error {
		cursor, err := col.Find(ctx, mongoFilter(filter),
			options.Find().SetLimit(m.candidateLimit))
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		candidates = candidates[:0]
		return cursor.All(ctx, &candidates)
	})
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(candidates))
	for _, ch := range candidates {
		hits = append(hits, Hit{Chunk: ch, Distance: CosineDistance(vector, ch.Embedding)})
	}
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

// mongoFilter translates metadata predicates onto the flattened fields doc.
func mongoFilter(filter Filter) bson.M {
	query := bson.M{}
	for key, want := range filter {
		path := "fields." + key
		if r, ok := want.(Range); ok {
			cond := bson.M{}
			if r.Min != nil {
				cond["$gte"] = *r.Min
			}
			if r.Max != nil {
				cond["$lte"] = *r.Max
			}
			query[path] = cond
			continue
		}
		query[path] = want
	}
	return query
}
