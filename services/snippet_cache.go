package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"axiona-learning-core/models"
	"axiona-learning-core/utils"
)

// SnippetCache keeps recent search responses in Redis so repeated queries
// skip the embed + index round-trip. Entries are compressed before storage
// and the cache fails open: a Redis hiccup only costs the shortcut.
type SnippetCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSnippetCache(rdb *redis.Client, ttl time.Duration) *SnippetCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SnippetCache{rdb: rdb, ttl: ttl}
}

type cachedResponse struct {
	Compression string `json:"compression"`
	Payload     []byte `json:"payload"`
}

func cacheKey(req models.SearchRequest) string {
	namespaces := append([]string(nil), req.Namespaces...)
	sort.Strings(namespaces)
	filters, _ := json.Marshal(req.Filters)

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%s", req.Query, strings.Join(namespaces, ","), req.ClampTopK(), filters)
	return "search:" + hex.EncodeToString(h.Sum(nil))
}

func (c *SnippetCache) Get(ctx context.Context, req models.SearchRequest) (models.SearchResponse, bool) {
	ctx, cancel := utils.WithShortTimeout(ctx)
	defer cancel()

	raw, err := c.rdb.Get(ctx, cacheKey(req)).Bytes()
	if err != nil {
		return models.SearchResponse{}, false
	}

	var entry cachedResponse
	if err := json.Unmarshal(raw, &entry); err != nil {
		return models.SearchResponse{}, false
	}
	data, err := utils.DecompressData(entry.Payload, utils.CompressionAlgorithm(entry.Compression))
	if err != nil {
		return models.SearchResponse{}, false
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.SearchResponse{}, false
	}
	return resp, true
}

func (c *SnippetCache) Set(ctx context.Context, req models.SearchRequest, resp models.SearchResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	algorithm := utils.GetBestCompression(data)
	payload, err := utils.CompressData(data, algorithm)
	if err != nil {
		return
	}
	raw, err := json.Marshal(cachedResponse{Compression: string(algorithm), Payload: payload})
	if err != nil {
		return
	}

	ctx, cancel := utils.WithShortTimeout(ctx)
	defer cancel()
	c.rdb.Set(ctx, cacheKey(req), raw, c.ttl)
}
