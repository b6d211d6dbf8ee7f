// Package seshat embeds the radix-trie word store behind an Index that adds
// the concerns the core deliberately leaves out: locking, normalization,
// polymorphic bulk ingestion, result caching, suggestions, persistence, and
// performance accounting.
package seshat

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-reflect"
	"github.com/oarkflow/json"
	"github.com/oarkflow/squealx"
	"github.com/oarkflow/squealx/connection"
	"golang.org/x/sys/unix"

	"github.com/grMLEqomlkkU5Eeinz4brIrOVCUCkJuN/seshat/trie"
	"github.com/grMLEqomlkkU5Eeinz4brIrOVCUCkJuN/seshat/utils"
)

// Index wraps a single radix trie. The trie itself is single-threaded; the
// Index serializes mutation and lets readers share the tree.
type Index struct {
	sync.RWMutex
	ID               string
	NumWorkers       int
	BufferSize       int
	tree             *trie.Trie
	normalizer       Normalizer
	results          ResultStore
	cacheCapacity    int
	cacheExpiry      time.Duration
	monitor          *PerformanceMonitor
	ingestInProgress bool
}

// Options configures an Index.
type Options func(*Index)

// WithNormalizer installs the word normalizer applied before words reach the
// trie. The default is Identity: bytes are stored verbatim.
func WithNormalizer(n Normalizer) Options {
	return func(index *Index) {
		if n != nil {
			index.normalizer = n
		}
	}
}

// WithBufferSize sets the chunk size for bulk file ingestion.
func WithBufferSize(size int) Options {
	return func(index *Index) {
		if size > 0 {
			index.BufferSize = size
		}
	}
}

// WithNumOfWorkers sets NumWorkers. No Index operation reads it; batch
// operations run serially under the index lock.
func WithNumOfWorkers(numOfWorkers int) Options {
	return func(index *Index) {
		if numOfWorkers > 0 {
			index.NumWorkers = numOfWorkers
		}
	}
}

// WithCacheCapacity bounds the result cache.
func WithCacheCapacity(capacity int) Options {
	return func(index *Index) {
		index.cacheCapacity = capacity
	}
}

// WithCacheExpiry sets how long cached query results stay valid.
func WithCacheExpiry(dur time.Duration) Options {
	return func(index *Index) {
		index.cacheExpiry = dur
	}
}

// WithResultStore replaces the default in-memory result cache.
func WithResultStore(store ResultStore) Options {
	return func(index *Index) {
		if store != nil {
			index.results = store
		}
	}
}

// New creates an Index.
func New(id string, opts ...Options) *Index {
	index := &Index{
		ID:            id,
		NumWorkers:    runtime.NumCPU(),
		BufferSize:    trie.DefaultBufferSize,
		tree:          trie.New(),
		normalizer:    Identity,
		cacheCapacity: 1000,
		cacheExpiry:   time.Minute,
		monitor:       NewPerformanceMonitor(),
	}
	for _, opt := range opts {
		opt(index)
	}
	if index.results == nil {
		index.results = newResultStore(index.cacheCapacity)
	}
	return index
}

// Monitor exposes the index's performance monitor.
func (index *Index) Monitor() *PerformanceMonitor {
	return index.monitor
}

func (index *Index) normalize(word string) string {
	if index.normalizer == nil {
		return word
	}
	return index.normalizer.Normalize(word)
}

// Insert adds one word. Words that normalize to the empty string are
// ignored.
func (index *Index) Insert(word string) {
	word = index.normalize(word)
	if word == "" {
		return
	}
	index.Lock()
	index.tree.Insert(word)
	index.Unlock()
	index.results.Purge()
}

// InsertBatch adds every word in words.
func (index *Index) InsertBatch(words []string) {
	index.Lock()
	for _, word := range words {
		if word = index.normalize(word); word != "" {
			index.tree.Insert(word)
		}
	}
	index.Unlock()
	index.results.Purge()
}

// Search reports whether word is stored.
func (index *Index) Search(word string) bool {
	word = index.normalize(word)
	index.RLock()
	defer index.RUnlock()
	return index.tree.Search(word)
}

// SearchBatch reports membership for every word in words, in order.
func (index *Index) SearchBatch(words []string) []bool {
	out := make([]bool, len(words))
	index.RLock()
	defer index.RUnlock()
	for i, word := range words {
		out[i] = index.tree.Search(index.normalize(word))
	}
	return out
}

// StartsWith reports whether any stored word begins with prefix.
func (index *Index) StartsWith(prefix string) bool {
	prefix = index.normalize(prefix)
	index.RLock()
	defer index.RUnlock()
	return index.tree.StartsWith(prefix)
}

// WordsWithPrefix returns the stored words beginning with prefix, in the
// trie's child order. Results are cached until the next mutation or expiry.
func (index *Index) WordsWithPrefix(prefix string) []string {
	prefix = index.normalize(prefix)
	return index.cachedQuery("prefix", prefix, func() []string {
		index.RLock()
		defer index.RUnlock()
		return index.tree.WordsWithPrefix(prefix)
	})
}

// PatternSearch returns the stored words matching pattern ('?' matches one
// byte, '*' any run), sorted ascending. Results are cached until the next
// mutation or expiry.
func (index *Index) PatternSearch(pattern string) []string {
	pattern = index.normalize(pattern)
	return index.cachedQuery("pattern", pattern, func() []string {
		index.RLock()
		defer index.RUnlock()
		return index.tree.PatternSearch(pattern)
	})
}

// Suggest returns stored words within the given edit distance of term.
func (index *Index) Suggest(term string, threshold int) []string {
	term = index.normalize(term)
	if term == "" {
		return nil
	}
	if threshold <= 0 {
		threshold = 2
	}
	index.RLock()
	defer index.RUnlock()
	var results []string
	index.tree.Walk(func(word string) bool {
		if utils.BoundedLevenshtein(term, word, threshold) <= threshold {
			results = append(results, word)
		}
		return true
	})
	return results
}

func (index *Index) cachedQuery(kind, q string, compute func() []string) []string {
	start := time.Now()
	defer func() {
		index.monitor.RecordSearchLatency(time.Since(start))
	}()
	key := xxhash.Sum64String(kind + "\x00" + q)
	if words, ok := index.results.Get(key); ok {
		index.monitor.RecordCacheHit()
		return words
	}
	index.monitor.RecordCacheMiss()
	words := compute()
	if len(words) > 0 {
		index.results.Put(key, words, time.Now().Add(index.cacheExpiry))
	}
	return words
}

// Remove deletes word, reporting whether it was present.
func (index *Index) Remove(word string) bool {
	word = index.normalize(word)
	index.Lock()
	removed := index.tree.Remove(word)
	index.Unlock()
	if removed {
		index.results.Purge()
	}
	return removed
}

// RemoveBatch deletes every word in words, reporting each outcome in order.
func (index *Index) RemoveBatch(words []string) []bool {
	out := make([]bool, len(words))
	removedAny := false
	index.Lock()
	for i, word := range words {
		out[i] = index.tree.Remove(index.normalize(word))
		removedAny = removedAny || out[i]
	}
	index.Unlock()
	if removedAny {
		index.results.Purge()
	}
	return out
}

// Size returns the number of stored words.
func (index *Index) Size() int {
	index.RLock()
	defer index.RUnlock()
	return index.tree.Size()
}

// Empty reports whether no words are stored.
func (index *Index) Empty() bool {
	index.RLock()
	defer index.RUnlock()
	return index.tree.Empty()
}

// Clear discards every stored word.
func (index *Index) Clear() {
	index.Lock()
	index.tree.Clear()
	index.Unlock()
	index.results.Purge()
}

// Words enumerates every stored word in the trie's child order.
func (index *Index) Words() []string {
	index.RLock()
	defer index.RUnlock()
	return index.tree.WordsWithPrefix("")
}

// HeightStats aggregates per-terminal depths.
func (index *Index) HeightStats() trie.HeightStats {
	index.RLock()
	defer index.RUnlock()
	return index.tree.HeightStats()
}

// MemoryStats approximates the tree's resident footprint.
func (index *Index) MemoryStats() trie.MemoryStats {
	index.RLock()
	defer index.RUnlock()
	return index.tree.MemoryStats()
}

// WordMetrics aggregates stored word lengths.
func (index *Index) WordMetrics() trie.WordMetrics {
	index.RLock()
	defer index.RUnlock()
	return index.tree.WordMetrics()
}

// DBConfig describes a database to pull words from.
type DBConfig struct {
	DBType  string `json:"type,omitempty"`
	DBHost  string `json:"host,omitempty"`
	DBPort  int    `json:"port,omitempty"`
	DBUser  string `json:"user,omitempty"`
	DBPass  string `json:"password,omitempty"`
	DBName  string `json:"database,omitempty"`
	DBQuery string `json:"query,omitempty"`
	Column  string `json:"column,omitempty"`
}

// DBRequest feeds the result column of a SQL query into the index.
type DBRequest struct {
	DB     *squealx.DB
	Query  string
	Column string
}

// IngestRequest is the wire form of a build request.
type IngestRequest struct {
	Path     string    `json:"path"`
	Words    []string  `json:"words"`
	Database *DBConfig `json:"database,omitempty"`
}

// Build ingests words from any supported input: a file path, a word list, a
// JSON word-list payload, an io.Reader of lines, a database request, or an
// arbitrary slice whose elements are stringified.
func (index *Index) Build(ctx context.Context, input any) error {
	switch v := input.(type) {
	case string:
		_, err := index.BuildFromFile(ctx, v, index.BufferSize)
		return err
	case []byte:
		var words []string
		if err := json.Unmarshal(v, &words); err != nil {
			return fmt.Errorf("decoding word list: %w", err)
		}
		return index.BuildFromWords(ctx, words)
	case io.Reader:
		_, err := index.BuildFromReader(ctx, v, index.BufferSize)
		return err
	case []string:
		return index.BuildFromWords(ctx, v)
	case DBRequest:
		_, err := index.BuildFromDatabase(ctx, v)
		return err
	case IngestRequest:
		if v.Database != nil {
			db, _, err := connection.FromConfig(squealx.Config{
				Host:     v.Database.DBHost,
				Port:     v.Database.DBPort,
				Driver:   v.Database.DBType,
				Username: v.Database.DBUser,
				Password: v.Database.DBPass,
				Database: v.Database.DBName,
			})
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()
			_, err = index.BuildFromDatabase(ctx, DBRequest{DB: db, Query: v.Database.DBQuery, Column: v.Database.Column})
			return err
		}
		if v.Path != "" {
			_, err := index.BuildFromFile(ctx, v.Path, index.BufferSize)
			return err
		}
		if len(v.Words) > 0 {
			return index.BuildFromWords(ctx, v.Words)
		}
		return fmt.Errorf("no words, path, or database config provided")
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice {
			words := make([]string, 0, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				words = append(words, utils.ToString(rv.Index(i).Interface()))
			}
			return index.BuildFromWords(ctx, words)
		}
	}
	return fmt.Errorf("unsupported input type: %T", input)
}

func (index *Index) beginIngest() error {
	index.Lock()
	defer index.Unlock()
	if index.ingestInProgress {
		return fmt.Errorf("ingestion already in progress")
	}
	index.ingestInProgress = true
	return nil
}

func (index *Index) endIngest(start time.Time) {
	index.Lock()
	index.ingestInProgress = false
	index.Unlock()
	index.results.Purge()
	index.monitor.RecordIngestTime(time.Since(start))
}

// BuildFromFile feeds every line of the file at path into the trie. Records
// go in as trimmed bytes, bypassing the normalizer; callers wanting folded
// input should fold the file first. The returned count includes duplicate
// records.
func (index *Index) BuildFromFile(ctx context.Context, path string, bufferSize int) (int, error) {
	if err := index.beginIngest(); err != nil {
		return 0, err
	}
	start := time.Now()
	defer index.endIngest(start)
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if bufferSize <= 0 {
		bufferSize = index.BufferSize
	}
	index.Lock()
	defer index.Unlock()
	return index.tree.BulkInsertFromFile(path, bufferSize)
}

// BuildFromReader is BuildFromFile over an arbitrary byte stream.
func (index *Index) BuildFromReader(ctx context.Context, r io.Reader, bufferSize int) (int, error) {
	if err := index.beginIngest(); err != nil {
		return 0, err
	}
	start := time.Now()
	defer index.endIngest(start)
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if bufferSize <= 0 {
		bufferSize = index.BufferSize
	}
	index.Lock()
	defer index.Unlock()
	return index.tree.BulkInsertFromReader(r, bufferSize)
}

// BuildFromWords inserts each word through the normalizer.
func (index *Index) BuildFromWords(ctx context.Context, words []string) error {
	for _, word := range words {
		if err := ctx.Err(); err != nil {
			return err
		}
		index.Insert(word)
	}
	return nil
}

// BuildFromDatabase runs req.Query and inserts every value of the requested
// column (or of every column when none is named). It returns the number of
// records fed to insert.
func (index *Index) BuildFromDatabase(ctx context.Context, req DBRequest) (int, error) {
	if req.DB == nil {
		return 0, fmt.Errorf("no database provided")
	}
	if req.Query == "" {
		return 0, fmt.Errorf("no query provided")
	}
	count := 0
	err := squealx.SelectEach(req.DB, func(row map[string]any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for col, val := range row {
			if req.Column != "" && col != req.Column {
				continue
			}
			word := index.normalize(utils.ToString(val))
			if word == "" {
				continue
			}
			index.Lock()
			index.tree.Insert(word)
			index.Unlock()
			count++
		}
		return nil
	}, req.Query)
	index.results.Purge()
	if err != nil {
		return count, err
	}
	return count, nil
}

type wordSnapshot struct {
	ID    string   `json:"id"`
	Words []string `json:"words"`
}

// SaveToDisk writes the word set as a JSON document. The only supported
// serialization is enumerate-all-words; restore is insert-each-word.
func (index *Index) SaveToDisk(path string) error {
	snapshot := wordSnapshot{ID: index.ID, Words: index.Words()}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(&snapshot)
}

// LoadFromDisk replaces the word set with the snapshot at path.
func (index *Index) LoadFromDisk(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var snapshot wordSnapshot
	dec := json.NewDecoder(f)
	if err := dec.Decode(&snapshot); err != nil {
		return err
	}
	index.Lock()
	index.tree.Clear()
	for _, word := range snapshot.Words {
		if word = index.normalize(word); word != "" {
			index.tree.Insert(word)
		}
	}
	index.Unlock()
	index.results.Purge()
	return nil
}

// Status reports the index's population, ingestion state, performance
// metrics, and the process's peak resident set.
func (index *Index) Status() map[string]any {
	index.RLock()
	size := index.tree.Size()
	ingesting := index.ingestInProgress
	index.RUnlock()
	status := map[string]any{
		"id":                 index.ID,
		"size":               size,
		"ingest_in_progress": ingesting,
		"cached_results":     index.results.Len(),
	}
	for k, v := range index.monitor.GetMetrics() {
		status[k] = v
	}
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err == nil {
		status["max_rss_kb"] = ru.Maxrss
	}
	return status
}
