package seshat

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/oarkflow/json"

	"github.com/grMLEqomlkkU5Eeinz4brIrOVCUCkJuN/seshat/utils"
)

// Manager owns a set of named indexes and the shared async ingester.
type Manager struct {
	indexes  map[string]*Index
	mutex    sync.Mutex
	ingester *AsyncIngester
}

func NewManager() *Manager {
	return &Manager{
		indexes:  make(map[string]*Index),
		ingester: NewAsyncIngester(runtime.NumCPU(), 64),
	}
}

// Close shuts down the async ingester.
func (m *Manager) Close() error {
	return m.ingester.Close()
}

func (m *Manager) AddIndex(name string, index *Index) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.indexes[name] = index
}

// CreateIndex registers a fresh index under name, generating an ID when name
// is empty.
func (m *Manager) CreateIndex(name string, opts ...Options) *Index {
	if strings.TrimSpace(name) == "" {
		name = utils.NewIDString()
	}
	index := New(name, opts...)
	m.AddIndex(name, index)
	return index
}

func (m *Manager) GetIndex(name string) (*Index, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	index, ok := m.indexes[name]
	return index, ok
}

func (m *Manager) DeleteIndex(name string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.indexes, name)
}

func (m *Manager) ListIndexes() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	names := make([]string, 0, len(m.indexes))
	for name := range m.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) Build(ctx context.Context, name string, req any) error {
	index, ok := m.GetIndex(name)
	if !ok {
		return fmt.Errorf("index %s not found", name)
	}
	return index.Build(ctx, req)
}

// BuildAsync schedules a file ingest on the shared worker pool.
func (m *Manager) BuildAsync(name, path string, bufferSize int, done func(int, error)) error {
	index, ok := m.GetIndex(name)
	if !ok {
		return fmt.Errorf("index %s not found", name)
	}
	return m.ingester.Submit(IngestJob{Index: index, Path: path, BufferSize: bufferSize, Done: done})
}

// Request is one query against an index. Kind selects the operation: exact
// membership (default), prefix enumeration, wildcard pattern matching, or
// edit-distance suggestions.
type Request struct {
	Query     string `json:"q" query:"q"`
	Kind      string `json:"kind" query:"kind"`
	Threshold int    `json:"threshold" query:"threshold"`
	Size      int    `json:"s" query:"s"`
	Page      int    `json:"p" query:"p"`
}

// Checksum returns a stable xxhash of the request's canonical JSON form.
func (r Request) Checksum() (uint64, error) {
	canon := struct {
		Query     string `json:"q"`
		Kind      string `json:"kind"`
		Threshold int    `json:"threshold"`
		Size      int    `json:"s"`
		Page      int    `json:"p"`
	}{
		Query:     r.Query,
		Kind:      r.Kind,
		Threshold: r.Threshold,
		Size:      r.Size,
		Page:      r.Page,
	}
	payload, err := json.Marshal(canon)
	if err != nil {
		return 0, fmt.Errorf("marshaling canonical request: %w", err)
	}
	return xxhash.Sum64(payload), nil
}

// Result is a paginated query response.
type Result struct {
	Items      []string `json:"items"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
	TotalPages int      `json:"total_pages"`
	NextPage   *int     `json:"next_page"`
	PrevPage   *int     `json:"prev_page"`
	Latency    string   `json:"latency"`
}

func (m *Manager) Search(ctx context.Context, name string, req Request) (*Result, error) {
	index, ok := m.GetIndex(name)
	if !ok {
		return nil, fmt.Errorf("index %s not found", name)
	}
	start := time.Now()
	words, err := index.query(ctx, req)
	if err != nil {
		return nil, err
	}
	result := paginate(words, req.Page, req.Size)
	result.Latency = time.Since(start).String()
	return result, nil
}

// query dispatches a Request to the matching index operation.
func (index *Index) query(ctx context.Context, req Request) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(req.Kind)) {
	case "", "exact":
		if index.Search(req.Query) {
			return []string{index.normalize(req.Query)}, nil
		}
		return nil, nil
	case "prefix":
		return index.WordsWithPrefix(req.Query), nil
	case "pattern":
		return index.PatternSearch(req.Query), nil
	case "suggest":
		return index.Suggest(req.Query, req.Threshold), nil
	default:
		return nil, fmt.Errorf("unsupported query kind: %s", req.Kind)
	}
}

func paginate(words []string, page, perPage int) *Result {
	total := len(words)
	if perPage < 1 {
		perPage = 10
	}
	if total == 0 {
		return &Result{
			Items:   []string{},
			Page:    1,
			PerPage: perPage,
		}
	}
	totalPages := (total + perPage - 1) / perPage
	if page < 1 {
		page = 1
	} else if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	var next, prev *int
	if page < totalPages {
		np := page + 1
		next = &np
	}
	if page > 1 {
		pp := page - 1
		prev = &pp
	}
	return &Result{
		Items:      words[start:end],
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		NextPage:   next,
		PrevPage:   prev,
	}
}

type newIndexRequest struct {
	ID string `json:"id"`
}

func prepareQuery(r *http.Request) (Request, error) {
	var query Request
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return query, err
	}
	if len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, &query); err != nil {
			return query, fmt.Errorf("error unmarshalling query: %v", err)
		}
	}
	values := r.URL.Query()
	if q := strings.TrimSpace(values.Get("q")); q != "" {
		query.Query = q
	}
	if kind := strings.TrimSpace(values.Get("kind")); kind != "" {
		query.Kind = kind
	}
	if threshold := values.Get("threshold"); threshold != "" {
		if n, err := strconv.Atoi(threshold); err == nil {
			query.Threshold = n
		}
	}
	if size := values.Get("s"); size != "" {
		if n, err := strconv.Atoi(size); err == nil {
			query.Size = n
		}
	}
	if page := values.Get("p"); page != "" {
		if n, err := strconv.Atoi(page); err == nil {
			query.Page = n
		}
	}
	return query, nil
}

// StartHTTP serves the manager over HTTP. It blocks.
func (m *Manager) StartHTTP(addr string) {
	http.HandleFunc("/index/add", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Unsupported method", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, fmt.Sprintf("Error reading body: %v", err), http.StatusBadRequest)
			return
		}
		var req newIndexRequest
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				http.Error(w, fmt.Sprintf("Error unmarshalling request: %v", err), http.StatusBadRequest)
				return
			}
		}
		index := m.CreateIndex(req.ID)
		w.Write([]byte(fmt.Sprintf("index %s created successfully", index.ID)))
	})
	http.HandleFunc("/indexes", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Unsupported method", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(m.ListIndexes())
	})
	http.HandleFunc("/{index}/build", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Unsupported method", http.StatusMethodNotAllowed)
			return
		}
		indexName := r.PathValue("index")
		if strings.TrimSpace(indexName) == "" {
			http.Error(w, "index name required in path", http.StatusBadRequest)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, fmt.Sprintf("Error reading body: %v", err), http.StatusBadRequest)
			return
		}
		var req IngestRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, fmt.Sprintf("Error unmarshalling request: %v", err), http.StatusBadRequest)
			return
		}
		if req.Path != "" {
			err := m.BuildAsync(indexName, req.Path, 0, func(inserted int, err error) {
				if err != nil {
					log.Printf("ingest of %s into %s failed: %v", req.Path, indexName, err)
					return
				}
				log.Printf("ingested %d records from %s into %s", inserted, req.Path, indexName)
			})
			if err != nil {
				http.Error(w, fmt.Sprintf("Build error: %v", err), http.StatusInternalServerError)
				return
			}
			w.Write([]byte(fmt.Sprintf("Ingestion started for %s with index name %s", req.Path, indexName)))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.Build(ctx, indexName, req); err != nil {
			http.Error(w, fmt.Sprintf("Build error: %v", err), http.StatusInternalServerError)
			return
		}
		w.Write([]byte("index built successfully"))
	})
	http.HandleFunc("/{index}/search", func(w http.ResponseWriter, r *http.Request) {
		indexName := r.PathValue("index")
		if strings.TrimSpace(indexName) == "" {
			http.Error(w, "index name required in path", http.StatusBadRequest)
			return
		}
		req, err := prepareQuery(r)
		if err != nil {
			http.Error(w, fmt.Sprintf("Error preparing query: %v", err), http.StatusBadRequest)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		results, err := m.Search(ctx, indexName, req)
		if err != nil {
			http.Error(w, fmt.Sprintf("Search error: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	})
	http.HandleFunc("/{index}/stats", func(w http.ResponseWriter, r *http.Request) {
		indexName := r.PathValue("index")
		index, ok := m.GetIndex(indexName)
		if !ok {
			http.Error(w, fmt.Sprintf("index %s not found", indexName), http.StatusNotFound)
			return
		}
		stats := map[string]any{
			"status": index.Status(),
			"height": index.HeightStats(),
			"memory": index.MemoryStats(),
			"words":  index.WordMetrics(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	})
	http.HandleFunc("/{index}/words", func(w http.ResponseWriter, r *http.Request) {
		indexName := r.PathValue("index")
		index, ok := m.GetIndex(indexName)
		if !ok {
			http.Error(w, fmt.Sprintf("index %s not found", indexName), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(index.Words())
	})

	log.Printf("HTTP server listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
