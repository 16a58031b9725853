package search

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Field weights used for in-memory relevance.
const (
	nameWeight     = 3
	genericWeight  = 2
	brandWeight    = 1
	categoryWeight = 1
)

// MemoryIndex is an in-process Index used in development and tests. Every
// query term must appear in at least one searchable field.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[uint]Document
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: make(map[uint]Document)}
}

func (m *MemoryIndex) BulkIndex(_ context.Context, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range docs {
		m.docs[docs[i].ID] = docs[i]
	}
	return nil
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

type scoredDocument struct {
	doc   Document
	score int
}

func (m *MemoryIndex) Search(_ context.Context, query string, page, perPage int) (*Result, error) {
	page, perPage = normalizePaging(page, perPage)
	terms := strings.Fields(strings.ToLower(query))

	m.mu.RLock()
	matched := make([]scoredDocument, 0)
	for _, doc := range m.docs {
		if score, ok := relevance(doc, terms); ok {
			matched = append(matched, scoredDocument{doc: doc, score: score})
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.doc.NutriscoreGrade != b.doc.NutriscoreGrade {
			return a.doc.NutriscoreGrade < b.doc.NutriscoreGrade
		}
		if a.doc.Name != b.doc.Name {
			return a.doc.Name < b.doc.Name
		}
		return a.doc.ID < b.doc.ID
	})

	total := len(matched)
	offset := (page - 1) * perPage
	if offset > total {
		offset = total
	}
	end := offset + perPage
	if end > total {
		end = total
	}

	hits := make([]Document, 0, end-offset)
	for _, s := range matched[offset:end] {
		hits = append(hits, s.doc)
	}

	return &Result{
		Hits:       hits,
		TotalHits:  total,
		TotalPages: totalPages(total, perPage),
		Page:       page,
		PerPage:    perPage,
	}, nil
}

func relevance(doc Document, terms []string) (int, bool) {
	if len(terms) == 0 {
		return 0, false
	}

	name := strings.ToLower(doc.Name)
	generic := strings.ToLower(doc.GenericName)
	brands := strings.ToLower(doc.Brands)
	categories := strings.ToLower(strings.Join(doc.CategoryNames, " "))

	score := 0
	for _, term := range terms {
		termScore := 0
		if strings.Contains(name, term) {
			termScore += nameWeight
		}
		if strings.Contains(generic, term) {
			termScore += genericWeight
		}
		if strings.Contains(brands, term) {
			termScore += brandWeight
		}
		if strings.Contains(categories, term) {
			termScore += categoryWeight
		}
		if termScore == 0 {
			return 0, false
		}
		score += termScore
	}
	return score, true
}
