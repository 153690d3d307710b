package directory

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"stockscope/internal/domain"
)

// indexDoc is the document shape stored in the search index. The document
// ID is the symbol.
type indexDoc struct {
	Ticker      string `json:"ticker"`
	Description string `json:"description"`
}

// searchIndex is an in-memory full-text index over one listing.
type searchIndex struct {
	index bleve.Index
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	// Whole lower-cased ticker as one term so prefix queries match "AA" -> "AAPL".
	tickerField := bleve.NewTextFieldMapping()
	tickerField.Analyzer = "keyword"
	docMapping.AddFieldMappingsAt("ticker", tickerField)

	descField := bleve.NewTextFieldMapping()
	descField.Analyzer = "standard"
	docMapping.AddFieldMappingsAt("description", descField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func newSearchIndex(entries []domain.SymbolEntry) (*searchIndex, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	batch := idx.NewBatch()
	for _, e := range entries {
		doc := indexDoc{Ticker: strings.ToLower(e.Symbol), Description: e.Description}
		if err := batch.Index(e.Symbol, doc); err != nil {
			return nil, fmt.Errorf("adding %s to batch: %w", e.Symbol, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("executing batch: %w", err)
	}
	return &searchIndex{index: idx}, nil
}

// search returns matching symbols, best score first.
func (s *searchIndex) search(q string, limit int) ([]string, error) {
	lower := strings.ToLower(q)

	exact := bleve.NewTermQuery(lower)
	exact.SetField("ticker")
	exact.SetBoost(10)

	prefix := bleve.NewPrefixQuery(lower)
	prefix.SetField("ticker")
	prefix.SetBoost(3)

	desc := bleve.NewMatchQuery(q)
	desc.SetField("description")

	queries := []query.Query{exact, prefix, desc}
	// Single-word queries also match the start of description words.
	if !strings.ContainsAny(lower, " \t") {
		descPrefix := bleve.NewPrefixQuery(lower)
		descPrefix.SetField("description")
		queries = append(queries, descPrefix)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(queries...), limit, 0, false)
	res, err := s.index.Search(req)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
