package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bengkel-bot/internal/models"

	"go.uber.org/zap"
)

// ErrDataUnavailable means neither the database nor a document could supply
// rows. Callers treat it as an empty corpus.
var ErrDataUnavailable = errors.New("corpus data unavailable")

var documentExtensions = []string{".json", ".yaml", ".yml"}

type KnowledgeSource interface {
	ListByDomain(ctx context.Context, domain models.Domain) ([]models.KnowledgeEntry, error)
}

type PriceSource interface {
	List(ctx context.Context) ([]models.PriceEntry, error)
}

// Store loads domain corpora and the price table, preferring the database and
// falling back to structured documents under a directory.
type Store struct {
	knowledge     KnowledgeSource
	prices        PriceSource
	documentDir   string
	priceDocument string
	logger        *zap.Logger
}

// NewStore accepts nil sources; a Store without sources reads documents only.
func NewStore(knowledge KnowledgeSource, prices PriceSource, documentDir, priceDocument string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		knowledge:     knowledge,
		prices:        prices,
		documentDir:   documentDir,
		priceDocument: priceDocument,
		logger:        logger,
	}
}

// LoadDomain returns the ordered corpus of domain. Blank keywords are
// replaced by models.NoKeyword. When nothing can be loaded the result is
// empty and the error wraps ErrDataUnavailable.
func (s *Store) LoadDomain(ctx context.Context, domain models.Domain) ([]models.KnowledgeEntry, error) {
	if !domain.Valid() {
		return nil, fmt.Errorf("unknown domain %q", domain)
	}

	if s.knowledge != nil {
		entries, err := s.knowledge.ListByDomain(ctx, domain)
		switch {
		case err != nil:
			s.logger.Warn("Domain table unavailable, trying documents",
				zap.String("domain", string(domain)), zap.Error(err))
		case len(entries) == 0:
			s.logger.Warn("Domain table empty, trying documents",
				zap.String("domain", string(domain)))
		default:
			return withKeywords(entries, domain), nil
		}
	}

	entries, err := s.loadDocuments(domain)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", domain, ErrDataUnavailable)
	}
	return withKeywords(entries, domain), nil
}

// LoadAll loads every domain. Unavailable domains map to an empty corpus.
func (s *Store) LoadAll(ctx context.Context) map[models.Domain][]models.KnowledgeEntry {
	out := make(map[models.Domain][]models.KnowledgeEntry, len(models.Domains()))
	for _, d := range models.Domains() {
		entries, err := s.LoadDomain(ctx, d)
		if err != nil {
			s.logger.Warn("Domain corpus unavailable, serving empty corpus",
				zap.String("domain", string(d)), zap.Error(err))
		} else {
			s.logger.Info("Domain corpus loaded",
				zap.String("domain", string(d)), zap.Int("entries", len(entries)))
		}
		out[d] = entries
	}
	return out
}

// LoadPrices returns the price rows from the database or the price document.
// Missing prices are not an error: placeholders then stay verbatim.
func (s *Store) LoadPrices(ctx context.Context) []models.PriceEntry {
	if s.prices != nil {
		prices, err := s.prices.List(ctx)
		if err == nil && len(prices) > 0 {
			return prices
		}
		s.logger.Warn("Price table unavailable, trying price document", zap.Error(err))
	}

	if s.priceDocument == "" {
		return nil
	}
	raw, err := os.ReadFile(s.priceDocument)
	if err != nil {
		s.logger.Warn("Price document unavailable", zap.String("path", s.priceDocument), zap.Error(err))
		return nil
	}
	prices, err := ParsePrices(raw)
	if err != nil {
		s.logger.Warn("Price document unreadable", zap.String("path", s.priceDocument), zap.Error(err))
		return nil
	}
	return prices
}

// DocumentPaths lists the documents backing domain: <dir>/<domain>.<ext> and
// every document inside <dir>/<domain>/, in name order.
func (s *Store) DocumentPaths(domain models.Domain) []string {
	if s.documentDir == "" {
		return nil
	}

	var paths []string
	for _, ext := range documentExtensions {
		p := filepath.Join(s.documentDir, string(domain)+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			paths = append(paths, p)
		}
	}

	dir := filepath.Join(s.documentDir, string(domain))
	items, err := os.ReadDir(dir)
	if err != nil {
		return paths
	}
	var nested []string
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		for _, ext := range documentExtensions {
			if filepath.Ext(item.Name()) == ext {
				nested = append(nested, filepath.Join(dir, item.Name()))
			}
		}
	}
	sort.Strings(nested)
	return append(paths, nested...)
}

func (s *Store) loadDocuments(domain models.Domain) ([]models.KnowledgeEntry, error) {
	paths := s.DocumentPaths(domain)
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: no document: %w", domain, ErrDataUnavailable)
	}

	var all []models.KnowledgeEntry
	for _, p := range paths {
		entries, err := readDocument(p, domain)
		if err != nil {
			// A broken file fails the whole domain rather than serving a
			// partial corpus.
			return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
		}
		all = append(all, entries...)
	}
	return all, nil
}

func withKeywords(entries []models.KnowledgeEntry, domain models.Domain) []models.KnowledgeEntry {
	for i := range entries {
		entries[i].Domain = domain
		if strings.TrimSpace(entries[i].Keyword) == "" {
			entries[i].Keyword = models.NoKeyword
		}
	}
	return entries
}
