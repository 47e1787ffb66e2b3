package corpus

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"bengkel-bot/internal/models"

	"gopkg.in/yaml.v3"
)

var keywordTag = regexp.MustCompile(`\[Keyword:\s*(.*?)\]`)

// Document is a SQuAD-style question answering dataset. JSON is valid YAML,
// so both encodings decode through the same path.
type Document struct {
	Data []Article `yaml:"data"`
}

type Article struct {
	Title      string      `yaml:"title"`
	Paragraphs []Paragraph `yaml:"paragraphs"`
}

type Paragraph struct {
	Context string `yaml:"context"`
	Keyword string `yaml:"keyword"`
	QAs     []QA   `yaml:"qas"`
}

type QA struct {
	ID       string   `yaml:"id"`
	Question string   `yaml:"question"`
	Answers  []Answer `yaml:"answers"`
}

type Answer struct {
	Text        string `yaml:"text"`
	AnswerStart int    `yaml:"answer_start"`
}

type priceRecord struct {
	Placeholder string `yaml:"placeholder"`
	Price       string `yaml:"harga"`
	SourceFile  string `yaml:"source_file"`
}

// KeywordFromContext returns the label inside a "[Keyword: ...]" tag, or ""
// when the context carries none.
func KeywordFromContext(context string) string {
	m := keywordTag.FindStringSubmatch(context)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ParseDocument decodes raw and flattens it into entries, one per question.
// A paragraph without questions still yields one entry so its passage stays
// retrievable.
func ParseDocument(raw []byte, domain models.Domain) ([]models.KnowledgeEntry, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	var entries []models.KnowledgeEntry
	for _, article := range doc.Data {
		for _, p := range article.Paragraphs {
			keyword := strings.TrimSpace(p.Keyword)
			if keyword == "" {
				keyword = KeywordFromContext(p.Context)
			}

			base := models.KnowledgeEntry{
				Domain:   domain,
				Category: article.Title,
				Context:  p.Context,
				Keyword:  keyword,
			}
			if len(p.QAs) == 0 {
				entries = append(entries, base)
				continue
			}
			for _, qa := range p.QAs {
				e := base
				e.OriginID = qa.ID
				e.Question = qa.Question
				if len(qa.Answers) > 0 {
					e.Answer = qa.Answers[0].Text
				}
				entries = append(entries, e)
			}
		}
	}
	return entries, nil
}

// ParsePrices decodes a list of {placeholder, harga} records.
func ParsePrices(raw []byte) ([]models.PriceEntry, error) {
	var records []priceRecord
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode price document: %w", err)
	}

	prices := make([]models.PriceEntry, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Placeholder) == "" {
			continue
		}
		prices = append(prices, models.PriceEntry{Placeholder: r.Placeholder, Price: r.Price})
	}
	return prices, nil
}

func readDocument(path string, domain models.Domain) ([]models.KnowledgeEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries, err := ParseDocument(raw, domain)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}
