package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const Uncategorized = "Uncategorized"

var ErrInvalidURL = errors.New("invalid url")

// Category is a named list of domain substrings.
type Category struct {
	Name     string   `json:"name" yaml:"name"`
	Patterns []string `json:"patterns" yaml:"patterns"`
}

// CategoryMap keeps categories in insertion order; the first matching category wins.
// Overrides pin a single root domain to a category and are consulted first.
type CategoryMap struct {
	categories []Category
	index      map[string]int
	overrides  map[string]string
}

func NewCategoryMap() *CategoryMap {
	return &CategoryMap{
		index:     make(map[string]int),
		overrides: make(map[string]string),
	}
}

// DefaultCategories is the set seeded on first start.
func DefaultCategories() *CategoryMap {
	m := NewCategoryMap()
	m.Add("Work", "github.com", "docs.google.com", "trello.com", "slack.com")
	m.Add("Social", "facebook.com", "twitter.com", "instagram.com", "linkedin.com")
	m.Add("News", "news.google.com", "nytimes.com", "bbc.com", "cnn.com")
	m.Add("Entertainment", "youtube.com", "netflix.com", "hulu.com", "spotify.com")
	return m
}

// Add creates the category if needed and appends patterns not already present.
// It reports whether the category is new.
func (m *CategoryMap) Add(name string, patterns ...string) bool {
	name = strings.TrimSpace(name)
	i, ok := m.index[name]
	if !ok {
		m.categories = append(m.categories, Category{Name: name, Patterns: []string{}})
		i = len(m.categories) - 1
		m.index[name] = i
	}
	cat := &m.categories[i]
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || slices.Contains(cat.Patterns, p) {
			continue
		}
		cat.Patterns = append(cat.Patterns, p)
	}
	return !ok
}

func (m *CategoryMap) Has(name string) bool {
	_, ok := m.index[name]
	return ok
}

// SetOverride pins domain to category. The category is created when missing.
func (m *CategoryMap) SetOverride(domain, category string) {
	if category != Uncategorized && !m.Has(category) {
		m.Add(category)
	}
	m.overrides[strings.ToLower(domain)] = category
}

// Categories returns a copy in insertion order.
func (m *CategoryMap) Categories() []Category {
	out := make([]Category, len(m.categories))
	for i, c := range m.categories {
		out[i] = Category{Name: c.Name, Patterns: append([]string(nil), c.Patterns...)}
	}
	return out
}

func (m *CategoryMap) Overrides() map[string]string {
	out := make(map[string]string, len(m.overrides))
	for k, v := range m.overrides {
		out[k] = v
	}
	return out
}

// Classify maps a URL to a category. Unparsable URLs are classified by their raw text.
func (m *CategoryMap) Classify(rawURL string) string {
	domain, _ := RootDomain(rawURL)
	return m.ClassifyDomain(domain)
}

func (m *CategoryMap) ClassifyDomain(domain string) string {
	domain = strings.ToLower(domain)
	if c, ok := m.overrides[domain]; ok {
		return c
	}
	for _, c := range m.categories {
		for _, p := range c.Patterns {
			if strings.Contains(domain, p) {
				return c.Name
			}
		}
	}
	return Uncategorized
}

// RootDomain extracts the lower-cased hostname. When the URL cannot be parsed the trimmed
// raw string is returned together with ErrInvalidURL.
func RootDomain(rawURL string) (string, error) {
	raw := strings.TrimSpace(rawURL)
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw), fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return strings.ToLower(raw), fmt.Errorf("%w: %q has no host", ErrInvalidURL, rawURL)
	}
	return strings.ToLower(host), nil
}

type categoryMapJSON struct {
	Categories []Category        `json:"categories"`
	Overrides  map[string]string `json:"overrides,omitempty"`
}

// MarshalJSON encodes categories as a list so their order survives the round trip.
func (m *CategoryMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(categoryMapJSON{Categories: m.categories, Overrides: m.overrides})
}

func (m *CategoryMap) UnmarshalJSON(data []byte) error {
	var raw categoryMapJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = *NewCategoryMap()
	for _, c := range raw.Categories {
		m.Add(c.Name, c.Patterns...)
	}
	for d, c := range raw.Overrides {
		m.overrides[d] = c
	}
	return nil
}

// LoadYAML reads a category file of the form
//
//	Work:
//	  - github.com
//	Social:
//	  - twitter.com
//
// keeping the category order of the document.
func LoadYAML(r io.Reader) (*CategoryMap, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("categories: empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("categories: expected a mapping at line %d", root.Line)
	}
	m := NewCategoryMap()
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		var patterns []string
		if err := val.Decode(&patterns); err != nil {
			return nil, fmt.Errorf("categories: %s: %w", key.Value, err)
		}
		m.Add(key.Value, patterns...)
	}
	return m, nil
}
