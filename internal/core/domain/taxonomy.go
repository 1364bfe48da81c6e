package domain

import (
	"fmt"
	"strings"
)

// FallbackCategoryName is where books land when no taxonomy entry matches.
const FallbackCategoryName = "Unclassified"

// Category is one taxonomy entry. Subdivided categories accept a second
// path segment derived from the classified language or technology.
type Category struct {
	Name       string   `yaml:"name" json:"name"`
	Aliases    []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Subdivided bool     `yaml:"subdivided,omitempty" json:"subdivided,omitempty"`
}

// Taxonomy is an ordered set of categories with case-insensitive-unique
// names. Order matters for substring matching: earlier entries win.
type Taxonomy struct {
	categories []Category
}

// NewTaxonomy validates uniqueness of category names, case-insensitively.
func NewTaxonomy(categories []Category) (Taxonomy, error) {
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if key == "" {
			return Taxonomy{}, fmt.Errorf("taxonomy category with empty name")
		}
		if _, dup := seen[key]; dup {
			return Taxonomy{}, fmt.Errorf("duplicate taxonomy category %q", c.Name)
		}
		seen[key] = struct{}{}
	}
	return Taxonomy{categories: categories}, nil
}

// Names returns category names in taxonomy order.
func (t Taxonomy) Names() []string {
	names := make([]string, 0, len(t.categories))
	for _, c := range t.categories {
		names = append(names, c.Name)
	}
	return names
}

// Lookup resolves a classified topic to a category: exact name match first,
// then exact alias match, then substring match in either direction.
func (t Taxonomy) Lookup(topic string) (Category, bool) {
	folded := strings.ToLower(strings.TrimSpace(topic))
	if folded == "" {
		return Category{}, false
	}
	for _, c := range t.categories {
		if strings.ToLower(c.Name) == folded {
			return c, true
		}
	}
	for _, c := range t.categories {
		for _, alias := range c.Aliases {
			if strings.ToLower(alias) == folded {
				return c, true
			}
		}
	}
	for _, c := range t.categories {
		name := strings.ToLower(c.Name)
		if strings.Contains(folded, name) || strings.Contains(name, folded) {
			return c, true
		}
		for _, alias := range c.Aliases {
			a := strings.ToLower(alias)
			if strings.Contains(folded, a) || strings.Contains(a, folded) {
				return c, true
			}
		}
	}
	return Category{}, false
}

// WithCategories appends extra categories, skipping names already present.
func (t Taxonomy) WithCategories(names []string) Taxonomy {
	out := append([]Category(nil), t.categories...)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := t.Lookup(name); ok {
			continue
		}
		out = append(out, Category{Name: name})
	}
	return Taxonomy{categories: out}
}

// DefaultTaxonomy is the built-in Dewey-inspired subject set. It is policy
// data: instruction directives and config files may replace it wholesale.
func DefaultTaxonomy() Taxonomy {
	t, err := NewTaxonomy([]Category{
		{Name: "Programming", Subdivided: true, Aliases: []string{
			"software development", "coding", "computer programming",
			"python", "javascript", "typescript", "java", "c++", "c#",
			"golang", "rust", "ruby", "php", "swift", "kotlin", "scala",
			"haskell",
		}},
		{Name: "Web Development", Subdivided: true, Aliases: []string{
			"web", "frontend", "backend", "html", "css", "react", "angular",
			"vue", "node.js",
		}},
		{Name: "Databases", Aliases: []string{"sql", "database design", "data modeling"}},
		{Name: "Data Science", Subdivided: true, Aliases: []string{
			"machine learning", "artificial intelligence", "statistics",
			"data analysis",
		}},
		{Name: "Networking", Aliases: []string{"computer networks", "tcp/ip"}},
		{Name: "Security", Aliases: []string{"cryptography", "information security", "hacking"}},
		{Name: "Operating Systems", Aliases: []string{"linux", "unix", "windows internals"}},
		{Name: "Software Engineering", Aliases: []string{"architecture", "design patterns", "testing", "devops"}},
		{Name: "Mathematics", Aliases: []string{"math", "algebra", "calculus"}},
		{Name: "Science", Aliases: []string{"physics", "chemistry", "biology"}},
		{Name: "Business", Aliases: []string{"management", "economics", "finance"}},
		{Name: "Reference", Aliases: []string{"dictionary", "encyclopedia", "manual"}},
	})
	if err != nil {
		// The built-in set is validated by tests; reaching this is a bug.
		panic(err)
	}
	return t
}

// ProgrammingTopics is the topic set selected by "only programming books"
// style scope restrictions.
func ProgrammingTopics() []string {
	return []string{
		"programming", "software", "coding", "python", "javascript",
		"typescript", "java", "c", "c++", "c#", "go", "golang", "rust",
		"ruby", "php", "swift", "kotlin", "scala", "haskell", "sql",
		"web development", "software engineering", "algorithms", "databases",
		"devops",
	}
}
