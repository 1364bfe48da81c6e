package domain

import "testing"

func TestNewTaxonomyRejectsCaseInsensitiveDuplicates(t *testing.T) {
	_, err := NewTaxonomy([]Category{
		{Name: "Programming"},
		{Name: "programming"},
	})
	if err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestNewTaxonomyRejectsEmptyNames(t *testing.T) {
	if _, err := NewTaxonomy([]Category{{Name: "  "}}); err == nil {
		t.Fatalf("expected empty-name error")
	}
}

func TestLookupPrefersExactNameOverSubstring(t *testing.T) {
	taxonomy, err := NewTaxonomy([]Category{
		{Name: "Web"},
		{Name: "Web Development"},
	})
	if err != nil {
		t.Fatalf("NewTaxonomy() error = %v", err)
	}
	category, ok := taxonomy.Lookup("web development")
	if !ok || category.Name != "Web Development" {
		t.Fatalf("expected exact match Web Development, got %+v ok=%v", category, ok)
	}
}

func TestLookupFallsBackToSubstringMatch(t *testing.T) {
	category, ok := DefaultTaxonomy().Lookup("Practical Programming Techniques")
	if !ok || category.Name != "Programming" {
		t.Fatalf("expected substring match on Programming, got %+v ok=%v", category, ok)
	}
}

func TestLookupUnknownTopicFails(t *testing.T) {
	if _, ok := DefaultTaxonomy().Lookup("Ornithology"); ok {
		t.Fatalf("expected lookup miss")
	}
}

func TestDefaultTaxonomyCarriesSubdividedProgramming(t *testing.T) {
	category, ok := DefaultTaxonomy().Lookup("Programming")
	if !ok || !category.Subdivided {
		t.Fatalf("expected subdivided Programming category, got %+v ok=%v", category, ok)
	}
}

func TestWithCategoriesSkipsExistingAndEmpty(t *testing.T) {
	taxonomy := DefaultTaxonomy().WithCategories([]string{"Programming", "", "Cooking"})
	if _, ok := taxonomy.Lookup("Cooking"); !ok {
		t.Fatalf("expected Cooking added")
	}
	names := taxonomy.Names()
	count := 0
	for _, name := range names {
		if name == "Programming" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected Programming once, got %d", count)
	}
}
