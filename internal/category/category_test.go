package category

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"plutoiptv/internal/feed"
)

func defaultMapper(t *testing.T) *Mapper {
	t.Helper()
	table, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}
	return NewMapper(table)
}

func TestDefaultTableMergesRepeatedNames(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}
	seen := map[string]bool{}
	for _, name := range table.Names() {
		if seen[name] {
			t.Fatalf("category %q listed twice", name)
		}
		seen[name] = true
	}
	names := table.Names()
	if names[0] != "Action" || names[len(names)-1] != "Sports" {
		t.Fatalf("unexpected table order %v", names)
	}
}

func TestClassifyUsesTableOrderWithoutRepeats(t *testing.T) {
	mapper := defaultMapper(t)
	episode := feed.Episode{
		Genre:    "Sci-Fi & Fantasy",
		SubGenre: "Action Sci-Fi & Fantasy",
		Series:   feed.Series{Type: "film"},
	}

	got := mapper.Classify(episode, "Movies")
	want := []string{"Action", "Science fiction", "Fantasy", "Drama"}
	if !reflect.DeepEqual(got.Categories, want) {
		t.Fatalf("categories = %v, want %v", got.Categories, want)
	}
	if !got.Movie || got.Kind() != KindMovie {
		t.Fatalf("expected movie classification, got %+v", got)
	}
}

func TestClassifyIncludesChannelCategory(t *testing.T) {
	mapper := defaultMapper(t)
	episode := feed.Episode{Genre: "Talk Show", Series: feed.Series{Type: "tv"}}

	got := mapper.Classify(episode, "General News")
	want := []string{"News", "Talk"}
	if !reflect.DeepEqual(got.Categories, want) {
		t.Fatalf("categories = %v, want %v", got.Categories, want)
	}
	if got.Kind() != KindSeries {
		t.Fatalf("expected series, got %s", got.Kind())
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	mapper := defaultMapper(t)
	episode := feed.Episode{Genre: "Documentaries", SubGenre: "Sports Documentaries"}
	first := mapper.Classify(episode, "Sports")
	for i := 0; i < 20; i++ {
		if got := mapper.Classify(episode, "Sports"); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v vs %v", i, got, first)
		}
	}
}

func TestClassifyUnknownGenresOnlyTagKind(t *testing.T) {
	mapper := defaultMapper(t)
	got := mapper.Classify(feed.Episode{Genre: "Unheard Of", SubGenre: feed.NoInformation}, "")
	if len(got.Categories) != 0 {
		t.Fatalf("expected no canonical categories, got %v", got.Categories)
	}
}

func TestLoadCustomTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	data := []byte(`categories:
  - name: Kids
    match: [Cartoons]
  - name: Learning
    match: [Education]
  - name: Kids
    match: [Animals]
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(table.Names(), []string{"Kids", "Learning"}) {
		t.Fatalf("unexpected names %v", table.Names())
	}
	got := NewMapper(table).Classify(feed.Episode{Genre: "Education", SubGenre: "Animals"}, "")
	if !reflect.DeepEqual(got.Categories, []string{"Kids", "Learning"}) {
		t.Fatalf("categories = %v", got.Categories)
	}
}

func TestParseRejectsInvalidTables(t *testing.T) {
	for _, data := range []string{"", "categories: []", "categories:\n  - match: [x]\n", "categories: {"} {
		if _, err := Parse([]byte(data)); err == nil {
			t.Fatalf("expected error for %q", data)
		}
	}
}
