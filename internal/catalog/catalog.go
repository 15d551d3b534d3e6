// package catalog filters and orders collections of custom lists
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/desertthunder/cinelist/internal/models"
)

// Engine applies a [models.Filter] to a collection of lists.
//
// Name ordering follows the collation rules of the engine's locale. Engine holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	tag language.Tag
}

// New creates an Engine for a BCP 47 locale such as "en" or "sv". Unparseable locales fall back to English.
func New(locale string) *Engine {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || tag == language.Und {
		tag = language.English
	}
	return &Engine{tag: tag}
}

// Locale returns the collation locale.
func (e *Engine) Locale() language.Tag { return e.tag }

// Apply returns a new slice holding the lists that pass every stage of f, in f's sort order.
//
// Stages run in a fixed order: search term, visibility, tags, then sort. Ties keep their input
// order. The input slice and its lists are never modified, and applying the same filter to the
// output yields the same output.
func (e *Engine) Apply(lists []models.CustomList, f models.Filter) []models.CustomList {
	fold := cases.Fold()
	term := fold.String(strings.TrimSpace(f.Search))

	var wantTags map[string]bool
	if len(f.Tags) > 0 {
		wantTags = make(map[string]bool, len(f.Tags))
		for _, t := range f.Tags {
			if t = fold.String(strings.TrimSpace(t)); t != "" {
				wantTags[t] = true
			}
		}
	}

	out := make([]models.CustomList, 0, len(lists))
	for _, l := range lists {
		if term != "" && !matchesSearch(fold, l, term) {
			continue
		}
		if f.Visibility != nil && l.IsPublic != *f.Visibility {
			continue
		}
		if len(wantTags) > 0 && !sharesTag(fold, l, wantTags) {
			continue
		}
		out = append(out, l.Clone())
	}

	slices.SortStableFunc(out, e.comparator(f.Sort))
	return out
}

func matchesSearch(fold cases.Caser, l models.CustomList, term string) bool {
	if strings.Contains(fold.String(l.Name), term) || strings.Contains(fold.String(l.Description), term) {
		return true
	}
	return slices.ContainsFunc(l.Tags, func(tag string) bool {
		return strings.Contains(fold.String(tag), term)
	})
}

func sharesTag(fold cases.Caser, l models.CustomList, want map[string]bool) bool {
	return slices.ContainsFunc(l.Tags, func(tag string) bool {
		return want[fold.String(strings.TrimSpace(tag))]
	})
}

func (e *Engine) comparator(key models.SortKey) func(a, b models.CustomList) int {
	switch key {
	case models.SortName:
		col := collate.New(e.tag)
		return func(a, b models.CustomList) int {
			return col.CompareString(a.Name, b.Name)
		}
	case models.SortItemCount:
		return func(a, b models.CustomList) int {
			return cmp.Compare(len(b.Items), len(a.Items))
		}
	case models.SortCreated:
		return func(a, b models.CustomList) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	default:
		// recent and updated share an ordering
		return func(a, b models.CustomList) int {
			return b.UpdatedAt.Compare(a.UpdatedAt)
		}
	}
}

// Apply filters and sorts with English collation.
func Apply(lists []models.CustomList, f models.Filter) []models.CustomList {
	return New("en").Apply(lists, f)
}
