package catalog

import (
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/cinelist/internal/models"
)

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func at(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

func names(lists []models.CustomList) []string {
	out := make([]string, len(lists))
	for i, l := range lists {
		out[i] = l.Name
	}
	return out
}

func items(n int) []models.CustomListItem {
	out := make([]models.CustomListItem, n)
	for i := range out {
		out[i] = models.CustomListItem{MovieID: int64(i + 1)}
	}
	return out
}

func fixture() []models.CustomList {
	return []models.CustomList{
		{ID: "1", Name: "Heists", Description: "Crews and vaults", IsPublic: true, Tags: []string{"crime"}, CreatedAt: at(1), UpdatedAt: at(5), Items: items(3)},
		{ID: "2", Name: "annual rewatch", Description: "Every December", IsPublic: false, Tags: []string{"holiday"}, CreatedAt: at(2), UpdatedAt: at(2), Items: items(1)},
		{ID: "3", Name: "Noir", Description: "Shadows", IsPublic: true, Tags: []string{"Crime", "classic"}, CreatedAt: at(3), UpdatedAt: at(9), Items: items(5)},
		{ID: "4", Name: "Slow cinema", Description: "Long takes", IsPublic: false, CreatedAt: at(4), UpdatedAt: at(1)},
	}
}

func TestApply(t *testing.T) {
	t.Run("name and recent scenario", func(t *testing.T) {
		lists := []models.CustomList{
			{Name: "B", UpdatedAt: at(1)},
			{Name: "A", UpdatedAt: at(2)},
		}

		if got := names(Apply(lists, models.Filter{Sort: models.SortName})); !slices.Equal(got, []string{"A", "B"}) {
			t.Errorf("name sort = %v, want [A B]", got)
		}

		recent := Apply(lists, models.Filter{})
		if !recent[0].UpdatedAt.Equal(at(2)) {
			t.Errorf("default sort should put the latest update first, got %v", names(recent))
		}
	})

	t.Run("sort orders", func(t *testing.T) {
		tc := []struct {
			key  models.SortKey
			want []string
		}{
			{key: models.SortRecent, want: []string{"Noir", "Heists", "annual rewatch", "Slow cinema"}},
			{key: models.SortUpdated, want: []string{"Noir", "Heists", "annual rewatch", "Slow cinema"}},
			{key: models.SortName, want: []string{"annual rewatch", "Heists", "Noir", "Slow cinema"}},
			{key: models.SortItemCount, want: []string{"Noir", "Heists", "annual rewatch", "Slow cinema"}},
			{key: models.SortCreated, want: []string{"Slow cinema", "Noir", "annual rewatch", "Heists"}},
		}

		for _, tt := range tc {
			t.Run(tt.key.String(), func(t *testing.T) {
				if got := names(Apply(fixture(), models.Filter{Sort: tt.key})); !slices.Equal(got, tt.want) {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("search matches name, description or tag case-insensitively", func(t *testing.T) {
		tc := []struct {
			search string
			want   []string
		}{
			{search: "NOIR", want: []string{"Noir"}},
			{search: "vault", want: []string{"Heists"}},
			{search: "crime", want: []string{"Noir", "Heists"}},
			{search: "  ", want: []string{"Noir", "Heists", "annual rewatch", "Slow cinema"}},
			{search: "western", want: []string{}},
		}

		for _, tt := range tc {
			t.Run(tt.search, func(t *testing.T) {
				if got := names(Apply(fixture(), models.Filter{Search: tt.search})); !slices.Equal(got, tt.want) {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("visibility", func(t *testing.T) {
		private := false
		got := names(Apply(fixture(), models.Filter{Visibility: &private, Sort: models.SortName}))
		if !slices.Equal(got, []string{"annual rewatch", "Slow cinema"}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("tags keep lists sharing any tag", func(t *testing.T) {
		got := names(Apply(fixture(), models.Filter{Tags: []string{"CRIME", "holiday"}, Sort: models.SortName}))
		if !slices.Equal(got, []string{"annual rewatch", "Heists", "Noir"}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("stages combine", func(t *testing.T) {
		public := true
		got := names(Apply(fixture(), models.Filter{Search: "s", Visibility: &public, Tags: []string{"classic"}}))
		if !slices.Equal(got, []string{"Noir"}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		for key := models.SortRecent; key <= models.SortUpdated; key++ {
			f := models.Filter{Sort: key, Search: "e"}
			once := Apply(fixture(), f)
			twice := Apply(once, f)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("%s: second pass changed order: %v vs %v", key, names(once), names(twice))
			}
		}
	})

	t.Run("ties keep input order", func(t *testing.T) {
		lists := []models.CustomList{
			{ID: "x", Name: "Same", UpdatedAt: at(1)},
			{ID: "y", Name: "Same", UpdatedAt: at(1)},
			{ID: "z", Name: "Same", UpdatedAt: at(1)},
		}
		for _, key := range []models.SortKey{models.SortRecent, models.SortName, models.SortItemCount} {
			got := Apply(lists, models.Filter{Sort: key})
			if got[0].ID != "x" || got[1].ID != "y" || got[2].ID != "z" {
				t.Errorf("%s: ties reordered", key)
			}
		}
	})

	t.Run("input untouched", func(t *testing.T) {
		in := fixture()
		snapshot := models.CloneLists(in)
		out := Apply(in, models.Filter{Sort: models.SortName})
		out[0].Name = "mutated"
		out[0].Tags = append(out[0].Tags, "x")

		if !reflect.DeepEqual(in, snapshot) {
			t.Error("Apply modified its input")
		}
	})
}

func TestLocale(t *testing.T) {
	lists := []models.CustomList{{Name: "Zebra"}, {Name: "Ärlig"}, {Name: "Ask"}}
	f := models.Filter{Sort: models.SortName}

	if got := names(New("en").Apply(lists, f)); !slices.Equal(got, []string{"Ärlig", "Ask", "Zebra"}) {
		t.Errorf("en order = %v", got)
	}
	if got := names(New("sv").Apply(lists, f)); !slices.Equal(got, []string{"Ask", "Zebra", "Ärlig"}) {
		t.Errorf("sv order = %v", got)
	}
	if New("not a locale!").Locale().String() != "en" {
		t.Error("invalid locale should fall back to en")
	}
}
