package catalog

import "testing"

func blpFixture() []BlpRate {
	return []BlpRate{
		{ID: 1, Specification: "Senior Engineer", Reference: "BLP-001", DailyRate: 1500000, IsActive: true},
		{ID: 2, Specification: "Driver", Reference: "BLP-002", DailyRate: 350000, IsActive: true},
		{ID: 3, Specification: "Junior engineer", Reference: "BLP-003", DailyRate: 800000, IsActive: false},
	}
}

func TestFilterBlpCaseInsensitive(t *testing.T) {
	entries := blpFixture()

	lower := FilterBlp(entries, "engineer")
	if len(lower) != 2 || lower[0].ID != 1 || lower[1].ID != 3 {
		t.Fatalf("expected entries 1 and 3 got %+v", lower)
	}

	upper := FilterBlp(entries, "ENGINEER")
	if len(upper) != len(lower) {
		t.Fatalf("expected case-insensitive match, got %d vs %d entries", len(upper), len(lower))
	}
	for i := range upper {
		if upper[i].ID != lower[i].ID {
			t.Fatalf("expected identical results regardless of case")
		}
	}
}

func TestFilterBlpEmptyQueryMatchesAll(t *testing.T) {
	entries := blpFixture()
	for _, query := range []string{"", "   ", "\t"} {
		got := FilterBlp(entries, query)
		if len(got) != len(entries) {
			t.Fatalf("query %q: expected all %d entries got %d", query, len(entries), len(got))
		}
	}
}

func TestFilterBlpNoMatch(t *testing.T) {
	if got := FilterBlp(blpFixture(), "surveyor"); len(got) != 0 {
		t.Fatalf("expected empty result got %+v", got)
	}
}

func TestFilterBlpPreservesOrder(t *testing.T) {
	entries := blpFixture()
	got := FilterBlp(entries, "e")
	for i := 1; i < len(got); i++ {
		if got[i-1].ID > got[i].ID {
			t.Fatalf("expected catalog order preserved, got %+v", got)
		}
	}
}

func TestFilterBlnp(t *testing.T) {
	entries := []BlnpRate{
		{ID: 1, ItemDescription: "Sewa kendaraan", IsAtCost: false, FixedValue: 750000},
		{ID: 2, ItemDescription: "Tiket pesawat", IsAtCost: true},
	}
	got := FilterBlnp(entries, "TIKET")
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected the at-cost ticket entry got %+v", got)
	}
	if all := FilterBlnp(entries, " "); len(all) != 2 {
		t.Fatalf("expected whitespace query to match all, got %d", len(all))
	}
}
