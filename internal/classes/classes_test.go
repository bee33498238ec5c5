package classes

import (
	"slices"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	if len(c.Letters) != 13 {
		t.Errorf("Expected 13 letter classes, got %d", len(c.Letters))
	}
	if len(c.Numbers) != 8 {
		t.Errorf("Expected 8 number classes, got %d", len(c.Numbers))
	}
	if c.Negative != "None" {
		t.Errorf("Negative class = %q, want None", c.Negative)
	}
	if c.NumClasses() != 22 {
		t.Errorf("NumClasses() = %d, want 22", c.NumClasses())
	}
}

func TestAllOrder(t *testing.T) {
	c := Default()
	all := c.All()

	if len(all) != c.NumClasses() {
		t.Fatalf("All() returned %d classes, want %d", len(all), c.NumClasses())
	}
	// Letters first, then numbers, negative last.
	if all[0] != "A" {
		t.Errorf("First class = %q, want A", all[0])
	}
	if all[len(all)-1] != "None" {
		t.Errorf("Last class = %q, want None", all[len(all)-1])
	}
	if idx := slices.Index(all, "1"); idx != len(c.Letters) {
		t.Errorf("Class 1 at index %d, want %d", idx, len(c.Letters))
	}
}

func TestAudit(t *testing.T) {
	c := Catalog{
		Letters:  []string{"A", "B"},
		Numbers:  []string{"1"},
		Negative: "None",
	}

	unknown, missing := c.Audit([]string{"A", "Z", "None", "9"})
	if !slices.Equal(unknown, []string{"Z", "9"}) {
		t.Errorf("Unknown classes = %v, want [Z 9]", unknown)
	}
	if !slices.Equal(missing, []string{"B", "1"}) {
		t.Errorf("Missing classes = %v, want [B 1]", missing)
	}

	unknown, missing = c.Audit([]string{"A", "B", "1", "None"})
	if len(unknown) != 0 || len(missing) != 0 {
		t.Errorf("Complete dataset reported unknown=%v missing=%v", unknown, missing)
	}
}

func TestContains(t *testing.T) {
	c := Default()

	for _, tt := range []struct {
		class string
		want  bool
	}{
		{"A", true},
		{"8", true},
		{"None", true},
		{"Z", false},
		{"9", false},
		{"", false},
	} {
		if got := c.Contains(tt.class); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}
