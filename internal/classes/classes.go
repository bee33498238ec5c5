package classes

import "slices"

// Catalog is the immutable set of gesture class labels for one dataset run.
// Letter classes are expected under the alphabet source tree, number classes
// under the numbers source tree. Negative is the reserved "no gesture" label
// populated entirely with synthetic images.
type Catalog struct {
	Letters  []string
	Numbers  []string
	Negative string
}

// Default returns the class catalog used by the gesture recognizer:
// 13 letters, 8 numbers, plus the "None" background class.
func Default() Catalog {
	return Catalog{
		Letters:  []string{"A", "B", "C", "D", "H", "L", "M", "Q", "R", "S", "V", "W", "Y"},
		Numbers:  []string{"1", "2", "3", "4", "5", "6", "7", "8"},
		Negative: "None",
	}
}

// All returns every class label, letters first, then numbers, then the
// negative class.
func (c Catalog) All() []string {
	all := make([]string, 0, len(c.Letters)+len(c.Numbers)+1)
	all = append(all, c.Letters...)
	all = append(all, c.Numbers...)
	all = append(all, c.Negative)
	return all
}

// NumClasses returns the total number of classes, including the negative one.
func (c Catalog) NumClasses() int {
	return len(c.Letters) + len(c.Numbers) + 1
}

// Contains reports whether label is part of the catalog.
func (c Catalog) Contains(label string) bool {
	return label == c.Negative ||
		slices.Contains(c.Letters, label) ||
		slices.Contains(c.Numbers, label)
}

// Audit compares the class labels present in a dataset against the catalog.
// It returns the labels that are not part of the catalog, in input order, and
// the catalog classes with no examples, in All order.
func (c Catalog) Audit(present []string) (unknown, missing []string) {
	seen := make(map[string]bool, len(present))
	for _, label := range present {
		seen[label] = true
		if !c.Contains(label) {
			unknown = append(unknown, label)
		}
	}
	for _, class := range c.All() {
		if !seen[class] {
			missing = append(missing, class)
		}
	}
	return unknown, missing
}
