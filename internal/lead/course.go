package lead

// Course names one offering on the landing page.  The value is the exact
// label shown in the course select and stored in the sheet.
type Course string

// DefaultCourses is the catalog published on the pricing section.
var DefaultCourses = Catalog{
	"BAC la Istoria Românilor și Universală",
	"BAC la Limba și Literatura Română",
	"BAC la Matematică",
	"BAC la Limba Străină",
	"BAC la Geografie",
	"BAC la Chimie",
	"BAC la Biologie",
	"BAC la Informatică",
	"Examenul de clasa 9-a",
}

// Catalog is an ordered set of courses.
type Catalog []Course

// NewCatalog builds a catalog from labels, dropping blanks and duplicates.
// An empty result falls back to DefaultCourses.
func NewCatalog(labels []string) Catalog {
	seen := make(map[string]struct{}, len(labels))
	var out Catalog
	for _, l := range labels {
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, Course(l))
	}
	if len(out) == 0 {
		return DefaultCourses
	}
	return out
}

// Contains reports whether name is one of the catalog's courses.
func (c Catalog) Contains(name string) bool {
	for _, co := range c {
		if string(co) == name {
			return true
		}
	}
	return false
}

// Labels returns the course names as plain strings.
func (c Catalog) Labels() []string {
	out := make([]string, len(c))
	for i, co := range c {
		out[i] = string(co)
	}
	return out
}
