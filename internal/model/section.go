package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Section is the closed set of inventory partitions. Espresso and SingleOrigin
// hold drinks (sold by usage-per-cup), Beans holds packaged goods (sold by
// packaging grams). Exhaustive switches over Section replace the stringly-typed
// category tags older clients wrote into the documents.
type Section int

const (
	SectionEspresso Section = iota
	SectionSingleOrigin
	SectionBeans
)

// Sections lists every section in document order.
var Sections = []Section{SectionEspresso, SectionSingleOrigin, SectionBeans}

// IsBean reports whether products in this section are packaged goods.
func (s Section) IsBean() bool { return s == SectionBeans }

func (s Section) String() string {
	switch s {
	case SectionEspresso:
		return "espresso"
	case SectionSingleOrigin:
		return "single_origin"
	case SectionBeans:
		return "beans"
	default:
		return "unknown"
	}
}

func (s Section) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the canonical tags plus the legacy spellings found in
// documents written by older clients ("HandDrip" for single-origin drinks,
// "drinks" for espresso).
func (s *Section) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSection(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSection maps a wire tag to a Section.
func ParseSection(tag string) (Section, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "espresso", "drinks":
		return SectionEspresso, nil
	case "single_origin", "singleorigin", "handdrip":
		return SectionSingleOrigin, nil
	case "beans", "bean":
		return SectionBeans, nil
	default:
		return 0, fmt.Errorf("unknown section tag %q", tag)
	}
}
