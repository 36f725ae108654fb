package domain

import (
	"errors"
	"fmt"
	"strings"
)

// SchemeDefinition describes one government scheme the assistant knows about.
// Keywords are matched against user questions; Enrichment is appended to the
// question before embedding to pull retrieval toward the scheme's vocabulary.
type SchemeDefinition struct {
	Key         string   `yaml:"key"`
	DisplayName string   `yaml:"display_name"`
	Keywords    []string `yaml:"keywords"`
	Enrichment  string   `yaml:"enrichment"`
}

// SchemeTable is the ordered, immutable set of scheme definitions loaded at
// startup. Order matters: Detect returns the first scheme with a keyword hit,
// so table order is the priority policy for questions that mention several
// schemes. Safe for unsynchronized concurrent reads.
type SchemeTable struct {
	defs  []SchemeDefinition
	byKey map[string]int
}

func NewSchemeTable(defs []SchemeDefinition) (*SchemeTable, error) {
	if len(defs) == 0 {
		return nil, WrapError(ErrConfiguration, "build scheme table", errors.New("no scheme definitions"))
	}

	byKey := make(map[string]int, len(defs))
	for i, def := range defs {
		if strings.TrimSpace(def.Key) == "" {
			return nil, WrapError(ErrConfiguration, "build scheme table", fmt.Errorf("definition %d has empty key", i))
		}
		if _, dup := byKey[def.Key]; dup {
			return nil, WrapError(ErrConfiguration, "build scheme table", fmt.Errorf("duplicate scheme key %q", def.Key))
		}
		if len(def.Keywords) == 0 {
			return nil, WrapError(ErrConfiguration, "build scheme table", fmt.Errorf("scheme %q has no keywords", def.Key))
		}
		if strings.TrimSpace(def.DisplayName) == "" {
			return nil, WrapError(ErrConfiguration, "build scheme table", fmt.Errorf("scheme %q has empty display name", def.Key))
		}
		if strings.TrimSpace(def.Enrichment) == "" {
			return nil, WrapError(ErrConfiguration, "build scheme table", fmt.Errorf("scheme %q has empty enrichment phrase", def.Key))
		}
		byKey[def.Key] = i
	}

	copied := make([]SchemeDefinition, len(defs))
	copy(copied, defs)
	return &SchemeTable{defs: copied, byKey: byKey}, nil
}

// Detect returns the key of the first scheme with any keyword contained in
// the question, case-insensitively. First match wins.
func (t *SchemeTable) Detect(question string) (string, bool) {
	q := strings.ToLower(question)
	for _, def := range t.defs {
		for _, kw := range def.Keywords {
			if strings.Contains(q, strings.ToLower(kw)) {
				return def.Key, true
			}
		}
	}
	return "", false
}

// Enrich appends the scheme's enrichment phrase to the question. Unknown or
// empty keys leave the question untouched.
func (t *SchemeTable) Enrich(question, schemeKey string) string {
	idx, ok := t.byKey[schemeKey]
	if !ok {
		return question
	}
	return question + " " + t.defs[idx].Enrichment
}

// DisplayName resolves a scheme key to its human-readable name.
func (t *SchemeTable) DisplayName(schemeKey string) (string, bool) {
	idx, ok := t.byKey[schemeKey]
	if !ok {
		return "", false
	}
	return t.defs[idx].DisplayName, true
}

// FromSource best-effort maps a document source name to a scheme key by
// looking for any key inside the normalized source.
func (t *SchemeTable) FromSource(source string) (string, bool) {
	norm := NormalizeSource(source)
	for _, def := range t.defs {
		if strings.Contains(norm, def.Key) {
			return def.Key, true
		}
	}
	return "", false
}

// Keys returns the scheme keys in table order.
func (t *SchemeTable) Keys() []string {
	out := make([]string, len(t.defs))
	for i, def := range t.defs {
		out[i] = def.Key
	}
	return out
}

// NormalizeSource canonicalizes a chunk source name for scheme matching:
// lower-case, trailing ".pdf" stripped, whitespace and underscores folded
// to a single dash.
func NormalizeSource(source string) string {
	s := strings.ToLower(source)
	s = strings.TrimSuffix(s, ".pdf")
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.Join(strings.Fields(s), "-")
	return s
}

// DefaultSchemeTable returns the built-in scheme table. Table order is
// deliberate and is the detection priority.
func DefaultSchemeTable() *SchemeTable {
	table, err := NewSchemeTable([]SchemeDefinition{
		{
			Key:         "pmjdy",
			DisplayName: "Pradhan Mantri Jan Dhan Yojana (PMJDY)",
			Keywords:    []string{"pmjdy", "jan dhan", "pradhan mantri jan dhan", "pradhan mantri jan dhan yojana"},
			Enrichment:  "PMJDY Pradhan Mantri Jan Dhan Yojana bank account life cover eligibility rules",
		},
		{
			Key:         "nsp",
			DisplayName: "National Scholarship Portal (NSP)",
			Keywords:    []string{"nsp", "scholarship", "national scholarship", "national scholarship portal"},
			Enrichment:  "NSP National Scholarship Portal scholarship eligibility income criteria student benefits",
		},
		{
			Key:         "ayushman",
			DisplayName: "Ayushman Bharat – PM-JAY",
			Keywords:    []string{"ayushman", "pmjay", "pm-jay", "pradhan mantri jan arogya", "ayushman bharat"},
			Enrichment:  "Ayushman Bharat PMJAY Pradhan Mantri Jan Arogya Yojana health insurance eligibility coverage",
		},
		{
			Key:         "pmay-g",
			DisplayName: "Pradhan Mantri Awas Yojana – Gramin (PMAY-G)",
			Keywords:    []string{"pmay-g", "pmay g", "rural housing", "gramin awas", "pradhan mantri awas yojana gramin"},
			Enrichment:  "PMAY-G Pradhan Mantri Awas Yojana Gramin rural housing eligibility SECC 2011 criteria",
		},
		{
			Key:         "pmay-u",
			DisplayName: "Pradhan Mantri Awas Yojana – Urban (PMAY-U)",
			Keywords:    []string{"pmay-u", "pmay u", "urban housing", "pradhan mantri awas yojana urban"},
			Enrichment:  "PMAY-U Pradhan Mantri Awas Yojana Urban urban housing subsidy eligibility",
		},
		{
			Key:         "mudra",
			DisplayName: "Pradhan Mantri Mudra Yojana (MUDRA)",
			Keywords:    []string{"mudra", "mudra loan", "pradhan mantri mudra yojana", "pmmy"},
			Enrichment:  "MUDRA loan Pradhan Mantri Mudra Yojana PMMY loan eligibility shishu kishore tarun",
		},
	})
	if err != nil {
		// Static table; unreachable unless the definitions above are edited.
		panic(err)
	}
	return table
}
