// Package taxonomy resolves flat investment-category tags against the static
// Main -> Sub -> Specific category tree.
package taxonomy

import (
	"strings"

	"github.com/Gobusters/ectolinq"
)

// CategoryPath is the resolved position of a tag in the taxonomy. Any element
// may be nil when the tag only resolves to a coarser level; the zero value
// means the tag is unknown.
type CategoryPath struct {
	Main     *string `json:"main,omitempty"`
	Sub      *string `json:"sub,omitempty"`
	Specific *string `json:"specific,omitempty"`
}

// IsZero reports whether the path resolved nowhere in the tree.
func (p CategoryPath) IsZero() bool {
	return p.Main == nil && p.Sub == nil && p.Specific == nil
}

// tree is the fixed category taxonomy. Main categories hold sub categories,
// which hold specific tags.
var tree = map[string]map[string][]string{
	"Private Equity": {
		"Buyout":          {"Leveraged Buyout", "Management Buyout", "Take Private"},
		"Growth Equity":   {"Expansion Capital", "Pre-IPO"},
		"Venture Capital": {"Seed", "Early Stage", "Late Stage"},
	},
	"Private Credit": {
		"Direct Lending":  {"Senior Secured", "Unitranche"},
		"Distressed Debt": {"Special Situations", "Turnaround"},
		"Mezzanine":       {"Subordinated Debt", "Convertible Debt"},
	},
	"Hedge Funds": {
		"Hedge Fund":          {"Long/Short Equity", "Global Macro", "Event Driven", "Market Neutral", "Quantitative"},
		"Fund of Hedge Funds": {"Multi-Strategy", "Single-Strategy"},
	},
	"Real Assets": {
		"Real Estate":       {"Commercial", "Residential", "Industrial", "Hospitality"},
		"Infrastructure":    {"Energy", "Transportation", "Digital Infrastructure"},
		"Natural Resources": {"Timber", "Agriculture", "Mining"},
	},
	"Public Markets": {
		"Equities":     {"Large Cap", "Small Cap", "Emerging Markets"},
		"Fixed Income": {"Government Bonds", "Corporate Bonds", "High Yield"},
	},
}

type node struct {
	main     string
	sub      string
	specific string
}

// index maps lowercased tags to their deepest resolution. Built once; lookups
// are case-insensitive.
var index = buildIndex()

func buildIndex() map[string]node {
	idx := make(map[string]node)
	for main, subs := range tree {
		idx[strings.ToLower(main)] = node{main: main}
		for sub, specifics := range subs {
			idx[strings.ToLower(sub)] = node{main: main, sub: sub}
			for _, specific := range specifics {
				idx[strings.ToLower(specific)] = node{main: main, sub: sub, specific: specific}
			}
		}
	}
	return idx
}

// Resolve maps a flat tag to its category path. Unknown tags resolve to the
// zero path; that is expected and not an error.
func Resolve(tag string) CategoryPath {
	n, ok := index[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return CategoryPath{}
	}

	path := CategoryPath{Main: &n.main}
	if n.sub != "" {
		sub := n.sub
		path.Sub = &sub
	}
	if n.specific != "" {
		specific := n.specific
		path.Specific = &specific
	}
	return path
}

// ResolveAll resolves every tag in the slice.
func ResolveAll(tags []string) []CategoryPath {
	return ectolinq.Map(tags, func(tag string) CategoryPath {
		return Resolve(tag)
	})
}

// LevelSets collects the distinct main, sub and specific categories the tags
// resolve to. Unresolvable tags contribute nothing.
func LevelSets(tags []string) (mains, subs, specifics map[string]struct{}) {
	mains = make(map[string]struct{})
	subs = make(map[string]struct{})
	specifics = make(map[string]struct{})

	for _, path := range ResolveAll(tags) {
		if path.Main != nil {
			mains[*path.Main] = struct{}{}
		}
		if path.Sub != nil {
			subs[*path.Sub] = struct{}{}
		}
		if path.Specific != nil {
			specifics[*path.Specific] = struct{}{}
		}
	}
	return mains, subs, specifics
}
