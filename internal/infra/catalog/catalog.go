// Package catalog is numgen's country phonebook. It maps region codes,
// alpha-3 codes, English country names and a few common aliases to the
// regions known to the numbering-plan metadata.
package catalog

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CodeSource supplies the regions and calling codes the catalog covers.
// numplan.Validator satisfies it.
type CodeSource interface {
	SupportedRegions() []string
	CallingCodeForRegion(region string) int
}

// Entry describes one country or territory.
type Entry struct {
	RegionCode  string   // ISO 3166-1 alpha-2 (e.g. "PK")
	Alpha3      string   // ISO 3166-1 alpha-3 (e.g. "PAK"), may be empty
	Name        string   // English display name (e.g. "Pakistan")
	CallingCode int      // Country calling code without "+"
	Aliases     []string // Alternate names accepted by Search
}

// Catalog indexes entries by code and by normalized name.
type Catalog struct {
	entries  []Entry
	byAlpha2 map[string]int
	byAlpha3 map[string]int
	names    []string // normalized names and aliases
	owner    []int    // names[i] belongs to entries[owner[i]]
}

// aliases covers official and colloquial names that differ from the CLDR
// English short name.
var aliases = map[string][]string{
	"US": {"USA", "United States of America", "America"},
	"GB": {"UK", "Great Britain", "England", "Britain"},
	"RU": {"Russian Federation"},
	"KR": {"Korea, Republic of", "Republic of Korea", "Korea"},
	"KP": {"Korea, Democratic People's Republic of", "DPRK"},
	"IR": {"Iran, Islamic Republic of"},
	"VN": {"Viet Nam"},
	"CZ": {"Czech Republic"},
	"CI": {"Ivory Coast"},
	"NL": {"Holland"},
	"AE": {"UAE", "Emirates"},
	"TW": {"Taiwan, Province of China"},
	"SY": {"Syrian Arab Republic"},
	"LA": {"Lao People's Democratic Republic"},
	"BO": {"Bolivia, Plurinational State of"},
	"VE": {"Venezuela, Bolivarian Republic of"},
	"TZ": {"Tanzania, United Republic of"},
	"MD": {"Moldova, Republic of"},
	"CG": {"Congo", "Republic of the Congo"},
	"CD": {"DR Congo", "Democratic Republic of the Congo", "Congo, The Democratic Republic of the"},
	"MK": {"Macedonia"},
	"TR": {"Turkey"},
	"SZ": {"Swaziland"},
	"MM": {"Burma"},
}

// New builds a catalog of every region src supports with a non-zero
// calling code.
func New(src CodeSource) *Catalog {
	c := &Catalog{
		byAlpha2: make(map[string]int),
		byAlpha3: make(map[string]int),
	}
	namer := display.English.Regions()

	for _, code := range src.SupportedRegions() {
		cc := src.CallingCodeForRegion(code)
		if cc == 0 {
			continue
		}
		e := Entry{RegionCode: code, CallingCode: cc, Name: code, Aliases: aliases[code]}
		if r, err := language.ParseRegion(code); err == nil {
			if name := namer.Name(r); name != "" {
				e.Name = name
			}
			e.Alpha3 = r.ISO3()
		}
		i := len(c.entries)
		c.byAlpha2[code] = i
		if e.Alpha3 != "" {
			c.byAlpha3[e.Alpha3] = i
		}
		for _, name := range append([]string{e.Name}, e.Aliases...) {
			if n := normalize(name); n != "" {
				c.names = append(c.names, n)
				c.owner = append(c.owner, i)
			}
		}
		c.entries = append(c.entries, e)
	}
	return c
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns all entries sorted by region code.
func (c *Catalog) Entries() []Entry {
	out := slices.Clone(c.entries)
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.RegionCode, b.RegionCode) })
	return out
}

// Lookup finds an entry by alpha-2 code, case-insensitively.
func (c *Catalog) Lookup(alpha2 string) (Entry, bool) {
	i, ok := c.byAlpha2[strings.ToUpper(strings.TrimSpace(alpha2))]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Name returns the display name of a region, or the code itself when the
// region is not in the catalog.
func (c *Catalog) Name(region string) string {
	if e, ok := c.Lookup(region); ok {
		return e.Name
	}
	return region
}

// Match tiers; higher ranks first.
const (
	tierSubsequence = iota + 1
	tierSubstring
	tierWord
	tierPrefix
	tierAlpha3
	tierExact
)

// minLooseQuery is the shortest query allowed to match inside a word.
const minLooseQuery = 3

type match struct {
	entry    int
	tier     int
	distance int
}

func (m match) better(o match) bool {
	if m.tier != o.tier {
		return m.tier > o.tier
	}
	return m.distance < o.distance
}

// Search performs a fuzzy name search and returns matches best first.
// Names and query are compared after stripping accents, case folding and
// collapsing punctuation, so "cote d'ivoire" finds "Côte d’Ivoire".
// Candidates come from fuzzy subsequence matching ("pakstan" finds
// Pakistan); exact names, alpha-3 codes, prefixes and whole words rank
// ahead of looser matches, then smaller edit distance wins.
func (c *Catalog) Search(query string) []Entry {
	q := normalize(query)
	if q == "" {
		return nil
	}

	best := make(map[int]match)
	consider := func(m match) {
		if cur, ok := best[m.entry]; !ok || m.better(cur) {
			best[m.entry] = m
		}
	}

	if i, ok := c.byAlpha3[strings.ToUpper(strings.TrimSpace(query))]; ok {
		consider(match{entry: i, tier: tierAlpha3})
	}
	for _, r := range fuzzy.RankFindNormalizedFold(q, c.names) {
		if t := tier(r.Target, q); t > 0 {
			consider(match{entry: c.owner[r.OriginalIndex], tier: t, distance: r.Distance})
		}
	}

	matches := make([]match, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}
	slices.SortFunc(matches, func(a, b match) int {
		switch {
		case a.better(b):
			return -1
		case b.better(a):
			return 1
		}
		return strings.Compare(c.entries[a.entry].RegionCode, c.entries[b.entry].RegionCode)
	})

	out := make([]Entry, len(matches))
	for i, m := range matches {
		out[i] = c.entries[m.entry]
	}
	return out
}

// tier classifies how name matched q. Short queries only match whole names,
// prefixes and words.
func tier(name, q string) int {
	switch {
	case name == q:
		return tierExact
	case strings.HasPrefix(name, q):
		return tierPrefix
	case strings.Contains(" "+name+" ", " "+q+" "):
		return tierWord
	case len(q) < minLooseQuery:
		return 0
	case strings.Contains(name, q):
		return tierSubstring
	case wordAnchored(name, q):
		return tierSubsequence
	}
	return 0
}

// wordAnchored reports whether q matches in order from the start of one of
// name's words.
func wordAnchored(name, q string) bool {
	_, size := utf8.DecodeRuneInString(q)
	first := q[:size]
	for i := 0; i < len(name); i++ {
		if (i == 0 || name[i-1] == ' ') && strings.HasPrefix(name[i:], first) && fuzzy.Match(q, name[i:]) {
			return true
		}
	}
	return false
}

// normalize folds s to lower-case ASCII-ish words separated by single spaces.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = cases.Fold().String(folded)

	var b strings.Builder
	space := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		if r == '\'' || r == '’' {
			continue
		}
		space = true
	}
	return b.String()
}
