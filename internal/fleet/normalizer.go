package fleet

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Normalizer extracts canonical machine codes (PREFIX-NN) from the free-text
// labels found across the quarter's exports. The same instance must be used by
// every ingestion adapter so aggregation keys line up between data sources
// that describe the same machine differently.
type Normalizer struct {
	aliases []aliasEntry
}

type aliasEntry struct {
	pattern string
	code    string
}

// DefaultAliases maps cost-center labels, plate numbers and internal numeric
// codes that carry no embedded machine code to their canonical code. Explicit
// entries always win over pattern matches.
var DefaultAliases = map[string]string{
	"TRACTOR CASE PUMA 155":       "T-06",
	"TRACTOR CASE PUMA":           "T-06",
	"2010800003":                  "T-06",
	"CAMIONETA RAPTOR VGKX-71":    "C-53",
	"RAPTOR VGKX-71":              "C-53",
	"VGKX-71":                     "C-53",
	"3010100017":                  "C-53",
	"CAMIONETA JMC RWRH-49":       "C-29",
	"RWRH-49":                     "C-29",
	"3010100015":                  "C-29",
	"CAMIONETA JMC RXKR-45":       "C-30",
	"RXKR-45":                     "C-30",
	"3010100014":                  "C-30",
	"CAMIONETA JMC VIGUS RWRH-53": "C-31",
	"RWRH-53":                     "C-31",
	"2030100048":                  "C-31",
	"TRACTOR CASE GWSV65":         "T-05",
	"GWSV65":                      "T-05",
	"2010800001":                  "T-05",
}

// classPrefixes is the equipment-class priority order: camión tolva,
// excavadora, cargador frontal, retroexcavadora, motoniveladora, rodillo,
// bulldozer, grúa, tracto camión, barredora, maquinaria asfáltica, camión
// ganadero, mixer, camión pluma, camión varios, minicargador, tractor, and
// vehículo liviano (C) last because it is the most generic and would shadow
// the others.
var classPrefixes = []string{
	"CT", "EX", "CF", "RX", "MN", "RD", "BD", "GR", "TC",
	"BA", "MA", "CG", "CM", "CP", "CK", "MC", "T", "C",
}

var (
	bracketPattern = regexp.MustCompile(`^\[([A-Za-z]{1,3}-\d+[^\]]*)\]`)
	genericPattern = regexp.MustCompile(`\b([A-Za-z]{1,3}-\d{1,2})\b`)
	spacedPattern  = regexp.MustCompile(`\b([A-Za-z]{2})\s+(\d{1,2})\b`)

	classPatterns = buildClassPatterns()
)

func buildClassPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(classPrefixes))
	for _, prefix := range classPrefixes {
		patterns = append(patterns, regexp.MustCompile(`\b(`+prefix+`-\d+)\b`))
	}
	return patterns
}

// NewNormalizer builds a normalizer with the given alias overrides. A nil map
// uses DefaultAliases. Alias patterns match longest-first so that overlapping
// patterns resolve the same way on every run.
func NewNormalizer(aliases map[string]string) *Normalizer {
	if aliases == nil {
		aliases = DefaultAliases
	}
	entries := make([]aliasEntry, 0, len(aliases))
	for k, v := range aliases {
		entries = append(entries, aliasEntry{pattern: strings.ToUpper(k), code: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].pattern) != len(entries[j].pattern) {
			return len(entries[i].pattern) > len(entries[j].pattern)
		}
		return entries[i].pattern < entries[j].pattern
	})
	return &Normalizer{aliases: entries}
}

// Normalize extracts the canonical machine code from a free-text label.
// Matching is ordered, first match wins:
//
//  1. alias table lookup (labels with no embedded code pattern at all)
//  2. bracketed prefix at the start of the text: [CT-10 HKDX21] ...
//  3. known equipment-class prefixes, in priority order
//  4. any 1-3 letters, hyphen, 1-2 digits token
//  5. two letters, whitespace, 1-2 digits ("EX 16" -> EX-16)
//
// When nothing matches it returns ok=false and the record must be skipped.
func (n *Normalizer) Normalize(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	upper := strings.ToUpper(text)

	for _, a := range n.aliases {
		if strings.Contains(upper, a.pattern) {
			return a.code, true
		}
	}

	if m := bracketPattern.FindStringSubmatch(upper); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	for _, re := range classPatterns {
		if m := re.FindStringSubmatch(upper); m != nil {
			return padCode(m[1]), true
		}
	}

	if m := genericPattern.FindStringSubmatch(upper); m != nil {
		return padCode(m[1]), true
	}

	if m := spacedPattern.FindStringSubmatch(upper); m != nil {
		return padCode(m[1] + "-" + m[2]), true
	}

	return "", false
}

var codeParts = regexp.MustCompile(`^([A-Z]+)-(\d+)$`)

// padCode zero-pads the numeric part to two digits: EX-9 -> EX-09.
func padCode(code string) string {
	m := codeParts.FindStringSubmatch(code)
	if m == nil {
		return code
	}
	num, err := strconv.Atoi(m[2])
	if err != nil {
		return code
	}
	if num < 10 {
		return fmt.Sprintf("%s-%02d", m[1], num)
	}
	return fmt.Sprintf("%s-%d", m[1], num)
}
