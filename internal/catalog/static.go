package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultThreshold is the minimum fuzzy similarity used when the tables do
// not set one. Mirrors the cutoff the reporting desks were tuned against.
const DefaultThreshold = 0.8

// DefaultTables returns the built-in reference data: the operation and crop
// vocabularies with their field-report abbreviations, and the АОР division
// tree (three departments covering sub-units 1-10, 11-20 and 21-30).
func DefaultTables() Tables {
	return Tables{
		Threshold: DefaultThreshold,
		Operations: []Entry{
			{Canonical: "Пахота", Aliases: []string{"Пахота зяби", "Вспашка", "Вспашка зяби"}},
			{Canonical: "Сев", Aliases: []string{"Посев", "Сев озимых"}},
			{Canonical: "Уборка", Aliases: []string{"Уборка урожая", "Обмолот"}},
			{Canonical: "Боронование", Aliases: []string{"Боронование зяби", "Борон"}},
			{Canonical: "Культивация", Aliases: []string{"Культ"}},
			{Canonical: "Предпосевная культивация", Aliases: []string{"Предп культивация", "Предпосевная культ"}},
			{Canonical: "Дискование", Aliases: []string{"Диск"}},
			{Canonical: "Чизлевание", Aliases: []string{"Чизел"}},
			{Canonical: "Прикатывание", Aliases: []string{"Прикат"}},
			{Canonical: "Гербицидная обработка", Aliases: []string{"Гербицидная обр", "Герб обработка", "Обработка гербицидами"}},
			{Canonical: "Внесение минеральных удобрений", Aliases: []string{"Внесение мин удобрений", "Подкормка", "Внесение удобрений"}},
		},
		Crops: []Entry{
			{Canonical: "Озимая пшеница", Aliases: []string{"оз пшеница", "озимая пш", "оз пш", "пшеница озимая", "озимой пшеницы"}},
			{Canonical: "Озимый ячмень", Aliases: []string{"оз ячмень", "ячмень озимый", "озимого ячменя"}},
			{Canonical: "Яровой ячмень", Aliases: []string{"яр ячмень", "ячмень яровой", "ярового ячменя"}},
			{Canonical: "Горох", Aliases: []string{"горох посевной", "гороха"}},
			{Canonical: "Подсолнечник", Aliases: []string{"подсолнух", "п-к", "подсолнечника"}},
			{Canonical: "Кукуруза", Aliases: []string{"кук", "кукуруза на зерно", "кукурузы"}},
			{Canonical: "Соя", Aliases: []string{"сои"}},
			{Canonical: "Сахарная свекла", Aliases: []string{"сах свекла", "свекла", "сахарной свеклы"}},
			{Canonical: "Многолетние травы текущего года", Aliases: []string{"мн тр", "мн травы", "многолетние травы", "многол травы", "многолетних трав"}},
			{Canonical: "Многолетние травы прошлых лет", Aliases: []string{"мн тр прошлых лет", "мн травы пр лет"}},
		},
		Divisions: []Division{
			{Code: "АОР", DisplayName: "АОР", Aliases: []string{"Пу", "По Пу", "производственный участок"}},
			{Code: "АОР-1", ParentCode: "АОР", DisplayName: "АОР, отделения 1-10"},
			{Code: "АОР-2", ParentCode: "АОР", DisplayName: "АОР, отделения 11-20"},
			{Code: "АОР-3", ParentCode: "АОР", DisplayName: "АОР, отделения 21-30"},
		},
		DeptRanges: []DeptRange{
			{From: 1, To: 10, Code: "АОР-1"},
			{From: 11, To: 20, Code: "АОР-2"},
			{From: 21, To: 30, Code: "АОР-3"},
		},
	}
}

// vocab indexes one canonical set for the three-step resolution ladder.
type vocab struct {
	exact map[string]string // normalized spelling -> canonical
	canon map[string]bool   // normalized canonical names
	fuzzy []fuzzyCandidate
	terms []string // all normalized spellings, longest first
}

func buildVocab(entries []Entry) *vocab {
	v := &vocab{
		exact: make(map[string]string),
		canon: make(map[string]bool),
	}
	for _, e := range entries {
		n := normalize(e.Canonical)
		v.canon[n] = true
		if _, ok := v.exact[n]; !ok {
			v.exact[n] = e.Canonical
		}
		v.fuzzy = append(v.fuzzy, fuzzyCandidate{term: n, canonical: e.Canonical})
		v.terms = append(v.terms, n)
		for _, a := range e.Aliases {
			an := normalize(a)
			if _, ok := v.exact[an]; !ok {
				v.exact[an] = e.Canonical
			}
			v.fuzzy = append(v.fuzzy, fuzzyCandidate{term: an, canonical: e.Canonical})
			v.terms = append(v.terms, an)
		}
	}
	sort.SliceStable(v.terms, func(i, j int) bool {
		return len([]rune(v.terms[i])) > len([]rune(v.terms[j]))
	})
	return v
}

func (v *vocab) lookup(text string, threshold float64) (Match, bool) {
	n := normalize(text)
	if n == "" {
		return Match{}, false
	}
	if canonical, ok := v.exact[n]; ok {
		return Match{Canonical: canonical, Confidence: 1.0, Corrected: !v.canon[n]}, true
	}
	if canonical, score, ok := bestFuzzy(n, v.fuzzy, threshold); ok {
		return Match{Canonical: canonical, Confidence: score, Corrected: true}, true
	}
	return Match{}, false
}

var deptNumberRe = regexp.MustCompile(`^отд(?:еление)?\.?\s*№?\s*(\d+)$`)

// cropKeywordRules is the last rung of the crop ladder: a text the
// vocabulary misses entirely (extra words, swapped word order) still names
// its crop when both keywords appear anywhere in it.
var cropKeywordRules = []struct {
	keywords  [2]string
	canonical string
}{
	{[2]string{"пшениц", "озим"}, "Озимая пшеница"},
	{[2]string{"ячмен", "озим"}, "Озимый ячмень"},
	{[2]string{"ячмен", "яров"}, "Яровой ячмень"},
}

type tableCatalog struct {
	threshold float64
	ops       *vocab
	crops     *vocab

	divByCode map[string]Division
	divExact  map[string]string // normalized spelling -> code
	divFuzzy  []fuzzyCandidate
	ranges    []DeptRange
}

// New builds an immutable catalog from reference tables.
func New(t Tables) (Catalog, error) {
	if t.Threshold <= 0 {
		t.Threshold = DefaultThreshold
	}
	c := &tableCatalog{
		threshold: t.Threshold,
		ops:       buildVocab(t.Operations),
		crops:     buildVocab(t.Crops),
		divByCode: make(map[string]Division),
		divExact:  make(map[string]string),
		ranges:    t.DeptRanges,
	}
	for _, d := range t.Divisions {
		if _, dup := c.divByCode[d.Code]; dup {
			return nil, fmt.Errorf("catalog: duplicate division code %q", d.Code)
		}
		c.divByCode[d.Code] = d
		for _, spelling := range append([]string{d.Code, d.DisplayName}, d.Aliases...) {
			n := normalize(spelling)
			if n == "" {
				continue
			}
			if _, ok := c.divExact[n]; !ok {
				c.divExact[n] = d.Code
			}
			c.divFuzzy = append(c.divFuzzy, fuzzyCandidate{term: n, canonical: d.Code})
		}
	}
	for _, d := range t.Divisions {
		if d.ParentCode == "" {
			continue
		}
		if _, ok := c.divByCode[d.ParentCode]; !ok {
			return nil, fmt.Errorf("catalog: division %q references unknown parent %q", d.Code, d.ParentCode)
		}
	}
	for _, r := range t.DeptRanges {
		if _, ok := c.divByCode[r.Code]; !ok {
			return nil, fmt.Errorf("catalog: department range %d-%d references unknown division %q", r.From, r.To, r.Code)
		}
	}
	return c, nil
}

func (c *tableCatalog) LookupOperation(text string) (Match, bool) {
	return c.ops.lookup(text, c.threshold)
}

func (c *tableCatalog) LookupCrop(text string) (Match, bool) {
	if m, ok := c.crops.lookup(text, c.threshold); ok {
		return m, true
	}
	// Keyword fallback applies only to crops the loaded tables know about.
	n := normalize(text)
	for _, r := range cropKeywordRules {
		if strings.Contains(n, r.keywords[0]) && strings.Contains(n, r.keywords[1]) &&
			c.crops.canon[normalize(r.canonical)] {
			return Match{Canonical: r.canonical, Confidence: c.threshold, Corrected: true}, true
		}
	}
	return Match{}, false
}

func (c *tableCatalog) LookupDivision(text string) (DivisionMatch, bool) {
	n := normalize(text)
	if n == "" {
		return DivisionMatch{}, false
	}

	// Sub-unit numbers resolve through the department ranges.
	if m := deptNumberRe.FindStringSubmatch(n); m != nil {
		num, _ := strconv.Atoi(m[1])
		for _, r := range c.ranges {
			if num >= r.From && num <= r.To {
				return c.matchFor(r.Code, 1.0, false), true
			}
		}
		return DivisionMatch{}, false
	}

	if code, ok := c.divExact[n]; ok {
		corrected := normalize(code) != n
		return c.matchFor(code, 1.0, corrected), true
	}
	if code, score, ok := bestFuzzy(n, c.divFuzzy, c.threshold); ok {
		return c.matchFor(code, score, true), true
	}
	return DivisionMatch{}, false
}

func (c *tableCatalog) matchFor(code string, confidence float64, corrected bool) DivisionMatch {
	return DivisionMatch{
		Code:       code,
		Path:       c.path(code),
		Confidence: confidence,
		Corrected:  corrected,
	}
}

// path walks parent links up to the region root.
func (c *tableCatalog) path(code string) string {
	var parts []string
	for cur := code; cur != ""; {
		d, ok := c.divByCode[cur]
		if !ok {
			break
		}
		parts = append([]string{d.Code}, parts...)
		cur = d.ParentCode
	}
	p := ""
	for i, s := range parts {
		if i > 0 {
			p += "/"
		}
		p += s
	}
	return p
}

func (c *tableCatalog) OperationTerms() []string { return c.ops.terms }
func (c *tableCatalog) CropTerms() []string      { return c.crops.terms }
