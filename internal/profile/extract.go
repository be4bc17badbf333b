package profile

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Rule identifies which extraction pattern produced a field value.
type Rule string

const (
	RuleAgeSuffix       Rule = "age-suffix"       // "24살"
	RuleAgePrefix       Rule = "age-prefix"       // "나이 24"
	RuleSexMaleToken    Rule = "sex-male-token"   // 남자, 남성, 남
	RuleSexFemaleToken  Rule = "sex-female-token" // 여자, 여성, 여
	RuleRunKeyword      Rule = "running-keyword"  // whole utterance captured
	RuleSquatCount      Rule = "squat-count"      // "스쿼트 30개"
	RuleAddressFull     Rule = "address-full"     // [시] 구 동
	RuleAddressDistrict Rule = "address-district" // bare 구
)

// maxAge bounds what the age rules accept as a confident match.
const maxAge = 150

// Extraction is the partial profile update found in one utterance. Only
// fields present in Provenance carry an opinion; everything else in Fields
// is zero and must be ignored.
type Extraction struct {
	Fields     Profile
	Provenance map[Field]Rule
}

// Empty reports whether nothing was extracted.
func (e Extraction) Empty() bool { return len(e.Provenance) == 0 }

// Has reports whether the extraction carries a value for f.
func (e Extraction) Has(f Field) bool {
	_, ok := e.Provenance[f]
	return ok
}

func (e *Extraction) set(f Field, r Rule) {
	if e.Provenance == nil {
		e.Provenance = make(map[Field]Rule)
	}
	e.Provenance[f] = r
}

var (
	ageSuffixRe = regexp.MustCompile(`(\d+)\s*살`)
	agePrefixRe = regexp.MustCompile(`나이\s*(?:는|은|가|:)?\s*(\d+)`)

	maleCharRe   = regexp.MustCompile(`(?:^|[\s,.!?~/()])남(?:$|[\s,.!?~/()])`)
	femaleCharRe = regexp.MustCompile(`(?:^|[\s,.!?~/()])여(?:$|[\s,.!?~/()])`)

	squatRe = regexp.MustCompile(`스쿼트\D*(\d+)`)

	addressFullRe = regexp.MustCompile(`(?:([가-힣]+시)\s*)?([가-힣]+구)\s*([가-힣0-9]+?동)`)
	// The trailing Hangul run after 구 is checked against districtParticles.
	addressDistrictRe = regexp.MustCompile(`([가-힣]+구)([가-힣]*)`)
)

var (
	maleWords    = []string{"남자", "남성"}
	femaleWords  = []string{"여자", "여성"}
	runningWords = []string{"달리기", "러닝", "조깅", "뛰"}

	// Words ending in 구/동 that are not administrative areas.
	districtStopwords = []string{"친구", "가구", "도구", "연구", "요구", "입구", "출구", "야구", "농구", "배구", "족구", "탁구", "축구"}
	dongStopwords     = []string{"운동", "활동", "행동", "이동", "자동", "감동", "노동", "작동", "출동", "변동"}
	// Adverbs and nouns ending in 시 that precede an address but are not a city.
	cityStopwords = []string{"다시", "역시", "혹시", "당시", "동시", "즉시", "잠시", "항시", "수시", "평시", "무시"}

	// Particles that may directly follow a bare district. Anything else,
	// such as the endings in 그렇구나 or 힘들구요, means the 구 is not a place.
	districtParticles = map[string]bool{
		"": true, "에": true, "에서": true, "에서요": true, "에요": true, "예요": true,
		"쪽": true, "쪽에": true, "쪽에서": true, "쪽이야": true,
		"근처": true, "근처에": true, "근처에서": true, "근처야": true,
		"동네": true, "동네에": true, "동네에서": true, "동네야": true,
		"이야": true, "야": true, "가": true, "은": true, "는": true, "도": true, "로": true, "으로": true,
	}
)

// Normalize composes Hangul (NFC) and folds full-width forms so that input
// typed on different keyboards matches the same patterns.
func Normalize(s string) string {
	return strings.TrimSpace(norm.NFC.String(width.Fold.String(s)))
}

// Extract parses an utterance into a partial profile update. Absence of a
// match means "no opinion" for that field, never a request to clear it.
func Extract(utterance string) Extraction {
	text := Normalize(utterance)
	var ext Extraction
	if text == "" {
		return ext
	}

	if age, rule, ok := extractAge(text); ok {
		ext.Fields.Age = IntPtr(age)
		ext.set(FieldAge, rule)
	}

	if sex, rule := extractSex(text); sex != SexUnknown {
		ext.Fields.Sex = sex
		ext.set(FieldSex, rule)
	}

	if mentionsRunning(text) {
		ext.Fields.RunLevel = strings.TrimSpace(utterance)
		ext.set(FieldRunLevel, RuleRunKeyword)
	}

	if m := squatRe.FindStringSubmatch(text); m != nil {
		ext.Fields.SquatLevel = m[1]
		ext.set(FieldSquatLevel, RuleSquatCount)
	}

	if loc, rule := extractLocation(text); loc != "" {
		ext.Fields.Location = loc
		ext.set(FieldLocation, rule)
	}

	return ext
}

func extractAge(text string) (int, Rule, bool) {
	for _, c := range []struct {
		re   *regexp.Regexp
		rule Rule
	}{
		{ageSuffixRe, RuleAgeSuffix},
		{agePrefixRe, RuleAgePrefix},
	} {
		m := c.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		age, err := strconv.Atoi(m[1])
		if err != nil || age < 0 || age > maxAge {
			continue
		}
		return age, c.rule, true
	}
	return 0, "", false
}

// extractSex checks male tokens before female tokens, so an utterance that
// contains both resolves to male.
func extractSex(text string) (Sex, Rule) {
	if containsAny(text, maleWords) || maleCharRe.MatchString(text) {
		return SexMale, RuleSexMaleToken
	}
	if containsAny(text, femaleWords) || femaleCharRe.MatchString(text) {
		return SexFemale, RuleSexFemaleToken
	}
	return SexUnknown, ""
}

func mentionsRunning(text string) bool {
	// The standing broad jump (멀리뛰기) contains 뛰 but is not running.
	return containsAny(strings.ReplaceAll(text, "멀리뛰기", ""), runningWords)
}

func extractLocation(text string) (string, Rule) {
	for _, m := range addressFullRe.FindAllStringSubmatchIndex(text, -1) {
		district := text[m[4]:m[5]]
		dong := text[m[6]:m[7]]
		if isStopword(district, districtStopwords) || isStopword(dong, dongStopwords) {
			continue
		}
		start := m[0]
		if m[2] >= 0 && isCityStopword(text[m[2]:m[3]]) {
			start = m[4]
		}
		return strings.TrimSpace(text[start:m[1]]), RuleAddressFull
	}

	for _, m := range addressDistrictRe.FindAllStringSubmatch(text, -1) {
		district, rest := m[1], m[2]
		if isStopword(district, districtStopwords) || !districtParticles[rest] {
			continue
		}
		return district, RuleAddressDistrict
	}

	return "", ""
}

// isCityStopword reports whether a 시-final token is a common word rather
// than a city name. Only the exact token is compared so 서울시 still matches.
func isCityStopword(city string) bool {
	for _, s := range cityStopwords {
		if city == s {
			return true
		}
	}
	return false
}

func isStopword(word string, stop []string) bool {
	for _, s := range stop {
		if strings.HasSuffix(word, s) {
			return true
		}
	}
	return false
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Performance is a test result the user reported in chat, e.g. "윗몸일으키기 40개".
type Performance struct {
	Exercise string
	Value    float64
}

var performancePatterns = []struct {
	exercise string
	re       *regexp.Regexp
}{
	{"윗몸일으키기", regexp.MustCompile(`(?:윗몸일으키기|윗몸)\D*?(\d+(?:\.\d+)?)\s*(?:개|회|번)`)},
	{"제자리 멀리뛰기", regexp.MustCompile(`멀리\s*뛰기\D*?(\d+(?:\.\d+)?)`)},
	{"왕복오래달리기", regexp.MustCompile(`왕복\s*오래\s*달리기\D*?(\d+)`)},
}

// ExtractPerformances returns the norm-comparable results mentioned in the
// utterance, ordered by where they appear. Each exercise is reported once.
func ExtractPerformances(utterance string) []Performance {
	text := Normalize(utterance)

	type hit struct {
		pos int
		p   Performance
	}
	var hits []hit
	for _, pp := range performancePatterns {
		m := pp.re.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(text[m[2]:m[3]], 64)
		if err != nil {
			continue
		}
		hits = append(hits, hit{pos: m[0], p: Performance{Exercise: pp.exercise, Value: v}})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]Performance, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.p)
	}
	return out
}
