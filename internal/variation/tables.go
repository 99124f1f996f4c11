package variation

import "strings"

// CommonReplacements maps a word to its alternative words. Word-level
// synonym swap (rule 5) emits t with w replaced by each alternative, one
// swap per emission.
var CommonReplacements = map[string][]string{
	"disease":    {"disorder", "syndrome"},
	"disorder":   {"disease", "syndrome"},
	"syndrome":   {"disease", "disorder"},
	"drug":       {"medication", "medicine"},
	"medication": {"drug", "medicine"},
	"medicine":   {"drug", "medication"},
	"tumor":      {"tumour", "neoplasm", "mass"},
	"tumour":     {"tumor", "neoplasm", "mass"},
	"cancer":     {"carcinoma", "malignancy"},
	"high":       {"elevated", "increased"},
	"low":        {"decreased", "reduced"},
	"pain":       {"ache", "discomfort"},
	"swelling":   {"edema", "inflammation"},
	"infection":  {"sepsis", "inflammation"},
	"heart":      {"cardiac"},
	"cardiac":    {"heart"},
	"kidney":     {"renal"},
	"renal":      {"kidney"},
	"lung":       {"pulmonary"},
	"pulmonary":  {"lung"},
}

// Abbreviations maps an uppercase abbreviation to its lowercase expansions.
// Expansion to abbreviation is the reverse direction, built at init time
// into expansionToAbbrev.
var Abbreviations = map[string][]string{
	"MI":      {"myocardial infarction"},
	"HTN":     {"hypertension"},
	"DM":      {"diabetes mellitus"},
	"COPD":    {"chronic obstructive pulmonary disease"},
	"CHF":     {"congestive heart failure"},
	"CAD":     {"coronary artery disease"},
	"CVA":     {"cerebrovascular accident"},
	"UTI":     {"urinary tract infection"},
	"GERD":    {"gastroesophageal reflux disease"},
	"RA":      {"rheumatoid arthritis"},
	"OA":      {"osteoarthritis"},
	"CKD":     {"chronic kidney disease"},
	"HLD":     {"hyperlipidemia"},
	"BPH":     {"benign prostatic hyperplasia"},
	"DVT":     {"deep vein thrombosis"},
	"PE":      {"pulmonary embolism"},
	"ADHD":    {"attention deficit hyperactivity disorder"},
	"IBD":     {"inflammatory bowel disease"},
	"IBS":     {"irritable bowel syndrome"},
	"HA":      {"headache"},
	"SOB":     {"shortness of breath"},
	"CP":      {"chest pain"},
	"BP":      {"blood pressure"},
	"Hb A1c":  {"hemoglobin a1c"},
}

// expansionToAbbrev is the reverse of Abbreviations: lowercase expansion ->
// lowercase abbreviation. Built once at package init.
var expansionToAbbrev = func() map[string]string {
	m := make(map[string]string)
	for abbrev, expansions := range Abbreviations {
		lower := toLowerASCII(abbrev)
		for _, exp := range expansions {
			m[exp] = lower
		}
	}
	return m
}()

// abbrevByUpper indexes Abbreviations by an uppercase-folded key so lookups
// against a case-insensitive query (e.g. "hb a1c" upper-cased to "HB A1C")
// still find entries like "Hb A1c" whose declared key isn't all-caps.
var abbrevByUpper = func() map[string][]string {
	m := make(map[string][]string, len(Abbreviations))
	for abbrev, expansions := range Abbreviations {
		m[strings.ToUpper(abbrev)] = expansions
	}
	return m
}()

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// MedicalSuffixes maps a suffix to its plain-language meaning. Suffix
// rewrite (rule 6) replaces the suffix with " " + meaning.
var MedicalSuffixes = map[string]string{
	"itis":    "inflammation",
	"emia":    "blood condition",
	"oma":     "tumor",
	"osis":    "condition",
	"pathy":   "disease",
	"megaly":  "enlargement",
	"algia":   "pain",
	"dynia":   "pain",
	"ectomy":  "surgical removal",
	"plasty":  "surgical repair",
	"otomy":   "surgical incision",
	"ostomy":  "surgical opening",
	"scopy":   "visual examination",
	"graphy":  "imaging",
	"gram":    "record",
	"trophy":  "growth",
}

// suffixOrder lists MedicalSuffixes keys longest-first so the first
// matching suffix found is the most specific one (e.g. "ostomy" before
// "otomy" before "omy"-like false prefixes never occur in our table, but
// "osis" before shorter false matches is still handled this way).
var suffixOrder = orderedSuffixes()

func orderedSuffixes() []string {
	suffixes := make([]string, 0, len(MedicalSuffixes))
	for s := range MedicalSuffixes {
		suffixes = append(suffixes, s)
	}
	for i := 1; i < len(suffixes); i++ {
		for j := i; j > 0 && len(suffixes[j]) > len(suffixes[j-1]); j-- {
			suffixes[j], suffixes[j-1] = suffixes[j-1], suffixes[j]
		}
	}
	return suffixes
}

// Prefixes are the trimmed leading qualifiers for rule 1.
var Prefixes = []string{
	"history of ", "chronic ", "acute ", "suspected ", "possible ", "recurrent ",
}
