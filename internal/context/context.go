// Package context implements the post-hoc score boost fired when a
// vocabulary-specific keyword appears in a matched display and the
// caller's surrounding context contains one of that keyword's cues. It
// is unrelated to and does not import the standard library's context
// package.
package context

import (
	"strings"

	"github.com/cognicore/termmatch/internal/vocab"
)

// Keywords is the per-vocabulary keyword -> cues table.
var Keywords = map[vocab.System]map[string][]string{
	vocab.SNOMED: {
		"diabetes":     {"glucose", "sugar", "a1c", "metformin", "insulin", "glycemic"},
		"hypertension": {"blood pressure", "bp", "systolic", "diastolic", "mmhg"},
		"asthma":       {"respiratory", "breathing", "wheeze", "inhaler", "bronchial"},
		"pneumonia":    {"lung", "respiratory", "cough", "infection", "fever"},
		"heart":        {"cardiac", "chest pain", "cardiovascular", "ecg", "ekg"},
	},
	vocab.LOINC: {
		"hemoglobin":  {"blood", "cbc", "anemia", "diabetes"},
		"glucose":     {"diabetes", "blood sugar", "fasting", "a1c"},
		"cholesterol": {"lipid", "hdl", "ldl", "cardiovascular"},
		"creatinine":  {"kidney", "renal", "gfr", "bun"},
	},
	vocab.RxNorm: {
		"metformin":    {"diabetes", "hypoglycemic", "glucose", "a1c"},
		"lisinopril":   {"hypertension", "blood pressure", "ace inhibitor", "bp"},
		"aspirin":      {"antiplatelet", "pain", "blood thinner", "heart", "stroke"},
		"atorvastatin": {"cholesterol", "statin", "lipid", "cardiovascular"},
	},
}

// keywordOrder fixes "first hit wins" iteration order per vocabulary,
// matching the declaration order of Keywords above (Go map iteration is
// randomized, so this can't be derived from the map itself).
var keywordOrder = map[vocab.System][]string{
	vocab.SNOMED: {"diabetes", "hypertension", "asthma", "pneumonia", "heart"},
	vocab.LOINC:  {"hemoglobin", "glucose", "cholesterol", "creatinine"},
	vocab.RxNorm: {"metformin", "lisinopril", "aspirin", "atorvastatin"},
}

// Adjustment is the outcome of applying the context adjuster to a match.
type Adjustment struct {
	Score           float64
	ContextEnhanced bool
	ContextTerm     string
}

// Adjust boosts score by 10 (capped at 100) if display contains a keyword
// k from sys's table and callerContext contains one of k's cues
// (case-insensitive substring). At most one firing; first hit wins,
// scanning keywords then cues in the table's declared order.
func Adjust(sys vocab.System, display string, score float64, callerContext string) Adjustment {
	result := Adjustment{Score: score}

	if callerContext == "" {
		return result
	}

	table, ok := Keywords[sys]
	if !ok {
		return result
	}

	lowerDisplay := strings.ToLower(display)
	lowerContext := strings.ToLower(callerContext)

	for _, keyword := range keywordOrder[sys] {
		if !strings.Contains(lowerDisplay, keyword) {
			continue
		}
		for _, cue := range table[keyword] {
			if strings.Contains(lowerContext, cue) {
				boosted := score + 10
				if boosted > 100 {
					boosted = 100
				}
				return Adjustment{
					Score:           boosted,
					ContextEnhanced: true,
					ContextTerm:     cue,
				}
			}
		}
	}

	return result
}
