package scorer

// termExpansions maps a query term to the related terms it also matches on.
// Keyed on the exact lowercase token; values are space-separated expansions
// that include the term itself.
var termExpansions = map[string]string{
	"salary":        "salary compensation pay wage earning income remuneration stipend",
	"pay":           "pay salary compensation wage earning income remuneration",
	"income":        "income salary pay wage earning compensation revenue",
	"wage":          "wage salary pay compensation earning income",
	"earning":       "earning income salary pay wage compensation revenue",
	"compensation":  "compensation salary pay wage earning income remuneration",
	"cost":          "cost expense price fee charge rate",
	"price":         "price cost fee rate charge amount",
	"fee":           "fee cost price charge rate amount",
	"tax":           "tax taxation levy duty assessment",
	"rate":          "rate percentage ratio proportion",
	"benefit":       "benefit advantage perk allowance",
	"allowance":     "allowance benefit perk bonus",
	"bonus":         "bonus incentive reward benefit",
	"experience":    "experience expertise skill qualification background",
	"qualification": "qualification certification degree credential",
	"requirement":   "requirement criteria condition prerequisite",
	"job":           "job position role career employment work",
	"career":        "career job profession occupation work",
	"work":          "work job employment career profession",
}

// expandQueryTerms appends the synonym expansion of every known query term.
// The result keeps the original tokens first so overlap counting stays
// stable for unexpanded queries.
func expandQueryTerms(query string) []string {
	words := tokenize(query)
	expanded := make([]string, 0, len(words))
	for _, word := range words {
		expanded = append(expanded, word)
		if related, ok := termExpansions[word]; ok {
			expanded = append(expanded, tokenize(related)...)
		}
	}
	return expanded
}
