package search

import "regexp"

// expansionRule maps one informal trigger pattern to the legal
// vocabulary the index was built on. Rules are evaluated in order and
// their term sets unioned, so the table order fixes the output order.
type expansionRule struct {
	name    string
	trigger *regexp.Regexp
	terms   []string
}

func phrase(name, pattern string, terms ...string) expansionRule {
	return expansionRule{
		name:    name,
		trigger: regexp.MustCompile(`(?i)` + pattern),
		terms:   terms,
	}
}

// expansionRules bridges citizen phrasing to bylaw phrasing. Triggers
// are deliberately loose; the ranked search tolerates extra terms and
// recall matters more than precision here.
var expansionRules = []expansionRule{
	phrase("noise", `loud|noisy|noise|can'?t sleep|music at night|amplifi`,
		"noise", "quiet", "amplified", "sound"),
	phrase("transit", `streetcar|subway|\bttc\b|\bbus\b|transit`,
		"transit", "service", "fare", "vehicle"),
	phrase("parking", `\bpark(ed|ing)?\b|towed|tow truck|parking ticket`,
		"parking", "permit", "boulevard", "vehicle"),
	phrase("trees", `\btrees?\b|cut.{0,20}down|branch(es)?`,
		"tree", "injure", "destroy", "permit"),
	phrase("fences", `\bfence\b|\bhedge\b|property line`,
		"fence", "height", "boundary"),
	phrase("snow", `\bsnow\b|\bice\b|icy|shovel`,
		"snow", "ice", "removal", "sidewalk"),
	phrase("waste", `garbage|trash|litter|dump(ing|ed)?|recycl`,
		"waste", "refuse", "litter", "collection"),
	phrase("animals", `\bdogs?\b|\bcats?\b|leash|barking|\bpets?\b`,
		"animal", "dog", "leash", "owner"),
	phrase("housing", `basement apartment|second(ary)? suite|rooming house|landlord`,
		"dwelling", "unit", "secondary", "suite"),
	phrase("height", `\btall\b|tower|\bcondo\b|shadow|stor(ey|y|ies)`,
		"height", "building", "storeys", "angular", "plane"),
	phrase("patios", `patio|sidewalk caf|restaurant seating`,
		"cafe", "boulevard", "marquee"),
	phrase("rentals", `airbnb|short.?term rental`,
		"short-term", "rental", "principal", "residence"),
	phrase("smoking", `smok(e|ing)|vap(e|ing)`,
		"smoking", "prohibited", "enclosed"),
	phrase("fireworks", `firework|firecracker|pyrotechnic`,
		"fireworks", "discharge", "permit"),
	phrase("idling", `idling|engine (left )?running`,
		"idling", "vehicle", "minutes"),
	phrase("water", `flood(ing|ed)?|drain|downspout|sewer`,
		"water", "sewer", "drainage", "discharge"),
	phrase("construction", `construction|jackhammer|renovat|building site`,
		"construction", "equipment", "permit"),
	phrase("signs", `billboard|\bsigns?\b|advertis`,
		"sign", "display", "erect"),
}

// placeNames are locations recognized in citizen queries and carried
// into the term set verbatim. Provisions frequently name the district
// they apply to.
var placeNames = []string{
	"Scarborough",
	"Etobicoke",
	"North York",
	"East York",
	"Danforth",
	"Kensington Market",
	"Leslieville",
	"Liberty Village",
	"Parkdale",
	"Rosedale",
	"Yorkville",
	"High Park",
	"The Beaches",
	"Queen Street",
	"Yonge Street",
}
