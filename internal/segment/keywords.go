package segment

import (
	"regexp"
)

// keywordRule attaches one topical tag when any of its patterns matches.
// Rules are an ordered list so tag order is deterministic across runs;
// extraction is a pure function of content.
type keywordRule struct {
	tag      string
	patterns []*regexp.Regexp
}

func rule(tag string, exprs ...string) keywordRule {
	r := keywordRule{tag: tag}
	for _, e := range exprs {
		r.patterns = append(r.patterns, regexp.MustCompile(`(?i)`+e))
	}
	return r
}

// keywordRules is the fixed topical vocabulary. This is coarse
// recall-boosting metadata, not classification: a provision often
// receives several tags, and tags are never removed once attached.
var keywordRules = []keywordRule{
	rule("parking", `\bpark(ing|ed)?\b`, `\bstopping\b`, `\bstanding\b.*\bvehicle`),
	rule("noise", `\bnoise\b`, `\bquiet\b`, `\bamplifi`, `\bdecibel`, `\bdB[A]?\b`),
	rule("height", `\bheight\b`, `\bstoreys?\b`, `\bangular plane\b`, `\bmetres? in height\b`),
	rule("density", `\bdensity\b`, `\bfloor space index\b`, `\bFSI\b`, `\bgross floor area\b`),
	rule("setback", `\bsetbacks?\b`, `\byard requirements?\b`, `\bbuild-?to line\b`),
	rule("transit", `\btransit\b`, `\bstreetcar\b`, `\bsubway\b`, `\bbus (lane|route|stop)\b`, `\bTTC\b`),
	rule("heritage", `\bheritage\b`, `\bhistoric(al)? (building|property|district)\b`, `\bconservation district\b`),
	rule("zoning", `\bzon(e|ing|ed)\b`, `\bpermitted uses?\b`, `\bland use\b`),
	rule("trees", `\btrees?\b`, `\barborist\b`, `\bcanopy\b`, `\bravine\b`),
	rule("animals", `\banimals?\b`, `\bdogs?\b`, `\bcats?\b`, `\bleash\b`, `\bpets?\b`),
	rule("waste", `\bwaste\b`, `\bgarbage\b`, `\brecycl`, `\blitter`, `\bdumping\b`),
	rule("snow", `\bsnow\b`, `\bice\b.*\bsidewalk`, `\bwinter maintenance\b`),
	rule("construction", `\bconstruction\b`, `\bdemoli(tion|sh)\b`, `\bbuilding permit\b`, `\bhoarding\b`),
	rule("housing", `\bdwelling\b`, `\bresidential\b`, `\brooming house\b`, `\bmultiplex\b`, `\bapartment\b`),
	rule("business", `\blicen[cs]e\b`, `\bvendor\b`, `\bretail\b`, `\bpatio\b`, `\bsign(s|age)?\b`),
	rule("streets", `\bstreets?\b`, `\bsidewalks?\b`, `\bboulevards?\b`, `\bhighways?\b`, `\blaneways?\b`),
	rule("water", `\bwater\b`, `\bsewer\b`, `\bstormwater\b`, `\bdrainage\b`),
	rule("fences", `\bfences?\b`, `\bhedges?\b`, `\bretaining walls?\b`),
	rule("smoking", `\bsmok(e|ing)\b`, `\bvap(e|ing)\b`, `\btobacco\b`),
	rule("fireworks", `\bfireworks?\b`, `\bpyrotechnic`),
}

// ExtractKeywords returns the ordered, deduplicated topical tags whose
// rules match anywhere in the text.
func ExtractKeywords(text string) []string {
	var tags []string
	for _, r := range keywordRules {
		for _, p := range r.patterns {
			if p.MatchString(text) {
				tags = append(tags, r.tag)
				break
			}
		}
	}
	return tags
}

// KnownTags returns the fixed tag vocabulary in rule order.
func KnownTags() []string {
	tags := make([]string, len(keywordRules))
	for i, r := range keywordRules {
		tags[i] = r.tag
	}
	return tags
}
