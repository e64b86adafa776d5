package lawtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_LowercasesAndSplits(t *testing.T) {
	tokens := Tokenize("No Person shall make NOISE after 11pm.")

	assert.Equal(t, []string{"no", "person", "shall", "make", "noise", "after", "11pm"}, tokens)
}

func TestTokenize_KeepsSectionIdentifiersWhole(t *testing.T) {
	// Dotted/hyphenated citations must index as one term
	tokens := Tokenize("§ 591-2.1 Construction noise")

	assert.Contains(t, tokens, "591-2.1")
	assert.Contains(t, tokens, "construction")
}

func TestTokenize_DropsSingleCharacterNoise(t *testing.T) {
	tokens := Tokenize("a b cd")

	assert.Equal(t, []string{"cd"}, tokens)
}

func TestStem_ReducesWordForms(t *testing.T) {
	// "parked"/"parking" -> common root
	assert.Equal(t, Stem("parked"), Stem("parking"))
	assert.Equal(t, "park", Stem("parked"))
}

func TestStem_LeavesIdentifiersAlone(t *testing.T) {
	assert.Equal(t, "591-2.1", Stem("591-2.1"))
	assert.Equal(t, "11pm", Stem("11pm"))
}

func TestStemAll_PreservesOrder(t *testing.T) {
	stemmed := StemAll([]string{"heights", "parking", "591-2.1"})

	assert.Equal(t, []string{"height", "park", "591-2.1"}, stemmed)
}

func TestQueryTerms_DropsTrivialTokens(t *testing.T) {
	terms := QueryTerms("is it ok to park on my street")

	assert.NotContains(t, terms, "is")
	assert.NotContains(t, terms, "it")
	assert.NotContains(t, terms, "ok")
	assert.NotContains(t, terms, "to")
	assert.NotContains(t, terms, "on")
	assert.NotContains(t, terms, "my")
	assert.Contains(t, terms, "park")
	assert.Contains(t, terms, "street")
}

func TestQueryTerms_EmptyForPurePunctuation(t *testing.T) {
	assert.Empty(t, QueryTerms(`""" ?! ...`))
}
