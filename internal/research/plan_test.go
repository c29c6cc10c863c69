package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanValidate(t *testing.T) {
	p := testPlan()
	require.NoError(t, p.Validate())
}

func TestPlanValidateRejectsEmptyComponents(t *testing.T) {
	p := Plan{}
	assert.Error(t, p.Validate())
}

func TestPlanValidateRejectsDuplicateNames(t *testing.T) {
	p := testPlan()
	p.Components[1].Name = "A"
	assert.Error(t, p.Validate())
}

func TestPlanValidateRejectsMissingSuccessCriteria(t *testing.T) {
	p := testPlan()
	p.Components[0].SuccessCriteria = nil
	assert.Error(t, p.Validate())
}

func TestPlanValidateRejectsSequencingMismatch(t *testing.T) {
	p := testPlan()
	p.Sequencing = []string{"A", "B"}
	assert.Error(t, p.Validate())
}

func TestBasicPlanIsValid(t *testing.T) {
	p := BasicPlan("what is the capital of France")
	require.NoError(t, p.Validate())
	assert.Equal(t, "Basic Research", p.Components[0].Name)
	assert.Equal(t, []string{"what is the capital of France"}, p.Components[0].SubQuestions)
}

func TestComponentResultAppendLearningsDedupes(t *testing.T) {
	r := &ComponentResult{}
	r.AppendLearnings("a", "b")
	r.AppendLearnings("b", "c", "")
	assert.Equal(t, []string{"a", "b", "c"}, r.Learnings)
}

func TestComponentResultAppendURLsDedupes(t *testing.T) {
	r := &ComponentResult{}
	r.AppendURLs("http://x", "http://y")
	r.AppendURLs("http://y", "http://z")
	assert.Equal(t, []string{"http://x", "http://y", "http://z"}, r.VisitedURLs)
}

func TestGapMapNonNeutral(t *testing.T) {
	g := GapMap{
		"c1": GapNoCoverageYet,
		"c2": "missing revenue figures",
		"c3": GapInitial,
		"c4": GapUnknown,
	}
	nn := g.NonNeutral()
	assert.ElementsMatch(t, []string{"c2"}, nn)
}
