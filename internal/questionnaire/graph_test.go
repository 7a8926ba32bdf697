package questionnaire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGraph_Validation(t *testing.T) {
	tests := []struct {
		name      string
		questions []Question
		wantErr   bool
	}{
		{
			name: "valid linear graph",
			questions: []Question{
				{ID: "a", Kind: KindSingleChoice, Required: true},
				{ID: "b", Kind: KindFreeText, Required: true},
			},
			wantErr: false,
		},
		{
			name: "valid forward branch",
			questions: []Question{
				{ID: "a", Kind: KindSingleChoice, Required: true, Options: []Option{
					{Label: "Yes", Value: "yes", NextQuestionID: "c"},
					{Label: "No", Value: "no"},
				}},
				{ID: "b", Kind: KindFreeText, Required: true},
				{ID: "c", Kind: KindFreeText, Required: true},
			},
			wantErr: false,
		},
		{
			name:      "empty graph",
			questions: nil,
			wantErr:   true,
		},
		{
			name: "dangling successor",
			questions: []Question{
				{ID: "a", Kind: KindSingleChoice, Options: []Option{
					{Label: "Yes", Value: "yes", NextQuestionID: "missing"},
				}},
			},
			wantErr: true,
		},
		{
			name: "backward successor",
			questions: []Question{
				{ID: "a", Kind: KindFreeText, Required: true},
				{ID: "b", Kind: KindSingleChoice, Options: []Option{
					{Label: "Again", Value: "again", NextQuestionID: "a"},
				}},
			},
			wantErr: true,
		},
		{
			name: "duplicate id",
			questions: []Question{
				{ID: "a", Kind: KindFreeText},
				{ID: "a", Kind: KindFreeText},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGraph(tt.questions)
			if tt.wantErr {
				require.Error(t, err)
				var ie *IntegrityError
				assert.True(t, errors.As(err, &ie), "expected IntegrityError, got %T", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.questions[0].ID, g.StartID())
		})
	}
}

func TestGraph_NextID(t *testing.T) {
	g := MustGraph([]Question{
		{ID: "gate", Kind: KindSingleChoice, Required: true, Options: []Option{
			{Label: "Yes", Value: "yes", NextQuestionID: "detail"},
			{Label: "No", Value: "no"},
		}},
		{ID: "middle", Kind: KindFreeText, Required: true},
		{ID: "detail", Kind: KindFreeText, Required: true},
	})

	t.Run("option override wins", func(t *testing.T) {
		next, ok := g.NextID("gate", TextAnswer("yes"))
		require.True(t, ok)
		assert.Equal(t, "detail", next)
	})

	t.Run("default order when option has no successor", func(t *testing.T) {
		next, ok := g.NextID("gate", TextAnswer("no"))
		require.True(t, ok)
		assert.Equal(t, "middle", next)
	})

	t.Run("last question is terminal", func(t *testing.T) {
		_, ok := g.NextID("detail", TextAnswer("anything"))
		assert.False(t, ok)
	})

	t.Run("list answers never branch", func(t *testing.T) {
		next, ok := g.NextID("gate", ListAnswer("yes"))
		require.True(t, ok)
		assert.Equal(t, "middle", next)
	})
}

func TestDefaultGraph(t *testing.T) {
	g := DefaultGraph()

	assert.Equal(t, "treatment_category", g.StartID())
	assert.Equal(t, 12, g.Len())

	// A formal diagnosis routes into the details step; symptoms without a
	// diagnosis skip it.
	next, ok := g.NextID("previous_diagnosis", TextAnswer("yes"))
	require.True(t, ok)
	assert.Equal(t, "diagnosis_details", next)

	next, ok = g.NextID("previous_diagnosis", TextAnswer("symptoms"))
	require.True(t, ok)
	assert.Equal(t, "allergies_conditions", next)

	next, ok = g.NextID("previous_diagnosis", TextAnswer("second_opinion"))
	require.True(t, ok)
	assert.Equal(t, "diagnosis_details", next)

	q, ok := g.Question("passport_country")
	require.True(t, ok)
	assert.Equal(t, KindDropdown, q.Kind)
	assert.Len(t, q.Options, len(CountryList))

	q, ok = g.Question("diagnosis_details")
	require.True(t, ok)
	assert.True(t, q.AllowsAttachment)
}

// Every traversal over a validated graph terminates in at most Len steps,
// whatever the answers, because branch edges only point forward.
func TestGraph_TraversalTerminates(t *testing.T) {
	g := DefaultGraph()

	for _, q := range g.Questions() {
		answers := []Answer{TextAnswer("nothing-matches")}
		for _, opt := range q.Options {
			answers = append(answers, TextAnswer(opt.Value))
		}
		for _, a := range answers {
			steps := 0
			id := q.ID
			for {
				next, ok := g.NextID(id, a)
				if !ok {
					break
				}
				id = next
				steps++
				require.LessOrEqual(t, steps, g.Len(), "traversal from %q did not terminate", q.ID)
			}
		}
	}
}
