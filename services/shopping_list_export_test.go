package services

import (
	"testing"

	"github.com/JJublanc/tidimondo-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleList() *ShoppingList {
	return &ShoppingList{
		StayID:    3,
		StayName:  "Chalet",
		StartDate: "2024-02-10",
		EndDate:   "2024-02-12",
		Categories: []CategoryGroup{
			{Category: models.CategoryVegetable, Label: "Vegetables", Lines: []AggregatedLine{
				{IngredientID: 1, Name: "Potato", Category: models.CategoryVegetable, Quantity: 1500, Unit: "g", UsedIn: []string{"Tartiflette"}},
			}},
			{Category: models.CategoryDairy, Label: "Dairy", Lines: []AggregatedLine{
				{IngredientID: 2, Name: "Reblochon", Category: models.CategoryDairy, Quantity: 1, Unit: "piece",
					UsedIn: []string{"Gratin", "Tartiflette"}, Notes: []string{"ripe"}},
			}},
		},
		Summary: ShoppingSummary{Participants: 4, Days: 3, Meals: 2, Recipes: 2, Ingredients: 2},
	}
}

func TestRenderText(t *testing.T) {
	got, err := RenderText(sampleList())
	require.NoError(t, err)

	want := `SHOPPING LIST - Chalet
From 2024-02-10 to 2024-02-12
Participants: 4 | Days: 3 | Meals: 2 | Recipes: 2 | Ingredients: 2

== Vegetables ==
[ ] Potato: 1.5 kg (used in: Tartiflette)

== Dairy ==
[ ] Reblochon: 1 piece (used in: Gratin, Tartiflette)
      note: ripe
`
	assert.Equal(t, want, got)
}

func TestRenderTextEmpty(t *testing.T) {
	list := &ShoppingList{StayName: "Empty", StartDate: "2024-05-01", EndDate: "2024-05-01",
		Categories: []CategoryGroup{}, Summary: ShoppingSummary{Participants: 2, Days: 1}}
	got, err := RenderText(list)
	require.NoError(t, err)
	assert.Equal(t, `SHOPPING LIST - Empty
From 2024-05-01 to 2024-05-01
Participants: 2 | Days: 1 | Meals: 0 | Recipes: 0 | Ingredients: 0

Nothing to buy yet.
`, got)
}

func TestRenderHTMLEscapesAndIsDeterministic(t *testing.T) {
	list := sampleList()
	list.StayName = `<b>Chalet</b>`

	first, err := RenderHTML(list)
	require.NoError(t, err)
	second, err := RenderHTML(list)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Contains(t, first, "&lt;b&gt;Chalet&lt;/b&gt;")
	assert.NotContains(t, first, "<b>Chalet</b>")
	assert.Contains(t, first, "<h2>Vegetables</h2>")
	assert.Contains(t, first, "<strong>Potato</strong>: 1.5 kg")
	assert.Contains(t, first, `<span class="note">ripe</span>`)
}

func TestFormatQuantity(t *testing.T) {
	cases := []struct {
		q    float64
		unit string
		want string
	}{
		{1500, "g", "1.5 kg"},
		{999, "g", "999 g"},
		{2500, "ml", "2.5 l"},
		{1000, "ml", "1 l"},
		{0.3333, "l", "0.33 l"},
		{2, "piece", "2 piece"},
		{3, "", "3"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatQuantity(c.q, c.unit))
	}
}
