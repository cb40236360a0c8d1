package services

import (
	"context"
	"testing"

	"github.com/JJublanc/tidimondo-sub001/config"
	"github.com/JJublanc/tidimondo-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealDateMustFallInsideStay(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	meals := NewMealService(db, nil)
	u := createUser(t, db, "u")
	stay := createStay(t, db, u.ID, "2024-02-10", "2024-02-12", 4)

	for _, d := range []string{"2024-02-09", "2024-02-13"} {
		_, err := meals.Create(ctx, u.ID, stay.ID, MealInput{Date: d, MealType: models.MealLunch, Description: "x"})
		assert.ErrorIs(t, err, ErrInvalid, d)
	}

	for _, d := range []string{"2024-02-10", "2024-02-12"} {
		_, err := meals.Create(ctx, u.ID, stay.ID, MealInput{Date: d, MealType: models.MealLunch, Description: "x"})
		assert.NoError(t, err, d)
	}

	m, err := meals.Create(ctx, u.ID, stay.ID, MealInput{Date: "2024-02-11", MealType: models.MealDinner, Description: "x"})
	require.NoError(t, err)
	_, err = meals.Update(ctx, u.ID, stay.ID, m.ID, MealInput{Date: "2024-02-20", MealType: models.MealDinner, Description: "x"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMealNeedsContent(t *testing.T) {
	db := newTestDB(t)
	meals := NewMealService(db, nil)
	u := createUser(t, db, "u")
	stay := createStay(t, db, u.ID, "2024-02-10", "2024-02-12", 4)

	_, err := meals.Create(context.Background(), u.ID, stay.ID, MealInput{Date: "2024-02-10", MealType: models.MealLunch, Description: "  "})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = meals.Create(context.Background(), u.ID, stay.ID, MealInput{
		Date: "2024-02-10", MealType: models.MealBreakfast,
		Composition: &models.MealComposition{},
	})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMealPortionsDefaultToParticipants(t *testing.T) {
	db := newTestDB(t)
	meals := NewMealService(db, nil)
	u := createUser(t, db, "u")
	stay := createStay(t, db, u.ID, "2024-02-10", "2024-02-12", 5)

	m, err := meals.Create(context.Background(), u.ID, stay.ID, MealInput{Date: "2024-02-10", MealType: models.MealLunch, Description: "Soup"})
	require.NoError(t, err)
	assert.Equal(t, 5, m.Portions)

	m, err = meals.Create(context.Background(), u.ID, stay.ID, MealInput{Date: "2024-02-10", MealType: models.MealDinner, Description: "Soup", Portions: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Portions)
}

func TestMealRecipeMustBeVisibleToOwner(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	meals := NewMealService(db, nil)
	u := createUser(t, db, "u")
	other := createUser(t, db, "other")
	stay := createStay(t, db, u.ID, "2024-02-10", "2024-02-12", 4)

	private := &models.Recipe{UserID: &other.ID, Name: "Secret", Portions: 2}
	public := &models.Recipe{UserID: &other.ID, Name: "Shared", Portions: 2, IsPublic: true}
	require.NoError(t, db.Create(private).Error)
	require.NoError(t, db.Create(public).Error)

	_, err := meals.Create(ctx, u.ID, stay.ID, MealInput{Date: "2024-02-10", MealType: models.MealLunch, RecipeID: &private.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	m, err := meals.Create(ctx, u.ID, stay.ID, MealInput{Date: "2024-02-10", MealType: models.MealLunch, RecipeID: &public.ID})
	require.NoError(t, err)
	assert.Equal(t, public.ID, *m.RecipeID)
}

func TestMealCompositionIngredientsAreChecked(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	meals := NewMealService(db, nil)
	u := createUser(t, db, "u")
	other := createUser(t, db, "other")
	stay := createStay(t, db, u.ID, "2024-02-10", "2024-02-12", 4)
	hidden := createIngredient(t, db, &other.ID, "Hidden", models.CategoryOther, models.UnitGram)
	milk := createIngredient(t, db, nil, "Milk", models.CategoryDairy, models.UnitMillilitre)

	_, err := meals.Create(ctx, u.ID, stay.ID, MealInput{Date: "2024-02-10", MealType: models.MealBreakfast,
		Composition: &models.MealComposition{Ingredients: []models.CompositionItem{{IngredientID: hidden.ID, Quantity: 1}}}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = meals.Create(ctx, u.ID, stay.ID, MealInput{Date: "2024-02-10", MealType: models.MealBreakfast,
		Composition: &models.MealComposition{Beverages: []models.CompositionItem{{IngredientID: milk.ID, Quantity: 1, Unit: "bucket"}}}})
	assert.ErrorIs(t, err, ErrInvalid)

	m, err := meals.Create(ctx, u.ID, stay.ID, MealInput{Date: "2024-02-10", MealType: models.MealBreakfast,
		Composition: &models.MealComposition{
			Beverages:   []models.CompositionItem{{IngredientID: milk.ID, Quantity: 20, Unit: "cl", PerParticipant: true}},
			Ingredients: []models.CompositionItem{{Name: "Jam from the neighbour", Quantity: 1}},
		}})
	require.NoError(t, err)
	comp, err := m.DecodeComposition()
	require.NoError(t, err)
	require.Len(t, comp.Beverages, 1)
	assert.True(t, comp.Beverages[0].PerParticipant)
}

func TestMealListOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	meals := NewMealService(db, nil)
	u := createUser(t, db, "u")
	stay := createStay(t, db, u.ID, "2024-02-10", "2024-02-12", 4)

	add := func(d, typ string, pos int, label string) {
		_, err := meals.Create(ctx, u.ID, stay.ID, MealInput{Date: d, MealType: typ, Position: pos, Description: label})
		require.NoError(t, err)
	}
	add("2024-02-11", models.MealLunch, 0, "d2-lunch")
	add("2024-02-10", models.MealDinner, 1, "d1-dinner-b")
	add("2024-02-10", models.MealDinner, 0, "d1-dinner-a")
	add("2024-02-10", models.MealBreakfast, 0, "d1-breakfast")
	add("2024-02-10", models.MealAperitif, 0, "d1-aperitif")

	list, err := meals.List(ctx, u.ID, stay.ID)
	require.NoError(t, err)
	var got []string
	for _, m := range list {
		got = append(got, m.Description)
	}
	assert.Equal(t, []string{"d1-breakfast", "d1-dinner-a", "d1-dinner-b", "d1-aperitif", "d2-lunch"}, got)
}

func TestMealChangesMarkShoppingListStale(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	n := &recordingNotifier{}
	meals := NewMealService(db, n)
	u := createUser(t, db, "u")
	stay := createStay(t, db, u.ID, "2024-02-10", "2024-02-12", 4)

	m, err := meals.Create(ctx, u.ID, stay.ID, MealInput{Date: "2024-02-10", MealType: models.MealLunch, Description: "Soup"})
	require.NoError(t, err)
	_, err = meals.Update(ctx, u.ID, stay.ID, m.ID, MealInput{Date: "2024-02-11", MealType: models.MealLunch, Description: "Salad"})
	require.NoError(t, err)
	require.NoError(t, meals.Delete(ctx, u.ID, stay.ID, m.ID))

	require.Len(t, n.broadcasts, 3)
	assert.Equal(t, map[string]any{"kind": "shopping_list.stale", "stay_id": stay.ID}, n.broadcasts[0])
}

func TestShoppingListServiceBuild(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ent := NewEntitlementService(db, config.DefaultPlanLimits())
	meals := NewMealService(db, nil)
	recipes := NewRecipeService(db, ent, nil)
	lists := NewShoppingListService(db)

	u := createUser(t, db, "u")
	other := createUser(t, db, "other")
	potato := createIngredient(t, db, nil, "Potato", models.CategoryVegetable, models.UnitGram)
	reblochon := createIngredient(t, db, nil, "Reblochon", models.CategoryDairy, models.UnitGram)
	onion := createIngredient(t, db, nil, "Onion", models.CategoryVegetable, models.UnitPiece)
	milk := createIngredient(t, db, nil, "Milk", models.CategoryDairy, models.UnitMillilitre)
	bread := createIngredient(t, db, nil, "Bread", models.CategoryStarch, models.UnitPiece)

	recipe, err := recipes.Create(ctx, u.ID, RecipeInput{Name: "Tartiflette", Portions: 4, Ingredients: []RecipeIngredientInput{
		{IngredientID: potato.ID, Quantity: 1, Unit: models.UnitKilogram},
		{IngredientID: reblochon.ID, Quantity: 500, Unit: models.UnitGram},
		{IngredientID: onion.ID, Quantity: 2, Unit: models.UnitPiece, Optional: true},
	}})
	require.NoError(t, err)

	stay := createStay(t, db, u.ID, "2024-02-10", "2024-02-12", 4)
	_, err = meals.Create(ctx, u.ID, stay.ID, MealInput{Date: "2024-02-10", MealType: models.MealDinner, RecipeID: &recipe.ID, Portions: intPtr(8)})
	require.NoError(t, err)
	_, err = meals.Create(ctx, u.ID, stay.ID, MealInput{Date: "2024-02-11", MealType: models.MealBreakfast,
		Composition: &models.MealComposition{
			Ingredients: []models.CompositionItem{{IngredientID: bread.ID, Quantity: 1}},
			Beverages:   []models.CompositionItem{{IngredientID: milk.ID, Quantity: 25, Unit: "cl", PerParticipant: true}},
		}})
	require.NoError(t, err)
	_, err = meals.Create(ctx, u.ID, stay.ID, MealInput{Date: "2024-02-11", MealType: models.MealLunch, Description: "Restaurant"})
	require.NoError(t, err)

	list, err := lists.Build(ctx, u.ID, stay.ID)
	require.NoError(t, err)
	assert.Equal(t, ShoppingSummary{Participants: 4, Days: 3, Meals: 3, Recipes: 1, Ingredients: 5}, list.Summary)

	totals := map[string]string{}
	for _, g := range list.Categories {
		for _, l := range g.Lines {
			totals[l.Name] = FormatQuantity(l.Quantity, l.Unit)
		}
	}
	assert.Equal(t, map[string]string{
		"Potato":    "2 kg",
		"Reblochon": "1 kg",
		"Onion":     "4 piece",
		"Milk":      "1 l",
		"Bread":     "1 piece",
	}, totals)

	_, err = lists.Build(ctx, other.ID, stay.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, recipes.Delete(ctx, u.ID, recipe.ID))
	list, err = lists.Build(ctx, u.ID, stay.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Summary.Recipes)
	assert.Equal(t, 2, list.Summary.Ingredients)
}

func TestShoppingListIncludesLooseBreakfastItems(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	meals := NewMealService(db, nil)
	lists := NewShoppingListService(db)
	u := createUser(t, db, "u")
	stay := createStay(t, db, u.ID, "2024-02-10", "2024-02-11", 4)

	_, err := meals.Create(ctx, u.ID, stay.ID, MealInput{Date: "2024-02-10", MealType: models.MealBreakfast,
		Composition: &models.MealComposition{Ingredients: []models.CompositionItem{
			{Name: "Croissant", Quantity: 2, Unit: models.UnitPiece, PerParticipant: true},
		}}})
	require.NoError(t, err)

	list, err := lists.Build(ctx, u.ID, stay.ID)
	require.NoError(t, err)
	require.Len(t, list.Categories, 1)
	assert.Equal(t, models.CategoryOther, list.Categories[0].Category)
	require.Len(t, list.Categories[0].Lines, 1)
	line := list.Categories[0].Lines[0]
	assert.Equal(t, "Croissant", line.Name)
	assert.Equal(t, "8 piece", FormatQuantity(line.Quantity, line.Unit))
	assert.Equal(t, 1, list.Summary.Ingredients)
}
