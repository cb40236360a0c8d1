package services

import (
	"context"
	"testing"

	"github.com/JJublanc/tidimondo-sub001/config"
	"github.com/JJublanc/tidimondo-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientSearchIgnoresAccents(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ingredients := NewIngredientService(db, NewEntitlementService(db, config.DefaultPlanLimits()))
	u := createUser(t, db, "u")

	for _, in := range []IngredientInput{
		{Name: "Crème fraîche", Category: models.CategoryDairy, BaseUnit: models.UnitMillilitre},
		{Name: "Crémant", Category: models.CategoryBeverage},
		{Name: "Butter", Category: models.CategoryDairy},
	} {
		_, err := ingredients.Create(ctx, u.ID, in)
		require.NoError(t, err)
	}

	list, err := ingredients.List(ctx, u.ID, CatalogFilter{Query: "creme"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Crème fraîche", list[0].Name)
	assert.Equal(t, "creme fraiche", list[0].NormalizedName)

	list, err = ingredients.List(ctx, u.ID, CatalogFilter{Query: "CRÉ", Category: models.CategoryBeverage})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Crémant", list[0].Name)
}

func TestIngredientDefaultsAndCeiling(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ingredients := NewIngredientService(db, NewEntitlementService(db, config.PlanLimits{Ingredients: 1}))
	u := createUser(t, db, "u")

	ing, err := ingredients.Create(ctx, u.ID, IngredientInput{Name: "Salt"})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryOther, ing.Category)
	assert.Equal(t, models.UnitGram, ing.BaseUnit)
	assert.Empty(t, ing.Allergens)

	_, err = ingredients.Create(ctx, u.ID, IngredientInput{Name: "Pepper"})
	assert.ErrorIs(t, err, ErrPlanLimit)
	_, err = ingredients.Create(ctx, u.ID, IngredientInput{Name: "Pepper", IsPublic: true})
	assert.NoError(t, err)
}

func TestIngredientDeleteWhileReferenced(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ent := NewEntitlementService(db, config.DefaultPlanLimits())
	ingredients := NewIngredientService(db, ent)
	recipes := NewRecipeService(db, ent, nil)
	u := createUser(t, db, "u")
	other := createUser(t, db, "other")

	ing, err := ingredients.Create(ctx, u.ID, IngredientInput{Name: "Leek"})
	require.NoError(t, err)
	r, err := recipes.Create(ctx, u.ID, RecipeInput{Name: "Soup", Portions: 2, Ingredients: []RecipeIngredientInput{
		{IngredientID: ing.ID, Quantity: 2, Unit: models.UnitPiece},
	}})
	require.NoError(t, err)

	assert.ErrorIs(t, ingredients.Delete(ctx, other.ID, ing.ID), ErrNotFound)
	assert.ErrorIs(t, ingredients.Delete(ctx, u.ID, ing.ID), ErrConflict)

	require.NoError(t, recipes.Delete(ctx, u.ID, r.ID))
	require.NoError(t, ingredients.Delete(ctx, u.ID, ing.ID))
	_, err = ingredients.Get(ctx, u.ID, ing.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogIngredientsAreAdminOnly(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ingredients := NewIngredientService(db, NewEntitlementService(db, config.DefaultPlanLimits()))
	u := createUser(t, db, "u")
	root := createUser(t, db, "root", admin)
	flour := createIngredient(t, db, nil, "Flour", models.CategoryStarch, models.UnitGram)

	_, err := ingredients.Update(ctx, u.ID, flour.ID, IngredientInput{Name: "Flour T55", IsPublic: true})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := ingredients.Update(ctx, root.ID, flour.ID, IngredientInput{Name: "Flour T55", Category: models.CategoryStarch, IsPublic: true})
	require.NoError(t, err)
	assert.Equal(t, "flour t55", got.NormalizedName)
}

func TestUtensilLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ent := NewEntitlementService(db, config.PlanLimits{Utensils: 1, Recipes: 5})
	utensils := NewUtensilService(db, ent)
	recipes := NewRecipeService(db, ent, nil)
	u := createUser(t, db, "u")
	other := createUser(t, db, "other")

	wok, err := utensils.Create(ctx, u.ID, UtensilInput{Name: " Wok ", Category: "pan"})
	require.NoError(t, err)
	assert.Equal(t, "Wok", wok.Name)
	_, err = utensils.Create(ctx, u.ID, UtensilInput{Name: "Grill"})
	assert.ErrorIs(t, err, ErrPlanLimit)

	list, err := utensils.List(ctx, other.ID, CatalogFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = utensils.List(ctx, u.ID, CatalogFilter{Query: "wo", Mine: true})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = recipes.Create(ctx, u.ID, RecipeInput{Name: "Stir fry", Portions: 2, Utensils: []RecipeUtensilInput{{UtensilID: wok.ID}}})
	require.NoError(t, err)
	assert.ErrorIs(t, utensils.Delete(ctx, u.ID, wok.ID), ErrConflict)
}
