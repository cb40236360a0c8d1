package services

import (
	"context"
	"testing"

	"github.com/JJublanc/tidimondo-sub001/config"
	"github.com/JJublanc/tidimondo-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRecipeService(t *testing.T, limits config.PlanLimits) (*gorm.DB, *RecipeService) {
	db := newTestDB(t)
	return db, NewRecipeService(db, NewEntitlementService(db, limits), nil)
}

func TestRecipeCreateStoresChildren(t *testing.T) {
	ctx := context.Background()
	db, recipes := newRecipeService(t, config.DefaultPlanLimits())
	u := createUser(t, db, "u")
	potato := createIngredient(t, db, nil, "Potato", models.CategoryVegetable, models.UnitGram)
	pan := &models.Utensil{Name: "Pan", IsPublic: true}
	require.NoError(t, db.Create(pan).Error)

	r, err := recipes.Create(ctx, u.ID, RecipeInput{
		Name:     "  Gratin ",
		Portions: 4,
		Ingredients: []RecipeIngredientInput{
			{IngredientID: potato.ID, Quantity: 800, Unit: models.UnitGram, Note: " peeled "},
		},
		Utensils: []RecipeUtensilInput{{UtensilID: pan.ID, Required: boolPtr(false)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Gratin", r.Name)
	assert.Equal(t, 1, r.Difficulty)
	require.Len(t, r.Ingredients, 1)
	assert.Equal(t, "peeled", r.Ingredients[0].Note)
	require.NotNil(t, r.Ingredients[0].Ingredient)
	assert.Equal(t, "Potato", r.Ingredients[0].Ingredient.Name)
	require.Len(t, r.Utensils, 1)
	assert.False(t, r.Utensils[0].Required)
}

func TestRecipeCreateRollsBackOnBadIngredient(t *testing.T) {
	ctx := context.Background()
	db, recipes := newRecipeService(t, config.DefaultPlanLimits())
	u := createUser(t, db, "u")
	other := createUser(t, db, "other")
	hidden := createIngredient(t, db, &other.ID, "Truffle", models.CategoryVegetable, models.UnitGram)

	_, err := recipes.Create(ctx, u.ID, RecipeInput{Name: "Risotto", Portions: 2, Ingredients: []RecipeIngredientInput{
		{IngredientID: hidden.ID, Quantity: 10, Unit: models.UnitGram},
	}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = recipes.Create(ctx, u.ID, RecipeInput{Name: "Risotto", Portions: 2, Ingredients: []RecipeIngredientInput{
		{IngredientID: hidden.ID, Quantity: 10, Unit: "handful"},
	}})
	assert.ErrorIs(t, err, ErrInvalid)

	var n int64
	db.Model(&models.Recipe{}).Count(&n)
	assert.Zero(t, n)
}

func TestRecipeUpdateReplacesChildren(t *testing.T) {
	ctx := context.Background()
	db, recipes := newRecipeService(t, config.DefaultPlanLimits())
	u := createUser(t, db, "u")
	a := createIngredient(t, db, nil, "Apple", models.CategoryFruit, models.UnitPiece)
	b := createIngredient(t, db, nil, "Butter", models.CategoryDairy, models.UnitGram)

	r, err := recipes.Create(ctx, u.ID, RecipeInput{Name: "Tart", Portions: 6, Ingredients: []RecipeIngredientInput{
		{IngredientID: a.ID, Quantity: 4, Unit: models.UnitPiece},
	}})
	require.NoError(t, err)

	r, err = recipes.Update(ctx, u.ID, r.ID, RecipeInput{Name: "Tart", Portions: 6, Ingredients: []RecipeIngredientInput{
		{IngredientID: b.ID, Quantity: 100, Unit: models.UnitGram},
		{IngredientID: a.ID, Quantity: 5, Unit: models.UnitPiece},
	}})
	require.NoError(t, err)
	require.Len(t, r.Ingredients, 2)
	assert.Equal(t, b.ID, r.Ingredients[0].IngredientID)
	assert.Equal(t, a.ID, r.Ingredients[1].IngredientID)

	var n int64
	db.Model(&models.RecipeIngredient{}).Count(&n)
	assert.EqualValues(t, 2, n)
}

func TestRecipeVisibilityAndOwnership(t *testing.T) {
	ctx := context.Background()
	db, recipes := newRecipeService(t, config.DefaultPlanLimits())
	u := createUser(t, db, "u")
	other := createUser(t, db, "other")
	root := createUser(t, db, "root", admin)

	private, err := recipes.Create(ctx, other.ID, RecipeInput{Name: "Secret", Portions: 2})
	require.NoError(t, err)
	shared, err := recipes.Create(ctx, other.ID, RecipeInput{Name: "Shared", Portions: 2, IsPublic: true})
	require.NoError(t, err)
	catalog := &models.Recipe{Name: "Catalog", Portions: 4, IsPublic: true}
	require.NoError(t, db.Create(catalog).Error)

	_, err = recipes.Get(ctx, u.ID, private.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = recipes.Get(ctx, u.ID, shared.ID)
	assert.NoError(t, err)

	_, err = recipes.Update(ctx, u.ID, shared.ID, RecipeInput{Name: "Mine now", Portions: 2, IsPublic: true})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, recipes.Delete(ctx, u.ID, shared.ID), ErrForbidden)

	_, err = recipes.Update(ctx, u.ID, catalog.ID, RecipeInput{Name: "Catalog", Portions: 6, IsPublic: true})
	assert.ErrorIs(t, err, ErrForbidden)
	updated, err := recipes.Update(ctx, root.ID, catalog.ID, RecipeInput{Name: "Catalog", Portions: 6, IsPublic: true})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Portions)

	list, err := recipes.List(ctx, u.ID, RecipeFilter{})
	require.NoError(t, err)
	var names []string
	for _, r := range list {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Catalog", "Shared"}, names)
}

func TestRecipePrivateCeiling(t *testing.T) {
	ctx := context.Background()
	db, recipes := newRecipeService(t, config.PlanLimits{Recipes: 1})
	u := createUser(t, db, "u")

	_, err := recipes.Create(ctx, u.ID, RecipeInput{Name: "One", Portions: 1})
	require.NoError(t, err)
	_, err = recipes.Create(ctx, u.ID, RecipeInput{Name: "Two", Portions: 1})
	assert.ErrorIs(t, err, ErrPlanLimit)

	pub, err := recipes.Create(ctx, u.ID, RecipeInput{Name: "Public", Portions: 1, IsPublic: true})
	require.NoError(t, err)
	_, err = recipes.Update(ctx, u.ID, pub.ID, RecipeInput{Name: "Public", Portions: 1})
	assert.ErrorIs(t, err, ErrPlanLimit)

	got, err := recipes.Get(ctx, u.ID, pub.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPublic)
}

func TestRecipeImageUploadedOnlyAfterWrite(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := &memoryImageStore{}
	recipes := NewRecipeService(db, NewEntitlementService(db, config.PlanLimits{Recipes: 1}), store)
	u := createUser(t, db, "u")

	_, err := recipes.Create(ctx, u.ID, RecipeInput{Name: "Bad", Portions: 1, Image: coverImage, Ingredients: []RecipeIngredientInput{
		{IngredientID: 999, Quantity: 1, Unit: models.UnitGram},
	}})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.uploads)

	first, err := recipes.Create(ctx, u.ID, RecipeInput{Name: "Tartiflette", Portions: 4, Image: coverImage})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/recipes/1.png", first.ImageURL)
	assert.Len(t, store.uploads, 1)

	_, err = recipes.Create(ctx, u.ID, RecipeInput{Name: "Fondue", Portions: 4, Image: coverImage})
	assert.ErrorIs(t, err, ErrPlanLimit)
	assert.Len(t, store.uploads, 1)

	_, err = recipes.Create(ctx, u.ID, RecipeInput{Name: "Raclette", Portions: 4, Image: "data:text/plain;base64,eA=="})
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Len(t, store.uploads, 1)
}

func TestRecipeListFilters(t *testing.T) {
	ctx := context.Background()
	db, recipes := newRecipeService(t, config.DefaultPlanLimits())
	u := createUser(t, db, "u")
	for _, in := range []RecipeInput{
		{Name: "Quick salad", Portions: 2, Difficulty: 1, PrepMinutes: 10},
		{Name: "Slow stew", Portions: 6, Difficulty: 3, PrepMinutes: 30, CookMinutes: 180},
		{Name: "Fruit salad", Portions: 4, Difficulty: 1, PrepMinutes: 15, IsPublic: true},
	} {
		_, err := recipes.Create(ctx, u.ID, in)
		require.NoError(t, err)
	}

	names := func(f RecipeFilter) []string {
		list, err := recipes.List(ctx, u.ID, f)
		require.NoError(t, err)
		var out []string
		for _, r := range list {
			out = append(out, r.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Fruit salad", "Quick salad"}, names(RecipeFilter{Query: "SALAD"}))
	assert.Equal(t, []string{"Slow stew"}, names(RecipeFilter{Difficulty: 3}))
	assert.Equal(t, []string{"Fruit salad", "Quick salad"}, names(RecipeFilter{MaxTotalMinutes: 60}))
	assert.Equal(t, []string{"Fruit salad"}, names(RecipeFilter{Limit: 1}))
	assert.Equal(t, []string{"Quick salad"}, names(RecipeFilter{Limit: 1, Offset: 1}))
}

func TestRecipeDeleteLeavesMealsDangling(t *testing.T) {
	ctx := context.Background()
	db, recipes := newRecipeService(t, config.DefaultPlanLimits())
	u := createUser(t, db, "u")
	stay := createStay(t, db, u.ID, "2024-03-01", "2024-03-02", 2)
	r, err := recipes.Create(ctx, u.ID, RecipeInput{Name: "Soup", Portions: 2})
	require.NoError(t, err)
	meal := &models.MealAssignment{StayID: stay.ID, Date: date("2024-03-01"), MealType: models.MealDinner, Portions: 2, RecipeID: &r.ID}
	require.NoError(t, db.Create(meal).Error)

	require.NoError(t, recipes.Delete(ctx, u.ID, r.ID))
	_, err = recipes.Get(ctx, u.ID, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var kept models.MealAssignment
	require.NoError(t, db.First(&kept, meal.ID).Error)
	assert.Equal(t, r.ID, *kept.RecipeID)
}

func boolPtr(v bool) *bool { return &v }
