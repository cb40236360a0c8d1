package services

import (
	"math"
	"sort"
	"strings"

	"github.com/JJublanc/tidimondo-sub001/models"
	"github.com/JJublanc/tidimondo-sub001/utils"
)

// PlannedMeal is a meal assignment reduced to what the shopping list needs.
// It is one of RecipeMeal, ComposedMeal or FreeTextMeal.
type PlannedMeal interface {
	plannedMeal()
}

// RecipeMeal links a recipe; Recipe is nil when the reference dangles.
type RecipeMeal struct {
	Portions int
	Recipe   *models.Recipe
}

// ComposedMeal is a breakfast built from loose items.
type ComposedMeal struct {
	MealType string
	Items    []ComposedItem
}

// ComposedItem either references an ingredient or is a loose item known
// only by Name. Ingredient is nil for loose items and for references that
// could not be resolved.
type ComposedItem struct {
	IngredientID   uint
	Ingredient     *models.Ingredient
	Name           string
	Quantity       float64
	Unit           string
	PerParticipant bool
}

// FreeTextMeal never contributes to the shopping list.
type FreeTextMeal struct {
	Description string
}

func (RecipeMeal) plannedMeal()   {}
func (ComposedMeal) plannedMeal() {}
func (FreeTextMeal) plannedMeal() {}

// ClassifyMeal picks the variant of m. ingredients resolves composition
// items and may be nil.
func ClassifyMeal(m *models.MealAssignment, ingredients map[uint]*models.Ingredient) (PlannedMeal, error) {
	if m.RecipeID != nil {
		return RecipeMeal{Portions: m.Portions, Recipe: m.Recipe}, nil
	}
	comp, err := m.DecodeComposition()
	if err != nil {
		return nil, err
	}
	if comp != nil {
		if items := comp.Items(); len(items) > 0 {
			out := ComposedMeal{MealType: m.MealType, Items: make([]ComposedItem, 0, len(items))}
			for _, it := range items {
				out.Items = append(out.Items, ComposedItem{
					IngredientID:   it.IngredientID,
					Ingredient:     ingredients[it.IngredientID],
					Name:           it.Name,
					Quantity:       it.Quantity,
					Unit:           it.Unit,
					PerParticipant: it.PerParticipant,
				})
			}
			return out, nil
		}
	}
	return FreeTextMeal{Description: m.Description}, nil
}

// AggregatedLine is the total of one ingredient across a stay.
type AggregatedLine struct {
	IngredientID uint     `json:"ingredient_id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Quantity     float64  `json:"quantity"`
	Unit         string   `json:"unit"`
	UsedIn       []string `json:"used_in"`
	Notes        []string `json:"notes,omitempty"`
	Overridden   bool     `json:"overridden,omitempty"`
}

// lineKey identifies a line. Loose items have no ingredient ID and are
// keyed by their normalized name.
type lineKey struct {
	ingredientID uint
	name         string
	unit         string
}

type lineAcc struct {
	line   AggregatedLine
	usedIn map[string]struct{}
	notes  map[string]struct{}
}

// Aggregate sums every ingredient needed by meals. Contributions of the
// same ingredient merge when their units share a dimension; incompatible
// units stay on separate lines. Loose breakfast items are summed by name
// under the other category.
func Aggregate(participants int, meals []PlannedMeal) []AggregatedLine {
	acc := map[lineKey]*lineAcc{}

	add := func(ing *models.Ingredient, qty float64, unit, usedIn string, notes ...string) {
		if unit == "" {
			unit = ing.BaseUnit
		}
		unit, factor := normalizeUnit(unit)
		k := lineKey{ingredientID: ing.ID, unit: unit}
		if ing.ID == 0 {
			k.name = utils.NormalizeName(ing.Name)
		}
		a, ok := acc[k]
		if !ok {
			a = &lineAcc{
				line: AggregatedLine{
					IngredientID: ing.ID,
					Name:         ing.Name,
					Category:     categoryOf(ing),
					Unit:         unit,
				},
				usedIn: map[string]struct{}{},
				notes:  map[string]struct{}{},
			}
			acc[k] = a
		}
		a.line.Quantity += qty * factor
		if usedIn != "" {
			a.usedIn[usedIn] = struct{}{}
		}
		for _, n := range notes {
			if n != "" {
				a.notes[n] = struct{}{}
			}
		}
	}

	for _, meal := range meals {
		switch m := meal.(type) {
		case RecipeMeal:
			if m.Recipe == nil {
				continue
			}
			base := m.Recipe.Portions
			if base <= 0 {
				base = 1
			}
			scale := float64(m.Portions) / float64(base)
			for _, ri := range m.Recipe.Ingredients {
				if ri.Ingredient == nil {
					continue
				}
				notes := []string{strings.TrimSpace(ri.Note)}
				if ri.Optional {
					notes = append(notes, "optional in "+m.Recipe.Name)
				}
				add(ri.Ingredient, ri.Quantity*scale, ri.Unit, m.Recipe.Name, notes...)
			}
		case ComposedMeal:
			label := mealLabel(m.MealType)
			for _, it := range m.Items {
				ing := it.Ingredient
				if ing == nil {
					name := strings.TrimSpace(it.Name)
					if it.IngredientID != 0 || name == "" {
						continue
					}
					ing = &models.Ingredient{Name: name, Category: models.CategoryOther}
				}
				qty := it.Quantity
				if it.PerParticipant {
					qty *= float64(participants)
				}
				add(ing, qty, it.Unit, label)
			}
		case FreeTextMeal:
		}
	}

	lines := make([]AggregatedLine, 0, len(acc))
	for _, a := range acc {
		l := a.line
		// Rounded so totals do not depend on summation order.
		l.Quantity = math.Round(l.Quantity*1000) / 1000
		l.UsedIn = sortedKeys(a.usedIn)
		l.Notes = sortedKeys(a.notes)
		lines = append(lines, l)
	}
	sortLines(lines)
	return lines
}

func normalizeUnit(unit string) (string, float64) {
	switch unit {
	case models.UnitKilogram:
		return models.UnitGram, 1000
	case models.UnitCentilitre:
		return models.UnitMillilitre, 10
	case models.UnitLitre:
		return models.UnitMillilitre, 1000
	}
	return unit, 1
}

func categoryOf(ing *models.Ingredient) string {
	if _, ok := categoryRank[ing.Category]; ok {
		return ing.Category
	}
	return models.CategoryOther
}

var categoryRank = func() map[string]int {
	m := make(map[string]int, len(models.Categories))
	for i, c := range models.Categories {
		m[c] = i
	}
	return m
}()

func sortLines(lines []AggregatedLine) {
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if ra, rb := categoryRank[a.Category], categoryRank[b.Category]; ra != rb {
			return ra < rb
		}
		if na, nb := utils.NormalizeName(a.Name), utils.NormalizeName(b.Name); na != nb {
			return na < nb
		}
		if a.IngredientID != b.IngredientID {
			return a.IngredientID < b.IngredientID
		}
		return a.Unit < b.Unit
	})
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func mealLabel(mealType string) string {
	if mealType == "" {
		return ""
	}
	return strings.ToUpper(mealType[:1]) + strings.ReplaceAll(mealType[1:], "_", " ")
}

// CategoryLabels are the headings shown for each category.
var CategoryLabels = map[string]string{
	models.CategoryVegetable: "Vegetables",
	models.CategoryFruit:     "Fruits",
	models.CategoryMeat:      "Meat",
	models.CategoryFish:      "Fish & seafood",
	models.CategoryStarch:    "Starches",
	models.CategoryDairy:     "Dairy",
	models.CategorySpice:     "Spices",
	models.CategoryCondiment: "Condiments",
	models.CategoryBeverage:  "Beverages",
	models.CategoryOther:     "Other",
}

type CategoryGroup struct {
	Category string           `json:"category"`
	Label    string           `json:"label"`
	Lines    []AggregatedLine `json:"lines"`
}

type ShoppingSummary struct {
	Participants int `json:"participants"`
	Days         int `json:"days"`
	Meals        int `json:"meals"`
	Recipes      int `json:"recipes"`
	Ingredients  int `json:"ingredients"`
}

type ShoppingList struct {
	StayID     uint            `json:"stay_id"`
	StayName   string          `json:"stay_name"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	Categories []CategoryGroup `json:"categories"`
	Summary    ShoppingSummary `json:"summary"`
}

// Present groups lines by category in display order and computes the
// summary counts. Empty categories are omitted.
func Present(stay *models.Stay, meals []PlannedMeal, lines []AggregatedLine) *ShoppingList {
	byCat := map[string][]AggregatedLine{}
	ingredients := map[lineKey]struct{}{}
	for _, l := range lines {
		byCat[l.Category] = append(byCat[l.Category], l)
		k := lineKey{ingredientID: l.IngredientID}
		if l.IngredientID == 0 {
			k.name = utils.NormalizeName(l.Name)
		}
		ingredients[k] = struct{}{}
	}

	recipes := map[uint]struct{}{}
	for _, m := range meals {
		if rm, ok := m.(RecipeMeal); ok && rm.Recipe != nil {
			recipes[rm.Recipe.ID] = struct{}{}
		}
	}

	list := &ShoppingList{
		StayID:     stay.ID,
		StayName:   stay.Name,
		StartDate:  stay.StartDate.UTC().Format(dateLayout),
		EndDate:    stay.EndDate.UTC().Format(dateLayout),
		Categories: []CategoryGroup{},
		Summary: ShoppingSummary{
			Participants: stay.ParticipantCount,
			Days:         stay.Days(),
			Meals:        len(meals),
			Recipes:      len(recipes),
			Ingredients:  len(ingredients),
		},
	}
	for _, c := range models.Categories {
		if ls := byCat[c]; len(ls) > 0 {
			list.Categories = append(list.Categories, CategoryGroup{Category: c, Label: CategoryLabels[c], Lines: ls})
		}
	}
	return list
}

// LineOverride adjusts how one line is displayed. LineUnit picks the line
// of the ingredient to change. When it is empty the line already shown in
// Unit is picked, falling back to the ingredient's first line.
type LineOverride struct {
	IngredientID uint    `json:"ingredient_id" binding:"required"`
	LineUnit     string  `json:"line_unit"`
	Quantity     float64 `json:"quantity" binding:"gte=0"`
	Unit         string  `json:"unit"`
}

type lineRef struct{ group, line int }

// ApplyOverrides returns a copy of list with overrides applied. Each
// override changes at most one line; list itself is left untouched.
func ApplyOverrides(list *ShoppingList, overrides []LineOverride) *ShoppingList {
	out := *list
	out.Categories = make([]CategoryGroup, len(list.Categories))
	lines := map[uint][]lineRef{}
	for i, g := range list.Categories {
		ng := g
		ng.Lines = append([]AggregatedLine(nil), g.Lines...)
		out.Categories[i] = ng
		for j, l := range g.Lines {
			if l.IngredientID != 0 {
				lines[l.IngredientID] = append(lines[l.IngredientID], lineRef{i, j})
			}
		}
	}

	for _, o := range overrides {
		ref, ok := pickLine(list, lines[o.IngredientID], o)
		if !ok {
			continue
		}
		l := &out.Categories[ref.group].Lines[ref.line]
		l.Quantity = o.Quantity
		if o.Unit != "" {
			l.Unit = o.Unit
		}
		l.Overridden = true
	}
	return &out
}

func pickLine(list *ShoppingList, refs []lineRef, o LineOverride) (lineRef, bool) {
	if len(refs) == 0 {
		return lineRef{}, false
	}
	unitOf := func(r lineRef) string { return list.Categories[r.group].Lines[r.line].Unit }
	if o.LineUnit != "" {
		for _, r := range refs {
			if unitOf(r) == o.LineUnit {
				return r, true
			}
		}
		return lineRef{}, false
	}
	for _, r := range refs {
		if unitOf(r) == o.Unit {
			return r, true
		}
	}
	return refs[0], true
}
