package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hammamikhairi/stepchef/internal/domain"
)

func TestBuilderValidators(t *testing.T) {
	assert.Error(t, validateTitle(" ab "))
	assert.NoError(t, validateTitle("Soup"))

	assert.Error(t, validateRequired("  "))
	assert.NoError(t, validateRequired("x"))

	assert.Error(t, validatePositiveInt("0"))
	assert.Error(t, validatePositiveInt("1.5"))
	assert.NoError(t, validatePositiveInt(" 12 "))

	assert.Error(t, validatePositiveFloat("-1"))
	assert.Error(t, validatePositiveFloat("abc"))
	assert.NoError(t, validatePositiveFloat("0.25"))

	temp := validateIntRange(40, 200)
	assert.Error(t, temp("39"))
	assert.Error(t, temp("201"))
	assert.NoError(t, temp("40"))
	assert.NoError(t, temp("200"))

	assert.Error(t, validateSelection(nil))
	assert.NoError(t, validateSelection([]string{"a"}))
}

func TestDuplicateIngredient(t *testing.T) {
	r := &domain.Recipe{Ingredients: []domain.Ingredient{{Name: "Flour", Quantity: 200, Unit: "g"}}}

	assert.Error(t, duplicateIngredient(r, domain.Ingredient{Name: "flour", Quantity: 200, Unit: "G"}))
	assert.NoError(t, duplicateIngredient(r, domain.Ingredient{Name: "flour", Quantity: 100, Unit: "g"}))
}

func TestRecipesNewNeedsTerminal(t *testing.T) {
	app, _ := testApp(t)
	assert.Error(t, execute(t, app, "recipes", "new"))
}
