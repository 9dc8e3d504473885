package recipe

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/stepchef/internal/domain"
)

// LoadFile reads a YAML recipe definition from path.
func LoadFile(path string) (*domain.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe file: %w", err)
	}
	r, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Decode parses a YAML recipe definition. Ingredients without an ID get
// one, and instruction steps may reference ingredients by name.
func Decode(r io.Reader) (*domain.Recipe, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var out domain.Recipe
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing recipe yaml: %w", err)
	}
	if d, ok := domain.ParseDifficulty(string(out.Difficulty)); ok {
		out.Difficulty = d
	}
	for i := range out.Ingredients {
		if out.Ingredients[i].ID == "" {
			out.Ingredients[i].ID = uuid.NewString()
		}
	}
	for i := range out.Steps {
		st := &out.Steps[i]
		st.Kind = domain.StepKind(strings.ToLower(strings.TrimSpace(string(st.Kind))))
		for j, ref := range st.IngredientIDs {
			st.IngredientIDs[j] = resolveIngredient(&out, ref)
		}
	}
	return &out, nil
}

// resolveIngredient maps a reference to an ingredient ID, matching IDs
// first and names second. Unknown references are returned as is so
// Validate can report them.
func resolveIngredient(r *domain.Recipe, ref string) string {
	if _, ok := r.Ingredient(ref); ok {
		return ref
	}
	for _, ing := range r.Ingredients {
		if strings.EqualFold(strings.TrimSpace(ing.Name), strings.TrimSpace(ref)) {
			return ing.ID
		}
	}
	return ref
}
