package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchemaValidatorChartConfig(t *testing.T) {
	validator := NewJSONSchemaValidator()
	def := WidgetDefinition{Code: "ganaderia.widget.test_chart", Schema: chartConfigSchema()}

	require.NoError(t, validator.Validate(def, map[string]any{
		"title":  "Prueba",
		"series": []any{map[string]any{"name": "A", "data": []any{1, nil, 2.5}}},
	}))

	err := validator.Validate(def, map[string]any{"title": "Sin series"})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, def.Code, cfgErr.Definition)

	assert.Error(t, validator.Validate(def, map[string]any{
		"series":  []any{map[string]any{"name": "A", "data": []any{1}}},
		"unknown": true,
	}))
	err = validator.Validate(def, map[string]any{
		"series": []any{map[string]any{"name": "A", "data": []any{"uno"}}},
	})
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Field, "/series/0")
}

func TestJSONSchemaValidatorRecompilesChangedSchema(t *testing.T) {
	validator := NewJSONSchemaValidator()
	loose := WidgetDefinition{Code: "w", Schema: map[string]any{"type": "object"}}
	strict := WidgetDefinition{Code: "w", Schema: map[string]any{"type": "object", "required": []string{"id"}}}

	assert.NoError(t, validator.Validate(loose, nil))
	assert.Error(t, validator.Validate(strict, nil))
	assert.Len(t, validator.schemas, 2)
}

func TestJSONSchemaValidatorCatalogDefaultsAreValid(t *testing.T) {
	validator := NewJSONSchemaValidator()
	for _, def := range DefaultWidgetDefinitions() {
		cfg, ok := ChartDefaults(def.Code)
		if !ok {
			continue
		}
		assert.NoError(t, validator.Validate(def, cfg), def.Code)
	}
}

func TestJSONSchemaValidatorWithoutSchema(t *testing.T) {
	validator := NewJSONSchemaValidator()
	assert.NoError(t, validator.Validate(WidgetDefinition{Code: "free"}, map[string]any{"anything": 1}))
}

func TestJSONSchemaValidatorKPIFilter(t *testing.T) {
	validator := NewJSONSchemaValidator()
	var def WidgetDefinition
	for _, d := range DefaultWidgetDefinitions() {
		if d.Code == WidgetKPICards {
			def = d
		}
	}
	require.NotEmpty(t, def.Code)
	assert.NoError(t, validator.Validate(def, nil))
	assert.NoError(t, validator.Validate(def, map[string]any{"kpis": []string{"eficiencia"}}))
	assert.Error(t, validator.Validate(def, map[string]any{"kpis": "eficiencia"}))
}
