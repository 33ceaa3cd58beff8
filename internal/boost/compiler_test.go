package boost

import (
	"errors"
	"testing"

	enginerrors "github.com/merchstack/rule-engine/internal/errors"
	"github.com/merchstack/rule-engine/model"
)

func TestCompileConditions(t *testing.T) {
	tests := []struct {
		name       string
		conditions []model.Condition
		want       string
	}{
		{
			name: "single brand",
			conditions: []model.Condition{
				{Type: model.ConditionBrand, NestLevel: 1, Value: "88"},
			},
			want: "(brandId:88)",
		},
		{
			name: "trailing comma and whitespace trimmed",
			conditions: []model.Condition{
				{Type: model.ConditionBrand, NestLevel: 1, Value: " 88, "},
			},
			want: "(brandId:88)",
		},
		{
			name: "discount range",
			conditions: []model.Condition{
				{Type: model.ConditionPctOff, NestLevel: 1, Value: "15"},
			},
			want: "(discountPercent:[15 TO 100])",
		},
		{
			name: "price range",
			conditions: []model.Condition{
				{Type: model.ConditionPrice, NestLevel: 1, Value: "25 100"},
			},
			want: "(salePrice:[25 TO 100])",
		},
		{
			name: "escaped keyword",
			conditions: []model.Condition{
				{Type: model.ConditionKeyword, NestLevel: 1, Value: "running shoes"},
			},
			want: `(keyword:running\ shoes)`,
		},
		{
			name: "flat conjunction",
			conditions: []model.Condition{
				{Type: model.ConditionPastSeason, NestLevel: 1, Value: "false"},
				{Type: model.ConditionBrand, NestLevel: 1, Value: "88", Joiner: model.JoinerAnd},
			},
			want: "(isPastSeason:false AND brandId:88)",
		},
		{
			name: "and not joiner",
			conditions: []model.Condition{
				{Type: model.ConditionBrand, NestLevel: 1, Value: "88"},
				{Type: model.ConditionOutlet, NestLevel: 1, Value: "true", Joiner: model.JoinerAndNot},
			},
			want: "(brandId:88 AND NOT isCloseout:true)",
		},
		{
			name: "nested groups open on deeper levels",
			conditions: []model.Condition{
				{Type: model.ConditionBrand, NestLevel: 1, Value: "88"},
				{Type: model.ConditionCategory, NestLevel: 2, Value: "cat1", Joiner: model.JoinerAnd},
				{Type: model.ConditionCategory, NestLevel: 2, Value: "cat2", Joiner: model.JoinerAnd},
				{Type: model.ConditionShowSale, NestLevel: 3, Value: "false", Joiner: model.JoinerAnd},
			},
			want: "(brandId:88 AND (ancestorCategoryId:cat1 AND ancestorCategoryId:cat2 AND (onSale:false)))",
		},
		{
			name: "level jump opens a single group",
			conditions: []model.Condition{
				{Type: model.ConditionBrand, NestLevel: 1, Value: "88"},
				{Type: model.ConditionCategory, NestLevel: 1, Value: "cat1", Joiner: model.JoinerAnd},
				{Type: model.ConditionCategory, NestLevel: 1, Value: "cat2", Joiner: model.JoinerAnd},
				{Type: model.ConditionBrand, NestLevel: 2, Value: "77", Joiner: model.JoinerOr},
				{Type: model.ConditionShowSale, NestLevel: 2, Value: "true", Joiner: model.JoinerAnd},
				{Type: model.ConditionPastSeason, NestLevel: 4, Value: "false", Joiner: model.JoinerAnd},
			},
			want: "(brandId:88 AND ancestorCategoryId:cat1 AND ancestorCategoryId:cat2 OR (brandId:77 AND onSale:true AND (isPastSeason:false)))",
		},
		{
			name: "shallower level closes the innermost group",
			conditions: []model.Condition{
				{Type: model.ConditionBrand, NestLevel: 1, Value: "88"},
				{Type: model.ConditionCategory, NestLevel: 1, Value: "cat1", Joiner: model.JoinerAnd},
				{Type: model.ConditionCategory, NestLevel: 2, Value: "cat2", Joiner: model.JoinerAnd},
				{Type: model.ConditionBrand, NestLevel: 3, Value: "77", Joiner: model.JoinerOr},
				{Type: model.ConditionBrand, NestLevel: 3, Value: "88", Joiner: model.JoinerOr},
				{Type: model.ConditionShowSale, NestLevel: 2, Value: "true", Joiner: model.JoinerAnd},
				{Type: model.ConditionPastSeason, NestLevel: 1, Value: "false", Joiner: model.JoinerAnd},
			},
			want: "(brandId:88 AND ancestorCategoryId:cat1 AND (ancestorCategoryId:cat2 OR (brandId:77 OR brandId:88) AND onSale:true) AND isPastSeason:false)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompileConditions(tt.conditions)
			if err != nil {
				t.Fatalf("CompileConditions failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCompileConditionsEmpty(t *testing.T) {
	got, err := CompileConditions(nil)
	if err != nil {
		t.Fatalf("CompileConditions failed: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty filter, got %q", got)
	}
}

func TestCompileConditionsUnknownType(t *testing.T) {
	_, err := CompileConditions([]model.Condition{
		{Type: "weather", NestLevel: 1, Value: "sunny"},
	})
	if !errors.Is(err, enginerrors.ErrUnknownCondition) {
		t.Errorf("Expected ErrUnknownCondition, got %v", err)
	}
}

func TestCompileConditionsInvalidPrice(t *testing.T) {
	_, err := CompileConditions([]model.Condition{
		{Type: model.ConditionPrice, NestLevel: 1, Value: "25"},
	})
	if !errors.Is(err, enginerrors.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestCompileFactorRule(t *testing.T) {
	rule := &model.Rule{
		RuleType: model.RuleTypeRanking,
		BoostBy:  model.BoostByFactor,
		Strength: model.StrengthMediumBoost,
		Conditions: []model.Condition{
			{Type: model.ConditionPastSeason, NestLevel: 1, Value: "false"},
			{Type: model.ConditionBrand, NestLevel: 1, Value: "88", Joiner: model.JoinerAnd},
		},
	}

	got, err := Compile(rule)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	want := "if(exists(query({!lucene v='(isPastSeason:false AND brandId:88)'})),2.0,1.0)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestCompileEscapesSingleQuotes(t *testing.T) {
	rule := &model.Rule{
		RuleType: model.RuleTypeRanking,
		BoostBy:  model.BoostByFactor,
		Strength: model.StrengthMaximumBoost,
		Conditions: []model.Condition{
			{Type: model.ConditionKeyword, NestLevel: 1, Value: "arc'teryx"},
		},
	}

	got, err := Compile(rule)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	want := `if(exists(query({!lucene v='(keyword:arc\'teryx)'})),10.0,1.0)`
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestCompileFactorRuleWithoutConditions(t *testing.T) {
	rule := &model.Rule{
		RuleType: model.RuleTypeRanking,
		BoostBy:  model.BoostByFactor,
		Strength: model.StrengthMaximumDemote,
	}

	got, err := Compile(rule)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if got != "0.1" {
		t.Errorf("Expected bare factor 0.1, got %q", got)
	}
}

func TestCompileAttributeRule(t *testing.T) {
	rule := &model.Rule{
		RuleType:  model.RuleTypeRanking,
		BoostBy:   model.BoostByAttribute,
		Attribute: "reviewAverage",
	}

	got, err := Compile(rule)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if got != "reviewAverage" {
		t.Errorf("Expected attribute pass-through, got %q", got)
	}
}

func TestCompileAttributeRuleMissingAttribute(t *testing.T) {
	rule := &model.Rule{
		RuleType: model.RuleTypeRanking,
		BoostBy:  model.BoostByAttribute,
	}

	got, err := Compile(rule)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if got != "1.0" {
		t.Errorf("Expected neutral fallback 1.0, got %q", got)
	}
}

func TestMapStrength(t *testing.T) {
	tests := []struct {
		strength model.Strength
		want     string
	}{
		{model.StrengthMaximumDemote, "0.1"},
		{model.StrengthStrongDemote, "0.2"},
		{model.StrengthMediumDemote, "0.5"},
		{model.StrengthWeakDemote, "0.6666667"},
		{model.StrengthNeutral, "1.0"},
		{model.StrengthWeakBoost, "1.5"},
		{model.StrengthMediumBoost, "2.0"},
		{model.StrengthStrongBoost, "5.0"},
		{model.StrengthMaximumBoost, "10.0"},
		{"", "1.0"},
		{"unheard-of", "1.0"},
	}

	for _, tt := range tests {
		if got := MapStrength(tt.strength); got != tt.want {
			t.Errorf("MapStrength(%q) = %q, want %q", tt.strength, got, tt.want)
		}
	}
}
