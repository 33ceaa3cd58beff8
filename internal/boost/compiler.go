// Package boost compiles ranking rule conditions into the scoring function
// expression carried by rule documents, and caches dynamic boost mappings
// fetched from an external source.
package boost

import (
	"strings"

	enginerrors "github.com/merchstack/rule-engine/internal/errors"
	"github.com/merchstack/rule-engine/internal/queryutil"
	"github.com/merchstack/rule-engine/model"
)

// exprNode is one term of the reconstructed boolean tree: either a single
// rendered condition or a parenthesized group of child terms. joiner links
// the term to the one before it within its parent.
type exprNode struct {
	joiner   model.Joiner
	rendered string
	children []*exprNode
}

// Compile produces the boost function expression for a ranking rule. Rules
// boosting by factor use the strength multiplier as the true branch; rules
// boosting by attribute use the attribute expression verbatim. When the rule
// has no conditions the branch value stands alone, otherwise it is wrapped in
// a conditional over the compiled condition filter.
func Compile(rule *model.Rule) (string, error) {
	var action string
	if rule.BoostBy == model.BoostByFactor {
		action = MapStrength(rule.Strength)
	} else {
		action = rule.Attribute
		if action == "" {
			action = "1.0"
		}
	}

	filter, err := CompileConditions(rule.Conditions)
	if err != nil {
		return "", err
	}
	if filter == "" {
		return action, nil
	}

	var b strings.Builder
	b.WriteString("if(exists(query({!lucene v='")
	b.WriteString(strings.ReplaceAll(filter, "'", `\'`))
	b.WriteString("'})),")
	b.WriteString(action)
	b.WriteString(",1.0)")
	return b.String(), nil
}

// CompileConditions renders a flat, nest-level encoded condition list into a
// single parenthesized boolean filter. An empty list yields an empty string.
//
// The flat form encodes nesting positionally: a condition deeper than its
// predecessor opens a sub-group joined by the condition's own joiner, one at
// a shallower level closes the innermost open group first. Level jumps of
// more than one count as a single open or close.
func CompileConditions(conditions []model.Condition) (string, error) {
	if len(conditions) == 0 {
		return "", nil
	}

	root := &exprNode{}
	stack := []*exprNode{root}
	currentLevel := conditions[0].NestLevel

	for i, condition := range conditions {
		rendered, err := renderCondition(condition)
		if err != nil {
			return "", err
		}

		joiner := condition.Joiner
		if joiner == model.JoinerAndNot {
			joiner = "AND NOT"
		}

		switch {
		case i > 0 && condition.NestLevel > currentLevel:
			group := &exprNode{joiner: joiner}
			top := stack[len(stack)-1]
			top.children = append(top.children, group)
			stack = append(stack, group)
			group.children = append(group.children, &exprNode{rendered: rendered})
		case i > 0 && condition.NestLevel < currentLevel:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			top := stack[len(stack)-1]
			top.children = append(top.children, &exprNode{joiner: joiner, rendered: rendered})
		default:
			node := &exprNode{rendered: rendered}
			if i > 0 {
				node.joiner = joiner
			}
			top := stack[len(stack)-1]
			top.children = append(top.children, node)
		}
		currentLevel = condition.NestLevel
	}

	var b strings.Builder
	renderNode(&b, root)
	return b.String(), nil
}

func renderNode(b *strings.Builder, node *exprNode) {
	if node.rendered != "" {
		b.WriteString(node.rendered)
		return
	}
	b.WriteString("(")
	for i, child := range node.children {
		if i > 0 {
			b.WriteString(" ")
			b.WriteString(string(child.joiner))
			b.WriteString(" ")
		}
		renderNode(b, child)
	}
	b.WriteString(")")
}

// renderCondition maps a condition to its document-field filter term. Values
// arrive from the authoring UI with stray whitespace and trailing commas.
func renderCondition(condition model.Condition) (string, error) {
	value := strings.TrimSpace(condition.Value)
	value = strings.TrimSuffix(value, ",")

	switch condition.Type {
	case model.ConditionBrand:
		return "brandId:" + value, nil
	case model.ConditionPctOff:
		return "discountPercent:[" + value + " TO 100]", nil
	case model.ConditionCategory:
		return "ancestorCategoryId:" + value, nil
	case model.ConditionGender:
		return "gender:" + queryutil.Escape(value), nil
	case model.ConditionShowSale:
		return "onSale:" + value, nil
	case model.ConditionPastSeason:
		return "isPastSeason:" + value, nil
	case model.ConditionOutlet:
		return "isCloseout:" + value, nil
	case model.ConditionPrice:
		parts := strings.SplitN(value, " ", 2)
		if len(parts) != 2 {
			return "", enginerrors.NewValidationError("conditions", "price condition needs a min and max value")
		}
		return "salePrice:[" + parts[0] + " TO " + parts[1] + "]", nil
	case model.ConditionKeyword:
		return "keyword:" + queryutil.Escape(value), nil
	default:
		return "", enginerrors.NewUnknownConditionError(string(condition.Type))
	}
}
