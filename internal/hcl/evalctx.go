package hcl

import (
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/projgraph/internal/model"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// functions available to every project file expression.
var functions = map[string]function.Function{
	"upper":     stdlib.UpperFunc,
	"lower":     stdlib.LowerFunc,
	"format":    stdlib.FormatFunc,
	"join":      stdlib.JoinFunc,
	"concat":    stdlib.ConcatFunc,
	"coalesce":  stdlib.CoalesceFunc,
	"split":     stdlib.SplitFunc,
	"replace":   stdlib.ReplaceFunc,
	"trimspace": stdlib.TrimSpaceFunc,
}

// newEvalContext builds the evaluation context for the project file at path.
func newEvalContext(path string, props model.Properties) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"prop":    propertiesValue(props),
			"project": projectValue(path),
		},
		Functions: functions,
	}
}

// propertiesValue exposes props as a map of strings. Each property is
// reachable by its declared spelling and by its lower-case spelling.
func propertiesValue(props model.Properties) cty.Value {
	vals := make(map[string]string, props.Len()*2)
	for name, value := range props.Map() {
		vals[strings.ToLower(name)] = value
	}
	for name, value := range props.Map() {
		vals[name] = value
	}

	v, err := gocty.ToCtyValue(vals, cty.Map(cty.String))
	if err != nil {
		// A map of strings always converts.
		panic(err)
	}
	return v
}

func projectValue(path string) cty.Value {
	file := filepath.Base(path)
	return cty.ObjectVal(map[string]cty.Value{
		"dir":  cty.StringVal(filepath.Dir(path)),
		"file": cty.StringVal(file),
		"name": cty.StringVal(strings.TrimSuffix(file, filepath.Ext(file))),
	})
}
