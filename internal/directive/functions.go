package directive

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2/ext/tryfunc"
	"github.com/jaswdr/faker/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// pureFunctions have no side effects and no randomness.
var pureFunctions = map[string]function.Function{
	"upper":      stdlib.UpperFunc,
	"lower":      stdlib.LowerFunc,
	"title":      stdlib.TitleFunc,
	"format":     stdlib.FormatFunc,
	"join":       stdlib.JoinFunc,
	"split":      stdlib.SplitFunc,
	"concat":     stdlib.ConcatFunc,
	"length":     stdlib.LengthFunc,
	"substr":     stdlib.SubstrFunc,
	"trimspace":  stdlib.TrimSpaceFunc,
	"replace":    stdlib.ReplaceFunc,
	"min":        stdlib.MinFunc,
	"max":        stdlib.MaxFunc,
	"abs":        stdlib.AbsoluteFunc,
	"floor":      stdlib.FloorFunc,
	"ceil":       stdlib.CeilFunc,
	"coalesce":   stdlib.CoalesceFunc,
	"jsonencode": stdlib.JSONEncodeFunc,
	"lookup":     stdlib.LookupFunc,
	"contains":   stdlib.ContainsFunc,
	"element":    stdlib.ElementFunc,
	"keys":       stdlib.KeysFunc,
	"merge":      stdlib.MergeFunc,
	"range":      stdlib.RangeFunc,
	"tostring":   stdlib.MakeToFunc(cty.String),
	"tonumber":   stdlib.MakeToFunc(cty.Number),
	"try":        tryfunc.TryFunc,
	"can":        tryfunc.CanFunc,
}

// functions returns the complete function table for one evaluation. The
// random functions draw from gen and the clock functions read now.
func functions(gen faker.Faker, now func() time.Time) map[string]function.Function {
	fns := make(map[string]function.Function, len(pureFunctions)+7)
	maps.Copy(fns, pureFunctions)

	fns["random"] = function.New(&function.Spec{
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return cty.NumberFloatVal(float64(gen.IntBetween(0, 999_999)) / 1_000_000), nil
		},
	})

	fns["randint"] = function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "min", Type: cty.Number},
			{Name: "max", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			lo, _ := args[0].AsBigFloat().Int64()
			hi, _ := args[1].AsBigFloat().Int64()
			if hi < lo {
				return cty.NilVal, function.NewArgErrorf(1, "max must not be less than min")
			}
			return cty.NumberIntVal(int64(gen.IntBetween(int(lo), int(hi)))), nil
		},
	})

	fns["pick"] = function.New(&function.Spec{
		VarParam: &function.Parameter{
			Name:      "values",
			Type:      cty.DynamicPseudoType,
			AllowNull: true,
		},
		Type: function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			if len(args) == 1 && (args[0].Type().IsListType() || args[0].Type().IsTupleType()) {
				args = args[0].AsValueSlice()
			}
			if len(args) == 0 {
				return cty.NilVal, fmt.Errorf("no values to pick from")
			}
			return args[gen.IntBetween(0, len(args)-1)], nil
		},
	})

	fns["uuid"] = function.New(&function.Spec{
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return cty.StringVal(uuid.NewString()), nil
		},
	})

	fns["now"] = function.New(&function.Spec{
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return cty.StringVal(now().UTC().Format(time.RFC3339)), nil
		},
	})

	fns["timestamp"] = function.New(&function.Spec{
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return cty.NumberIntVal(now().UnixMilli()), nil
		},
	})

	fns["fake"] = function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "namespace", Type: cty.String},
			{Name: "member", Type: cty.String},
		},
		VarParam: &function.Parameter{
			Name:      "args",
			Type:      cty.DynamicPseudoType,
			AllowNull: true,
		},
		Type: function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			callArgs := make([]any, 0, len(args)-2)
			for _, a := range args[2:] {
				v, err := fromValue(a)
				if err != nil {
					return cty.NilVal, err
				}
				callArgs = append(callArgs, v)
			}
			ns, member := args[0].AsString(), args[1].AsString()
			v, ok := callLibrary(gen, now, ns, member, callArgs)
			if !ok {
				return cty.NilVal, fmt.Errorf("unknown generator %s.%s", ns, member)
			}
			return toValue(v)
		},
	})

	return fns
}
