package wasmhost

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/reactor/errors"
)

type funcSignature struct {
	name       string
	paramNames []string
	params     []wit.Type
	results    []wit.Type
}

var funcPattern = regexp.MustCompile(`(?:export\s+)?([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?`)

// parseWitFunctions extracts function signatures from WIT text.
// Pattern: [export] name: func(params) -> result;
func parseWitFunctions(witText string) (map[string]*funcSignature, error) {
	funcs := make(map[string]*funcSignature)

	for _, match := range funcPattern.FindAllStringSubmatch(witText, -1) {
		sig := &funcSignature{name: match[1]}

		if paramsStr := strings.TrimSpace(match[2]); paramsStr != "" {
			for _, p := range splitParams(paramsStr) {
				name, typStr := "", p
				if idx := strings.LastIndex(p, ":"); idx != -1 {
					name = strings.TrimSpace(p[:idx])
					typStr = strings.TrimSpace(p[idx+1:])
				}
				t, err := wit.ParseType(typStr)
				if err != nil {
					return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "parse param type "+typStr)
				}
				sig.paramNames = append(sig.paramNames, name)
				sig.params = append(sig.params, t)
			}
		}

		resultStr := strings.TrimSpace(match[3])
		if resultStr != "" && resultStr != "()" {
			parts := []string{resultStr}
			if strings.HasPrefix(resultStr, "(") && strings.HasSuffix(resultStr, ")") {
				parts = splitParams(resultStr[1 : len(resultStr)-1])
			}
			for _, part := range parts {
				t, err := wit.ParseType(strings.TrimSpace(part))
				if err != nil {
					return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "parse result type "+part)
				}
				sig.results = append(sig.results, t)
			}
		}

		funcs[sig.name] = sig
	}

	if len(funcs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "no functions found in WIT text")
	}
	return funcs, nil
}

// splitParams splits parameter list, handling nested parens.
func splitParams(s string) []string {
	var result []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '(', '<':
			depth++
			current.WriteRune(ch)
		case ')', '>':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				if str := strings.TrimSpace(current.String()); str != "" {
					result = append(result, str)
				}
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}

	if str := strings.TrimSpace(current.String()); str != "" {
		result = append(result, str)
	}
	return result
}

// check verifies that the declared signature lines up with the core
// function. Only scalar WIT types are accepted: anything else needs the
// canonical ABI, which core modules do not carry.
func (s *funcSignature) check(e Export) error {
	if len(s.params) != len(e.Params) || len(s.results) != len(e.Results) {
		return errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
			Method(s.name).
			Detail("declared %d params/%d results, module exports %d/%d",
				len(s.params), len(s.results), len(e.Params), len(e.Results)).
			Build()
	}
	for i, t := range s.params {
		if err := checkScalar(s.name, t, e.Params[i]); err != nil {
			return err
		}
	}
	for i, t := range s.results {
		if err := checkScalar(s.name, t, e.Results[i]); err != nil {
			return err
		}
	}
	return nil
}

func checkScalar(method string, t wit.Type, core api.ValueType) error {
	want, ok := coreType(t)
	if !ok {
		return errors.New(errors.PhaseLoad, errors.KindUnsupported).
			Method(method).
			Detail("WIT type %s has no single core representation", TypeName(t)).
			Build()
	}
	if want != core {
		return errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
			Method(method).
			Detail("WIT type %s lowers to %s, module uses %s",
				TypeName(t), api.ValueTypeName(want), api.ValueTypeName(core)).
			Build()
	}
	return nil
}

// coreType returns the core value type a scalar WIT type lowers to.
func coreType(t wit.Type) (api.ValueType, bool) {
	switch t.(type) {
	case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32, wit.Char:
		return api.ValueTypeI32, true
	case wit.U64, wit.S64:
		return api.ValueTypeI64, true
	case wit.F32:
		return api.ValueTypeF32, true
	case wit.F64:
		return api.ValueTypeF64, true
	}
	return 0, false
}

// TypeName renders a WIT type the way it is written in WIT text.
func TypeName(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}
