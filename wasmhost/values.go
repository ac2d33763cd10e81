package wasmhost

import (
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/reactor/errors"
)

// ParseArgs converts textual arguments into core values for e.
// Declared WIT types take precedence over core types.
func (e Export) ParseArgs(args []string) (Values, error) {
	if len(args) != len(e.Params) {
		return nil, errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
			Method(e.Name).
			Detail("expected %d arguments, got %d", len(e.Params), len(args)).
			Build()
	}

	out := make(Values, len(args))
	for i, s := range args {
		var t wit.Type
		if i < len(e.WitParams) {
			t = e.WitParams[i]
		}
		v, err := parseValue(strings.TrimSpace(s), t, e.Params[i])
		if err != nil {
			return nil, errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
				Method(e.Name).
				Value(s).
				Cause(err).
				Detail("argument %s", e.paramName(i)).
				Build()
		}
		out[i] = v
	}
	return out, nil
}

// FormatResults renders core results using declared WIT types when known.
func (e Export) FormatResults(results Values) []string {
	out := make([]string, len(results))
	for i, v := range results {
		var t wit.Type
		if i < len(e.WitResults) {
			t = e.WitResults[i]
		}
		core := api.ValueTypeI64
		if i < len(e.Results) {
			core = e.Results[i]
		}
		out[i] = formatValue(v, t, core)
	}
	return out
}

func parseValue(s string, t wit.Type, core api.ValueType) (uint64, error) {
	switch t.(type) {
	case wit.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return 0, err
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case wit.U8:
		v, err := strconv.ParseUint(s, 10, 8)
		return v, err
	case wit.U16:
		v, err := strconv.ParseUint(s, 10, 16)
		return v, err
	case wit.U32:
		v, err := strconv.ParseUint(s, 10, 32)
		return api.EncodeU32(uint32(v)), err
	case wit.S8:
		v, err := strconv.ParseInt(s, 10, 8)
		return api.EncodeI32(int32(v)), err
	case wit.S16:
		v, err := strconv.ParseInt(s, 10, 16)
		return api.EncodeI32(int32(v)), err
	case wit.S32:
		v, err := strconv.ParseInt(s, 10, 32)
		return api.EncodeI32(int32(v)), err
	case wit.U64:
		return strconv.ParseUint(s, 10, 64)
	case wit.S64:
		v, err := strconv.ParseInt(s, 10, 64)
		return api.EncodeI64(v), err
	case wit.Char:
		r := []rune(s)
		if len(r) != 1 {
			return 0, strconv.ErrSyntax
		}
		return api.EncodeU32(uint32(r[0])), nil
	}

	switch core {
	case api.ValueTypeI32:
		v, err := strconv.ParseInt(s, 10, 32)
		return api.EncodeI32(int32(v)), err
	case api.ValueTypeI64:
		v, err := strconv.ParseInt(s, 10, 64)
		return api.EncodeI64(v), err
	case api.ValueTypeF32:
		v, err := strconv.ParseFloat(s, 32)
		return api.EncodeF32(float32(v)), err
	case api.ValueTypeF64:
		v, err := strconv.ParseFloat(s, 64)
		return api.EncodeF64(v), err
	}
	return 0, errors.Unsupported(errors.PhaseInvoke, "value type "+api.ValueTypeName(core))
}

func formatValue(v uint64, t wit.Type, core api.ValueType) string {
	switch t.(type) {
	case wit.Bool:
		return strconv.FormatBool(uint32(v) != 0)
	case wit.U8:
		return strconv.FormatUint(uint64(uint8(v)), 10)
	case wit.U16:
		return strconv.FormatUint(uint64(uint16(v)), 10)
	case wit.U32:
		return strconv.FormatUint(uint64(api.DecodeU32(v)), 10)
	case wit.S8:
		return strconv.FormatInt(int64(int8(v)), 10)
	case wit.S16:
		return strconv.FormatInt(int64(int16(v)), 10)
	case wit.S32:
		return strconv.FormatInt(int64(api.DecodeI32(v)), 10)
	case wit.U64:
		return strconv.FormatUint(v, 10)
	case wit.S64:
		return strconv.FormatInt(int64(v), 10)
	case wit.Char:
		return string(rune(api.DecodeU32(v)))
	}

	switch core {
	case api.ValueTypeI32:
		return strconv.FormatInt(int64(api.DecodeI32(v)), 10)
	case api.ValueTypeF32:
		return strconv.FormatFloat(float64(api.DecodeF32(v)), 'g', -1, 32)
	case api.ValueTypeF64:
		return strconv.FormatFloat(api.DecodeF64(v), 'g', -1, 64)
	case api.ValueTypeExternref:
		if v == 0 {
			return "null"
		}
		return "0x" + strconv.FormatUint(v, 16)
	}
	return strconv.FormatInt(int64(v), 10)
}
