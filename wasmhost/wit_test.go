package wasmhost

import (
	"testing"

	"go.bytecodealliance.org/wit"
)

func TestParseWitFunctions(t *testing.T) {
	sigs, err := parseWitFunctions(ledgerWit + "\ntransfer: func(to: u32, amount: u64) -> (u64, bool);")
	if err != nil {
		t.Fatalf("parseWitFunctions: %v", err)
	}

	tests := []struct {
		name       string
		paramNames []string
		params     []string
		results    []string
	}{
		{"balance", nil, nil, []string{"u64"}},
		{"add", []string{"a", "b"}, []string{"s64", "s64"}, []string{"s64"}},
		{"fail", nil, nil, nil},
		{"transfer", []string{"to", "amount"}, []string{"u32", "u64"}, []string{"u64", "bool"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, ok := sigs[tt.name]
			if !ok {
				t.Fatalf("%s not parsed", tt.name)
			}
			if !equalStrings(sig.paramNames, tt.paramNames) {
				t.Errorf("param names = %v, want %v", sig.paramNames, tt.paramNames)
			}
			if got := typeNames(sig.params); !equalStrings(got, tt.params) {
				t.Errorf("params = %v, want %v", got, tt.params)
			}
			if got := typeNames(sig.results); !equalStrings(got, tt.results) {
				t.Errorf("results = %v, want %v", got, tt.results)
			}
		})
	}
}

func TestSplitParams(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a: u32", []string{"a: u32"}},
		{"a: u32, b: list<u8>", []string{"a: u32", "b: list<u8>"}},
		{"a: tuple<u32, u64>, b: s8", []string{"a: tuple<u32, u64>", "b: s8"}},
	}

	for _, tt := range tests {
		if got := splitParams(tt.in); !equalStrings(got, tt.want) {
			t.Errorf("splitParams(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTypeName(t *testing.T) {
	for _, name := range []string{"bool", "u8", "s16", "u32", "s64", "f32", "f64", "char", "string"} {
		typ, err := wit.ParseType(name)
		if err != nil {
			t.Fatalf("ParseType(%s): %v", name, err)
		}
		if got := TypeName(typ); got != name {
			t.Errorf("TypeName(%s) = %q", name, got)
		}
	}
}

func typeNames(ts []wit.Type) []string {
	if len(ts) == 0 {
		return nil
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = TypeName(t)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
