package wasmhost

import (
	"context"
	"math"
	"testing"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/reactor/errors"
)

func TestExport_ParseArgs(t *testing.T) {
	tests := []struct {
		name string
		e    Export
		args []string
		want Values
	}{
		{
			name: "core i64",
			e:    Export{Name: "add", Params: []api.ValueType{api.ValueTypeI64, api.ValueTypeI64}},
			args: []string{"-2", " 40 "},
			want: Values{api.EncodeI64(-2), 40},
		},
		{
			name: "core i32 and floats",
			e:    Export{Name: "mix", Params: []api.ValueType{api.ValueTypeI32, api.ValueTypeF32, api.ValueTypeF64}},
			args: []string{"-1", "1.5", "2.25"},
			want: Values{api.EncodeI32(-1), api.EncodeF32(1.5), api.EncodeF64(2.25)},
		},
		{
			name: "wit scalars",
			e: Export{
				Name:      "scalars",
				Params:    []api.ValueType{api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeI32, api.ValueTypeI32},
				WitParams: []wit.Type{wit.Bool{}, wit.U64{}, wit.Char{}, wit.U32{}},
			},
			args: []string{"true", "18446744073709551615", "λ", "4294967295"},
			want: Values{1, math.MaxUint64, api.EncodeU32('λ'), api.EncodeU32(math.MaxUint32)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.e.ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("ParseArgs: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("arg %d = %#x, want %#x", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExport_ParseArgsErrors(t *testing.T) {
	e := Export{
		Name:       "approve",
		ParamNames: []string{"amount"},
		Params:     []api.ValueType{api.ValueTypeI64},
		WitParams:  []wit.Type{wit.U64{}},
	}

	tests := []struct {
		name string
		args []string
	}{
		{"missing", nil},
		{"extra", []string{"1", "2"}},
		{"negative unsigned", []string{"-1"}},
		{"not a number", []string{"ten"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ParseArgs(tt.args)
			if errors.KindOf(err) != errors.KindInvalidInput {
				t.Errorf("err = %v, want invalid_input", err)
			}
		})
	}
}

func TestExport_FormatResults(t *testing.T) {
	tests := []struct {
		name string
		e    Export
		in   Values
		want []string
	}{
		{
			name: "core",
			e:    Export{Results: []api.ValueType{api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF64}},
			in:   Values{api.EncodeI32(-5), api.EncodeI64(-6), api.EncodeF64(0.5)},
			want: []string{"-5", "-6", "0.5"},
		},
		{
			name: "wit",
			e: Export{
				Results:    []api.ValueType{api.ValueTypeI64, api.ValueTypeI32, api.ValueTypeI32},
				WitResults: []wit.Type{wit.U64{}, wit.Bool{}, wit.S8{}},
			},
			in:   Values{math.MaxUint64, 1, api.EncodeI32(-3)},
			want: []string{"18446744073709551615", "true", "-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.e.FormatResults(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("result %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExport_StringUsesWit(t *testing.T) {
	a, err := newTestHost(t).Load(context.Background(), "ledger", ledgerWasm, ledgerWit)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := map[string]string{
		"balance": "balance() -> u64",
		"add":     "add(a: s64, b: s64) -> s64",
		"fail":    "fail()",
	}
	for name, want := range tests {
		e, ok := a.Export(name)
		if !ok {
			t.Fatalf("export %s missing", name)
		}
		if got := e.String(); got != want {
			t.Errorf("%s.String() = %q, want %q", name, got, want)
		}
	}
}
