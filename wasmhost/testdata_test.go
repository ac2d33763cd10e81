package wasmhost

// ledgerWasm is a hand-assembled core module exporting:
//
//	balance() -> i64   returns 100
//	add(i64, i64) -> i64
//	fail()             traps (unreachable)
var ledgerWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// type section
	0x01, 0x0e, 0x03,
	0x60, 0x00, 0x01, 0x7e,
	0x60, 0x02, 0x7e, 0x7e, 0x01, 0x7e,
	0x60, 0x00, 0x00,
	// function section
	0x03, 0x04, 0x03, 0x00, 0x01, 0x02,
	// export section
	0x07, 0x18, 0x03,
	0x07, 'b', 'a', 'l', 'a', 'n', 'c', 'e', 0x00, 0x00,
	0x03, 'a', 'd', 'd', 0x00, 0x01,
	0x04, 'f', 'a', 'i', 'l', 0x00, 0x02,
	// code section
	0x0a, 0x13, 0x03,
	0x05, 0x00, 0x42, 0xe4, 0x00, 0x0b,
	0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x7c, 0x0b,
	0x03, 0x00, 0x00, 0x0b,
}

const ledgerWit = `
interface ledger {
	export balance: func() -> u64;
	export add: func(a: s64, b: s64) -> s64;
	export fail: func();
}
`
