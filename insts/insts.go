// Package insts provides MIPS-like instruction definitions and decoding.
//
// This package turns tokenized source records into typed instructions and
// variable definitions. It supports:
//   - Variable definition directives: DEF, DEFB, DEFH, DEFW, DEV, DEVB, DEVH, DEVW
//   - R-type ALU operations: ADD, ADDU, ADDI, ADDIU, AND, ANDI, NOR, OR, ORI, SUB, XOR, ...
//   - Memory operations: LB, LH, LW, SB, SH, SW
//   - Branches: BEQ, BNE, BGEZ, BGTZ, BLEZ, BLTZ
//   - Jumps and padding: J, NOP
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	res, err := decoder.Decode(raw) // ADD $1, $2, $3
//	fmt.Printf("Op: %v, Rd: %d, Rs: %d, Rt: %d\n", res.Inst.Op, res.Inst.RD, res.Inst.RS, res.Inst.RT)
package insts
