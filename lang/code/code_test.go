package code

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := []struct {
		op       Opcode
		operands []int
		want     []byte
	}{
		{OpConstant, []int{65534}, []byte{byte(OpConstant), 255, 254}},
		{OpAdd, []int{}, []byte{byte(OpAdd)}},
		{OpGetLocal, []int{255}, []byte{byte(OpGetLocal), 255}},
		{OpClosure, []int{65534, 255}, []byte{byte(OpClosure), 255, 254, 255}},
	}

	for _, tt := range tests {
		got := Make(tt.op, tt.operands...)
		require.Equal(t, tt.want, got)
	}
}

func TestInstructionsString(t *testing.T) {
	instructions := []Instructions{
		Make(OpAdd),
		Make(OpGetLocal, 1),
		Make(OpConstant, 2),
		Make(OpConstant, 65535),
		Make(OpClosure, 65535, 255),
	}

	want := "0000 OpAdd\n" +
		"0001 OpGetLocal 1\n" +
		"0003 OpConstant 2\n" +
		"0006 OpConstant 65535\n" +
		"0009 OpClosure 65535 255\n"

	var concatted Instructions
	for _, ins := range instructions {
		concatted = append(concatted, ins...)
	}

	require.Equal(t, want, concatted.String())
}

func TestReadOperands(t *testing.T) {
	tests := []struct {
		op        Opcode
		operands  []int
		bytesRead int
	}{
		{OpConstant, []int{65535}, 2},
		{OpGetLocal, []int{255}, 1},
	}

	for _, tt := range tests {
		instr := Make(tt.op, tt.operands...)
		def, err := Lookup(tt.op)
		require.NoError(t, err)

		operands, n := ReadOperands(def, instr[1:])
		require.Equal(t, tt.bytesRead, n)
		for i, want := range tt.operands {
			require.Equal(t, want, operands[i])
		}
	}
}
