// spvdis - SPIR-V disassembler
// Prints a textual listing of a SPIR-V binary.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/gogpu/spvwrap/spirv"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: spvdis <file.spv>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	if err := spirv.Disassemble(w, data); err != nil {
		w.Flush()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
