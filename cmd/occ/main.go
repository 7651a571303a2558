package main

import "github.com/OpenTraceLab/OpenTraceCircuit/cmd/occ/cmd"

func main() {
	cmd.Execute()
}
