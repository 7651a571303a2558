package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chewxy/sexp"
)

// Low-level snapshot probe: parses a circuit snapshot with a generic
// s-expression parser and reports the raw node structure, useful when the
// real loader rejects a file and the question is whether the syntax or the
// content is at fault.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: investigate-snapshot <snapshot_file>")
		os.Exit(1)
	}

	filename := os.Args[1]
	file, err := os.Open(filename)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	info, _ := file.Stat()
	fmt.Printf("File size: %d bytes\n", info.Size())

	sexps, err := sexp.Parse(file)
	if err != nil {
		fmt.Printf("Parse error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Parsed %d top-level s-expressions\n", len(sexps))

	counts := map[string]int{}
	leaves := 0
	for _, s := range sexps {
		if s.IsLeaf() {
			leaves++
			continue
		}
		counts[headOf(s)]++
	}
	if leaves > 0 {
		fmt.Printf("  bare atoms: %d\n", leaves)
	}
	for _, head := range []string{"circuit", "junction", "symbol", "segment", "marked", "amassed"} {
		if n, ok := counts[head]; ok {
			fmt.Printf("  %s: %d\n", head, n)
			delete(counts, head)
		}
	}
	for head, n := range counts {
		fmt.Printf("  %s: %d (unrecognized)\n", head, n)
	}

	// Dump the first few nodes for eyeballing
	for i, s := range sexps {
		if i >= 5 {
			fmt.Printf("  ... %d more\n", len(sexps)-i)
			break
		}
		fmt.Printf("  #%d leaf=%v leaves=%d: %v\n", i, s.IsLeaf(), s.LeafCount(), s)
	}
}

// headOf extracts the first token from the node's printed form.
func headOf(s sexp.Sexp) string {
	text := strings.TrimLeft(fmt.Sprintf("%v", s), "( ")
	if i := strings.IndexAny(text, " ()"); i >= 0 {
		return text[:i]
	}
	return text
}
