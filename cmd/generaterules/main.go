// Command generaterules runs the offline rule generator (spec §4.2,
// §6) and optionally saves the resulting table to RefRules.data in
// the current directory.
package main // import "github.com/ugcore/tetrefine/cmd/generaterules"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/ugcore/tetrefine/tetra/rule"
)

func main() {
	log.SetPrefix("generaterules: ")
	log.SetFlags(0)

	dump := flag.Bool("o", false, "dump every generated rule to stdout for audit")
	save := flag.Bool("s", false, "save the rule table to RefRules.data in the current directory")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: generaterules MIN_REF_EDGES MAX_REF_EDGES [-o] [-s]

MIN_REF_EDGES, MAX_REF_EDGES are integers in [0,6] with MIN <= MAX.

Options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	minEdges, err := strconv.Atoi(flag.Arg(0))
	if err != nil {
		log.Print("MIN_REF_EDGES must be an integer")
		os.Exit(1)
	}
	maxEdges, err := strconv.Atoi(flag.Arg(1))
	if err != nil {
		log.Print("MAX_REF_EDGES must be an integer")
		os.Exit(1)
	}

	t, err := rule.Generate(rule.GenerateOptions{MinRefEdges: minEdges, MaxRefEdges: maxEdges})
	if err != nil {
		log.Print(err)
		os.Exit(1)
	}
	log.Printf("generated %d rules covering %d patterns", len(t.Rules), countMapped(t))

	if *dump {
		dumpRules(os.Stdout, t)
	}

	if *save {
		if err := saveTable(t); err != nil {
			log.Print(err)
			os.Exit(1)
		}
		log.Print("wrote RefRules.data")
	}
}

func countMapped(t *rule.Table) int {
	n := 0
	for _, idx := range t.PatternMap {
		if idx >= 0 {
			n++
		}
	}
	return n
}

func saveTable(t *rule.Table) error {
	f, err := os.Create("RefRules.data")
	if err != nil {
		return fmt.Errorf("generaterules: create RefRules.data: %w", err)
	}
	defer f.Close()
	if err := rule.Save(f, t); err != nil {
		return fmt.Errorf("generaterules: save: %w", err)
	}
	return nil
}

// dumpRules writes a human-readable rendering of every rule in t to w
// (spec §6 "-o: verbose rule dumps to stdout for audit").
func dumpRules(w *os.File, t *rule.Table) {
	for i, r := range t.Rules {
		fmt.Fprintf(w, "rule %d: nsons=%d pattern=%06b sidepattern=%04b\n", i, r.NSons, r.Pattern, r.SidePattern)
		for _, e := range r.Edges {
			fmt.Fprintf(w, "  edge %s %d-%d side=%d\n", e.Kind, e.From, e.To, e.Side)
		}
		for si, s := range r.Sons {
			fmt.Fprintf(w, "  son %d: corners=%v neighbors=%v path=%v\n", si, s.Corners, s.Neighbors, s.Path)
		}
		for ni, sn := range r.SonAndNode {
			if sn.Unset() {
				continue
			}
			fmt.Fprintf(w, "  node %d: son=%d local=%d\n", 4+ni, sn.Son, sn.LocalCorner)
		}
	}
}
