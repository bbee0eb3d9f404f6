package rule

import (
	"encoding/binary"
	"io"
)

// These bounds mirror the compiled NRULES/MAX_SONS limits spec §6
// requires readers to validate counts against.
const (
	maxRules    = 4096
	maxPatterns = 1 << (tetraEdges + 4)
)

// Save writes t to w in the native-host-endian binary format of spec
// §6. FollowRule and per-rule SidePattern are not part of the wire
// format (spec §6 lists only nsons/pattern/pat/edges/sons/sonandnode
// per record); they are pure functions of the loaded data and are
// recomputed by Load.
func Save(w io.Writer, t *Table) error {
	bo := nativeOrder
	if err := binary.Write(w, bo, int32(len(t.Rules))); err != nil {
		return err
	}
	for _, r := range t.Rules {
		if err := writeRule(w, bo, r); err != nil {
			return err
		}
	}
	if err := binary.Write(w, bo, int32(len(t.PatternMap))); err != nil {
		return err
	}
	for _, v := range t.PatternMap {
		if err := binary.Write(w, bo, v); err != nil {
			return err
		}
	}
	return nil
}

func writeRule(w io.Writer, bo binary.ByteOrder, r Rule) error {
	if err := binary.Write(w, bo, int32(r.NSons)); err != nil {
		return err
	}
	for e := 0; e < tetraEdges; e++ {
		bit := int32(0)
		if r.Pattern&(1<<uint(e)) != 0 {
			bit = 1
		}
		if err := binary.Write(w, bo, bit); err != nil {
			return err
		}
	}
	if err := binary.Write(w, bo, int32(r.Pattern)); err != nil {
		return err
	}
	for i := 0; i < MaxInteriorEdges; i++ {
		var e Edge
		if i < len(r.Edges) {
			e = r.Edges[i]
		} else {
			e = Edge{Kind: EdgeNone, From: 0, To: 0, Side: -1}
		}
		vals := [4]int32{int32(e.Kind), int32(e.From), int32(e.To), int32(e.Side)}
		if err := binary.Write(w, bo, vals); err != nil {
			return err
		}
	}
	for i := 0; i < MaxSons; i++ {
		var s Son
		if i < len(r.Sons) {
			s = r.Sons[i]
		} else {
			s.Neighbors = [4]int{-1, -1, -1, -1}
		}
		corners := [4]int32{int32(s.Corners[0]), int32(s.Corners[1]), int32(s.Corners[2]), int32(s.Corners[3])}
		nb := [4]int32{int32(s.Neighbors[0]), int32(s.Neighbors[1]), int32(s.Neighbors[2]), int32(s.Neighbors[3])}
		if err := binary.Write(w, bo, corners); err != nil {
			return err
		}
		if err := binary.Write(w, bo, nb); err != nil {
			return err
		}
		if err := binary.Write(w, bo, int32(s.Path)); err != nil {
			return err
		}
	}
	for i := 0; i < MaxNewNodes; i++ {
		sn := r.SonAndNode[i]
		if err := binary.Write(w, bo, [2]int32{int32(sn.Son), int32(sn.LocalCorner)}); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a rule table from r, validating nRules/nPatterns against
// the compiled limits and rejecting on mismatch (spec §6: "readers
// must validate counts against the compiled NRULES/MAX_SONS limits
// and reject on mismatch").
func Load(r io.Reader) (*Table, error) {
	bo := nativeOrder
	var nRules int32
	if err := binary.Read(r, bo, &nRules); err != nil {
		return nil, err
	}
	if nRules < 0 || nRules > maxRules {
		return nil, &ConfigError{Msg: "load: nRules out of bounds, rejecting rule file"}
	}
	t := &Table{Rules: make([]Rule, nRules)}
	for i := range t.Rules {
		rl, err := readRule(r, bo)
		if err != nil {
			return nil, err
		}
		t.Rules[i] = rl
	}

	var nPatterns int32
	if err := binary.Read(r, bo, &nPatterns); err != nil {
		return nil, err
	}
	if int(nPatterns) != maxPatterns {
		return nil, &ConfigError{Msg: "load: nPatterns does not match compiled 1<<(6+4)=1024, rejecting rule file"}
	}
	for i := 0; i < int(nPatterns); i++ {
		var v int16
		if err := binary.Read(r, bo, &v); err != nil {
			return nil, err
		}
		t.PatternMap[i] = v
	}
	for key, idx := range t.PatternMap {
		if idx >= 0 && int(idx) < len(t.Rules) {
			t.Rules[idx].SidePattern = uint8(key >> tetraEdges)
		}
	}

	computeFollowRules(t)
	t.FullRefRule = int(t.PatternMap[0x3F])
	return t, nil
}

func readRule(r io.Reader, bo binary.ByteOrder) (Rule, error) {
	var rl Rule
	var nsons int32
	if err := binary.Read(r, bo, &nsons); err != nil {
		return rl, err
	}
	rl.NSons = int(nsons)

	var patBits [tetraEdges]int32
	if err := binary.Read(r, bo, &patBits); err != nil {
		return rl, err
	}
	var pat int32
	if err := binary.Read(r, bo, &pat); err != nil {
		return rl, err
	}
	rl.Pattern = uint8(pat)

	for i := 0; i < MaxInteriorEdges; i++ {
		var vals [4]int32
		if err := binary.Read(r, bo, &vals); err != nil {
			return rl, err
		}
		if vals[0] == int32(EdgeNone) {
			continue
		}
		rl.Edges = append(rl.Edges, Edge{
			Kind: EdgeKind(vals[0]), From: int(vals[1]), To: int(vals[2]), Side: int(vals[3]),
		})
	}

	for i := 0; i < MaxSons; i++ {
		var corners, nb [4]int32
		var path int32
		if err := binary.Read(r, bo, &corners); err != nil {
			return rl, err
		}
		if err := binary.Read(r, bo, &nb); err != nil {
			return rl, err
		}
		if err := binary.Read(r, bo, &path); err != nil {
			return rl, err
		}
		if i >= rl.NSons {
			continue
		}
		var s Son
		for j := 0; j < 4; j++ {
			s.Corners[j] = int(corners[j])
			s.Neighbors[j] = int(nb[j])
		}
		s.Path = Path(path)
		rl.Sons = append(rl.Sons, s)
	}

	for i := 0; i < MaxNewNodes; i++ {
		var sn [2]int32
		if err := binary.Read(r, bo, &sn); err != nil {
			return rl, err
		}
		rl.SonAndNode[i] = SonNode{Son: int(sn[0]), LocalCorner: int(sn[1])}
	}
	for i := range rl.FollowRule {
		rl.FollowRule[i] = -1
	}
	return rl, nil
}
