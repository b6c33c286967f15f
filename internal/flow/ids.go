package flow

import "fmt"

// idGen hands out block, call and path ids unique within one analysis.
// Every Analyze* invocation creates its own generator, so concurrent
// analyses against a shared Engine never interleave id sequences.
type idGen struct {
	block int
	call  int
	path  int
}

func newIDGen() *idGen {
	return &idGen{}
}

func (g *idGen) nextBlock() string {
	id := fmt.Sprintf("block_%d", g.block)
	g.block++
	return id
}

func (g *idGen) nextCall() string {
	id := fmt.Sprintf("call_%d", g.call)
	g.call++
	return id
}

func (g *idGen) nextPath() string {
	id := fmt.Sprintf("path_%d", g.path)
	g.path++
	return id
}
