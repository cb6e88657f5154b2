package classify

import (
	"fmt"
	"io"
	"strconv"

	"github.com/awalterschulze/gographviz"
)

// WriteRedirectDot renders a min-support/disabled-taxa redirect map
// (MinSupportFilter.Apply's fromId->toId output) as a Graphviz digraph,
// for the classify command's --dot diagnostic flag. Assembled the way
// mudesheng-ga's GraphvizDBGArr builds a gographviz.Graph from node/edge
// slices before calling g.String().
func WriteRedirectDot(tree ClassificationTree, changes map[int]int, w io.Writer) error {
	g := gographviz.NewGraph()
	g.SetName("G")
	g.SetDir(true)
	g.SetStrict(false)

	seen := map[int]bool{}
	addNode := func(id int) error {
		if seen[id] {
			return nil
		}
		seen[id] = true
		attr := map[string]string{
			"shape": "box",
			"label": "\"" + strconv.Itoa(id) + " (depth " + strconv.Itoa(tree.Depth(id)) + ")\"",
		}
		return g.AddNode("G", strconv.Itoa(id), attr)
	}

	for from, to := range changes {
		if err := addNode(from); err != nil {
			return fmt.Errorf("add redirect node %d: %w", from, err)
		}
		if err := addNode(to); err != nil {
			return fmt.Errorf("add redirect node %d: %w", to, err)
		}
		attr := map[string]string{"color": "Red"}
		if err := g.AddEdge(strconv.Itoa(from), strconv.Itoa(to), true, attr); err != nil {
			return fmt.Errorf("add redirect edge %d->%d: %w", from, to, err)
		}
	}

	_, err := io.WriteString(w, g.String())
	return err
}
