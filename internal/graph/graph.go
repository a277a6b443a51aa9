// Package graph projects ranked results onto a star graph centred on the
// candidate, with one weighted edge per listing.
package graph

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/emicklei/dot"

	"github.com/BihanDasgupta/CareerNodes/internal/results"
)

const (
	DefaultCenter = "You"
	DefaultLimit  = 50
	centerID      = "center"
)

type Node struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Center bool   `json:"center,omitempty"`
}

type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Star links center to the first limit pairs in the order given. Node ids are
// positional so listings sharing a label stay distinct.
func Star(center string, pairs []results.Pair, limit int) Graph {
	if center == "" {
		center = DefaultCenter
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	pairs = pairs[:min(limit, len(pairs))]

	g := Graph{
		Nodes: make([]Node, 0, len(pairs)+1),
		Edges: make([]Edge, 0, len(pairs)),
	}
	g.Nodes = append(g.Nodes, Node{ID: centerID, Label: center, Center: true})
	for i, p := range pairs {
		id := fmt.Sprintf("n%d", i+1)
		g.Nodes = append(g.Nodes, Node{ID: id, Label: p.Label})
		g.Edges = append(g.Edges, Edge{From: centerID, To: id, Weight: p.Score})
	}

	return g
}

func WriteJSON(w io.Writer, g Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// WriteDOT renders g for Graphviz. Edge pen width follows the weight.
func WriteDOT(w io.Writer, g Graph) error {
	out := dot.NewGraph(dot.Undirected)
	out.ID("careernodes")
	out.Attr("layout", "neato")
	out.Attr("overlap", "false")

	nodes := make(map[string]dot.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		node := out.Node(n.ID).Label(n.Label).Attr("shape", "box").Attr("style", "rounded")
		if n.Center {
			node.Attr("shape", "ellipse").Attr("style", "filled").Attr("fillcolor", "lightblue")
		}
		nodes[n.ID] = node
	}
	for _, e := range g.Edges {
		out.Edge(nodes[e.From], nodes[e.To]).
			Attr("label", fmt.Sprintf("%.2f", e.Weight)).
			Attr("penwidth", dot.Literal(fmt.Sprintf("%.2f", 1+4*e.Weight)))
	}

	_, err := io.WriteString(w, out.String())
	return err
}

var page = template.Must(template.New("graph").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"></script>
<style>html, body, #graph { width: 100%; height: 100%; margin: 0; }</style>
</head>
<body>
<div id="graph"></div>
<script>
const data = {{.Graph}};
const nodes = data.nodes.map(n => ({id: n.id, label: n.label, shape: n.center ? "ellipse" : "box", color: n.center ? "#97c2fc" : undefined}));
const edges = data.edges.map(e => ({from: e.from, to: e.to, value: e.weight, title: e.weight.toFixed(3)}));
new vis.Network(document.getElementById("graph"), {nodes, edges}, {physics: {stabilization: true}});
</script>
</body>
</html>
`))

// WriteHTML renders an interactive page backed by vis-network.
func WriteHTML(w io.Writer, g Graph) error {
	return page.Execute(w, struct {
		Title string
		Graph Graph
	}{Title: "careernodes", Graph: g})
}
