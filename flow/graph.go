// Package flow provides a directed graph of stateful steps with conditional
// branching, fan-out/fan-in batch execution, suspend/resume for external
// input, and durable checkpointing keyed by thread id.
//
// ARCHITECTURE: Generic engine with domain-provided steps
//   - Infrastructure (flow) is domain-agnostic
//   - Domain packages provide step functions and the state type
//   - State must round-trip through encoding/json for checkpointing
package flow

import (
	"context"

	"github.com/seekwell/seekwell/errors"
)

// End is the terminal cursor. A run whose cursor reaches End is complete.
const End = "__end__"

// StepFunc transforms the full workflow state and returns the updated state.
// Steps must not retain the input state after returning.
type StepFunc[S any] func(ctx context.Context, state S) (S, error)

// ResumeFunc re-enters a suspended step with the externally supplied value.
type ResumeFunc[S any] func(ctx context.Context, state S, input string) (S, error)

// BatchFunc executes one fan-out activation against an isolated substate.
// It never sees the global state; the result is merged back by the reducer.
type BatchFunc func(ctx context.Context, substate any) (any, error)

// RouteFunc inspects state and returns the name of the next step.
// It must be pure: no state mutation, same answer for the same state.
type RouteFunc[S any] func(state S) string

// FanFunc inspects state and returns zero or more activations, one per
// parallel batch. Each activation carries its own isolated substate.
type FanFunc[S any] func(state S) []Activation

// ReduceFunc merges one batch result into the state. It must be associative
// and order-independent across batch results (append, never overwrite).
type ReduceFunc[S any] func(state S, batchResult any) S

// Activation is one (step, substate) pair emitted by a fan-out edge.
type Activation struct {
	Step     string
	Substate any
}

type nodeKind int

const (
	kindStep nodeKind = iota
	kindSuspend
	kindBatch
)

type edgeKind int

const (
	edgeNone edgeKind = iota
	edgeStatic
	edgeConditional
	edgeFanOut
)

type node[S any] struct {
	name   string
	kind   nodeKind
	run    StepFunc[S]
	resume ResumeFunc[S]
	prompt string
	batch  BatchFunc

	edge   edgeKind
	next   string
	route  RouteFunc[S]
	fan    FanFunc[S]
	join   string
	reduce ReduceFunc[S]
}

// Graph is a directed graph of named steps over a shared state type.
// Build with the Add/Set methods, then Compile before handing to an Engine.
type Graph[S any] struct {
	entry    string
	nodes    map[string]*node[S]
	compiled bool
}

// NewGraph creates an empty graph
func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{nodes: make(map[string]*node[S])}
}

// AddStep registers a named transform step.
// Panics if the name is already taken, mirroring handler registries.
func (g *Graph[S]) AddStep(name string, fn StepFunc[S]) *Graph[S] {
	g.addNode(&node[S]{name: name, kind: kindStep, run: fn})
	return g
}

// AddSuspend registers a step that halts the run awaiting external input.
// On first arrival the engine suspends and surfaces prompt to the caller;
// on resume, fn is invoked with the supplied value before continuing along
// the step's outgoing edge.
func (g *Graph[S]) AddSuspend(name string, prompt string, fn ResumeFunc[S]) *Graph[S] {
	g.addNode(&node[S]{name: name, kind: kindSuspend, prompt: prompt, resume: fn})
	return g
}

// AddBatch registers a step that is only reachable through a fan-out edge.
// Each activation executes fn independently against its own substate.
func (g *Graph[S]) AddBatch(name string, fn BatchFunc) *Graph[S] {
	g.addNode(&node[S]{name: name, kind: kindBatch, batch: fn})
	return g
}

func (g *Graph[S]) addNode(n *node[S]) {
	if n.name == "" || n.name == End {
		panic("flow: invalid step name: " + n.name)
	}
	if _, exists := g.nodes[n.name]; exists {
		panic("flow: step already registered: " + n.name)
	}
	g.nodes[n.name] = n
}

// SetEntry declares the entry step for every run of this graph
func (g *Graph[S]) SetEntry(name string) *Graph[S] {
	g.entry = name
	return g
}

// AddEdge declares an unconditional edge from one step to its single successor
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	n := g.edgeSource(from)
	n.edge = edgeStatic
	n.next = to
	return g
}

// AddConditionalEdge declares a routing function that picks the successor
// from the current state
func (g *Graph[S]) AddConditionalEdge(from string, route RouteFunc[S]) *Graph[S] {
	n := g.edgeSource(from)
	n.edge = edgeConditional
	n.route = route
	return g
}

// AddFanOutEdge declares a fan-out: fan emits one activation per parallel
// batch, all batches must complete (barrier), each result is folded into the
// state via reduce, then execution continues at join. Zero activations skip
// straight to join.
func (g *Graph[S]) AddFanOutEdge(from string, fan FanFunc[S], join string, reduce ReduceFunc[S]) *Graph[S] {
	n := g.edgeSource(from)
	n.edge = edgeFanOut
	n.fan = fan
	n.join = join
	n.reduce = reduce
	return g
}

func (g *Graph[S]) edgeSource(from string) *node[S] {
	n, ok := g.nodes[from]
	if !ok {
		panic("flow: edge from unknown step: " + from)
	}
	if n.edge != edgeNone {
		panic("flow: step already has an outgoing edge: " + from)
	}
	if n.kind == kindBatch {
		panic("flow: batch steps cannot have outgoing edges: " + from)
	}
	return n
}

// Compile validates the graph and freezes it for execution
func (g *Graph[S]) Compile() error {
	if g.entry == "" {
		return errors.New("graph has no entry step")
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return errors.Newf("entry step %q is not registered", g.entry)
	}
	for name, n := range g.nodes {
		switch n.kind {
		case kindBatch:
			if n.batch == nil {
				return errors.Newf("batch step %q has no function", name)
			}
			continue
		case kindStep:
			if n.run == nil {
				return errors.Newf("step %q has no function", name)
			}
		case kindSuspend:
			if n.resume == nil {
				return errors.Newf("suspend step %q has no resume function", name)
			}
			if n.prompt == "" {
				return errors.Newf("suspend step %q has no prompt", name)
			}
		}
		if n.edge == edgeNone {
			return errors.Newf("step %q has no outgoing edge", name)
		}
		if n.edge == edgeStatic {
			if err := g.checkTarget(name, n.next); err != nil {
				return err
			}
		}
		if n.edge == edgeFanOut {
			if err := g.checkTarget(name, n.join); err != nil {
				return err
			}
		}
	}
	g.compiled = true
	return nil
}

func (g *Graph[S]) checkTarget(from, to string) error {
	if to == End {
		return nil
	}
	target, ok := g.nodes[to]
	if !ok {
		return errors.Newf("step %q routes to unknown step %q", from, to)
	}
	if target.kind == kindBatch {
		return errors.Newf("step %q routes directly to batch step %q", from, to)
	}
	return nil
}
