// Package resolver implements the Referenced-Symbol Resolver: given a
// reference to a name, it chases the LSP definition chain through
// intermediate (internal, non-callable) bindings until it lands on either
// an external symbol, a callable definition, or gives up at a depth limit.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/codelens-dev/codelens-gateway/internal/astbridge"
	"github.com/codelens-dev/codelens-gateway/internal/model"
)

// MaxDepth bounds the recursive definition-chain walk; exceeding it is a
// RecursionLimitExceeded error rather than an infinite loop.
const MaxDepth = 10

// ErrRecursionLimitExceeded is returned when the chain exceeds MaxDepth.
var ErrRecursionLimitExceeded = errors.New("resolver: definition chain exceeded maximum depth")

// ErrNotImplemented is returned for languages the resolver doesn't support.
var ErrNotImplemented = errors.New("resolver: find referenced symbols is only implemented for Python and TypeScript/JavaScript")

// DefinitionLookup is the subset of lspclient.Client the resolver needs: a
// way to ask "where is the definition of the symbol at this position".
type DefinitionLookup interface {
	Definition(ctx context.Context, path string, pos model.Position) ([]model.FileRange, error)
}

// Resolver walks definition chains for one file's language client, backed by
// the syntactic bridge for symbol/callable classification.
type Resolver struct {
	bridge *astbridge.Bridge
	client DefinitionLookup
}

// New returns a Resolver driven by bridge for symbol lookups and client for
// LSP definition requests.
func New(bridge *astbridge.Bridge, client DefinitionLookup) *Resolver {
	return &Resolver{bridge: bridge, client: client}
}

// Resolved is one reference's outcome: the raw definition locations its
// chain terminated at. The workspace/external/not-found classification of
// those locations is the manager's job, not the resolver's.
type Resolved struct {
	Reference   astbridge.Match
	Definitions []model.FileRange
}

// ResolveFile finds every reference contained in the symbol at pos within
// file, and resolves each one's definition chain. fullScan widens the
// initial reference scan to the looser rule-set (type hints, chained
// indirections); the chain walk itself always scans intermediate bindings
// with the full rule-set so an alias hop is never missed.
func (r *Resolver) ResolveFile(ctx context.Context, lang model.LanguageKind, file string, pos model.Position, fullScan bool) ([]Resolved, error) {
	if !model.ReferencedSymbolsSupported[lang] {
		return nil, ErrNotImplemented
	}

	symbol, ok, err := r.bridge.SymbolFromPosition(ctx, file, pos)
	if !ok || err != nil {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("resolver: no symbol found at %s:%s", file, pos)
	}

	refs, err := r.bridge.ReferencesContainedInSymbol(ctx, file, pos, fullScan)
	if err != nil {
		return nil, err
	}

	results := make([]Resolved, 0, len(refs))
	for _, ref := range refs {
		defs, err := r.resolveChain(ctx, file, symbol, ref, 0)
		if err != nil {
			return nil, err
		}
		results = append(results, Resolved{Reference: ref, Definitions: defs})
	}
	return results, nil
}

// resolveChain is resolve_definition_chain: fetch the LSP definition(s) of
// ref, stop (base case) if any of them is external to the original symbol's
// range or is itself a callable definition, else recurse into the
// references contained in whichever internal symbol each definition landed
// on, one level deeper.
func (r *Resolver) resolveChain(ctx context.Context, file string, original, ref astbridge.Match, depth int) ([]model.FileRange, error) {
	if depth >= MaxDepth {
		return nil, ErrRecursionLimitExceeded
	}

	identPos := model.Position{Line: ref.MetaVariables.Single.Name.Range.Start.Line, Character: ref.MetaVariables.Single.Name.Range.Start.Column}
	defs, err := r.client.Definition(ctx, file, identPos)
	if err != nil {
		return nil, fmt.Errorf("resolver: definition lookup for %s at %s: %w", file, identPos, err)
	}

	isBase, err := r.isBaseCase(ctx, original, defs)
	if err != nil {
		return nil, err
	}
	if isBase {
		return defs, nil
	}

	var final []model.FileRange
	for _, loc := range defs {
		innerRefs, err := r.bridge.ReferencesContainedInSymbol(ctx, loc.Path, loc.Range.Start, true)
		if err != nil {
			// No symbol at this location to chase further; skip it rather
			// than failing the whole chain.
			continue
		}
		for _, innerRef := range innerRefs {
			nested, err := r.resolveChain(ctx, loc.Path, original, innerRef, depth+1)
			if err != nil {
				return nil, err
			}
			final = append(final, nested...)
		}
	}

	if len(final) == 0 {
		return nil, nil
	}
	return sortAndMergeLocations(final), nil
}

// isBaseCase reports whether any location in defs is external to the
// original symbol's range, or is itself callable: the two terminating
// conditions for the recursive resolution.
func (r *Resolver) isBaseCase(ctx context.Context, original astbridge.Match, defs []model.FileRange) (bool, error) {
	for _, loc := range defs {
		external := !original.ContextRange().Contains(model.FilePosition{Path: loc.Path, Position: loc.Range.Start}) ||
			!original.ContextRange().Contains(model.FilePosition{Path: loc.Path, Position: loc.Range.End})
		if external {
			return true, nil
		}
		innerSymbol, ok, err := r.bridge.SymbolFromPosition(ctx, loc.Path, loc.Range.Start)
		if err != nil {
			return false, err
		}
		if ok && innerSymbol.IsCallable() {
			return true, nil
		}
	}
	return false, nil
}

func sortAndMergeLocations(locs []model.FileRange) []model.FileRange {
	out := append([]model.FileRange{}, locs...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Range.Start.Compare(out[j].Range.Start) < 0
	})
	return out
}
