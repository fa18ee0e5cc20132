package astbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/codelens-dev/codelens-gateway/internal/model"
)

// Config names the rule-set files the matcher is configured with: one per
// concern (definitions, bare identifiers, references). ReferenceConfigPath
// holds the strict reference rules (calls, decorators, instantiations);
// FullReferenceConfigPath holds the looser set that additionally matches
// type hints and chained indirections, used when a caller asks for a full
// scan and always while chasing intra-symbol bindings. The YAML is only
// parsed here to validate it exists and is well-formed at startup; its
// contents are interpreted by the matcher binary itself.
type Config struct {
	SymbolConfigPath        string
	IdentifierConfigPath    string
	ReferenceConfigPath     string
	FullReferenceConfigPath string // falls back to ReferenceConfigPath when empty
	Binary                  string // defaults to "ast-grep"
}

// Validate loads each config path just far enough to confirm it parses as
// YAML, failing fast on a missing or malformed rule file rather than
// surfacing a cryptic subprocess error on first use.
func (c Config) Validate() error {
	paths := []string{c.SymbolConfigPath, c.IdentifierConfigPath, c.ReferenceConfigPath}
	if c.FullReferenceConfigPath != "" {
		paths = append(paths, c.FullReferenceConfigPath)
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("astbridge: rule config %s: %w", path, err)
		}
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("astbridge: rule config %s: invalid yaml: %w", path, err)
		}
	}
	return nil
}

// Bridge drives the external matcher subprocess.
type Bridge struct {
	cfg Config
}

// New returns a Bridge for cfg, defaulting the binary name to "ast-grep".
func New(cfg Config) *Bridge {
	if cfg.Binary == "" {
		cfg.Binary = "ast-grep"
	}
	return &Bridge{cfg: cfg}
}

// scanFile runs `ast-grep scan --config <configPath> --json <file>` and
// decodes the resulting match array, sorted by start line, matching the
// reference implementation's scan_file.
func (b *Bridge) scanFile(ctx context.Context, configPath, file string) ([]Match, error) {
	cmd := exec.CommandContext(ctx, b.cfg.Binary, "scan", "--config", configPath, "--json", file)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("astbridge: %s scan %s: %w: %s", b.cfg.Binary, file, err, stderr.String())
	}

	var matches []Match
	if err := json.Unmarshal(stdout.Bytes(), &matches); err != nil {
		return nil, fmt.Errorf("astbridge: parse matcher output for %s: %w", file, err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Range.Start.Line < matches[j].Range.Start.Line
	})
	return matches, nil
}

// FileSymbols returns every definition-site match in file (functions,
// methods, classes, ...), excluding the generic "all-identifiers" rule.
func (b *Bridge) FileSymbols(ctx context.Context, file string) ([]Match, error) {
	matches, err := b.scanFile(ctx, b.cfg.SymbolConfigPath, file)
	if err != nil {
		return nil, err
	}
	return filterOutRule(matches, "all-identifiers"), nil
}

// FileIdentifiers returns every bare-identifier occurrence in file, keeping
// only the generic "all-identifiers" rule's matches.
func (b *Bridge) FileIdentifiers(ctx context.Context, file string) ([]Match, error) {
	matches, err := b.scanFile(ctx, b.cfg.IdentifierConfigPath, file)
	if err != nil {
		return nil, err
	}
	out := matches[:0]
	for _, m := range matches {
		if m.RuleID == "all-identifiers" {
			out = append(out, m)
		}
	}
	return out, nil
}

// referenceConfig picks the rule-set for a reference scan: the strict rules
// by default, the looser full-scan rules when fullScan is set (falling back
// to the strict file if no full-scan file is configured).
func (b *Bridge) referenceConfig(fullScan bool) string {
	if fullScan && b.cfg.FullReferenceConfigPath != "" {
		return b.cfg.FullReferenceConfigPath
	}
	return b.cfg.ReferenceConfigPath
}

// SymbolFromPosition returns the definition-site match whose NAME token
// starts exactly at pos, or ok=false if none does.
func (b *Bridge) SymbolFromPosition(ctx context.Context, file string, pos model.Position) (Match, bool, error) {
	symbols, err := b.FileSymbols(ctx, file)
	if err != nil {
		return Match{}, false, err
	}
	for _, s := range symbols {
		start := s.MetaVariables.Single.Name.Range.Start
		if start.Line == pos.Line && start.Column == pos.Character {
			return s, true, nil
		}
	}
	return Match{}, false, nil
}

// ReferencesContainedInSymbol returns every reference-rule match whose
// start position falls inside the context range of the definition-site
// symbol found at identifierPos. fullScan selects the looser rule-set.
func (b *Bridge) ReferencesContainedInSymbol(ctx context.Context, file string, identifierPos model.Position, fullScan bool) ([]Match, error) {
	refs, err := b.scanFile(ctx, b.referenceConfig(fullScan), file)
	if err != nil {
		return nil, err
	}
	symbol, ok, err := b.SymbolFromPosition(ctx, file, identifierPos)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("astbridge: no symbol found at %s:%s", file, identifierPos)
	}

	symbolRange := symbol.ContextRange()
	var contained []Match
	for _, m := range refs {
		start := model.Position{Line: m.Range.Start.Line, Character: m.Range.Start.Column}
		if symbolRange.Contains(model.FilePosition{Path: m.File, Position: start}) {
			contained = append(contained, m)
		}
	}
	return contained, nil
}

func filterOutRule(matches []Match, ruleID string) []Match {
	out := matches[:0]
	for _, m := range matches {
		if m.RuleID != ruleID {
			out = append(out, m)
		}
	}
	return out
}
