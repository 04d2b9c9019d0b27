// Package matrix implements an oracle whose knowledge is a fixed
// target/attribute weight table loaded from a YAML document.
package matrix

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/asklet/pkg/asklet/belief"
	"github.com/cognicore/asklet/pkg/asklet/internalerr"
	"github.com/cognicore/asklet/pkg/asklet/oracle"
	"github.com/cognicore/asklet/pkg/asklet/slug"
)

// Options configures a matrix oracle.
type Options struct {
	Logger *zap.Logger
	Rand   *rand.Rand
}

// Oracle answers from an immutable knowledge table keyed by compound
// identifiers: target → attribute → belief.
type Oracle struct {
	data    map[string]map[string]belief.Belief
	targets []string
	target  string
	rng     *rand.Rand
	log     *zap.Logger
}

var _ oracle.Oracle = (*Oracle)(nil)

// Load reads a matrix document from path.
func Load(path string, opts Options) (*Oracle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	o, err := Parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("load matrix %s: %w", path, err)
	}
	return o, nil
}

// Parse builds an oracle from a YAML mapping of target label → {attribute
// label → weight}. Bare labels are expanded to compound identifiers. Labels
// that expand to the same identifier merge; for a repeated target/attribute
// pair the entry appearing last in the document wins. Attribute mappings may
// use YAML merge keys (<<: *base) to share attributes between targets.
func Parse(data []byte, opts Options) (*Oracle, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse matrix: %v", internalerr.ErrInvalidConfig, err)
	}

	table := make(map[string]map[string]belief.Belief)

	root := resolve(&doc)
	if root != nil && root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = resolve(root.Content[0])
	}
	if root != nil && root.Kind == yaml.MappingNode {
		if err := buildTable(root, table); err != nil {
			return nil, err
		}
	} else if root != nil && root.Kind != 0 && root.Kind != yaml.DocumentNode {
		return nil, fmt.Errorf("%w: matrix must be a mapping of targets (line %d)", internalerr.ErrInvalidConfig, root.Line)
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("%w: matrix has no targets", internalerr.ErrInvalidConfig)
	}

	targets := make([]string, 0, len(table))
	for t := range table {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = oracle.NewRand(0)
	}

	opts.Logger.Debug("matrix loaded", zap.Int("targets", len(targets)))

	return &Oracle{
		data:    table,
		targets: targets,
		rng:     opts.Rand,
		log:     opts.Logger,
	}, nil
}

func buildTable(root *yaml.Node, table map[string]map[string]belief.Belief) error {
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], resolve(root.Content[i+1])

		targetID := slug.Concept(key.Value)
		if targetID == "" {
			return fmt.Errorf("%w: line %d: target label %q has no identifier", internalerr.ErrInvalidConfig, key.Line, key.Value)
		}
		attrs, ok := table[targetID]
		if !ok {
			attrs = make(map[string]belief.Belief)
			table[targetID] = attrs
		}

		if val.Kind == yaml.ScalarNode && val.Tag == "!!null" {
			continue
		}
		if val.Kind != yaml.MappingNode {
			return fmt.Errorf("%w: line %d: attributes of %q must be a mapping", internalerr.ErrInvalidConfig, val.Line, key.Value)
		}

		merged, err := decodeAttrs(val, key.Value)
		if err != nil {
			return err
		}
		for id, w := range merged {
			attrs[id] = w
		}
	}
	return nil
}

// decodeAttrs reads one target's attribute mapping. Merge keys (<<) pull in
// the referenced mappings; keys written out in the mapping itself override
// merged ones, and among several merged mappings the earlier one wins.
func decodeAttrs(val *yaml.Node, target string) (map[string]belief.Belief, error) {
	merged := make(map[string]belief.Belief)
	explicit := make(map[string]belief.Belief)

	for j := 0; j+1 < len(val.Content); j += 2 {
		ak, av := val.Content[j], resolve(val.Content[j+1])

		if ak.Kind == yaml.ScalarNode && ak.ShortTag() == "!!merge" {
			sources := []*yaml.Node{av}
			if av.Kind == yaml.SequenceNode {
				sources = sources[:0]
				for _, item := range av.Content {
					sources = append(sources, resolve(item))
				}
			}
			for k := len(sources) - 1; k >= 0; k-- {
				src := sources[k]
				if src.Kind != yaml.MappingNode {
					return nil, fmt.Errorf("%w: line %d: merge under %q must reference a mapping", internalerr.ErrInvalidConfig, ak.Line, target)
				}
				m, err := decodeAttrs(src, target)
				if err != nil {
					return nil, err
				}
				for id, w := range m {
					merged[id] = w
				}
			}
			continue
		}

		attrID := slug.Attribute(ak.Value)
		if attrID == "" {
			return nil, fmt.Errorf("%w: line %d: attribute label %q has no identifier", internalerr.ErrInvalidConfig, ak.Line, ak.Value)
		}
		var w float64
		if err := av.Decode(&w); err != nil {
			return nil, fmt.Errorf("%w: line %d: weight of %q under %q: %v", internalerr.ErrInvalidConfig, av.Line, ak.Value, target, err)
		}
		explicit[attrID] = belief.Belief(w)
	}

	for id, w := range explicit {
		merged[id] = w
	}
	return merged, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// ChooseSecret picks a target uniformly at random.
func (o *Oracle) ChooseSecret(ctx context.Context) error {
	o.target = o.targets[o.rng.IntN(len(o.targets))]
	return nil
}

// Target returns the current target identifier.
func (o *Oracle) Target() string { return o.target }

// SetTarget forces the target. Bare labels are expanded before lookup.
func (o *Oracle) SetTarget(ctx context.Context, identifier string) error {
	id := slug.Concept(identifier)
	if _, ok := o.data[id]; !ok {
		return fmt.Errorf("%w: target %q", internalerr.ErrNotFound, identifier)
	}
	o.target = id
	return nil
}

// Ask looks the attribute up under the current target. An attribute the
// table has no entry for is an error, never a default.
func (o *Oracle) Ask(ctx context.Context, attribute string) (belief.Belief, error) {
	if o.target == "" {
		return 0, internalerr.ErrNoTarget
	}
	w, ok := o.data[o.target][slug.Attribute(attribute)]
	if !ok {
		return 0, fmt.Errorf("%w: attribute %q for %q", internalerr.ErrNotFound, attribute, o.target)
	}
	return w, nil
}

// Confirm compares the expanded candidate with the current target.
func (o *Oracle) Confirm(ctx context.Context, candidate string) (bool, error) {
	if o.target == "" {
		return false, internalerr.ErrNoTarget
	}
	return slug.Concept(candidate) == o.target, nil
}

// Describe returns up to n random attributes of the target.
func (o *Oracle) Describe(ctx context.Context, n int, exclude []string) ([]oracle.Hint, error) {
	if o.target == "" {
		return nil, internalerr.ErrNoTarget
	}

	expanded := make([]string, len(exclude))
	for i, e := range exclude {
		expanded[i] = slug.Attribute(e)
	}

	attrs := o.data[o.target]
	picked := oracle.Sample(o.rng, sortedKeys(attrs), n, expanded)

	hints := make([]oracle.Hint, len(picked))
	for i, a := range picked {
		hints[i] = oracle.Hint{Attribute: a, Belief: attrs[a]}
	}
	return hints, nil
}

// Targets returns every target identifier, sorted.
func (o *Oracle) Targets() []string {
	out := make([]string, len(o.targets))
	copy(out, o.targets)
	return out
}

// Attributes returns the attributes known for target, sorted.
func (o *Oracle) Attributes(target string) []string {
	return sortedKeys(o.data[slug.Concept(target)])
}

// Weight returns the raw table entry for a target/attribute pair.
func (o *Oracle) Weight(target, attribute string) (belief.Belief, bool) {
	w, ok := o.data[slug.Concept(target)][slug.Attribute(attribute)]
	return w, ok
}

func sortedKeys(m map[string]belief.Belief) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
