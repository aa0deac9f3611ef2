package ordering

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/grpc-boot/atom"
	"github.com/pkg/errors"
)

var ErrInvalidPolicy = errors.New("invalid ordering policy")

// Pair is the ordering used when an operation succeeds and, for compare
// operations, when it fails.
type Pair struct {
	Success Ordering
	Failure Ordering
}

func (p Pair) String() string {
	return p.Success.String() + "/" + p.Failure.String()
}

// Policy is an immutable table from operation kind to ordering pair.
type Policy struct {
	pairs [opCount]Pair
}

// Default is the table every cell in this module is built against.
func Default() Policy {
	var p Policy
	p.pairs[Load] = Pair{Acquire, Acquire}
	p.pairs[Store] = Pair{Release, Relaxed}
	p.pairs[Swap] = Pair{AcqRel, Relaxed}
	p.pairs[CompareSet] = Pair{AcqRel, Acquire}
	p.pairs[CompareSetWeak] = Pair{AcqRel, Acquire}
	p.pairs[FetchArith] = Pair{Relaxed, Relaxed}
	p.pairs[FetchBits] = Pair{AcqRel, Relaxed}
	p.pairs[FetchUpdate] = Pair{AcqRel, Acquire}
	p.pairs[Retain] = Pair{Relaxed, Relaxed}
	p.pairs[Decrement] = Pair{Release, Relaxed}
	p.pairs[Reclaim] = Pair{Acquire, Relaxed}
	return p
}

func (p Policy) For(op Op) Pair {
	if op >= opCount {
		return Pair{SeqCst, SeqCst}
	}
	return p.pairs[op]
}

// With returns a copy of p with op mapped to pair.
func (p Policy) With(op Op, pair Pair) Policy {
	if op < opCount {
		p.pairs[op] = pair
	}
	return p
}

func (p Policy) Validate() error {
	for op := Op(0); op < opCount; op++ {
		pair := p.pairs[op]
		switch {
		case pair.Success > SeqCst || pair.Failure > SeqCst:
			return errors.Wrapf(ErrInvalidPolicy, "%s: %s", op, pair)
		case op.pureLoad() && (pair.Success == Release || pair.Success == AcqRel):
			return errors.Wrapf(ErrInvalidPolicy, "%s cannot use %s", op, pair.Success)
		case op.pureStore() && (pair.Success == Acquire || pair.Success == AcqRel):
			return errors.Wrapf(ErrInvalidPolicy, "%s cannot use %s", op, pair.Success)
		}

		if !op.hasFailure() {
			continue
		}
		if pair.Failure == Release || pair.Failure == AcqRel {
			return errors.Wrapf(ErrInvalidPolicy, "%s failure cannot use %s", op, pair.Failure)
		}
		if pair.Failure.acquires() && !pair.Success.acquires() {
			return errors.Wrapf(ErrInvalidPolicy, "%s failure %s is stronger than success %s", op, pair.Failure, pair.Success)
		}
		if pair.Failure == SeqCst && pair.Success != SeqCst {
			return errors.Wrapf(ErrInvalidPolicy, "%s failure %s is stronger than success %s", op, pair.Failure, pair.Success)
		}
	}
	return nil
}

// SatisfiedBy reports whether running every operation with o meets the table.
func (p Policy) SatisfiedBy(o Ordering) bool {
	for op := Op(0); op < opCount; op++ {
		pair := p.pairs[op]
		if !o.AtLeast(pair.Success) {
			return false
		}
		if op.hasFailure() && !o.AtLeast(pair.Failure) {
			return false
		}
	}
	return true
}

// pairDoc is the on-disk form of one row.
type pairDoc struct {
	Success Ordering  `yaml:"success" json:"success"`
	Failure *Ordering `yaml:"failure,omitempty" json:"failure,omitempty"`
}

// UnmarshalYAML accepts either a mapping or a bare ordering name.
func (d *pairDoc) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		return d.Success.UnmarshalText([]byte(name))
	}

	type plain pairDoc
	return unmarshal((*plain)(d))
}

// UnmarshalJSON accepts the same two forms as UnmarshalYAML.
func (d *pairDoc) UnmarshalJSON(data []byte) error {
	var name string
	if err := atom.JsonUnmarshal(data, &name); err == nil {
		return d.Success.UnmarshalText([]byte(name))
	}

	type plain pairDoc
	return atom.JsonUnmarshal(data, (*plain)(d))
}

func (p Policy) document() map[string]pairDoc {
	doc := make(map[string]pairDoc, opCount)
	for op := Op(0); op < opCount; op++ {
		pair := p.pairs[op]
		row := pairDoc{Success: pair.Success}
		if op.hasFailure() {
			failure := pair.Failure
			row.Failure = &failure
		}
		doc[op.String()] = row
	}
	return doc
}

func (p Policy) overlay(doc map[string]pairDoc) (Policy, error) {
	for name, row := range doc {
		op, err := ParseOp(name)
		if err != nil {
			return p, err
		}
		pair := Pair{Success: row.Success, Failure: p.pairs[op].Failure}
		if row.Failure != nil {
			pair.Failure = *row.Failure
		}
		p.pairs[op] = pair
	}
	return p, nil
}

func (p Policy) MarshalJSON() ([]byte, error) {
	return atom.JsonMarshal(p.document())
}

func (p Policy) MarshalYAML() (interface{}, error) {
	return p.document(), nil
}

// Rows renders the table sorted by operation name, for logs.
func (p Policy) Rows() []string {
	rows := make([]string, 0, opCount)
	for op := Op(0); op < opCount; op++ {
		rows = append(rows, op.String()+"="+p.pairs[op].String())
	}
	sort.Strings(rows)
	return rows
}

// LoadFile overlays the rows found in a YAML or JSON file on the default
// table and validates the result.
func LoadFile(path string) (Policy, error) {
	doc := make(map[string]pairDoc)

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = atom.Yaml(path, &doc)
	case ".json":
		err = atom.Json(path, &doc)
	default:
		return Policy{}, errors.Errorf("ordering: unsupported policy file %q", path)
	}
	if err != nil {
		return Policy{}, errors.Wrapf(err, "ordering: read %s", path)
	}

	policy, err := Default().overlay(doc)
	if err != nil {
		return Policy{}, errors.Wrapf(err, "ordering: %s", path)
	}
	if err = policy.Validate(); err != nil {
		return Policy{}, errors.Wrapf(err, "ordering: %s", path)
	}
	return policy, nil
}
