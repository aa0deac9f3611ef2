// Package ordering describes which memory ordering every cell operation uses.
//
// Go's sync/atomic operations are sequentially consistent, so the table is a
// contract rather than a knob: it records the weakest ordering each call-site
// is allowed to rely on, and SatisfiedBy checks that the executing model is at
// least that strong.
package ordering

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Ordering uint8

const (
	Relaxed Ordering = iota
	Acquire
	Release
	AcqRel
	SeqCst
)

var ErrUnknownOrdering = errors.New("unknown memory ordering")

var orderingNames = [...]string{
	Relaxed: "relaxed",
	Acquire: "acquire",
	Release: "release",
	AcqRel:  "acq_rel",
	SeqCst:  "seq_cst",
}

func (o Ordering) String() string {
	if int(o) < len(orderingNames) {
		return orderingNames[o]
	}
	return "ordering(" + strconv.Itoa(int(o)) + ")"
}

func ParseOrdering(name string) (Ordering, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	switch key {
	case "acqrel":
		return AcqRel, nil
	case "seqcst":
		return SeqCst, nil
	}

	for o, n := range orderingNames {
		if n == key {
			return Ordering(o), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownOrdering, "%q", name)
}

// acquires reports whether o orders later accesses after the atomic op.
func (o Ordering) acquires() bool {
	return o == Acquire || o == AcqRel || o == SeqCst
}

// releases reports whether o orders earlier accesses before the atomic op.
func (o Ordering) releases() bool {
	return o == Release || o == AcqRel || o == SeqCst
}

// AtLeast reports whether o provides every guarantee other provides.
func (o Ordering) AtLeast(other Ordering) bool {
	if o == SeqCst {
		return true
	}
	if other == SeqCst {
		return false
	}
	if other.acquires() && !o.acquires() {
		return false
	}
	if other.releases() && !o.releases() {
		return false
	}
	return true
}

func (o Ordering) MarshalText() ([]byte, error) {
	if int(o) >= len(orderingNames) {
		return nil, errors.Wrapf(ErrUnknownOrdering, "%d", o)
	}
	return []byte(o.String()), nil
}

func (o *Ordering) UnmarshalText(text []byte) error {
	parsed, err := ParseOrdering(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

func (o Ordering) MarshalYAML() (interface{}, error) {
	text, err := o.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

func (o *Ordering) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	return o.UnmarshalText([]byte(name))
}
