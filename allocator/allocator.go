package allocator

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/QuangTung97/pframe/frame"
)

// Strategy tracks which page numbers of an initialized range are free.
//
// Alloc never returns a page outside the range passed to Init and never returns
// a page that is currently allocated. Dealloc of a page that is not currently
// allocated is a fatal fault (see frame.Fault).
type Strategy interface {
	// Init hands the range [low, high) to the strategy. An empty or inverted
	// range yields a strategy that always reports exhaustion.
	Init(low, high frame.PageNum)

	// Alloc returns a free page and marks it allocated, or false when the
	// pool is exhausted.
	Alloc() (frame.PageNum, bool)

	// Dealloc marks an allocated page free again.
	Dealloc(ppn frame.PageNum)

	// Remaining returns the number of free pages.
	Remaining() uint64

	// Visible dumps the internal state in a human readable form.
	Visible(w io.Writer)
}

// Kind selects one of the strategy implementations.
type Kind int

const (
	// KindStack ...
	KindStack Kind = iota
	// KindBitmap ...
	KindBitmap
	// KindLinkedList ...
	KindLinkedList
)

var kindNames = []string{
	KindStack:      "stack",
	KindBitmap:     "bitmap",
	KindLinkedList: "linkedlist",
}

// Kinds returns every strategy kind.
func Kinds() []Kind {
	return []Kind{KindStack, KindBitmap, KindLinkedList}
}

// Valid ...
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(kindNames)
}

// String ...
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind ...
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, errors.Errorf("unknown frame allocator %q (want one of %s)", s, strings.Join(kindNames, ", "))
}

// MarshalText ...
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText ...
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// New returns an empty, uninitialized strategy of the given kind.
func New(kind Kind) Strategy {
	switch kind {
	case KindStack:
		return NewStack()
	case KindBitmap:
		return NewBitmap()
	case KindLinkedList:
		return NewLinkedList()
	default:
		panic(fmt.Sprintf("unknown allocator kind %d", int(kind)))
	}
}

func rangeLen(low, high frame.PageNum) uint64 {
	if high <= low {
		return 0
	}
	return uint64(high - low)
}
