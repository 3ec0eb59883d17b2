package quire

import "fmt"

// Policy selects how strictly Load validates its input.
type Policy uint8

const (
	// Verify rejects any integrity or consistency failure. It is the zero
	// value, so an unset Policy is strict.
	Verify Policy = iota
	// Skip decodes best-effort: checksums are not enforced and indices that
	// do not resolve are recorded as Unresolved instead of failing.
	Skip
)

func (p Policy) String() string {
	switch p {
	case Verify:
		return "verify"
	case Skip:
		return "skip"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

func (p Policy) valid() bool {
	return p == Verify || p == Skip
}

// ParsePolicy converts "verify" or "skip" to a Policy. The empty string
// yields Verify.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "verify":
		return Verify, nil
	case "skip":
		return Skip, nil
	default:
		return Verify, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

func (p Policy) MarshalText() ([]byte, error) {
	if !p.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPolicy, uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(b []byte) error {
	v, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
