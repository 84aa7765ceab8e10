package actor

import (
	"fmt"
	"strconv"
	"strings"
)

// PostCode identifies a scheduler. It carries two logical fields packed into
// a single comparable value: a network-host part (identifies an OS process
// or remote host) and a scheduler-local part (identifies a scheduler within
// that host). Two PostCodes sharing a network-host part are co-located in
// the same process.
type PostCode struct {
	Host      string
	Scheduler string
}

// NullPostCode is the empty PostCode.
var NullPostCode = PostCode{}

// IsNull reports whether p is the empty PostCode.
func (p PostCode) IsNull() bool {
	return p == NullPostCode
}

// SameHost reports whether p and other share a network-host part, i.e. are
// co-located in the same OS process.
func (p PostCode) SameHost(other PostCode) bool {
	return p.Host == other.Host
}

// String renders the PostCode as "host/scheduler".
func (p PostCode) String() string {
	return p.Host + "/" + p.Scheduler
}

// NewPostCode builds a PostCode from a host identifier and a scheduler index,
// the scheduler part rendered as the index's decimal string (ports 24721..N
// style addressing is a convention layered on top in internal/runtime).
func NewPostCode(host string, index int) PostCode {
	return PostCode{Host: host, Scheduler: strconv.Itoa(index)}
}

// Box is a 64-bit identifier unique within a scheduler for the lifetime of
// that scheduler; it keys a scheduler's actor directory.
type Box uint64

// Address identifies an actor globally: a (PostCode, Box) pair.
type Address struct {
	PostCode PostCode
	Box      Box
}

// NullAddress is the sentinel address: empty PostCode, zero Box.
var NullAddress = Address{}

// IsNull reports whether a is the null address.
func (a Address) IsNull() bool {
	return a == NullAddress
}

// String renders the Address for logs and tests as "postcode@box".
func (a Address) String() string {
	return fmt.Sprintf("%s@%d", a.PostCode, a.Box)
}

// ParseAddress parses the output of Address.String, used in tests and
// debug tooling.
func ParseAddress(s string) (Address, error) {
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return Address{}, fmt.Errorf("actor: malformed address %q: missing '@'", s)
	}

	box, err := strconv.ParseUint(s[at+1:], 10, 64)
	if err != nil {
		return Address{}, fmt.Errorf("actor: malformed address %q: %w", s, err)
	}

	slash := strings.LastIndex(s[:at], "/")
	if slash < 0 {
		return Address{}, fmt.Errorf("actor: malformed address %q: missing postcode separator", s)
	}

	return Address{
		PostCode: PostCode{Host: s[:slash], Scheduler: s[slash+1 : at]},
		Box:      Box(box),
	}, nil
}
