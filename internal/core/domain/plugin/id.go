package plugindomain

import (
	"encoding/binary"
	"fmt"
	"regexp"

	"github.com/cespare/xxhash/v2"
)

// ID is the content-derived identity of a managed plugin. It names both the
// state entry and the plugin directory.
type ID string

var idPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

// ParseID accepts exactly the text produced by Spec.ID: 16 lowercase hex digits.
// Anything else could name a path outside the plugins directory.
func ParseID(s string) (ID, error) {
	if !idPattern.MatchString(s) {
		return "", fmt.Errorf("invalid plugin id %q", s)
	}
	return ID(s), nil
}

// String returns the id as hex text
func (id ID) String() string {
	return string(id)
}

// ID hashes the source kind, source name and build command. Each field is
// length-prefixed so that no two distinct triples share an encoding. An
// unset source counts as git, matching configuration defaults.
func (s Spec) ID() ID {
	from := s.From
	if from == "" {
		from = SourceGit
	}

	d := xxhash.New()
	for _, field := range []string{string(from), s.Name, s.Build} {
		var size [8]byte
		binary.BigEndian.PutUint64(size[:], uint64(len(field)))
		d.Write(size[:])
		d.WriteString(field)
	}
	return ID(fmt.Sprintf("%016x", d.Sum64()))
}
