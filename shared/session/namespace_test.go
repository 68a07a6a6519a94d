package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nsbox/userns/shared/session"
)

func TestVectorOrderUserFirstMountLast(t *testing.T) {
	if len(session.Vector) != 7 {
		t.Fatalf("expected 7 namespace kinds, got %d", len(session.Vector))
	}

	assert.Equal(t, session.KindUser, session.Vector[0].Kind)
	assert.Equal(t, session.KindMount, session.Vector[len(session.Vector)-1].Kind)
}

func TestVectorProcNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, ns := range session.Vector {
		if seen[ns.ProcName] {
			t.Fatalf("duplicate proc name %q", ns.ProcName)
		}
		seen[ns.ProcName] = true
	}
}
