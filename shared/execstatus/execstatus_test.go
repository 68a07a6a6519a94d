package execstatus_test

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nsbox/userns/shared/execstatus"
)

func TestFromErrorNilIsZero(t *testing.T) {
	assert.Equal(t, 0, execstatus.FromError(nil))
}

func TestFromErrorNonExitErrorIsOne(t *testing.T) {
	assert.Equal(t, 1, execstatus.FromError(exec.ErrNotFound))
}

func TestFromWaitStatusNonWaitStatusIsOne(t *testing.T) {
	assert.Equal(t, 1, execstatus.FromWaitStatus("not a wait status"))
}
