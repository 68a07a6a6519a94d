package revert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nsbox/userns/shared/revert"
)

func TestReverterCloneTransfersHooks(t *testing.T) {
	var order []int

	r := revert.New()
	r.Add(func() { order = append(order, 1) })

	clone := r.Clone()
	r.Fail() // No hooks left on r, nothing should happen.
	assert.Empty(t, order)

	clone.Fail()
	assert.Equal(t, []int{1}, order)
}

func TestReverterSuccessSuppressesFail(t *testing.T) {
	ran := false

	r := revert.New()
	r.Add(func() { ran = true })
	r.Success()
	r.Fail()

	assert.False(t, ran)
}
