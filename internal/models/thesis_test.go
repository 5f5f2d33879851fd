package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThesisStatusTransitions(t *testing.T) {
	assert.True(t, ThesisStatusPending.CanTransitionTo(ThesisStatusApproved))
	assert.True(t, ThesisStatusPending.CanTransitionTo(ThesisStatusRejected))
	assert.True(t, ThesisStatusApproved.CanTransitionTo(ThesisStatusPublished))

	assert.False(t, ThesisStatusPending.CanTransitionTo(ThesisStatusPublished))
	assert.False(t, ThesisStatusRejected.CanTransitionTo(ThesisStatusApproved))
	assert.False(t, ThesisStatusPublished.CanTransitionTo(ThesisStatusPending))
	assert.False(t, ThesisStatusApproved.CanTransitionTo(ThesisStatusRejected))
}
