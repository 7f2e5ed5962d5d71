package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListSeparatesFatalsAndWarnings(t *testing.T) {
	var l List
	l.Warnf(Line{Line: 3}, KindCompatibility, "feedback cycle detected")
	l.Fatalf(BlockPort{BlockID: "b1", PortID: "in"}, KindStructural, "missing required input")

	assert.True(t, l.HasFatal())
	assert.Len(t, l.Fatals(), 1)
	assert.Len(t, l.Warnings(), 1)
	assert.Len(t, l.All(), 2)
}

func TestNoFatalsWhenOnlyWarnings(t *testing.T) {
	var l List
	l.Warnf(Line{Line: 1}, KindResource, "near program-length limit")
	assert.False(t, l.HasFatal())
}
