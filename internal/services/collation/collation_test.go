package collation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare("営業部", "営業部"))
	assert.Negative(t, Compare("alpha", "beta"))
	assert.Positive(t, Compare("beta", "alpha"))
}

func TestSortedDoesNotMutateInput(t *testing.T) {
	in := []string{"c", "a", "b"}
	out := Sorted(in)

	assert.Equal(t, []string{"a", "b", "c"}, out)
	assert.Equal(t, []string{"c", "a", "b"}, in)
}

func TestSortDesc(t *testing.T) {
	values := []string{"b", "c", "a"}
	SortDesc(values)
	assert.Equal(t, []string{"c", "b", "a"}, values)
}

func TestSortKana(t *testing.T) {
	values := []string{"さとう", "あべ", "かとう"}
	Sort(values)
	assert.Equal(t, []string{"あべ", "かとう", "さとう"}, values)
}
