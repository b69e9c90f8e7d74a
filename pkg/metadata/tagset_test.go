package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueIsBlank(t *testing.T) {
	assert.True(t, Value{}.IsBlank())
	assert.True(t, Value{Text: " \t"}.IsBlank())
	assert.True(t, Value{Picture: &Picture{}}.IsBlank())
	assert.False(t, Value{Text: "x"}.IsBlank())
	assert.False(t, Value{Picture: &Picture{Data: []byte{1}}}.IsBlank())
}

func TestTagSetApplyDoesNotMutate(t *testing.T) {
	base := TagSet{}
	base.Set(Title, "a")
	writes := TagSet{}
	writes.Set(Title, "b")
	writes.Set(Year, "2020")

	out := base.Apply(writes)
	assert.Equal(t, "a", base.Text(Title))
	assert.Equal(t, "b", out.Text(Title))
	assert.Equal(t, "2020", out.Text(Year))
}
