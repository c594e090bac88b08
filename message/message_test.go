package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestType_String(t *testing.T) {
	tests := []struct {
		typ      Type
		expected string
	}{
		{TypeData, "DATA"},
		{TypeControl, "CONTROL"},
		{TypeState, "STATE"},
		{TypeChannel, "CHANNEL"},
		{Type(99), "UNKNOWN"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, test.typ.String())
	}
}

func TestType_Mask(t *testing.T) {
	assert.Equal(t, uint32(1), TypeData.Mask())
	assert.Equal(t, uint32(2), TypeControl.Mask())
	assert.Equal(t, uint32(4), TypeState.Mask())
	assert.Equal(t, uint32(8), TypeChannel.Mask())
}

func TestMessage_Clone(t *testing.T) {
	m := &Message{Type: TypeData, Seq: 1, Body: []byte("hello")}
	c := m.Clone()

	assert.Equal(t, m.Body, c.Body)
	c.Body[0] = 'H'
	assert.NotEqual(t, m.Body[0], c.Body[0])
}

func TestMessage_Stamp(t *testing.T) {
	m := &Message{}
	assert.Zero(t, m.Timestamp)
	m.Stamp()
	assert.NotZero(t, m.Timestamp)
}
