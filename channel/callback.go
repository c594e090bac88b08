package channel

import (
	tllerrors "github.com/Diego2la/tll/errors"
	"github.com/Diego2la/tll/message"
)

// CallbackAdd subscribes fn to messages whose type bit intersects mask.
// Re-adding the same (fn, user) pair ORs the new mask into the existing
// one instead of creating a second registration.
func (c *Channel) CallbackAdd(fn CallbackFunc, user any, mask uint32) {
	k := keyFor(fn, user)
	e, ok := c.entries[k]
	if !ok {
		e = &entry{fn: fn, user: user}
		c.entries[k] = e
	}
	e.mask |= mask

	if mask&dataBit != 0 && !e.inData {
		c.dataCallbacks = append(c.dataCallbacks, e)
		e.inData = true
	}
	if rest := mask &^ dataBit; rest != 0 && !e.inGeneral {
		c.generalCallbacks = append(c.generalCallbacks, e)
		e.inGeneral = true
	}
}

// CallbackDel clears mask's bits from the (fn, user) pair's registration.
// Once all bits are cleared the pair is fully removed. Returns NotFound if
// no such pair is registered.
func (c *Channel) CallbackDel(fn CallbackFunc, user any, mask uint32) error {
	k := keyFor(fn, user)
	e, ok := c.entries[k]
	if !ok {
		return tllerrors.New(tllerrors.NotFound, c.name, "CallbackDel", "no callback registered for this (fn, user) pair")
	}
	e.mask &^= mask

	if e.mask&dataBit == 0 && e.inData && c.dataEmitDepth == 0 {
		c.compactData()
	}
	if e.mask&^dataBit == 0 && e.inGeneral && c.generalEmitDepth == 0 {
		c.compactGeneral()
	}
	if e.mask == 0 {
		delete(c.entries, k)
	}
	return nil
}

// emit fans a message out to every live subscriber whose mask intersects
// the message's type bit. Iteration captures the array length up front
// (a "stable-length scan") so a callback adding entries mid-fan-out never
// grows the set it is iterating, and a callback deleting entries only
// tombstones them (clears the relevant mask bit) until the outermost emit
// for this array finishes, at which point a compaction pass drops them.
func (c *Channel) emit(typ message.Type, msg *message.Message) {
	bit := typ.Mask()
	if typ == message.TypeData {
		c.dataEmitDepth++
		n := len(c.dataCallbacks)
		for i := 0; i < n && i < len(c.dataCallbacks); i++ {
			e := c.dataCallbacks[i]
			if e.mask&bit == 0 {
				continue
			}
			e.fn(c, msg, e.user)
		}
		c.dataEmitDepth--
		if c.dataEmitDepth == 0 {
			c.compactData()
		}
		return
	}

	c.generalEmitDepth++
	n := len(c.generalCallbacks)
	for i := 0; i < n && i < len(c.generalCallbacks); i++ {
		e := c.generalCallbacks[i]
		if e.mask&bit == 0 {
			continue
		}
		e.fn(c, msg, e.user)
	}
	c.generalEmitDepth--
	if c.generalEmitDepth == 0 {
		c.compactGeneral()
	}
}

func (c *Channel) compactData() {
	out := c.dataCallbacks[:0]
	for _, e := range c.dataCallbacks {
		if e.mask&dataBit != 0 {
			out = append(out, e)
		} else {
			e.inData = false
		}
	}
	c.dataCallbacks = out
}

func (c *Channel) compactGeneral() {
	out := c.generalCallbacks[:0]
	for _, e := range c.generalCallbacks {
		if e.mask&^dataBit != 0 {
			out = append(out, e)
		} else {
			e.inGeneral = false
		}
	}
	c.generalCallbacks = out
}
