package dma

import "github.com/clktmr/stm32l4/mcu/cpu"

// Request selects which peripheral's request line drives a channel. The
// value is written into the channel's field of the cselr register. Which
// (target, channel, request) triples exist is fixed by the silicon, see
// RM0394 tables 41 and 42.
type Request uint8

// A Target is one direction of one peripheral instance that can terminate a
// DMA transfer, e.g. the transmit side of USART2. Target values carry no
// state; they exist to route a [Channel] to the right peripheral and are
// moved through a [Transfer] alongside the channel and the buffer.
//
// A peripheral that wants to be a DMA endpoint provides a Target per
// direction with the request map of its part family.
type Target interface {
	// Addr returns the bus address of the data register the transfer
	// reads from or writes to. The peripheral address is never
	// incremented during a transfer.
	Addr() cpu.Addr

	// Request returns the request line that routes ch to this target, or
	// ok == false if no such route exists in the silicon.
	Request(ch *Channel) (req Request, ok bool)
}

// Route is one (controller, channel, request line) triple from the request
// map, RM0394 tables 41 and 42. Peripheral packages enumerate their routes
// as [Routes] literals; the tables are silicon facts, not policy.
type Route struct {
	Ctl *Controller
	Num int // 1-based channel number
	Req Request
}

type Routes []Route

// Find implements the lookup behind [Target.Request].
func (rs Routes) Find(ch *Channel) (Request, bool) {
	for _, r := range rs {
		if ch.Is(r.Ctl, r.Num) {
			return r.Req, true
		}
	}
	return 0, false
}
