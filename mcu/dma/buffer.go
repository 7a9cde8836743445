package dma

import (
	"unsafe"

	"github.com/clktmr/stm32l4/mcu/cpu"
)

// Word is the set of element types the DMA controller can move in a single
// bus access.
type Word interface {
	~uint8 | ~uint16 | ~uint32
}

// Buffer is the memory side of a transfer. The two implementations are
// [Buf], the safe pinned slice wrapper, and [UnsafeBuf], a raw view for
// composite transfers. While a transfer holds a Buffer the hardware owns the
// memory behind it; the caller gets it back through [Resources].
type Buffer[T Word] interface {
	addr() cpu.Addr
	words() int
}

// Buf wraps a slice whose backing array is pinned, so its address stays
// valid while the hardware holds it.
type Buf[T Word] struct {
	s      []T
	pinner cpu.Pinner
}

// Pin wraps s for use as a DMA buffer. The backing array stays pinned until
// [Buf.Unpin] is called.
func Pin[T Word](s []T) *Buf[T] {
	b := &Buf[T]{s: s}
	cpu.PinSlice(&b.pinner, s)
	return b
}

// MakeBuf allocates a pinned buffer of n words.
func MakeBuf[T Word](n int) *Buf[T] {
	return Pin(make([]T, n))
}

// Slice returns the wrapped slice. Only access it while no transfer holds
// the Buf.
func (b *Buf[T]) Slice() []T {
	return b.s
}

// Unpin releases the backing array. The Buf must not be handed to [Setup]
// afterwards.
func (b *Buf[T]) Unpin() {
	b.pinner.Unpin()
}

func (b *Buf[T]) addr() cpu.Addr {
	return cpu.AddrOfSlice(b.s)
}

func (b *Buf[T]) words() int {
	return len(b.s)
}

// UnsafeBuf is an address+length view on memory owned by someone else. It
// exists for composite transfers where the DMA word size differs from the
// element type of the caller's buffer, e.g. a byte stream fed to the AES
// peripheral in 32 bit words.
//
// The view does not pin anything. Whoever constructs it must guarantee that
// the underlying buffer stays pinned and alive until the transfer resolved.
type UnsafeBuf[T Word] struct {
	a cpu.Addr
	n int
}

// WordView reinterprets p as T-sized words without copying. It panics unless
// len(p) is a multiple of the word size and p is word aligned, so the
// precondition is checked once here instead of at every call site that casts.
func WordView[T Word](p []byte) UnsafeBuf[T] {
	var zero T
	size := unsafe.Sizeof(zero)
	if uintptr(len(p))%size != 0 {
		panic("dma: view length not a multiple of word size")
	}
	a := cpu.AddrOfSlice(p)
	if uintptr(a)%size != 0 {
		panic("dma: unaligned word view")
	}
	return UnsafeBuf[T]{a: a, n: len(p) / int(size)}
}

func (b UnsafeBuf[T]) addr() cpu.Addr {
	return b.a
}

func (b UnsafeBuf[T]) words() int {
	return b.n
}
