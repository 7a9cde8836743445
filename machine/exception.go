package machine

var excNames = [16]string{
	2:  "NMI",
	3:  "Hard Fault",
	4:  "Memory Management Fault",
	5:  "Bus Fault",
	6:  "Usage Fault",
	11: "SVCall",
	12: "Debug Monitor",
	14: "PendSV",
	15: "SysTick",
}

//go:nosplit
func Exception(vect, pc, lr, psr, sp uint32) {
	var buf [8]byte
	name := excNames[vect&15]
	if name == "" {
		name = "Reserved"
	}
	DefaultWrite(0, []byte("Unhandled "))
	DefaultWrite(0, []byte(name))
	DefaultWrite(0, []byte(" Exception"))

	DefaultWrite(0, []byte("\nvect 0x"))
	DefaultWrite(0, itoa(buf[:], vect))
	DefaultWrite(0, []byte("\npc   0x"))
	DefaultWrite(0, itoa(buf[:], pc))
	DefaultWrite(0, []byte("\nlr   0x"))
	DefaultWrite(0, itoa(buf[:], lr))
	DefaultWrite(0, []byte("\npsr  0x"))
	DefaultWrite(0, itoa(buf[:], psr))
	DefaultWrite(0, []byte("\nsp   0x"))
	DefaultWrite(0, itoa(buf[:], sp))
	DefaultWrite(0, []byte("\n"))
}

//go:nosplit
func itoa(buf []byte, num uint32) []byte {
	for i := range 8 {
		char := byte(num>>(28-(4*i))) & 0xf
		if char > 9 {
			char += 'a' - 10
		} else {
			char += '0'
		}
		buf[i] = char
	}
	return buf
}
