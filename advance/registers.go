package advance

import "github.com/handheld-retro/advance/addr"

// WriteIO dispatches a guest write to a byte address in the I/O region,
// intercepting the registers the core itself gives special meaning to
// (IRQ, timer control, SIO) before falling through to the raw register
// bank, mirroring the teacher's MMU.Write special-casing of DIV/TIMA/SB/SC
// ahead of its default "other IO registers" store.
func (m *Machine) WriteIO(address uint32, value uint16) {
	switch address {
	case addr.IE:
		m.WriteIE(value)
		return
	case addr.IF:
		m.WriteIF(value)
		return
	case addr.IME:
		m.WriteIME(value)
		return
	case addr.SIOCNT:
		m.sio.WriteCNT(value)
		return
	case addr.SIODATA:
		m.sio.WriteData(value)
		return
	}

	for t := 0; t < 4; t++ {
		lo, hi := addr.TimerControlAddr(t)
		if address == lo {
			m.WriteTMCNT_LO(t, value)
			return
		}
		if address == hi {
			m.WriteTMCNT_HI(t, value)
			return
		}
	}

	m.mem.WriteIO(address, value)
}

// ReadIO mirrors WriteIO for reads: the live timer counters are
// materialized lazily, and the IRQ and SIO registers are read from their
// owning units rather than from the raw register bank.
func (m *Machine) ReadIO(address uint32) uint16 {
	switch address {
	case addr.IE:
		return m.irqc.IE
	case addr.IF:
		return m.irqc.IF
	case addr.IME:
		return m.irqc.IME
	case addr.SIOCNT:
		return m.sio.ReadCNT()
	case addr.SIODATA:
		return m.sio.ReadData()
	}

	for t := 0; t < 4; t++ {
		lo, _ := addr.TimerControlAddr(t)
		if address == lo {
			return m.ReadTMCNT_LO(t)
		}
	}

	return m.mem.ReadIO(address)
}
