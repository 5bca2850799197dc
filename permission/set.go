package permission

// setBits is the fixed width of a Set. 256 bits comfortably covers the full
// back-office key enumeration with headroom for future screens.
const setBits = 256

// Set is a 256-bit permission bitmask. The zero value is the empty
// (all-deny) set.
type Set struct {
	A uint64
	B uint64
	C uint64
	D uint64
}

// Has reports whether the given bit is set. Out-of-range bits are false.
func (s Set) Has(bit int) bool {
	if bit < 0 || bit >= setBits {
		return false
	}

	switch {
	case bit < 64:
		return (s.A & (1 << bit)) != 0
	case bit < 128:
		return (s.B & (1 << (bit - 64))) != 0
	case bit < 192:
		return (s.C & (1 << (bit - 128))) != 0
	default:
		return (s.D & (1 << (bit - 192))) != 0
	}
}

// Set sets the given bit. Out-of-range bits are ignored.
func (s *Set) Set(bit int) {
	if bit < 0 || bit >= setBits {
		return
	}

	switch {
	case bit < 64:
		s.A |= (1 << bit)
	case bit < 128:
		s.B |= (1 << (bit - 64))
	case bit < 192:
		s.C |= (1 << (bit - 128))
	default:
		s.D |= (1 << (bit - 192))
	}
}

// Clear clears the given bit.
func (s *Set) Clear(bit int) {
	if bit < 0 || bit >= setBits {
		return
	}

	switch {
	case bit < 64:
		s.A &^= (1 << bit)
	case bit < 128:
		s.B &^= (1 << (bit - 64))
	case bit < 192:
		s.C &^= (1 << (bit - 128))
	default:
		s.D &^= (1 << (bit - 192))
	}
}

// IsEmpty reports whether no bit is set.
func (s Set) IsEmpty() bool {
	return s.A == 0 && s.B == 0 && s.C == 0 && s.D == 0
}
