package packet

// Checksum computes the fault-detection value of p: the sum of seqnum,
// acknum and every payload byte, in wrapping 32-bit arithmetic. The stored
// checksum field is not part of the sum.
//
// The additive sum detects the corruptions injected by the channel (a
// rewritten first payload byte, a sentinel seqnum or acknum) but is weak in
// general. Two compensating changes, or reordered payload bytes, go
// unnoticed.
func Checksum(p Packet) int32 {
	sum := p.Seqnum + p.Acknum
	for _, b := range p.Payload {
		sum += int32(b)
	}

	return sum
}

// Verify tells if the stored checksum matches the recomputed one.
func Verify(p Packet) bool {
	return Checksum(p) == p.Checksum
}

// Seal stores the checksum of p into p.
func Seal(p *Packet) {
	p.Checksum = Checksum(*p)
}
