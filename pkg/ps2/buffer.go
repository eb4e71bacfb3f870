package ps2

// emptyMark on the head index marks the queue empty. head==tail alone
// is ambiguous between empty and full, and the push side cannot spare
// a separate count.
const emptyMark = 0xFF

// buffer is a fixed-capacity ring of scan codes. push runs in the
// clock-edge interrupt; pop and clear run in the polling context and
// must be bracketed by the caller with the clock interrupt masked so a
// push cannot land mid-update.
type buffer struct {
	head  uint8 // index of oldest entry, or emptyMark
	tail  uint8 // index the next push writes
	codes []ScanCode
	diag  Sink
}

func newBuffer(capacity int, diag Sink) *buffer {
	if capacity < 1 {
		capacity = 1
	}
	// Indexes must stay below the empty sentinel.
	if capacity >= emptyMark {
		capacity = emptyMark - 1
	}
	return &buffer{
		head:  emptyMark,
		codes: make([]ScanCode, capacity),
		diag:  diag,
	}
}

// push enqueues a byte from the keyboard. On overflow the oldest unread
// entry is dropped so the freshest traffic wins.
func (b *buffer) push(code ScanCode) {
	n := uint8(len(b.codes))
	next := (b.tail + 1) % n
	if b.head == emptyMark {
		b.head = b.tail
	} else if b.head == b.tail {
		b.diag.BufferOverflow()
		b.head = (b.head + 1) % n
	}
	b.codes[b.tail] = code
	b.tail = next
}

// pop returns the oldest queued code, or None when empty.
func (b *buffer) pop() ScanCode {
	if b.head == emptyMark {
		return None
	}
	code := b.codes[b.head]
	b.head = (b.head + 1) % uint8(len(b.codes))
	if b.head == b.tail {
		b.head = emptyMark
	}
	return code
}

func (b *buffer) clear() {
	b.head = emptyMark
}
