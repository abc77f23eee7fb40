package session

// PartialFlushSize is how many runes WriteTrainFilePartial writes.
const PartialFlushSize = 100

// PartialFlushThreshold is the buffer length past which a frame writes
// out the oldest text. What stays buffered can still be deleted.
const PartialFlushThreshold = 2 * PartialFlushSize

// TrainingBuffer holds text written since the last flush. It counts in
// runes so a flush never splits a character.
type TrainingBuffer struct {
	runes []rune
}

func (b *TrainingBuffer) Append(text string) {
	b.runes = append(b.runes, []rune(text)...)
}

// Delete drops the last n runes, or everything when fewer are buffered.
func (b *TrainingBuffer) Delete(n int) {
	if n <= 0 {
		return
	}
	if n > len(b.runes) {
		n = len(b.runes)
	}
	b.runes = b.runes[:len(b.runes)-n]
}

func (b *TrainingBuffer) Len() int { return len(b.runes) }

func (b *TrainingBuffer) String() string { return string(b.runes) }

// TakeAll returns the whole buffer and empties it.
func (b *TrainingBuffer) TakeAll() string {
	out := string(b.runes)
	b.runes = b.runes[:0]
	return out
}

// TakePartial returns the first PartialFlushSize runes and keeps the rest.
func (b *TrainingBuffer) TakePartial() string {
	n := PartialFlushSize
	if n > len(b.runes) {
		n = len(b.runes)
	}
	out := string(b.runes[:n])
	b.runes = append(b.runes[:0], b.runes[n:]...)
	return out
}
