package value

// BlockIterator maps global column indices onto consecutive blocks.
//
// Each call to Next closes the current block and opens one of the given
// size directly after it:
//
//	var block BlockIterator
//	for block.Next(n); i < len(sparse) && block.Ok(sparse[i]); i++ {
//	    local := block.Get(sparse[i])
//	}
type BlockIterator struct {
	begin int
	end   int
}

// Next advances to the block of the given size following the current one.
func (b *BlockIterator) Next(size int) *BlockIterator {
	b.begin = b.end
	b.end += size
	return b
}

// NonEmpty reports whether the current block has at least one column.
func (b *BlockIterator) NonEmpty() bool { return b.end != b.begin }

// Ok reports whether global index i lies before the end of the block.
// Indices are consumed in increasing order, so i >= Begin is implied.
func (b *BlockIterator) Ok(i uint32) bool { return int(i) < b.end }

// Get returns the block-local offset of global index i.
func (b *BlockIterator) Get(i uint32) int { return int(i) - b.begin }

// Begin returns the first global index of the block.
func (b *BlockIterator) Begin() int { return b.begin }

// End returns one past the last global index of the block.
func (b *BlockIterator) End() int { return b.end }
