package transfuse

// BlockDiffResult is the difference between the blocks extracted from two
// revisions of the same source document, keyed by body content hash
// rather than by block id (ids/ordinals shift when content is inserted
// or removed upstream of a block; the content hash does not).
// Grounded on gotlai/diff.go's DiffResult, repointed from TextNode at
// ExtractedBlock.
type BlockDiffResult struct {
	Added     []ExtractedBlock
	Removed   []ExtractedBlock
	Unchanged []ExtractedBlock
	Modified  []ModifiedBlock
}

// ModifiedBlock pairs an old and new block the matcher judged to be the
// same logical unit with changed content (same ordinal).
type ModifiedBlock struct {
	Old ExtractedBlock
	New ExtractedBlock
}

// Stats returns summary counts for the diff.
func (d *BlockDiffResult) Stats() BlockDiffStats {
	return BlockDiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// BlockDiffStats contains summary statistics for a BlockDiffResult.
type BlockDiffStats struct {
	Added     int
	Removed   int
	Unchanged int
	Modified  int
}

// HasChanges reports whether the diff contains any additions, removals,
// or modifications.
func (d *BlockDiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// NeedsTranslation returns the blocks a re-extraction run should send to
// the translator again: newly added blocks and the new half of modified
// pairs. Unchanged blocks can reuse their prior translation.
func (d *BlockDiffResult) NeedsTranslation() []ExtractedBlock {
	result := make([]ExtractedBlock, 0, len(d.Added)+len(d.Modified))
	result = append(result, d.Added...)
	for _, m := range d.Modified {
		result = append(result, m.New)
	}
	return result
}

// DiffBlocks compares the blocks of two extraction runs over revised
// source documents, keyed by the SHA-256 of each block's trimmed body.
func DiffBlocks(oldBlocks, newBlocks []ExtractedBlock) *BlockDiffResult {
	result := &BlockDiffResult{}

	oldByHash := make(map[string]ExtractedBlock, len(oldBlocks))
	newByHash := make(map[string]ExtractedBlock, len(newBlocks))
	for _, b := range oldBlocks {
		oldByHash[hashBlockBody(b.Body)] = b
	}
	for _, b := range newBlocks {
		newByHash[hashBlockBody(b.Body)] = b
	}

	for h, old := range oldByHash {
		if _, ok := newByHash[h]; ok {
			result.Unchanged = append(result.Unchanged, old)
		} else {
			result.Removed = append(result.Removed, old)
		}
	}
	for h, nw := range newByHash {
		if _, ok := oldByHash[h]; !ok {
			result.Added = append(result.Added, nw)
		}
	}

	return result
}

// DiffBlocksWithOrdinal refines DiffBlocks by matching removed/added
// blocks that share the same ordinal position into Modified pairs,
// mirroring gotlai/diff.go's DiffContentWithContext ID-matching pass.
func DiffBlocksWithOrdinal(oldBlocks, newBlocks []ExtractedBlock) *BlockDiffResult {
	result := DiffBlocks(oldBlocks, newBlocks)

	if len(result.Added) == 0 || len(result.Removed) == 0 {
		return result
	}

	matchedAdded := make(map[int]bool)
	matchedRemoved := make(map[int]bool)

	for ri, removed := range result.Removed {
		for ai, added := range result.Added {
			if matchedAdded[ai] {
				continue
			}
			if removed.Ordinal == added.Ordinal {
				result.Modified = append(result.Modified, ModifiedBlock{Old: removed, New: added})
				matchedAdded[ai] = true
				matchedRemoved[ri] = true
				break
			}
		}
	}

	newAdded := result.Added[:0:0]
	for i, b := range result.Added {
		if !matchedAdded[i] {
			newAdded = append(newAdded, b)
		}
	}
	result.Added = newAdded

	newRemoved := result.Removed[:0:0]
	for i, b := range result.Removed {
		if !matchedRemoved[i] {
			newRemoved = append(newRemoved, b)
		}
	}
	result.Removed = newRemoved

	return result
}
