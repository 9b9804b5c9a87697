package ccamc

import "fmt"

// VerifyIssue is one integrity problem found by Verify, scoped to the game,
// blob, or index entry it concerns. Verify never mutates the store: every
// problem found is reported, never repaired (spec §4.13, §7).
type VerifyIssue struct {
	GameID  string
	Message string
}

func (i VerifyIssue) String() string {
	if i.GameID == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.GameID, i.Message)
}

// VerifyReport is the full result of a Verify pass.
type VerifyReport struct {
	GamesChecked int
	Issues       []VerifyIssue
}

// OK reports whether the store passed every check.
func (r *VerifyReport) OK() bool { return len(r.Issues) == 0 }

func (r *VerifyReport) add(gameID, format string, args ...any) {
	r.Issues = append(r.Issues, VerifyIssue{GameID: gameID, Message: fmt.Sprintf(format, args...)})
}

// Verify walks every registered game's chain back to a sentinel terminator,
// confirms every blob hash re-derives from its own bytes, confirms the pack
// index agrees with the pack's actual blob offsets, and confirms every
// metadata hash and source hash referenced by the registry resolves to a
// record that exists (spec §4.13).
func (s *Store) Verify() *VerifyReport {
	report := &VerifyReport{}

	s.verifyPackIndex(report)
	s.verifyPackHashes(report)

	for _, id := range s.Registry.GameIDs() {
		report.GamesChecked++
		entry, _ := s.Registry.Get(id)
		s.verifyGame(id, entry, report)
	}
	return report
}

func (s *Store) verifyPackHashes(report *VerifyReport) {
	for _, h := range s.Pack.InsertionOrder() {
		b, ok := s.Pack.Get(h)
		if !ok {
			report.add("", "pack: insertion-order hash %s missing from blob map", h)
			continue
		}
		if b.Hash() != h {
			report.add("", "pack: blob stored under %s actually hashes to %s", h, b.Hash())
		}
		if b.Parent != InitBlobHash() && b.Parent != OrphanParentHash() && b.Parent != 0 {
			if _, ok := s.Pack.Get(b.Parent); !ok {
				report.add("", "pack: blob %s has unresolvable parent %s", h, b.Parent)
			}
		}
	}
}

// verifyPackIndex confirms every pack blob resolves through a freshly built
// index to the offset its position in insertion order implies.
func (s *Store) verifyPackIndex(report *VerifyReport) {
	order := s.Pack.InsertionOrder()
	idx := BuildPackIndex(order)
	for i, h := range order {
		off, ok := idx.Lookup(h)
		if !ok {
			report.add("", "index: blob %s not found in rebuilt index", h)
			continue
		}
		if want := uint64(packHeaderSize + i*BlobSize); off != want {
			report.add("", "index: offset mismatch for blob %s: got %d, want %d", h, off, want)
		}
	}
}

func (s *Store) verifyGame(gameID string, entry *RegistryEntry, report *VerifyReport) {
	meta, ok := s.Metadata.Get(entry.MetaHash)
	if !ok {
		report.add(gameID, "metadata hash %s does not resolve", entry.MetaHash)
		return
	}
	if meta.FinalMoveHash != entry.FinalHash {
		report.add(gameID, "registry final hash %s does not match metadata final hash %s", entry.FinalHash, meta.FinalMoveHash)
	}
	s.verifyChain(gameID, entry.FinalHash, report)
	s.verifyMetadataRefs(gameID, meta, report)

	if entry.SourceHash != 0 {
		if _, ok := s.Sources.Get(entry.SourceHash); !ok {
			report.add(gameID, "source hash %s does not resolve", entry.SourceHash)
		}
	}
}

// verifyChain confirms finalHash's parent chain reaches a sentinel
// terminator without a missing link.
func (s *Store) verifyChain(gameID string, finalHash Hash64, report *VerifyReport) {
	seen := make(map[Hash64]bool)
	current := finalHash
	for current != InitBlobHash() && current != OrphanParentHash() && current != 0 {
		if seen[current] {
			report.add(gameID, "blob chain contains a cycle at %s", current)
			return
		}
		seen[current] = true
		b, ok := s.Pack.Get(current)
		if !ok {
			report.add(gameID, "blob chain broken: %s not found in pack", current)
			return
		}
		current = b.Parent
	}
}

// verifyMetadataRefs checks that every string, STR tag, extra tag, and
// nested variation hash a game's metadata references actually resolves.
func (s *Store) verifyMetadataRefs(gameID string, meta *GameMetadata, report *VerifyReport) {
	for id, h := range meta.STRTags {
		if _, ok := s.Strings.Get(h); !ok {
			name, _ := STRTagName(id)
			report.add(gameID, "STR tag %q value hash %s does not resolve", name, h)
		}
	}
	for nameHash, valueHash := range meta.ExtraTags {
		if _, ok := s.Strings.Get(nameHash); !ok {
			report.add(gameID, "extra tag name hash %s does not resolve", nameHash)
		}
		if _, ok := s.Strings.Get(valueHash); !ok {
			report.add(gameID, "extra tag value hash %s does not resolve", valueHash)
		}
	}
	for _, rec := range meta.Annotations {
		switch rec.Type {
		case AnnotationComment:
			if _, ok := s.Strings.Get(rec.TextHash); !ok {
				report.add(gameID, "annotation at move %d: comment text hash %s does not resolve", rec.MoveIndex, rec.TextHash)
			}
		case AnnotationVariation:
			varMeta, ok := s.Metadata.Get(rec.VariationMetaHash)
			if !ok {
				report.add(gameID, "annotation at move %d: variation metadata hash %s does not resolve", rec.MoveIndex, rec.VariationMetaHash)
				continue
			}
			if varMeta.FinalMoveHash != rec.VariationMoveHash {
				report.add(gameID, "annotation at move %d: variation final hash mismatch", rec.MoveIndex)
			}
			s.verifyChain(gameID, rec.VariationMoveHash, report)
			s.verifyMetadataRefs(gameID, varMeta, report)
		}
	}
}
