package itunesdbutil

import "testing"

func buildPlayCountsFile(tag string, entryLen uint32, entries ...[3]uint32) []byte {
	buf := make([]byte, 16)
	copy(buf, tag)
	putUint32(buf, 4, 16)
	putUint32(buf, 8, entryLen)
	putUint32(buf, 12, uint32(len(entries)))

	for _, e := range entries {
		entry := make([]byte, entryLen)
		putUint32(entry, 0, e[0])
		putUint32(entry, 4, e[1])
		putUint32(entry, 8, e[2])
		buf = append(buf, entry...)
	}
	return buf
}

func TestParsePlayCounts(t *testing.T) {
	data := buildPlayCountsFile(TagPlayCounts, 12,
		[3]uint32{3, 1000, 0},
		[3]uint32{7, 2000, 42},
	)

	entries, err := ParsePlayCounts(data)
	if err != nil {
		t.Fatalf("ParsePlayCounts failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].PlayCount != 3 || entries[0].LastPlayed != 1000 {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
	if entries[1].PlayCount != 7 || entries[1].Bookmark != 42 {
		t.Errorf("unexpected second entry %+v", entries[1])
	}
}

func TestParsePlayCountsWideStride(t *testing.T) {
	// Extra trailing fields per entry are opaque and skipped via the stride.
	data := buildPlayCountsFile(TagPlayCounts, 28,
		[3]uint32{5, 100, 0},
		[3]uint32{9, 200, 0},
	)

	entries, err := ParsePlayCounts(data)
	if err != nil {
		t.Fatalf("ParsePlayCounts failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].PlayCount != 5 || entries[1].PlayCount != 9 {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestParsePlayCountsTruncated(t *testing.T) {
	data := buildPlayCountsFile(TagPlayCounts, 12,
		[3]uint32{1, 0, 0},
		[3]uint32{2, 0, 0},
		[3]uint32{3, 0, 0},
	)
	// Cut into the last entry; the sequence truncates without error.
	data = data[:len(data)-4]

	entries, err := ParsePlayCounts(data)
	if err != nil {
		t.Fatalf("ParsePlayCounts failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after truncation, got %d", len(entries))
	}
}

func TestParsePlayCountsWrongTag(t *testing.T) {
	data := buildPlayCountsFile("mhxx", 12, [3]uint32{1, 0, 0})

	entries, err := ParsePlayCounts(data)
	if err == nil {
		t.Fatal("expected error for wrong tag")
	}
	if entries != nil {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestParsePlayCountsZeroStride(t *testing.T) {
	buf := make([]byte, 16)
	copy(buf, TagPlayCounts)
	putUint32(buf, 4, 16)
	putUint32(buf, 12, 5)

	if _, err := ParsePlayCounts(buf); err == nil {
		t.Fatal("expected error for zero entry stride")
	}
}

func TestParsePlayCountsShortBuffer(t *testing.T) {
	entries, err := ParsePlayCounts([]byte("mhdp"))
	if err != nil {
		t.Fatalf("short buffer should not fail: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestParsePlayCountsNilBuffer(t *testing.T) {
	entries, err := ParsePlayCounts(nil)
	if err != nil {
		t.Fatalf("nil buffer should not fail: %v", err)
	}
	if entries != nil {
		t.Errorf("expected nil entries, got %v", entries)
	}
}

func TestParsePlayCountsDeclaredCountBeyondData(t *testing.T) {
	data := buildPlayCountsFile(TagPlayCounts, 12, [3]uint32{4, 0, 0})
	// Claim more entries than the buffer holds.
	putUint32(data, 12, 1000)

	entries, err := ParsePlayCounts(data)
	if err != nil {
		t.Fatalf("ParsePlayCounts failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}
