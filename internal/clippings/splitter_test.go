package clippings

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitBlocks_Basic(t *testing.T) {
	content := "block one\nline two\n==========\nblock two\n==========\n"

	blocks, err := SplitBlocks(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"block one\nline two", "block two"}
	if !reflect.DeepEqual(blocks, want) {
		t.Errorf("expected %v, got %v", want, blocks)
	}
}

func TestSplitBlocks_TrailingSeparatorProducesNoEmptyBlock(t *testing.T) {
	blocks, err := SplitBlocks("only block\n==========\n\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d: %v", len(blocks), blocks)
	}
}

func TestSplitBlocks_SeparatorWithTrailingWhitespace(t *testing.T) {
	blocks, err := SplitBlocks("a\n==========\r\nb\n==========  \nc\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(blocks, want) {
		t.Errorf("expected %v, got %v", want, blocks)
	}
}

func TestSplitBlocks_EmptyInput(t *testing.T) {
	for _, content := range []string{"", "\n\n", "==========\n"} {
		blocks, err := SplitBlocks(content)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", content, err)
		}
		if len(blocks) != 0 {
			t.Errorf("expected no blocks for %q, got %v", content, blocks)
		}
	}
}

func TestSplitBlocks_InvalidUTF8(t *testing.T) {
	_, err := SplitBlocks("ok\n\xff\xfe\n==========\n")
	if err != ErrInputDecode {
		t.Fatalf("expected ErrInputDecode, got %v", err)
	}
}

func TestSplitBlocks_RoundTrip(t *testing.T) {
	content := "first block\nwith two lines\n==========\nsecond block\n==========\nthird\n==========\n"

	blocks, err := SplitBlocks(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rejoined := strings.Join(blocks, "\n==========\n") + "\n==========\n"
	again, err := SplitBlocks(rejoined)
	if err != nil {
		t.Fatalf("unexpected error on re-split: %v", err)
	}

	if !reflect.DeepEqual(blocks, again) {
		t.Errorf("re-splitting changed the block sequence:\nfirst:  %v\nsecond: %v", blocks, again)
	}
}
