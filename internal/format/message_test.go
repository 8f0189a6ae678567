package format

import "testing"

func TestUTF16Len(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"잠", 1},
		{"☀️", 2},
		{"💪", 2},
		{"a💪b", 4},
	}
	for _, tt := range tests {
		if got := UTF16Len(tt.in); got != tt.want {
			t.Fatalf("UTF16Len(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBuilderOffsets(t *testing.T) {
	var b Builder
	b.Text("💪 ").Bold("계획").Line("").Code("09:00").Text(" 회의")

	msg := b.Message()
	if msg.Text != "💪 계획\n09:00 회의" {
		t.Fatalf("unexpected text %q", msg.Text)
	}
	if len(msg.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(msg.Entities))
	}
	bold, code := msg.Entities[0], msg.Entities[1]
	if bold.Type != "bold" || bold.Offset != 3 || bold.Length != 2 {
		t.Fatalf("unexpected bold entity %+v", bold)
	}
	if code.Type != "code" || code.Offset != 6 || code.Length != 5 {
		t.Fatalf("unexpected code entity %+v", code)
	}
}

func TestBuilderTrimsTrailingSpace(t *testing.T) {
	var b Builder
	b.Text("a").Italic("  \n").Line("")

	msg := b.Message()
	if msg.Text != "a" {
		t.Fatalf("unexpected text %q", msg.Text)
	}
	if len(msg.Entities) != 0 {
		t.Fatalf("expected trailing entity to be dropped, got %+v", msg.Entities)
	}
}

func TestBuilderSkipsEmptyStyles(t *testing.T) {
	var b Builder
	b.Bold("").Text("x")
	if got := b.Message(); len(got.Entities) != 0 || got.Text != "x" {
		t.Fatalf("unexpected message %+v", got)
	}
}
