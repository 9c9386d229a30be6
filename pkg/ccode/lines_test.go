package ccode_test

import (
	"testing"

	"github.com/nicolasleger/rubinius/pkg/ccode"
)

func Test_Line_Returns_NoLineInfo_Without_A_Map(t *testing.T) {
	t.Parallel()

	c := ccode.New()

	if got := c.Line(0); got != ccode.NoLineInfo {
		t.Fatalf("Line(0) = %d, want %d", got, ccode.NoLineInfo)
	}
}

func Test_Line_Resolves_Pairs_And_Falls_Back_To_The_Last_Line(t *testing.T) {
	t.Parallel()

	c := ccode.New()
	c.Lines = []int{0, 10, 4, 11, 9, 14}

	cases := map[int]int{
		0:  10,
		3:  10,
		4:  11,
		8:  11,
		9:  14,
		50: 14,
	}

	for ip, want := range cases {
		if got := c.Line(ip); got != want {
			t.Fatalf("Line(%d) = %d, want %d", ip, got, want)
		}
	}
}

func Test_Line_Is_Non_Decreasing_For_Increasing_IP(t *testing.T) {
	t.Parallel()

	c := ccode.New()
	c.Lines = []int{0, 3, 2, 5, 7, 9, 12, 20}

	prev := c.Line(0)
	for ip := 1; ip < 20; ip++ {
		line := c.Line(ip)
		if line < prev {
			t.Fatalf("Line(%d) = %d dropped below Line(%d) = %d", ip, line, ip-1, prev)
		}
		prev = line
	}
}

func Test_StartLine_Is_Second_Entry_Or_Sentinel(t *testing.T) {
	t.Parallel()

	c := ccode.New()
	if got := c.StartLine(); got != ccode.NoStartLine {
		t.Fatalf("StartLine() = %d on empty map, want %d", got, ccode.NoStartLine)
	}

	c.Lines = []int{0, 42, 6, 43}
	if got := c.StartLine(); got != 42 {
		t.Fatalf("StartLine() = %d, want 42", got)
	}
}
