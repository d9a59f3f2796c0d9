package coregex

import (
	"testing"
)

// TestCompile tests basic compilation.
func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"simple literal", "hello", false},
		{"digit", `\d`, false},
		{"word", `\w+`, false},
		{"alternation", "foo|bar", false},
		{"repetition", "a+", false},
		{"unterminated class", "[abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Errorf("Compile(%q) err = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			}
		})
	}
}

func TestMustCompilePanicsOnInvalidPattern(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustCompile did not panic on invalid pattern")
		}
	}()
	MustCompile("[abc")
}

func TestMatchAndFind(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
		loc     []int
	}{
		{`\d+`, "hello 123", true, []int{6, 9}},
		{`\d+`, "hello", false, nil},
		{"hello", "hello world", true, []int{0, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			if got := re.MatchString(tt.input); got != tt.want {
				t.Errorf("MatchString(%q) = %v, want %v", tt.input, got, tt.want)
			}
			loc := re.FindStringIndex(tt.input)
			if tt.loc == nil {
				if loc != nil {
					t.Errorf("FindStringIndex(%q) = %v, want nil", tt.input, loc)
				}
				return
			}
			if loc == nil || loc[0] != tt.loc[0] || loc[1] != tt.loc[1] {
				t.Errorf("FindStringIndex(%q) = %v, want %v", tt.input, loc, tt.loc)
			}
		})
	}
}

func TestFindAllString(t *testing.T) {
	re := MustCompile(`\d+`)
	got := re.FindAllString("a1 b22 c333", -1)
	want := []string{"1", "22", "333"}
	if len(got) != len(want) {
		t.Fatalf("FindAllString = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FindAllString[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindAllWithLimit(t *testing.T) {
	re := MustCompile(`\d`)
	got := re.FindAll([]byte("1 2 3"), 2)
	if len(got) != 2 {
		t.Fatalf("FindAll with n=2 returned %d matches, want 2", len(got))
	}
}

func TestString(t *testing.T) {
	re := MustCompile(`\d+`)
	if re.String() != `\d+` {
		t.Errorf("String() = %q, want %q", re.String(), `\d+`)
	}
}
