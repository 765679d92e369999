package slug

import "testing"

func TestPredict(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Notes for Week 4, Day 1", "notes-for-week-4-day-1"},
		{"Hello World!", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Already-hyphenated -- title", "already-hyphenated-title"},
		{"snake_case_title", "snakecasetitle"},
		{"Q&A: Part 2", "qa-part-2"},
		{"Café Menu", "café-menu"},
		{"---", ""},
		{"", ""},
		{"Tabs\tand\nnewlines", "tabs-and-newlines"},
		{"a - b", "a-b"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := Predict(tt.title)
			if got != tt.want {
				t.Errorf("Predict(%q) = %q, want %q", tt.title, got, tt.want)
			}
			if again := Predict(tt.title); again != got {
				t.Errorf("Predict(%q) not deterministic: %q then %q", tt.title, got, again)
			}
		})
	}
}

func TestPredictIsStable(t *testing.T) {
	for _, title := range []string{"Hello World!", "notes-for-week-4-day-1", "x"} {
		once := Predict(title)
		if twice := Predict(once); twice != once {
			t.Errorf("Predict(Predict(%q)) = %q, want %q", title, twice, once)
		}
	}
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"week-1-intro", "Week 1 Intro"},
		{"syllabus", "Syllabus"},
		{"lab_report--draft", "Lab Report Draft"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Humanize(tt.key); got != tt.want {
			t.Errorf("Humanize(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
