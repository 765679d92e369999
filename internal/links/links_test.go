package links

import "testing"

func TestToLocal(t *testing.T) {
	tr := Transformer{CourseID: "123", Domain: "canvas.example.edu"}
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"full url", "[a](https://canvas.example.edu/courses/123/pages/my-page)", "[a](./my-page.md)"},
		{"relative", "[a](/courses/123/pages/intro_1)", "[a](./intro_1.md)"},
		{"other course", "[a](/courses/999/pages/x)", "[a](/courses/999/pages/x)"},
		{"file link", "[f](/courses/123/files/456/download)", "[f](/courses/123/files/456/download)"},
		{"html", `<a href="/courses/123/pages/syllabus">S</a>`, `<a href="./syllabus.md">S</a>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.ToLocal(tt.in); got != tt.want {
				t.Errorf("ToLocal(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToRemote(t *testing.T) {
	tr := Transformer{CourseID: "123", Domain: "canvas.example.edu"}
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dot slash", "[a](./my-page.md)", "[a](/courses/123/pages/my-page)"},
		{"bare md", "[a](my-page.md)", "[a](/courses/123/pages/my-page)"},
		{"bare slug", "[a](my-page)", "[a](/courses/123/pages/my-page)"},
		{"image", "![a](diagram.md)", "![a](diagram.md)"},
		{"external", "[a](https://example.com/x.md)", "[a](https://example.com/x.md)"},
		{"subdir", "[a](files/notes.md)", "[a](files/notes.md)"},
		{"other kind", "[q](./57.quiz.md)", "[q](./57.quiz.md)"},
		{"mixed", "See [a](a.md) and ![i](i.md) and [b](./b.md).", "See [a](/courses/123/pages/a) and ![i](i.md) and [b](/courses/123/pages/b)."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.ToRemote(tt.in); got != tt.want {
				t.Errorf("ToRemote(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	tr := Transformer{CourseID: "7", Domain: "lms.test"}
	local := "Read [the syllabus](./syllabus.md) first."
	if got := tr.ToLocal(tr.ToRemote(local)); got != local {
		t.Errorf("round trip = %q, want %q", got, local)
	}
}

func TestNoCourse(t *testing.T) {
	var tr Transformer
	in := "[a](./x.md) /courses/1/pages/y"
	if tr.ToRemote(in) != in || tr.ToLocal(in) != in {
		t.Error("transformer without a course must not rewrite")
	}
}
