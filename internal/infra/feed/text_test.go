package feed

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "A study of X.", want: "A study of X."},
		{name: "hard wraps", in: "  A study\n  of X.\n", want: "A study of X."},
		{name: "html paragraph", in: "<p>A study of <em>X</em>.</p>", want: "A study of X."},
		{name: "entities", in: "Q&amp;A for <b>qubits</b>", want: "Q&A for qubits"},
		{name: "math comparison kept", in: "We show a < b for all n", want: "We show a < b for all n"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
