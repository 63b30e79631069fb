package utils

import "testing"

func TestSanitizeJSON(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain json", `{"message":"hi"}`, `{"message":"hi"}`},
		{"whitespace only", "  \n {\"a\":1} \n ", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"inline fence", "```json{\"a\":1}```", `{"a":1}`},
		{"trailing commentary", "```json\n{\"a\":1}\n```\nLet me know if you need anything else!", `{"a":1}`},
		{"leading commentary", "Here is the reply:\n```json\n{\"a\":1}\n```", `{"a":1}`},
		{"unterminated fence", "```json\n{\"a\":1}", `{"a":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeJSON(tc.input)
			if got != tc.want {
				t.Errorf("SanitizeJSON(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
