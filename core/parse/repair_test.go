package parse

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCloseUnterminatedString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"closed string", `{"a": "hello"}`, `{"a": "hello"}`},
		{"open string", `{"a": "hello`, `{"a": "hello"`},
		{"open key", `{"ans`, `{"ans"`},
		{"escaped quote stays open", `{"a": "say \"hi`, `{"a": "say \"hi"`},
		{"escaped quote at end stays open", `{"a": "x\"`, `{"a": "x\""`},
		{"escaped backslash then quote closes", `{"path": "C:\\"`, `{"path": "C:\\"`},
		{"two escaped backslashes then open", `{"p": "\\\\`, `{"p": "\\\\"`},
		{"odd trailing backslash escapes next char", `"ab\`, `"ab\"`},
		{"no quotes at all", `{"items": [1, 2`, `{"items": [1, 2`},
		{"unicode content", `{"name": "Amína`, `{"name": "Amína"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CloseUnterminatedString(tt.input); got != tt.want {
				t.Errorf("CloseUnterminatedString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBalanceDelimiters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"balanced", `{"a": [1, {"b": 2}]}`, `{"a": [1, {"b": 2}]}`},
		{"open array in object", `{"items": [1, 2, 3`, `{"items": [1, 2, 3]}`},
		{"nested opens close innermost first", `[{"a": [{"b": 1`, `[{"a": [{"b": 1}]}]`},
		{"brackets inside strings are ignored", `{"q": "what is [x] in {y}?", "r": [`, `{"q": "what is [x] in {y}?", "r": []}`},
		{"escaped quote keeps string open across brackets", `{"q": "a \"[\" b", "r": {`, `{"q": "a \"[\" b", "r": {}}`},
		{"stray closer does not pop an unrelated opener", `{"a": ]`, `{"a": ]}`},
		{"mismatched closer is kept", `[1, 2}`, `[1, 2}]`},
		{"extra closers are harmless", `{}}]`, `{}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BalanceDelimiters(tt.input); got != tt.want {
				t.Errorf("BalanceDelimiters(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRepairTruncated(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"open string then object", `{"a": "hello`, `{"a": "hello"}`},
		{"open array", `{"items": [1, 2, 3`, `{"items": [1, 2, 3]}`},
		{"escaped backslash already closed", `{"path": "C:\\"`, `{"path": "C:\\"}`},
		{"open string inside nested array", `{"questions": [{"text": "Name the capital of`, `{"questions": [{"text": "Name the capital of"}]}`},
		{"trailing comma is not removed", `{"a": [1,`, `{"a": [1,]}`},
		{"garbage without delimiters", `not json at all`, `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RepairTruncated(tt.input); got != tt.want {
				t.Errorf("RepairTruncated(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRepairTruncated_IdempotentOnValidJSON(t *testing.T) {
	inputs := []string{
		`{}`,
		`[]`,
		`"plain string"`,
		`42`,
		`{"a": "b\"c", "d": ["{", "[", "\\"], "e": {"f": null}}`,
		`[{"question": "2 + 2 = ?", "options": ["3", "4"], "answer": 1}]`,
		"{\n  \"path\": \"C:\\\\Users\\\\\",\n  \"ok\": true\n}",
	}

	for _, input := range inputs {
		if !json.Valid([]byte(input)) {
			t.Fatalf("test input is not valid JSON: %s", input)
		}
		if got := RepairTruncated(input); got != input {
			t.Errorf("RepairTruncated(%q) = %q, want unchanged", input, got)
		}
		if got := RepairTruncated(RepairTruncated(input)); got != input {
			t.Errorf("double repair of %q changed it to %q", input, got)
		}
	}
}

func TestRepairTruncated_OnlyAppends(t *testing.T) {
	document := `{"title": "Term 2 Biology", "sections": [{"name": "A", "questions": [{"q": "Define \"osmosis\"", "marks": 2}, {"q": "List [three] organelles", "marks": 3}]}]}`

	for cut := 0; cut <= len(document); cut++ {
		prefix := document[:cut]
		got := RepairTruncated(prefix)
		if !strings.HasPrefix(got, prefix) {
			t.Fatalf("RepairTruncated(%q) = %q does not start with the input", prefix, got)
		}
		for _, c := range got[len(prefix):] {
			if !strings.ContainsRune(`"}]`, c) {
				t.Fatalf("RepairTruncated(%q) appended unexpected %q", prefix, c)
			}
		}
	}
}

func TestRepairTruncated_LargeInput(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"items": [`)
	for i := 0; i < 20000; i++ {
		b.WriteString(`{"id": 1, "text": "x [y] {z}"}, `)
	}
	b.WriteString(`{"id": 2, "text": "cut`)

	got := RepairTruncated(b.String())
	if !strings.HasSuffix(got, `cut"}]}`) {
		t.Errorf("unexpected suffix: %q", got[len(got)-16:])
	}
}

func BenchmarkRepairTruncated(b *testing.B) {
	input := strings.Repeat(`{"q": "text with [brackets] and \"quotes\"", "a": [1, 2, 3]}, `, 500)
	input = "[" + input + `{"q": "trunc`

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		RepairTruncated(input)
	}
}
