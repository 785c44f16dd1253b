package jsonutil

import "testing"

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"device":"wheelchair"}`, `{"device":"wheelchair"}`},
		{"json fence", "```json\n{\"device\":\"wheelchair\"}\n```", `{"device":"wheelchair"}`},
		{"bare fence", "```\n{\"device\":\"wheelchair\"}\n```", `{"device":"wheelchair"}`},
		{"leading whitespace", "  \n```json\n{}\n```", "{}"},
		{"too short to be fenced", "```", "```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdownFences(tt.in); got != tt.want {
				t.Errorf("StripMarkdownFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	got, err := ExtractJSON("Here is the result:\n{\"serial\": \"SN-001\"}\nLet me know if you need more.")
	if err != nil {
		t.Fatalf("ExtractJSON returned error: %v", err)
	}
	if got != `{"serial": "SN-001"}` {
		t.Errorf("ExtractJSON = %q", got)
	}
}

func TestExtractJSON_NoContent(t *testing.T) {
	if _, err := ExtractJSON("no json here at all"); err == nil {
		t.Error("expected error for text without JSON")
	}
}

func TestParseJSON_Object(t *testing.T) {
	type fields struct {
		Device string `json:"device"`
		Serial string `json:"serial"`
	}

	raw := "```json\n{\"device\": \"CPAP Machine\", \"serial\": \"A1B2C3\"}\n```"
	got, err := ParseJSON[fields](raw)
	if err != nil {
		t.Fatalf("ParseJSON returned error: %v", err)
	}
	if got.Device != "CPAP Machine" || got.Serial != "A1B2C3" {
		t.Errorf("ParseJSON = %+v", got)
	}
}

func TestParseJSON_InvalidJSON(t *testing.T) {
	if _, err := ParseJSON[map[string]string]("{not valid json}"); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
