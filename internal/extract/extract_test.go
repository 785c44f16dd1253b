package extract

import (
	"testing"
)

func TestParseFields_PlainJSON(t *testing.T) {
	resp := `{"device": "Oxygen Concentrator", "model": "EverFlo", "serial": "EF123456", "manufacturer": "Philips"}`

	fields, err := ParseFields(resp)
	if err != nil {
		t.Fatalf("ParseFields returned error: %v", err)
	}
	if fields.Device != "Oxygen Concentrator" {
		t.Errorf("device = %q", fields.Device)
	}
	if fields.Serial != "EF123456" {
		t.Errorf("serial = %q", fields.Serial)
	}
	if fields.Manufacturer != "Philips" {
		t.Errorf("manufacturer = %q", fields.Manufacturer)
	}
}

func TestParseFields_FencedJSON(t *testing.T) {
	resp := "```json\n{\"device\": \"Wheelchair\", \"model\": \"K0001\", \"serial\": \"WC-99\", \"manufacturer\": \"n/a\"}\n```"

	fields, err := ParseFields(resp)
	if err != nil {
		t.Fatalf("ParseFields returned error: %v", err)
	}
	if fields.Device != "Wheelchair" || fields.Manufacturer != "n/a" {
		t.Errorf("fields = %+v", fields)
	}
}

func TestParseFields_MissingManufacturerDefaultsToSentinel(t *testing.T) {
	resp := `{"device": "Nebulizer", "model": "NE-C28", "serial": "N123"}`

	fields, err := ParseFields(resp)
	if err != nil {
		t.Fatalf("ParseFields returned error: %v", err)
	}
	if fields.Manufacturer != NotApplicable {
		t.Errorf("expected manufacturer sentinel %q, got %q", NotApplicable, fields.Manufacturer)
	}
}

func TestParseFields_MissingRequiredField(t *testing.T) {
	resp := `{"device": "Nebulizer", "manufacturer": "Omron"}`

	if _, err := ParseFields(resp); err == nil {
		t.Error("expected error for response missing model and serial")
	}
}

func TestParseFields_NotJSON(t *testing.T) {
	if _, err := ParseFields("I could not read the label, sorry."); err == nil {
		t.Error("expected error for prose response")
	}
}

func TestParseFields_TrimsWhitespace(t *testing.T) {
	resp := `{"device": "  Hospital Bed ", "model": " HB-1 ", "serial": " S1 ", "manufacturer": "  "}`

	fields, err := ParseFields(resp)
	if err != nil {
		t.Fatalf("ParseFields returned error: %v", err)
	}
	if fields.Device != "Hospital Bed" {
		t.Errorf("device = %q", fields.Device)
	}
	if fields.Manufacturer != NotApplicable {
		t.Errorf("blank manufacturer should become %q, got %q", NotApplicable, fields.Manufacturer)
	}
}

func TestMimeTypeFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"photo.jpg", "image/jpeg"},
		{"photo.JPEG", "image/jpeg"},
		{"scan.png", "image/png"},
		{"scan.PNG", "image/png"},
		{"weird.bmp", "image/jpeg"},
	}
	for _, tt := range tests {
		if got := mimeTypeFor(tt.name); got != tt.want {
			t.Errorf("mimeTypeFor(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
