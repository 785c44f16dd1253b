package metrics

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

func TestNew_ServiceDimension(t *testing.T) {
	initOnce.Do(func() {}) // Reset once
	serviceName = "dme-web"

	r := New("DmeEquipmentDocs")
	if r.namespace != "DmeEquipmentDocs" {
		t.Errorf("expected namespace DmeEquipmentDocs, got %s", r.namespace)
	}
	if r.dimensions["Service"] != "dme-web" {
		t.Errorf("expected Service dimension dme-web, got %s", r.dimensions["Service"])
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	serviceName = "" // Clear for test isolation

	rec := New("DmeEquipmentDocs")
	rec.Dimension("Operation", "extract")
	rec.Metric("GeminiApiLatencyMs", 1234.5, UnitMilliseconds)
	rec.Metric("GeminiApiCalls", 1, UnitCount)
	rec.Property("image", "label-001.jpg")
	rec.Flush()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	output := buf.String()

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(output), &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, output)
	}

	awsDir, ok := doc["_aws"]
	if !ok {
		t.Fatal("missing _aws directive in EMF output")
	}
	awsMap, ok := awsDir.(map[string]interface{})
	if !ok {
		t.Fatal("_aws directive is not a map")
	}
	if _, ok := awsMap["Timestamp"]; !ok {
		t.Error("missing Timestamp in _aws directive")
	}

	cwMetrics, ok := awsMap["CloudWatchMetrics"]
	if !ok {
		t.Fatal("missing CloudWatchMetrics in _aws directive")
	}
	cwArr, ok := cwMetrics.([]interface{})
	if !ok || len(cwArr) == 0 {
		t.Fatal("CloudWatchMetrics should be a non-empty array")
	}
	cw := cwArr[0].(map[string]interface{})
	if cw["Namespace"] != "DmeEquipmentDocs" {
		t.Errorf("expected namespace DmeEquipmentDocs, got %v", cw["Namespace"])
	}

	// Dimension and metric values surface as top-level fields
	if doc["Operation"] != "extract" {
		t.Errorf("expected Operation dimension extract, got %v", doc["Operation"])
	}
	if doc["GeminiApiLatencyMs"] != 1234.5 {
		t.Errorf("expected GeminiApiLatencyMs 1234.5, got %v", doc["GeminiApiLatencyMs"])
	}
	if doc["image"] != "label-001.jpg" {
		t.Errorf("expected image property, got %v", doc["image"])
	}
}

func TestRecorder_EmptyFlushEmitsNothing(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	New("DmeEquipmentDocs").Property("only", "properties").Flush()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	if buf.Len() != 0 {
		t.Errorf("expected no output for metric-less flush, got %q", buf.String())
	}
}
