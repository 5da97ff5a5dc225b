package openai

import (
	"strings"
	"testing"
)

func TestStreamSSE(t *testing.T) {
	body := strings.Join([]string{
		"event: response.output_text.delta",
		`data: {"delta":"Hel"}`,
		"",
		": keep-alive comment",
		"event: response.output_text.delta",
		`data: {"delta":"lo"}`,
		"",
		"data: [DONE]",
		"",
	}, "\n")

	var events []string
	var datas []string
	err := streamSSE(strings.NewReader(body), func(event, data string) error {
		events = append(events, event)
		datas = append(datas, data)
		return nil
	})
	if err != nil {
		t.Fatalf("streamSSE: %v", err)
	}
	if len(datas) != 3 {
		t.Fatalf("expected 3 events, got %d: %v", len(datas), datas)
	}
	if events[0] != "response.output_text.delta" {
		t.Fatalf("event[0] = %q", events[0])
	}
	if datas[2] != "[DONE]" {
		t.Fatalf("data[2] = %q", datas[2])
	}
}

func TestStreamSSEMultilineData(t *testing.T) {
	body := "data: line one\ndata: line two\n\n"
	var got string
	err := streamSSE(strings.NewReader(body), func(_, data string) error {
		got = data
		return nil
	})
	if err != nil {
		t.Fatalf("streamSSE: %v", err)
	}
	if got != "line one\nline two" {
		t.Fatalf("joined data = %q", got)
	}
}

func TestStreamSSEFlushesTrailingEventAtEOF(t *testing.T) {
	body := "data: unterminated"
	var count int
	err := streamSSE(strings.NewReader(body), func(_, data string) error {
		count++
		if data != "unterminated" {
			t.Fatalf("data = %q", data)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("streamSSE: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected trailing flush, got %d events", count)
	}
}
