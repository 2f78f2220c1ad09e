package artifact

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func newCapturingCodec() (*Codec, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewCodec(slog.New(slog.NewTextHandler(&buf, nil))), &buf
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec(nil)
	items := []Artifact{
		{ID: "2", RawText: "# 二", RenderedMarkup: "<h1>二</h1>", Tags: []string{"#工作"}, CreatedAt: 2},
		{ID: "1", RawText: "a & b", RenderedMarkup: `<a href="x">y</a>`, Tags: []string{}, CreatedAt: 1},
	}

	blob, err := codec.Encode(items)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got := codec.Decode(blob)
	if !reflect.DeepEqual(got, items) {
		t.Errorf("Decode(Encode(x)) = %+v, want %+v", got, items)
	}
}

func TestCodec_EncodeFormat(t *testing.T) {
	codec := NewCodec(nil)

	blob, err := codec.Encode([]Artifact{{ID: "5", RawText: "t", RenderedMarkup: "<br>", CreatedAt: 5}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `[{"id":"5","content":"t","html":"<br>","tags":[],"timestamp":5}]`
	if blob != want {
		t.Errorf("Encode = %s, want %s", blob, want)
	}

	empty, err := codec.Encode(nil)
	if err != nil {
		t.Fatalf("Encode(nil): %v", err)
	}
	if empty != "[]" {
		t.Errorf("Encode(nil) = %q, want %q", empty, "[]")
	}
}

func TestCodec_DecodeDegrades(t *testing.T) {
	tests := []struct {
		name   string
		blob   string
		reason string
	}{
		{name: "not json", blob: "hello", reason: "malformed"},
		{name: "truncated", blob: `[{"id":"1"`, reason: "malformed"},
		{name: "trailing data", blob: `[] []`, reason: "malformed"},
		{name: "object", blob: `{"id":"1"}`, reason: "shape"},
		{name: "missing fields", blob: `[{"id":"1"}]`, reason: "shape"},
		{name: "numeric id", blob: `[{"id":1,"content":"","html":"","tags":[],"timestamp":1}]`, reason: "shape"},
		{name: "fractional timestamp", blob: `[{"id":"1","content":"","html":"","tags":[],"timestamp":1.5}]`, reason: "shape"},
		{name: "tags not strings", blob: `[{"id":"1","content":"","html":"","tags":[1],"timestamp":1}]`, reason: "shape"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, logs := newCapturingCodec()

			got := codec.Decode(tt.blob)
			if got == nil || len(got) != 0 {
				t.Errorf("Decode(%q) = %v, want empty non-nil", tt.blob, got)
			}
			if !strings.Contains(logs.String(), "level=WARN") {
				t.Errorf("expected warning, got log %q", logs.String())
			}
			if !strings.Contains(logs.String(), "reason="+tt.reason) {
				t.Errorf("log %q missing reason=%s", logs.String(), tt.reason)
			}
		})
	}
}

func TestCodec_DecodeEmpty(t *testing.T) {
	codec, logs := newCapturingCodec()

	for _, blob := range []string{"", "[]"} {
		got := codec.Decode(blob)
		if got == nil || len(got) != 0 {
			t.Errorf("Decode(%q) = %v, want empty non-nil", blob, got)
		}
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected log output: %q", logs.String())
	}
}

func TestCodec_DecodeKeepsOrder(t *testing.T) {
	blob := `[` +
		`{"id":"3","content":"c","html":"c","tags":["#c"],"timestamp":3},` +
		`{"id":"1","content":"a","html":"a","tags":[],"timestamp":1},` +
		`{"id":"2","content":"b","html":"b","tags":[],"timestamp":2}]`

	got := NewCodec(nil).Decode(blob)
	ids := make([]string, len(got))
	for i, a := range got {
		ids[i] = a.ID
	}
	if want := []string{"3", "1", "2"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}
