package kvcache

import (
	"strings"
	"testing"
)

func FuzzDecode(f *testing.F) {
	f.Add("plain text")
	f.Add("")
	f.Add(`{"a":1}`)
	f.Add(structuredMarker + `{"a":1}`)
	f.Add(structuredMarker + "{broken")

	f.Fuzz(func(t *testing.T, in string) {
		out := Decode(in)

		// Unmarked input must survive untouched.
		if !strings.HasPrefix(in, structuredMarker) {
			s, ok := out.(string)
			if !ok || s != in {
				t.Fatalf("unmarked input %q decoded to %#v", in, out)
			}
		}
	})
}

func FuzzEncodeDecodeString(f *testing.F) {
	f.Add("hello")
	f.Add(structuredMarker)
	f.Add(structuredMarker + "payload")
	f.Add(`{"json":true}`)

	f.Fuzz(func(t *testing.T, in string) {
		encoded, err := Encode(in)
		if err != nil {
			t.Fatalf("encode %q: %v", in, err)
		}
		out := Decode(encoded)
		s, ok := out.(string)
		if !ok {
			t.Fatalf("string input %q decoded to %T", in, out)
		}
		if s != in {
			t.Fatalf("round trip mismatch: %q -> %q", in, s)
		}
	})
}
