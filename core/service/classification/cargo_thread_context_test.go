package classification

import (
	"testing"
)

// TestStripSubjectPrefixes tests reply/forward marker stripping.
func TestStripSubjectPrefixes(t *testing.T) {
	tests := []struct {
		name        string
		subject     string
		wantClean   string
		wantDepth   int
		wantReply   bool
		wantForward bool
	}{
		{
			name:      "plain subject untouched",
			subject:   "Booking Confirmation: 999999999",
			wantClean: "Booking Confirmation: 999999999",
		},
		{
			name:      "single reply prefix",
			subject:   "RE: Arrival Notice - BL ABCD1234567",
			wantClean: "Arrival Notice - BL ABCD1234567",
			wantDepth: 1,
			wantReply: true,
		},
		{
			name:        "stacked reply and forward prefixes",
			subject:     "FW: RE: SI cutoff reminder",
			wantClean:   "SI cutoff reminder",
			wantDepth:   2,
			wantReply:   true,
			wantForward: true,
		},
		{
			name:        "german forward prefix",
			subject:     "WG: Zollabfertigung",
			wantClean:   "Zollabfertigung",
			wantDepth:   1,
			wantForward: true,
		},
		{
			name:      "case insensitive prefixes",
			subject:   "re: Re: RE: Delivery Order",
			wantClean: "Delivery Order",
			wantDepth: 3,
			wantReply: true,
		},
		{
			name:      "prefix-like word mid-subject stays",
			subject:   "Results re: nothing",
			wantClean: "Results re: nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clean, depth, isReply, isForward := stripSubjectPrefixes(tt.subject)

			if clean != tt.wantClean {
				t.Errorf("clean = %q, want %q", clean, tt.wantClean)
			}
			if depth != tt.wantDepth {
				t.Errorf("depth = %d, want %d", depth, tt.wantDepth)
			}
			if isReply != tt.wantReply {
				t.Errorf("isReply = %v, want %v", isReply, tt.wantReply)
			}
			if isForward != tt.wantForward {
				t.Errorf("isForward = %v, want %v", isForward, tt.wantForward)
			}
		})
	}
}

// TestStripSubjectPrefixesIdempotent verifies that stripping its own output
// changes nothing.
func TestStripSubjectPrefixesIdempotent(t *testing.T) {
	subjects := []string{
		"RE: Arrival Notice - BL ABCD1234567",
		"FW: FW: RE: Booking Confirmation",
		"Plain subject",
		"re:re:re: nested",
	}

	for _, subject := range subjects {
		clean, _, _, _ := stripSubjectPrefixes(subject)
		again, depth, isReply, isForward := stripSubjectPrefixes(clean)

		if again != clean {
			t.Errorf("second pass changed %q to %q", clean, again)
		}
		if depth != 0 || isReply || isForward {
			t.Errorf("second pass on %q reported depth=%d reply=%v forward=%v, want zero values",
				clean, depth, isReply, isForward)
		}
	}
}

// TestSplitBody tests fresh/quoted separation.
func TestSplitBody(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFresh  string
		wantQuoted string
	}{
		{
			name:      "no quote signal keeps everything fresh",
			body:      "Please confirm the booking for next week.",
			wantFresh: "Please confirm the booking for next week.",
		},
		{
			name:       "gmail reply byline splits",
			body:       "Noted, thanks.\n\nOn Mon, Jan 5, 2026 at 3:04 PM Kim Operations wrote:\n> Original content here",
			wantFresh:  "Noted, thanks.",
			wantQuoted: "On Mon, Jan 5, 2026 at 3:04 PM Kim Operations wrote:\n> Original content here",
		},
		{
			name:       "forward banner splits",
			body:       "FYI, see below.\n---------- Forwarded message ----------\nFrom: ops@carrier.example\nArrival notice attached.",
			wantFresh:  "FYI, see below.",
			wantQuoted: "---------- Forwarded message ----------\nFrom: ops@carrier.example\nArrival notice attached.",
		},
		{
			name:       "quote line prefix splits",
			body:       "Agreed.\n> previous message line one\n> line two",
			wantFresh:  "Agreed.",
			wantQuoted: "> previous message line one\n> line two",
		},
		{
			name:       "fully quoted body yields empty fresh",
			body:       "> everything here is quoted\n> nothing new",
			wantFresh:  "",
			wantQuoted: "> everything here is quoted\n> nothing new",
		},
		{
			name: "empty body",
			body: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fresh, quoted := splitBody(tt.body)

			if fresh != tt.wantFresh {
				t.Errorf("fresh = %q, want %q", fresh, tt.wantFresh)
			}
			if quoted != tt.wantQuoted {
				t.Errorf("quoted = %q, want %q", quoted, tt.wantQuoted)
			}
		})
	}
}

// TestExtractForwardChain tests chain extraction and deduplication.
func TestExtractForwardChain(t *testing.T) {
	body := "FYI\n" +
		"---------- Forwarded message ----------\n" +
		"From: Kim Ops <ops@forwarder.example>\n" +
		"Subject: FW: Arrival Notice\n" +
		"---------- Forwarded message ----------\n" +
		"From: Notices <notices@carrier.example>\n" +
		"From: Kim Ops <OPS@forwarder.example>\n"

	chain := extractForwardChain(body)

	want := []string{"ops@forwarder.example", "notices@carrier.example"}
	if len(chain) != len(want) {
		t.Fatalf("chain = %v, want %v", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Errorf("chain[%d] = %q, want %q", i, chain[i], want[i])
		}
	}
}

// TestResolveOriginalSender tests the precedence order.
func TestResolveOriginalSender(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		chain   []string
		want    string
	}{
		{
			name:    "explicit header wins over chain",
			headers: map[string]string{"X-Original-Sender": "Notices@Carrier.example"},
			chain:   []string{"ops@forwarder.example", "other@somewhere.example"},
			want:    "notices@carrier.example",
		},
		{
			name:  "last chain entry when no header",
			chain: []string{"ops@forwarder.example", "notices@carrier.example"},
			want:  "notices@carrier.example",
		},
		{
			name: "empty when nothing available",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveOriginalSender(tt.headers, tt.chain)
			if got != tt.want {
				t.Errorf("originalSender = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestExtractThreadContext tests the assembled context for a forwarded email.
func TestExtractThreadContext(t *testing.T) {
	tc := ExtractThreadContext(&ThreadInput{
		Subject:  "FW: Arrival Notice - MSCU1234567",
		BodyText: "Please handle.\n---------- Forwarded message ----------\nFrom: notices@carrier.example\nVessel arriving Friday.",
		Headers:  map[string]string{},
	})

	if !tc.IsForward || tc.IsReply {
		t.Errorf("flags forward=%v reply=%v, want forward only", tc.IsForward, tc.IsReply)
	}
	if tc.CleanSubject != "Arrival Notice - MSCU1234567" {
		t.Errorf("cleanSubject = %q", tc.CleanSubject)
	}
	if tc.FreshBody != "Please handle." {
		t.Errorf("freshBody = %q", tc.FreshBody)
	}
	if tc.OriginalSender != "notices@carrier.example" {
		t.Errorf("originalSender = %q", tc.OriginalSender)
	}
	if !tc.IsThreaded() {
		t.Error("IsThreaded() = false, want true")
	}
}
