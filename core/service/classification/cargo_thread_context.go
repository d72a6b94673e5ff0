// Package classification implements the freight email classification pipeline:
// thread context extraction, marker-rule matchers for document/email type,
// sender category and sentiment, and the orchestrator that composes them with
// an optional AI fallback.
package classification

import (
	"regexp"
	"strings"

	"cargo_server/core/domain"
)

// =============================================================================
// Thread Context Extractor
// =============================================================================

// ThreadInput is the raw material for thread context extraction.
type ThreadInput struct {
	Subject     string
	BodyText    string
	SenderEmail string
	SenderName  string
	Headers     map[string]string
}

var (
	replyPrefixes   = []string{"re:", "reply:", "aw:", "sv:"}
	forwardPrefixes = []string{"fw:", "fwd:", "wg:", "tr:"}

	// Reply byline: "On Mon, Jan 2 ... wrote:" and the Gmail/Outlook variants.
	replyBylineRe = regexp.MustCompile(`(?mi)^on .{4,80}wrote:\s*$`)

	// Forward banners and original-message separators.
	forwardBannerRe = regexp.MustCompile(`(?mi)^-{2,}\s*(forwarded message|original message|ursprüngliche nachricht)\s*-{0,}`)

	// Quoted header block: a From: line shortly followed by Sent:/Date: and To:.
	headerBlockRe = regexp.MustCompile(`(?mi)^from:\s?.+$`)

	// Line-quote prefix.
	quoteLineRe = regexp.MustCompile(`(?m)^>`)

	fromLineAddrRe = regexp.MustCompile(`(?mi)^\s*from:.*?([a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,})`)
)

// ExtractThreadContext derives the thread structure of one email. It is pure
// and cheap; the orchestrator computes it once per classification.
func ExtractThreadContext(input *ThreadInput) *domain.ThreadContext {
	tc := &domain.ThreadContext{}

	tc.CleanSubject, tc.ThreadDepth, tc.IsReply, tc.IsForward = stripSubjectPrefixes(input.Subject)
	tc.FreshBody, tc.QuotedBody = splitBody(input.BodyText)
	tc.ForwardChain = extractForwardChain(input.BodyText)
	tc.OriginalSender = resolveOriginalSender(input.Headers, tc.ForwardChain)

	return tc
}

// stripSubjectPrefixes iteratively removes leading reply/forward markers,
// counting each kind. Stripping is idempotent: running it on its own output
// changes nothing.
func stripSubjectPrefixes(subject string) (clean string, depth int, isReply, isForward bool) {
	clean = strings.TrimSpace(subject)

	for {
		lower := strings.ToLower(clean)
		stripped := false

		for _, p := range replyPrefixes {
			if strings.HasPrefix(lower, p) {
				clean = strings.TrimSpace(clean[len(p):])
				depth++
				isReply = true
				stripped = true
				break
			}
		}
		if stripped {
			continue
		}

		for _, p := range forwardPrefixes {
			if strings.HasPrefix(lower, p) {
				clean = strings.TrimSpace(clean[len(p):])
				depth++
				isForward = true
				stripped = true
				break
			}
		}
		if !stripped {
			return clean, depth, isReply, isForward
		}
	}
}

// splitBody finds the earliest quote-start signal and splits the body there.
// No signal → everything is fresh. Signal at offset 0 means a fully-quoted
// appearance, so fall back to the line heuristic.
func splitBody(body string) (fresh, quoted string) {
	if body == "" {
		return "", ""
	}

	offset := earliestQuoteOffset(body)
	if offset < 0 {
		return body, ""
	}
	if offset == 0 {
		return splitBodyByLines(body)
	}

	return strings.TrimSpace(body[:offset]), strings.TrimSpace(body[offset:])
}

func earliestQuoteOffset(body string) int {
	offset := -1
	for _, re := range []*regexp.Regexp{replyBylineRe, forwardBannerRe, headerBlockRe, quoteLineRe} {
		loc := re.FindStringIndex(body)
		if loc == nil {
			continue
		}
		if offset < 0 || loc[0] < offset {
			offset = loc[0]
		}
	}
	return offset
}

// splitBodyByLines handles bodies whose first matching signal sits at offset
// 0: quote-prefixed or signal lines and everything after the first such line
// go to quoted; contiguous preceding non-empty lines stay fresh.
func splitBodyByLines(body string) (fresh, quoted string) {
	lines := strings.Split(body, "\n")
	var freshLines, quotedLines []string

	inQuoted := false
	for _, line := range lines {
		if !inQuoted && isQuoteLine(line) {
			inQuoted = true
		}
		if inQuoted {
			quotedLines = append(quotedLines, line)
		} else if strings.TrimSpace(line) != "" {
			freshLines = append(freshLines, line)
		}
	}

	return strings.TrimSpace(strings.Join(freshLines, "\n")),
		strings.TrimSpace(strings.Join(quotedLines, "\n"))
}

func isQuoteLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, ">") {
		return true
	}
	return replyBylineRe.MatchString(trimmed) ||
		forwardBannerRe.MatchString(trimmed) ||
		headerBlockRe.MatchString(trimmed)
}

// extractForwardChain scans for From:-style lines carrying an address. The
// first occurrence of each distinct address (case-insensitive) becomes a
// chain entry in encounter order.
func extractForwardChain(body string) []string {
	matches := fromLineAddrRe.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var chain []string
	for _, m := range matches {
		addr := strings.ToLower(m[1])
		if seen[addr] {
			continue
		}
		seen[addr] = true
		chain = append(chain, addr)
	}
	return chain
}

// resolveOriginalSender precedence: explicit original-sender header > last
// forward-chain entry > empty.
func resolveOriginalSender(headers map[string]string, chain []string) string {
	for _, key := range []string{"X-Original-Sender", "X-Original-From"} {
		if v, ok := headers[key]; ok && v != "" {
			return strings.ToLower(strings.TrimSpace(v))
		}
	}
	if len(chain) > 0 {
		return chain[len(chain)-1]
	}
	return ""
}
