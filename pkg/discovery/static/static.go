package static

import (
    "context"
    "regexp"
    "strings"

    "github.com/amirimatin/go-peercheck/pkg/discovery"
)

// space matches ASCII and Unicode whitespace, \v and the BOM.
const space = `[\s\v\p{Z}\x{FEFF}]`

var (
    edgeSpace       = regexp.MustCompile(`^` + space + `+|` + space + `+$`)
    leadingBracket  = regexp.MustCompile(`^` + space + `*\[` + space + `*`)
    trailingBracket = regexp.MustCompile(space + `*\]` + space + `*$`)
    separators      = regexp.MustCompile(`(?:,|` + space + `)+`)
)

type staticAddrs struct {
    addrs []string
}

func (s *staticAddrs) Addresses(context.Context) ([]string, error) {
    return append([]string(nil), s.addrs...), nil
}

// New returns a Discovery that always returns the given addresses.
func New(addrs ...string) discovery.Discovery {
    cleaned := make([]string, 0, len(addrs))
    for _, v := range addrs {
        v = strings.TrimSpace(v)
        if v != "" {
            cleaned = append(cleaned, v)
        }
    }
    return &staticAddrs{addrs: cleaned}
}

// Parse converts an address list such as "[ip1,ip2]", "ip1, ip2" or
// "ip1 ip2" into its tokens. One pair of enclosing brackets is dropped;
// separators are any mix of commas and whitespace. Order and duplicates are
// kept. An empty input returns nil.
func Parse(raw string) []string {
    s := edgeSpace.ReplaceAllString(raw, "")
    if s == "" {
        return nil
    }
    s = leadingBracket.ReplaceAllString(s, "")
    s = trailingBracket.ReplaceAllString(s, "")
    var out []string
    for _, p := range separators.Split(s, -1) {
        if p != "" {
            out = append(out, p)
        }
    }
    return out
}
