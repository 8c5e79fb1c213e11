package dns

import (
    "context"
    "fmt"
    "net"
    "strings"

    "github.com/amirimatin/go-peercheck/pkg/discovery"
)

// Resolver is the subset of *net.Resolver used for lookups.
type Resolver interface {
    LookupSRV(ctx context.Context, service, proto, name string) (string, []*net.SRV, error)
    LookupHost(ctx context.Context, host string) ([]string, error)
}

// Options configures DNS-based discovery.
type Options struct {
    // Names are SRV records or hostnames to resolve.
    // Examples: "_rpc._tcp.nodes.example.com" (SRV) or "node1.example.com" (A/AAAA).
    Names []string

    // Resolver optionally overrides the DNS resolver used.
    Resolver Resolver
}

type impl struct {
    opts Options
}

// New returns a DNS-backed discovery. SRV names yield their target hosts
// (the SRV port is ignored, nodes are always dialed on the RPC port), plain
// names yield their A/AAAA addresses and IP literals pass through.
func New(opts Options) discovery.Discovery {
    if opts.Resolver == nil { opts.Resolver = net.DefaultResolver }
    return &impl{opts: opts}
}

func (d *impl) Addresses(ctx context.Context) ([]string, error) {
    seen := make(map[string]struct{})
    var out []string
    add := func(a string) {
        if _, ok := seen[a]; ok { return }
        seen[a] = struct{}{}
        out = append(out, a)
    }
    for _, name := range d.opts.Names {
        name = strings.TrimSpace(name)
        if name == "" { continue }
        if net.ParseIP(name) != nil {
            add(name)
            continue
        }
        if isSRVName(name) {
            hosts, err := d.lookupSRV(ctx, name)
            if err != nil { return nil, err }
            for _, h := range hosts { add(h) }
            continue
        }
        ips, err := d.opts.Resolver.LookupHost(ctx, name)
        if err != nil { return nil, fmt.Errorf("dns: lookup %s: %w", name, err) }
        for _, ip := range ips { add(ip) }
    }
    return out, nil
}

func (d *impl) lookupSRV(ctx context.Context, fqdn string) ([]string, error) {
    svc, proto, domain := parseSRVName(fqdn)
    if svc == "" || proto == "" || domain == "" { return nil, fmt.Errorf("dns: malformed SRV name %q", fqdn) }
    _, addrs, err := d.opts.Resolver.LookupSRV(ctx, svc, proto, domain)
    if err != nil { return nil, fmt.Errorf("dns: lookup SRV %s: %w", fqdn, err) }
    out := make([]string, 0, len(addrs))
    for _, a := range addrs {
        out = append(out, strings.TrimSuffix(a.Target, "."))
    }
    return out, nil
}

func isSRVName(name string) bool {
    return strings.HasPrefix(name, "_") && strings.Contains(name, "._")
}

func parseSRVName(fqdn string) (service, proto, name string) {
    // Expect pattern: _service._proto.name
    parts := strings.SplitN(fqdn, ".", 3)
    if len(parts) < 3 { return "", "", "" }
    s := strings.TrimPrefix(parts[0], "_")
    p := strings.TrimPrefix(parts[1], "_")
    n := parts[2]
    return s, p, n
}
