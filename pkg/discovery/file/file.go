package file

import (
    "bufio"
    "context"
    "fmt"
    "os"
    "path/filepath"
    "sort"
    "strings"

    "github.com/amirimatin/go-peercheck/pkg/discovery"
    "github.com/amirimatin/go-peercheck/pkg/discovery/static"
)

// Options configures file/ENV-based discovery.
type Options struct {
    // Path to a file (or glob) with addresses, one or more per line.
    Path string
    // Env names an environment variable that overrides the file when set.
    Env string
}

type impl struct {
    opts Options
}

func New(opts Options) discovery.Discovery { return &impl{opts: opts} }

func (i *impl) Addresses(context.Context) ([]string, error) {
    // ENV takes precedence
    if i.opts.Env != "" {
        if v := strings.TrimSpace(os.Getenv(i.opts.Env)); v != "" {
            return static.Parse(v), nil
        }
    }
    if i.opts.Path == "" {
        return nil, fmt.Errorf("file: no path configured")
    }
    if _, err := os.Stat(i.opts.Path); err == nil {
        return loadFile(i.opts.Path)
    }
    // try glob; files are read in lexical order
    matches, err := filepath.Glob(i.opts.Path)
    if err != nil { return nil, fmt.Errorf("file: bad pattern %q: %w", i.opts.Path, err) }
    if len(matches) == 0 {
        return nil, fmt.Errorf("file: %s: %w", i.opts.Path, os.ErrNotExist)
    }
    sort.Strings(matches)
    var out []string
    for _, m := range matches {
        addrs, err := loadFile(m)
        if err != nil { return nil, err }
        out = append(out, addrs...)
    }
    return out, nil
}

func loadFile(path string) ([]string, error) {
    f, err := os.Open(path)
    if err != nil { return nil, fmt.Errorf("file: %w", err) }
    defer f.Close()
    var addrs []string
    s := bufio.NewScanner(f)
    for s.Scan() {
        line := strings.TrimSpace(s.Text())
        if line == "" || strings.HasPrefix(line, "#") { continue }
        addrs = append(addrs, static.Parse(line)...)
    }
    if err := s.Err(); err != nil { return nil, fmt.Errorf("file: read %s: %w", path, err) }
    return addrs, nil
}
