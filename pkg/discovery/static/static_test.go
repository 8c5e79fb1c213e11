package static

import (
    "context"
    "testing"
)

func TestParse(t *testing.T) {
    cases := []struct{
        in   string
        want []string
    }{
        {"", nil},
        {"   ", nil},
        {"[]", nil},
        {"[1.1.1.1,2.2.2.2]", []string{"1.1.1.1", "2.2.2.2"}},
        {"1.1.1.1, 2.2.2.2", []string{"1.1.1.1", "2.2.2.2"}},
        {"1.1.1.1 2.2.2.2", []string{"1.1.1.1", "2.2.2.2"}},
        {" [ 1.1.1.1 ,\t2.2.2.2 ] ", []string{"1.1.1.1", "2.2.2.2"}},
        {",,a, ,b,", []string{"a", "b"}},
        {"a,a,b", []string{"a", "a", "b"}},
        {"node-1.example.com\nnode-2", []string{"node-1.example.com", "node-2"}},
        {"1.1.1.1\u00a02.2.2.2", []string{"1.1.1.1", "2.2.2.2"}},
        {"1.1.1.1\v2.2.2.2", []string{"1.1.1.1", "2.2.2.2"}},
        {"\ufeff[1.1.1.1,\u20032.2.2.2]\u3000", []string{"1.1.1.1", "2.2.2.2"}},
        {"a\u2028b\u202fc", []string{"a", "b", "c"}},
    }
    for _, c := range cases {
        got := Parse(c.in)
        if len(got) != len(c.want) {
            t.Fatalf("len mismatch for %q: got %d want %d (%#v)", c.in, len(got), len(c.want), got)
        }
        for i := range got {
            if got[i] != c.want[i] {
                t.Fatalf("[%q] item %d: got %q want %q", c.in, i, got[i], c.want[i])
            }
        }
    }
}

func TestNew(t *testing.T) {
    d := New(" a ", "", "b")
    got, err := d.Addresses(context.Background())
    if err != nil { t.Fatalf("addresses: %v", err) }
    if len(got) != 2 || got[0] != "a" || got[1] != "b" {
        t.Fatalf("unexpected addresses: %#v", got)
    }
    // Ensure returned slice is a copy
    got[0] = "x"
    got2, _ := d.Addresses(context.Background())
    if got2[0] != "a" {
        t.Fatalf("expected defensive copy, got %#v", got2)
    }
}
