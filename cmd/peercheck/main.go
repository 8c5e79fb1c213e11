package main

import (
    "errors"
    "log"
    "os"

    clicmd "github.com/amirimatin/go-peercheck/pkg/cli"
)

func main() {
    if err := clicmd.NewRootCmd().Execute(); err != nil {
        // check failures are already logged with a timestamp
        var ee *clicmd.ExitError
        if errors.As(err, &ee) { os.Exit(ee.Code) }
        log.Fatal(err)
    }
}
