// Command gastos-token issues a bearer session for an owner, signed with
// SESSION_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"

	"gastos/internal/cli"
	"gastos/internal/log"
	"gastos/internal/session"
)

func main() {
	owner := flag.String("owner", "", "owner id the session is issued for")
	ttl := flag.Duration("ttl", 0, "session lifetime (default SESSION_TTL)")
	flag.Parse()

	cfg, err := cli.LoadConfig()
	logger := cli.SetupLogger(cfg, log.ComponentSession)
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}
	if *owner == "" {
		fmt.Fprintln(os.Stderr, "usage: gastos-token -owner <id> [-ttl 24h]")
		os.Exit(2)
	}
	if *ttl <= 0 {
		*ttl = cfg.SessionTTL
	}

	token, err := session.Issue(cfg.SessionSecret, *owner, *ttl)
	if err != nil {
		cli.Fatal(logger, "Failed to issue session", err)
	}
	fmt.Println(token)
}
