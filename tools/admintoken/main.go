package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/keyline/keyline/internal/auth"
)

// Mints a back-office JWT for the admin API. The secret must match the
// server's KEYLINE_ADMIN_JWT_SECRET.
func main() {
	actor := flag.String("actor", "", "operator identity embedded in the token (sub claim)")
	secret := flag.String("secret", "", "signing secret; falls back to KEYLINE_ADMIN_JWT_SECRET")
	expiresIn := flag.Duration("expires-in", time.Hour, "token lifetime (duration, e.g. 30m, 2h)")

	flag.Parse()

	signingSecret := strings.TrimSpace(*secret)
	if signingSecret == "" {
		signingSecret = strings.TrimSpace(os.Getenv("KEYLINE_ADMIN_JWT_SECRET"))
	}
	if signingSecret == "" {
		fmt.Fprintln(os.Stderr, "error: no signing secret (use -secret or KEYLINE_ADMIN_JWT_SECRET)")
		os.Exit(1)
	}
	if strings.TrimSpace(*actor) == "" {
		fmt.Fprintln(os.Stderr, "error: -actor is required")
		os.Exit(1)
	}

	token, err := auth.IssueAdminToken(signingSecret, strings.TrimSpace(*actor), *expiresIn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
