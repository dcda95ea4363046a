// Command keygen generates a fresh Ed25519 key pair for ticket signing
// and prints (or appends to .env) the two environment variables the
// server expects. The private seed goes only to issuing deployments;
// gate fleets receive the public key alone.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"os"
)

func main() {
	envFile := flag.String("env", "", "append the generated keys to this .env file instead of printing")
	flag.Parse()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		log.Fatalf("generate key: %v", err)
	}

	// Only the 32-byte seed is stored; the full private key is always
	// re-derived from it at startup.
	seedB64 := base64.StdEncoding.EncodeToString(priv.Seed())
	pubB64 := base64.StdEncoding.EncodeToString(pub)

	lines := fmt.Sprintf("ED25519_PRIVATE_KEY_B64=%s\nED25519_PUBLIC_KEY_B64=%s\n", seedB64, pubB64)

	if *envFile == "" {
		fmt.Print(lines)
		return
	}

	f, err := os.OpenFile(*envFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		log.Fatalf("open %s: %v", *envFile, err)
	}
	defer f.Close()
	if _, err := f.WriteString(lines); err != nil {
		log.Fatalf("write %s: %v", *envFile, err)
	}
	fmt.Printf("wrote key pair to %s\n", *envFile)
}
