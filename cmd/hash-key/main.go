package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/hash-key/main.go <api-key>")
		fmt.Println("Example: go run cmd/hash-key/main.go \"storefront-api-key-12345\"")
		os.Exit(1)
	}

	apiKey := os.Args[1]

	// Hash the API key
	apiKeyHash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash API key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set this on the order API:\n")
	fmt.Printf("API_KEY_HASH='%s'\n", apiKeyHash)
	fmt.Printf("\nSet this on the storefront client:\n")
	fmt.Printf("STOREFRONT_API_KEY='%s'\n", apiKey)
}
