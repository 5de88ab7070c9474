package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	userID := flag.String("user", "", "User id to embed as the token subject")
	email := flag.String("email", "", "User email claim")
	role := flag.String("role", "USER", "Role claim: USER or ADMIN")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *userID == "" {
		fmt.Println("Usage: generate_token --user USER_ID [--email EMAIL] [--role ADMIN] [--ttl 24h]")
		os.Exit(1)
	}
	if *role != "USER" && *role != "ADMIN" {
		fmt.Println("Error: role must be 'USER' or 'ADMIN'")
		os.Exit(1)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Println("Error: JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   *userID,
		"email": *email,
		"role":  *role,
		"iat":   now.Unix(),
		"exp":   now.Add(*ttl).Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		fmt.Printf("Error: failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("═══════════════════════════════════════════════════")
	fmt.Println("Access Token Generated")
	fmt.Println("═══════════════════════════════════════════════════")
	fmt.Printf("Subject: %s\n", *userID)
	fmt.Printf("Role:    %s\n", *role)
	fmt.Printf("Expires: %s\n", now.Add(*ttl).Format(time.RFC3339))
	fmt.Printf("\nToken:\n%s\n", signed)
	fmt.Println("═══════════════════════════════════════════════════")
	fmt.Println("\nUse it as: Authorization: Bearer TOKEN")
}
