package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"

	"nyayasahaya-backend/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	token := flag.String("token", "", "token to hash (a random one is generated when empty)")
	flag.Parse()

	log := logger.New(logger.Options{})
	defer func() { _ = log.Sync() }()

	if *token == "" {
		buf := make([]byte, 24)
		if _, err := rand.Read(buf); err != nil {
			log.Fatal("failed to generate token", zap.Error(err))
		}
		*token = hex.EncodeToString(buf)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*token), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("failed to hash token", zap.Error(err))
	}

	fmt.Printf("✅ Corpus admin token created\n")
	fmt.Printf("   Token (send as \"Authorization: Bearer <token>\"): %s\n", *token)
	fmt.Printf("   Add to .env: CORPUS_ADMIN_TOKEN_HASH='%s'\n", hash)
}
